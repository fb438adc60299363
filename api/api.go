/*
Copyright 2024 Blnk Finance Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package api

import (
	"net/http"

	"github.com/blnkfinance/cartreel"
	"github.com/blnkfinance/cartreel/api/middleware"
	"github.com/blnkfinance/cartreel/config"
	"github.com/blnkfinance/cartreel/model"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type Api struct {
	cartreel *cartreel.Cartreel
	router   *gin.Engine
	conf     *config.Configuration
}

func (a Api) Router() *gin.Engine {
	router := a.router

	webhooks := router.Group("/webhooks", middleware.WebhookAuthMiddleware(a.cartreel.Sessions()))
	webhooks.POST("/checkouts/create", a.HandleWebhook(model.EventCheckoutCreated))
	webhooks.POST("/checkouts/update", a.HandleWebhook(model.EventCheckoutUpdated))
	webhooks.POST("/orders/updated", a.HandleWebhook(model.EventOrderUpdated))
	webhooks.POST("/orders/create", a.HandleWebhook(model.EventOrderCreated))

	admin := router.Group("/")
	if a.conf.Server.Secure {
		admin.Use(middleware.SecretKeyAuthMiddleware())
	}
	admin.POST("/templates", a.CreateEmailTemplate)
	admin.GET("/templates", a.GetEmailTemplates)
	admin.PUT("/templates/:id/default", a.SetDefaultEmailTemplate)

	admin.PUT("/product-videos", a.UpsertProductVideo)
	admin.GET("/product-videos", a.GetProductVideos)

	admin.GET("/lifecycle-records", a.GetLifecycleRecords)
	admin.GET("/lifecycle-records/stats", a.GetLifecycleStats)
	admin.GET("/lifecycle-records/:id", a.GetLifecycleRecord)

	return a.router
}

func NewAPI(c *cartreel.Cartreel) *Api {
	gin.SetMode(gin.ReleaseMode)
	conf, err := config.Fetch()
	if err != nil {
		return nil
	}

	r := gin.Default()
	r.Use(otelgin.Middleware(conf.ProjectName))
	r.Use(middleware.RateLimitMiddleware(conf))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, "server running...")
	})

	return &Api{cartreel: c, router: r, conf: conf}
}
