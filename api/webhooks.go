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

	"github.com/blnkfinance/cartreel/api/middleware"
	"github.com/blnkfinance/cartreel/internal/apierror"
	"github.com/blnkfinance/cartreel/model"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// HandleWebhook processes one platform webhook of the given kind. Malformed
// payloads are acknowledged with 200 so the platform does not redeliver them.
func (a Api) HandleWebhook(kind model.EventKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := c.GetString(middleware.ShopKey)
		var body []byte
		if raw, ok := c.Get(middleware.BodyKey); ok {
			body, _ = raw.([]byte)
		}

		logrus.WithFields(logrus.Fields{
			"shop":  shop,
			"kind":  kind,
			"topic": c.GetHeader(middleware.TopicHeader),
		}).Info("webhook received")

		result, err := a.cartreel.ProcessWebhook(c.Request.Context(), shop, kind, body)
		if err != nil {
			if apierror.Is(err, apierror.ErrMalformedEvent) {
				c.JSON(http.StatusOK, gin.H{"status": "ignored", "reason": err.Error()})
				return
			}
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}
