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

	model2 "github.com/blnkfinance/cartreel/api/model"
	"github.com/blnkfinance/cartreel/internal/session"
	"github.com/gin-gonic/gin"
)

func (a Api) UpsertProductVideo(c *gin.Context) {
	var req model2.UpsertProductVideo
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}
	if err := req.ValidateUpsertProductVideo(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	video := req.ToProductVideo()
	if err := a.cartreel.UpsertProductVideo(c.Request.Context(), video); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, video)
}

func (a Api) GetProductVideos(c *gin.Context) {
	var query model2.ShopQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}
	if err := query.ValidateShopQuery(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	resp, err := a.cartreel.GetProductVideos(c.Request.Context(), session.NormalizeShop(query.Shop))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
