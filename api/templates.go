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

func (a Api) CreateEmailTemplate(c *gin.Context) {
	var newTemplate model2.CreateEmailTemplate
	if err := c.ShouldBindJSON(&newTemplate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	err := newTemplate.ValidateCreateEmailTemplate()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	tpl := newTemplate.ToEmailTemplate()
	if err := a.cartreel.CreateEmailTemplate(c.Request.Context(), tpl); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, tpl)
}

func (a Api) GetEmailTemplates(c *gin.Context) {
	var query model2.ShopQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}
	if err := query.ValidateShopQuery(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	resp, err := a.cartreel.GetEmailTemplates(c.Request.Context(), session.NormalizeShop(query.Shop))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) SetDefaultEmailTemplate(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed || id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id"})
		return
	}

	var req model2.SetDefaultTemplate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}
	if err := req.ValidateSetDefaultTemplate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	resp, err := a.cartreel.SetDefaultEmailTemplate(c.Request.Context(), session.NormalizeShop(req.Shop), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
