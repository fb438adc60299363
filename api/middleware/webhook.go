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

package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
	"net/http"

	"github.com/blnkfinance/cartreel/config"
	"github.com/blnkfinance/cartreel/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	ShopDomainHeader = "X-Shopify-Shop-Domain"
	HmacHeader       = "X-Shopify-Hmac-Sha256"
	TopicHeader      = "X-Shopify-Topic"

	// ShopKey and BodyKey hold the authenticated shop and the raw webhook body
	// in the gin context.
	ShopKey = "webhook_shop"
	BodyKey = "webhook_body"

	maxWebhookBody = 1 << 20
)

// VerifyHMAC reports whether signature is the base64 HMAC-SHA256 of body under secret.
func VerifyHMAC(secret string, body []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	got, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), got)
}

// Sign returns the signature VerifyHMAC accepts for body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// WebhookAuthMiddleware establishes the calling shop of a platform webhook. The
// body must be signed with the app secret and the shop must have a session.
// Anything else is rejected with 401. Bodies over 1 MiB are rejected with 413.
func WebhookAuthMiddleware(sessions session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		conf, err := config.Fetch()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "configuration not loaded"})
			return
		}

		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody+1))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "could not read body"})
			return
		}
		if len(body) > maxWebhookBody {
			logrus.WithField("topic", c.GetHeader(TopicHeader)).Warn("webhook body too large")
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		shop := session.NormalizeShop(c.GetHeader(ShopDomainHeader))
		logger := logrus.WithFields(logrus.Fields{"shop": shop, "topic": c.GetHeader(TopicHeader)})

		if !VerifyHMAC(conf.Shopify.ApiSecret, body, c.GetHeader(HmacHeader)) {
			logger.Warn("webhook signature rejected")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		if shop == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		if _, err := sessions.AccessToken(c.Request.Context(), shop); err != nil {
			if errors.Is(err, session.ErrNoSession) {
				logger.Warn("webhook from shop without session")
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
				return
			}
			logger.WithError(err).Error("session lookup failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "session lookup failed"})
			return
		}

		c.Set(ShopKey, shop)
		c.Set(BodyKey, body)
		c.Next()
	}
}
