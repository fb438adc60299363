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

package cartreel

import (
	"context"
	"time"

	"github.com/blnkfinance/cartreel/internal/apierror"
	"github.com/blnkfinance/cartreel/internal/notification"
	"github.com/blnkfinance/cartreel/internal/render"
	"github.com/blnkfinance/cartreel/model"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
)

const NotificationSentEvent = "notification.sent"

type NotifyStatus string

const (
	NotifySent    NotifyStatus = "sent"
	NotifySkipped NotifyStatus = "skipped"
)

type SkipReason string

const (
	SkipNoDefaultTemplate SkipReason = "no_default_template"
	SkipNoProductVideo    SkipReason = "no_product_video"
	SkipAlreadyNotified   SkipReason = "already_notified"
	SkipTransportFailed   SkipReason = "transport_failed"
)

// NotifyRequest names the customer and the representative product of an abandoned checkout.
type NotifyRequest struct {
	Shop      string
	OrderID   string
	FirstName string
	LastName  string
	Email     string
	ProductID string
}

type NotifyResult struct {
	Status     NotifyStatus `json:"status"`
	Reason     SkipReason   `json:"reason,omitempty"`
	TemplateID string       `json:"template_id,omitempty"`
	VideoURL   string       `json:"video_url,omitempty"`
}

func skipped(reason SkipReason) NotifyResult {
	return NotifyResult{Status: NotifySkipped, Reason: reason}
}

// Notify sends the abandonment email for one checkout. At most one email is ever
// sent per (shop, order): the delivery is claimed in storage before the mail
// transport is called. A transport failure is reported as skipped, not as an error.
func (c *Cartreel) Notify(ctx context.Context, req NotifyRequest) (NotifyResult, error) {
	ctx, span := otel.Tracer("Notification").Start(ctx, "Sending abandonment email")
	defer span.End()

	logger := logrus.WithFields(logrus.Fields{"shop": req.Shop, "order_id": req.OrderID, "product_id": req.ProductID})

	tpl, err := c.defaultTemplate(ctx, req.Shop)
	if err != nil {
		if apierror.Is(err, apierror.ErrNotFound) {
			logger.Info("no default email template, skipping notification")
			return skipped(SkipNoDefaultTemplate), nil
		}
		return NotifyResult{}, err
	}

	video, err := c.productVideo(ctx, req.Shop, req.ProductID)
	if err != nil {
		if apierror.Is(err, apierror.ErrNotFound) {
			logger.Info("no video for product, skipping notification")
			return skipped(SkipNoProductVideo), nil
		}
		return NotifyResult{}, err
	}

	fields := render.Fields(req.FirstName, req.LastName, video.VideoURL, req.ProductID)
	subject := render.Render(tpl.Subject, fields)
	body := render.Render(tpl.Body, fields)

	delivery := &model.NotificationDelivery{
		Shop:       req.Shop,
		OrderID:    req.OrderID,
		Recipient:  req.Email,
		TemplateID: tpl.TemplateID,
		ProductID:  req.ProductID,
	}
	claimed, err := c.datasource.ClaimNotificationDelivery(ctx, delivery)
	if err != nil {
		return NotifyResult{}, err
	}
	if !claimed {
		logger.Info("abandonment email already sent for checkout")
		return skipped(SkipAlreadyNotified), nil
	}

	if err := c.mailer.Send(ctx, req.Email, subject, body); err != nil {
		span.RecordError(err)
		notification.NotifyError(errors.Wrapf(err, "sending abandonment email for order %s", req.OrderID))
		if uErr := c.datasource.UpdateNotificationDeliveryStatus(ctx, req.Shop, req.OrderID, model.DeliveryFailed, nil); uErr != nil {
			logger.WithError(uErr).Error("failed to mark notification delivery as failed")
		}
		return skipped(SkipTransportFailed), nil
	}

	sentAt := time.Now().UTC()
	if err := c.datasource.UpdateNotificationDeliveryStatus(ctx, req.Shop, req.OrderID, model.DeliverySent, &sentAt); err != nil {
		logger.WithError(err).Error("failed to mark notification delivery as sent")
	}
	if _, err := c.datasource.UpdateLifecycleVideoURL(ctx, req.Shop, req.OrderID, video.VideoURL); err != nil {
		logger.WithError(err).Error("failed to attach video url to lifecycle records")
	}

	delivery.Status = model.DeliverySent
	delivery.SentAt = &sentAt
	c.emit(NotificationSentEvent, delivery)

	logger.WithField("template_id", tpl.TemplateID).Info("abandonment email sent")
	return NotifyResult{Status: NotifySent, TemplateID: tpl.TemplateID, VideoURL: video.VideoURL}, nil
}
