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

package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/blnkfinance/cartreel/internal/apierror"
	"github.com/blnkfinance/cartreel/model"
	"go.opentelemetry.io/otel"
)

func (d Datasource) ClaimNotificationDelivery(ctx context.Context, delivery *model.NotificationDelivery) (bool, error) {
	ctx, span := otel.Tracer("Notification").Start(ctx, "Claiming notification delivery")
	defer span.End()

	delivery.Status = model.DeliveryClaimed
	delivery.CreatedAt = time.Now().UTC()

	result, err := d.Conn.ExecContext(ctx, `
		INSERT INTO notification_deliveries (shop, order_id, recipient, template_id, product_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (shop, order_id) DO NOTHING
	`, delivery.Shop, delivery.OrderID, delivery.Recipient, delivery.TemplateID, delivery.ProductID,
		delivery.Status, delivery.CreatedAt)
	if err != nil {
		span.RecordError(err)
		return false, storageError("Failed to claim notification delivery", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, storageError("Failed to read affected rows", err)
	}
	return rows == 1, nil
}

func (d Datasource) UpdateNotificationDeliveryStatus(ctx context.Context, shop, orderID string, status model.DeliveryStatus, sentAt *time.Time) error {
	result, err := d.Conn.ExecContext(ctx, `
		UPDATE notification_deliveries
		SET status = $1, sent_at = $2
		WHERE shop = $3 AND order_id = $4
	`, status, sentAt, shop, orderID)
	if err != nil {
		return storageError("Failed to update notification delivery", err)
	}
	return expectOneRow(result, "Notification delivery not found")
}

func (d Datasource) GetNotificationDelivery(ctx context.Context, shop, orderID string) (*model.NotificationDelivery, error) {
	delivery := model.NotificationDelivery{}
	var sentAt sql.NullTime
	err := d.Conn.QueryRowContext(ctx, `
		SELECT shop, order_id, recipient, template_id, product_id, status, created_at, sent_at
		FROM notification_deliveries
		WHERE shop = $1 AND order_id = $2
	`, shop, orderID).Scan(&delivery.Shop, &delivery.OrderID, &delivery.Recipient, &delivery.TemplateID,
		&delivery.ProductID, &delivery.Status, &delivery.CreatedAt, &sentAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "Notification delivery not found", nil)
		}
		return nil, storageError("Failed to retrieve notification delivery", err)
	}
	if sentAt.Valid {
		delivery.SentAt = &sentAt.Time
	}
	return &delivery, nil
}
