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
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/blnkfinance/cartreel/internal/apierror"
	"github.com/blnkfinance/cartreel/model"
	"github.com/stretchr/testify/assert"
)

var deliveryRowColumns = []string{"shop", "order_id", "recipient", "template_id", "product_id", "status", "created_at", "sent_at"}

func TestClaimNotificationDelivery_First(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	delivery := &model.NotificationDelivery{
		Shop:       "demo.myshopify.com",
		OrderID:    "1001",
		Recipient:  "ada@example.com",
		TemplateID: "tpl_1",
		ProductID:  "7001",
	}

	mock.ExpectExec("INSERT INTO notification_deliveries").
		WithArgs(delivery.Shop, delivery.OrderID, delivery.Recipient, delivery.TemplateID, delivery.ProductID,
			model.DeliveryClaimed, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	claimed, err := ds.ClaimNotificationDelivery(context.Background(), delivery)
	assert.NoError(t, err)
	assert.True(t, claimed)
	assert.Equal(t, model.DeliveryClaimed, delivery.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimNotificationDelivery_AlreadyClaimed(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	mock.ExpectExec("INSERT INTO notification_deliveries").
		WillReturnResult(sqlmock.NewResult(0, 0))

	claimed, err := ds.ClaimNotificationDelivery(context.Background(), &model.NotificationDelivery{Shop: "demo.myshopify.com", OrderID: "1001"})
	assert.NoError(t, err)
	assert.False(t, claimed)
}

func TestUpdateNotificationDeliveryStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	sentAt := time.Now().UTC()

	mock.ExpectExec("UPDATE notification_deliveries").
		WithArgs(model.DeliverySent, sentAt, "demo.myshopify.com", "1001").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, ds.UpdateNotificationDeliveryStatus(context.Background(), "demo.myshopify.com", "1001", model.DeliverySent, &sentAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateNotificationDeliveryStatus_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	mock.ExpectExec("UPDATE notification_deliveries").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = ds.UpdateNotificationDeliveryStatus(context.Background(), "demo.myshopify.com", "404", model.DeliveryFailed, nil)
	assert.True(t, apierror.Is(err, apierror.ErrNotFound))
}

func TestGetNotificationDelivery(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT shop, order_id").
		WithArgs("demo.myshopify.com", "1001").
		WillReturnRows(sqlmock.NewRows(deliveryRowColumns).
			AddRow("demo.myshopify.com", "1001", "ada@example.com", "tpl_1", "7001", "sent", now, now))

	delivery, err := ds.GetNotificationDelivery(context.Background(), "demo.myshopify.com", "1001")
	assert.NoError(t, err)
	assert.Equal(t, model.DeliverySent, delivery.Status)
	if assert.NotNil(t, delivery.SentAt) {
		assert.True(t, now.Equal(*delivery.SentAt))
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetNotificationDelivery_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	mock.ExpectQuery("SELECT shop, order_id").
		WithArgs("demo.myshopify.com", "404").
		WillReturnRows(sqlmock.NewRows(deliveryRowColumns))

	delivery, err := ds.GetNotificationDelivery(context.Background(), "demo.myshopify.com", "404")
	assert.Nil(t, delivery)
	assert.True(t, apierror.Is(err, apierror.ErrNotFound))
}
