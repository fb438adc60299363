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
	"time"

	"github.com/blnkfinance/cartreel/model"
)

// IDataSource defines the interface for data source operations, grouping related functionalities.
type IDataSource interface {
	lifecycle
	emailTemplate
	productVideo
	notificationDelivery
}

// lifecycle is the Lifecycle Store. Only the state machine mutates records.
type lifecycle interface {
	// CreateLifecycleRecord inserts rec unless a record for its (shop, order, product) exists.
	// created is false for a duplicate delivery.
	CreateLifecycleRecord(ctx context.Context, rec *model.LifecycleRecord) (created bool, err error)
	GetLifecycleRecordByID(ctx context.Context, recordID string) (*model.LifecycleRecord, error)
	GetLifecycleRecordsByOrder(ctx context.Context, shop, orderID string) ([]model.LifecycleRecord, error)
	UpdateLifecycleStatus(ctx context.Context, recordID string, status model.LifecycleStatus) error
	UpdateLifecycleMetaObject(ctx context.Context, recordID, metaObjectID string) error
	UpdateLifecycleVideoURL(ctx context.Context, shop, orderID, videoURL string) (int64, error)
	GetLifecycleRecords(ctx context.Context, shop string, limit, offset int) ([]model.LifecycleRecord, error)
	GetLifecycleStats(ctx context.Context, shop string) (model.LifecycleStats, error)
}

type emailTemplate interface {
	CreateEmailTemplate(ctx context.Context, tpl *model.EmailTemplate) error
	SetDefaultEmailTemplate(ctx context.Context, shop, templateID string) (*model.EmailTemplate, error)
	GetDefaultEmailTemplate(ctx context.Context, shop string) (*model.EmailTemplate, error)
	GetEmailTemplates(ctx context.Context, shop string) ([]model.EmailTemplate, error)
}

type productVideo interface {
	UpsertProductVideo(ctx context.Context, video *model.ProductVideo) error
	GetProductVideo(ctx context.Context, shop, productID string) (*model.ProductVideo, error)
	GetProductVideos(ctx context.Context, shop string) ([]model.ProductVideo, error)
}

type notificationDelivery interface {
	// ClaimNotificationDelivery persists the dedup marker for (shop, order).
	// claimed is false when a delivery for that checkout already exists.
	ClaimNotificationDelivery(ctx context.Context, delivery *model.NotificationDelivery) (claimed bool, err error)
	UpdateNotificationDeliveryStatus(ctx context.Context, shop, orderID string, status model.DeliveryStatus, sentAt *time.Time) error
	GetNotificationDelivery(ctx context.Context, shop, orderID string) (*model.NotificationDelivery, error)
}
