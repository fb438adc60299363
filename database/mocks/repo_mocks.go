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

package mocks

import (
	"context"
	"time"

	"github.com/blnkfinance/cartreel/model"
	"github.com/stretchr/testify/mock"
)

// MockDataSource is a mock implementation of the IDataSource interface
type MockDataSource struct {
	mock.Mock
}

// Lifecycle methods

func (m *MockDataSource) CreateLifecycleRecord(ctx context.Context, rec *model.LifecycleRecord) (bool, error) {
	args := m.Called(ctx, rec)
	return args.Bool(0), args.Error(1)
}

func (m *MockDataSource) GetLifecycleRecordByID(ctx context.Context, recordID string) (*model.LifecycleRecord, error) {
	args := m.Called(ctx, recordID)
	if rec, ok := args.Get(0).(*model.LifecycleRecord); ok {
		return rec, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDataSource) GetLifecycleRecordsByOrder(ctx context.Context, shop, orderID string) ([]model.LifecycleRecord, error) {
	args := m.Called(ctx, shop, orderID)
	if records, ok := args.Get(0).([]model.LifecycleRecord); ok {
		return records, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDataSource) UpdateLifecycleStatus(ctx context.Context, recordID string, status model.LifecycleStatus) error {
	args := m.Called(ctx, recordID, status)
	return args.Error(0)
}

func (m *MockDataSource) UpdateLifecycleMetaObject(ctx context.Context, recordID, metaObjectID string) error {
	args := m.Called(ctx, recordID, metaObjectID)
	return args.Error(0)
}

func (m *MockDataSource) UpdateLifecycleVideoURL(ctx context.Context, shop, orderID, videoURL string) (int64, error) {
	args := m.Called(ctx, shop, orderID, videoURL)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDataSource) GetLifecycleRecords(ctx context.Context, shop string, limit, offset int) ([]model.LifecycleRecord, error) {
	args := m.Called(ctx, shop, limit, offset)
	if records, ok := args.Get(0).([]model.LifecycleRecord); ok {
		return records, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDataSource) GetLifecycleStats(ctx context.Context, shop string) (model.LifecycleStats, error) {
	args := m.Called(ctx, shop)
	return args.Get(0).(model.LifecycleStats), args.Error(1)
}

// Email template methods

func (m *MockDataSource) CreateEmailTemplate(ctx context.Context, tpl *model.EmailTemplate) error {
	args := m.Called(ctx, tpl)
	return args.Error(0)
}

func (m *MockDataSource) SetDefaultEmailTemplate(ctx context.Context, shop, templateID string) (*model.EmailTemplate, error) {
	args := m.Called(ctx, shop, templateID)
	if tpl, ok := args.Get(0).(*model.EmailTemplate); ok {
		return tpl, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDataSource) GetDefaultEmailTemplate(ctx context.Context, shop string) (*model.EmailTemplate, error) {
	args := m.Called(ctx, shop)
	if tpl, ok := args.Get(0).(*model.EmailTemplate); ok {
		return tpl, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDataSource) GetEmailTemplates(ctx context.Context, shop string) ([]model.EmailTemplate, error) {
	args := m.Called(ctx, shop)
	if templates, ok := args.Get(0).([]model.EmailTemplate); ok {
		return templates, args.Error(1)
	}
	return nil, args.Error(1)
}

// Product video methods

func (m *MockDataSource) UpsertProductVideo(ctx context.Context, video *model.ProductVideo) error {
	args := m.Called(ctx, video)
	return args.Error(0)
}

func (m *MockDataSource) GetProductVideo(ctx context.Context, shop, productID string) (*model.ProductVideo, error) {
	args := m.Called(ctx, shop, productID)
	if video, ok := args.Get(0).(*model.ProductVideo); ok {
		return video, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDataSource) GetProductVideos(ctx context.Context, shop string) ([]model.ProductVideo, error) {
	args := m.Called(ctx, shop)
	if videos, ok := args.Get(0).([]model.ProductVideo); ok {
		return videos, args.Error(1)
	}
	return nil, args.Error(1)
}

// Notification delivery methods

func (m *MockDataSource) ClaimNotificationDelivery(ctx context.Context, delivery *model.NotificationDelivery) (bool, error) {
	args := m.Called(ctx, delivery)
	return args.Bool(0), args.Error(1)
}

func (m *MockDataSource) UpdateNotificationDeliveryStatus(ctx context.Context, shop, orderID string, status model.DeliveryStatus, sentAt *time.Time) error {
	args := m.Called(ctx, shop, orderID, status, sentAt)
	return args.Error(0)
}

func (m *MockDataSource) GetNotificationDelivery(ctx context.Context, shop, orderID string) (*model.NotificationDelivery, error) {
	args := m.Called(ctx, shop, orderID)
	if delivery, ok := args.Get(0).(*model.NotificationDelivery); ok {
		return delivery, args.Error(1)
	}
	return nil, args.Error(1)
}
