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

	"github.com/blnkfinance/cartreel/internal/apierror"
	"github.com/blnkfinance/cartreel/model"
)

const (
	DefaultRecordsLimit = 50
	MaxRecordsLimit     = 500
)

// GetLifecycleRecords lists a shop's records, newest first. Out of range limits
// fall back to the default.
func (c *Cartreel) GetLifecycleRecords(ctx context.Context, shop string, limit, offset int) ([]model.LifecycleRecord, error) {
	if limit <= 0 || limit > MaxRecordsLimit {
		limit = DefaultRecordsLimit
	}
	if offset < 0 {
		offset = 0
	}
	return c.datasource.GetLifecycleRecords(ctx, shop, limit, offset)
}

// LifecycleRecordDetail is one record together with its checkout's email delivery.
type LifecycleRecordDetail struct {
	model.LifecycleRecord
	Notification *model.NotificationDelivery `json:"notification,omitempty"`
}

// GetLifecycleRecord returns a record of shop with the notification delivery of its
// checkout, if one was claimed. A record of another shop is reported as not found.
func (c *Cartreel) GetLifecycleRecord(ctx context.Context, shop, recordID string) (*LifecycleRecordDetail, error) {
	rec, err := c.datasource.GetLifecycleRecordByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if rec.Shop != shop {
		return nil, apierror.NewAPIError(apierror.ErrNotFound, "Lifecycle record not found", nil)
	}

	detail := &LifecycleRecordDetail{LifecycleRecord: *rec}
	delivery, err := c.datasource.GetNotificationDelivery(ctx, rec.Shop, rec.OrderID)
	switch {
	case err == nil:
		detail.Notification = delivery
	case !apierror.Is(err, apierror.ErrNotFound):
		return nil, err
	}
	return detail, nil
}

func (c *Cartreel) GetLifecycleStats(ctx context.Context, shop string) (model.LifecycleStats, error) {
	return c.datasource.GetLifecycleStats(ctx, shop)
}
