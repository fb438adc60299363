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

package model

import "time"

type LifecycleStatus string

const (
	StatusCheckoutCreated        LifecycleStatus = "checkout_created"
	StatusCheckoutUpdated        LifecycleStatus = "checkout_updated"
	StatusCheckoutCompleted      LifecycleStatus = "checkout_completed"
	StatusPendingVideoGeneration LifecycleStatus = "pending_video_generation"
	StatusReadyForProcessing     LifecycleStatus = "ready_for_processing"
	StatusCompleted              LifecycleStatus = "completed"
	StatusFailed                 LifecycleStatus = "failed"
)

var lifecycleStatuses = map[LifecycleStatus]bool{
	StatusCheckoutCreated:        true,
	StatusCheckoutUpdated:        true,
	StatusCheckoutCompleted:      true,
	StatusPendingVideoGeneration: true,
	StatusReadyForProcessing:     true,
	StatusCompleted:              true,
	StatusFailed:                 true,
}

// Valid reports whether s is one of the known lifecycle statuses.
func (s LifecycleStatus) Valid() bool {
	return lifecycleStatuses[s]
}

// IsTerminal reports whether the state machine may no longer move a record out of s.
// completed and failed are only ever reached through the video generation pipeline.
func (s LifecycleStatus) IsTerminal() bool {
	switch s {
	case StatusCheckoutCompleted, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// LifecycleRecord tracks one line item of one checkout for a shop.
type LifecycleRecord struct {
	RecordID          string          `json:"record_id"`
	Shop              string          `json:"shop"`
	CustomerEmail     string          `json:"customer_email"`
	CustomerFirstName string          `json:"customer_first_name"`
	CustomerLastName  string          `json:"customer_last_name"`
	ProductID         string          `json:"product_id"`
	OrderID           string          `json:"order_id"`
	Status            LifecycleStatus `json:"status"`
	VideoURL          string          `json:"video_url,omitempty"`
	MetaObjectID      string          `json:"meta_object_id,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// LifecycleStats is the dashboard summary for a shop.
type LifecycleStats struct {
	Total                  int64 `json:"total"`
	Completed              int64 `json:"completed"`
	PendingVideoGeneration int64 `json:"pending_video_generation"`
}
