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

type DeliveryStatus string

const (
	DeliveryClaimed DeliveryStatus = "claimed"
	DeliverySent    DeliveryStatus = "sent"
	DeliveryFailed  DeliveryStatus = "failed"
)

// NotificationDelivery is the persisted at-most-once marker for the abandonment
// email of one checkout. (Shop, OrderID) is unique.
type NotificationDelivery struct {
	Shop       string         `json:"shop"`
	OrderID    string         `json:"order_id"`
	Recipient  string         `json:"recipient"`
	TemplateID string         `json:"template_id"`
	ProductID  string         `json:"product_id"`
	Status     DeliveryStatus `json:"status"`
	CreatedAt  time.Time      `json:"created_at"`
	SentAt     *time.Time     `json:"sent_at,omitempty"`
}
