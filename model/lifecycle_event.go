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

type EventKind string

const (
	EventCheckoutCreated EventKind = "checkout.created"
	EventCheckoutUpdated EventKind = "checkout.updated"
	EventOrderUpdated    EventKind = "order.updated"
	EventOrderCreated    EventKind = "order.created"
)

// LifecycleEvent is a single normalized webhook event. Checkout payloads fan out
// into one event per line item that share the same OrderID.
type LifecycleEvent struct {
	Kind              EventKind `json:"kind"`
	Shop              string    `json:"shop"`
	OrderID           string    `json:"order_id"`
	ProductID         string    `json:"product_id,omitempty"`
	CustomerEmail     string    `json:"customer_email,omitempty"`
	CustomerFirstName string    `json:"customer_first_name,omitempty"`
	CustomerLastName  string    `json:"customer_last_name,omitempty"`

	CompletedAt          *time.Time `json:"completed_at,omitempty"`
	AbandonedCheckoutURL string     `json:"abandoned_checkout_url,omitempty"`
	RecoveryURL          string     `json:"recovery_url,omitempty"`
	PresentmentCurrency  string     `json:"presentment_currency,omitempty"`

	Fulfilled bool `json:"fulfilled,omitempty"`
}

// Completed reports whether a checkout event carries a completion timestamp.
func (e LifecycleEvent) Completed() bool {
	return e.CompletedAt != nil
}
