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
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/blnkfinance/cartreel/model"
)

// fulfilledStatus is the platform's fulfillment_status value for a fully shipped order.
const fulfilledStatus = "fulfilled"

// NormalizationError reports a webhook payload that is missing a required field or
// cannot be decoded. It is a client data problem and never worth a retry.
type NormalizationError struct {
	Kind  model.EventKind
	Field string
	Err   error
}

func (e *NormalizationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed %s payload: %s: %v", e.Kind, e.Field, e.Err)
	}
	return fmt.Sprintf("malformed %s payload: missing %s", e.Kind, e.Field)
}

func (e *NormalizationError) Unwrap() error {
	return e.Err
}

// flexID accepts both JSON numbers and strings and keeps the decimal text.
type flexID string

func (id *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = flexID(strings.TrimSpace(s))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a number or a string")
	}
	*id = flexID(n.String())
	return nil
}

type customerPayload struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type lineItemPayload struct {
	ProductID flexID `json:"product_id"`
}

type checkoutPayload struct {
	ID                   flexID            `json:"id"`
	Customer             *customerPayload  `json:"customer"`
	LineItems            []lineItemPayload `json:"line_items"`
	CompletedAt          *string           `json:"completed_at"`
	AbandonedCheckoutURL string            `json:"abandoned_checkout_url"`
	RecoveryURL          string            `json:"recovery_url"`
	PresentmentCurrency  string            `json:"presentment_currency"`
}

type orderPayload struct {
	ID                flexID          `json:"id"`
	FulfillmentStatus json.RawMessage `json:"fulfillment_status"`
}

// Normalize turns a raw webhook body into lifecycle events. Checkout payloads fan
// out into one event per line item. order.created yields no events.
func Normalize(shop string, raw []byte, kind model.EventKind) ([]model.LifecycleEvent, error) {
	switch kind {
	case model.EventCheckoutCreated, model.EventCheckoutUpdated:
		return normalizeCheckout(shop, raw, kind)
	case model.EventOrderUpdated:
		return normalizeOrder(shop, raw)
	case model.EventOrderCreated:
		return []model.LifecycleEvent{}, nil
	default:
		return nil, &NormalizationError{Kind: kind, Field: "kind", Err: fmt.Errorf("unsupported event kind")}
	}
}

func normalizeCheckout(shop string, raw []byte, kind model.EventKind) ([]model.LifecycleEvent, error) {
	var payload checkoutPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, &NormalizationError{Kind: kind, Field: "body", Err: err}
	}

	if payload.ID == "" {
		return nil, &NormalizationError{Kind: kind, Field: "id"}
	}
	if payload.Customer == nil || strings.TrimSpace(payload.Customer.Email) == "" {
		return nil, &NormalizationError{Kind: kind, Field: "customer.email"}
	}
	if len(payload.LineItems) == 0 {
		return nil, &NormalizationError{Kind: kind, Field: "line_items"}
	}

	var completedAt *time.Time
	if kind == model.EventCheckoutUpdated && payload.CompletedAt != nil && *payload.CompletedAt != "" {
		at, err := time.Parse(time.RFC3339, *payload.CompletedAt)
		if err != nil {
			return nil, &NormalizationError{Kind: kind, Field: "completed_at", Err: err}
		}
		at = at.UTC()
		completedAt = &at
	}

	events := make([]model.LifecycleEvent, 0, len(payload.LineItems))
	for i, item := range payload.LineItems {
		if item.ProductID == "" {
			return nil, &NormalizationError{Kind: kind, Field: fmt.Sprintf("line_items[%d].product_id", i)}
		}
		events = append(events, model.LifecycleEvent{
			Kind:                 kind,
			Shop:                 shop,
			OrderID:              string(payload.ID),
			ProductID:            string(item.ProductID),
			CustomerEmail:        strings.TrimSpace(payload.Customer.Email),
			CustomerFirstName:    payload.Customer.FirstName,
			CustomerLastName:     payload.Customer.LastName,
			CompletedAt:          completedAt,
			AbandonedCheckoutURL: payload.AbandonedCheckoutURL,
			RecoveryURL:          payload.RecoveryURL,
			PresentmentCurrency:  payload.PresentmentCurrency,
		})
	}
	return events, nil
}

func normalizeOrder(shop string, raw []byte) ([]model.LifecycleEvent, error) {
	kind := model.EventOrderUpdated

	var payload orderPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, &NormalizationError{Kind: kind, Field: "body", Err: err}
	}
	if payload.ID == "" {
		return nil, &NormalizationError{Kind: kind, Field: "id"}
	}
	if len(payload.FulfillmentStatus) == 0 {
		return nil, &NormalizationError{Kind: kind, Field: "fulfillment_status"}
	}

	// null is how the platform reports an unfulfilled order
	var status *string
	if err := json.Unmarshal(payload.FulfillmentStatus, &status); err != nil {
		return nil, &NormalizationError{Kind: kind, Field: "fulfillment_status", Err: err}
	}

	return []model.LifecycleEvent{{
		Kind:      kind,
		Shop:      shop,
		OrderID:   string(payload.ID),
		Fulfilled: status != nil && *status == fulfilledStatus,
	}}, nil
}
