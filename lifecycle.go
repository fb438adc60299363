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
	redlock "github.com/blnkfinance/cartreel/internal/lock"
	"github.com/blnkfinance/cartreel/internal/metaobject"
	"github.com/blnkfinance/cartreel/internal/notification"
	"github.com/blnkfinance/cartreel/model"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	StatusChangedEvent = "lifecycle.status_changed"
	lockHolderPrefix   = "loc"
)

// ProcessResult summarizes the effect of one webhook delivery.
type ProcessResult struct {
	Kind         model.EventKind `json:"kind"`
	Events       int             `json:"events"`
	Created      int             `json:"created"`
	Updated      int             `json:"updated"`
	Notification *NotifyResult   `json:"notification,omitempty"`
}

// StatusChange is the operator webhook payload for a record that moved to a new status.
type StatusChange struct {
	RecordID  string                `json:"record_id"`
	Shop      string                `json:"shop"`
	OrderID   string                `json:"order_id"`
	ProductID string                `json:"product_id"`
	From      model.LifecycleStatus `json:"from"`
	To        model.LifecycleStatus `json:"to"`
}

// NextStatus is the transition function of the state machine. It returns the
// status a record in current should hold after event, and whether that differs
// from current. Terminal statuses never change.
func NextStatus(current model.LifecycleStatus, event model.LifecycleEvent) (model.LifecycleStatus, bool) {
	if current.IsTerminal() {
		return current, false
	}

	var next model.LifecycleStatus
	switch event.Kind {
	case model.EventCheckoutUpdated:
		if event.Completed() {
			next = model.StatusCheckoutCompleted
		} else {
			next = model.StatusCheckoutUpdated
		}
	case model.EventOrderUpdated:
		if event.Fulfilled {
			next = model.StatusReadyForProcessing
		} else {
			next = model.StatusPendingVideoGeneration
		}
	default:
		return current, false
	}

	return next, next != current
}

// ProcessWebhook normalizes raw and applies the resulting events. A payload that
// cannot be normalized is reported as ErrMalformedEvent.
func (c *Cartreel) ProcessWebhook(ctx context.Context, shop string, kind model.EventKind, raw []byte) (ProcessResult, error) {
	ctx, span := otel.Tracer("Lifecycle").Start(ctx, "Processing webhook")
	defer span.End()
	span.SetAttributes(attribute.String("shop", shop), attribute.String("kind", string(kind)))

	events, err := Normalize(shop, raw, kind)
	if err != nil {
		logrus.WithFields(logrus.Fields{"shop": shop, "kind": kind}).WithError(err).Warn("dropping malformed webhook")
		return ProcessResult{Kind: kind}, apierror.NewAPIError(apierror.ErrMalformedEvent, err.Error(), nil)
	}
	if kind == model.EventOrderCreated {
		logrus.WithField("shop", shop).Info("order created, nothing to track")
	}

	result, err := c.ApplyEvents(ctx, events)
	result.Kind = kind
	if err != nil {
		span.RecordError(err)
	}
	return result, err
}

type orderKey struct {
	kind    model.EventKind
	shop    string
	orderID string
}

// ApplyEvents runs events through the state machine. Events of the same checkout
// are applied together while holding the lock for that checkout.
func (c *Cartreel) ApplyEvents(ctx context.Context, events []model.LifecycleEvent) (ProcessResult, error) {
	result := ProcessResult{Events: len(events)}

	var order []orderKey
	groups := make(map[orderKey][]model.LifecycleEvent)
	for _, event := range events {
		key := orderKey{kind: event.Kind, shop: event.Shop, orderID: event.OrderID}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], event)
	}

	for _, key := range order {
		group := groups[key]
		err := c.withOrderLock(ctx, key.shop, key.orderID, func(ctx context.Context, lease *orderLease) error {
			return c.applyGroup(ctx, lease, group, &result)
		})
		if err != nil {
			return result, err
		}
	}
	return result, nil
}

// orderLease is a held per-checkout lock. Work under the lock renews it before
// every collaborator call so a slow mirror or mail transport cannot outlive it.
type orderLease struct {
	locker *redlock.Locker
	ttl    time.Duration
}

// renew resets the lock expiry to the full lock timeout. It fails once the lock
// has expired or been taken by another holder.
func (l *orderLease) renew(ctx context.Context) error {
	if err := l.locker.ExtendLock(ctx, l.ttl); err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Lifecycle lock expired", err)
	}
	return nil
}

func (c *Cartreel) withOrderLock(ctx context.Context, shop, orderID string, fn func(ctx context.Context, lease *orderLease) error) error {
	lockTimeout, waitTimeout := c.lockTimeouts()
	locker := redlock.NewLocker(c.redis, model.LockKey(shop, orderID), model.GenerateUUIDWithSuffix(lockHolderPrefix))
	if err := locker.WaitLock(ctx, lockTimeout, waitTimeout); err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to acquire lifecycle lock", err)
	}
	defer func() {
		if err := locker.Unlock(context.Background()); err != nil {
			logrus.WithField("key", locker.Key()).WithError(err).Warn("failed to release lifecycle lock")
		}
	}()
	return fn(ctx, &orderLease{locker: locker, ttl: lockTimeout})
}

func (c *Cartreel) applyGroup(ctx context.Context, lease *orderLease, events []model.LifecycleEvent, result *ProcessResult) error {
	first := events[0]
	switch first.Kind {
	case model.EventCheckoutCreated:
		return c.createRecords(ctx, lease, events, result)

	case model.EventCheckoutUpdated, model.EventOrderUpdated:
		records, updated, err := c.updateRecords(ctx, lease, first)
		if err != nil {
			return err
		}
		result.Updated += updated

		if first.Kind != model.EventCheckoutUpdated || !anyInStatus(records, model.StatusCheckoutUpdated) {
			return nil
		}
		detector := AbandonmentDetector{Strict: c.config.Abandonment.Strict}
		if !detector.IsAbandoned(first) || first.CustomerEmail == "" {
			return nil
		}
		if err := lease.renew(ctx); err != nil {
			return err
		}
		notified, err := c.Notify(ctx, NotifyRequest{
			Shop:      first.Shop,
			OrderID:   first.OrderID,
			FirstName: first.CustomerFirstName,
			LastName:  first.CustomerLastName,
			Email:     first.CustomerEmail,
			ProductID: first.ProductID,
		})
		if err != nil {
			return err
		}
		result.Notification = &notified
		return nil
	}
	return nil
}

// createRecords stores one record per line item and mirrors it. A redelivery
// creates nothing, but mirrors any existing record that still has no metaobject
// reference.
func (c *Cartreel) createRecords(ctx context.Context, lease *orderLease, events []model.LifecycleEvent, result *ProcessResult) error {
	var stored []model.LifecycleRecord
	storedLoaded := false

	for _, event := range events {
		rec, created, err := c.createRecord(ctx, event)
		if err != nil {
			return err
		}
		if created {
			result.Created++
		} else {
			if !storedLoaded {
				if stored, err = c.datasource.GetLifecycleRecordsByOrder(ctx, event.Shop, event.OrderID); err != nil {
					return err
				}
				storedLoaded = true
			}
			rec = findRecord(stored, event.ProductID)
			if rec == nil || rec.MetaObjectID != "" {
				logrus.WithFields(logrus.Fields{"shop": event.Shop, "order_id": event.OrderID, "product_id": event.ProductID}).
					Debug("lifecycle record already exists")
				continue
			}
			logrus.WithField("record_id", rec.RecordID).Info("mirroring existing lifecycle record without metaobject")
		}

		if err := lease.renew(ctx); err != nil {
			return err
		}
		if err := c.mirrorRecord(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

func (c *Cartreel) createRecord(ctx context.Context, event model.LifecycleEvent) (*model.LifecycleRecord, bool, error) {
	rec := &model.LifecycleRecord{
		Shop:              event.Shop,
		CustomerEmail:     event.CustomerEmail,
		CustomerFirstName: event.CustomerFirstName,
		CustomerLastName:  event.CustomerLastName,
		ProductID:         event.ProductID,
		OrderID:           event.OrderID,
		Status:            model.StatusCheckoutCreated,
	}
	created, err := c.datasource.CreateLifecycleRecord(ctx, rec)
	if err != nil {
		return nil, false, err
	}
	return rec, created, nil
}

// mirrorRecord creates the metaobject for rec and stores its reference. A mirror
// failure is reported and leaves the reference empty.
func (c *Cartreel) mirrorRecord(ctx context.Context, rec *model.LifecycleRecord) error {
	metaObjectID, err := c.mirror.Create(ctx, rec.Shop, metaobject.RecordFields(*rec))
	if err != nil {
		notification.NotifyError(errors.Wrapf(err, "mirroring lifecycle record %s", rec.RecordID))
		return nil
	}
	if err := c.datasource.UpdateLifecycleMetaObject(ctx, rec.RecordID, metaObjectID); err != nil {
		return err
	}
	rec.MetaObjectID = metaObjectID
	return nil
}

func findRecord(records []model.LifecycleRecord, productID string) *model.LifecycleRecord {
	for i := range records {
		if records[i].ProductID == productID {
			return &records[i]
		}
	}
	return nil
}

// updateRecords moves every record of the event's checkout to its next status and
// returns the records as they stand afterwards.
func (c *Cartreel) updateRecords(ctx context.Context, lease *orderLease, event model.LifecycleEvent) ([]model.LifecycleRecord, int, error) {
	records, err := c.datasource.GetLifecycleRecordsByOrder(ctx, event.Shop, event.OrderID)
	if err != nil {
		return nil, 0, err
	}
	if len(records) == 0 {
		logrus.WithFields(logrus.Fields{"shop": event.Shop, "order_id": event.OrderID, "kind": event.Kind}).
			Info("no lifecycle records for checkout")
		return records, 0, nil
	}

	updated := 0
	for i := range records {
		rec := &records[i]
		next, changed := NextStatus(rec.Status, event)
		if !changed {
			continue
		}
		if err := c.datasource.UpdateLifecycleStatus(ctx, rec.RecordID, next); err != nil {
			return nil, updated, err
		}

		change := StatusChange{
			RecordID:  rec.RecordID,
			Shop:      rec.Shop,
			OrderID:   rec.OrderID,
			ProductID: rec.ProductID,
			From:      rec.Status,
			To:        next,
		}
		rec.Status = next
		updated++
		trace.SpanFromContext(ctx).AddEvent("Lifecycle status changed", trace.WithAttributes(
			attribute.String("record_id", rec.RecordID),
			attribute.String("from", string(change.From)),
			attribute.String("to", string(next)),
		))

		if rec.MetaObjectID != "" {
			if err := lease.renew(ctx); err != nil {
				return nil, updated, err
			}
			if err := c.mirror.Update(ctx, rec.Shop, rec.MetaObjectID, metaobject.StatusFields(next)); err != nil {
				notification.NotifyError(errors.Wrapf(err, "mirroring status of lifecycle record %s", rec.RecordID))
			}
		}
		c.emit(StatusChangedEvent, change)
	}
	return records, updated, nil
}

func anyInStatus(records []model.LifecycleRecord, status model.LifecycleStatus) bool {
	for _, rec := range records {
		if rec.Status == status {
			return true
		}
	}
	return false
}
