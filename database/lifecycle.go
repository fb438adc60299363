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

const lifecycleColumns = `record_id, shop, customer_email, customer_first_name, customer_last_name,
		product_id, order_id, status, video_url, meta_object_id, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLifecycleRecord(row rowScanner) (model.LifecycleRecord, error) {
	var rec model.LifecycleRecord
	var videoURL, metaObjectID sql.NullString
	err := row.Scan(
		&rec.RecordID, &rec.Shop, &rec.CustomerEmail, &rec.CustomerFirstName, &rec.CustomerLastName,
		&rec.ProductID, &rec.OrderID, &rec.Status, &videoURL, &metaObjectID, &rec.CreatedAt, &rec.UpdatedAt,
	)
	rec.VideoURL = videoURL.String
	rec.MetaObjectID = metaObjectID.String
	return rec, err
}

func (d Datasource) CreateLifecycleRecord(ctx context.Context, rec *model.LifecycleRecord) (bool, error) {
	ctx, span := otel.Tracer("Lifecycle").Start(ctx, "Saving lifecycle record to db")
	defer span.End()

	if rec.RecordID == "" {
		rec.RecordID = model.GenerateUUIDWithSuffix(model.RecordIDPrefix)
	}
	if rec.Status == "" {
		rec.Status = model.StatusCheckoutCreated
	}
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	result, err := d.Conn.ExecContext(ctx, `
		INSERT INTO lifecycle_records (record_id, shop, customer_email, customer_first_name, customer_last_name,
			product_id, order_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (shop, order_id, product_id) DO NOTHING
	`, rec.RecordID, rec.Shop, rec.CustomerEmail, rec.CustomerFirstName, rec.CustomerLastName,
		rec.ProductID, rec.OrderID, rec.Status, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		span.RecordError(err)
		return false, storageError("Failed to create lifecycle record", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, storageError("Failed to read affected rows", err)
	}
	return rows == 1, nil
}

func (d Datasource) GetLifecycleRecordByID(ctx context.Context, recordID string) (*model.LifecycleRecord, error) {
	ctx, span := otel.Tracer("Lifecycle").Start(ctx, "Fetching lifecycle record from db")
	defer span.End()

	row := d.Conn.QueryRowContext(ctx, `
		SELECT `+lifecycleColumns+`
		FROM lifecycle_records
		WHERE record_id = $1
	`, recordID)

	rec, err := scanLifecycleRecord(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "Lifecycle record not found", err)
		}
		return nil, storageError("Failed to retrieve lifecycle record", err)
	}
	return &rec, nil
}

// GetLifecycleRecordsByOrder returns every line item record of one checkout, oldest first.
func (d Datasource) GetLifecycleRecordsByOrder(ctx context.Context, shop, orderID string) ([]model.LifecycleRecord, error) {
	ctx, span := otel.Tracer("Lifecycle").Start(ctx, "Fetching lifecycle records by order")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT `+lifecycleColumns+`
		FROM lifecycle_records
		WHERE shop = $1 AND order_id = $2
		ORDER BY created_at ASC, record_id ASC
	`, shop, orderID)
	if err != nil {
		return nil, storageError("Failed to retrieve lifecycle records", err)
	}
	return collectLifecycleRecords(rows)
}

func (d Datasource) UpdateLifecycleStatus(ctx context.Context, recordID string, status model.LifecycleStatus) error {
	ctx, span := otel.Tracer("Lifecycle").Start(ctx, "Updating lifecycle status")
	defer span.End()

	if !status.Valid() {
		return apierror.NewAPIError(apierror.ErrInvalidInput, "Unknown lifecycle status "+string(status), nil)
	}

	result, err := d.Conn.ExecContext(ctx, `
		UPDATE lifecycle_records
		SET status = $1, updated_at = $2
		WHERE record_id = $3
	`, status, time.Now().UTC(), recordID)
	if err != nil {
		return storageError("Failed to update lifecycle status", err)
	}
	return expectOneRow(result, "Lifecycle record not found")
}

func (d Datasource) UpdateLifecycleMetaObject(ctx context.Context, recordID, metaObjectID string) error {
	result, err := d.Conn.ExecContext(ctx, `
		UPDATE lifecycle_records
		SET meta_object_id = $1, updated_at = $2
		WHERE record_id = $3
	`, metaObjectID, time.Now().UTC(), recordID)
	if err != nil {
		return storageError("Failed to store metaobject reference", err)
	}
	return expectOneRow(result, "Lifecycle record not found")
}

// UpdateLifecycleVideoURL attaches the delivered video link to every record of a checkout.
func (d Datasource) UpdateLifecycleVideoURL(ctx context.Context, shop, orderID, videoURL string) (int64, error) {
	result, err := d.Conn.ExecContext(ctx, `
		UPDATE lifecycle_records
		SET video_url = $1, updated_at = $2
		WHERE shop = $3 AND order_id = $4
	`, videoURL, time.Now().UTC(), shop, orderID)
	if err != nil {
		return 0, storageError("Failed to store video url", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, storageError("Failed to read affected rows", err)
	}
	return rows, nil
}

func (d Datasource) GetLifecycleRecords(ctx context.Context, shop string, limit, offset int) ([]model.LifecycleRecord, error) {
	ctx, span := otel.Tracer("Lifecycle").Start(ctx, "Listing lifecycle records")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT `+lifecycleColumns+`
		FROM lifecycle_records
		WHERE shop = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, shop, limit, offset)
	if err != nil {
		return nil, storageError("Failed to retrieve lifecycle records", err)
	}
	return collectLifecycleRecords(rows)
}

func (d Datasource) GetLifecycleStats(ctx context.Context, shop string) (model.LifecycleStats, error) {
	var stats model.LifecycleStats
	err := d.Conn.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = $2),
			COUNT(*) FILTER (WHERE status = $3)
		FROM lifecycle_records
		WHERE shop = $1
	`, shop, model.StatusCompleted, model.StatusPendingVideoGeneration).
		Scan(&stats.Total, &stats.Completed, &stats.PendingVideoGeneration)
	if err != nil {
		return model.LifecycleStats{}, storageError("Failed to count lifecycle records", err)
	}
	return stats, nil
}

func collectLifecycleRecords(rows *sql.Rows) ([]model.LifecycleRecord, error) {
	defer rows.Close()

	records := []model.LifecycleRecord{}
	for rows.Next() {
		rec, err := scanLifecycleRecord(rows)
		if err != nil {
			return nil, storageError("Failed to scan lifecycle record", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("Error occurred while iterating over lifecycle records", err)
	}
	return records, nil
}

func expectOneRow(result sql.Result, notFound string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return storageError("Failed to read affected rows", err)
	}
	if rows == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, notFound, nil)
	}
	return nil
}
