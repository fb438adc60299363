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
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
)

const templateColumns = `template_id, shop, name, subject, body, is_default, created_at`

// lockShopTemplates serializes default reassignment for a shop until the
// surrounding transaction ends.
const lockShopTemplates = `SELECT pg_advisory_xact_lock(hashtext('email_templates:' || $1))`

func scanEmailTemplate(row rowScanner) (model.EmailTemplate, error) {
	var tpl model.EmailTemplate
	err := row.Scan(&tpl.TemplateID, &tpl.Shop, &tpl.Name, &tpl.Subject, &tpl.Body, &tpl.IsDefault, &tpl.CreatedAt)
	return tpl, err
}

func rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
		logrus.WithError(err).Warn("rollback failed")
	}
}

// CreateEmailTemplate stores tpl. A default template takes over the default
// flag from the shop's previous default in the same transaction.
func (d Datasource) CreateEmailTemplate(ctx context.Context, tpl *model.EmailTemplate) error {
	ctx, span := otel.Tracer("EmailTemplate").Start(ctx, "Saving email template to db")
	defer span.End()

	tpl.TemplateID = model.GenerateUUIDWithSuffix(model.TemplateIDPrefix)
	tpl.CreatedAt = time.Now().UTC()

	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return storageError("Failed to begin transaction", err)
	}
	defer rollback(tx)

	if tpl.IsDefault {
		if _, err = tx.ExecContext(ctx, lockShopTemplates, tpl.Shop); err != nil {
			return storageError("Failed to lock shop templates", err)
		}
		if _, err = tx.ExecContext(ctx, `
			UPDATE email_templates SET is_default = FALSE
			WHERE shop = $1 AND is_default
		`, tpl.Shop); err != nil {
			return storageError("Failed to clear default template", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO email_templates (template_id, shop, name, subject, body, is_default, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, tpl.TemplateID, tpl.Shop, tpl.Name, tpl.Subject, tpl.Body, tpl.IsDefault, tpl.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apierror.NewAPIError(apierror.ErrConflict, "Another default template was set concurrently", err)
		}
		return storageError("Failed to create email template", err)
	}

	if err = tx.Commit(); err != nil {
		return storageError("Failed to commit email template", err)
	}
	return nil
}

// SetDefaultEmailTemplate makes templateID the only default template of shop.
// Clearing the previous default and setting the new one commit together.
func (d Datasource) SetDefaultEmailTemplate(ctx context.Context, shop, templateID string) (*model.EmailTemplate, error) {
	ctx, span := otel.Tracer("EmailTemplate").Start(ctx, "Setting default email template")
	defer span.End()

	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageError("Failed to begin transaction", err)
	}
	defer rollback(tx)

	if _, err = tx.ExecContext(ctx, lockShopTemplates, shop); err != nil {
		return nil, storageError("Failed to lock shop templates", err)
	}

	tpl, err := scanEmailTemplate(tx.QueryRowContext(ctx, `
		SELECT `+templateColumns+`
		FROM email_templates
		WHERE template_id = $1 AND shop = $2
		FOR UPDATE
	`, templateID, shop))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "Email template not found", err)
		}
		return nil, storageError("Failed to retrieve email template", err)
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE email_templates SET is_default = FALSE
		WHERE shop = $1 AND is_default AND template_id <> $2
	`, shop, templateID); err != nil {
		return nil, storageError("Failed to clear default template", err)
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE email_templates SET is_default = TRUE
		WHERE template_id = $1
	`, templateID); err != nil {
		return nil, storageError("Failed to set default template", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, storageError("Failed to commit default template", err)
	}

	tpl.IsDefault = true
	return &tpl, nil
}

// GetDefaultEmailTemplate returns the most recently created default template of shop.
func (d Datasource) GetDefaultEmailTemplate(ctx context.Context, shop string) (*model.EmailTemplate, error) {
	ctx, span := otel.Tracer("EmailTemplate").Start(ctx, "Fetching default email template")
	defer span.End()

	tpl, err := scanEmailTemplate(d.Conn.QueryRowContext(ctx, `
		SELECT `+templateColumns+`
		FROM email_templates
		WHERE shop = $1 AND is_default
		ORDER BY created_at DESC
		LIMIT 1
	`, shop))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "No default email template", nil)
		}
		return nil, storageError("Failed to retrieve default template", err)
	}
	return &tpl, nil
}

func (d Datasource) GetEmailTemplates(ctx context.Context, shop string) ([]model.EmailTemplate, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT `+templateColumns+`
		FROM email_templates
		WHERE shop = $1
		ORDER BY created_at DESC
	`, shop)
	if err != nil {
		return nil, storageError("Failed to retrieve email templates", err)
	}
	defer rows.Close()

	templates := []model.EmailTemplate{}
	for rows.Next() {
		tpl, err := scanEmailTemplate(rows)
		if err != nil {
			return nil, storageError("Failed to scan email template", err)
		}
		templates = append(templates, tpl)
	}
	if err = rows.Err(); err != nil {
		return nil, storageError("Error occurred while iterating over email templates", err)
	}
	return templates, nil
}
