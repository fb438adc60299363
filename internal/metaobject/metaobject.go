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

// Package metaobject mirrors lifecycle records into platform metaobjects
// through the Admin GraphQL API.
package metaobject

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/blnkfinance/cartreel/config"
	"github.com/blnkfinance/cartreel/internal/request"
	"github.com/blnkfinance/cartreel/internal/session"
	"github.com/blnkfinance/cartreel/model"
)

const (
	createMutation = `mutation CreateMetaobject($metaobject: MetaobjectCreateInput!) {
  metaobjectCreate(metaobject: $metaobject) {
    metaobject { id }
    userErrors { field message }
  }
}`
	updateMutation = `mutation UpdateMetaobject($id: ID!, $metaobject: MetaobjectUpdateInput!) {
  metaobjectUpdate(id: $id, metaobject: $metaobject) {
    metaobject { id }
    userErrors { field message }
  }
}`
)

// Fields are the key/value pairs stored on a metaobject.
type Fields map[string]string

// Mirror is the remote store that keeps a copy of every lifecycle record.
type Mirror interface {
	Create(ctx context.Context, shop string, fields Fields) (string, error)
	Update(ctx context.Context, shop, id string, fields Fields) error
}

// RecordFields maps a lifecycle record onto the customer video metaobject definition.
func RecordFields(record model.LifecycleRecord) Fields {
	return Fields{
		"customer_email":      record.CustomerEmail,
		"customer_first_name": record.CustomerFirstName,
		"customer_last_name":  record.CustomerLastName,
		"product_id":          record.ProductID,
		"order_id":            record.OrderID,
		"status":              string(record.Status),
		"created_at":          record.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// StatusFields is the partial update sent when a record changes status.
func StatusFields(status model.LifecycleStatus) Fields {
	return Fields{"status": string(status)}
}

type Client struct {
	sessions   session.Store
	apiVersion string
	objectType string
}

func NewClient(sessions session.Store, cfg config.ShopifyConfig) *Client {
	return &Client{
		sessions:   sessions,
		apiVersion: cfg.ApiVersion,
		objectType: cfg.MetaobjectType,
	}
}

type fieldInput struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

type userError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

type mutationPayload struct {
	Metaobject *struct {
		ID string `json:"id"`
	} `json:"metaobject"`
	UserErrors []userError `json:"userErrors"`
}

type graphQLResponse struct {
	Data   map[string]mutationPayload `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (c *Client) Create(ctx context.Context, shop string, fields Fields) (string, error) {
	payload, err := c.do(ctx, shop, "metaobjectCreate", createMutation, map[string]interface{}{
		"metaobject": map[string]interface{}{
			"type":   c.objectType,
			"fields": toFieldInputs(fields),
		},
	})
	if err != nil {
		return "", err
	}
	if payload.Metaobject == nil || payload.Metaobject.ID == "" {
		return "", errors.New("metaobjectCreate returned no id")
	}
	return payload.Metaobject.ID, nil
}

func (c *Client) Update(ctx context.Context, shop, id string, fields Fields) error {
	_, err := c.do(ctx, shop, "metaobjectUpdate", updateMutation, map[string]interface{}{
		"id": id,
		"metaobject": map[string]interface{}{
			"fields": toFieldInputs(fields),
		},
	})
	return err
}

func (c *Client) endpoint(shop string) string {
	return fmt.Sprintf("https://%s/admin/api/%s/graphql.json", shop, c.apiVersion)
}

func (c *Client) do(ctx context.Context, shop, operation, query string, variables map[string]interface{}) (mutationPayload, error) {
	token, err := c.sessions.AccessToken(ctx, shop)
	if err != nil {
		return mutationPayload{}, err
	}

	body, err := request.ToJsonReq(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return mutationPayload{}, err
	}

	req, err := http.NewRequest(http.MethodPost, c.endpoint(shop), body)
	if err != nil {
		return mutationPayload{}, err
	}
	req.Header.Set("X-Shopify-Access-Token", token)

	var response graphQLResponse
	if _, err = request.Call(ctx, req, &response); err != nil {
		return mutationPayload{}, fmt.Errorf("%s: %w", operation, err)
	}

	if len(response.Errors) > 0 {
		messages := make([]string, 0, len(response.Errors))
		for _, e := range response.Errors {
			messages = append(messages, e.Message)
		}
		return mutationPayload{}, fmt.Errorf("%s: %s", operation, strings.Join(messages, "; "))
	}

	payload := response.Data[operation]
	if len(payload.UserErrors) > 0 {
		e := payload.UserErrors[0]
		return mutationPayload{}, fmt.Errorf("%s: %s %s", operation, strings.Join(e.Field, "."), e.Message)
	}
	return payload, nil
}

func toFieldInputs(fields Fields) []fieldInput {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	inputs := make([]fieldInput, 0, len(keys))
	for _, k := range keys {
		inputs = append(inputs, fieldInput{Key: k, Value: fields[k]})
	}
	return inputs
}
