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
	"encoding/json"
	"net/http"
	"testing"

	"github.com/blnkfinance/cartreel/config"
	"github.com/blnkfinance/cartreel/internal/request"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const operatorWebhookURL = "https://ops.example.com/hooks/cartreel"

func TestSendWebhook(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	config.MockConfig(&config.Configuration{
		Notification: config.Notification{Webhook: config.WebhookConfig{
			Url:     operatorWebhookURL,
			Headers: map[string]string{"X-Signature": "s3cret"},
		}},
	})

	var received NewWebhook
	var signature string
	httpmock.RegisterResponder(http.MethodPost, operatorWebhookURL,
		func(req *http.Request) (*http.Response, error) {
			signature = req.Header.Get("X-Signature")
			if err := json.NewDecoder(req.Body).Decode(&received); err != nil {
				return httpmock.NewStringResponse(http.StatusBadRequest, ""), nil
			}
			return httpmock.NewStringResponse(http.StatusOK, `{"ok": true}`), nil
		})

	err := SendWebhook(StatusChangedEvent, StatusChange{RecordID: "lcr_1", From: "checkout_created", To: "checkout_updated"})
	require.NoError(t, err)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
	assert.Equal(t, StatusChangedEvent, received.Event)
	assert.Equal(t, "s3cret", signature)
	assert.False(t, received.Timestamp.IsZero())

	data, ok := received.Payload.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "checkout_updated", data["to"])
}

func TestSendWebhook_NotConfigured(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	config.MockConfig(&config.Configuration{})

	assert.NoError(t, SendWebhook(NotificationSentEvent, map[string]string{"order_id": "1001"}))
	assert.Equal(t, 0, httpmock.GetTotalCallCount())
}

func TestSendWebhook_RemoteFailure(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	config.MockConfig(&config.Configuration{
		Notification: config.Notification{Webhook: config.WebhookConfig{Url: operatorWebhookURL}},
	})
	httpmock.RegisterResponder(http.MethodPost, operatorWebhookURL, httpmock.NewStringResponder(http.StatusBadGateway, "upstream down"))

	err := SendWebhook(StatusChangedEvent, nil)
	var statusErr *request.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
}
