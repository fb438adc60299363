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
	"net/http"
	"time"

	"github.com/blnkfinance/cartreel/config"
	"github.com/blnkfinance/cartreel/internal/request"
	"github.com/sirupsen/logrus"
)

const webhookTimeout = 10 * time.Second

// NewWebhook represents the structure of an operator webhook notification.
type NewWebhook struct {
	Event     string      `json:"event"`
	Payload   interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// processHTTP posts data to the configured operator webhook.
func processHTTP(ctx context.Context, conf *config.Configuration, data NewWebhook) error {
	payload, err := request.ToJsonReq(data)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, conf.Notification.Webhook.Url, payload)
	if err != nil {
		return err
	}
	for key, value := range conf.Notification.Webhook.Headers {
		req.Header.Set(key, value)
	}

	_, err = request.Call(ctx, req, nil)
	return err
}

// SendWebhook delivers event to the operator webhook, if one is configured. There
// are no retries.
func SendWebhook(event string, payload interface{}) error {
	conf, err := config.Fetch()
	if err != nil {
		return err
	}
	if conf.Notification.Webhook.Url == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), webhookTimeout)
	defer cancel()

	err = processHTTP(ctx, conf, NewWebhook{Event: event, Payload: payload, Timestamp: time.Now().UTC()})
	if err != nil {
		return err
	}
	logrus.WithField("event", event).Debug("webhook notification sent")
	return nil
}

// emit forwards event to the operator webhook without blocking the caller.
func (c *Cartreel) emit(event string, payload interface{}) {
	go func() {
		if err := SendWebhook(event, payload); err != nil {
			logrus.WithField("event", event).WithError(err).Warn("webhook notification failed")
		}
	}()
}
