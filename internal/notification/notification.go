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

package notification

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/blnkfinance/cartreel/config"
	"github.com/blnkfinance/cartreel/internal/request"
	"github.com/sirupsen/logrus"
)

const SystemErrorEvent = "system.error"

// WebhookSender forwards an event to the operator webhook.
type WebhookSender func(event string, payload interface{}) error

var (
	senderMu      sync.RWMutex
	webhookSender WebhookSender
)

// RegisterWebhookSender installs the function used to forward system errors to
// the operator webhook. A later registration replaces the earlier one.
func RegisterWebhookSender(sender WebhookSender) {
	senderMu.Lock()
	defer senderMu.Unlock()
	webhookSender = sender
}

type slackText struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

type slackBlock struct {
	Type   string      `json:"type"`
	Text   *slackText  `json:"text,omitempty"`
	Fields []slackText `json:"fields,omitempty"`
}

type slackMessage struct {
	Blocks []slackBlock `json:"blocks"`
}

func slackPayload(err error, at time.Time) slackMessage {
	return slackMessage{Blocks: []slackBlock{
		{Type: "header", Text: &slackText{Type: "plain_text", Text: "Error From Cartreel 🐞", Emoji: true}},
		{Type: "section", Fields: []slackText{{Type: "mrkdwn", Text: fmt.Sprintf("*Error:*\n%v", err.Error())}}},
		{Type: "section", Fields: []slackText{{Type: "mrkdwn", Text: fmt.Sprintf("*Time:*\n%v", at.Format(time.RFC822))}}},
	}}
}

// SlackNotification posts err to the configured Slack incoming webhook.
func SlackNotification(ctx context.Context, webhookURL string, err error) error {
	payload, mErr := request.ToJsonReq(slackPayload(err, time.Now()))
	if mErr != nil {
		return mErr
	}

	req, rErr := http.NewRequest(http.MethodPost, webhookURL, payload)
	if rErr != nil {
		return rErr
	}

	_, cErr := request.Call(ctx, req, nil)
	return cErr
}

func notify(systemError error) {
	logrus.Error(systemError)

	conf, err := config.Fetch()
	if err != nil {
		logrus.Error(err)
		return
	}

	ctx := context.Background()
	if conf.Notification.Slack.WebhookUrl != "" {
		if err := SlackNotification(ctx, conf.Notification.Slack.WebhookUrl, systemError); err != nil {
			logrus.WithError(err).Warn("slack alert failed")
		}
	}

	senderMu.RLock()
	sender := webhookSender
	senderMu.RUnlock()
	if sender != nil {
		if err := sender(SystemErrorEvent, map[string]string{"error": systemError.Error()}); err != nil {
			logrus.WithError(err).Warn("system error webhook failed")
		}
	}
}

// NotifyError logs systemError and alerts operators without blocking the caller.
func NotifyError(systemError error) {
	go notify(systemError)
}
