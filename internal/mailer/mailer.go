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

// Package mailer delivers abandonment emails over SMTP.
package mailer

import (
	"context"
	"errors"
	"strings"

	"github.com/blnkfinance/cartreel/config"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// Sender is the mail transport used by the notification pipeline.
type Sender interface {
	Send(ctx context.Context, to, subject, html string) error
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender sends HTML mail through a single SMTP relay.
type SMTPSender struct {
	from     string
	fromName string
	dialer   dialer
}

// NewSMTPSender builds a sender from the smtp config. Authentication is only
// attempted when a username is set; port 465 switches to implicit TLS.
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{
		from:     cfg.FromEmail,
		fromName: cfg.FromName,
		dialer:   gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, html string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	to = strings.TrimSpace(to)
	if to == "" {
		return errors.New("recipient address is required")
	}

	m := gomail.NewMessage()
	if s.fromName != "" {
		m.SetHeader("From", m.FormatAddress(s.from, s.fromName))
	} else {
		m.SetHeader("From", s.from)
	}
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)

	if err := s.dialer.DialAndSend(m); err != nil {
		logrus.WithFields(logrus.Fields{"to": to, "subject": subject}).WithError(err).Error("smtp delivery failed")
		return err
	}
	return nil
}
