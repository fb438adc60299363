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

package mailer

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/blnkfinance/cartreel/config"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type recordingDialer struct {
	messages []*gomail.Message
	err      error
}

func (d *recordingDialer) DialAndSend(m ...*gomail.Message) error {
	if d.err != nil {
		return d.err
	}
	d.messages = append(d.messages, m...)
	return nil
}

func TestNewSMTPSender(t *testing.T) {
	s := NewSMTPSender(config.SMTPConfig{Host: "smtp.example.com", Port: 587, FromEmail: "shop@example.com"})
	assert.Equal(t, "shop@example.com", s.from)

	d, ok := s.dialer.(*gomail.Dialer)
	require.True(t, ok)
	assert.Equal(t, "smtp.example.com", d.Host)
	assert.Equal(t, 587, d.Port)
	assert.False(t, d.SSL)
}

func TestSMTPSender_Send(t *testing.T) {
	d := &recordingDialer{}
	s := &SMTPSender{from: "shop@example.com", fromName: "Demo Shop", dialer: d}
	to := gofakeit.Email()

	err := s.Send(context.Background(), to, "Your video", "<p>Hi Ana</p>")
	require.NoError(t, err)
	require.Len(t, d.messages, 1)

	m := d.messages[0]
	assert.Equal(t, []string{to}, m.GetHeader("To"))
	assert.Equal(t, []string{"Your video"}, m.GetHeader("Subject"))
	assert.Contains(t, m.GetHeader("From")[0], "shop@example.com")

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "text/html")
	assert.Contains(t, buf.String(), "<p>Hi Ana</p>")
}

func TestSMTPSender_SendErrors(t *testing.T) {
	t.Run("transport failure", func(t *testing.T) {
		s := &SMTPSender{from: "shop@example.com", dialer: &recordingDialer{err: errors.New("connection refused")}}
		err := s.Send(context.Background(), gofakeit.Email(), "s", "b")
		assert.EqualError(t, err, "connection refused")
	})

	t.Run("missing recipient", func(t *testing.T) {
		d := &recordingDialer{}
		s := &SMTPSender{from: "shop@example.com", dialer: d}
		assert.Error(t, s.Send(context.Background(), "  ", "s", "b"))
		assert.Empty(t, d.messages)
	})

	t.Run("cancelled context", func(t *testing.T) {
		d := &recordingDialer{}
		s := &SMTPSender{from: "shop@example.com", dialer: d}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, s.Send(ctx, gofakeit.Email(), "s", "b"), context.Canceled)
		assert.Empty(t, d.messages)
	})
}
