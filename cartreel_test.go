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
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/blnkfinance/cartreel/config"
	"github.com/blnkfinance/cartreel/database/mocks"
	"github.com/blnkfinance/cartreel/internal/cache"
	"github.com/blnkfinance/cartreel/internal/metaobject"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

const testShop = "demo.myshopify.com"

type sentEmail struct {
	To      string
	Subject string
	HTML    string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentEmail
	err  error
}

func (f *fakeMailer) Send(_ context.Context, to, subject, html string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentEmail{To: to, Subject: subject, HTML: html})
	return nil
}

func (f *fakeMailer) Sent() []sentEmail {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentEmail(nil), f.sent...)
}

type mirrorUpdate struct {
	ID     string
	Fields metaobject.Fields
}

type fakeMirror struct {
	mu        sync.Mutex
	created   []metaobject.Fields
	updated   []mirrorUpdate
	createErr error
	updateErr error
	onCreate  func()
}

func (f *fakeMirror) Create(_ context.Context, _ string, fields metaobject.Fields) (string, error) {
	if f.onCreate != nil {
		f.onCreate()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	f.created = append(f.created, fields)
	return "gid://shopify/Metaobject/" + fields["product_id"], nil
}

func (f *fakeMirror) Update(_ context.Context, _ string, id string, fields metaobject.Fields) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated = append(f.updated, mirrorUpdate{ID: id, Fields: fields})
	return nil
}

type testEnv struct {
	cartreel *Cartreel
	ds       *mocks.MockDataSource
	mirror   *fakeMirror
	mailer   *fakeMailer
	redis    *miniredis.Miniredis
	config   *config.Configuration
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	conf := &config.Configuration{
		ProjectName: "Cartreel Test",
		Lock:        config.LockConfig{TimeoutSec: 5, WaitTimeoutSec: 1},
		Cache:       config.CacheConfig{TTLSec: 60},
	}
	config.MockConfig(conf)

	env := &testEnv{
		ds:     &mocks.MockDataSource{},
		mirror: &fakeMirror{},
		mailer: &fakeMailer{},
		redis:  mr,
		config: conf,
	}
	env.cartreel = &Cartreel{
		datasource: env.ds,
		redis:      client,
		cache:      cache.NewCache(client),
		mirror:     env.mirror,
		mailer:     env.mailer,
		config:     conf,
	}
	return env
}
