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

package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/blnkfinance/cartreel"
	"github.com/blnkfinance/cartreel/api/middleware"
	"github.com/blnkfinance/cartreel/config"
	"github.com/blnkfinance/cartreel/database/mocks"
	"github.com/blnkfinance/cartreel/internal/cache"
	"github.com/blnkfinance/cartreel/internal/metaobject"
	"github.com/blnkfinance/cartreel/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

const (
	testShop   = "demo.myshopify.com"
	testSecret = "shpss_test_secret"
)

type TestRequest struct {
	Payload  io.Reader
	Router   *gin.Engine
	Response interface{}
	Method   string
	Route    string
	Auth     string
	Header   map[string]string
}

func SetUpTestRequest(s TestRequest) (*httptest.ResponseRecorder, error) {
	req := httptest.NewRequest(s.Method, s.Route, s.Payload)
	for key, value := range s.Header {
		req.Header.Set(key, value)
	}
	if s.Auth != "" {
		req.Header.Set(middleware.KeyHeader, s.Auth)
	}
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	s.Router.ServeHTTP(resp, req)

	err := json.NewDecoder(resp.Body).Decode(&s.Response)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

type stubMailer struct {
	mu   sync.Mutex
	sent []string
}

func (s *stubMailer) Send(_ context.Context, to, _, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, to)
	return nil
}

func (s *stubMailer) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

type stubMirror struct{}

func (stubMirror) Create(_ context.Context, _ string, fields metaobject.Fields) (string, error) {
	return "gid://shopify/Metaobject/" + fields["product_id"], nil
}

func (stubMirror) Update(context.Context, string, string, metaobject.Fields) error {
	return nil
}

type testServer struct {
	router *gin.Engine
	ds     *mocks.MockDataSource
	mailer *stubMailer
	conf   *config.Configuration
}

func setupRouter(t *testing.T, mutate ...func(*config.Configuration)) *testServer {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	conf := &config.Configuration{
		ProjectName: "Cartreel Test",
		Shopify: config.ShopifyConfig{
			ApiSecret:    testSecret,
			AccessTokens: map[string]string{testShop: "shpat_token"},
		},
		Lock:  config.LockConfig{TimeoutSec: 5, WaitTimeoutSec: 1},
		Cache: config.CacheConfig{TTLSec: 60},
	}
	for _, m := range mutate {
		m(conf)
	}
	config.MockConfig(conf)

	ds := &mocks.MockDataSource{}
	sender := &stubMailer{}
	c := cartreel.New(cartreel.Dependencies{
		DataSource: ds,
		Redis:      client,
		Cache:      cache.NewCache(client),
		Mirror:     stubMirror{},
		Mailer:     sender,
		Sessions:   session.NewStaticStore(conf.Shopify),
	}, conf)

	a := NewAPI(c)
	require.NotNil(t, a)
	return &testServer{router: a.Router(), ds: ds, mailer: sender, conf: conf}
}
