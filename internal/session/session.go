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

// Package session resolves the offline access token of an installed shop.
package session

import (
	"context"
	"errors"
	"strings"

	"github.com/blnkfinance/cartreel/config"
)

var ErrNoSession = errors.New("no session for shop")

// Store yields the Admin API access token of a shop. A shop without a token is
// not installed and its webhooks are rejected.
type Store interface {
	AccessToken(ctx context.Context, shop string) (string, error)
}

// StaticStore serves tokens from configuration.
type StaticStore struct {
	tokens map[string]string
}

func NewStaticStore(cfg config.ShopifyConfig) *StaticStore {
	tokens := make(map[string]string, len(cfg.AccessTokens))
	for shop, token := range cfg.AccessTokens {
		tokens[NormalizeShop(shop)] = token
	}
	return &StaticStore{tokens: tokens}
}

func (s *StaticStore) AccessToken(_ context.Context, shop string) (string, error) {
	token, ok := s.tokens[NormalizeShop(shop)]
	if !ok || token == "" {
		return "", ErrNoSession
	}
	return token, nil
}

// NormalizeShop is the canonical form of a shop domain used for every lookup and key.
func NormalizeShop(shop string) string {
	return strings.ToLower(strings.TrimSpace(shop))
}
