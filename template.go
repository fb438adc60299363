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

	"github.com/blnkfinance/cartreel/internal/cache"
	"github.com/blnkfinance/cartreel/model"
	"github.com/sirupsen/logrus"
)

// CreateEmailTemplate stores a template for a shop. Creating a default template
// takes the default flag from the previous one.
func (c *Cartreel) CreateEmailTemplate(ctx context.Context, tpl *model.EmailTemplate) error {
	if err := c.datasource.CreateEmailTemplate(ctx, tpl); err != nil {
		return err
	}
	if tpl.IsDefault {
		c.invalidate(ctx, cache.DefaultTemplateKey(tpl.Shop))
	}
	return nil
}

func (c *Cartreel) GetEmailTemplates(ctx context.Context, shop string) ([]model.EmailTemplate, error) {
	return c.datasource.GetEmailTemplates(ctx, shop)
}

// SetDefaultEmailTemplate makes templateID the single default template of shop.
func (c *Cartreel) SetDefaultEmailTemplate(ctx context.Context, shop, templateID string) (*model.EmailTemplate, error) {
	tpl, err := c.datasource.SetDefaultEmailTemplate(ctx, shop, templateID)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, cache.DefaultTemplateKey(shop))
	return tpl, nil
}

func (c *Cartreel) defaultTemplate(ctx context.Context, shop string) (*model.EmailTemplate, error) {
	key := cache.DefaultTemplateKey(shop)
	var cached model.EmailTemplate
	if c.lookup(ctx, key, &cached) {
		return &cached, nil
	}

	tpl, err := c.datasource.GetDefaultEmailTemplate(ctx, shop)
	if err != nil {
		return nil, err
	}
	c.remember(ctx, key, tpl)
	return tpl, nil
}

// lookup reads key from the cache. Cache failures count as a miss.
func (c *Cartreel) lookup(ctx context.Context, key string, data interface{}) bool {
	if c.cache == nil {
		return false
	}
	found, err := c.cache.Get(ctx, key, data)
	if err != nil {
		logrus.WithField("key", key).WithError(err).Warn("cache read failed")
		return false
	}
	return found
}

func (c *Cartreel) remember(ctx context.Context, key string, value interface{}) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Set(ctx, key, value, c.cacheTTL()); err != nil {
		logrus.WithField("key", key).WithError(err).Warn("cache write failed")
	}
}

func (c *Cartreel) invalidate(ctx context.Context, key string) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Delete(ctx, key); err != nil {
		logrus.WithField("key", key).WithError(err).Warn("cache invalidation failed")
	}
}
