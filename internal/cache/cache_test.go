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
package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/blnkfinance/cartreel/model"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewCache(client), mr
}

func TestSetAndGet(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	video := model.ProductVideo{Shop: "demo.myshopify.com", ProductID: "P1", VideoURL: "http://x/v.mp4"}
	key := ProductVideoKey(video.Shop, video.ProductID)
	require.NoError(t, c.Set(ctx, key, video, 10*time.Minute))

	var got model.ProductVideo
	found, err := c.Get(ctx, key, &got)
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, video.VideoURL, got.VideoURL)
	assert.Equal(t, video.ProductID, got.ProductID)
}

func TestGetMiss(t *testing.T) {
	c, _ := newTestCache(t)

	var got model.EmailTemplate
	found, err := c.Get(context.Background(), DefaultTemplateKey("demo.myshopify.com"), &got)
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, got.TemplateID)
}

func TestDelete(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	key := DefaultTemplateKey("demo.myshopify.com")

	require.NoError(t, c.Set(ctx, key, model.EmailTemplate{TemplateID: "tpl_1"}, time.Minute))
	assert.True(t, mr.Exists(key))

	require.NoError(t, c.Delete(ctx, key))
	assert.False(t, mr.Exists(key))

	// deleting again is a no-op
	assert.NoError(t, c.Delete(ctx, key))
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "template:default:demo.myshopify.com", DefaultTemplateKey("demo.myshopify.com"))
	assert.Equal(t, "product-video:demo.myshopify.com:P1", ProductVideoKey("demo.myshopify.com", "P1"))
}
