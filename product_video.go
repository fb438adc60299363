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
)

// UpsertProductVideo maps a product to its video, replacing any earlier url.
func (c *Cartreel) UpsertProductVideo(ctx context.Context, video *model.ProductVideo) error {
	if err := c.datasource.UpsertProductVideo(ctx, video); err != nil {
		return err
	}
	c.invalidate(ctx, cache.ProductVideoKey(video.Shop, video.ProductID))
	return nil
}

func (c *Cartreel) GetProductVideos(ctx context.Context, shop string) ([]model.ProductVideo, error) {
	return c.datasource.GetProductVideos(ctx, shop)
}

func (c *Cartreel) productVideo(ctx context.Context, shop, productID string) (*model.ProductVideo, error) {
	key := cache.ProductVideoKey(shop, productID)
	var cached model.ProductVideo
	if c.lookup(ctx, key, &cached) {
		return &cached, nil
	}

	video, err := c.datasource.GetProductVideo(ctx, shop, productID)
	if err != nil {
		return nil, err
	}
	c.remember(ctx, key, video)
	return video, nil
}
