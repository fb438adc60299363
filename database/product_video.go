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

package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/blnkfinance/cartreel/internal/apierror"
	"github.com/blnkfinance/cartreel/model"
)

// UpsertProductVideo maps a product to its video. A second write for the same
// product replaces the url.
func (d Datasource) UpsertProductVideo(ctx context.Context, video *model.ProductVideo) error {
	video.UpdatedAt = time.Now().UTC()

	_, err := d.Conn.ExecContext(ctx, `
		INSERT INTO product_videos (shop, product_id, video_url, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (shop, product_id)
		DO UPDATE SET video_url = EXCLUDED.video_url, updated_at = EXCLUDED.updated_at
	`, video.Shop, video.ProductID, video.VideoURL, video.UpdatedAt)
	if err != nil {
		return storageError("Failed to save product video", err)
	}
	return nil
}

func (d Datasource) GetProductVideo(ctx context.Context, shop, productID string) (*model.ProductVideo, error) {
	video := model.ProductVideo{}
	err := d.Conn.QueryRowContext(ctx, `
		SELECT shop, product_id, video_url, updated_at
		FROM product_videos
		WHERE shop = $1 AND product_id = $2
	`, shop, productID).Scan(&video.Shop, &video.ProductID, &video.VideoURL, &video.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "Product video not found", nil)
		}
		return nil, storageError("Failed to retrieve product video", err)
	}
	return &video, nil
}

func (d Datasource) GetProductVideos(ctx context.Context, shop string) ([]model.ProductVideo, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT shop, product_id, video_url, updated_at
		FROM product_videos
		WHERE shop = $1
		ORDER BY updated_at DESC
	`, shop)
	if err != nil {
		return nil, storageError("Failed to retrieve product videos", err)
	}
	defer rows.Close()

	videos := []model.ProductVideo{}
	for rows.Next() {
		video := model.ProductVideo{}
		if err := rows.Scan(&video.Shop, &video.ProductID, &video.VideoURL, &video.UpdatedAt); err != nil {
			return nil, storageError("Failed to scan product video", err)
		}
		videos = append(videos, video)
	}
	if err = rows.Err(); err != nil {
		return nil, storageError("Error occurred while iterating over product videos", err)
	}
	return videos, nil
}
