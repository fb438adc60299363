package model

type UpsertProductVideo struct {
	Shop      string `json:"shop"`
	ProductID string `json:"product_id"`
	VideoURL  string `json:"video_url"`
}
