package model

type ShopQuery struct {
	Shop string `form:"shop"`
}

type ListLifecycleRecords struct {
	Shop   string `form:"shop"`
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
}
