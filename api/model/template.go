package model

type CreateEmailTemplate struct {
	Shop      string `json:"shop"`
	Name      string `json:"name"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	IsDefault bool   `json:"is_default"`
}

type SetDefaultTemplate struct {
	Shop string `json:"shop"`
}
