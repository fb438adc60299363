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
package model

import (
	"strings"

	"github.com/blnkfinance/cartreel/internal/session"
	"github.com/blnkfinance/cartreel/model"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

func shopRules() []validation.Rule {
	return []validation.Rule{validation.Required, validation.Length(3, 255)}
}

func (t *CreateEmailTemplate) ValidateCreateEmailTemplate() error {
	return validation.ValidateStruct(t,
		validation.Field(&t.Shop, shopRules()...),
		validation.Field(&t.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&t.Subject, validation.Required, validation.Length(1, 998)),
		validation.Field(&t.Body, validation.Required),
	)
}

func (t *CreateEmailTemplate) ToEmailTemplate() *model.EmailTemplate {
	return &model.EmailTemplate{
		Shop:      session.NormalizeShop(t.Shop),
		Name:      t.Name,
		Subject:   t.Subject,
		Body:      t.Body,
		IsDefault: t.IsDefault,
	}
}

func (s *SetDefaultTemplate) ValidateSetDefaultTemplate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.Shop, shopRules()...),
	)
}

func (v *UpsertProductVideo) ValidateUpsertProductVideo() error {
	return validation.ValidateStruct(v,
		validation.Field(&v.Shop, shopRules()...),
		validation.Field(&v.ProductID, validation.Required),
		validation.Field(&v.VideoURL, validation.Required, is.URL),
	)
}

func (v *UpsertProductVideo) ToProductVideo() *model.ProductVideo {
	return &model.ProductVideo{
		Shop:      session.NormalizeShop(v.Shop),
		ProductID: strings.TrimSpace(v.ProductID),
		VideoURL:  strings.TrimSpace(v.VideoURL),
	}
}

func (q *ShopQuery) ValidateShopQuery() error {
	return validation.ValidateStruct(q,
		validation.Field(&q.Shop, shopRules()...),
	)
}

func (l *ListLifecycleRecords) ValidateListLifecycleRecords() error {
	return validation.ValidateStruct(l,
		validation.Field(&l.Shop, shopRules()...),
		validation.Field(&l.Limit, validation.Min(0)),
		validation.Field(&l.Offset, validation.Min(0)),
	)
}
