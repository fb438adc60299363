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
	"testing"

	"github.com/blnkfinance/cartreel/internal/apierror"
	"github.com/blnkfinance/cartreel/internal/cache"
	"github.com/blnkfinance/cartreel/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSetDefaultEmailTemplate_InvalidatesCache(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first := defaultTemplateFixture()
	second := &model.EmailTemplate{TemplateID: "tpl_2", Shop: testShop, Subject: "New", Body: "New body", IsDefault: true}

	env.ds.On("GetDefaultEmailTemplate", mock.Anything, testShop).Return(first, nil).Once()
	env.ds.On("SetDefaultEmailTemplate", mock.Anything, testShop, "tpl_2").Return(second, nil).Once()
	env.ds.On("GetDefaultEmailTemplate", mock.Anything, testShop).Return(second, nil).Once()

	tpl, err := env.cartreel.defaultTemplate(ctx, testShop)
	require.NoError(t, err)
	assert.Equal(t, "tpl_1", tpl.TemplateID)
	assert.True(t, env.redis.Exists(cache.DefaultTemplateKey(testShop)))

	_, err = env.cartreel.SetDefaultEmailTemplate(ctx, testShop, "tpl_2")
	require.NoError(t, err)
	assert.False(t, env.redis.Exists(cache.DefaultTemplateKey(testShop)))

	tpl, err = env.cartreel.defaultTemplate(ctx, testShop)
	require.NoError(t, err)
	assert.Equal(t, "tpl_2", tpl.TemplateID)
	env.ds.AssertExpectations(t)
}

func TestSetDefaultEmailTemplate_NotFoundKeepsCache(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.ds.On("GetDefaultEmailTemplate", mock.Anything, testShop).Return(defaultTemplateFixture(), nil).Once()
	env.ds.On("SetDefaultEmailTemplate", mock.Anything, testShop, "tpl_missing").
		Return(nil, apierror.NewAPIError(apierror.ErrNotFound, "Email template not found", nil))

	_, err := env.cartreel.defaultTemplate(ctx, testShop)
	require.NoError(t, err)

	_, err = env.cartreel.SetDefaultEmailTemplate(ctx, testShop, "tpl_missing")
	assert.True(t, apierror.Is(err, apierror.ErrNotFound))
	assert.True(t, env.redis.Exists(cache.DefaultTemplateKey(testShop)))
}

func TestCreateEmailTemplate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.redis.Set(cache.DefaultTemplateKey(testShop), "stale"))

	plain := &model.EmailTemplate{Shop: testShop, Name: "Draft", Subject: "s", Body: "b"}
	env.ds.On("CreateEmailTemplate", mock.Anything, plain).Return(nil).Once()
	require.NoError(t, env.cartreel.CreateEmailTemplate(ctx, plain))
	assert.True(t, env.redis.Exists(cache.DefaultTemplateKey(testShop)), "a non default template leaves the cache alone")

	def := &model.EmailTemplate{Shop: testShop, Name: "Recovery", Subject: "s", Body: "b", IsDefault: true}
	env.ds.On("CreateEmailTemplate", mock.Anything, def).Return(nil).Once()
	require.NoError(t, env.cartreel.CreateEmailTemplate(ctx, def))
	assert.False(t, env.redis.Exists(cache.DefaultTemplateKey(testShop)))
	env.ds.AssertExpectations(t)
}

func TestDefaultTemplate_CacheDisabled(t *testing.T) {
	env := newTestEnv(t)
	env.cartreel.cache = nil

	env.ds.On("GetDefaultEmailTemplate", mock.Anything, testShop).Return(defaultTemplateFixture(), nil).Twice()

	for i := 0; i < 2; i++ {
		_, err := env.cartreel.defaultTemplate(context.Background(), testShop)
		require.NoError(t, err)
	}
	env.ds.AssertExpectations(t)
}
