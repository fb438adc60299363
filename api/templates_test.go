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

package api

import (
	"net/http"
	"testing"

	model2 "github.com/blnkfinance/cartreel/api/model"
	"github.com/blnkfinance/cartreel/config"
	"github.com/blnkfinance/cartreel/internal/apierror"
	"github.com/blnkfinance/cartreel/internal/request"
	"github.com/blnkfinance/cartreel/model"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreateEmailTemplate(t *testing.T) {
	tests := []struct {
		name         string
		payload      model2.CreateEmailTemplate
		storeErr     error
		expectedCode int
	}{
		{
			name: "Valid default template",
			payload: model2.CreateEmailTemplate{
				Shop:      testShop,
				Name:      gofakeit.BuzzWord(),
				Subject:   "We saved your cart, {{customer_first_name}}",
				Body:      "<p>{{video_link}}</p>",
				IsDefault: true,
			},
			expectedCode: http.StatusCreated,
		},
		{
			name: "Missing body",
			payload: model2.CreateEmailTemplate{
				Shop:    testShop,
				Name:    "reminder",
				Subject: "Hello",
			},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "Missing shop",
			payload: model2.CreateEmailTemplate{
				Name:    "reminder",
				Subject: "Hello",
				Body:    "<p>hi</p>",
			},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "Concurrent default",
			payload: model2.CreateEmailTemplate{
				Shop:      testShop,
				Name:      "reminder",
				Subject:   "Hello",
				Body:      "<p>hi</p>",
				IsDefault: true,
			},
			storeErr:     apierror.NewAPIError(apierror.ErrConflict, "Another default template was set concurrently", nil),
			expectedCode: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := setupRouter(t)
			ts.ds.On("CreateEmailTemplate", mock.Anything, mock.AnythingOfType("*model.EmailTemplate")).
				Run(func(args mock.Arguments) {
					args.Get(1).(*model.EmailTemplate).TemplateID = "tpl_1"
				}).Return(tt.storeErr)

			payloadBytes, _ := request.ToJsonReq(&tt.payload)
			var response map[string]interface{}
			resp, err := SetUpTestRequest(TestRequest{
				Payload:  payloadBytes,
				Response: &response,
				Method:   "POST",
				Route:    "/templates",
				Router:   ts.router,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.expectedCode, resp.Code)

			if tt.expectedCode == http.StatusCreated {
				assert.Equal(t, "tpl_1", response["template_id"])
				assert.Equal(t, testShop, response["shop"])
				assert.Equal(t, true, response["is_default"])
			}
		})
	}
}

func TestGetEmailTemplates(t *testing.T) {
	ts := setupRouter(t)
	ts.ds.On("GetEmailTemplates", mock.Anything, testShop).Return([]model.EmailTemplate{
		{TemplateID: "tpl_2", Shop: testShop, Name: "second", IsDefault: true},
		{TemplateID: "tpl_1", Shop: testShop, Name: "first"},
	}, nil)

	var response []model.EmailTemplate
	resp, err := SetUpTestRequest(TestRequest{
		Response: &response,
		Method:   "GET",
		Route:    "/templates?shop=DEMO.myshopify.com",
		Router:   ts.router,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Code)
	require.Len(t, response, 2)
	assert.Equal(t, "tpl_2", response[0].TemplateID)

	var errResponse map[string]interface{}
	resp, err = SetUpTestRequest(TestRequest{
		Response: &errResponse,
		Method:   "GET",
		Route:    "/templates",
		Router:   ts.router,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestSetDefaultEmailTemplate(t *testing.T) {
	ts := setupRouter(t)
	ts.ds.On("SetDefaultEmailTemplate", mock.Anything, testShop, "tpl_1").
		Return(&model.EmailTemplate{TemplateID: "tpl_1", Shop: testShop, IsDefault: true}, nil)
	ts.ds.On("SetDefaultEmailTemplate", mock.Anything, testShop, "tpl_missing").
		Return(nil, apierror.NewAPIError(apierror.ErrNotFound, "Email template not found", nil))

	payloadBytes, _ := request.ToJsonReq(&model2.SetDefaultTemplate{Shop: testShop})
	var response map[string]interface{}
	resp, err := SetUpTestRequest(TestRequest{
		Payload:  payloadBytes,
		Response: &response,
		Method:   "PUT",
		Route:    "/templates/tpl_1/default",
		Router:   ts.router,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, true, response["is_default"])

	payloadBytes, _ = request.ToJsonReq(&model2.SetDefaultTemplate{Shop: testShop})
	response = nil
	resp, err = SetUpTestRequest(TestRequest{
		Payload:  payloadBytes,
		Response: &response,
		Method:   "PUT",
		Route:    "/templates/tpl_missing/default",
		Router:   ts.router,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestAdminRoutesRequireSecretKey(t *testing.T) {
	ts := setupRouter(t, func(conf *config.Configuration) {
		conf.Server.Secure = true
		conf.Server.SecretKey = "admin-secret"
	})
	ts.ds.On("GetEmailTemplates", mock.Anything, testShop).Return([]model.EmailTemplate{}, nil)

	tests := []struct {
		name         string
		auth         string
		expectedCode int
	}{
		{name: "No key", auth: "", expectedCode: http.StatusUnauthorized},
		{name: "Wrong key", auth: "guess", expectedCode: http.StatusUnauthorized},
		{name: "Correct key", auth: "admin-secret", expectedCode: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var response interface{}
			resp, err := SetUpTestRequest(TestRequest{
				Response: &response,
				Method:   "GET",
				Route:    "/templates?shop=" + testShop,
				Auth:     tt.auth,
				Router:   ts.router,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.expectedCode, resp.Code)
		})
	}
}
