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
	"errors"
	"net/http"
	"testing"

	"github.com/blnkfinance/cartreel/internal/apierror"
	"github.com/blnkfinance/cartreel/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGetLifecycleRecords(t *testing.T) {
	tests := []struct {
		name          string
		route         string
		expectedLimit int
		expectedSkip  int
		expectedCode  int
	}{
		{name: "Defaults", route: "/lifecycle-records?shop=" + testShop, expectedLimit: 50, expectedCode: http.StatusOK},
		{name: "Paged", route: "/lifecycle-records?shop=" + testShop + "&limit=10&offset=20", expectedLimit: 10, expectedSkip: 20, expectedCode: http.StatusOK},
		{name: "Limit too large", route: "/lifecycle-records?shop=" + testShop + "&limit=10000", expectedLimit: 50, expectedCode: http.StatusOK},
		{name: "Missing shop", route: "/lifecycle-records", expectedCode: http.StatusBadRequest},
		{name: "Non numeric limit", route: "/lifecycle-records?shop=" + testShop + "&limit=ten", expectedCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := setupRouter(t)
			ts.ds.On("GetLifecycleRecords", mock.Anything, testShop, tt.expectedLimit, tt.expectedSkip).
				Return([]model.LifecycleRecord{{RecordID: "rec_1", Shop: testShop, Status: model.StatusCheckoutCreated}}, nil)

			var response interface{}
			resp, err := SetUpTestRequest(TestRequest{
				Response: &response,
				Method:   "GET",
				Route:    tt.route,
				Router:   ts.router,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.expectedCode, resp.Code)
			if tt.expectedCode == http.StatusOK {
				ts.ds.AssertExpectations(t)
			}
		})
	}
}

func TestGetLifecycleStats(t *testing.T) {
	ts := setupRouter(t)
	ts.ds.On("GetLifecycleStats", mock.Anything, testShop).
		Return(model.LifecycleStats{Total: 12, Completed: 3, PendingVideoGeneration: 4}, nil).Once()

	var stats model.LifecycleStats
	resp, err := SetUpTestRequest(TestRequest{
		Response: &stats,
		Method:   "GET",
		Route:    "/lifecycle-records/stats?shop=" + testShop,
		Router:   ts.router,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, int64(12), stats.Total)
	assert.Equal(t, int64(4), stats.PendingVideoGeneration)

	ts.ds.On("GetLifecycleStats", mock.Anything, testShop).
		Return(model.LifecycleStats{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to count lifecycle records", errors.New("timeout"))).Once()

	var response map[string]interface{}
	resp, err = SetUpTestRequest(TestRequest{
		Response: &response,
		Method:   "GET",
		Route:    "/lifecycle-records/stats?shop=" + testShop,
		Router:   ts.router,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
}

func TestGetLifecycleRecord(t *testing.T) {
	ts := setupRouter(t)
	ts.ds.On("GetLifecycleRecordByID", mock.Anything, "lcr_1").
		Return(&model.LifecycleRecord{RecordID: "lcr_1", Shop: testShop, OrderID: "1001", Status: model.StatusCheckoutAbandoned}, nil)
	ts.ds.On("GetNotificationDelivery", mock.Anything, testShop, "1001").
		Return(&model.NotificationDelivery{Shop: testShop, OrderID: "1001", Status: model.DeliverySent}, nil)

	var response map[string]interface{}
	resp, err := SetUpTestRequest(TestRequest{
		Response: &response,
		Method:   "GET",
		Route:    "/lifecycle-records/lcr_1?shop=" + testShop,
		Router:   ts.router,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "lcr_1", response["record_id"])
	assert.Equal(t, string(model.StatusCheckoutAbandoned), response["status"])
	notification, ok := response["notification"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, string(model.DeliverySent), notification["status"])
}

func TestGetLifecycleRecord_NotFound(t *testing.T) {
	ts := setupRouter(t)
	ts.ds.On("GetLifecycleRecordByID", mock.Anything, "lcr_missing").
		Return(nil, apierror.NewAPIError(apierror.ErrNotFound, "Lifecycle record not found", nil))

	var response map[string]interface{}
	resp, err := SetUpTestRequest(TestRequest{
		Response: &response,
		Method:   "GET",
		Route:    "/lifecycle-records/lcr_missing?shop=" + testShop,
		Router:   ts.router,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp, err = SetUpTestRequest(TestRequest{
		Response: &response,
		Method:   "GET",
		Route:    "/lifecycle-records/lcr_missing",
		Router:   ts.router,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
