package controllers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evently/internal/delivery/http/helpers"
	"evently/internal/domain"
)

func TestCategoryController_CreateCategory(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{"created", `{"name":"Music"}`, nil, http.StatusCreated, ""},
		{"empty name", `{"name":" "}`, nil, http.StatusBadRequest, helpers.ErrCodeBadRequest},
		{"unknown field", `{"name":"Music","color":"red"}`, nil, http.StatusBadRequest, helpers.ErrCodeBadRequest},
		{"duplicate", `{"name":"Music"}`, domain.ErrDuplicateName, http.StatusConflict, helpers.ErrCodeConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newFakeEventService()
			svc.createCategoryErr = tt.serviceErr
			ctrl := NewCategoryController(testLogger, svc)

			req := httptest.NewRequest(http.MethodPost, "/categories", bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()
			ctrl.CreateCategory(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			var got domain.Category
			apiErr := decodeEnvelope(t, rr, &got)
			if tt.wantCode != "" {
				require.NotNil(t, apiErr)
				assert.Equal(t, tt.wantCode, apiErr.Code)
				return
			}
			assert.Equal(t, "Music", got.Name)
			assert.Equal(t, "Music", svc.lastCategoryName)
		})
	}
}

func TestCategoryController_ListCategories(t *testing.T) {
	svc := newFakeEventService()
	ctrl := NewCategoryController(testLogger, svc)

	rr := httptest.NewRecorder()
	ctrl.ListCategories(rr, httptest.NewRequest(http.MethodGet, "/categories", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"data":[],"error":null}`, rr.Body.String())

	svc.categories = []*domain.Category{{ID: "c-1", Name: "Music"}}
	rr = httptest.NewRecorder()
	ctrl.ListCategories(rr, httptest.NewRequest(http.MethodGet, "/categories", nil))
	var got []domain.Category
	require.Nil(t, decodeEnvelope(t, rr, &got))
	assert.Equal(t, []domain.Category{{ID: "c-1", Name: "Music"}}, got)
}
