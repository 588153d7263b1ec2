package controllers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evently/internal/domain"
)

func TestUserController_GetMe(t *testing.T) {
	tests := []struct {
		name       string
		externalID string
		svc        *fakeUserSyncService
		wantStatus int
	}{
		{"mirrored user", "user_2abc", registeredUsers(), http.StatusOK},
		{"no auth context", "", registeredUsers(), http.StatusUnauthorized},
		{"not mirrored", "user_new", &fakeUserSyncService{}, http.StatusForbidden},
		{"lookup failure", "user_2abc", &fakeUserSyncService{getErr: errors.New("db down")}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewUserController(testLogger, tt.svc)
			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			if tt.externalID != "" {
				req = authed(req, tt.externalID)
			}
			rr := httptest.NewRecorder()
			ctrl.GetMe(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusOK {
				var got domain.User
				require.Nil(t, decodeEnvelope(t, rr, &got))
				assert.Equal(t, testLocalUser, got.ID)
				assert.Equal(t, []string{"user_2abc"}, tt.svc.lookups)
			}
		})
	}
}
