package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCORS(t *testing.T) {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name            string
		allowed         []string
		method          string
		origin          string
		preflight       bool
		wantStatus      int
		wantAllowOrigin string
		wantCredentials string
	}{
		{"listed origin", []string{"https://app.example.com/"}, http.MethodGet, "https://app.example.com", false, http.StatusOK, "https://app.example.com", "true"},
		{"unlisted origin", []string{"https://app.example.com"}, http.MethodGet, "https://evil.example.com", false, http.StatusOK, "", ""},
		{"wildcard", []string{"*"}, http.MethodGet, "https://any.example.com", false, http.StatusOK, "https://any.example.com", ""},
		{"preflight listed", []string{"https://app.example.com"}, http.MethodOptions, "https://app.example.com", true, http.StatusNoContent, "https://app.example.com", "true"},
		{"preflight unlisted", []string{"https://app.example.com"}, http.MethodOptions, "https://evil.example.com", true, http.StatusNoContent, "", ""},
		{"no origin", []string{"*"}, http.MethodPost, "", false, http.StatusOK, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := CORS(tt.allowed, okHandler)
			req := httptest.NewRequest(tt.method, "http://test/events", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantAllowOrigin, rr.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantCredentials, rr.Header().Get("Access-Control-Allow-Credentials"))
			if tt.preflight && tt.wantAllowOrigin != "" {
				assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), "DELETE")
			}
		})
	}
}
