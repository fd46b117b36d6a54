package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireSession(t *testing.T) {
	a, _ := newTestAuthenticator(t)
	session, err := a.Login(context.Background(), "ops@example.com", "s3cret")
	require.NoError(t, err)

	protected := a.RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		admin, ok := AdminFromContext(r.Context())
		if !ok {
			t.Error("admin missing from context")
		}
		_, _ = w.Write([]byte(admin.Email))
	}))

	tests := []struct {
		name       string
		setup      func(r *http.Request)
		wantStatus int
	}{
		{
			name:       "Bearer token",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+session.Token) },
			wantStatus: http.StatusOK,
		},
		{
			name:       "Session cookie",
			setup:      func(r *http.Request) { r.AddCookie(&http.Cookie{Name: SessionCookie, Value: session.Token}) },
			wantStatus: http.StatusOK,
		},
		{
			name:       "No credentials",
			setup:      func(r *http.Request) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "Unknown token",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "Wrong scheme",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Basic "+session.Token) },
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/me", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()

			protected.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "ops@example.com", rec.Body.String())
			}
		})
	}
}
