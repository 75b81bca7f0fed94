package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mobilehub/internal/models"
	"mobilehub/internal/services"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestAuthentication(t *testing.T) {
	tokens := services.NewTokenService("test-secret", zerolog.Nop())
	token, err := tokens.GenerateToken(7, "user@mobilehub.com", models.RoleUser)
	require.NoError(t, err)

	var gotID int
	var gotRole string
	h := Authentication(tokens, zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = GetUserID(r)
		gotRole, _ = GetUserRole(r)
	}))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"malformed", "Token abc", http.StatusUnauthorized},
		{"garbage", "Bearer abc", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/cart", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
	assert.Equal(t, 7, gotID)
	assert.Equal(t, "user", gotRole)
}

func TestRequireRole(t *testing.T) {
	tokens := services.NewTokenService("test-secret", zerolog.Nop())
	h := Authentication(tokens, zerolog.Nop())(RequireRole(string(models.RoleAdmin))(okHandler))

	userToken, _ := tokens.GenerateToken(2, "user@mobilehub.com", models.RoleUser)
	adminToken, _ := tokens.GenerateToken(1, "admin@mobilehub.com", models.RoleAdmin)

	req := httptest.NewRequest(http.MethodPost, "/products", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "forbidden", body.Error)

	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiter(t *testing.T) {
	h := NewRateLimiter(0, 1).Middleware()(okHandler)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRequestValidation(t *testing.T) {
	h := RequestValidation()(okHandler)

	req := httptest.NewRequest(http.MethodPatch, "/cart/1", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestErrorHandling_RecoversPanics(t *testing.T) {
	h := ErrorHandling(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequestLogging_PropagatesRequestID(t *testing.T) {
	h := RequestLogging(zerolog.Nop())(okHandler)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, rec.Header().Get("X-Request-ID"), 36)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc", rec.Header().Get("X-Request-ID"))
}

type recordedRequest struct {
	method, route string
	status        int
}

type fakeRecorder struct {
	requests []recordedRequest
}

func (f *fakeRecorder) RecordRequest(method, route string, status int, _ time.Duration) {
	f.requests = append(f.requests, recordedRequest{method, route, status})
}
func (f *fakeRecorder) RecordOrderPlaced(float64) {}
func (f *fakeRecorder) RecordUpload(int)          {}

func TestPerformanceMonitoring_UsesRouteTemplate(t *testing.T) {
	rec := &fakeRecorder{}
	r := mux.NewRouter()
	r.Use(PerformanceMonitoring(rec, zerolog.Nop()))
	r.HandleFunc("/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/products/42", nil))

	require.Len(t, rec.requests, 1)
	assert.Equal(t, recordedRequest{http.MethodGet, "/products/{id}", http.StatusNotFound}, rec.requests[0])
}
