package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"banyabot/internal/config"
)

func authConfig(keys []config.APIClientKey, rps float64, burst int) config.APIConfig {
	return config.APIConfig{
		Enabled: true,
		HTTP:    config.APIHTTPConfig{Enabled: true, Port: 8080},
		Auth:    config.APIAuthConfig{Enabled: true, APIKeys: keys},
		RateLimit: config.APIRateLimitConfig{
			RPS:   rps,
			Burst: burst,
		},
	}
}

func doRequest(t *testing.T, auth *HTTPAuth, method, path string, headers map[string]string) int {
	t.Helper()
	handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec.Code
}

func TestHTTPAuth_Headers(t *testing.T) {
	auth := NewHTTPAuth(authConfig([]config.APIClientKey{
		{Key: "k1", Extra: "e1"},
	}, 0, 0))

	cases := []struct {
		name    string
		headers map[string]string
		want    int
	}{
		{"NoHeaders", nil, http.StatusUnauthorized},
		{"OnlyKey", map[string]string{"x-api-key": "k1"}, http.StatusUnauthorized},
		{"WrongExtra", map[string]string{"x-api-key": "k1", "x-api-extra": "bad"}, http.StatusUnauthorized},
		{"UnknownKey", map[string]string{"x-api-key": "zz", "x-api-extra": "e1"}, http.StatusUnauthorized},
		{"Valid", map[string]string{"x-api-key": "k1", "x-api-extra": "e1"}, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := doRequest(t, auth, http.MethodGet, "/api/v1/cities", tc.headers)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestHTTPAuth_Permissions(t *testing.T) {
	auth := NewHTTPAuth(authConfig([]config.APIClientKey{
		{Key: "ro", Extra: "e", Permissions: []string{"read:catalog", "read:availability"}},
		{Key: "all", Extra: "e"},
	}, 0, 0))

	roHeaders := map[string]string{"x-api-key": "ro", "x-api-extra": "e"}
	allHeaders := map[string]string{"x-api-key": "all", "x-api-extra": "e"}

	assert.Equal(t, http.StatusOK, doRequest(t, auth, http.MethodGet, "/api/v1/banyas?city_id=1", roHeaders))
	assert.Equal(t, http.StatusOK, doRequest(t, auth, http.MethodGet, "/api/v1/availability?banya_id=1", roHeaders))
	assert.Equal(t, http.StatusForbidden, doRequest(t, auth, http.MethodPost, "/api/v1/bookings", roHeaders))
	assert.Equal(t, http.StatusForbidden, doRequest(t, auth, http.MethodGet, "/api/v1/users/1/bookings", roHeaders))

	// пустой список прав: полный доступ
	assert.Equal(t, http.StatusOK, doRequest(t, auth, http.MethodPost, "/api/v1/bookings", allHeaders))
}

func TestHTTPAuth_RateLimit(t *testing.T) {
	auth := NewHTTPAuth(authConfig([]config.APIClientKey{
		{Key: "k1", Extra: "e1"},
		{Key: "k2", Extra: "e2"},
	}, 1, 1))

	h1 := map[string]string{"x-api-key": "k1", "x-api-extra": "e1"}
	h2 := map[string]string{"x-api-key": "k2", "x-api-extra": "e2"}

	assert.Equal(t, http.StatusOK, doRequest(t, auth, http.MethodGet, "/api/v1/cities", h1))
	assert.Equal(t, http.StatusTooManyRequests, doRequest(t, auth, http.MethodGet, "/api/v1/cities", h1))

	// лимит на ключ, второй клиент не страдает
	assert.Equal(t, http.StatusOK, doRequest(t, auth, http.MethodGet, "/api/v1/cities", h2))
}

func TestRequiredPermission(t *testing.T) {
	cases := []struct {
		method string
		path   string
		want   string
	}{
		{http.MethodGet, "/api/v1/cities", "read:catalog"},
		{http.MethodGet, "/api/v1/banyas/3/masters", "read:catalog"},
		{http.MethodGet, "/api/v1/masters", "read:catalog"},
		{http.MethodGet, "/api/v1/availability", "read:availability"},
		{http.MethodPost, "/api/v1/bookings", "write:bookings"},
		{http.MethodPost, "/api/v1/bookings/5/confirm", "write:bookings"},
		{http.MethodGet, "/api/v1/bookings/5", "read:bookings"},
		{http.MethodGet, "/api/v1/users/42/bookings", "read:bookings"},
		{http.MethodPost, "/api/v1/reviews", "write:reviews"},
		{http.MethodGet, "/healthz", ""},
	}

	for _, tc := range cases {
		r := httptest.NewRequest(tc.method, tc.path, nil)
		assert.Equal(t, tc.want, requiredPermission(r), "%s %s", tc.method, tc.path)
	}
}
