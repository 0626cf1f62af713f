package core

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	_, _ = io.WriteString(w, r.URL.Scheme)
})

func TestFail(t *testing.T) {
	SetOutput(io.Discard)
	t.Cleanup(Close)

	rec := httptest.NewRecorder()
	Fail(rec, httptest.NewRequest(http.MethodGet, "/form", nil), BadRequest("invalid form", map[string]string{"email": "required"}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	var p ProblemDetail
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&p))
	assert.Equal(t, "bad_request", p.Code)
	assert.Equal(t, "required", p.Fields["email"])

	rec = httptest.NewRecorder()
	Fail(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestFrom(t *testing.T) {
	assert.Nil(t, From(nil))
	nf := NotFound("nope")
	assert.Same(t, nf, From(nf))
	wrapped := From(errors.Join(errors.New("ctx"), nf))
	assert.Equal(t, http.StatusNotFound, wrapped.Status)
	assert.Equal(t, "internal", From(errors.New("x")).Code)
}

func TestSecureHeaders(t *testing.T) {
	h := SecureHeaders(SecurityOptions{CSP: "default-src 'self'", HSTS: true})(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "default-src 'self'", rec.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Contains(t, rec.Header().Get("Strict-Transport-Security"), "max-age=31536000")
}

func TestSecureHeadersWithoutCSP(t *testing.T) {
	rec := httptest.NewRecorder()
	SecureHeaders(SecurityOptions{})(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Empty(t, rec.Header().Get("Content-Security-Policy"))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestTrustedProxy(t *testing.T) {
	SetOutput(io.Discard)
	t.Cleanup(Close)
	h := TrustedProxy([]string{"10.0.0.0/8", "::1", "bogus"})(okHandler)

	tests := []struct {
		remote, proto string
		status        int
		body          string
	}{
		{"10.1.2.3:4000", "https", http.StatusOK, "https"},
		{"10.1.2.3:4000", "", http.StatusOK, "http"},
		{"[::1]:4000", "HTTPS", http.StatusOK, "https"},
		{"192.168.0.1:4000", "https", http.StatusForbidden, ""},
		{"garbage", "", http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = tt.remote
		req.Header.Set("X-Forwarded-Proto", tt.proto)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, tt.status, rec.Code, tt.remote)
		if tt.status == http.StatusOK {
			assert.Equal(t, tt.body, rec.Body.String(), tt.remote)
		}
	}
}

func TestTrustedProxyDisabled(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "8.8.8.8:1"
	rec := httptest.NewRecorder()
	TrustedProxy(nil)(okHandler).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
