package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cspmeta/internal/csp"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("CSRF_KEY", "")
	t.Setenv("CSP_DELIVERY", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "dev", cfg.Env)
	assert.NotEmpty(t, cfg.CSRFKey)
	assert.Equal(t, "CSP", cfg.CSP.Prefix)
	assert.Equal(t, "/assets/", cfg.CSP.AssetsPrefix)
	assert.True(t, cfg.CSP.Meta())
	assert.False(t, cfg.CSP.Header())
	assert.Equal(t, csp.Development, cfg.Mode())
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("CSRF_KEY", "0123456789abcdef0123456789abcdef")
	t.Setenv("CSP_DELIVERY", "both")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 127.0.0.1,")
	t.Setenv("REQUEST_TIMEOUT", "3s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, csp.Production, cfg.Mode())
	assert.True(t, cfg.CSP.Meta())
	assert.True(t, cfg.CSP.Header())
	assert.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"}, cfg.TrustedProxies)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
}

func TestLoadInvalid(t *testing.T) {
	tests := map[string]map[string]string{
		"delivery":      {"CSP_DELIVERY": "cookie"},
		"env":           {"APP_ENV": "qa"},
		"proxy":         {"TRUSTED_PROXIES": "not-an-ip"},
		"assets prefix": {"ASSETS_PREFIX": "assets"},
		"prod key":      {"APP_ENV": "prod", "CSRF_KEY": "short"},
		"prod tls":      {"APP_ENV": "prod", "CSRF_KEY": "0123456789abcdef0123456789abcdef", "SECURE": "true"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestGetEnvDurationFallback(t *testing.T) {
	t.Setenv("SOME_TIMEOUT", "soon")
	assert.Equal(t, time.Minute, getEnvDuration("SOME_TIMEOUT", time.Minute))
}
