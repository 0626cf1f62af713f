package app

import (
	"encoding/json"
	"html"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cspmeta/internal/core"
	"cspmeta/internal/http/handler"
)

func testConfig(delivery string) core.Config {
	return core.Config{
		AppName:        "cspmeta",
		Addr:           ":0",
		Env:            "dev",
		CSRFKey:        "test-secret",
		RequestTimeout: 5 * time.Second,
		CSP: core.CSPConfig{
			Prefix:       "CSPTEST",
			Delivery:     delivery,
			AssetsPrefix: "/assets/",
		},
	}
}

func newServer(t *testing.T, cfg core.Config) *httptest.Server {
	t.Helper()
	core.SetOutput(io.Discard)
	t.Cleanup(core.Close)

	h, err := New(cfg)
	require.NoError(t, err)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, c *http.Client, u string) (*http.Response, string) {
	t.Helper()
	resp, err := c.Get(u)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(b)
}

func TestHomeBothDeliveries(t *testing.T) {
	t.Setenv("CSPTEST_DEFAULT_SRC", "'self'")
	t.Setenv("CSPTEST_FRAME_ANCESTORS", "'none'")
	srv := newServer(t, testConfig("both"))

	resp, body := get(t, srv.Client(), srv.URL+"/")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	header := resp.Header.Get("Content-Security-Policy")
	assert.Contains(t, header, "default-src 'self'")
	assert.Contains(t, header, "frame-ancestors 'none'")
	assert.NotContains(t, header, "\n")
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))

	body = html.UnescapeString(body)
	assert.Contains(t, body, `<meta http-equiv="Content-Security-Policy" content="`)
	assert.Contains(t, body, "\n\tdefault-src 'self';\n\tscript-src 'self' 'sha256-")
	assert.NotContains(t, body, "frame-ancestors")
}

func TestMetaOnly(t *testing.T) {
	t.Setenv("CSPTEST_SCRIPT_SRC", "'self'")
	srv := newServer(t, testConfig("meta"))

	resp, body := get(t, srv.Client(), srv.URL+"/about")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Content-Security-Policy"))
	assert.Contains(t, html.UnescapeString(body), `<meta http-equiv="Content-Security-Policy" content="`+"\n\tscript-src 'self' 'sha256-")
}

func TestPolicyJSON(t *testing.T) {
	t.Setenv("CSPTEST_DEFAULT_SRC", "'self'")
	t.Setenv("CSPTEST_REPORT_URI", "/csp-report")
	srv := newServer(t, testConfig("both"))

	resp, body := get(t, srv.Client(), srv.URL+"/csp.json")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var views []handler.PolicyView
	require.NoError(t, json.Unmarshal([]byte(body), &views))
	require.Len(t, views, 2)

	assert.Equal(t, "meta", views[0].Delivery)
	require.Len(t, views[0].Warnings, 1)
	assert.Equal(t, "invalid", string(views[0].Warnings[0].Kind))
	assert.Equal(t, "REPORT_URI", views[0].Warnings[0].Key)
	assert.Equal(t, "CSPTEST_REPORT_URI", views[0].Warnings[0].Var)

	assert.Equal(t, "header", views[1].Delivery)
	require.Len(t, views[1].Warnings, 1)
	assert.Equal(t, "deprecated", string(views[1].Warnings[0].Kind))
	assert.Contains(t, views[1].Value, "report-uri /csp-report")
}

func TestPolicyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "csp.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default-src: \"'none'\"\nimg-src: [\"'self'\", \"data:\"]\n"), 0o600))
	t.Setenv("CSPTEST_DEFAULT_SRC", "'self'")

	cfg := testConfig("header")
	cfg.CSP.File = path
	srv := newServer(t, cfg)

	resp, _ := get(t, srv.Client(), srv.URL+"/")
	header := resp.Header.Get("Content-Security-Policy")
	assert.Contains(t, header, "default-src 'self'")
	assert.Contains(t, header, "img-src 'self' data:")

	cfg.CSP.File = filepath.Join(t.TempDir(), "missing.yaml")
	_, err := New(cfg)
	assert.Error(t, err)
}

func TestStaticMetricsAndNotFound(t *testing.T) {
	t.Setenv("CSPTEST_DEFAULT_SRC", "'self'")
	srv := newServer(t, testConfig("meta"))

	resp, body := get(t, srv.Client(), srv.URL+"/assets/css/app.css")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "nav a")

	resp, body = get(t, srv.Client(), srv.URL+"/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `csp_policies_built_total{mode="development"} 1`)

	resp, _ = get(t, srv.Client(), srv.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = get(t, srv.Client(), srv.URL+"/no-such-page")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, html.UnescapeString(body), `<meta http-equiv="Content-Security-Policy" content="`+"\n\tdefault-src 'self';")
}

var tokenRe = regexp.MustCompile(`name="gorilla.csrf.Token" value="([^"]+)"`)

func TestFormFlow(t *testing.T) {
	srv := newServer(t, testConfig("meta"))
	c := srv.Client()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	c.Jar = jar
	c.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

	resp, err := c.PostForm(srv.URL+"/form", url.Values{"name": {"Иван"}})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	_, body := get(t, c, srv.URL+"/form")
	m := tokenRe.FindStringSubmatch(body)
	require.Len(t, m, 2)
	token := m[1]

	resp, err = c.PostForm(srv.URL+"/form", url.Values{
		"gorilla.csrf.Token": {token},
		"name":               {"И"},
		"email":              {"not-an-email"},
	})
	require.NoError(t, err)
	b, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, string(b), "Введите корректный email")
	assert.Contains(t, string(b), "Напишите сообщение")

	resp, err = c.PostForm(srv.URL+"/form", url.Values{
		"gorilla.csrf.Token": {token},
		"name":               {"Иван <b>"},
		"email":              {"ivan@example.com"},
		"message":            {"Привет"},
	})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.True(t, strings.HasSuffix(resp.Header.Get("Location"), "/form?ok=1"))
}
