package core

// security.go
import (
	"net/http"

	"github.com/unrolled/secure"
)

// SecurityOptions — что добавлять к стандартным заголовкам безопасности.
type SecurityOptions struct {
	CSP  string // значение Content-Security-Policy; пусто — заголовок не ставится
	HSTS bool   // Strict-Transport-Security (только для HTTPS-запросов)
	Dev  bool
}

// SecureHeaders добавляет заголовки безопасности (OWASP A05: Security Misconfiguration).
// CSP передаётся готовой строкой, собранной из конфигурации директив.
func SecureHeaders(opts SecurityOptions) func(http.Handler) http.Handler {
	o := secure.Options{
		ContentSecurityPolicy:   opts.CSP,
		ContentTypeNosniff:      true,
		FrameDeny:               true,
		ReferrerPolicy:          "strict-origin-when-cross-origin",
		PermissionsPolicy:       "camera=(), microphone=(), geolocation=(), payment=()",
		CrossOriginOpenerPolicy: "same-origin",
		SSLProxyHeaders:         map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:           opts.Dev,
	}
	// HSTS включаем только в продакшене (OWASP A02: Cryptographic Failures)
	if opts.HSTS {
		o.STSSeconds = 31536000
		o.STSIncludeSubdomains = true
		o.STSPreload = true
	}
	return secure.New(o).Handler
}
