package httpx

import (
	"io/fs"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cspmeta/internal/core"
	"cspmeta/internal/csp"
	"cspmeta/internal/http/handler"
	"cspmeta/internal/view"
)

// Deps — всё, что нужно роутеру.
type Deps struct {
	Config       core.Config
	CSRFKey      []byte // 32 байта
	Templates    *view.Templates
	HeaderPolicy *csp.Policy // nil — CSP в HTTP-заголовке не отдаётся
	Assets       fs.FS
	Gatherer     prometheus.Gatherer
}

// NewRouter создаёт chi-маршрутизатор и подключает все middleware.
func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	r := chi.NewRouter()

	// Проверка прокси должна видеть исходный RemoteAddr, до RealIP
	r.Use(core.TrustedProxy(cfg.TrustedProxies))
	core.UseCommon(r, cfg.RequestTimeout)

	sec := core.SecurityOptions{HSTS: cfg.IsProd() && cfg.Secure, Dev: !cfg.IsProd()}
	if d.HeaderPolicy != nil {
		sec.CSP = d.HeaderPolicy.Header()
	}
	r.Use(core.SecureHeaders(sec))

	if !cfg.Secure {
		r.Use(plaintext)
	}
	r.Use(csrf.Protect(d.CSRFKey,
		csrf.Secure(cfg.Secure),
		csrf.Path("/"),
		csrf.ErrorHandler(http.HandlerFunc(csrfError)),
	))

	// --- Страницы ---
	r.Get("/", handler.Home(d.Templates))
	r.Get("/about", handler.About(d.Templates))
	r.Get("/form", handler.FormIndex(d.Templates))
	r.Post("/form", handler.FormSubmit(d.Templates))

	// --- Служебные ---
	r.Get("/healthz", handler.Health)
	r.Get("/csp.json", handler.Policy(metaPolicy(cfg, d.Templates), d.HeaderPolicy))
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	// --- Статика ---
	prefix := cfg.CSP.AssetsPrefix
	static := http.FileServer(http.FS(d.Assets))
	if cfg.IsProd() {
		static = cacheStatic(static)
	}
	r.Handle(prefix+"*", http.StripPrefix(strings.TrimSuffix(prefix, "/"), static))

	r.NotFound(handler.NotFound(d.Templates))
	return r
}

func metaPolicy(cfg core.Config, tpl *view.Templates) *csp.Policy {
	if !cfg.CSP.Meta() {
		return nil
	}
	p := tpl.Policy()
	return &p
}

// plaintext помечает запрос как HTTP: иначе gorilla/csrf требует HTTPS Referer.
func plaintext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	})
}

func csrfError(w http.ResponseWriter, r *http.Request) {
	core.Fail(w, r, &core.AppError{
		Code:    "csrf",
		Status:  http.StatusForbidden,
		Message: "CSRF-токен недействителен",
		Err:     csrf.FailureReason(r),
	})
}

// cacheStatic — долгоживущий кэш для статики в prod.
func cacheStatic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		w.Header().Set("Vary", "Accept-Encoding")
		next.ServeHTTP(w, r)
	})
}
