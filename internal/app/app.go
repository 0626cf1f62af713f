package app

// internal/app/app.go
import (
	"crypto/sha256"
	"fmt"
	"io/fs"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"cspmeta/internal/core"
	"cspmeta/internal/csp"
	httpx "cspmeta/internal/http"
	"cspmeta/internal/view"
	"cspmeta/web"
)

// New — главный конструктор приложения: конфигурация CSP, шаблоны, роутер.
func New(cfg core.Config) (http.Handler, error) {
	store, err := policyStore(cfg)
	if err != nil {
		return nil, err
	}

	assets := initAssets(cfg)
	source := csp.NewFSAssets(assets)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := csp.NewMetrics(reg)

	builder := func(c csp.Catalog) *csp.Builder {
		return csp.NewBuilder(
			csp.WithCatalog(c),
			csp.WithPrefix(cfg.CSP.Prefix),
			csp.WithAssets(source),
			csp.WithLogger(core.L().With().Str("component", "csp").Logger()),
			csp.WithMetrics(metrics),
		)
	}

	tpl, err := view.New(view.Options{
		Builder:      builder(csp.MetaCatalog),
		Config:       store,
		Mode:         cfg.Mode(),
		Assets:       assets,
		AssetsPrefix: cfg.CSP.AssetsPrefix,
		Meta:         cfg.CSP.Meta(),
	})
	if err != nil {
		return nil, err
	}
	if cfg.CSP.Meta() {
		logPolicy("meta", tpl.Policy())
	}

	var header *csp.Policy
	if cfg.CSP.Header() {
		p := builder(csp.HeaderCatalog).Build(view.SiteInput(store, cfg.Mode(), cfg.CSP.AssetsPrefix))
		logPolicy("header", p)
		header = &p
	}

	return httpx.NewRouter(httpx.Deps{
		Config:       cfg,
		CSRFKey:      derive32(cfg.CSRFKey),
		Templates:    tpl,
		HeaderPolicy: header,
		Assets:       assets,
		Gatherer:     reg,
	}), nil
}

// policyStore — переменные окружения поверх необязательного YAML-файла.
func policyStore(cfg core.Config) (csp.Store, error) {
	env := csp.LoadEnv(cfg.CSP.Prefix)
	if cfg.CSP.File == "" {
		return env, nil
	}
	file, err := csp.LoadFile(cfg.CSP.File)
	if err != nil {
		return nil, fmt.Errorf("csp policy file: %w", err)
	}
	return csp.Layered(env, file), nil
}

// initAssets — статика с диска, если задан ASSETS_DIR, иначе встроенная.
func initAssets(cfg core.Config) fs.FS {
	if cfg.CSP.AssetsDir == "" {
		return web.Assets()
	}
	if _, err := os.Stat(cfg.CSP.AssetsDir); err != nil {
		core.LogError("ASSETS_DIR недоступен, используется встроенная статика", map[string]interface{}{
			"dir":   cfg.CSP.AssetsDir,
			"error": err.Error(),
		})
		return web.Assets()
	}
	return os.DirFS(cfg.CSP.AssetsDir)
}

func logPolicy(delivery string, p csp.Policy) {
	if p.Empty() {
		core.LogWarn("CSP не задана: директивы не найдены", map[string]interface{}{"delivery": delivery})
		return
	}
	core.LogInfo("CSP собрана", map[string]interface{}{
		"delivery": delivery,
		"lines":    len(p.Lines),
		"warnings": len(p.Warnings),
		"policy":   p.Header(),
	})
}

// derive32 — 32-байтовый ключ CSRF из секрета (OWASP A02)
func derive32(secret string) []byte {
	sum := sha256.Sum256([]byte(secret))
	return sum[:]
}
