package view

//view.go
import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"

	"github.com/gorilla/csrf"

	"cspmeta/internal/core"
	"cspmeta/internal/csp"
	"cspmeta/web"
)

// Templates — скомпилированные страницы (layout + page) и политика сайта.
type Templates struct {
	templates   map[string]*template.Template
	policy      csp.Policy
	meta        bool
	criticalCSS template.CSS
	stylesheets []string
}

// PageData — унифицированная структура для всех шаблонов (OWASP A03, A07).
type PageData struct {
	Title        string
	CSRFField    template.HTML
	CSPMeta      string // content для <meta http-equiv>; пусто — тега нет
	CriticalCSS  template.CSS
	InlineStyle  template.CSS
	InlineScript template.JS
	Stylesheets  []string
	Data         any
}

// Options — откуда брать политику и ассеты.
type Options struct {
	Builder      *csp.Builder // собран с MetaCatalog и AssetSource над Assets
	Config       csp.Store
	Mode         csp.BuildMode
	Assets       fs.FS  // по умолчанию встроенные web.Assets()
	AssetsPrefix string // "/assets/"
	Meta         bool   // выводить meta-тег
}

var pages = map[string]string{
	"home":     "pages/home.gohtml",
	"about":    "pages/about.gohtml",
	"form":     "pages/form.gohtml",
	"notfound": "pages/404.gohtml",
}

const layoutFile = "layouts/base.gohtml"

// New парсит шаблоны и один раз собирает CSP для layout.
func New(opts Options) (*Templates, error) {
	if opts.Assets == nil {
		opts.Assets = web.Assets()
	}
	if opts.AssetsPrefix == "" {
		opts.AssetsPrefix = "/assets/"
	}
	if opts.Builder == nil {
		opts.Builder = csp.NewBuilder(csp.WithAssets(csp.NewFSAssets(opts.Assets)), csp.WithLogger(core.L()))
	}

	t := &Templates{
		templates:   make(map[string]*template.Template, len(pages)),
		meta:        opts.Meta,
		stylesheets: Stylesheets(opts.AssetsPrefix),
	}

	tfs := web.Templates()
	for name, page := range pages {
		tpl, err := template.ParseFS(tfs, layoutFile, page)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		t.templates[name] = tpl
	}

	// Критический CSS встраивается в <style>; без файла просто не выводим его
	if b, err := fs.ReadFile(opts.Assets, criticalCSS); err == nil {
		t.criticalCSS = template.CSS(b)
	} else {
		core.LogWarn("Критический CSS не найден", map[string]interface{}{"path": criticalCSS, "error": err.Error()})
	}

	t.policy = opts.Builder.Build(SiteInput(opts.Config, opts.Mode, opts.AssetsPrefix))
	return t, nil
}

// SiteInput — входные данные CSP для layout: inline-блоки, критический CSS
// и подключённые таблицы стилей.
func SiteInput(cfg csp.Store, mode csp.BuildMode, assetsPrefix string) csp.Input {
	in := csp.Input{
		Config:        cfg,
		Mode:          mode,
		InlineScripts: []string{inlineScript},
		InlineStyles:  []string{inlineStyle},
		CriticalStyle: criticalCSS,
	}
	for _, href := range Stylesheets(assetsPrefix) {
		if p, ok := csp.StylesheetPath(href, assetsPrefix); ok {
			in.Stylesheets = append(in.Stylesheets, p)
		}
	}
	return in
}

// Stylesheets — href таблиц стилей, которые выводит layout.
func Stylesheets(assetsPrefix string) []string {
	out := make([]string, len(stylesheets))
	for i, s := range stylesheets {
		out[i] = path.Join(assetsPrefix, s)
	}
	return out
}

// Policy — политика, которую получает каждая страница.
func (t *Templates) Policy() csp.Policy { return t.policy }

// Render рендерит шаблон с данными (OWASP A03, A09).
// Страница сначала собирается в буфер, чтобы ошибка шаблона не оставила полответа.
func (t *Templates) Render(w http.ResponseWriter, r *http.Request, name, title string, data any) error {
	return t.RenderStatus(w, r, http.StatusOK, name, title, data)
}

func (t *Templates) RenderStatus(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) error {
	tpl, ok := t.templates[name]
	if !ok {
		return fmt.Errorf("template not found: %s", name)
	}

	pd := PageData{
		Title:        title,
		CSRFField:    csrf.TemplateField(r),
		CriticalCSS:  t.criticalCSS,
		InlineStyle:  template.CSS(inlineStyle),
		InlineScript: template.JS(inlineScript),
		Stylesheets:  t.stylesheets,
		Data:         data,
	}
	if t.meta {
		pd.CSPMeta = t.policy.Meta()
	}

	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, "base", pd); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
