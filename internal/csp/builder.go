package csp

import (
	"errors"
	"strings"

	"github.com/rs/zerolog"
)

const unsafeInline = "'unsafe-inline'"

var errNoAssetSource = errors.New("csp: no asset source configured")

// Input — всё, от чего зависит одна сборка политики.
type Input struct {
	Config        Store
	Mode          BuildMode
	InlineScripts []string // тела inline <script>, хешируются как есть
	InlineStyles  []string // тела inline <style>, хешируются только в Production
	CriticalStyle string   // путь к критическому CSS в AssetSource, необязателен
	Stylesheets   []string // пути подключённых таблиц стилей в AssetSource
}

// Builder собирает Policy. Сам состояния между вызовами не хранит.
type Builder struct {
	catalog Catalog
	prefix  string
	assets  AssetSource
	log     zerolog.Logger
	metrics *Metrics
}

type Option func(*Builder)

func WithCatalog(c Catalog) Option { return func(b *Builder) { b.catalog = c } }

// WithPrefix — префикс переменных окружения, только для текста предупреждений.
func WithPrefix(prefix string) Option { return func(b *Builder) { b.prefix = prefix } }

func WithAssets(a AssetSource) Option { return func(b *Builder) { b.assets = a } }

func WithLogger(l zerolog.Logger) Option { return func(b *Builder) { b.log = l } }

func WithMetrics(m *Metrics) Option { return func(b *Builder) { b.metrics = m } }

// NewBuilder — по умолчанию MetaCatalog, без ассетов и без логов.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		catalog: MetaCatalog,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build — сборка с настройками по умолчанию.
func Build(cfg Store, scripts, styles []string, mode BuildMode) Policy {
	return NewBuilder().Build(Input{
		Config:        cfg,
		Mode:          mode,
		InlineScripts: scripts,
		InlineStyles:  styles,
	})
}

func (b *Builder) Build(in Input) Policy {
	cfg := in.Config
	if cfg == nil {
		cfg = Env(nil)
	}
	var p Policy

	def, hasDefault := cfg.Lookup(KeyDefaultSrc)

	// default-src
	if hasDefault {
		p.Lines = append(p.Lines, Line{Name: DirectiveName(KeyDefaultSrc), Values: []string{def}})
	}

	// script-src: явный SCRIPT_SRC заменяет default-src, а не дополняет его
	if base, ok := b.base(cfg, KeyScriptSrc, def, hasDefault); ok {
		vals := base
		for _, s := range in.InlineScripts {
			vals = append(vals, HashToken(s))
		}
		p.Lines = append(p.Lines, Line{Name: DirectiveName(KeyScriptSrc), Values: vals})
	}

	// style-src
	if base, ok := b.base(cfg, KeyStyleSrc, def, hasDefault); ok {
		vals := base
		if in.Mode == Production {
			vals = append(vals, b.styleHashes(&p, in)...)
		} else {
			// В dev хеши не считаем: стили подменяются на лету.
			vals = append(vals, unsafeInline)
		}
		p.Lines = append(p.Lines, Line{Name: DirectiveName(KeyStyleSrc), Values: vals})
	}

	for _, key := range b.catalog.Standard {
		if v, ok := cfg.Lookup(key); ok {
			p.Lines = append(p.Lines, Line{Name: DirectiveName(key), Values: []string{v}})
		}
	}

	for _, key := range b.catalog.Deprecated {
		if v, ok := cfg.Lookup(key); ok {
			name := DirectiveName(key)
			p.Lines = append(p.Lines, Line{Name: name, Values: []string{v}})
			b.warn(&p, Warning{Kind: WarnDeprecated, Key: key, Var: b.envVar(key), Directive: name})
		}
	}

	for _, key := range b.catalog.Invalid {
		if _, ok := cfg.Lookup(key); ok {
			b.warn(&p, Warning{Kind: WarnInvalid, Key: key, Var: b.envVar(key), Directive: DirectiveName(key)})
		}
	}

	b.metrics.built(in.Mode)
	return p
}

func (b *Builder) envVar(key string) string {
	if b.prefix == "" {
		return ""
	}
	return strings.TrimSuffix(b.prefix, "_") + "_" + key
}

// base — начальный список значений script-src/style-src.
func (b *Builder) base(cfg Store, key, def string, hasDefault bool) ([]string, bool) {
	if v, ok := cfg.Lookup(key); ok {
		return strings.Fields(v), true
	}
	if hasDefault {
		return strings.Fields(def), true
	}
	return nil, false
}

func (b *Builder) styleHashes(p *Policy, in Input) []string {
	var out []string
	paths := make([]string, 0, len(in.Stylesheets)+1)
	if in.CriticalStyle != "" {
		paths = append(paths, in.CriticalStyle)
	}
	paths = append(paths, in.Stylesheets...)

	for _, name := range paths {
		a := b.read(name)
		if !a.OK() {
			b.warn(p, Warning{Kind: WarnAsset, Directive: DirectiveName(KeyStyleSrc), Path: name, Err: a.Err})
			continue
		}
		out = append(out, a.Token())
	}
	for _, s := range in.InlineStyles {
		out = append(out, HashToken(s))
	}
	return out
}

func (b *Builder) read(name string) Asset {
	if b.assets == nil {
		return Asset{Path: name, Err: errNoAssetSource}
	}
	return b.assets.Read(name)
}

func (b *Builder) warn(p *Policy, w Warning) {
	p.Warnings = append(p.Warnings, w)
	b.metrics.warn(w.Kind)

	ev := b.log.Warn().Str("kind", string(w.Kind))
	if w.Key != "" {
		ev = ev.Str("key", w.Key)
	}
	if w.Var != "" {
		ev = ev.Str("var", w.Var)
	}
	if w.Directive != "" {
		ev = ev.Str("directive", w.Directive)
	}
	if w.Path != "" {
		ev = ev.Str("path", w.Path)
	}
	if w.Err != nil {
		ev = ev.Err(w.Err)
	}
	ev.Msg(w.String())
}
