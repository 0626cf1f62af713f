// Package csp собирает значение Content-Security-Policy из конфигурации
// директив и хешей inline-скриптов/стилей.
package csp

import "fmt"

// Catalog — четыре непересекающихся упорядоченных набора ключей директив.
// Порядок Standard и Deprecated определяет порядок строк в политике.
type Catalog struct {
	Special    []string // DEFAULT_SRC, SCRIPT_SRC, STYLE_SRC — своя логика
	Standard   []string // выводятся как есть
	Deprecated []string // выводятся как есть + предупреждение
	Invalid    []string // не выводятся, только предупреждение
}

const (
	KeyDefaultSrc = "DEFAULT_SRC"
	KeyScriptSrc  = "SCRIPT_SRC"
	KeyStyleSrc   = "STYLE_SRC"
)

var specialKeys = []string{KeyDefaultSrc, KeyScriptSrc, KeyStyleSrc}

// MetaCatalog — для доставки через <meta http-equiv>.
// frame-ancestors, sandbox, report-to и report-uri браузер в meta игнорирует.
var MetaCatalog = Catalog{
	Special: specialKeys,
	Standard: []string{
		"BASE_URI",
		"BLOCK_ALL_MIXED_CONTENT",
		"CHILD_SRC",
		"CONNECT_SRC",
		"FONT_SRC",
		"FORM_ACTION",
		"FRAME_SRC",
		"IMG_SRC",
		"MANIFEST_SRC",
		"MEDIA_SRC",
		"OBJECT_SRC",
		"REQUIRE_TRUSTED_TYPES_FOR",
		"SCRIPT_SRC_ATTR",
		"SCRIPT_SRC_ELEM",
		"STYLE_SRC_ATTR",
		"STYLE_SRC_ELEM",
		"TRUSTED_TYPES",
		"UPGRADE_INSECURE_REQUESTS",
		"WORKER_SRC",
	},
	Deprecated: []string{
		"PLUGIN_TYPES",
		"PREFETCH_SRC",
		"REFERRER",
	},
	Invalid: []string{
		"FRAME_ANCESTORS",
		"SANDBOX",
		"REPORT_TO",
		"REPORT_URI",
	},
}

// HeaderCatalog — для HTTP-заголовка Content-Security-Policy,
// где разрешены все директивы.
var HeaderCatalog = Catalog{
	Special: specialKeys,
	Standard: []string{
		"BASE_URI",
		"BLOCK_ALL_MIXED_CONTENT",
		"CHILD_SRC",
		"CONNECT_SRC",
		"FONT_SRC",
		"FORM_ACTION",
		"FRAME_ANCESTORS",
		"FRAME_SRC",
		"IMG_SRC",
		"MANIFEST_SRC",
		"MEDIA_SRC",
		"OBJECT_SRC",
		"REPORT_TO",
		"REQUIRE_TRUSTED_TYPES_FOR",
		"SANDBOX",
		"SCRIPT_SRC_ATTR",
		"SCRIPT_SRC_ELEM",
		"STYLE_SRC_ATTR",
		"STYLE_SRC_ELEM",
		"TRUSTED_TYPES",
		"UPGRADE_INSECURE_REQUESTS",
		"WORKER_SRC",
	},
	Deprecated: []string{
		"PLUGIN_TYPES",
		"PREFETCH_SRC",
		"REFERRER",
		"REPORT_URI",
	},
}

// Validate проверяет, что каждый ключ входит ровно в один набор.
func (c Catalog) Validate() error {
	seen := make(map[string]string)
	sets := []struct {
		name string
		keys []string
	}{
		{"special", c.Special},
		{"standard", c.Standard},
		{"deprecated", c.Deprecated},
		{"invalid", c.Invalid},
	}
	for _, s := range sets {
		for _, k := range s.keys {
			if prev, ok := seen[k]; ok {
				return fmt.Errorf("csp: key %s is in both %s and %s", k, prev, s.name)
			}
			seen[k] = s.name
		}
	}
	return nil
}

// Keys возвращает все ключи каталога в порядке Special, Standard, Deprecated, Invalid.
func (c Catalog) Keys() []string {
	out := make([]string, 0, len(c.Special)+len(c.Standard)+len(c.Deprecated)+len(c.Invalid))
	out = append(out, c.Special...)
	out = append(out, c.Standard...)
	out = append(out, c.Deprecated...)
	return append(out, c.Invalid...)
}
