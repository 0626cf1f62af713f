package csp

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Store — источник значений директив (DEFAULT_SRC -> "'self'").
// Пустое значение равносильно отсутствию ключа.
type Store interface {
	Lookup(key string) (string, bool)
}

// Env — снимок конфигурации ключ -> значение.
type Env map[string]string

func (e Env) Lookup(key string) (string, bool) {
	v := strings.TrimSpace(e[key])
	return v, v != ""
}

// FromEnviron отбирает пары <prefix>_KEY=VALUE и снимает префикс.
// Пустой prefix берёт все пары как есть.
func FromEnviron(prefix string, environ []string) Env {
	p := ""
	if prefix != "" {
		p = strings.TrimSuffix(prefix, "_") + "_"
	}
	env := make(Env)
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(k, p) {
			continue
		}
		key := strings.TrimPrefix(k, p)
		if key == "" {
			continue
		}
		env[key] = v
	}
	return env
}

// LoadEnv — единственное место, где читается окружение процесса.
func LoadEnv(prefix string) Env {
	return FromEnviron(prefix, os.Environ())
}

// LoadFile читает YAML-файл политики:
//
//	default-src: "'self'"
//	SCRIPT_SRC: ["'self'", "https://cdn.jsdelivr.net"]
//
// Ключи можно писать как имя директивы или как ключ окружения.
// Списки склеиваются через пробел.
func LoadFile(path string) (Env, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("csp: read policy file: %w", err)
	}
	return ParseFile(raw)
}

// ParseFile — разбор содержимого YAML-файла политики.
func ParseFile(raw []byte) (Env, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("csp: parse policy file: %w", err)
	}
	env := make(Env, len(doc))
	for k, v := range doc {
		key := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(k), "-", "_"))
		switch val := v.(type) {
		case nil:
			continue
		case string:
			env[key] = val
		case []any:
			parts := make([]string, 0, len(val))
			for _, item := range val {
				parts = append(parts, fmt.Sprint(item))
			}
			env[key] = strings.Join(parts, " ")
		case map[string]any:
			return nil, fmt.Errorf("csp: policy file key %s: nested maps are not supported", k)
		default:
			env[key] = fmt.Sprint(val)
		}
	}
	return env, nil
}

type layered []Store

// Layered объединяет источники: значение берётся из первого, где ключ задан.
func Layered(stores ...Store) Store {
	out := make(layered, 0, len(stores))
	for _, s := range stores {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (l layered) Lookup(key string) (string, bool) {
	for _, s := range l {
		if v, ok := s.Lookup(key); ok {
			return v, true
		}
	}
	return "", false
}
