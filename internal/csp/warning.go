package csp

import "fmt"

type WarningKind string

const (
	WarnDeprecated WarningKind = "deprecated"
	WarnInvalid    WarningKind = "invalid"
	WarnAsset      WarningKind = "asset"
)

// Warning — замечание, собранное во время сборки политики.
type Warning struct {
	Kind      WarningKind `json:"kind"`
	Key       string      `json:"key,omitempty"`
	Var       string      `json:"var,omitempty"` // переменная окружения с префиксом: CSP_PREFETCH_SRC
	Directive string      `json:"directive,omitempty"`
	Path      string      `json:"path,omitempty"`
	Err       error       `json:"-"`
}

func (w Warning) String() string {
	key := w.Key
	if w.Var != "" {
		key = w.Var
	}
	switch w.Kind {
	case WarnDeprecated:
		return fmt.Sprintf("Deprecated CSP directive '%s' added via key %s", w.Directive, key)
	case WarnInvalid:
		return fmt.Sprintf("Invalid CSP directive '%s' not added via key %s", w.Directive, key)
	case WarnAsset:
		return fmt.Sprintf("Style asset %s skipped for %s: %v", w.Path, w.Directive, w.Err)
	default:
		return string(w.Kind)
	}
}
