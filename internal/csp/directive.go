package csp

import "strings"

// DirectiveName переводит ключ конфигурации в имя директивы:
// SCRIPT_SRC_ATTR -> script-src-attr.
func DirectiveName(key string) string {
	return strings.ReplaceAll(strings.ToLower(key), "_", "-")
}

// Line — одна директива политики с её значениями.
type Line struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

func (l Line) String() string {
	if len(l.Values) == 0 {
		return l.Name
	}
	return l.Name + " " + strings.Join(l.Values, " ")
}
