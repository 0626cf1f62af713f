package csp

import "strings"

// Policy — результат одной сборки: строки директив в порядке вывода
// и предупреждения.
type Policy struct {
	Lines    []Line
	Warnings []Warning
}

// Empty — политики нет, ни meta-тег, ни заголовок не выводятся.
func (p Policy) Empty() bool { return len(p.Lines) == 0 }

// Meta — значение атрибута content для <meta http-equiv>.
func (p Policy) Meta() string {
	if p.Empty() {
		return ""
	}
	return "\n\t" + strings.Join(p.strings(), ";\n\t") + ";\n"
}

// Header — то же значение одной строкой для HTTP-заголовка.
func (p Policy) Header() string {
	return strings.Join(p.strings(), "; ")
}

// Directive ищет строку по имени директивы.
func (p Policy) Directive(name string) (Line, bool) {
	for _, l := range p.Lines {
		if l.Name == name {
			return l, true
		}
	}
	return Line{}, false
}

func (p Policy) strings() []string {
	out := make([]string, len(p.Lines))
	for i, l := range p.Lines {
		out[i] = l.String()
	}
	return out
}
