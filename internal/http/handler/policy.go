package handler

import (
	"net/http"

	"cspmeta/internal/core"
	"cspmeta/internal/csp"
)

// PolicyView — политика в JSON для отладки конфигурации.
type PolicyView struct {
	Delivery string        `json:"delivery"`
	Value    string        `json:"value"`
	Lines    []csp.Line    `json:"lines"`
	Warnings []WarningView `json:"warnings"`
}

type WarningView struct {
	csp.Warning
	Message string `json:"message"`
}

func policyView(delivery string, p csp.Policy) PolicyView {
	v := PolicyView{Delivery: delivery, Lines: p.Lines, Warnings: []WarningView{}}
	if v.Lines == nil {
		v.Lines = []csp.Line{}
	}
	if delivery == "meta" {
		v.Value = p.Meta()
	} else {
		v.Value = p.Header()
	}
	for _, w := range p.Warnings {
		v.Warnings = append(v.Warnings, WarningView{Warning: w, Message: w.String()})
	}
	return v
}

// Policy отдаёт активные политики: для meta-тега и для HTTP-заголовка.
// Нулевая политика значит, что этот способ доставки выключен.
func Policy(meta, header *csp.Policy) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out := []PolicyView{}
		if meta != nil {
			out = append(out, policyView("meta", *meta))
		}
		if header != nil {
			out = append(out, policyView("header", *header))
		}
		core.JSON(w, http.StatusOK, out)
	}
}
