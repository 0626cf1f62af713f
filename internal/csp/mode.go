package csp

import "strings"

// BuildMode выбирает политику для style-src.
type BuildMode int

const (
	// Development — 'unsafe-inline' для стилей, без хешей.
	Development BuildMode = iota
	// Production — хеши критического CSS, таблиц стилей и inline-стилей.
	Production
)

// ParseMode: "prod"/"production" -> Production, остальное -> Development.
func ParseMode(env string) BuildMode {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "prod", "production":
		return Production
	default:
		return Development
	}
}

func (m BuildMode) String() string {
	if m == Production {
		return "production"
	}
	return "development"
}
