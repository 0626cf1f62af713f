package core

// common.go
import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// UseCommon подключает базовые (общие) middleware для всего приложения.
// Заголовки безопасности подключаются отдельно, им нужна собранная CSP.
func UseCommon(r chi.Router, timeout time.Duration) {
	// --- Идентификатор запроса ---
	r.Use(middleware.RequestID)

	// --- Определение реального IP клиента ---
	// Извлекает IP из заголовков X-Forwarded-For / X-Real-IP
	r.Use(middleware.RealIP)

	// --- Логирование ---
	r.Use(middleware.Logger)

	// --- Восстановление после паники ---
	r.Use(middleware.Recoverer)

	// --- Таймаут запроса ---
	if timeout > 0 {
		r.Use(middleware.Timeout(timeout))
	}
}
