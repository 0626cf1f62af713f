package handler

// pages.go
import (
	"net/http"

	"cspmeta/internal/core"
	"cspmeta/internal/view"
)

// Page возвращает обработчик статической страницы (OWASP A03: Injection)
func Page(tpl *view.Templates, name, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := tpl.Render(w, r, name, title, nil); err != nil {
			core.Fail(w, r, core.Internal("Ошибка отображения страницы", err))
		}
	}
}

// Home — главная страница
func Home(tpl *view.Templates) http.HandlerFunc {
	return Page(tpl, "home", "Главная")
}

// About — страница "О проекте"
func About(tpl *view.Templates) http.HandlerFunc {
	return Page(tpl, "about", "О проекте")
}

// NotFound — страница 404 (OWASP A03)
func NotFound(tpl *view.Templates) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := tpl.RenderStatus(w, r, http.StatusNotFound, "notfound", "Страница не найдена", nil); err != nil {
			core.Fail(w, r, core.NotFound("страница не найдена"))
		}
	}
}

// Health — healthcheck (OWASP A09).
func Health(w http.ResponseWriter, r *http.Request) {
	core.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
