package handler

// form.go
import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"

	"cspmeta/internal/core"
	"cspmeta/internal/view"
)

type FormData struct {
	Name    string `validate:"required,min=2,max=100"`
	Email   string `validate:"required,email"`
	Message string `validate:"required,max=2000"`
}

type FormView struct {
	OK     bool
	Form   FormData
	Errors map[string]string
}

// Глобальный валидатор и санитайзер (OWASP A03).
var (
	validate  = validator.New()
	sanitizer = bluemonday.StrictPolicy()
)

// Тексты ошибок: поле -> тег -> сообщение
var formMessages = map[string]map[string]string{
	"Name": {
		"required": "Укажите имя",
		"min":      "Имя должно быть не короче 2 символов",
		"max":      "Слишком длинное имя (макс. 100)",
	},
	"Email": {
		"required": "Укажите email",
		"email":    "Введите корректный email",
	},
	"Message": {
		"required": "Напишите сообщение",
		"max":      "Слишком длинное сообщение (макс. 2000)",
	},
}

// FormIndex рендерит форму (GET).
func FormIndex(tpl *view.Templates) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := FormView{OK: r.URL.Query().Get("ok") == "1", Errors: map[string]string{}}
		if err := tpl.Render(w, r, "form", "Форма", data); err != nil {
			core.Fail(w, r, core.Internal("template error", err))
		}
	}
}

// FormSubmit обрабатывает отправку формы (POST).
func FormSubmit(tpl *view.Templates) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB (OWASP A05).
		if err := r.ParseForm(); err != nil {
			core.Fail(w, r, core.BadRequest("некорректная форма", nil))
			return
		}

		f := FormData{
			Name:    sanitizer.Sanitize(strings.TrimSpace(r.PostForm.Get("name"))),
			Email:   sanitizer.Sanitize(strings.TrimSpace(r.PostForm.Get("email"))),
			Message: sanitizer.Sanitize(strings.TrimSpace(r.PostForm.Get("message"))),
		}

		errs := validateForm(f)
		if len(errs) == 0 {
			core.LogInfo("Форма отправлена", map[string]interface{}{"email": f.Email})
			http.Redirect(w, r, "/form?ok=1", http.StatusSeeOther)
			return
		}

		core.LogWarn("Validation failed", map[string]interface{}{"errors": errs})
		if err := tpl.RenderStatus(w, r, http.StatusUnprocessableEntity, "form", "Форма", FormView{Form: f, Errors: errs}); err != nil {
			core.Fail(w, r, core.Internal("template error", err))
		}
	}
}

func validateForm(f FormData) map[string]string {
	errs := map[string]string{}
	err := validate.Struct(f)
	if err == nil {
		return errs
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs["form"] = "Ошибка валидации"
		return errs
	}
	for _, e := range verrs {
		key := strings.ToLower(e.Field())
		if msg, ok := formMessages[e.Field()][e.Tag()]; ok {
			errs[key] = msg
		} else {
			errs[key] = "Некорректное значение"
		}
	}
	return errs
}
