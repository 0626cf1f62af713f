package view

// Тела inline-блоков layout. Выводятся как есть (template.JS/CSS),
// поэтому sha256 в политике совпадает с тем, что получит браузер.
const (
	inlineScript = `document.documentElement.classList.add('js');`
	inlineStyle  = `.field-error{color:#b00020;margin:0.25rem 0 0}`
	criticalCSS  = "css/critical.css"
)

// stylesheets — href таблиц стилей в layout.
var stylesheets = []string{"css/app.css"}
