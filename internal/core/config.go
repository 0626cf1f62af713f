package core

//config.go

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"cspmeta/internal/csp"
)

// Config определяет настройки приложения (OWASP A05: Security Misconfiguration)
type Config struct {
	AppName string `validate:"required"`
	Addr    string `validate:"required"` // ":8080"
	Env     string `validate:"oneof=dev staging prod"`
	CSRFKey string `validate:"required"`

	// HTTPS и связанные заголовки
	Secure   bool
	CertFile string `validate:"required_with=KeyFile"`
	KeyFile  string `validate:"required_with=CertFile"`

	// Каталог дневных логов; пусто — только stdout
	LogDir         string
	TrustedProxies []string `validate:"dive,cidr|ip"`

	ShutdownTimeout   time.Duration `validate:"gt=0"`
	ReadHeaderTimeout time.Duration `validate:"gt=0"`
	ReadTimeout       time.Duration `validate:"gt=0"`
	WriteTimeout      time.Duration `validate:"gt=0"`
	IdleTimeout       time.Duration `validate:"gt=0"`
	RequestTimeout    time.Duration `validate:"gt=0"`

	CSP CSPConfig
}

// CSPConfig — откуда берётся Content-Security-Policy и как доставляется.
type CSPConfig struct {
	Prefix       string `validate:"required"` // CSP_DEFAULT_SRC и т.д.
	Delivery     string `validate:"oneof=meta header both"`
	AssetsPrefix string `validate:"required,startswith=/,endswith=/"`

	// YAML с директивами; переменные окружения важнее
	File string
	// CSS с диска вместо встроенных
	AssetsDir string
}

func (c CSPConfig) Meta() bool   { return c.Delivery == "meta" || c.Delivery == "both" }
func (c CSPConfig) Header() bool { return c.Delivery == "header" || c.Delivery == "both" }

// Mode — режим сборки CSP по APP_ENV.
func (c Config) Mode() csp.BuildMode { return csp.ParseMode(c.Env) }

func (c Config) IsProd() bool { return c.Env == "prod" }

var validate = validator.New()

// Load загружает конфигурацию из переменных окружения с значениями по умолчанию (OWASP A05)
func Load() (Config, error) {
	cfg := Config{
		AppName:           getEnv("APP_NAME", "cspmeta"),
		Addr:              getEnv("HTTP_ADDR", ":8080"),
		Env:               getEnv("APP_ENV", "dev"),
		CSRFKey:           getEnv("CSRF_KEY", ""),
		Secure:            getEnv("SECURE", "") == "true",
		CertFile:          getEnv("TLS_CERT_FILE", ""),
		KeyFile:           getEnv("TLS_KEY_FILE", ""),
		LogDir:            getEnv("LOG_DIR", "logs"),
		TrustedProxies:    getEnvList("TRUSTED_PROXIES"),
		ShutdownTimeout:   getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		ReadHeaderTimeout: getEnvDuration("READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       getEnvDuration("READ_TIMEOUT", 10*time.Second),
		WriteTimeout:      getEnvDuration("WRITE_TIMEOUT", 30*time.Second),
		IdleTimeout:       getEnvDuration("IDLE_TIMEOUT", 60*time.Second),
		RequestTimeout:    getEnvDuration("REQUEST_TIMEOUT", 15*time.Second),
		CSP: CSPConfig{
			Prefix:       getEnv("CSP_ENV_PREFIX", "CSP"),
			File:         getEnv("CSP_FILE", ""),
			Delivery:     getEnv("CSP_DELIVERY", "meta"),
			AssetsDir:    getEnv("ASSETS_DIR", ""),
			AssetsPrefix: getEnv("ASSETS_PREFIX", "/assets/"),
		},
	}

	// В dev ключ можно не задавать — генерируем на время жизни процесса
	if cfg.CSRFKey == "" && !cfg.IsProd() {
		cfg.CSRFKey = generateRandomKey()
	}

	if err := validate.Struct(cfg); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}

	// Проверяет конфигурацию для продакшен-среды
	if cfg.IsProd() {
		if len(cfg.CSRFKey) < 32 {
			return cfg, fmt.Errorf("config: CSRF_KEY must be at least 32 bytes in prod, got %d", len(cfg.CSRFKey))
		}
		if cfg.Secure && (cfg.CertFile == "" || cfg.KeyFile == "") {
			return cfg, fmt.Errorf("config: TLS_CERT_FILE and TLS_KEY_FILE are required when SECURE=true in prod")
		}
	}

	return cfg, nil
}

// getEnv возвращает значение переменной окружения или значение по умолчанию
func getEnv(key, def string) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	return val
}

// getEnvList — список через запятую, пустые элементы отбрасываются
func getEnvList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// getEnvDuration возвращает значение длительности из переменной окружения или значение по умолчанию
func getEnvDuration(key string, def time.Duration) time.Duration {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		LogError("Неверный формат длительности", map[string]interface{}{"key": key, "value": val, "error": err.Error()})
		return def
	}
	return d
}

// generateRandomKey создаёт случайный 32-байтовый ключ для CSRF в формате base64
func generateRandomKey() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		LogError("Ошибка генерации CSRF-ключа", map[string]interface{}{"error": err.Error()})
		return "fallback-key-please-change-fallback-key"
	}
	return base64.StdEncoding.EncodeToString(b)
}
