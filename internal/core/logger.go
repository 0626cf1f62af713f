package core

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Logger — текущие приёмники логов: основной и отдельный для ошибок.
type Logger struct {
	mainOut io.Writer
	errOut  io.Writer
	files   []*os.File
}

var (
	globalLogger *Logger
	mu           sync.Mutex
	cleanupOnce  sync.Once

	// base пишет через levelWriter, поэтому переживает ротацию файлов.
	base = zerolog.New(levelWriter{}).With().Timestamp().Logger()
)

// levelWriter раскладывает записи: всё в основной лог, Error и выше — ещё и в лог ошибок.
type levelWriter struct{}

func (w levelWriter) Write(p []byte) (int, error) {
	return w.WriteLevel(zerolog.NoLevel, p)
}

func (levelWriter) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	mu.Lock()
	defer mu.Unlock()
	if globalLogger == nil {
		return len(p), nil // Игнорируем, если логгер закрыт
	}
	n, err := globalLogger.mainOut.Write(p)
	if globalLogger.errOut != nil && l >= zerolog.ErrorLevel && l < zerolog.NoLevel {
		_, _ = globalLogger.errOut.Write(p)
	}
	return n, err
}

// InitDailyLog открывает logs/DD-MM-YYYY.log и logs/errors-DD-MM-YYYY.log.
// Основной лог дублируется в stdout. Логи старше 7 дней удаляются.
func InitDailyLog(dir string) error {
	// Создаём директорию logs
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}

	// Формируем имена файлов на основе текущей даты
	dateStr := time.Now().Format("02-01-2006")
	mainFile, err := os.OpenFile(filepath.Join(dir, dateStr+".log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open main log: %w", err)
	}
	errorFile, err := os.OpenFile(filepath.Join(dir, "errors-"+dateStr+".log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		_ = mainFile.Close()
		return fmt.Errorf("open error log: %w", err)
	}

	swap(&Logger{
		mainOut: io.MultiWriter(mainFile, os.Stdout),
		errOut:  errorFile,
		files:   []*os.File{mainFile, errorFile},
	})

	// Запускаем очистку старых логов один раз
	cleanupOnce.Do(func() { go cleanupOldLogs(dir, 7) })
	return nil
}

// SetOutput направляет все логи в w (stdout в CLI, буфер в тестах).
func SetOutput(w io.Writer) {
	swap(&Logger{mainOut: w})
}

func swap(l *Logger) {
	mu.Lock()
	old := globalLogger
	globalLogger = l
	mu.Unlock()
	if old != nil {
		closeFiles(old)
	}
}

// L — zerolog-логгер для компонентов (csp.Builder и др.).
func L() zerolog.Logger { return base }

func LogInfo(msg string, fields map[string]interface{}) {
	logEvent(base.Info(), msg, fields)
}

func LogWarn(msg string, fields map[string]interface{}) {
	logEvent(base.Warn(), msg, fields)
}

func LogError(msg string, fields map[string]interface{}) {
	logEvent(base.Error(), msg, fields)
}

func logEvent(event *zerolog.Event, msg string, fields map[string]interface{}) {
	for k, v := range fields {
		event = event.Interface(k, v)
	}
	event.Msg(msg)
}

func cleanupOldLogs(dir string, days int) {
	files, err := os.ReadDir(dir)
	if err != nil {
		LogError("Не удалось прочитать каталог логов", map[string]interface{}{"dir": dir, "error": err.Error()})
		return
	}

	cutoff := time.Now().AddDate(0, 0, -days)
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		info, err := file.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			path := filepath.Join(dir, file.Name())
			if err := os.Remove(path); err != nil {
				LogError("Не удалось удалить старый лог", map[string]interface{}{"path": path, "error": err.Error()})
			}
		}
	}
}

// Close закрывает файлы логов; дальнейшие записи отбрасываются.
func Close() {
	mu.Lock()
	old := globalLogger
	globalLogger = nil
	mu.Unlock()
	if old != nil {
		closeFiles(old)
	}
}

func closeFiles(l *Logger) {
	// Логируем ошибки закрытия в stderr
	consoleLogger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	for _, f := range l.files {
		if err := f.Close(); err != nil {
			consoleLogger.Error().Msgf("Закрытие %s: %v", f.Name(), err)
		}
	}
}
