package main

//main.go
import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cspmeta/internal/app"
	"cspmeta/internal/core"
)

func main() {
	// 1) Конфиг
	cfg, err := core.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// 2) Логи
	if cfg.LogDir != "" {
		if err := core.InitDailyLog(cfg.LogDir); err != nil {
			fmt.Fprintf(os.Stderr, "Ошибка инициализации логов: %v\n", err)
			os.Exit(1)
		}
	} else {
		core.SetOutput(os.Stdout)
	}
	defer core.Close()
	core.LogInfo("Конфигурация загружена", map[string]interface{}{"env": cfg.Env, "secure": cfg.Secure, "csp_delivery": cfg.CSP.Delivery})

	// 3) Контекст для фоновых задач (ротация логов)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.LogDir != "" {
		startLogRotation(ctx, cfg.LogDir)
	}

	// 4) Приложение: CSP, шаблоны, роутер
	handler, err := app.New(cfg)
	if err != nil {
		core.LogError("Ошибка инициализации приложения", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	// 5) HTTP-сервер с таймаутами (OWASP A05)
	srv := core.Server(cfg, handler)

	// 6) Перехват сигналов
	sigs, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 7) Запуск сервера
	runServer(srv, cfg)

	// 8) Ожидаем сигнал завершения
	waitShutdown(sigs, srv, cfg)
}

// startLogRotation — ротация раз в сутки
func startLogRotation(ctx context.Context, dir string) {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := core.InitDailyLog(dir); err != nil {
					fmt.Fprintf(os.Stderr, "Ошибка ротации логов: %v\n", err)
				}
			}
		}
	}()
}

// runServer — запуск (ListenAndServe) в горутине
func runServer(srv *http.Server, cfg core.Config) {
	go func() {
		core.LogInfo("http: сервер запущен", map[string]interface{}{"addr": cfg.Addr, "env": cfg.Env, "app": cfg.AppName})
		var err error
		if cfg.Secure {
			err = srv.ListenAndServeTLS(cfg.CertFile, cfg.KeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if !errors.Is(err, http.ErrServerClosed) {
			core.LogError("Ошибка работы сервера", map[string]interface{}{"error": err.Error()})
			core.Close()
			os.Exit(1)
		}
	}()
}

// waitShutdown — ожидание сигналов и shutdown
func waitShutdown(sigs context.Context, srv *http.Server, cfg core.Config) {
	<-sigs.Done()
	core.LogInfo("http: начат процесс завершения", nil)
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		core.LogError("Ошибка завершения сервера", map[string]interface{}{"error": err.Error()})
		return
	}
	core.LogInfo("http: завершение выполнено", nil)
}
