// Command devserver は 3 つの API を 1 つの HTTP サーバーでローカル実行します。
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ogurasousui/philocom-backoffice/internal/platform/app"
	"github.com/ogurasousui/philocom-backoffice/internal/platform/config"
	"github.com/ogurasousui/philocom-backoffice/internal/platform/logger"
	"github.com/ogurasousui/philocom-backoffice/internal/platform/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatalf("devserver must not run with app.environment=%s", cfg.App.Environment)
	}

	appLogger := logger.New(*cfg)

	application, err := app.New(ctx, cfg, appLogger)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}
	defer application.Close()

	srv := server.New(cfg.Dev.ListenAddr, application.Router(), cfg.Dev.Claims, appLogger)

	appLogger.Info("dev server listening", slog.String("addr", cfg.Dev.ListenAddr), slog.Bool("claims", len(cfg.Dev.Claims) > 0))

	if err := srv.Run(ctx); err != nil {
		log.Fatalf("server stopped with error: %v", err)
	}
}
