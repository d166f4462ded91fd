package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/CRDigitalAndMining/go-service-template/internal/application"
	"github.com/CRDigitalAndMining/go-service-template/internal/config"
	"github.com/CRDigitalAndMining/go-service-template/internal/logging"
	"github.com/CRDigitalAndMining/go-service-template/internal/timing"
)

var signalNotify = signal.Notify

func main() {
	kingpinApp := kingpin.New("service-template", "Starter service with layered settings, dual-mode logging, and span timing")
	envFile := kingpinApp.Flag("env-file", "Path to the base KEY=VALUE settings file").Default(".env").String()
	envOverrideFile := kingpinApp.Flag("env-override-file", "Path to the local override settings file").Default(".env.local").String()
	serverFile := kingpinApp.Flag("server-config", "Path to the YAML server tuning file").String()

	kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	settings, err := config.Load(config.Sources{Base: *envFile, Override: *envOverrideFile})
	if err != nil {
		panic(fmt.Sprintf("failed to load settings: %v", err))
	}

	tuning, err := config.LoadServer(*serverFile)
	if err != nil {
		panic(fmt.Sprintf("failed to load server config: %v", err))
	}

	logger, err := logging.New("server", settings.LogMode(), settings.ConnectionString)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	startup := timing.Start("startup", logger)
	app := application.New(settings, tuning, logger)
	if err := app.Start(); err != nil {
		logger.Critical("failed to start server", zap.Error(err))
		os.Exit(1)
	}
	startup.Stop()

	shutdown(app.Server(), tuning.ShutdownGracePeriod, logger)
}

func shutdown(server *http.Server, timeout time.Duration, logger logging.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warning("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}
