package application

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/CRDigitalAndMining/go-service-template/internal/api"
	"github.com/CRDigitalAndMining/go-service-template/internal/config"
	"github.com/CRDigitalAndMining/go-service-template/internal/logging"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	settings config.Settings
	handler  *api.Handler
	router   http.Handler
	logger   logging.Logger
	server   *http.Server
}

// New wires the handler, router, and HTTP server from the resolved settings
// and server tuning.
func New(settings config.Settings, tuning config.Server, logger logging.Logger) *App {
	handler := api.NewHandler(settings, logger)
	router := api.NewRouter(handler, logger,
		api.WithLogging(tuning.EnableRequestLogging),
		api.WithRateLimit(settings.RateLimitRPS, settings.RateLimitBurst),
	)

	return &App{
		settings: settings,
		handler:  handler,
		router:   router,
		logger:   logger,
		server:   NewServer(settings, tuning, router),
	}
}

// NewServer creates and configures an HTTP server from the resolved settings
// and server tuning.
func NewServer(settings config.Settings, tuning config.Server, handler http.Handler) *http.Server {
	addr := settings.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: tuning.ReadHeaderTimeout,
		WriteTimeout:      tuning.WriteTimeout,
		IdleTimeout:       tuning.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Critical("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}
