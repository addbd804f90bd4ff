// Package server wires the registration API together: storage, Google token
// verification, the HTTP API and the gRPC health endpoint. It also handles
// graceful shutdown on SIGINT/SIGTERM/SIGQUIT.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/festreg/internal/logging"
	"github.com/dmitrijs2005/festreg/internal/server/auth"
	"github.com/dmitrijs2005/festreg/internal/server/catalog"
	"github.com/dmitrijs2005/festreg/internal/server/config"
	"github.com/dmitrijs2005/festreg/internal/server/metrics"
	"github.com/dmitrijs2005/festreg/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/festreg/internal/server/rest"
	"github.com/dmitrijs2005/festreg/internal/server/services"

	gs "github.com/dmitrijs2005/festreg/internal/server/grpc"
)

var (
	openStore   = repomanager.Open
	newVerifier = func(ctx context.Context, clientID, certsURL string, logger logging.Logger) (auth.TokenVerifier, error) {
		return auth.NewGoogleVerifier(ctx, clientID, certsURL, logger)
	}
)

type App struct {
	config *config.Config
	logger logging.Logger
	store  repomanager.RepositoryManager
	router http.Handler
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	store, err := openStore(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	verifier, err := newVerifier(ctx, c.GoogleClientID, c.GoogleCertsURL, logger)
	if err != nil {
		_ = store.Close(ctx)
		return nil, fmt.Errorf("google verifier init error: %w", err)
	}

	if c.SessionSecretKey == config.DefaultSessionSecretKey {
		logger.Warn(ctx, "using the default session secret key, set SESSION_SECRET")
	}

	router := rest.NewRouter(rest.RouterDeps{
		Auth:           services.NewIdentityService(store, verifier, c, logger),
		Register:       services.NewRegistrationService(store, c, logger),
		Storage:        store,
		Catalog:        catalog.Default(),
		Metrics:        metrics.New(),
		Logger:         logger,
		AllowedOrigins: c.AllowedOrigins,
		RequestTimeout: c.RequestTimeout,
	})

	logger.Info(ctx, "storage ready", "backend", c.Storage)

	return &App{config: c, logger: logger, store: store, router: router}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := rest.NewHTTPServer(app.config.EndpointAddrHTTP, app.router, app.logger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "http server error", "error", err)
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewHealthServer(app.config.EndpointAddrGRPC, app.logger, app.store, app.config.HealthCheckInterval)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "grpc server error", "error", err)
		cancelFunc()
	}
}

// Run blocks until ctx is cancelled, a signal arrives or a server fails,
// then stops both servers and closes storage.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	if app.config.EndpointAddrGRPC != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startGRPCServer(ctx, cancelFunc)
		}()
	}

	wg.Wait()

	if err := app.store.Close(context.Background()); err != nil {
		app.logger.Error(ctx, "storage close error", "error", err)
	}

	app.logger.Info(ctx, "App stopped")
}
