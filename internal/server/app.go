// Package server wires the account service together: logger, storage,
// token revocation, services and the HTTP API. It also owns graceful
// shutdown on SIGINT, SIGTERM and SIGQUIT.
package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/server/auth"
	"github.com/dmitrijs2005/accountkeeper/internal/server/config"
	"github.com/dmitrijs2005/accountkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/accountkeeper/internal/server/rest"
	"github.com/dmitrijs2005/accountkeeper/internal/server/revocation"
	"github.com/dmitrijs2005/accountkeeper/internal/server/services"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	repos      repomanager.RepositoryManager
	revoked    revocation.Store
	httpServer *rest.HTTPServer
	closers    []func() error
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := newLogger(c.LogBackend, c.LogLevel)
	if err != nil {
		return nil, err
	}
	app := &App{config: c, logger: logger}
	app.warnInsecureDefaults(ctx)

	if err := app.initStorage(ctx); err != nil {
		app.close(ctx)
		return nil, err
	}
	if err := app.initRevocation(ctx); err != nil {
		app.close(ctx)
		return nil, err
	}

	hasher := auth.NewBcryptHasher(c.BcryptCost)
	accountService := services.NewAccountService(app.repos.Accounts(), hasher, c, logger)
	authService := services.NewAuthService(accountService, app.repos.RefreshTokens(), app.revoked, c, logger)

	h := rest.NewHandler(accountService, authService, app, rest.NewMetrics(), logger, rest.Options{
		LegacyEnvelopeStatus: c.LegacyEnvelopeStatus,
	})
	app.httpServer = rest.NewHTTPServer(c.EndpointAddrHTTP, rest.NewRouter(h), logger, c.ShutdownTimeout)

	return app, nil
}

func newLogger(backend, level string) (logging.Logger, error) {
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	switch backend {
	case "", "slog":
		return logging.NewJSONSlogLogger(os.Stdout, lvl), nil
	case "zap":
		l, err := logging.NewProductionZapLogger(lvl)
		if err != nil {
			return nil, fmt.Errorf("zap init error: %w", err)
		}
		return l, nil
	default:
		return nil, fmt.Errorf("unknown log backend %q", backend)
	}
}

func (app *App) warnInsecureDefaults(ctx context.Context) {
	if app.config.SecretKey == config.DefaultSecretKey {
		app.logger.Warn(ctx, "JWT secret is the built-in default, set ACCOUNTS_SECRET_KEY")
	}
}

// initStorage selects PostgreSQL when a DSN is configured and the in-memory
// store otherwise.
func (app *App) initStorage(ctx context.Context) error {
	if app.config.DatabaseDSN == "" {
		app.logger.Warn(ctx, "no database DSN configured, using in-memory storage")
		app.repos = repomanager.NewMemoryRepositoryManager()
		return nil
	}

	db, err := repomanager.OpenPostgres(ctx, app.config.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	rm := repomanager.NewPostgresRepositoryManager(db)
	app.repos = rm
	app.closers = append(app.closers, rm.Close)

	if err := rm.RunMigrations(ctx); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}
	app.logger.Info(ctx, "database ready")
	return nil
}

func (app *App) initRevocation(ctx context.Context) error {
	if app.config.RedisAddr == "" {
		app.revoked = revocation.NewMemoryStore()
		return nil
	}

	client, err := revocation.NewRedisClient(app.config.RedisAddr)
	if err != nil {
		return fmt.Errorf("redis init error: %w", err)
	}
	store := revocation.NewRedisStore(client)
	app.revoked = store
	app.closers = append(app.closers, store.Close)

	if err := store.Ping(ctx); err != nil {
		return fmt.Errorf("redis ping error: %w", err)
	}
	app.logger.Info(ctx, "token revocation backed by redis")
	return nil
}

// Ping reports readiness: the repository store and, when configured, Redis.
func (app *App) Ping(ctx context.Context) error {
	if err := app.repos.Ping(ctx); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if p, ok := app.revoked.(interface{ Ping(context.Context) error }); ok {
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
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
	if err := app.httpServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until a signal arrives or the server fails, then releases
// storage and Redis connections.
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

	wg.Wait()

	app.close(ctx)
	app.logger.Info(ctx, "App stopped")
}

func (app *App) close(ctx context.Context) {
	var errs []error
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	app.closers = nil
	if err := errors.Join(errs...); err != nil {
		app.logger.Error(ctx, "shutdown error", "error", err)
	}
	if z, ok := app.logger.(*logging.ZapLogger); ok {
		_ = z.Sync()
	}
}
