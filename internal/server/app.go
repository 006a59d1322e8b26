// Package server wires storage, services and transports together and runs
// the HTTP API, the gRPC health endpoint and the background janitor until
// the process is asked to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/config"
	"github.com/dmitrijs2005/authkeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/authkeeper/internal/server/notify"
	"github.com/dmitrijs2005/authkeeper/internal/server/otp"
	"github.com/dmitrijs2005/authkeeper/internal/server/password"
	"github.com/dmitrijs2005/authkeeper/internal/server/ratelimit"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"

	gs "github.com/dmitrijs2005/authkeeper/internal/server/grpc"
)

// AppName appears in outgoing emails.
const AppName = "Auth API"

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	codes      *otp.Store
	limiter    *ratelimit.Limiter
	dispatcher *notify.Dispatcher
	httpServer *httpapi.HTTPServer
	grpcServer *gs.GRPCServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSON(os.Stdout, c.LogLevel)

	db, err := repomanager.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	hasher, err := password.New(c.PasswordHashAlgorithm, c.BcryptCost)
	if err != nil {
		db.Close()
		return nil, err
	}

	issuer := auth.NewIssuer([]byte(c.SecretKey), c.AccessTokenValidityDuration)
	gate := auth.NewGate(issuer, rm.Users(db), c.StoreTimeout)
	codes := otp.NewStore(db, rm, c.OTPValidityDuration, otp.WithTimeout(c.StoreTimeout))

	var notifier notify.Notifier
	if c.SMTPEnabled() {
		from := c.SMTPFromEmail
		if from == "" {
			from = c.SMTPUsername
		}
		notifier = notify.NewSMTPNotifier(notify.SMTPConfig{
			Host:     c.SMTPHost,
			Port:     c.SMTPPort,
			Username: c.SMTPUsername,
			Password: c.SMTPPassword,
			From:     from,
			FromName: c.SMTPFromName,
		}, notify.NewRenderer(AppName, c.OTPValidityDuration))
	} else {
		logger.Warn(ctx, "SMTP credentials not set, emails will only be logged")
		notifier = notify.NewLogNotifier(logger)
	}

	dispatcher := notify.NewDispatcher(notify.DispatcherConfig{
		BufferSize:  c.NotifyQueueSize,
		DropIfFull:  true,
		SendTimeout: c.NotifyTimeout,
	}, notifier, logger)

	users := services.NewUserService(db, rm, hasher, issuer, dispatcher, logger, c.StoreTimeout)
	recovery := services.NewRecoveryService(db, rm, codes, hasher, notifier, logger, c.StoreTimeout, c.NotifyTimeout)
	limiter := ratelimit.New(c.RateLimitRequests, c.RateLimitWindow)

	router := httpapi.NewRouter(httpapi.Deps{
		Accounts:          users,
		Recovery:          recovery,
		Authenticator:     gate,
		Limiter:           limiter,
		Logger:            logger,
		AllowedOrigins:    c.CORSAllowedOrigins,
		TrustProxyHeaders: c.TrustProxyHeaders,
	})

	app := &App{
		config:     c,
		logger:     logger,
		db:         db,
		codes:      codes,
		limiter:    limiter,
		dispatcher: dispatcher,
		httpServer: httpapi.NewHTTPServer(c.EndpointAddrHTTP, router, logger),
	}
	if c.EndpointAddrGRPC != "" {
		app.grpcServer = gs.NewGRPCServer(c.EndpointAddrGRPC, logger, db, c.HealthCheckInterval)
	}

	return app, nil
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

// runJanitor purges expired codes and idle rate-limit windows.
func (app *App) runJanitor(ctx context.Context) {
	interval := app.config.OTPPurgeInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := app.codes.PurgeExpired(ctx)
			if err != nil {
				app.logger.Error(ctx, "error purging expired codes", "error", err)
			} else if n > 0 {
				app.logger.Debug(ctx, "purged expired codes", "count", n)
			}
			app.limiter.Sweep()
		}
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.httpServer.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	if app.grpcServer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := app.grpcServer.Run(ctx); err != nil {
				app.logger.Error(ctx, err.Error())
				cancelFunc()
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.runJanitor(ctx)
	}()

	wg.Wait()

	app.shutdown(context.Background())
}

// shutdown flushes queued notifications and releases the database.
func (app *App) shutdown(ctx context.Context) {
	app.dispatcher.Close()
	if n := app.dispatcher.Dropped(); n > 0 {
		app.logger.Warn(ctx, "notifications dropped", "count", n)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "error closing db", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
