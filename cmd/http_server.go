package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/mailroom-io/mailroom/internal"
	"github.com/mailroom-io/mailroom/internal/audit"
	auditpg "github.com/mailroom-io/mailroom/internal/audit/postgres"
	"github.com/mailroom-io/mailroom/internal/auth"
	authpg "github.com/mailroom-io/mailroom/internal/auth/postgres"
	"github.com/mailroom-io/mailroom/internal/core/events"
	"github.com/mailroom-io/mailroom/internal/email"
	emailpg "github.com/mailroom-io/mailroom/internal/email/postgres"
	"github.com/mailroom-io/mailroom/internal/identity"
	identitypg "github.com/mailroom-io/mailroom/internal/identity/postgres"
	"github.com/mailroom-io/mailroom/internal/smtpgateway"
	"github.com/mailroom-io/mailroom/internal/template"
	templatepg "github.com/mailroom-io/mailroom/internal/template/postgres"
	"github.com/mailroom-io/mailroom/internal/transport/rest"
	"github.com/mailroom-io/mailroom/internal/user"
	userpg "github.com/mailroom-io/mailroom/internal/user/postgres"
	"github.com/mailroom-io/mailroom/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Logging.Level, config.Logging.Format)
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// GORM rides on the same pgx connection pool the health check pings
	gdb, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	bus := events.NewEventBus(lg)

	auditService := audit.NewService(auditpg.NewAuditRepository(gdb), lg)
	auditService.RegisterSubscribers(bus)

	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authpg.NewRepository(gdb), tokenGen)
	authHandler := auth.NewHandler(authService)

	userRepo := userpg.NewUserRepository(gdb)
	userService := user.NewService(userRepo, bus, lg, config.Security.BCryptCost)
	userHandler := user.NewHandler(userService)

	identityRepo := identitypg.NewIdentityRepository(gdb)
	identityService := identity.NewService(identityRepo, bus, lg)
	identityHandler := identity.NewHandler(identityService)

	templateService := template.NewService(templatepg.NewTemplateRepository(gdb), bus, lg)
	templateHandler := template.NewHandler(templateService)

	authorizer := email.NewAuthorizer(identityRepo, userRepo, lg)
	gateway := smtpgateway.NewGateway(config.SMTP, lg)
	logWriter := email.NewLogWriter(emailpg.NewSendLogRepository(gdb), lg)
	emailService := email.NewService(authorizer, gateway, logWriter, bus, lg)
	emailHandler := email.NewHandler(emailService)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, db.DB, authHandler, userHandler, identityHandler, templateHandler, emailHandler, lg)

	return &Dependencies{
		Config: config,
		Logger: lg,
		DB:     db,
		Router: router,
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
