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
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/obsidianfr/intranet/internal"
	"github.com/obsidianfr/intranet/internal/audit"
	auditPostgres "github.com/obsidianfr/intranet/internal/audit/postgres"
	"github.com/obsidianfr/intranet/internal/auth"
	authPostgres "github.com/obsidianfr/intranet/internal/auth/postgres"
	"github.com/obsidianfr/intranet/internal/core/events"
	"github.com/obsidianfr/intranet/internal/dashboard"
	dashboardPostgres "github.com/obsidianfr/intranet/internal/dashboard/postgres"
	"github.com/obsidianfr/intranet/internal/document"
	documentPostgres "github.com/obsidianfr/intranet/internal/document/postgres"
	"github.com/obsidianfr/intranet/internal/message"
	messagePostgres "github.com/obsidianfr/intranet/internal/message/postgres"
	"github.com/obsidianfr/intranet/internal/module"
	modulePostgres "github.com/obsidianfr/intranet/internal/module/postgres"
	"github.com/obsidianfr/intranet/internal/notification"
	"github.com/obsidianfr/intranet/internal/transport/rest"
	"github.com/obsidianfr/intranet/internal/user"
	userPostgres "github.com/obsidianfr/intranet/internal/user/postgres"
	"github.com/obsidianfr/intranet/pkg/logger"
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
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Level, config.Observability.Logging.Format)
	lg := logger.L()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	var redisClient *redis.Client
	if config.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     config.Redis.Addr,
			Password: config.Redis.Password,
			DB:       config.Redis.DB,
		})
	}

	eventBus := events.NewEventBus(lg)
	notification.NewDiscordNotifier(config.Notification, lg).Subscribe(eventBus)

	auditService := audit.NewService(auditPostgres.NewAuditRepository(gormDB), lg)

	tokenGen := auth.NewJWTTokenGenerator(config.Security.JWTSecret, config.Security.TokenDuration)
	authService := auth.NewService(authPostgres.NewAuthRepository(gormDB), tokenGen, auditService, config.Security.BCryptCost, lg)
	authHandler := auth.NewHandler(authService)

	permissionService := auth.NewPermissionService(authPostgres.NewPermissionRepository(gormDB), auditService, lg)
	permissionHandler := auth.NewPermissionHandler(permissionService)

	userService := user.NewService(userPostgres.NewUserRepository(gormDB), authService, auditService, eventBus, lg)
	userHandler := user.NewHandler(userService, config.Messaging.MinQueryLen, config.Messaging.SearchLimit)

	documentService := document.NewService(documentPostgres.NewDocumentRepository(gormDB), auditService, lg)
	documentHandler := document.NewHandler(documentService)

	messageRepo := messagePostgres.NewMessageRepository(gormDB)
	quota := message.NewQuotaChecker(redisClient, messageRepo, config.Messaging.MaxPerDay, lg)
	messageService := message.NewService(messageRepo, quota, auditService, message.Config{
		PageSize:    config.Messaging.PageSize,
		SearchLimit: config.Messaging.SearchLimit,
		MinQueryLen: config.Messaging.MinQueryLen,
	}, lg)
	messageHandler := message.NewHandler(messageService)

	moduleService := module.NewService(modulePostgres.NewModuleRepository(gormDB), auditService, lg)
	moduleHandler := module.NewHandler(moduleService)

	auditHandler := audit.NewHandler(auditService)

	dashboardService := dashboard.NewService(
		dashboardPostgres.NewStatsRepository(gormDB),
		moduleService,
		messageService,
		documentService,
		lg,
	)
	dashboardHandler := dashboard.NewHandler(dashboardService)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, db.DB, rest.Handlers{
		Auth:        authHandler,
		Permissions: permissionHandler,
		Users:       userHandler,
		Documents:   documentHandler,
		Messages:    messageHandler,
		Modules:     moduleHandler,
		Audit:       auditHandler,
		Dashboard:   dashboardHandler,
	}, config.Server.AllowedOrigins, lg)

	return &Dependencies{
		Config: config,
		Logger: lg,
		DB:     db,
		Router: router,
	}, nil
}

// initDB opens the pgx-backed handle shared by the health check and the orm.
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
