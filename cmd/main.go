package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/sbilibin2017/gw-labelvaults/internal/handlers"
	"github.com/sbilibin2017/gw-labelvaults/internal/jwt"
	"github.com/sbilibin2017/gw-labelvaults/internal/logger"
	"github.com/sbilibin2017/gw-labelvaults/internal/middlewares"
	"github.com/sbilibin2017/gw-labelvaults/internal/models"
	"github.com/sbilibin2017/gw-labelvaults/internal/repositories"
	"github.com/sbilibin2017/gw-labelvaults/internal/services"
	"github.com/sbilibin2017/gw-labelvaults/internal/tx"

	_ "github.com/jackc/pgx/v5/stdlib"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

const serviceName = "gw-labelvaults"

// config holds everything parseConfig reads from the environment.
type config struct {
	AppHost  string
	AppPort  string
	LogLevel string
	GRPCPort string

	PGHost         string
	PGPort         int
	PGUser         string
	PGPassword     string
	PGDB           string
	PGMaxOpenConns int
	PGMaxIdleConns int

	RedisHost         string
	RedisPort         int
	RedisDB           int
	RedisPassword     string
	RedisPoolSize     int
	RedisMinIdleConns int
	RedisExpSecond    int

	KafkaBrokers []string
	KafkaTopic   string

	JWTSecretKey string
	JWTExpSecond int
	BcryptCost   int
}

// @title gw-labelvaults API
// @version 1.0.0
// @description Label printing storefront: accounts, catalog, pricing, orders, wallet and support
// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	printBuildInfo()
	configPath := parseFlags()

	cfg, err := parseConfig(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(), cfg); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Starting service Version: %s, Commit: %s, Build: %s\n", buildVersion, buildCommit, buildDate)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

// parseConfig loads environment variables from a file and returns
// the application, database, Redis, Kafka, gRPC, logging and auth configuration.
func parseConfig(path string) (cfg config, err error) {
	_ = godotenv.Load(path)

	getEnv := func(key, defaultValue string) string {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			return val
		}
		return defaultValue
	}
	getInt := func(key, defaultValue string) (int, error) {
		v, err := strconv.Atoi(getEnv(key, defaultValue))
		if err != nil {
			return 0, fmt.Errorf("%s: %w", key, err)
		}
		return v, nil
	}

	// Application config
	cfg.AppHost = getEnv("APP_HOST", "localhost")
	cfg.AppPort = getEnv("APP_PORT", "8080")
	cfg.LogLevel = getEnv("APP_LOG_LEVEL", "info")
	cfg.GRPCPort = getEnv("GRPC_PORT", "50051")

	// PostgreSQL config
	cfg.PGHost = getEnv("POSTGRES_HOST", "localhost")
	cfg.PGUser = getEnv("POSTGRES_USER", "user")
	cfg.PGPassword = getEnv("POSTGRES_PASSWORD", "password")
	cfg.PGDB = getEnv("POSTGRES_DB", "database")
	if cfg.PGPort, err = getInt("POSTGRES_PORT", "5432"); err != nil {
		return
	}
	if cfg.PGMaxOpenConns, err = getInt("POSTGRES_MAX_OPEN_CONNS", "16"); err != nil {
		return
	}
	if cfg.PGMaxIdleConns, err = getInt("POSTGRES_MAX_IDLE_CONNS", "8"); err != nil {
		return
	}

	// Redis config
	cfg.RedisHost = getEnv("REDIS_HOST", "localhost")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	if cfg.RedisPort, err = getInt("REDIS_PORT", "6379"); err != nil {
		return
	}
	if cfg.RedisDB, err = getInt("REDIS_DB", "0"); err != nil {
		return
	}
	if cfg.RedisPoolSize, err = getInt("REDIS_POOL_SIZE", "10"); err != nil {
		return
	}
	if cfg.RedisMinIdleConns, err = getInt("REDIS_MIN_IDLE_CONNS", "2"); err != nil {
		return
	}
	if cfg.RedisExpSecond, err = getInt("REDIS_EXP_SECOND", "60"); err != nil {
		return
	}

	// Kafka config
	for _, b := range strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
		}
	}
	cfg.KafkaTopic = getEnv("KAFKA_TOPIC", "labelvaults.events")

	// Auth config
	cfg.JWTSecretKey = getEnv("JWT_SECRET_KEY", "my_super_secret_key")
	if cfg.JWTExpSecond, err = getInt("JWT_EXP_SECOND", "604800"); err != nil {
		return
	}
	if cfg.BcryptCost, err = getInt("BCRYPT_COST", "12"); err != nil {
		return
	}

	return
}

// run initializes the logger, database, Redis, Kafka, gRPC health and HTTP servers.
// It sets up routes, applies middleware, and handles graceful shutdown.
func run(ctx context.Context, cfg config) error {
	// Initialize logger
	if err := logger.Initialize(cfg.LogLevel, logger.WithService(serviceName)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Log.Sync()
	logger.Log.Infof("Logger initialized with level %s", cfg.LogLevel)

	// Connect to PostgreSQL
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.PGUser, cfg.PGPassword, cfg.PGHost, cfg.PGPort, cfg.PGDB)
	logger.Log.Infow("Connecting to PostgreSQL", "host", cfg.PGHost, "port", cfg.PGPort, "db", cfg.PGDB)

	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		return fmt.Errorf("PostgreSQL connection error: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.PGMaxOpenConns)
	db.SetMaxIdleConns(cfg.PGMaxIdleConns)
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("PostgreSQL ping failed: %w", err)
	}
	if err := repositories.Migrate(ctx, db); err != nil {
		return fmt.Errorf("schema migration failed: %w", err)
	}

	// Connect to Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		PoolSize:     cfg.RedisPoolSize,
		MinIdleConns: cfg.RedisMinIdleConns,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("Redis connection error: %w", err)
	}
	defer rdb.Close()

	// Kafka writer for outbound notifications
	kafkaWriter := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		Async:                  true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Log.Errorw("failed to deliver events", "count", len(messages), "error", err)
			}
		},
	}
	defer kafkaWriter.Close()

	// gRPC health server
	healthServer := health.NewServer()
	grpcServer := grpc.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)

	grpcListener, err := net.Listen("tcp", fmt.Sprintf("%s:%s", cfg.AppHost, cfg.GRPCPort))
	if err != nil {
		return fmt.Errorf("gRPC listen failed: %w", err)
	}

	// Initialize JWT service
	tokens := jwt.New(
		jwt.WithSecretKey(cfg.JWTSecretKey),
		jwt.WithExpiration(time.Duration(cfg.JWTExpSecond)*time.Second),
	)

	// Initialize repositories
	accountRepo := repositories.NewAccountRepository(db, tx.FromContext)
	walletRepo := repositories.NewWalletRepository(db, tx.FromContext)
	ledgerRepo := repositories.NewLedgerRepository(db, tx.FromContext)
	productRepo := repositories.NewProductRepository(db, tx.FromContext)
	orderRepo := repositories.NewOrderRepository(db, tx.FromContext)
	ticketRepo := repositories.NewTicketRepository(db, tx.FromContext)
	priceCache := repositories.NewProductPriceCacheRepository(rdb, time.Duration(cfg.RedisExpSecond)*time.Second)

	txManager := tx.NewManager(db)

	// Initialize services
	events := services.NewEventPublisher(kafkaWriter)
	authService := services.NewAuthService(txManager, accountRepo, walletRepo, tokens, events, cfg.BcryptCost)
	accountService := services.NewAccountService(accountRepo, walletRepo, orderRepo, ticketRepo, cfg.BcryptCost)
	pricingService := services.NewPricingService(productRepo, priceCache)
	productService := services.NewProductService(txManager, productRepo, priceCache)
	orderService := services.NewOrderService(txManager, orderRepo, productRepo, walletRepo, ledgerRepo, events)
	walletService := services.NewWalletService(txManager, walletRepo, ledgerRepo, events)
	supportService := services.NewSupportService(ticketRepo, events)

	authMiddleware := middlewares.AuthMiddleware(tokens, accountRepo)
	can := middlewares.RequireCapability

	// Setup router
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middlewares.LoggingMiddleware(logger.Log))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", handlers.NewRegisterHandler(authService))
			r.Post("/login", handlers.NewLoginHandler(authService))
			r.With(authMiddleware).Post("/refresh-token", handlers.NewRefreshTokenHandler(authService, tokens))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", handlers.NewListProductsHandler(productService))
			r.Get("/{id}", handlers.NewGetProductHandler(productService))
			r.Post("/calculate-price", handlers.NewCalculatePriceHandler(pricingService))

			r.Group(func(r chi.Router) {
				r.Use(authMiddleware, can(models.CapManageProducts), middlewares.TxMiddleware(db))
				r.Post("/", handlers.NewCreateProductHandler(productService))
				r.Put("/{id}", handlers.NewUpdateProductHandler(productService))
				r.Delete("/{id}", handlers.NewDeleteProductHandler(productService))
			})
		})

		r.Post("/support/contact", handlers.NewContactHandler(supportService))

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)

			r.Route("/users", func(r chi.Router) {
				r.Get("/profile", handlers.NewGetProfileHandler(accountService))
				r.Put("/profile", handlers.NewUpdateProfileHandler(accountService))
				r.Patch("/change-password", handlers.NewChangePasswordHandler(accountService))
				r.Delete("/account", handlers.NewDeleteAccountHandler(accountService))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", handlers.NewCreateOrderHandler(orderService))
				r.Get("/", handlers.NewListOrdersHandler(orderService))
				r.With(can(models.CapManageOrders)).Get("/admin/all", handlers.NewListAllOrdersHandler(orderService))
				r.Get("/{id}", handlers.NewGetOrderHandler(orderService))
				r.Patch("/{id}/cancel", handlers.NewCancelOrderHandler(orderService))
				r.With(can(models.CapManageOrders)).Patch("/{id}/status", handlers.NewUpdateOrderStatusHandler(orderService))
			})

			r.Route("/wallet", func(r chi.Router) {
				r.Get("/", handlers.NewGetWalletHandler(walletService))
				r.Post("/add-funds", handlers.NewAddFundsHandler(walletService))
				r.Get("/transactions", handlers.NewListTransactionsHandler(walletService))
				r.With(can(models.CapManageWallets)).Post("/deposits/{id}/confirm", handlers.NewConfirmDepositHandler(walletService))
				r.With(can(models.CapManageWallets)).Get("/{accountId}/reconcile", handlers.NewReconcileWalletHandler(walletService))
			})

			r.Route("/support", func(r chi.Router) {
				r.Post("/tickets", handlers.NewCreateTicketHandler(supportService))
				r.Get("/tickets", handlers.NewListTicketsHandler(supportService))
				r.Get("/tickets/{id}", handlers.NewGetTicketHandler(supportService))
				r.With(can(models.CapManageSupport)).Patch("/tickets/{id}", handlers.NewUpdateTicketHandler(supportService))
				r.With(can(models.CapManageSupport)).Get("/admin/tickets", handlers.NewListAllTicketsHandler(supportService))
			})
		})
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://%s:%s/swagger/doc.json", cfg.AppHost, cfg.AppPort)),
	))

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.AppHost, cfg.AppPort),
		Handler: r,
	}

	// Graceful shutdown
	errChan := make(chan error, 2)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	go func() {
		logger.Log.Infof("gRPC health server listening on %s", grpcListener.Addr())
		if err := grpcServer.Serve(grpcListener); err != nil && err != grpc.ErrServerStopped {
			errChan <- fmt.Errorf("gRPC server failed: %w", err)
		}
	}()

	go func() {
		logger.Log.Infof("HTTP server listening on %s:%s", cfg.AppHost, cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	var serveErr error
	select {
	case <-ctxShutdown.Done():
		logger.Log.Info("Shutdown signal received, stopping servers...")
	case serveErr = <-errChan:
		logger.Log.Errorw("server stopped unexpectedly", "error", serveErr)
	}

	healthServer.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("HTTP server shutdown error", "error", err)
	}
	grpcServer.GracefulStop()

	if serveErr != nil {
		return serveErr
	}
	logger.Log.Info("Servers stopped gracefully")
	return nil
}
