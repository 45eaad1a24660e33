package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"cloud.google.com/go/storage"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"google.golang.org/api/option"

	_ "github.com/sbilibin2017/gw-marketplace/docs"
	"github.com/sbilibin2017/gw-marketplace/internal/facades"
	"github.com/sbilibin2017/gw-marketplace/internal/handlers"
	"github.com/sbilibin2017/gw-marketplace/internal/jwt"
	"github.com/sbilibin2017/gw-marketplace/internal/logger"
	"github.com/sbilibin2017/gw-marketplace/internal/middlewares"
	"github.com/sbilibin2017/gw-marketplace/internal/realtime"
	"github.com/sbilibin2017/gw-marketplace/internal/repositories"
	"github.com/sbilibin2017/gw-marketplace/internal/services"

	_ "github.com/jackc/pgx/v5/stdlib"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

// config holds every setting read from the environment.
type config struct {
	AppHost  string
	AppPort  string
	LogLevel string

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

	GCSBucket          string
	GCSCredentialsFile string

	RateLimitRPS   float64
	RateLimitBurst int
}

// @title gw-marketplace API
// @version 1.0.0
// @description Classifieds marketplace: users, places, favorites and realtime messaging
// @host localhost:8080
// @BasePath /api
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
	fmt.Printf("Version: %s\nCommit: %s\nBuild: %s\n", buildVersion, buildCommit, buildDate)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

// parseConfig loads environment variables from a file and returns
// the application, database, Redis, Kafka, storage, JWT and rate limit configuration.
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
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}
	cfg.KafkaTopic = getEnv("KAFKA_TOPIC", "marketplace-events")

	// JWT config
	cfg.JWTSecretKey = getEnv("JWT_SECRET_KEY", "my_super_secret_key")
	if cfg.JWTExpSecond, err = getInt("JWT_EXP_SECOND", strconv.Itoa(int(jwt.DefaultExpiration.Seconds()))); err != nil {
		return
	}

	// Blob storage config
	cfg.GCSBucket = getEnv("GCS_BUCKET", "")
	cfg.GCSCredentialsFile = getEnv("GCS_CREDENTIALS_FILE", "")

	// Rate limit config
	if cfg.RateLimitRPS, err = strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "5"), 64); err != nil {
		err = fmt.Errorf("RATE_LIMIT_RPS: %w", err)
		return
	}
	if cfg.RateLimitBurst, err = getInt("RATE_LIMIT_BURST", "10"); err != nil {
		return
	}

	return
}

// run initializes the logger, database, Redis, Kafka, blob storage and HTTP server.
// It sets up routes, applies middleware, and handles graceful shutdown.
func run(ctx context.Context, cfg config) error {
	// Initialize logger
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
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

	if err := repositories.Migrate(ctx, db); err != nil {
		return fmt.Errorf("PostgreSQL migration failed: %w", err)
	}

	// Connect to Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		PoolSize:     cfg.RedisPoolSize,
		MinIdleConns: cfg.RedisMinIdleConns,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("Redis connection error: %w", err)
	}

	// Kafka producer is optional
	var kafkaWriter services.KafkaWriter
	if len(cfg.KafkaBrokers) > 0 {
		w := &kafka.Writer{
			Addr:                   kafka.TCP(cfg.KafkaBrokers...),
			Topic:                  cfg.KafkaTopic,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
		}
		defer w.Close()
		kafkaWriter = w
		logger.Log.Infow("Kafka producer configured", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	// Blob storage is optional; uploads fail with a storage error without it
	var blobStore services.BlobStore
	if cfg.GCSBucket != "" {
		var opts []option.ClientOption
		if cfg.GCSCredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.GCSCredentialsFile))
		}
		gcs, err := storage.NewClient(ctx, opts...)
		if err != nil {
			return fmt.Errorf("GCS client error: %w", err)
		}
		defer gcs.Close()
		blobStore = facades.NewBlobStorageGCSFacade(gcs.Bucket(cfg.GCSBucket))
		logger.Log.Infow("Blob storage configured", "bucket", cfg.GCSBucket)
	}

	// Initialize JWT service
	tokens := jwt.New(
		jwt.WithSecretKey(cfg.JWTSecretKey),
		jwt.WithExpiration(time.Duration(cfg.JWTExpSecond)*time.Second),
	)

	// Initialize repositories
	txManager := repositories.NewTxManager(db)
	userReadRepo := repositories.NewUserReadRepository(db)
	userWriteRepo := repositories.NewUserWriteRepository(db, repositories.GetTxFromContext)
	placeReadRepo := repositories.NewPlaceReadRepository(db)
	placeWriteRepo := repositories.NewPlaceWriteRepository(db, repositories.GetTxFromContext)
	placeCacheRepo := repositories.NewPlaceCacheRepository(rdb, time.Duration(cfg.RedisExpSecond)*time.Second)
	favoriteReadRepo := repositories.NewFavoriteReadRepository(db)
	favoriteWriteRepo := repositories.NewFavoriteWriteRepository(db, repositories.GetTxFromContext)

	// Initialize services
	uploadService := services.NewUploadService(blobStore)
	authService := services.NewAuthService(userReadRepo, userWriteRepo, tokens)
	placeService := services.NewPlaceService(
		txManager, placeReadRepo, placeWriteRepo, userReadRepo, userWriteRepo,
		placeCacheRepo, uploadService, kafkaWriter,
	)
	favoriteService := services.NewFavoriteService(favoriteWriteRepo, favoriteReadRepo, kafkaWriter)
	userService := services.NewUserService(userReadRepo, userWriteRepo, uploadService, kafkaWriter)

	// Initialize handlers
	getUserID := middlewares.GetUserIDFromContext

	registerHandler := handlers.NewRegisterHandler(authService)
	loginHandler := handlers.NewLoginHandler(authService)

	createPlaceHandler := handlers.NewCreatePlaceHandler(placeService, uploadService, getUserID)
	updatePlaceHandler := handlers.NewUpdatePlaceHandler(placeService, getUserID)
	patchPlaceHandler := handlers.NewPatchPlaceHandler(placeService, getUserID)
	deletePlaceHandler := handlers.NewDeletePlaceHandler(placeService, getUserID)
	getPlaceHandler := handlers.NewGetPlaceHandler(placeService)
	searchPlacesHandler := handlers.NewSearchPlacesHandler(placeService)
	imageURLHandler := handlers.NewImageURLHandler(uploadService)

	addFavoriteHandler := handlers.NewAddFavoriteHandler(favoriteService, getUserID)
	listFavoritesHandler := handlers.NewListFavoritesHandler(favoriteService, getUserID)

	getUserHandler := handlers.NewGetUserHandler(userService)
	updateUserHandler := handlers.NewUpdateUserHandler(userService, getUserID)
	deleteUserHandler := handlers.NewDeleteUserHandler(userService, getUserID)
	userPictureHandler := handlers.NewUserPictureHandler(userService, getUserID)

	socketHandler := realtime.NewHandler(realtime.NewHub(), userWriteRepo)

	// Setup router
	authMiddleware := middlewares.AuthMiddleware(tokens)
	rateLimiter := middlewares.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	limiterCtx, stopLimiter := context.WithCancel(ctx)
	defer stopLimiter()
	go rateLimiter.Run(limiterCtx, time.Minute)

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.LoggingMiddleware)

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Group(func(r chi.Router) {
			r.Use(rateLimiter.Middleware)
			r.Post("/auth/register", registerHandler)
			r.Post("/auth/login", loginHandler)
		})
		r.Get("/places/place", getPlaceHandler)
		r.Get("/places/places", searchPlacesHandler)
		r.Get("/places/image", imageURLHandler)
		r.Get("/users/user", getUserHandler)

		// Protected routes with JWT middleware
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/places/create", createPlaceHandler)
			r.Put("/places/update", updatePlaceHandler)
			r.Patch("/places/update", patchPlaceHandler)
			r.Delete("/places/delete", deletePlaceHandler)
			r.Post("/places/favorite", addFavoriteHandler)
			r.Get("/places/favorites", listFavoritesHandler)
			r.Put("/users/update", updateUserHandler)
			r.Delete("/users/delete", deleteUserHandler)
			r.Post("/users/picture", userPictureHandler)
		})
	})

	r.Handle("/socket", socketHandler)

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://%s:%s/swagger/doc.json", cfg.AppHost, cfg.AppPort)),
	))

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.AppHost, cfg.AppPort),
		Handler: r,
	}

	// Graceful shutdown
	errChan := make(chan error, 1)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	go func() {
		logger.Log.Infof("HTTP server listening on %s:%s", cfg.AppHost, cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	select {
	case <-ctxShutdown.Done():
		logger.Log.Info("Shutdown signal received, stopping HTTP server...")
	case serveErr := <-errChan:
		return serveErr
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("HTTP server shutdown error", "error", err)
	}

	logger.Log.Info("HTTP server stopped gracefully")
	return nil
}
