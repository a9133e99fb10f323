package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bootcamp-directory/config"
	"github.com/oksasatya/bootcamp-directory/internal/application"
	"github.com/oksasatya/bootcamp-directory/internal/container"
	"github.com/oksasatya/bootcamp-directory/internal/infrastructure/geocoder"
	pginfra "github.com/oksasatya/bootcamp-directory/internal/infrastructure/postgres"
	"github.com/oksasatya/bootcamp-directory/internal/infrastructure/search"
	"github.com/oksasatya/bootcamp-directory/internal/infrastructure/storage"
	"github.com/oksasatya/bootcamp-directory/internal/interface/middleware"
	"github.com/oksasatya/bootcamp-directory/internal/router"
	"github.com/oksasatya/bootcamp-directory/pkg/helpers"
	"github.com/oksasatya/bootcamp-directory/pkg/mailer"
	"github.com/oksasatya/bootcamp-directory/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{
		MaxConns:    cfg.DBMaxConns,
		MinConns:    cfg.DBMinConns,
		MaxConnLife: cfg.DBMaxConnLife,
	}, logger)
	if err != nil {
		logger.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	if err := pginfra.Migrate(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		logger.Fatalf("migration failed: %v", err)
	}

	rdb := connectRedis(ctx, cfg, logger)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	photos, closePhotos := photoStore(ctx, cfg, logger)
	defer closePhotos()

	mail, closeMail := mailTransport(cfg, logger)
	defer closeMail()

	c := &container.Container{
		Config:    cfg,
		Logger:    logger,
		Redis:     rdb,
		JWT:       helpers.NewJWTManager(cfg.JWTSecret, cfg.JWTExpire),
		Cookies:   helpers.NewCookieManager(cfg.CookieDomain, cfg.IsProduction(), cfg.CookieTTL()),
		Users:     pginfra.NewUserRepository(pool),
		Bootcamps: pginfra.NewBootcampRepository(pool),
		Courses:   pginfra.NewCourseRepository(pool),
		Geocoder:  geocoder.NewMapQuest(cfg.GeocoderAPIKey),
		Photos:    photos,
		Mail:      mail,
	}
	if idx := bootcampIndex(ctx, cfg, logger); idx != nil {
		c.Search = idx
	}

	r := gin.New()
	if err := middleware.TrustProxies(r, cfg.TrustedProxyList(), cfg.TrustedPlatform); err != nil {
		logger.Fatalf("invalid TRUSTED_PROXIES: %v", err)
	}
	r.Use(middleware.RequestIDMiddleware(), middleware.RealIP(), middleware.Errors(logger), middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigins()))
	if cfg.HTTPLogEnabled {
		r.Use(middleware.AccessLog(logger))
	}

	reg := router.NewRegistry(r)
	router.InitModules(reg, c)
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("server starting on :%s (%s)", cfg.Port, cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Errorf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}

// connectRedis returns nil when rate limiting is off or Redis is unreachable;
// the limiter then lets every request through.
func connectRedis(ctx context.Context, cfg *config.Config, logger *logrus.Logger) *redis.Client {
	if !cfg.RateLimitEnabled {
		return nil
	}
	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err := helpers.PingRedis(ctx, rdb); err != nil {
		logger.WithError(err).Warn("redis unavailable, rate limiting disabled")
		_ = rdb.Close()
		return nil
	}
	return rdb
}

func photoStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (application.PhotoStore, func()) {
	if cfg.GCSBucket == "" {
		logger.WithField("dir", cfg.FileUploadPath).Info("photos stored locally")
		return storage.NewLocal(cfg.FileUploadPath), func() {}
	}
	client, err := storage.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
	if err != nil {
		logger.Fatalf("failed to init GCS client: %v", err)
	}
	logger.WithField("bucket", cfg.GCSBucket).Info("photos stored in GCS")
	return storage.NewGCS(client, cfg.GCSBucket), func() { _ = client.Close() }
}

func mailTransport(cfg *config.Config, logger *logrus.Logger) (mailer.Sender, func()) {
	switch cfg.MailTransport {
	case "mailgun":
		return mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender), func() {}
	case "queue":
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			logger.Fatalf("rabbitmq: %v", err)
		}
		return mailer.NewQueue(pub), pub.Close
	default:
		return mailer.NewLog(logger), func() {}
	}
}

func bootcampIndex(ctx context.Context, cfg *config.Config, logger *logrus.Logger) *search.BootcampIndex {
	addrs := cfg.ESAddrs()
	if len(addrs) == 0 {
		return nil
	}
	es, err := search.Connect(ctx, search.Options{Addrs: addrs, Username: cfg.ElasticsearchUser, Password: cfg.ElasticsearchPass})
	if err != nil {
		logger.WithError(err).Warn("elasticsearch unavailable, search disabled")
		return nil
	}
	return search.NewBootcampIndex(es, cfg.ESBootcampsIndex, logger)
}
