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
	"github.com/redis/go-redis/v9"

	"github.com/vnkhanh/checkout-survey/config"
	"github.com/vnkhanh/checkout-survey/controllers"
	"github.com/vnkhanh/checkout-survey/logger"
	"github.com/vnkhanh/checkout-survey/metrics"
	"github.com/vnkhanh/checkout-survey/middleware"
	"github.com/vnkhanh/checkout-survey/questionnaire"
	"github.com/vnkhanh/checkout-survey/routes"
	"github.com/vnkhanh/checkout-survey/services"
	"github.com/vnkhanh/checkout-survey/utils"
)

func main() {
	cfg := config.Load()
	logger.Setup(cfg.LogLevel, cfg.LogFormat)
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.JWTSecret == "" {
		logger.Log.Fatal("JWT_SECRET is required")
	}

	// Kết nối DB + AutoMigrate
	db, err := config.ConnectDB(cfg)
	if err != nil {
		logger.WithError(err).Fatal("database")
	}
	defer func() {
		if err := config.CloseDB(db); err != nil {
			logger.WithError(err).Warn("close database")
		}
	}()

	m := metrics.New()

	store, closeStore := sessionStore(cfg)
	defer closeStore()

	var uploader services.Uploader
	if cfg.SupabaseEnabled() {
		uploader = utils.NewSupabaseStorage(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseBucket)
	}

	surveys := services.NewSurveyService(db)
	responses := services.NewResponseService(db, m)
	dashboard := services.NewDashboardService(db, surveys)
	stats := services.NewStatsService(surveys, dashboard)
	exports := services.NewExportService(db, dashboard, cfg.ExportDir, uploader, m)
	auth := services.NewAuthService(db, cfg.JWTSecret)

	persister := questionnaire.NewAsyncPersister(responses, 10*time.Second)
	sessions := services.NewSessionService(surveys, store, persister, m)

	limiter := middleware.NewIPRateLimiter(cfg.PublicRatePerMin, cfg.PublicRateBurst, 5*time.Minute)
	defer limiter.Stop()

	engine := routes.NewEngine(routes.Deps{
		Auth:          auth,
		Metrics:       m,
		PublicLimiter: limiter,
		CORSOrigins:   cfg.CORSOrigins,
		Surveys:       controllers.NewSurveyHandler(surveys),
		Proxy:         controllers.NewProxyHandler(surveys, responses),
		Sessions:      controllers.NewSessionHandler(sessions),
		Dashboard:     controllers.NewDashboardHandler(dashboard, stats),
		Exports:       controllers.NewExportHandler(exports),
		Accounts:      controllers.NewAuthHandler(auth),
		Health:        controllers.NewHealthHandler(db),
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.WithField("port", cfg.Port).Info("Server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("server shutdown")
	}
	// Chờ các lần ghi phản hồi và job export còn dở trước khi đóng DB.
	persister.Wait()
	exports.Wait()
}

// sessionStore: Redis khi có REDIS_URL (nhiều instance), ngược lại lưu trong bộ nhớ.
func sessionStore(cfg *config.Config) (questionnaire.SessionStore, func()) {
	if cfg.RedisURL == "" {
		store := questionnaire.NewMemoryStore(cfg.SessionTTL)
		return store, store.Stop
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.WithError(err).Fatal("REDIS_URL không hợp lệ")
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Fatal("không kết nối được Redis")
	}
	logger.Log.Info("questionnaire sessions stored in Redis")
	return questionnaire.NewRedisStore(client, "checkout-survey:session:", cfg.SessionTTL), func() {
		_ = client.Close()
	}
}
