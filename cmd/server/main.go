package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockcast/internal/advisor"
	"stockcast/internal/bot"
	"stockcast/internal/cache"
	"stockcast/internal/config"
	"stockcast/internal/db"
	"stockcast/internal/handler"
	"stockcast/internal/job"
	"stockcast/internal/ml/training"
	"stockcast/internal/provider"
	"stockcast/internal/repository"
	"stockcast/internal/service"
	"stockcast/pkg/tracing"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	_ "stockcast/docs"
)

var (
	loadEnvFunc          = godotenv.Load
	loadConfigFunc       = config.Load
	initPostgresFunc     = db.InitPostgres
	initRedisFunc        = cache.InitRedis
	initTracerFunc       = tracing.InitTracer
	newBarRepoFunc       = repository.NewBarRepository
	newForecastRepoFunc  = repository.NewForecastRepository
	newYahooProviderFunc = func(tracer trace.Tracer) training.BarSource {
		return provider.NewYahooProvider(tracer)
	}
	newForecastServiceFunc = service.NewForecastService
	newBarPollerFunc       = job.NewBarPoller
	startPollerFunc        = func(p *job.BarPoller, ctx context.Context) { go p.Start(ctx) }
	startTelegramBotFunc   = bot.StartTelegramBot
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Stockcast API
// @version         1.0
// @description     Signal fusion and forecast simulation engine for equities.

// @host      localhost:8080
// @BasePath  /
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init Postgres and Redis
	os.Setenv("DATABASE_URL", cfg.DatabaseURL)
	os.Setenv("REDIS_URL", cfg.RedisURL)
	initPostgresFunc(ctx)
	initRedisFunc(ctx)

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Warm store and forecast audit trail (optional, skipped when Postgres
	// is not configured)
	var barStore service.BarStore
	var forecastStore service.ForecastStore
	if db.Pool != nil {
		barRepo := newBarRepoFunc(db.Pool, tracer)
		if err := barRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
		barStore = barRepo

		forecastRepo := newForecastRepoFunc(db.Pool, tracer)
		if err := forecastRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
		forecastStore = forecastRepo
	}

	// Market data, training and the forecast engine
	yahoo := newYahooProviderFunc(tracer)
	trainer := training.NewService(tracer, yahoo, training.Config{
		TrainPeriod: cfg.ForecastTrainPeriod,
		Interval:    cfg.ForecastInterval,
		HorizonDays: cfg.ForecastHorizonDays,
		MinRows:     cfg.ForecastMinRows,
	})
	// A typed-nil *redis.Client must not sneak into the interface slot.
	var redisClient service.RedisClient
	if cache.Client != nil {
		redisClient = cache.Client
	}

	forecastService := newForecastServiceFunc(
		tracer,
		yahoo,
		service.TrainerAdapter{Service: trainer},
		barStore,
		forecastStore,
		redisClient,
		service.ForecastConfig{
			RecentPeriod: cfg.ForecastRecentPeriod,
			Interval:     cfg.ForecastInterval,
			ModelTTL:     cfg.ForecastModelTTL,
		},
	)

	// Background bar poller for the configured watch list
	poller := newBarPollerFunc(tracer, forecastService, cfg.PollSymbols, cfg.PollInterval)
	startPollerFunc(poller, ctx)

	// Advisor (optional)
	var adviceService handler.Advisor
	var botAdvisor bot.Advisor
	if cfg.OpenAIAPIKey != "" {
		svc := advisor.NewService(tracer, advisor.NewOpenAIClient(cfg.OpenAIAPIKey), cfg.OpenAIModel)
		adviceService = svc
		botAdvisor = svc
	}

	// Telegram bot
	os.Setenv("TELEGRAM_BOT_TOKEN", cfg.TelegramBotToken)
	startTelegramBotFunc(forecastService, botAdvisor)

	// Handlers and routes
	h := newHandlerFunc(tracer, forecastService, adviceService)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("stockcast"))
	r.Use(cors.Default())

	h.RegisterRoutes(r, cfg.APIKey)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
