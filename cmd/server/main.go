package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sentiment-dashboard/internal/auth"
	"sentiment-dashboard/internal/bot"
	"sentiment-dashboard/internal/cache"
	"sentiment-dashboard/internal/config"
	"sentiment-dashboard/internal/db"
	"sentiment-dashboard/internal/handler"
	"sentiment-dashboard/internal/history"
	"sentiment-dashboard/internal/job"
	"sentiment-dashboard/internal/metrics"
	"sentiment-dashboard/internal/provider"
	"sentiment-dashboard/internal/service"
	"sentiment-dashboard/internal/storage"
	"sentiment-dashboard/pkg/logger"
	"sentiment-dashboard/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"
	tele "gopkg.in/telebot.v3"

	_ "sentiment-dashboard/docs"
)

var log = logger.WithComponent("server")

var (
	loadEnvFunc          = godotenv.Load
	loadConfigFunc       = config.Load
	configureLoggerFunc  = logger.Configure
	initPostgresFunc     = db.InitPostgres
	initRedisFunc        = cache.InitRedis
	initTracerFunc       = tracing.InitTracer
	openStorageFunc      = openStorage
	startTelegramBotFunc = bot.StartTelegramBot
	startJanitorFunc     = func(j *job.Janitor, ctx context.Context) { go j.Start(ctx) }
	newRouterFunc        = gin.Default
	setupSignalNotify    = signal.Notify
	waitForSignalFunc    = func(quit <-chan os.Signal) { <-quit }
	fatalFunc            = func(args ...any) { log.Fatal(args...) }

	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

const (
	telegramIdleTimeout = 30 * time.Minute
	janitorInterval     = time.Minute
)

// @title           Crypto Sentiment Dashboard API
// @version         1.0
// @description     Crypto sentiment analysis, search history and market overview.

// @host      localhost:3005
// @BasePath  /
func main() {
	_ = loadEnvFunc()
	cfg := loadConfigFunc()
	if err := configureLoggerFunc(cfg.LogLevel, cfg.LogFile); err != nil {
		log.WithError(err).Warn("logger configuration rejected, using defaults")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		fatalFunc(fmt.Sprintf("failed to initialize tracer: %v", err))
		return
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.WithError(err).Warn("error shutting down tracer provider")
		}
	}()

	store, err := openStorageFunc(ctx, cfg, tracer)
	if err != nil {
		fatalFunc(fmt.Sprintf("failed to open %s storage: %v", cfg.StorageBackend, err))
		return
	}
	defer cache.Close()
	defer db.Close()

	timeout := time.Duration(cfg.HTTPTimeoutSecs) * time.Second
	m := metrics.New()
	sentiment := m.Analyzer(provider.NewSentimentClient(cfg.AnalysisAPIURL, timeout, provider.PerMinute(cfg.AnalysisRatePerMin), tracer))
	market := service.NewMarketService(tracer, m.Stats(provider.NewStatsClient(cfg.StatsAPIURL, timeout, tracer)))

	h := handler.New(tracer, store, auth.DecoderFor(cfg.AuthTokenSecret), sentiment, market, handler.Options{
		AuthURL:       cfg.AuthURL,
		FrontendURL:   cfg.FrontendURL,
		SecureCookies: isHTTPS(cfg.FrontendURL),
	})

	// Telegram chats get their own namespaces next to the browsers.
	chats := service.NewRegistry(telegramIdleTimeout, func(ns string) *service.AnalysisService {
		var recorder service.HistoryRecorder
		if scope, err := store.Namespace(ns); err == nil {
			recorder = history.New(scope)
		}
		return service.NewAnalysisService(tracer, sentiment, recorder)
	})
	tg, err := startTelegramBotFunc(cfg.TelegramBotToken, bot.NewReplies(chats, market, store))
	if err != nil {
		log.WithError(err).Warn("telegram bot disabled")
	}

	purger, _ := store.(storage.LoginPurger)
	startJanitorFunc(job.NewJanitor(tracer, janitorInterval, purger, h.Analyses(), chats), ctx)

	r := newRouterFunc()
	r.Use(otelgin.Middleware(tracing.ServiceName()))

	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/metrics", gin.WrapH(m.Handler()))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: r,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("web dashboard listening")
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("listen")
			cancel()
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-waitFor(quit):
	case <-ctx.Done():
	}
	log.Info("shutting down server")

	cancel()
	stopTelegram(tg)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}

	log.Info("server exiting")
}

func waitFor(quit <-chan os.Signal) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		waitForSignalFunc(quit)
		close(done)
	}()
	return done
}

func stopTelegram(b *tele.Bot) {
	if b != nil {
		b.Stop()
	}
}

// openStorage connects the configured backend. An unreachable Redis degrades
// to memory; Postgres errors are returned.
func openStorage(ctx context.Context, cfg *config.Config, tracer trace.Tracer) (storage.Namespacer, error) {
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		if err := initPostgresFunc(ctx, cfg.DatabaseURL); err != nil {
			return nil, err
		}
		pg := storage.NewPostgresStore(db.Pool, tracer)
		if err := pg.RunMigrations(ctx); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		return pg, nil

	case config.BackendMemory:
		return storage.NewMemoryStore(), nil

	default:
		if err := initRedisFunc(ctx, cfg.RedisURL); err != nil {
			log.WithError(err).Warn("redis unavailable, falling back to in-memory storage")
			return storage.NewMemoryStore(), nil
		}
		return storage.NewRedisStore(cache.Client, tracer, 0), nil
	}
}

func isHTTPS(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Scheme == "https"
}
