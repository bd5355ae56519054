package main

import (
	"context"
	"fmt"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"sentiment-dashboard/internal/auth"
	"sentiment-dashboard/internal/cache"
	"sentiment-dashboard/internal/config"
	"sentiment-dashboard/internal/db"
	"sentiment-dashboard/internal/history"
	"sentiment-dashboard/internal/provider"
	"sentiment-dashboard/internal/service"
	"sentiment-dashboard/internal/storage"
	"sentiment-dashboard/internal/tui"
	"sentiment-dashboard/pkg/logger"
	"sentiment-dashboard/pkg/tracing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"
	"github.com/joho/godotenv"
	gossh "golang.org/x/crypto/ssh"
	"go.opentelemetry.io/otel/trace"
)

// ctxKey is a typed context key to avoid collisions.
type ctxKey string

const fingerprintKey ctxKey = "ssh_fingerprint"

// sessionRefresh is how often an SSH dashboard re-reads its stored session.
// Most SSH clients never forward focus events, so this is how a device login
// completed in the browser shows up.
const sessionRefresh = 3 * time.Second

var log = logger.WithComponent("ssh")

var (
	loadEnvFunc         = godotenv.Load
	loadConfigFunc      = config.Load
	configureLoggerFunc = logger.Configure
	initPostgresFunc    = db.InitPostgres
	initRedisFunc       = cache.InitRedis
	initTracerFunc      = tracing.InitTracer
	openStorageFunc     = openStorage
	newWishServerFunc   = wish.NewServer
	setupSignalNotify   = ossignal.Notify
	waitForSignalFunc   = func(quit <-chan os.Signal) { <-quit }
	fatalFunc           = func(args ...any) { log.Fatal(args...) }
)

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
	d := &dashboards{
		cfg:      cfg,
		tracer:   tracer,
		store:    store,
		decoder:  auth.DecoderFor(cfg.AuthTokenSecret),
		analyzer: provider.NewSentimentClient(cfg.AnalysisAPIURL, timeout, provider.PerMinute(cfg.AnalysisRatePerMin), tracer),
		market:   service.NewMarketService(tracer, provider.NewStatsClient(cfg.StatsAPIURL, timeout, tracer)),
		now:      time.Now,
	}

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.SSHPort)

	srv, err := newWishServerFunc(
		wish.WithAddress(addr),
		wish.WithHostKeyPath(cfg.SSHHostKeyPath),
		// Any key is accepted: the key only selects the storage namespace,
		// GitHub login happens inside the dashboard.
		wish.WithPublicKeyAuth(func(ctx ssh.Context, key ssh.PublicKey) bool {
			fingerprint := gossh.FingerprintSHA256(key)
			ctx.SetValue(fingerprintKey, fingerprint)
			log.WithField("fingerprint", fingerprint).Info("ssh key accepted")
			return true
		}),
		wish.WithMiddleware(
			bubbletea.Middleware(func(s ssh.Session) (tea.Model, []tea.ProgramOption) {
				fingerprint, _ := s.Context().Value(fingerprintKey).(string)

				model, err := d.model(s.Context(), fingerprint)
				if err != nil {
					log.WithError(err).Error("could not build dashboard")
					_ = s.Exit(1)
					return nil, nil
				}
				pty, _, _ := s.Pty()
				model.SetSize(pty.Window.Width, pty.Window.Height)

				return model, []tea.ProgramOption{tea.WithAltScreen(), tea.WithReportFocus()}
			}),
			logging.MiddlewareWithLogger(logger.L()),
		),
	)
	if err != nil {
		fatalFunc(fmt.Sprintf("failed to create SSH server: %v", err))
		return
	}

	if srv != nil {
		go func() {
			log.WithField("addr", addr).Info("SSH dashboard listening")
			if err := srv.ListenAndServe(); err != nil {
				log.WithError(err).Info("SSH server stopped")
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Info("shutting down SSH server")

	cancel()

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("SSH server shutdown error")
		}
	}

	log.Info("SSH server exited")
}

// dashboards builds one TUI per SSH connection, scoped to the key that
// opened it.
type dashboards struct {
	cfg      *config.Config
	tracer   trace.Tracer
	store    storage.Namespacer
	decoder  auth.Decoder
	analyzer service.Analyzer
	market   *service.MarketService
	now      func() time.Time
}

func namespaceFor(fingerprint string) string {
	return "ssh:" + fingerprint
}

func (d *dashboards) model(ctx context.Context, fingerprint string) (*tui.Model, error) {
	if fingerprint == "" {
		return nil, fmt.Errorf("session has no key fingerprint")
	}
	ns := namespaceFor(fingerprint)
	scope, err := d.store.Namespace(ns)
	if err != nil {
		return nil, fmt.Errorf("open namespace %s: %w", ns, err)
	}
	logins, err := d.store.Namespace(storage.LoginNamespace)
	if err != nil {
		return nil, fmt.Errorf("open login namespace: %w", err)
	}

	hist := history.New(scope)
	return tui.NewModel(tui.Deps{
		Context:      ctx,
		Session:      auth.NewSession(scope, d.decoder),
		Analysis:     service.NewAnalysisService(d.tracer, d.analyzer, hist),
		History:      hist,
		Market:       d.market,
		LoginURL:     d.loginURL(logins, ns),
		RefreshEvery: sessionRefresh,
	}), nil
}

// loginURL parks a device login for ns and links the browser to it.
func (d *dashboards) loginURL(logins storage.Store, ns string) func(context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		state, err := auth.BeginDeviceLogin(ctx, logins, ns, d.now())
		if err != nil {
			return "", err
		}
		return auth.LoginURL(d.cfg.AuthURL, d.cfg.FrontendURL, state), nil
	}
}

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
		// Only useful for trying the TUI: device logins completed by the web
		// server cannot reach an in-process store.
		log.Warn("memory storage selected, browser logins will not reach SSH sessions")
		return storage.NewMemoryStore(), nil

	default:
		if err := initRedisFunc(ctx, cfg.RedisURL); err != nil {
			return nil, err
		}
		return storage.NewRedisStore(cache.Client, tracer, 0), nil
	}
}
