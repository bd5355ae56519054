package main

import (
	"context"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"sentiment-dashboard/internal/auth"
	"sentiment-dashboard/internal/config"
	"sentiment-dashboard/internal/history"
	"sentiment-dashboard/internal/provider"
	"sentiment-dashboard/internal/service"
	"sentiment-dashboard/internal/storage"
	"sentiment-dashboard/internal/tui"
	"sentiment-dashboard/pkg/logger"
	"sentiment-dashboard/pkg/tracing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

var log = logger.WithComponent("dashboard")

var (
	loadEnvFunc         = godotenv.Load
	loadConfigFunc      = config.Load
	configureLoggerFunc = logger.Configure
	initTracerFunc      = tracing.InitTracer
	exitFunc            = os.Exit

	startCallbackFunc = func(srv *http.Server) error { return srv.ListenAndServe() }
	runProgramFunc    = func(p *tea.Program) error {
		_, err := p.Run()
		return err
	}
)

func main() {
	_ = loadEnvFunc()
	cfg := loadConfigFunc()

	// The terminal belongs to the TUI, so logs always go to a file.
	logFile := cfg.LogFile
	if logFile == "" || logFile == "stdout" || logFile == "stderr" {
		logFile = filepath.Join(cfg.DataDir, "dashboard.log")
	}
	if err := configureLoggerFunc(cfg.LogLevel, logFile); err != nil {
		fmt.Fprintf(os.Stderr, "dashboard: %v\n", err)
		exitFunc(1)
		return
	}

	if err := run(context.Background(), cfg); err != nil {
		log.WithError(err).Error("dashboard exited with error")
		fmt.Fprintf(os.Stderr, "dashboard: %v\n", err)
		exitFunc(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		return fmt.Errorf("initialize tracer: %w", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.WithError(err).Warn("error shutting down tracer provider")
		}
	}()

	store := storage.NewFileStore(filepath.Join(cfg.DataDir, "storage.json"))
	log.WithField("path", store.Path()).Info("using local storage")
	session := auth.NewSession(store, auth.DecoderFor(cfg.AuthTokenSecret))
	hist := history.New(store)

	timeout := time.Duration(cfg.HTTPTimeoutSecs) * time.Second
	sentiment := provider.NewSentimentClient(cfg.AnalysisAPIURL, timeout, provider.PerMinute(cfg.AnalysisRatePerMin), tracer)
	market := service.NewMarketService(tracer, provider.NewStatsClient(cfg.StatsAPIURL, timeout, tracer))

	model := tui.NewModel(tui.Deps{
		Context:  ctx,
		Session:  session,
		Analysis: service.NewAnalysisService(tracer, sentiment, hist),
		History:  hist,
		Market:   market,
		LoginURL: func(context.Context) (string, error) {
			return auth.LoginURL(cfg.AuthURL, cfg.FrontendURL, ""), nil
		},
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithReportFocus())

	addr, err := listenAddr(cfg.FrontendURL)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr: addr,
		Handler: newCallbackRouter(session, func() {
			p.Send(tui.SessionChangedMsg{})
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.WithField("addr", addr).Info("login callback listening")
		if err := startCallbackFunc(srv); err != nil && err != http.ErrServerClosed {
			// The dashboard still works for an already signed-in user.
			log.WithError(err).Warn("login callback listener unavailable")
		}
	}()
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	return runProgramFunc(p)
}

// listenAddr is the host:port the auth service redirects back to.
func listenAddr(frontendURL string) (string, error) {
	u, err := url.Parse(frontendURL)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid FRONTEND_URL %q", frontendURL)
	}
	if u.Port() != "" {
		return u.Host, nil
	}
	port := "80"
	if u.Scheme == "https" {
		port = "443"
	}
	return net.JoinHostPort(u.Hostname(), port), nil
}

var callbackPage = template.Must(template.New("callback").Parse(`<!doctype html>
<html><head><meta charset="utf-8"><title>Crypto Sentiment</title>
<style>body{font-family:system-ui,sans-serif;background:#1a202c;color:#e2e8f0;display:flex;align-items:center;justify-content:center;height:100vh;margin:0}</style>
</head><body><div>
{{if .}}<h2>Signed in</h2><p>Return to your terminal.</p>{{else}}<h2>Signing you in…</h2>{{end}}
</div></body></html>`))

func newCallbackRouter(session *auth.Session, notify func()) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/auth/callback", func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.Status(http.StatusOK)
			_ = callbackPage.Execute(c.Writer, false)
			return
		}
		if err := session.Accept(c.Request.Context(), token); err != nil {
			log.WithError(err).Error("store session token")
			c.String(http.StatusInternalServerError, "could not save session")
			return
		}
		notify()
		c.Status(http.StatusOK)
		_ = callbackPage.Execute(c.Writer, true)
	})
	return r
}
