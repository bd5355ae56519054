package handler

import (
	"html/template"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"sentiment-dashboard/internal/auth"
	"sentiment-dashboard/internal/history"
	"sentiment-dashboard/internal/service"
	"sentiment-dashboard/internal/storage"
)

// Options carries the URLs the pages link to.
type Options struct {
	AuthURL       string
	FrontendURL   string
	SecureCookies bool
}

type Handler struct {
	tracer   trace.Tracer
	storage  storage.Namespacer
	decoder  auth.Decoder
	analyses *service.Registry
	market   *service.MarketService
	opts     Options
	pages    *template.Template
	now      func() time.Time
}

const analysisIdleTimeout = 30 * time.Minute

func New(
	tracer trace.Tracer,
	store storage.Namespacer,
	decoder auth.Decoder,
	analyzer service.Analyzer,
	market *service.MarketService,
	opts Options,
) *Handler {
	h := &Handler{
		tracer:  tracer,
		storage: store,
		decoder: decoder,
		market:  market,
		opts:    opts,
		pages:   parseTemplates(),
		now:     time.Now,
	}
	h.analyses = service.NewRegistry(analysisIdleTimeout, func(clientID string) *service.AnalysisService {
		var recorder service.HistoryRecorder
		if scope, err := store.Namespace(clientID); err == nil {
			recorder = history.New(scope)
		}
		return service.NewAnalysisService(tracer, analyzer, recorder)
	})
	return h
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.SetHTMLTemplate(h.pages)

	r.GET("/health", h.Health)

	web := r.Group("/", h.ClientID())
	web.GET("/login", h.LoginPage)
	web.GET("/auth/github", h.StartLogin)
	web.GET("/auth/callback", h.Callback)
	web.GET("/auth/callback/:state", h.Callback)
	web.POST("/logout", h.Logout)

	pages := web.Group("/", h.RequireSession(false))
	pages.GET("/", h.Index)
	pages.POST("/analyze", h.AnalyzeForm)
	pages.POST("/history", h.SelectHistory)

	api := r.Group("/api", h.ClientID())
	api.GET("/session", h.GetSession)
	api.GET("/global-stats", h.GetGlobalStats)

	guarded := api.Group("/", h.RequireSession(true))
	guarded.GET("/history", h.GetHistory)
	guarded.POST("/analyze", h.PostAnalyze)
}

// Analyses exposes the per-client analysis services for housekeeping.
func (h *Handler) Analyses() *service.Registry {
	return h.analyses
}
