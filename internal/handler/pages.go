package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"sentiment-dashboard/internal/auth"
	"sentiment-dashboard/internal/domain"
	"sentiment-dashboard/internal/history"
	"sentiment-dashboard/internal/present"
	"sentiment-dashboard/internal/service"
)

const (
	chartWidth  = 600
	chartHeight = 200
)

type indexPage struct {
	User     *domain.Identity
	Input    string
	Notice   *service.Notification
	Result   *domain.Analysis
	History  []domain.HistoryEntry
	Market   domain.MarketSnapshot
	Fallback bool
	Chart    []present.ChartPoint
	Polyline string
}

// Index renders the dashboard. History and market stats load in parallel;
// neither can fail the page.
func (h *Handler) Index(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.index")
	defer span.End()

	session := c.MustGet(ctxSession).(*auth.Session)
	svc := h.analyses.Get(clientID(c))

	page := indexPage{
		User:   session.Identity(),
		Input:  svc.Input(),
		Notice: svc.Notice(),
		Result: svc.Result(),
	}
	page.History, page.Market, page.Fallback = h.loadPanels(ctx, c)
	page.Chart = present.TrendPoints(page.Market.TrendData, chartWidth, chartHeight)
	page.Polyline = present.SVGPolyline(page.Chart)

	c.HTML(http.StatusOK, "index.html", page)
}

func (h *Handler) loadPanels(ctx context.Context, c *gin.Context) ([]domain.HistoryEntry, domain.MarketSnapshot, bool) {
	var (
		entries  []domain.HistoryEntry
		snap     domain.MarketSnapshot
		fallback bool
	)
	store := clientStore(c)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		entries = history.New(store).Load(gctx)
		return nil
	})
	g.Go(func() error {
		snap, fallback = h.market.Snapshot(gctx)
		return nil
	})
	_ = g.Wait()

	return entries, snap, fallback
}

func (h *Handler) AnalyzeForm(c *gin.Context) {
	svc := h.analyses.Get(clientID(c))
	_, _ = svc.Analyze(c.Request.Context(), c.PostForm("query"))
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) SelectHistory(c *gin.Context) {
	svc := h.analyses.Get(clientID(c))
	_, _ = svc.Select(c.Request.Context(), c.PostForm("crypto"))
	c.Redirect(http.StatusSeeOther, "/")
}
