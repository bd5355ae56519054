package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"sentiment-dashboard/internal/history"
	"sentiment-dashboard/internal/provider"
	"sentiment-dashboard/internal/service"
)

type analyzeRequest struct {
	Query string `json:"query"`
}

// GetSession godoc
// @Summary      Current user
// @Description  Re-reads the stored session token and returns the decoded identity
// @Tags         session
// @Produce      json
// @Success      200  {object}  domain.Identity
// @Failure      401  {object}  map[string]string
// @Router       /api/session [get]
func (h *Handler) GetSession(c *gin.Context) {
	session := h.sessionFor(c)
	if !session.Authenticated() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
		return
	}
	c.JSON(http.StatusOK, session.Identity())
}

// GetHistory godoc
// @Summary      Search history
// @Description  Returns up to ten past successful analyses, most recent first
// @Tags         history
// @Produce      json
// @Success      200  {array}   domain.HistoryEntry
// @Failure      401  {object}  map[string]string
// @Router       /api/history [get]
func (h *Handler) GetHistory(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-history")
	defer span.End()

	c.JSON(http.StatusOK, history.New(clientStore(c)).Load(ctx))
}

// PostAnalyze godoc
// @Summary      Analyze a cryptocurrency
// @Description  Requests a news sentiment analysis and records it in the search history
// @Tags         analysis
// @Accept       json
// @Produce      json
// @Param        body  body      analyzeRequest  true  "Query"
// @Success      200   {object}  service.Outcome
// @Failure      400   {object}  map[string]interface{}
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]interface{}
// @Failure      409   {object}  map[string]interface{}
// @Failure      502   {object}  map[string]interface{}
// @Router       /api/analyze [post]
func (h *Handler) PostAnalyze(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.post-analyze")
	defer span.End()

	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	out, err := h.analyses.Get(clientID(c)).Analyze(ctx, req.Query)
	if err != nil {
		c.JSON(analyzeStatus(err), gin.H{"error": err.Error(), "notice": out.Notice, "seq": out.Seq})
		return
	}
	c.JSON(http.StatusOK, out)
}

func analyzeStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrEmptyQuery):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrStaleResponse):
		return http.StatusConflict
	case errors.Is(err, provider.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

// GetGlobalStats godoc
// @Summary      Global market snapshot
// @Description  Returns the market overview; fallback is true when placeholder values are served
// @Tags         market
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/global-stats [get]
func (h *Handler) GetGlobalStats(c *gin.Context) {
	snap, fallback := h.market.Snapshot(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"snapshot": snap, "fallback": fallback})
}

