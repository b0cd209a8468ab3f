// Package api exposes the trade journal over HTTP.
package api

import (
	"net/http"
	"strconv"
	"time"

	"trade-journal-go/internal/config"
	"trade-journal-go/internal/journal"
	"trade-journal-go/internal/kvstore"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler holds the dependencies of every route.
type Handler struct {
	repo      *journal.Repository
	store     kvstore.Store
	backend   string
	logger    *zap.Logger
	startTime time.Time
	now       func() time.Time
}

// NewHandler creates a Handler. store is used directly only by the
// diagnostic route; everything else goes through repo.
func NewHandler(repo *journal.Repository, store kvstore.Store, backend string, logger *zap.Logger) *Handler {
	return &Handler{
		repo:      repo,
		store:     store,
		backend:   backend,
		logger:    logger.Named("api"),
		startTime: time.Now(),
		now:       time.Now,
	}
}

// NewRouter builds the gin engine with middleware and all routes. When
// cfg.AuthSecret is set every /api route requires a bearer token.
func NewRouter(h *Handler, cfg *config.Server) *gin.Engine {
	switch cfg.Mode {
	case gin.DebugMode, gin.TestMode:
		gin.SetMode(cfg.Mode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(AccessLog(h.logger))

	var apiMiddleware []gin.HandlerFunc
	if cfg.AuthSecret != "" {
		apiMiddleware = append(apiMiddleware, RequireToken(JWT{Secret: []byte(cfg.AuthSecret)}))
	} else {
		h.logger.Warn("API authentication disabled")
	}

	h.Register(r, apiMiddleware...)
	return r
}

// Register mounts the routes on r. middleware applies to the /api group only.
func (h *Handler) Register(r *gin.Engine, middleware ...gin.HandlerFunc) {
	r.GET("/health", h.health)

	g := r.Group("/api", middleware...)
	g.GET("/status", h.status)

	g.GET("/redis", h.getDiagnostic)
	g.POST("/redis", h.setDiagnostic)

	g.GET("/symbols", h.listSymbols)
	g.POST("/symbols", h.createSymbol)
	g.DELETE("/symbols/:name", h.deleteSymbol)

	g.GET("/trades", h.listTrades)
	g.POST("/trades", h.createTrade)
	g.GET("/trades/export", h.exportTrades)
	g.GET("/trades/:id", h.getTrade)
	g.PUT("/trades/:id", h.updateTrade)
	g.DELETE("/trades/:id", h.deleteTrade)

	g.GET("/statistics", h.statistics)
	g.GET("/charts/performance", h.performanceChart)
	g.GET("/charts/symbols", h.symbolsChart)

	g.POST("/admin/recount", h.recount)
}

func (h *Handler) health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

func (h *Handler) status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":    "trade-journal",
		"backend":    h.backend,
		"start_time": h.startTime.Format(time.RFC3339),
		"uptime":     time.Since(h.startTime).Round(time.Second).String(),
	})
}

func intQuery(c *gin.Context, key string, def int) int {
	if val := c.Query(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return def
}
