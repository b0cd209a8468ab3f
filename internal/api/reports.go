package api

import (
	"net/http"

	"trade-journal-go/internal/stats"

	"github.com/gin-gonic/gin"
)

func (h *Handler) statistics(c *gin.Context) {
	trades, err := h.repo.Trades(c.Request.Context())
	if err != nil {
		h.storeFailure(c, "failed to calculate statistics", err)
		return
	}
	c.JSON(http.StatusOK, stats.BuildReport(trades, h.now()))
}

func (h *Handler) performanceChart(c *gin.Context) {
	trades, err := h.repo.Trades(c.Request.Context())
	if err != nil {
		h.storeFailure(c, "failed to load trades", err)
		return
	}
	c.JSON(http.StatusOK, stats.CumulativePnL(trades))
}

func (h *Handler) symbolsChart(c *gin.Context) {
	trades, err := h.repo.Trades(c.Request.Context())
	if err != nil {
		h.storeFailure(c, "failed to load trades", err)
		return
	}
	c.JSON(http.StatusOK, stats.Distribution(trades))
}

func (h *Handler) recount(c *gin.Context) {
	corrected, err := h.repo.RecountSymbols(c.Request.Context())
	if err != nil {
		h.storeFailure(c, "failed to recount symbols", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"corrected": corrected})
}
