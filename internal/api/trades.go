package api

import (
	"errors"
	"net/http"
	"strings"

	"trade-journal-go/internal/history"
	"trade-journal-go/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h *Handler) listTrades(c *gin.Context) {
	trades, err := h.repo.Trades(c.Request.Context())
	if err != nil {
		h.storeFailure(c, "failed to load trades", err)
		return
	}

	filtered := history.Filter(trades, c.Query("q"))
	history.SortByDateDesc(filtered)
	page := history.Paginate(filtered,
		intQuery(c, "page", 1),
		intQuery(c, "per_page", history.DefaultPerPage))
	c.JSON(http.StatusOK, page)
}

func (h *Handler) getTrade(c *gin.Context) {
	trade, found, err := h.repo.TradeByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.storeFailure(c, "failed to load trade", err)
		return
	}
	if !found {
		Error(c, http.StatusNotFound, "trade not found")
		return
	}
	c.JSON(http.StatusOK, trade)
}

func (h *Handler) createTrade(c *gin.Context) {
	in, ok := h.bindTradeInput(c)
	if !ok {
		return
	}
	if strings.TrimSpace(in.Date) == "" {
		in.Date = h.now().UTC().Format(models.DateLayout)
	}
	if err := in.Validate(); err != nil {
		validationError(c, err)
		return
	}

	trade, err := h.repo.AddTrade(c.Request.Context(), in)
	if err != nil {
		h.storeFailure(c, "failed to add trade", err)
		return
	}
	c.JSON(http.StatusCreated, trade)
}

// updateTrade replaces every field of the trade; the id comes from the path.
func (h *Handler) updateTrade(c *gin.Context) {
	in, ok := h.bindTradeInput(c)
	if !ok {
		return
	}
	trade := in.WithID(c.Param("id"))
	if err := trade.Validate(); err != nil {
		validationError(c, err)
		return
	}

	updated, err := h.repo.UpdateTrade(c.Request.Context(), trade)
	if err != nil {
		h.storeFailure(c, "failed to update trade", err)
		return
	}
	if !updated {
		Error(c, http.StatusNotFound, "trade not found")
		return
	}
	c.JSON(http.StatusOK, trade)
}

func (h *Handler) deleteTrade(c *gin.Context) {
	deleted, err := h.repo.DeleteTrade(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.storeFailure(c, "failed to delete trade", err)
		return
	}
	if !deleted {
		Error(c, http.StatusNotFound, "trade not found")
		return
	}
	c.Status(http.StatusNoContent)
}

// exportTrades streams the filtered history, newest first, as a CSV download.
func (h *Handler) exportTrades(c *gin.Context) {
	trades, err := h.repo.Trades(c.Request.Context())
	if err != nil {
		h.storeFailure(c, "failed to load trades", err)
		return
	}

	filtered := history.Filter(trades, c.Query("q"))
	history.SortByDateDesc(filtered)

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+history.ExportFilename(h.now())+`"`)
	c.Status(http.StatusOK)
	if err := history.WriteCSV(c.Writer, filtered); err != nil {
		h.logger.Warn("CSV export interrupted", zap.Error(err))
	}
}

func (h *Handler) bindTradeInput(c *gin.Context) (models.TradeInput, bool) {
	var in models.TradeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		Error(c, http.StatusBadRequest, "invalid request body")
		return in, false
	}
	in.Symbol = models.NormalizeSymbol(in.Symbol)
	in.Action = models.Action(strings.ToLower(strings.TrimSpace(string(in.Action))))
	in.Date = strings.TrimSpace(in.Date)
	return in, true
}

func validationError(c *gin.Context, err error) {
	if errors.Is(err, models.ErrInvalidTrade) {
		Error(c, http.StatusBadRequest, err.Error())
		return
	}
	Error(c, http.StatusBadRequest, "invalid trade")
}
