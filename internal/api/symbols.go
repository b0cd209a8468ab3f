package api

import (
	"net/http"

	"trade-journal-go/internal/models"

	"github.com/gin-gonic/gin"
)

type symbolRequest struct {
	Name string `json:"name"`
}

func (h *Handler) listSymbols(c *gin.Context) {
	symbols, err := h.repo.Symbols(c.Request.Context())
	if err != nil {
		h.storeFailure(c, "failed to load symbols", err)
		return
	}
	c.JSON(http.StatusOK, symbols)
}

func (h *Handler) createSymbol(c *gin.Context) {
	var req symbolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	name := models.NormalizeSymbol(req.Name)
	if name == "" {
		Error(c, http.StatusBadRequest, "symbol name is required")
		return
	}

	added, err := h.repo.AddSymbol(c.Request.Context(), name)
	if err != nil {
		h.storeFailure(c, "failed to add symbol", err)
		return
	}
	if !added {
		Error(c, http.StatusConflict, "symbol already exists")
		return
	}
	c.JSON(http.StatusCreated, models.Symbol{Name: name})
}

func (h *Handler) deleteSymbol(c *gin.Context) {
	name := models.NormalizeSymbol(c.Param("name"))

	deleted, err := h.repo.DeleteSymbol(c.Request.Context(), name)
	if err != nil {
		h.storeFailure(c, "failed to delete symbol", err)
		return
	}
	if !deleted {
		Error(c, http.StatusNotFound, "symbol not found")
		return
	}
	c.Status(http.StatusNoContent)
}
