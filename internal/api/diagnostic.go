package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"trade-journal-go/internal/journal"

	"github.com/gin-gonic/gin"
)

type diagnosticRequest struct {
	Key   any `json:"key"`
	Value any `json:"value"`
}

// getDiagnostic returns the value under the diagnostic key, JSON-decoded when
// it holds JSON and null when absent.
func (h *Handler) getDiagnostic(c *gin.Context) {
	raw, found, err := h.store.Get(c.Request.Context(), journal.DiagnosticKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	var value any
	if found {
		value = decodeValue(raw)
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "value": value})
}

// setDiagnostic writes an arbitrary key. Empty strings, null, false and 0
// count as missing.
func (h *Handler) setDiagnostic(c *gin.Context) {
	var req diagnosticRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}
	if !truthy(req.Key) || !truthy(req.Value) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Both key and value are required"})
		return
	}

	key, value := text(req.Key), text(req.Value)
	if err := h.store.Set(c.Request.Context(), key, []byte(value)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": fmt.Sprintf("Set %s=%s", key, value)})
}

func decodeValue(raw []byte) any {
	var v any
	if err := json.Unmarshal(raw, &v); err == nil {
		return v
	}
	return string(raw)
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case bool:
		return x
	case float64:
		return x != 0
	default:
		return true
	}
}

// text renders strings as they are and any other JSON value as JSON.
func text(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
