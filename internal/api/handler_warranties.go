package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"appliance-buddy-backend/internal/parse"
	"appliance-buddy-backend/internal/status"
)

// ListExpiringWarranties handles GET /api/warranties/expiring?days=N.
func (h *Handler) ListExpiringWarranties(c *gin.Context) {
	days := status.ExpiringSoonDays
	if raw, ok := c.GetQuery("days"); ok {
		n, err := parse.NonNegativeInt(raw)
		if err != nil {
			badRequest(c, fmt.Errorf("days: %w", err))
			return
		}
		days = n
	}
	entries, err := h.warranties.Expiring(c.Request.Context(), days)
	if err != nil {
		respondError(c, "Appliance", err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// ListExpiredWarranties handles GET /api/warranties/expired.
func (h *Handler) ListExpiredWarranties(c *gin.Context) {
	entries, err := h.warranties.Expired(c.Request.Context())
	if err != nil {
		respondError(c, "Appliance", err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// Ping answers plain connectivity checks.
func (h *Handler) Ping(c *gin.Context) {
	c.String(http.StatusOK, "pong")
}

// Health always reports 200 while the process serves requests.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": h.now().UTC(),
		"database":  gin.H{"type": h.databaseType},
		"push":      h.webpush != nil && h.webpush.VAPIDPublicKey != "",
	})
}
