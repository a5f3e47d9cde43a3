package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"appliance-buddy-backend/internal/parse"
	"appliance-buddy-backend/internal/service"
	"appliance-buddy-backend/internal/status"
)

func parseFilters(c *gin.Context) (service.Filters, error) {
	f := service.Filters{
		Search: c.Query("search"),
		Brand:  c.Query("brand"),
	}
	if raw := c.Query("warrantyStatus"); raw != "" {
		ws, ok := status.ParseWarranty(raw)
		if !ok {
			return f, fmt.Errorf("warrantyStatus must be one of Active, Expiring Soon, Expired")
		}
		f.WarrantyStatus = ws
	}
	var err error
	if f.Limit, err = parse.NonNegativeInt(c.Query("limit")); err != nil {
		return f, fmt.Errorf("limit: %w", err)
	}
	if f.Offset, err = parse.NonNegativeInt(c.Query("offset")); err != nil {
		return f, fmt.Errorf("offset: %w", err)
	}
	return f, nil
}

// ListAppliances handles GET /api/appliances.
func (h *Handler) ListAppliances(c *gin.Context) {
	filters, err := parseFilters(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	views, err := h.appliances.List(c.Request.Context(), filters)
	if err != nil {
		respondError(c, "Appliance", err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// GetApplianceStats handles GET /api/appliances/stats.
func (h *Handler) GetApplianceStats(c *gin.Context) {
	stats, err := h.appliances.Stats(c.Request.Context())
	if err != nil {
		respondError(c, "Appliance", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetAppliance handles GET /api/appliances/:id.
func (h *Handler) GetAppliance(c *gin.Context) {
	view, err := h.appliances.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "Appliance", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// CreateAppliance handles POST /api/appliances.
func (h *Handler) CreateAppliance(c *gin.Context) {
	var req createApplianceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	created, err := h.appliances.Create(ctx, req.input())
	if err != nil {
		respondError(c, "Appliance", err)
		return
	}
	view, err := h.appliances.Get(ctx, created.ID)
	if err != nil {
		respondError(c, "Appliance", err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// UpdateAppliance handles PUT /api/appliances/:id.
func (h *Handler) UpdateAppliance(c *gin.Context) {
	var req updateApplianceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	updated, err := h.appliances.Update(ctx, c.Param("id"), req.update())
	if err != nil {
		respondError(c, "Appliance", err)
		return
	}
	view, err := h.appliances.Get(ctx, updated.ID)
	if err != nil {
		respondError(c, "Appliance", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// DeleteAppliance handles DELETE /api/appliances/:id, removing the related
// contacts, tasks and documents with it.
func (h *Handler) DeleteAppliance(c *gin.Context) {
	existed, err := h.appliances.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "Appliance", err)
		return
	}
	if !existed {
		notFound(c, "Appliance")
		return
	}
	c.Status(http.StatusNoContent)
}
