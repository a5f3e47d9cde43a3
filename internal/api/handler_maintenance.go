package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListApplianceTasks handles GET /api/appliances/:id/maintenance.
func (h *Handler) ListApplianceTasks(c *gin.Context) {
	tasks, err := h.maintenance.ListForAppliance(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "Appliance", err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// CreateTask handles POST /api/appliances/:id/maintenance.
func (h *Handler) CreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	task, err := h.maintenance.Create(c.Request.Context(), c.Param("id"), req.input())
	if err != nil {
		respondError(c, "Appliance", err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// UpdateTask handles PUT /api/maintenance/:taskId.
func (h *Handler) UpdateTask(c *gin.Context) {
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	task, err := h.maintenance.Update(c.Request.Context(), c.Param("taskId"), req.update())
	if err != nil {
		respondError(c, "Maintenance task", err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// CompleteTask handles POST /api/maintenance/:taskId/complete. The body is
// optional; without a completedDate the task is completed now.
func (h *Handler) CompleteTask(c *gin.Context) {
	var req completeTaskRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	task, err := h.maintenance.Complete(c.Request.Context(), c.Param("taskId"), req.CompletedDate.ptr())
	if err != nil {
		respondError(c, "Maintenance task", err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// DeleteTask handles DELETE /api/maintenance/:taskId.
func (h *Handler) DeleteTask(c *gin.Context) {
	existed, err := h.maintenance.Delete(c.Request.Context(), c.Param("taskId"))
	if err != nil {
		respondError(c, "Maintenance task", err)
		return
	}
	if !existed {
		notFound(c, "Maintenance task")
		return
	}
	c.Status(http.StatusNoContent)
}

// ListUpcomingTasks handles GET /api/maintenance/upcoming.
func (h *Handler) ListUpcomingTasks(c *gin.Context) {
	tasks, err := h.maintenance.Upcoming(c.Request.Context())
	if err != nil {
		respondError(c, "Maintenance task", err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// ListOverdueTasks handles GET /api/maintenance/overdue.
func (h *Handler) ListOverdueTasks(c *gin.Context) {
	tasks, err := h.maintenance.Overdue(c.Request.Context())
	if err != nil {
		respondError(c, "Maintenance task", err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// RefreshStatuses handles POST /api/maintenance/refresh.
func (h *Handler) RefreshStatuses(c *gin.Context) {
	tasks, err := h.maintenance.RefreshOverdueStatuses(c.Request.Context(), h.now())
	if err != nil {
		respondError(c, "Maintenance task", err)
		return
	}
	c.JSON(http.StatusOK, refreshResponse{Updated: len(tasks), Tasks: tasks})
}
