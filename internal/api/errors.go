package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"appliance-buddy-backend/internal/service"
	"appliance-buddy-backend/internal/store"
)

// respondError maps service and store errors onto HTTP responses. resource
// names the record in 404 messages, e.g. "Appliance".
func respondError(c *gin.Context, resource string, err error) {
	var verr *service.ValidationError
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": resource + " not found"})
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
	default:
		log.Printf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func notFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, gin.H{"error": resource + " not found"})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
