package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"appliance-buddy-backend/internal/model"
)

type putSubscriptionRequest struct {
	Endpoint             string   `json:"endpoint" binding:"required"`
	P256DH               string   `json:"p256dh" binding:"required"`
	Auth                 string   `json:"auth" binding:"required"`
	SubscribedAppliances []string `json:"subscribed_appliances"`
}

// PutSubscription creates or replaces a subscription and the appliances it
// follows. Unknown appliance ids are ignored.
func (h *Handler) PutSubscription(c *gin.Context) {
	var req putSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	subscription := model.PushSubscription{
		Endpoint: req.Endpoint,
		P256DH:   req.P256DH,
		Auth:     req.Auth,
	}
	if err := h.store.SaveSubscription(c.Request.Context(), &subscription, req.SubscribedAppliances); err != nil {
		respondError(c, "Subscription", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"subscribed_appliances": applianceIDs(subscription)})
}

type deleteSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// DeleteSubscription handles the deletion of a subscription.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	var req deleteSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if _, err := h.store.DeleteSubscription(c.Request.Context(), req.Endpoint); err != nil {
		respondError(c, "Subscription", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// rawQueryParam returns the undecoded value: push endpoints are matched
// byte for byte as the browser reported them.
func rawQueryParam(rawQuery, key string) (string, bool) {
	for _, kv := range strings.Split(rawQuery, "&") {
		if strings.HasPrefix(kv, key+"=") {
			return kv[len(key)+1:], true
		}
	}
	return "", false
}

// GetSubscription handles the retrieval of a subscription.
func (h *Handler) GetSubscription(c *gin.Context) {
	raw, ok := rawQueryParam(c.Request.URL.RawQuery, "endpoint")
	if !ok || raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endpoint is required"})
		return
	}

	subscription, err := h.store.GetSubscription(c.Request.Context(), raw)
	if err != nil {
		respondError(c, "Subscription", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"subscribed_appliances": applianceIDs(subscription)})
}

func applianceIDs(sub model.PushSubscription) []string {
	ids := make([]string, len(sub.Appliances))
	for i, a := range sub.Appliances {
		ids[i] = a.ID
	}
	return ids
}

// GetVAPIDPublicKey returns the application server key browsers need to
// create a subscription.
func (h *Handler) GetVAPIDPublicKey(c *gin.Context) {
	if h.webpush == nil || h.webpush.VAPIDPublicKey == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Push notifications are not configured"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"public_key": h.webpush.VAPIDPublicKey})
}
