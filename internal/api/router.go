package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"appliance-buddy-backend/internal/mw"
	"appliance-buddy-backend/internal/service"
	"appliance-buddy-backend/internal/store"
)

// RouterConfig carries the knobs of the HTTP layer.
type RouterConfig struct {
	CORSOrigin      string
	RateLimitPerSec float64
	RateBurst       int
	CacheTTL        time.Duration // zero or negative disables response caching
	DatabaseType    string        // reported by /health
	Webpush         *webpush.Options
	Notifier        service.Notifier
}

// NewRouter creates and configures a new Gin router.
func NewRouter(s store.Store, rc RouterConfig) *gin.Engine {
	return newRouter(NewHandler(s, rc.Webpush, rc.Notifier), rc)
}

func newRouter(handler *Handler, rc RouterConfig) *gin.Engine {
	r := gin.Default()
	handler.databaseType = rc.DatabaseType

	r.Use(mw.SecurityHeaders())
	if rc.CORSOrigin != "" {
		r.Use(mw.CORS(rc.CORSOrigin))
	}

	r.GET("/ping", handler.Ping)
	r.GET("/health", handler.Health)

	caching := func(c *gin.Context) { c.Next() }
	var cacheStore *cache.Cache
	if rc.CacheTTL > 0 {
		cacheStore = cache.New(rc.CacheTTL, 2*rc.CacheTTL)
		caching = mw.Cache(cacheStore, rc.CacheTTL)
	}

	api := r.Group("/api")
	if rc.RateLimitPerSec > 0 {
		api.Use(mw.RateLimiter(rate.Limit(rc.RateLimitPerSec), rc.RateBurst))
	}
	if cacheStore != nil {
		api.Use(mw.InvalidateOnWrite(cacheStore))
	}
	{
		appliances := api.Group("/appliances")
		appliances.GET("", caching, handler.ListAppliances)
		appliances.GET("/stats", caching, handler.GetApplianceStats)
		appliances.GET("/:id", caching, handler.GetAppliance)
		appliances.POST("", handler.CreateAppliance)
		appliances.PUT("/:id", handler.UpdateAppliance)
		appliances.DELETE("/:id", handler.DeleteAppliance)

		appliances.GET("/:id/maintenance", caching, handler.ListApplianceTasks)
		appliances.POST("/:id/maintenance", handler.CreateTask)
		appliances.GET("/:id/contacts", caching, handler.ListContacts)
		appliances.POST("/:id/contacts", handler.CreateContact)
		appliances.GET("/:id/documents", caching, handler.ListDocuments)
		appliances.POST("/:id/documents", handler.CreateDocument)

		api.PUT("/contacts/:contactId", handler.UpdateContact)
		api.DELETE("/contacts/:contactId", handler.DeleteContact)
		api.PUT("/documents/:documentId", handler.UpdateDocument)
		api.DELETE("/documents/:documentId", handler.DeleteDocument)

		// Upcoming/overdue depend on the clock, so they are never cached.
		maintenance := api.Group("/maintenance")
		maintenance.GET("/upcoming", handler.ListUpcomingTasks)
		maintenance.GET("/overdue", handler.ListOverdueTasks)
		maintenance.POST("/refresh", handler.RefreshStatuses)
		maintenance.PUT("/:taskId", handler.UpdateTask)
		maintenance.DELETE("/:taskId", handler.DeleteTask)
		maintenance.POST("/:taskId/complete", handler.CompleteTask)

		warranties := api.Group("/warranties")
		warranties.GET("/expiring", handler.ListExpiringWarranties)
		warranties.GET("/expired", handler.ListExpiredWarranties)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
