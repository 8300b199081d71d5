package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(h *Handler, jwtSecret string, rlPerMin int) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(Metrics())

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	rl := NewRateLimiter(rlPerMin, time.Minute)

	api := r.Group("/api/harbor")
	{
		api.POST("/shares", AuthJWT(jwtSecret), RateLimitShares(rl), h.CreateShare)
		api.DELETE("/shares/:id", AuthJWT(jwtSecret), h.DeleteShare)
		api.GET("/feed", AuthJWT(jwtSecret), h.GetFeed)
		api.GET("/feed/stream", AuthJWT(jwtSecret), h.StreamFeed)
	}

	// invoked by the external scheduler, guarded by the cron secret
	r.GET("/api/cron/delete-expired-shares", h.RunReaper)

	return r
}
