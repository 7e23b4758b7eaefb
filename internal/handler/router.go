package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ad-tracker/youtube-channel-harvester/internal/metrics"
)

// Handlers groups the handlers mounted by NewRouter.
type Handlers struct {
	Health   *HealthHandler
	Channels *ChannelHandler
	Videos   *VideoHandler
	Runs     *RunHandler
}

// NewRouter builds the gin engine for the read API. m may be nil, in which
// case neither request metrics nor /metrics are exposed.
func NewRouter(h Handlers, m *metrics.HTTP, middleware ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware...)
	if m != nil {
		router.Use(m.Middleware())
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))
	}

	router.GET("/health/live", h.Health.LivenessProbe)
	router.GET("/health/ready", h.Health.ReadinessProbe)

	api := router.Group("/api/v1")
	api.GET("/channels", h.Channels.List)
	api.GET("/channels/:id", h.Channels.Get)
	api.GET("/channels/:id/videos", h.Channels.ListVideos)
	api.GET("/videos/:id", h.Videos.Get)
	api.GET("/runs", h.Runs.List)
	api.GET("/runs/:id", h.Runs.Get)

	return router
}
