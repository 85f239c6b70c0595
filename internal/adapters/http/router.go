package http

import (
	"context"
	"time"

	"github.com/dkeye/MillenniumEye/internal/app/orch"
	"github.com/dkeye/MillenniumEye/internal/config"
	"github.com/dkeye/MillenniumEye/internal/media"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const (
	clientTokenCookie = "ct"
	defaultPingPeriod = 54 * time.Second
)

func genClientToken() string {
	return uuid.NewString()
}

func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(clientTokenCookie)
		if token == "" {
			token = genClientToken()
			c.SetCookie(clientTokenCookie, token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

// SetupRouter serves the call control API. ctx bounds the commands it
// dispatches, so it should live as long as the orchestrator.
func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator, devices media.DeviceLister) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("EyeSessions", store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	ctl := &controller{
		ctx:        ctx,
		orch:       o,
		devices:    devices,
		pingPeriod: cfg.PingPeriod,
		readLimit:  cfg.ReadLimit,
	}
	if ctl.pingPeriod <= 0 {
		ctl.pingPeriod = defaultPingPeriod
	}
	limiter := NewCommandLimiter(cfg.HTTP.CommandLimit, cfg.HTTP.CommandWindow)

	api := r.Group("/api")
	api.GET("/state", ctl.state)
	api.GET("/devices", ctl.listDevices)
	api.GET("/ws/state", ctl.stateFeed)

	cmd := api.Group("", rateLimit(limiter))
	cmd.POST("/register", ctl.register)
	cmd.POST("/call", ctl.call)
	cmd.POST("/accept", ctl.accept)
	cmd.POST("/hangup", ctl.hangup)

	return r
}
