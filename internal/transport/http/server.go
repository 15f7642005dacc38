package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/board-server/internal/auth"
	"github.com/vovakirdan/board-server/internal/config"
	"github.com/vovakirdan/board-server/internal/service/messages"
)

// NewServer builds the HTTP server with the public board, the admin surface and ops endpoints.
func NewServer(svc *messages.Service, admin *auth.Admin, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	m := newMetrics()
	limiter := newRateLimiter(cfg.PostRatePerMinute)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		RequestIDMiddleware(),
		LoggerMiddleware(logger),
		m.middleware(),
		SecurityHeadersMiddleware(),
		CORSMiddleware(cfg.CORSOrigins),
		BodyLimitMiddleware(cfg.MaxBodyBytes),
	)
	router.SetHTMLTemplate(loadTemplates())

	messageHandlers := NewMessageHandlers(svc, m, cfg.Env, logger)
	adminHandlers := NewAdminHandlers(svc, m, logger)
	pageHandlers := NewPageHandlers(svc, m, logger)
	postLimit := RateLimitMiddleware(limiter, m, logger)
	adminGate := AdminAuthMiddleware(admin, logger)

	router.GET("/healthz", messageHandlers.Health)
	router.GET("/metrics", m.handler())

	router.GET("/", pageHandlers.Index)
	router.POST("/", postLimit, pageHandlers.SubmitForm)

	api := router.Group("/api")
	{
		api.GET("/message", messageHandlers.GetCurrent)
		api.POST("/message", postLimit, messageHandlers.Submit)
		api.GET("/style-options", messageHandlers.StyleOptions)
	}

	adminAPI := router.Group("/api/admin", adminGate)
	{
		adminAPI.GET("/messages", adminHandlers.ListMessages)
		adminAPI.DELETE("/messages/:id", adminHandlers.DeleteMessage)
	}

	adminPages := router.Group("/admin", adminGate)
	{
		adminPages.GET("", pageHandlers.Admin)
		adminPages.POST("/messages/:id/delete", pageHandlers.DeleteForm)
	}

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
