package gateway

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/iamprecieee/distributed-notification-system/internal/auth"
	"github.com/iamprecieee/distributed-notification-system/middlewares"
)

// NewRouter groups handlers under router groups per resource.
func NewRouter(h *Handler, ah *AuthHandler, hh *HealthHandler, authSvc *auth.Service) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.Default())
	r.Use(middlewares.GinMetricsMiddleware())

	limiter := NewRateLimiter(rate.Limit(100.0/60.0), 20)
	r.Use(limiter.Middleware())

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", ah.Login)
		authGroup.POST("/refresh", ah.Refresh)
		authGroup.POST("/validate", ah.Validate)
		authGroup.POST("/logout", auth.RequireAuth(authSvc), ah.Logout)
	}

	notifications := r.Group("/notifications")
	notifications.Use(auth.RequireAuth(authSvc))
	{
		notifications.POST("/send", h.Send)
		notifications.GET("/status/:id", h.Status)
	}

	r.GET("/health", hh.Health)
	r.GET("/health/services", hh.Services)

	return r
}
