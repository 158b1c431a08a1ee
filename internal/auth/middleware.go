package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserID    = "user_id"
	ctxEmail     = "email"
	ctxAccessJTI = "access_jti"
)

// RequireAuth pulls the Bearer token, validates it, and stashes the
// payload on the gin context for handlers downstream.
func RequireAuth(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			return
		}
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "bearer token required"})
			return
		}

		payload, err := svc.Validate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(ctxUserID, payload.UserID)
		c.Set(ctxEmail, payload.Email)
		c.Set(ctxAccessJTI, payload.AccessJTI)
		c.Next()
	}
}

func UserID(c *gin.Context) string {
	v, _ := c.Get(ctxUserID)
	s, _ := v.(string)
	return s
}

func Email(c *gin.Context) string {
	v, _ := c.Get(ctxEmail)
	s, _ := v.(string)
	return s
}

func AccessJTI(c *gin.Context) string {
	v, _ := c.Get(ctxAccessJTI)
	s, _ := v.(string)
	return s
}
