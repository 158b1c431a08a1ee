package gateway

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/iamprecieee/distributed-notification-system/internal/apperr"
	"github.com/iamprecieee/distributed-notification-system/internal/auth"
)

// AuthHandler exposes login, refresh, logout and validate over HTTP.
// Login/refresh/logout have no in-process caller inside this binary, so
// HTTP is the only surface for them; validate is also callable directly
// by anything that imports auth.Service.
type AuthHandler struct {
	svc       *auth.Service
	accessTTL time.Duration
}

func NewAuthHandler(svc *auth.Service, accessTTL time.Duration) *AuthHandler {
	return &AuthHandler{svc: svc, accessTTL: accessTTL}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	result, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeAppErr(c, err)
		return
	}
	ok(c, http.StatusOK, loginResponse(result), "logged in")
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	result, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		writeAppErr(c, err)
		return
	}
	ok(c, http.StatusOK, loginResponse(result), "token refreshed")
}

// Logout requires the RequireAuth middleware to have already populated
// the access token's claims on the context.
func (h *AuthHandler) Logout(c *gin.Context) {
	userID := auth.UserID(c)
	jti := auth.AccessJTI(c)
	if err := h.svc.Logout(c.Request.Context(), userID, jti, h.accessTTL); err != nil {
		writeAppErr(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"success": true}, "logged out")
}

type validateRequest struct {
	Token string `json:"token" binding:"required"`
}

// Validate is deliberately NOT behind RequireAuth — it is itself the
// mechanism other services use to validate a bearer token.
func (h *AuthHandler) Validate(c *gin.Context) {
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"valid": false, "reason": err.Error()})
		return
	}
	payload, err := h.svc.Validate(c.Request.Context(), req.Token)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"valid": false, "reason": "invalid or expired token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"valid":      true,
		"user_id":    payload.UserID,
		"email":      payload.Email,
		"expires_at": payload.ExpiresAt.Format(time.RFC3339),
	})
}

func loginResponse(result *auth.LoginResult) gin.H {
	return gin.H{
		"access_token":  result.AccessToken,
		"refresh_token": result.RefreshToken,
		"token_type":    "Bearer",
		"expires_in":    result.ExpiresIn,
		"user": gin.H{
			"id":    result.User.ID,
			"name":  result.User.Name,
			"email": result.User.Email,
		},
	}
}

func writeAppErr(c *gin.Context, err error) {
	appErr := apperr.As(err)
	fail(c, apperr.StatusCode(appErr.Kind), string(appErr.Kind), appErr.Message)
}
