package gateway

import (
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/iamprecieee/distributed-notification-system/internal/auth"
)

func TestLoginResponseShape(t *testing.T) {
	result := &auth.LoginResult{
		AccessToken:  "access-tok",
		RefreshToken: "refresh-tok",
		ExpiresIn:    900,
		User:         auth.UserSummary{ID: "user-1", Name: "Ada", Email: "ada@example.com"},
	}
	got := loginResponse(result)
	if got["access_token"] != "access-tok" || got["refresh_token"] != "refresh-tok" {
		t.Errorf("got %+v", got)
	}
	if got["token_type"] != "Bearer" || got["expires_in"] != 900 {
		t.Errorf("got %+v", got)
	}
	user, ok := got["user"].(gin.H)
	if !ok {
		t.Fatalf("expected user field to be gin.H, got %T", got["user"])
	}
	if user["id"] != "user-1" || user["name"] != "Ada" || user["email"] != "ada@example.com" {
		t.Errorf("got user %+v", user)
	}
}
