package gateway

import (
	"net/http"
	"testing"

	"github.com/iamprecieee/distributed-notification-system/internal/health"
)

func TestStatusCode(t *testing.T) {
	cases := []struct {
		status health.Status
		want   int
	}{
		{health.Healthy, http.StatusOK},
		{health.Degraded, http.StatusOK},
		{health.Down, http.StatusServiceUnavailable},
	}
	for _, c := range cases {
		if got := statusCode(c.status); got != c.want {
			t.Errorf("statusCode(%q) = %d, want %d", c.status, got, c.want)
		}
	}
}
