package gateway

import "testing"

func TestIdempotencyKey(t *testing.T) {
	if got := idempotencyKey("abc-123"); got != "idempotency:abc-123" {
		t.Errorf("idempotencyKey = %q", got)
	}
}

func TestNotificationKey(t *testing.T) {
	if got := notificationKey("abc-123"); got != "notification:abc-123" {
		t.Errorf("notificationKey = %q", got)
	}
}
