// Package notification holds the wire shapes the gateway and the
// workers share: the broker envelope, the cached status record, and
// the dead-letter envelope. Pulled out of internal/gateway so
// internal/worker doesn't need to import the HTTP layer just to decode
// what it publishes.
package notification

import "time"

type Envelope struct {
	NotificationID   string                 `json:"notification_id"`
	IdempotencyKey   string                 `json:"idempotency_key"`
	UserID           string                 `json:"user_id"`
	Email            string                 `json:"email,omitempty"`
	PushToken        string                 `json:"push_token,omitempty"`
	CreatedBy        string                 `json:"created_by"`
	Timestamp        time.Time              `json:"timestamp"`
	NotificationType string                 `json:"notification_type"`
	TemplateCode     string                 `json:"template_code"`
	Variables        map[string]interface{} `json:"variables"`
	RequestID        string                 `json:"request_id"`
	Priority         int                    `json:"priority"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
	RetryCount       int                    `json:"retry_count"`
}

// StatusRecord is the JSON envelope stored at notification:{id}.
type StatusRecord struct {
	NotificationID   string    `json:"notification_id"`
	NotificationType string    `json:"notification_type"`
	UserID           string    `json:"user_id"`
	TemplateCode     string    `json:"template_code"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// DLQEnvelope is published to the dead-letter exchange on retry
// exhaustion or a non-retryable failure.
type DLQEnvelope struct {
	OriginalMessage Envelope  `json:"original_message"`
	FailureReason   string    `json:"failure_reason"`
	FailedAt        time.Time `json:"failed_at"`
}
