// Package health is a composite probe over the durable store, cache,
// broker, and breaker states, rolled up with an "any down wins" rule.
package health

import (
	"context"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"gorm.io/gorm"

	"github.com/iamprecieee/distributed-notification-system/internal/breaker"
	"github.com/iamprecieee/distributed-notification-system/internal/cache"
)

type Status string

const (
	Healthy  Status = "healthy"
	Degraded Status = "degraded"
	Down     Status = "down"
)

type ServiceHealth struct {
	Status      Status `json:"status"`
	LatencyMS   int64  `json:"latency_ms,omitempty"`
	Breaker     string `json:"breaker,omitempty"`
	Error       string `json:"error,omitempty"`
}

type Report struct {
	Status    Status                    `json:"status"`
	Timestamp time.Time                 `json:"timestamp"`
	Checks    map[string]ServiceHealth  `json:"checks"`
}

// Aggregator probes collaborators directly (never through the breaker
// it is reporting on) and reads breaker state for the transport
// resources.
type Aggregator struct {
	db      *gorm.DB
	cache   *cache.Client
	amqpURL string
	breaker *breaker.Breaker
}

func NewAggregator(db *gorm.DB, c *cache.Client, amqpURL string, b *breaker.Breaker) *Aggregator {
	return &Aggregator{db: db, cache: c, amqpURL: amqpURL, breaker: b}
}

func (a *Aggregator) CheckAll(ctx context.Context) Report {
	checks := map[string]ServiceHealth{
		"database":        a.checkDatabase(ctx),
		"cache_service":    a.checkCache(ctx),
		"message_broker":   a.checkBroker(),
		"smtp":             a.checkBreaker(ctx, "smtp"),
		"fcm":              a.checkBreaker(ctx, "fcm"),
		"template_service": a.checkBreaker(ctx, "db"),
	}
	return Report{
		Status:    rollUp(checks),
		Timestamp: time.Now(),
		Checks:    checks,
	}
}

func (a *Aggregator) checkDatabase(ctx context.Context) ServiceHealth {
	start := time.Now()
	sqlDB, err := a.db.DB()
	if err != nil {
		return ServiceHealth{Status: Down, Error: err.Error()}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return ServiceHealth{Status: Down, Error: err.Error()}
	}
	return ServiceHealth{Status: Healthy, LatencyMS: time.Since(start).Milliseconds()}
}

func (a *Aggregator) checkCache(ctx context.Context) ServiceHealth {
	start := time.Now()
	if !a.cache.Ping(ctx) {
		return ServiceHealth{Status: Down, Error: "ping failed"}
	}
	return ServiceHealth{Status: Healthy, LatencyMS: time.Since(start).Milliseconds()}
}

func (a *Aggregator) checkBroker() ServiceHealth {
	start := time.Now()
	conn, err := amqp.Dial(a.amqpURL)
	if err != nil {
		return ServiceHealth{Status: Down, Error: err.Error()}
	}
	defer conn.Close()
	ch, err := conn.Channel()
	if err != nil {
		return ServiceHealth{Status: Down, Error: err.Error()}
	}
	defer ch.Close()
	return ServiceHealth{Status: Healthy, LatencyMS: time.Since(start).Milliseconds()}
}

// checkBreaker reports the breaker's own state as the health signal for
// a transport resource: OPEN reads as degraded (the fallback DLQ/retry
// path is doing its job, not down), HALF_OPEN as degraded (recovering),
// CLOSED as healthy.
func (a *Aggregator) checkBreaker(ctx context.Context, resource string) ServiceHealth {
	st := a.breaker.Status(ctx, resource)
	switch st.State {
	case breaker.Open:
		return ServiceHealth{Status: Degraded, Breaker: string(st.State), Error: "circuit breaker open"}
	case breaker.HalfOpen:
		return ServiceHealth{Status: Degraded, Breaker: string(st.State), Error: "circuit breaker in recovery"}
	default:
		return ServiceHealth{Status: Healthy, Breaker: string(st.State)}
	}
}

func rollUp(checks map[string]ServiceHealth) Status {
	hasDegraded := false
	for _, h := range checks {
		if h.Status == Down {
			return Down
		}
		if h.Status == Degraded {
			hasDegraded = true
		}
	}
	if hasDegraded {
		return Degraded
	}
	return Healthy
}
