// Package worker runs one runtime instance per queue, consuming with
// manual ack at a fixed prefetch. A single Transport-parameterized loop
// serves every channel instead of one hand-copy per channel.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iamprecieee/distributed-notification-system/internal/breaker"
	"github.com/iamprecieee/distributed-notification-system/internal/broker"
	"github.com/iamprecieee/distributed-notification-system/internal/cache"
	"github.com/iamprecieee/distributed-notification-system/internal/models"
	"github.com/iamprecieee/distributed-notification-system/internal/notification"
	"github.com/iamprecieee/distributed-notification-system/internal/repository"
	"github.com/iamprecieee/distributed-notification-system/internal/template"
	"github.com/iamprecieee/distributed-notification-system/internal/transport"
	"github.com/prometheus/client_golang/prometheus"

	appmetrics "github.com/iamprecieee/distributed-notification-system/metrics"
)

const (
	defaultLanguage = "en"
	maxRetries      = 3
	baseBackoff     = 1 * time.Second
	maxBackoff      = 60 * time.Second
	cacheCallTTL    = 200 * time.Millisecond
	templateCallTTL = 5 * time.Second
	transportTTL    = 5 * time.Second
	idempotencyTTL  = 24 * time.Hour
)

// Runtime is the per-queue consumer loop. One Runtime == one channel,
// one queue, one transport; a binary wanting both email and push runs
// two Runtimes concurrently.
type Runtime struct {
	consumer  *broker.Consumer
	producer  *broker.Producer
	cache     *cache.Client
	breaker   *breaker.Breaker
	resolver  *template.Resolver
	audit     *repository.AuditRepository
	transport Transport
	channel   string // "email" | "push", used for metric labels and audit rows
	log       *zap.Logger
}

func NewRuntime(
	consumer *broker.Consumer,
	producer *broker.Producer,
	c *cache.Client,
	b *breaker.Breaker,
	resolver *template.Resolver,
	audit *repository.AuditRepository,
	t Transport,
	channel string,
	log *zap.Logger,
) *Runtime {
	return &Runtime{
		consumer:  consumer,
		producer:  producer,
		cache:     c,
		breaker:   b,
		resolver:  resolver,
		audit:     audit,
		transport: t,
		channel:   channel,
		log:       log,
	}
}

func idempotencyKey(requestID string) string { return fmt.Sprintf("idempotency:%s", requestID) }
func statusKey(notificationID string) string { return fmt.Sprintf("notification:%s", notificationID) }

// Run blocks, processing deliveries until ctx is cancelled or the
// channel closes. Each delivery runs synchronously on this goroutine;
// callers wanting prefetch-wide concurrency run one Run per prefetch
// slot — the channel's Qos(prefetch) already bounds in-flight messages,
// so N goroutines calling Run against the same Consumer.Messages is the
// idiomatic way to reach worker concurrency == prefetch.
func (r *Runtime) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, open := <-r.consumer.Messages:
			if !open {
				return
			}
			r.process(ctx, msg)
		}
	}
}

func (r *Runtime) process(ctx context.Context, msg amqp.Delivery) {
	var env notification.Envelope
	if err := json.Unmarshal(msg.Body, &env); err != nil {
		r.log.Error("failed to decode envelope, dropping", zap.Error(err))
		appmetrics.BrokerConsumeFailureTotal.WithLabelValues(r.routingKey()).Inc()
		_ = msg.Ack(false)
		return
	}

	switch r.claimIdempotency(ctx, env.RequestID) {
	case claimDuplicate:
		_ = msg.Ack(false)
		return
	case claimInFlight:
		_ = msg.Nack(false, true)
		return
	case claimTerminal:
		_ = msg.Ack(false)
		return
	}

	r.incrProcessed()
	r.setStatus(ctx, env, "pending")

	language := defaultLanguage
	if v, ok := env.Metadata["language"].(string); ok && v != "" {
		language = v
	}

	tplCtx, cancel := context.WithTimeout(ctx, templateCallTTL)
	tpl, err := r.resolver.Resolve(tplCtx, env.TemplateCode, language, nil)
	cancel()
	if err != nil {
		r.log.Error("template fetch failed, dropping message",
			zap.String("request_id", env.RequestID), zap.Error(err))
		r.finishTerminal(ctx, env, "failed", err.Error())
		_ = msg.Ack(false)
		return
	}

	rendered := renderAll(tpl, env.Variables)

	deliverCtx, cancel := context.WithTimeout(ctx, transportTTL)
	stop := timeSend(r.channel, r.transport.Resource())
	err = r.breaker.Call(deliverCtx, r.transport.Resource(), func() error {
		return r.transport.Deliver(deliverCtx, Delivery{Envelope: env, Rendered: rendered})
	})
	stop()
	cancel()

	if err == nil {
		r.onSuccess(ctx, env)
		_ = msg.Ack(false)
		return
	}

	r.onFailure(ctx, msg, env, err)
}

type claimResult int

const (
	claimOwned claimResult = iota
	claimDuplicate
	claimInFlight
	claimTerminal
)

// claimIdempotency reserves the marker if absent, otherwise branches on
// the existing value.
func (r *Runtime) claimIdempotency(ctx context.Context, requestID string) claimResult {
	cctx, cancel := context.WithTimeout(ctx, cacheCallTTL)
	defer cancel()

	key := idempotencyKey(requestID)
	reserved, err := r.cache.SetNX(cctx, key, []byte("processing"), idempotencyTTL)
	if err != nil {
		// Cache is unavailable: fail open and process the message rather
		// than stall the queue: a cache miss is never treated as fatal.
		r.log.Warn("idempotency reservation failed, processing anyway", zap.Error(err))
		return claimOwned
	}
	if reserved {
		return claimOwned
	}

	existing, err := r.cache.Get(cctx, key)
	if err != nil {
		return claimOwned
	}
	switch string(existing) {
	case "sent":
		return claimDuplicate
	case "failed":
		return claimTerminal
	default:
		return claimInFlight
	}
}

func renderAll(tpl *models.Template, variables map[string]interface{}) map[string]string {
	out := make(map[string]string, len(tpl.Content))
	for field, body := range tpl.Content {
		out[field] = template.Render(body, variables)
	}
	return out
}

func (r *Runtime) onSuccess(ctx context.Context, env notification.Envelope) {
	cctx, cancel := context.WithTimeout(ctx, cacheCallTTL)
	defer cancel()
	_ = r.cache.Set(cctx, idempotencyKey(env.RequestID), []byte("sent"), idempotencyTTL)

	r.appendAudit(env, "sent", "")
	r.setStatus(ctx, env, "delivered")
	r.incrDelivered()
}

func (r *Runtime) onFailure(ctx context.Context, msg amqp.Delivery, env notification.Envelope, err error) {
	retryable := transport.IsRetryable(err)
	if _, isOpen := err.(breaker.ErrOpen); isOpen {
		retryable = true
	}

	if retryable && env.RetryCount < maxRetries {
		r.incrRetry(err)
		if pubErr := r.republish(ctx, env); pubErr != nil {
			r.log.Error("failed to republish for retry, sending to DLQ instead",
				zap.String("request_id", env.RequestID), zap.Error(pubErr))
			r.finishTerminal(ctx, env, "failed", err.Error())
		}
		_ = msg.Ack(false)
		return
	}

	r.finishTerminal(ctx, env, "failed", err.Error())
	_ = msg.Ack(false)
}

// republish backs off in-process, then republishes the envelope with
// an incremented RetryCount to the same routing key, rather than an
// in-place nack+requeue that would leave the count unchanged. It clears
// the idempotency marker first: leaving it at "processing" would make
// claimIdempotency read the redelivery as claimInFlight and nack it
// back onto the queue forever instead of re-running the transport.
func (r *Runtime) republish(ctx context.Context, env notification.Envelope) error {
	delay := backoffFor(env.RetryCount)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
	}

	cctx, cancel := context.WithTimeout(ctx, cacheCallTTL)
	if err := r.cache.Delete(cctx, idempotencyKey(env.RequestID)); err != nil {
		r.log.Warn("failed to clear idempotency marker before retry",
			zap.String("request_id", env.RequestID), zap.Error(err))
	}
	cancel()

	next := env
	next.RetryCount++
	body, err := json.Marshal(next)
	if err != nil {
		return err
	}
	routingKey := r.routingKey()
	return r.producer.Publish(ctx, routingKey, body, amqp.Table{"x-retry-count": next.RetryCount})
}

func (r *Runtime) routingKey() string {
	if r.channel == "push" {
		return broker.RoutingKeyPush
	}
	return broker.RoutingKeyEmail
}

func backoffFor(attempt int) time.Duration {
	backoff := baseBackoff * time.Duration(1<<attempt)
	if backoff > maxBackoff {
		backoff = maxBackoff
	}
	jitter := time.Duration(rand.Int63n(int64(baseBackoff)))
	return backoff + jitter
}

func (r *Runtime) finishTerminal(ctx context.Context, env notification.Envelope, status, reason string) {
	cctx, cancel := context.WithTimeout(ctx, cacheCallTTL)
	defer cancel()
	_ = r.cache.Set(cctx, idempotencyKey(env.RequestID), []byte("failed"), idempotencyTTL)

	r.appendAudit(env, status, reason)
	r.setStatus(ctx, env, status)
	r.incrFailed()

	dlq := notification.DLQEnvelope{
		OriginalMessage: env,
		FailureReason:   reason,
		FailedAt:        time.Now(),
	}
	body, err := json.Marshal(dlq)
	if err != nil {
		r.log.Error("failed to encode DLQ envelope", zap.Error(err))
		return
	}
	if err := r.producer.PublishDLQ(ctx, body); err != nil {
		r.log.Error("failed to publish DLQ envelope", zap.String("request_id", env.RequestID), zap.Error(err))
		return
	}
	r.incrDLQ()
}

func (r *Runtime) appendAudit(env notification.Envelope, status, errMsg string) {
	if err := r.audit.Append(&models.AuditLog{
		TraceID:          env.RequestID,
		UserID:           env.UserID,
		NotificationType: env.NotificationType,
		TemplateCode:     env.TemplateCode,
		Status:           status,
		ErrorMessage:      errMsg,
	}); err != nil {
		r.log.Warn("failed to append audit row", zap.Error(err))
	}
}

func (r *Runtime) setStatus(ctx context.Context, env notification.Envelope, status string) {
	cctx, cancel := context.WithTimeout(ctx, cacheCallTTL)
	defer cancel()

	record := notification.StatusRecord{
		NotificationID:   env.NotificationID,
		NotificationType: env.NotificationType,
		UserID:           env.UserID,
		TemplateCode:     env.TemplateCode,
		Status:           status,
		UpdatedAt:        time.Now(),
	}
	if existing, err := r.cache.Get(cctx, statusKey(env.NotificationID)); err == nil {
		var prior notification.StatusRecord
		if jsonErr := json.Unmarshal(existing, &prior); jsonErr == nil {
			record.CreatedAt = prior.CreatedAt
		}
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = record.UpdatedAt
	}

	data, err := json.Marshal(record)
	if err != nil {
		r.log.Warn("failed to encode status record", zap.Error(err))
		return
	}
	if err := r.cache.Set(cctx, statusKey(env.NotificationID), data, time.Hour); err != nil {
		// Best-effort: never fail the message over a status-cache write.
		r.log.Warn("failed to persist status update", zap.Error(err))
	}
}

func (r *Runtime) incrProcessed() {
	appmetrics.NotificationsAttemptedTotal.WithLabelValues(r.channel, "processing", r.transport.Resource()).Inc()
}

func (r *Runtime) incrDelivered() {
	appmetrics.NotificationsAttemptedTotal.WithLabelValues(r.channel, "delivered", r.transport.Resource()).Inc()
}

func (r *Runtime) incrFailed() {
	appmetrics.NotificationsAttemptedTotal.WithLabelValues(r.channel, "failed", r.transport.Resource()).Inc()
}

func (r *Runtime) incrRetry(err error) {
	reason := "provider_error"
	if _, isOpen := err.(breaker.ErrOpen); isOpen {
		reason = "breaker_open"
	}
	appmetrics.NotificationRetriesTotal.WithLabelValues(reason, r.channel).Inc()
}

func (r *Runtime) incrDLQ() {
	appmetrics.NotificationDLQTotal.WithLabelValues("provider_error", r.channel).Inc()
}

// timeSend is a small helper every Transport call goes through so the
// histogram exists even though individual Transport implementations
// don't import prometheus themselves.
func timeSend(channel, provider string) func() {
	timer := prometheus.NewTimer(appmetrics.NotificationSendDuration.WithLabelValues(provider, channel))
	return func() { timer.ObserveDuration() }
}
