// Package gateway is the idempotent HTTP dispatcher: it authenticates
// inbound requests, routes them to broker queues, and persists a
// short-lived status record.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iamprecieee/distributed-notification-system/internal/auth"
	"github.com/iamprecieee/distributed-notification-system/internal/broker"
	"github.com/iamprecieee/distributed-notification-system/internal/cache"
	"github.com/iamprecieee/distributed-notification-system/internal/notification"
	"github.com/iamprecieee/distributed-notification-system/internal/repository"
)

const (
	idempotencyTTL = 24 * time.Hour
	statusTTL      = 1 * time.Hour
)

type Handler struct {
	cache    *cache.Client
	producer *broker.Producer
	users    *repository.UserRepository
	auth     *auth.Service
	log      *zap.Logger
}

func NewHandler(c *cache.Client, p *broker.Producer, users *repository.UserRepository, authSvc *auth.Service, log *zap.Logger) *Handler {
	return &Handler{cache: c, producer: p, users: users, auth: authSvc, log: log}
}

func idempotencyKey(key string) string { return fmt.Sprintf("idempotency:%s", key) }
func notificationKey(id string) string { return fmt.Sprintf("notification:%s", id) }

// Send validates the idempotency key, resolves the requesting user,
// builds the queue envelope and publishes it, recording a status
// record the caller can poll.
func (h *Handler) Send(c *gin.Context) {
	idemKey := c.GetHeader("X-Idempotency-Key")
	if idemKey == "" {
		fail(c, http.StatusBadRequest, "missing_header", "X-Idempotency-Key header is required")
		return
	}

	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	queue, routingKey, found := broker.QueueForType(req.NotificationType)
	if !found {
		fail(c, http.StatusBadRequest, "invalid_type", "unknown notification_type")
		return
	}

	ctx := c.Request.Context()

	reserved, err := h.cache.SetNX(ctx, idempotencyKey(idemKey), []byte("processing"), idempotencyTTL)
	if err != nil {
		fail(c, http.StatusBadGateway, "idempotency_failed", "failed to reserve idempotency key")
		return
	}
	if !reserved {
		fail(c, http.StatusConflict, "duplicate_request", "a request with this idempotency key is already in flight")
		return
	}

	userID := auth.UserID(c)
	uid, err := uuid.Parse(userID)
	if err != nil {
		h.markFailed(ctx, req.RequestID, req.NotificationType, userID, req.TemplateCode)
		fail(c, http.StatusBadGateway, "recipient_unresolved", "failed to resolve recipient")
		return
	}
	user, err := h.users.GetByID(uid)
	if err != nil {
		h.markFailed(ctx, req.RequestID, req.NotificationType, userID, req.TemplateCode)
		fail(c, http.StatusBadGateway, "recipient_unresolved", "failed to resolve recipient")
		return
	}

	now := time.Now()
	record := notification.StatusRecord{
		NotificationID:   req.RequestID,
		NotificationType: req.NotificationType,
		UserID:           userID,
		TemplateCode:     req.TemplateCode,
		Status:           "pending",
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := h.putStatus(ctx, record); err != nil {
		h.markFailed(ctx, req.RequestID, req.NotificationType, userID, req.TemplateCode)
		fail(c, http.StatusBadGateway, "status_persist_failed", "failed to persist status")
		return
	}

	envelope := notification.Envelope{
		NotificationID:   req.RequestID,
		IdempotencyKey:   idemKey,
		UserID:           userID,
		Email:            user.Email,
		PushToken:        user.PushToken,
		CreatedBy:        userID,
		Timestamp:        now,
		NotificationType: req.NotificationType,
		TemplateCode:     req.TemplateCode,
		Variables:        req.Variables,
		RequestID:        req.RequestID,
		Priority:         req.Priority,
		Metadata:         req.Metadata,
		RetryCount:       0,
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		h.markFailed(ctx, req.RequestID, req.NotificationType, userID, req.TemplateCode)
		fail(c, http.StatusBadGateway, "encode_failed", "failed to encode envelope")
		return
	}

	if err := h.producer.Publish(ctx, routingKey, body, nil); err != nil {
		// Intentionally not releasing the idempotency key here: the
		// caller must retry with a new key rather than risk a double
		// publish against a message that may have partially landed.
		h.markFailed(ctx, req.RequestID, req.NotificationType, userID, req.TemplateCode)
		fail(c, http.StatusBadGateway, "publish_failed", "failed to publish notification")
		return
	}

	ok(c, http.StatusAccepted, SendResponse{
		NotificationID: req.RequestID,
		Status:         "queued",
		Queues:         []string{queue},
	}, "notification queued")
}

// Status implements GET /notifications/status/{id}.
func (h *Handler) Status(c *gin.Context) {
	id := c.Param("id")
	raw, err := h.cache.Get(c.Request.Context(), notificationKey(id))
	if err != nil {
		fail(c, http.StatusNotFound, "not_found", "notification not found")
		return
	}
	var record notification.StatusRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		fail(c, http.StatusInternalServerError, "corrupt_record", "corrupt status record")
		return
	}
	ok(c, http.StatusOK, record, "")
}

func (h *Handler) putStatus(ctx context.Context, record notification.StatusRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return h.cache.Set(ctx, notificationKey(record.NotificationID), data, statusTTL)
}

func (h *Handler) markFailed(ctx context.Context, notificationID, notificationType, userID, templateCode string) {
	now := time.Now()
	_ = h.putStatus(ctx, notification.StatusRecord{
		NotificationID:   notificationID,
		NotificationType: notificationType,
		UserID:           userID,
		TemplateCode:     templateCode,
		Status:           "failed",
		CreatedAt:        now,
		UpdatedAt:        now,
	})
}
