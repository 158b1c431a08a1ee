package models

import "time"

// AuditLog is the append-only row the worker runtime writes as a side
// effect of a message reaching a terminal state; the runtime writes
// "sent" and "failed" rows only.
type AuditLog struct {
	ID               uint              `gorm:"primaryKey"`
	TraceID          string            `gorm:"size:64;not null;index"`
	UserID           string            `gorm:"size:64;not null;index"`
	NotificationType string            `gorm:"size:20;not null"`
	TemplateCode     string            `gorm:"size:100;not null"`
	Status           string            `gorm:"size:20;not null;index"` // queued|processing|sent|failed|dlq
	ErrorMessage     string            `gorm:"type:text"`
	Metadata         map[string]string `gorm:"serializer:json"`
	CreatedAt        time.Time         `gorm:"autoCreateTime;index:idx_audit_created_at,sort:desc"`
}

func (AuditLog) TableName() string { return "audit_logs" }
