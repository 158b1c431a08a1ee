package repository

import (
	"gorm.io/gorm"

	"github.com/iamprecieee/distributed-notification-system/internal/models"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Append is the only write AuditLog ever gets: rows are never updated.
func (r *AuditRepository) Append(log *models.AuditLog) error {
	return r.db.Create(log).Error
}

func (r *AuditRepository) ListByTraceID(traceID string) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	if err := r.db.Where("trace_id = ?", traceID).Order("created_at desc").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *AuditRepository) ListByUser(userID string, limit int) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	if err := r.db.Where("user_id = ?", userID).Order("created_at desc").Limit(limit).Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
