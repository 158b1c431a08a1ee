package repository

import (
	"gorm.io/gorm"

	"github.com/iamprecieee/distributed-notification-system/internal/models"
)

type TemplateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

func (r *TemplateRepository) Create(t *models.Template) error {
	return r.db.Create(t).Error
}

// GetVersion fetches the exact (code, language, version) row.
func (r *TemplateRepository) GetVersion(code, language string, version int) (*models.Template, error) {
	var t models.Template
	if err := r.db.Where("code = ? AND language = ? AND version = ?", code, language, version).
		First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// GetLatest fetches the row with the max version for (code, language).
func (r *TemplateRepository) GetLatest(code, language string) (*models.Template, error) {
	var t models.Template
	if err := r.db.Where("code = ? AND language = ?", code, language).
		Order("version DESC").First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TemplateRepository) MaxVersion(code, language string) (int, error) {
	var t models.Template
	err := r.db.Where("code = ? AND language = ?", code, language).
		Order("version DESC").First(&t).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, nil
		}
		return 0, err
	}
	return t.Version, nil
}

func (r *TemplateRepository) List(page, limit int) ([]models.Template, int64, error) {
	var templates []models.Template
	var total int64
	if err := r.db.Model(&models.Template{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	if err := r.db.Order("code, language, version DESC").
		Limit(limit).Offset(offset).Find(&templates).Error; err != nil {
		return nil, 0, err
	}
	return templates, total, nil
}

func (r *TemplateRepository) DeleteAll(code, language string) error {
	return r.db.Where("code = ? AND language = ?", code, language).Delete(&models.Template{}).Error
}
