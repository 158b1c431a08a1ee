package models

import "time"

// Template is the versioned, per-(code, language) content record the
// catalog writes and the resolver reads.
type Template struct {
	ID        uint              `gorm:"primaryKey"`
	Code      string            `gorm:"size:100;not null;index:idx_template_lookup"`
	Language  string            `gorm:"size:10;not null;index:idx_template_lookup"`
	Version   int               `gorm:"not null;index:idx_template_lookup"`
	Type      string            `gorm:"size:10;not null"` // email | push
	Content   map[string]string `gorm:"serializer:json;not null"`
	Variables []string          `gorm:"serializer:json;not null"`
	CreatedAt time.Time         `gorm:"autoCreateTime"`
	UpdatedAt time.Time         `gorm:"autoUpdateTime"`
}

func (Template) TableName() string { return "templates" }
