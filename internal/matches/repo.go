package matches

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// LoadRecord is one row of the load history.
type LoadRecord struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Source     string    `json:"source"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `gorm:"column:duration_ms" json:"duration_ms"`
	Rows       int       `json:"rows"`
	Warnings   int       `json:"warnings"`
	Status     int       `json:"status,omitempty"`
	Error      string    `json:"error,omitempty"`
}

func (LoadRecord) TableName() string { return "loads" }

// HistoryRepo persists load attempts. Only outcomes are stored, never records.
type HistoryRepo struct{ db *gorm.DB }

func NewHistoryRepo(db *gorm.DB) *HistoryRepo { return &HistoryRepo{db: db} }

func (r *HistoryRepo) Record(ctx context.Context, l *LoadRecord) error {
	return r.db.WithContext(ctx).Create(l).Error
}

// List returns the newest attempts first.
func (r *HistoryRepo) List(ctx context.Context, limit int) ([]LoadRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	limit = min(limit, maxLoadsLimit)
	var out []LoadRecord
	err := r.db.WithContext(ctx).Order("started_at DESC, id DESC").Limit(limit).Find(&out).Error
	return out, err
}
