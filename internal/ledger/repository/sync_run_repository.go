package repository

import (
	"qbo-backend/internal/ledger/domain"

	"gorm.io/gorm"
)

type syncRunRepository struct {
	db *gorm.DB
}

// NewSyncRunRepository creates a gorm-backed SyncRunRepository.
func NewSyncRunRepository(db *gorm.DB) SyncRunRepository {
	return &syncRunRepository{db: db}
}

func (r *syncRunRepository) Create(run *domain.SyncRun) error {
	return r.db.Create(run).Error
}

func (r *syncRunRepository) Update(run *domain.SyncRun) error {
	return r.db.Save(run).Error
}

func (r *syncRunRepository) Latest(limit int) ([]*domain.SyncRun, error) {
	var runs []*domain.SyncRun
	err := r.db.Order("started_at DESC").Limit(limit).Find(&runs).Error
	return runs, err
}
