package repository

import (
	"strings"

	"qbo-backend/internal/ledger/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type categoryMapRepository struct {
	db *gorm.DB
}

// NewCategoryMapRepository creates a gorm-backed CategoryMapRepository.
func NewCategoryMapRepository(db *gorm.DB) CategoryMapRepository {
	return &categoryMapRepository{db: db}
}

func (r *categoryMapRepository) List() ([]*domain.CategoryAccountMap, error) {
	var mappings []*domain.CategoryAccountMap
	err := r.db.Order("category ASC").Find(&mappings).Error
	return mappings, err
}

func (r *categoryMapRepository) FindByCategory(category string) (*domain.CategoryAccountMap, error) {
	var mapping domain.CategoryAccountMap
	err := r.db.Where("LOWER(category) = ?", strings.ToLower(strings.TrimSpace(category))).First(&mapping).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &mapping, nil
}

func (r *categoryMapRepository) Upsert(mapping *domain.CategoryAccountMap) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "category"}},
		DoUpdates: clause.AssignmentColumns([]string{"account_id", "account_name", "updated_at"}),
	}).Create(mapping).Error
}
