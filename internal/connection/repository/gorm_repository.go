package repository

import (
	"time"

	"qbo-backend/internal/connection/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type connectionRepository struct {
	db *gorm.DB
}

// NewConnectionRepository creates a gorm-backed ConnectionRepository.
func NewConnectionRepository(db *gorm.DB) ConnectionRepository {
	return &connectionRepository{db: db}
}

func (r *connectionRepository) Latest() (*domain.Connection, error) {
	var conn domain.Connection
	err := r.db.Order("updated_at DESC").First(&conn).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &conn, nil
}

func (r *connectionRepository) Save(conn *domain.Connection) error {
	conn.UpdatedAt = time.Now()
	if conn.ID != 0 {
		return r.db.Save(conn).Error
	}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "realm_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"access_token", "refresh_token", "token_type",
			"access_token_expires_at", "refresh_token_expires_at", "updated_at",
		}),
	}).Create(conn).Error
}

func (r *connectionRepository) DeleteAll() error {
	return r.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&domain.Connection{}).Error
}

type oauthStateRepository struct {
	db *gorm.DB
}

// NewOAuthStateRepository creates a gorm-backed OAuthStateRepository.
func NewOAuthStateRepository(db *gorm.DB) OAuthStateRepository {
	return &oauthStateRepository{db: db}
}

func (r *oauthStateRepository) Create(state *domain.OAuthState) error {
	return r.db.Create(state).Error
}

func (r *oauthStateRepository) Consume(nonce string, now time.Time) (bool, error) {
	res := r.db.Where("nonce = ? AND expires_at > ?", nonce, now).Delete(&domain.OAuthState{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *oauthStateRepository) DeleteExpired(now time.Time) error {
	return r.db.Where("expires_at <= ?", now).Delete(&domain.OAuthState{}).Error
}
