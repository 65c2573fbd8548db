package repository

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/insbu/portal/app/models"
)

// tokenRepository implements the TokenRepository interface
type tokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository creates a new token repository instance
func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Create(token *models.APIToken) error {
	return r.db.Omit("User").Create(token).Error
}

// GetByHash resolves a token hash to the token and its owner.
func (r *tokenRepository) GetByHash(hash string) (*models.APIToken, *models.User, error) {
	trimmed := strings.TrimSpace(hash)
	if trimmed == "" {
		return nil, nil, gorm.ErrRecordNotFound
	}
	var token models.APIToken
	if err := r.db.Where("token_hash = ?", trimmed).First(&token).Error; err != nil {
		return nil, nil, err
	}
	var user models.User
	if err := r.db.First(&user, token.UserID).Error; err != nil {
		return nil, nil, err
	}
	return &token, &user, nil
}

func (r *tokenRepository) Touch(id uint, at time.Time) error {
	return r.db.Model(&models.APIToken{}).
		Where("id = ?", id).
		UpdateColumn("last_used_at", at).Error
}

func (r *tokenRepository) Delete(id uint) error {
	return r.db.Delete(&models.APIToken{}, id).Error
}

func (r *tokenRepository) DeleteByUserID(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.APIToken{}).Error
}
