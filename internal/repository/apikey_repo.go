package repository

import (
	"time"

	"go-smartretail-api/internal/model"

	"gorm.io/gorm"
)

type ApiKeyRepository interface {
	Create(key *model.ApiKey) error
	FindActiveByKey(apiKey string) (*model.ApiKey, error)
	FindAllByUser(userID uint) ([]model.ApiKey, error)
	Deactivate(userID, keyID uint) error
	TouchLastUsed(keyID uint) error
}

type apiKeyRepo struct {
	db *gorm.DB
}

func NewApiKeyRepo(db *gorm.DB) ApiKeyRepository {
	return &apiKeyRepo{db}
}

func (r *apiKeyRepo) Create(key *model.ApiKey) error {
	return r.db.Create(key).Error
}

// FindActiveByKey resolves an active key together with its owner
func (r *apiKeyRepo) FindActiveByKey(apiKey string) (*model.ApiKey, error) {
	var key model.ApiKey
	err := r.db.Preload("User").
		First(&key, "api_key = ? AND is_active = ?", apiKey, true).Error
	if err != nil {
		return nil, err
	}
	return &key, nil
}

func (r *apiKeyRepo) FindAllByUser(userID uint) ([]model.ApiKey, error) {
	var keys []model.ApiKey
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&keys).Error
	return keys, err
}

func (r *apiKeyRepo) Deactivate(userID, keyID uint) error {
	res := r.db.Model(&model.ApiKey{}).
		Where("key_id = ? AND user_id = ?", keyID, userID).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *apiKeyRepo) TouchLastUsed(keyID uint) error {
	return r.db.Model(&model.ApiKey{}).Where("key_id = ?", keyID).
		Update("last_used_at", time.Now()).Error
}
