package repositories

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"alfredoptarigan/resume-match-bot/internal/models"
)

type RateWindowRepository interface {
	// Get returns nil without error when no window exists for the user.
	Get(userID int64) (*models.RateWindow, error)
	Save(window *models.RateWindow) error
	DeleteExpired(now time.Time) (int64, error)
}

type rateWindowRepository struct {
	db *gorm.DB
}

func NewRateWindowRepository(db *gorm.DB) RateWindowRepository {
	return &rateWindowRepository{db: db}
}

// Get implements RateWindowRepository.
func (r *rateWindowRepository) Get(userID int64) (*models.RateWindow, error) {
	var window models.RateWindow
	if err := r.db.Where("user_id = ?", userID).First(&window).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find rate window: %w", err)
	}
	return &window, nil
}

// Save implements RateWindowRepository.
func (r *rateWindowRepository) Save(window *models.RateWindow) error {
	window.UpdatedAt = time.Now()

	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(window).Error
	if err != nil {
		return fmt.Errorf("failed to save rate window: %w", err)
	}

	return nil
}

// DeleteExpired implements RateWindowRepository.
func (r *rateWindowRepository) DeleteExpired(now time.Time) (int64, error) {
	result := r.db.Where("expires_at < ?", now).Delete(&models.RateWindow{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete expired rate windows: %w", result.Error)
	}
	return result.RowsAffected, nil
}
