package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"alfredoptarigan/resume-match-bot/internal/models"
)

type SessionRepository interface {
	// Get returns models.ErrSessionNotFound both for missing rows and for
	// rows whose last activity is older than the TTL.
	Get(userID int64) (*models.Session, error)
	// Create builds an idle session in memory; nothing is persisted until
	// the caller saves it.
	Create(userID, chatID int64, languageCode string) *models.Session
	Save(session *models.Session) error
	// SetState does not validate the transition; that is the conversation
	// service's responsibility.
	SetState(userID int64, state models.SessionState) error
	AttachResume(userID int64, doc *models.Document) error
	AttachJobPost(userID int64, doc *models.Document) error
	// Complete deletes the session outright so the next interaction starts
	// from a clean slate.
	Complete(userID int64) error
	DeleteExpired(olderThan time.Time) (int64, error)
}

type sessionRepository struct {
	db  *gorm.DB
	ttl time.Duration
}

func NewSessionRepository(db *gorm.DB, ttl time.Duration) SessionRepository {
	return &sessionRepository{db: db, ttl: ttl}
}

// Get implements SessionRepository.
func (r *sessionRepository) Get(userID int64) (*models.Session, error) {
	var session models.Session
	if err := r.db.Where("user_id = ?", userID).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	// A stale row counts as absent even before the janitor removes it.
	if r.ttl > 0 && time.Since(session.UpdatedAt) > r.ttl {
		return nil, models.ErrSessionNotFound
	}

	return &session, nil
}

// Create implements SessionRepository.
func (r *sessionRepository) Create(userID, chatID int64, languageCode string) *models.Session {
	now := time.Now()
	return &models.Session{
		UserID:       userID,
		ChatID:       chatID,
		State:        models.StateIdle,
		LanguageCode: languageCode,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Save implements SessionRepository.
func (r *sessionRepository) Save(session *models.Session) error {
	session.UpdatedAt = time.Now()

	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(session).Error
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// SetState implements SessionRepository.
func (r *sessionRepository) SetState(userID int64, state models.SessionState) error {
	result := r.db.Model(&models.Session{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"state":      state,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update session state: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return models.ErrSessionNotFound
	}

	return nil
}

// AttachResume implements SessionRepository.
func (r *sessionRepository) AttachResume(userID int64, doc *models.Document) error {
	return r.attachDocument(userID, "resume_json", doc)
}

// AttachJobPost implements SessionRepository.
func (r *sessionRepository) AttachJobPost(userID int64, doc *models.Document) error {
	return r.attachDocument(userID, "job_post_json", doc)
}

func (r *sessionRepository) attachDocument(userID int64, column string, doc *models.Document) error {
	encoded, err := encodeDocumentColumn(doc)
	if err != nil {
		return err
	}

	result := r.db.Model(&models.Session{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			column:       encoded,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to attach document: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return models.ErrSessionNotFound
	}

	return nil
}

// Complete implements SessionRepository.
func (r *sessionRepository) Complete(userID int64) error {
	if err := r.db.Where("user_id = ?", userID).Delete(&models.Session{}).Error; err != nil {
		return fmt.Errorf("failed to complete session: %w", err)
	}
	return nil
}

// DeleteExpired implements SessionRepository.
func (r *sessionRepository) DeleteExpired(olderThan time.Time) (int64, error) {
	result := r.db.Where("updated_at < ?", olderThan).Delete(&models.Session{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func encodeDocumentColumn(doc *models.Document) (*string, error) {
	if doc == nil {
		return nil, nil
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}

	encoded := string(raw)
	return &encoded, nil
}
