package repositories

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"alfredoptarigan/resume-match-bot/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.Session{}, &models.RateWindow{}, &models.LogEntry{}))
	return db
}

func backdateSession(t *testing.T, db *gorm.DB, userID int64, to time.Time) {
	t.Helper()

	err := db.Model(&models.Session{}).
		Where("user_id = ?", userID).
		UpdateColumn("updated_at", to).Error
	require.NoError(t, err)
}

func TestSessionGetMissing(t *testing.T) {
	repo := NewSessionRepository(newTestDB(t), time.Hour)

	_, err := repo.Get(42)
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
}

func TestSessionSaveAndGet(t *testing.T) {
	repo := NewSessionRepository(newTestDB(t), time.Hour)

	session := repo.Create(42, 1042, "en")
	assert.Equal(t, models.StateIdle, session.State)

	// Create is in-memory only.
	_, err := repo.Get(42)
	require.ErrorIs(t, err, models.ErrSessionNotFound)

	require.NoError(t, repo.Save(session))

	got, err := repo.Get(42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.UserID)
	assert.Equal(t, int64(1042), got.ChatID)
	assert.Equal(t, "en", got.LanguageCode)
	assert.Equal(t, models.StateIdle, got.State)
	assert.False(t, got.HasResume())
	assert.False(t, got.HasJobPost())
}

func TestSessionSaveIsUpsert(t *testing.T) {
	db := newTestDB(t)
	repo := NewSessionRepository(db, time.Hour)

	session := repo.Create(42, 1042, "")
	require.NoError(t, repo.Save(session))

	session.State = models.StateWaitingResume
	require.NoError(t, repo.Save(session))

	var count int64
	require.NoError(t, db.Model(&models.Session{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	got, err := repo.Get(42)
	require.NoError(t, err)
	assert.Equal(t, models.StateWaitingResume, got.State)
}

func TestSessionSetState(t *testing.T) {
	repo := NewSessionRepository(newTestDB(t), time.Hour)

	assert.ErrorIs(t, repo.SetState(42, models.StateWaitingResume), models.ErrSessionNotFound)

	require.NoError(t, repo.Save(repo.Create(42, 1042, "")))
	require.NoError(t, repo.SetState(42, models.StateWaitingResume))

	got, err := repo.Get(42)
	require.NoError(t, err)
	assert.Equal(t, models.StateWaitingResume, got.State)
}

func TestSessionAttachDocuments(t *testing.T) {
	repo := NewSessionRepository(newTestDB(t), time.Hour)

	resume := models.NewDocument("ten years shipping Go services", models.SourceText)
	assert.ErrorIs(t, repo.AttachResume(42, resume), models.ErrSessionNotFound)

	require.NoError(t, repo.Save(repo.Create(42, 1042, "")))
	require.NoError(t, repo.AttachResume(42, resume))

	jobPost := models.NewDocument("looking for a senior backend engineer", models.SourceBinary)
	require.NoError(t, repo.AttachJobPost(42, jobPost))

	got, err := repo.Get(42)
	require.NoError(t, err)
	require.True(t, got.HasResume())
	require.True(t, got.HasJobPost())

	storedResume, err := got.Resume()
	require.NoError(t, err)
	assert.Equal(t, resume.Text, storedResume.Text)
	assert.Equal(t, resume.CharacterCount, storedResume.CharacterCount)
	assert.Equal(t, models.SourceText, storedResume.SourceKind)

	storedJobPost, err := got.JobPost()
	require.NoError(t, err)
	assert.Equal(t, jobPost.Text, storedJobPost.Text)
	assert.Equal(t, models.SourceBinary, storedJobPost.SourceKind)
}

func TestSessionStaleRowCountsAsMissing(t *testing.T) {
	db := newTestDB(t)
	repo := NewSessionRepository(db, time.Hour)

	require.NoError(t, repo.Save(repo.Create(42, 1042, "")))
	backdateSession(t, db, 42, time.Now().Add(-2*time.Hour))

	_, err := repo.Get(42)
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
}

func TestSessionComplete(t *testing.T) {
	repo := NewSessionRepository(newTestDB(t), time.Hour)

	require.NoError(t, repo.Save(repo.Create(42, 1042, "")))
	require.NoError(t, repo.Complete(42))

	_, err := repo.Get(42)
	assert.ErrorIs(t, err, models.ErrSessionNotFound)

	// Completing an absent session is not an error.
	assert.NoError(t, repo.Complete(42))
}

func TestSessionDeleteExpired(t *testing.T) {
	db := newTestDB(t)
	repo := NewSessionRepository(db, time.Hour)

	require.NoError(t, repo.Save(repo.Create(1, 101, "")))
	require.NoError(t, repo.Save(repo.Create(2, 102, "")))
	backdateSession(t, db, 1, time.Now().Add(-3*time.Hour))

	deleted, err := repo.DeleteExpired(time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = repo.Get(1)
	assert.ErrorIs(t, err, models.ErrSessionNotFound)

	_, err = repo.Get(2)
	assert.NoError(t, err)
}
