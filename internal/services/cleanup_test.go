package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-match-bot/internal/models"
	"alfredoptarigan/resume-match-bot/internal/repositories"
)

func TestCleanupSweep(t *testing.T) {
	db := newServiceTestDB(t)
	sessionRepo := repositories.NewSessionRepository(db, time.Hour)
	windowRepo := repositories.NewRateWindowRepository(db)
	logRepo := repositories.NewLogRepository(db)

	now := time.Now()

	// One stale and one live session.
	require.NoError(t, sessionRepo.Save(sessionRepo.Create(1, 101, "")))
	require.NoError(t, db.Model(&models.Session{}).
		Where("user_id = ?", int64(1)).
		UpdateColumn("updated_at", now.Add(-2*time.Hour)).Error)
	require.NoError(t, sessionRepo.Save(sessionRepo.Create(2, 102, "")))

	// One spent and one live rate window.
	spent := &models.RateWindow{UserID: 1, ExpiresAt: now.Add(-time.Minute)}
	spent.SetTimes([]time.Time{now.Add(-2 * time.Minute)})
	require.NoError(t, windowRepo.Save(spent))
	live := &models.RateWindow{UserID: 2, ExpiresAt: now.Add(time.Minute)}
	live.SetTimes([]time.Time{now})
	require.NoError(t, windowRepo.Save(live))

	// One log entry past retention, one recent.
	require.NoError(t, logRepo.Append(&models.LogEntry{
		ID: uuid.New(), Level: models.LevelInfo, EventName: "ancient", CreatedAt: now.Add(-80 * time.Hour),
	}))
	require.NoError(t, logRepo.Append(&models.LogEntry{
		ID: uuid.New(), Level: models.LevelInfo, EventName: "recent", CreatedAt: now.Add(-time.Minute),
	}))

	svc := NewCleanupService(sessionRepo, windowRepo, logRepo, time.Hour, time.Hour, 72*time.Hour)
	svc.(*cleanupService).sweep()

	_, err := sessionRepo.Get(1)
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
	_, err = sessionRepo.Get(2)
	assert.NoError(t, err)

	gone, err := windowRepo.Get(1)
	require.NoError(t, err)
	assert.Nil(t, gone)
	kept, err := windowRepo.Get(2)
	require.NoError(t, err)
	assert.NotNil(t, kept)

	entries, err := logRepo.QueryRecent(10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "recent", entries[0].EventName)
}

func TestCleanupStartStop(t *testing.T) {
	db := newServiceTestDB(t)
	svc := NewCleanupService(
		repositories.NewSessionRepository(db, time.Hour),
		repositories.NewRateWindowRepository(db),
		repositories.NewLogRepository(db),
		time.Hour, time.Hour, 72*time.Hour,
	)

	svc.Start()
	svc.Stop()
}
