package repositories

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"alfredoptarigan/resume-match-bot/internal/models"
)

// EventCount is one row of the per-event aggregation used by log summaries.
type EventCount struct {
	EventName string
	Count     int64
}

type LogRepository interface {
	Append(entry *models.LogEntry) error
	// QueryRecent returns up to limit entries, newest first.
	QueryRecent(limit int) ([]models.LogEntry, error)
	CountByLevelSince(since time.Time) (map[models.LogLevel]int64, error)
	TopEventsSince(since time.Time, limit int) ([]EventCount, error)
	RecentErrorsSince(since time.Time, limit int) ([]models.LogEntry, error)
	DeleteOlderThan(cutoff time.Time) (int64, error)
}

type logRepository struct {
	db *gorm.DB
}

func NewLogRepository(db *gorm.DB) LogRepository {
	return &logRepository{db: db}
}

// Append implements LogRepository.
func (r *logRepository) Append(entry *models.LogEntry) error {
	if err := r.db.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append log entry: %w", err)
	}
	return nil
}

// QueryRecent implements LogRepository.
func (r *logRepository) QueryRecent(limit int) ([]models.LogEntry, error) {
	var entries []models.LogEntry
	err := r.db.Order("created_at DESC").Limit(limit).Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query recent log entries: %w", err)
	}
	return entries, nil
}

// CountByLevelSince implements LogRepository.
func (r *logRepository) CountByLevelSince(since time.Time) (map[models.LogLevel]int64, error) {
	var rows []struct {
		Level models.LogLevel
		Count int64
	}

	err := r.db.Model(&models.LogEntry{}).
		Select("level, count(*) as count").
		Where("created_at >= ?", since).
		Group("level").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count log entries by level: %w", err)
	}

	counts := make(map[models.LogLevel]int64, len(rows))
	for _, row := range rows {
		counts[row.Level] = row.Count
	}
	return counts, nil
}

// TopEventsSince implements LogRepository.
func (r *logRepository) TopEventsSince(since time.Time, limit int) ([]EventCount, error) {
	var rows []EventCount
	err := r.db.Model(&models.LogEntry{}).
		Select("event_name, count(*) as count").
		Where("created_at >= ?", since).
		Group("event_name").
		Order("count DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate log events: %w", err)
	}
	return rows, nil
}

// RecentErrorsSince implements LogRepository.
func (r *logRepository) RecentErrorsSince(since time.Time, limit int) ([]models.LogEntry, error) {
	var entries []models.LogEntry
	err := r.db.Where("created_at >= ? AND level IN ?", since, []models.LogLevel{models.LevelWarn, models.LevelError}).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query recent errors: %w", err)
	}
	return entries, nil
}

// DeleteOlderThan implements LogRepository.
func (r *logRepository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result := r.db.Where("created_at < ?", cutoff).Delete(&models.LogEntry{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete old log entries: %w", result.Error)
	}
	return result.RowsAffected, nil
}
