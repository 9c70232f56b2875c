package services

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/resume-match-bot/internal/models"
	"alfredoptarigan/resume-match-bot/internal/repositories"
)

// LogService is the single diagnostics path for the conversation core: every
// entry is persisted for the admin log commands and echoed to the console.
// Appending is best-effort; a failing log sink never fails the caller.
type LogService interface {
	Append(level models.LogLevel, eventName, message string, metadata map[string]interface{}, userID, chatID int64)
	QueryRecent(limit int) ([]models.LogEntry, error)
	Summarize(hours int) (string, error)
}

type logService struct {
	logRepo repositories.LogRepository
}

func NewLogService(logRepo repositories.LogRepository) LogService {
	return &logService{logRepo: logRepo}
}

// Append implements LogService.
func (l *logService) Append(level models.LogLevel, eventName, message string, metadata map[string]interface{}, userID, chatID int64) {
	log.Printf("%s [%s] %s: %s\n", levelEmoji(level), eventName, userTag(userID), message)

	entry := &models.LogEntry{
		ID:        uuid.New(),
		Level:     level,
		EventName: eventName,
		Message:   message,
		CreatedAt: time.Now(),
	}

	if userID != 0 {
		entry.UserID = &userID
	}
	if chatID != 0 {
		entry.ChatID = &chatID
	}

	if len(metadata) > 0 {
		if raw, err := json.Marshal(metadata); err == nil {
			encoded := string(raw)
			entry.Metadata = &encoded
		}
	}

	if err := l.logRepo.Append(entry); err != nil {
		log.Printf("⚠️  Failed to persist log entry: %v\n", err)
	}
}

// QueryRecent implements LogService.
func (l *logService) QueryRecent(limit int) ([]models.LogEntry, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > 50 {
		limit = 50
	}
	return l.logRepo.QueryRecent(limit)
}

// Summarize implements LogService.
func (l *logService) Summarize(hours int) (string, error) {
	if hours <= 0 {
		hours = 24
	}
	since := time.Now().Add(-time.Duration(hours) * time.Hour)

	counts, err := l.logRepo.CountByLevelSince(since)
	if err != nil {
		return "", fmt.Errorf("failed to summarize log levels: %w", err)
	}

	topEvents, err := l.logRepo.TopEventsSince(since, 5)
	if err != nil {
		return "", fmt.Errorf("failed to summarize log events: %w", err)
	}

	recentErrors, err := l.logRepo.RecentErrorsSince(since, 3)
	if err != nil {
		return "", fmt.Errorf("failed to fetch recent errors: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 Log summary, last %dh\n\n", hours)

	var total int64
	for _, level := range []models.LogLevel{models.LevelError, models.LevelWarn, models.LevelInfo, models.LevelDebug} {
		if n := counts[level]; n > 0 {
			fmt.Fprintf(&b, "%s %s: %d\n", levelEmoji(level), level, n)
			total += n
		}
	}
	if total == 0 {
		b.WriteString("No entries in this window.\n")
		return b.String(), nil
	}

	if len(topEvents) > 0 {
		b.WriteString("\nTop events:\n")
		for _, event := range topEvents {
			fmt.Fprintf(&b, "• %s: %d\n", event.EventName, event.Count)
		}
	}

	if len(recentErrors) > 0 {
		b.WriteString("\nLatest warnings/errors:\n")
		for _, entry := range recentErrors {
			fmt.Fprintf(&b, "• [%s] %s %s: %s\n",
				entry.Level, entry.CreatedAt.Format("02 Jan 15:04"), entry.EventName, entry.Message)
		}
	}

	return b.String(), nil
}

func levelEmoji(level models.LogLevel) string {
	switch level {
	case models.LevelError:
		return "❌"
	case models.LevelWarn:
		return "⚠️"
	case models.LevelDebug:
		return "🔍"
	default:
		return "📋"
	}
}

func userTag(userID int64) string {
	if userID == 0 {
		return "system"
	}
	return fmt.Sprintf("user %d", userID)
}
