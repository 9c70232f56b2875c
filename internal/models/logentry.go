package models

import (
	"time"

	"github.com/google/uuid"
)

type LogLevel string

const (
	LevelDebug LogLevel = "DEBUG"
	LevelInfo  LogLevel = "INFO"
	LevelWarn  LogLevel = "WARN"
	LevelError LogLevel = "ERROR"
)

type LogEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Level     LogLevel  `gorm:"type:text;not null;index" json:"level"`
	EventName string    `gorm:"type:text;not null" json:"event_name"`
	Message   string    `gorm:"type:text" json:"message"`
	Metadata  *string   `gorm:"type:text" json:"metadata,omitempty"`
	UserID    *int64    `json:"user_id,omitempty"`
	ChatID    *int64    `json:"chat_id,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (LogEntry) TableName() string {
	return "log_entries"
}
