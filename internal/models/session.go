package models

import (
	"encoding/json"
	"fmt"
	"time"
)

type SessionState string

const (
	StateIdle           SessionState = "idle"
	StateWaitingResume  SessionState = "waiting_resume"
	StateWaitingJobPost SessionState = "waiting_job_post"
	StateProcessing     SessionState = "processing"
)

// sessionTransitions lists every legal state change. Anything not in this
// table is rejected by the conversation service before it touches the store.
var sessionTransitions = map[SessionState][]SessionState{
	StateIdle:           {StateWaitingResume},
	StateWaitingResume:  {StateWaitingJobPost, StateIdle},
	StateWaitingJobPost: {StateProcessing, StateIdle},
	StateProcessing:     {StateIdle},
}

func (s SessionState) IsValid() bool {
	switch s {
	case StateIdle, StateWaitingResume, StateWaitingJobPost, StateProcessing:
		return true
	}
	return false
}

func (s SessionState) CanTransitionTo(next SessionState) bool {
	for _, allowed := range sessionTransitions[s] {
		if next == allowed {
			return true
		}
	}
	return false
}

type Session struct {
	UserID       int64        `gorm:"primaryKey" json:"user_id"`
	ChatID       int64        `gorm:"not null" json:"chat_id"`
	State        SessionState `gorm:"type:text;not null;default:'idle'" json:"state"`
	LanguageCode string       `gorm:"type:text" json:"language_code,omitempty"`
	ResumeJSON   *string      `gorm:"type:text" json:"-"`
	JobPostJSON  *string      `gorm:"type:text" json:"-"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

func (Session) TableName() string {
	return "sessions"
}

func (s *Session) HasResume() bool {
	return s.ResumeJSON != nil && *s.ResumeJSON != ""
}

func (s *Session) HasJobPost() bool {
	return s.JobPostJSON != nil && *s.JobPostJSON != ""
}

// Resume decodes the stored resume document, or returns nil when absent.
func (s *Session) Resume() (*Document, error) {
	return decodeDocument(s.ResumeJSON)
}

// JobPost decodes the stored job post document, or returns nil when absent.
func (s *Session) JobPost() (*Document, error) {
	return decodeDocument(s.JobPostJSON)
}

func (s *Session) SetResume(doc *Document) error {
	encoded, err := encodeDocument(doc)
	if err != nil {
		return err
	}
	s.ResumeJSON = encoded
	return nil
}

func (s *Session) SetJobPost(doc *Document) error {
	encoded, err := encodeDocument(doc)
	if err != nil {
		return err
	}
	s.JobPostJSON = encoded
	return nil
}

func decodeDocument(raw *string) (*Document, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}

	var doc Document
	if err := json.Unmarshal([]byte(*raw), &doc); err != nil {
		return nil, fmt.Errorf("failed to decode stored document: %w", err)
	}

	return &doc, nil
}

func encodeDocument(doc *Document) (*string, error) {
	if doc == nil {
		return nil, nil
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}

	encoded := string(data)
	return &encoded, nil
}
