package models

import (
	"strings"
	"time"
	"unicode/utf8"
)

type SourceKind string

const (
	SourceText   SourceKind = "text"
	SourceBinary SourceKind = "binary"
)

type Document struct {
	Text           string     `json:"text"`
	WordCount      int        `json:"word_count"`
	CharacterCount int        `json:"character_count"`
	SourceKind     SourceKind `json:"source_kind"`
	ProcessedAt    time.Time  `json:"processed_at"`
}

// NewDocument derives word and character counts from the normalized text.
// Character count is in runes, not bytes.
func NewDocument(text string, kind SourceKind) *Document {
	return &Document{
		Text:           text,
		WordCount:      len(strings.Fields(text)),
		CharacterCount: utf8.RuneCountInString(text),
		SourceKind:     kind,
		ProcessedAt:    time.Now(),
	}
}
