package services

import (
	"unicode/utf8"

	"alfredoptarigan/resume-match-bot/internal/models"
)

const mediaTypePlainText = "text/plain"

// DocumentInput is one user submission before normalization. Inline text
// leaves MediaType empty; file attachments always carry a media type and the
// declared size, with Data filled in only after download.
type DocumentInput struct {
	Text      string
	Data      []byte
	MediaType string
	FileSize  int64
	FileName  string
}

func (i DocumentInput) fromAttachment() bool {
	return i.MediaType != ""
}

// NormalizerService validates a submission and canonicalizes it into a
// bounded plain-text Document. The verdict is a pure function of the text,
// the declared media type and the declared size.
type NormalizerService interface {
	// CheckAttachment runs only the size and media-type checks, so a file can
	// be rejected before it is downloaded.
	CheckAttachment(input DocumentInput) error
	Normalize(input DocumentInput) (*models.Document, error)
}

type normalizerService struct {
	extractor   ExtractorService
	minChars    int
	maxChars    int
	maxFileSize int64
	allowPDF    bool
}

func NewNormalizerService(extractor ExtractorService, minChars, maxChars int, maxFileSize int64, allowPDF bool) NormalizerService {
	return &normalizerService{
		extractor:   extractor,
		minChars:    minChars,
		maxChars:    maxChars,
		maxFileSize: maxFileSize,
		allowPDF:    allowPDF,
	}
}

// CheckAttachment implements NormalizerService.
func (n *normalizerService) CheckAttachment(input DocumentInput) error {
	size := input.FileSize
	if size == 0 {
		size = int64(len(input.Text))
	}

	// Size first: an oversized file is rejected before any extraction attempt.
	if size > n.maxFileSize {
		return models.NewValidationError(
			"the file is too big: %.1f MB (the limit is %.1f MB)",
			float64(size)/(1024*1024), float64(n.maxFileSize)/(1024*1024),
		)
	}

	if !input.fromAttachment() {
		return nil
	}

	switch normalizeMediaType(input.MediaType) {
	case mediaTypePlainText:
		return nil
	case mediaTypePDF:
		if n.allowPDF {
			return nil
		}
		return models.NewValidationError("PDF files are not accepted here. Please send the document as plain text.")
	default:
		accepted := "plain text"
		if n.allowPDF {
			accepted = "plain text or a PDF file"
		}
		return models.NewValidationError("unsupported file type %q. Please send %s.", input.MediaType, accepted)
	}
}

// Normalize implements NormalizerService.
func (n *normalizerService) Normalize(input DocumentInput) (*models.Document, error) {
	if err := n.CheckAttachment(input); err != nil {
		return nil, err
	}

	text := input.Text
	kind := models.SourceText
	if input.fromAttachment() {
		kind = models.SourceBinary
		text = n.extractor.ExtractText(input.Data, input.MediaType)
	}

	text = CleanText(text)

	runeCount := utf8.RuneCountInString(text)
	if runeCount < n.minChars {
		return nil, models.NewValidationError(
			"the document looks empty or too short: %d characters (at least %d needed). Please send the full text.",
			runeCount, n.minChars,
		)
	}
	if runeCount > n.maxChars {
		return nil, models.NewValidationError(
			"the document is too long: %d characters (at most %d). Please shorten it and resend.",
			runeCount, n.maxChars,
		)
	}

	return models.NewDocument(text, kind), nil
}
