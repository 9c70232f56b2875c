package services

import (
	"bytes"
	"log"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractionPlaceholder stands in for unreadable binary payloads. It must
// stay shorter than the minimum document length; the normalizer then rejects
// the submission with a user-correctable message instead of an internal error.
const extractionPlaceholder = "[could not read the document content]"

const mediaTypePDF = "application/pdf"

// ExtractorService turns a binary payload into plain text. Best-effort: it
// never returns an error, only a placeholder when the payload is unreadable.
type ExtractorService interface {
	ExtractText(data []byte, mediaType string) string
}

type extractorService struct{}

func NewExtractorService() ExtractorService {
	return &extractorService{}
}

// ExtractText implements ExtractorService.
func (e *extractorService) ExtractText(data []byte, mediaType string) string {
	switch normalizeMediaType(mediaType) {
	case mediaTypePDF:
		return e.extractPDF(data)
	default:
		// Anything else in the allow-list is already plain text.
		return string(data)
	}
}

func (e *extractorService) extractPDF(data []byte) string {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		log.Printf("⚠️  Failed to open PDF: %v\n", err)
		return extractionPlaceholder
	}

	var textBuilder strings.Builder
	totalPage := reader.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip unreadable pages, keep the rest
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	text := textBuilder.String()
	if strings.TrimSpace(text) == "" {
		return extractionPlaceholder
	}

	return text
}

// normalizeMediaType strips parameters like "; charset=utf-8" and lowercases
// the type for allow-list comparison.
func normalizeMediaType(mediaType string) string {
	if idx := strings.Index(mediaType, ";"); idx != -1 {
		mediaType = mediaType[:idx]
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

// CleanText collapses blank lines and per-line whitespace so stored documents
// and prompt payloads stay compact.
func CleanText(text string) string {
	text = strings.TrimSpace(text)

	lines := strings.Split(text, "\n")
	var cleanedLines []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}

	return strings.Join(cleanedLines, "\n")
}

// PageCount reports how many pages a PDF payload has, zero when unreadable.
// Used by the rubric ingestion script for progress logging.
func PageCount(data []byte) int {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0
	}
	return reader.NumPage()
}
