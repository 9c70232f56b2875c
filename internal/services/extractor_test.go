package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractTextPlainPassThrough(t *testing.T) {
	extractor := NewExtractorService()

	assert.Equal(t, "hello resume", extractor.ExtractText([]byte("hello resume"), "text/plain"))
	assert.Equal(t, "hello resume", extractor.ExtractText([]byte("hello resume"), "text/plain; charset=utf-8"))
}

func TestExtractTextUnreadablePDF(t *testing.T) {
	extractor := NewExtractorService()

	got := extractor.ExtractText([]byte("definitely not a pdf"), "application/pdf")
	assert.Equal(t, extractionPlaceholder, got)

	// Media-type parameters do not change the routing.
	got = extractor.ExtractText([]byte("still not a pdf"), "Application/PDF; name=resume.pdf")
	assert.Equal(t, extractionPlaceholder, got)
}

func TestNormalizeMediaType(t *testing.T) {
	assert.Equal(t, "application/pdf", normalizeMediaType("Application/PDF; name=cv.pdf"))
	assert.Equal(t, "text/plain", normalizeMediaType("  TEXT/PLAIN  "))
	assert.Equal(t, "text/plain", normalizeMediaType("text/plain; charset=utf-8"))
	assert.Equal(t, "", normalizeMediaType(""))
}

func TestPageCountUnreadable(t *testing.T) {
	assert.Zero(t, PageCount([]byte("not a pdf")))
}
