package services

import (
	"strings"
	"unicode/utf8"
)

// ChunkerService splits rubric text into overlapping chunks sized for
// embedding.
type ChunkerService interface {
	Chunk(text string, maxChunkSize, overlap int) []string
}

type chunkerService struct{}

func NewChunkerService() ChunkerService {
	return &chunkerService{}
}

// Chunk implements ChunkerService. Splits on paragraphs first and falls back
// to sentence boundaries when a single paragraph exceeds the chunk size.
func (c *chunkerService) Chunk(text string, maxChunkSize, overlap int) []string {
	if maxChunkSize <= 0 {
		maxChunkSize = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxChunkSize {
		overlap = maxChunkSize / 4
	}

	builder := chunkBuilder{maxSize: maxChunkSize, overlap: overlap}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if utf8.RuneCountInString(para) <= maxChunkSize {
			builder.add(para, "\n\n")
			continue
		}

		for _, sentence := range splitSentences(para) {
			builder.add(sentence, " ")
		}
	}

	return builder.finish()
}

type chunkBuilder struct {
	maxSize int
	overlap int
	chunks  []string
	current strings.Builder
}

func (b *chunkBuilder) add(piece, separator string) {
	if b.current.Len() > 0 && b.current.Len()+len(separator)+len(piece) > b.maxSize {
		b.flush()
	}

	if b.current.Len() > 0 {
		b.current.WriteString(separator)
	}
	b.current.WriteString(piece)
}

func (b *chunkBuilder) flush() {
	chunk := b.current.String()
	b.chunks = append(b.chunks, chunk)
	b.current.Reset()

	// Carry the tail of the previous chunk forward; boundary sentences stay
	// searchable in both chunks.
	if b.overlap > 0 {
		if tail := lastRunes(chunk, b.overlap); tail != "" {
			b.current.WriteString(tail)
		}
	}
}

func (b *chunkBuilder) finish() []string {
	if b.current.Len() > 0 {
		b.chunks = append(b.chunks, b.current.String())
	}
	return b.chunks
}

func splitSentences(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})

	var sentences []string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			sentences = append(sentences, part)
		}
	}
	return sentences
}

func lastRunes(text string, n int) string {
	if n <= 0 {
		return ""
	}

	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[len(runes)-n:])
}
