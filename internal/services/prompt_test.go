package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-match-bot/internal/models"
)

func TestDimensionPromptsEmbedBothDocuments(t *testing.T) {
	pb := NewPromptBuilder()

	seen := make(map[string]bool)
	for _, dimension := range models.AnalysisDimensions {
		prompt := pb.BuildDimensionPrompt(dimension, "RESUME-BODY", "JOB-BODY", "")

		assert.Contains(t, prompt, "RESUME-BODY")
		assert.Contains(t, prompt, "JOB-BODY")
		assert.Contains(t, prompt, "match_score")
		assert.Contains(t, prompt, "No scoring guidelines retrieved")

		seen[prompt] = true
	}

	// Four distinct prompts, one per dimension.
	assert.Len(t, seen, 4)
}

func TestDimensionPromptUsesRubricContext(t *testing.T) {
	pb := NewPromptBuilder()

	prompt := pb.BuildDimensionPrompt(models.DimensionSkills, "r", "j", "GUIDELINE-TEXT")
	assert.Contains(t, prompt, "GUIDELINE-TEXT")
	assert.NotContains(t, prompt, "No scoring guidelines retrieved")
}

func TestSynthesisPromptCarriesDimensionResults(t *testing.T) {
	pb := NewPromptBuilder()
	prompt := pb.BuildSynthesisPrompt(sampleResult())

	assert.Contains(t, prompt, "score 65/100")
	assert.Contains(t, prompt, "Titles are close.")
	assert.Contains(t, prompt, "score 80/100")
	assert.Contains(t, prompt, "score 70/100")
	assert.Contains(t, prompt, "score 75/100")
	assert.Contains(t, prompt, "overall_score")
}

func TestRetrievalQueriesAreDistinct(t *testing.T) {
	pb := NewPromptBuilder()

	seen := make(map[string]bool)
	for _, dimension := range models.AnalysisDimensions {
		query := pb.BuildRetrievalQuery(dimension)
		require.NotEmpty(t, query)
		seen[query] = true
	}
	assert.Len(t, seen, 4)
}

func TestFormatRubricContext(t *testing.T) {
	assert.Empty(t, FormatRubricContext(nil))

	formatted := FormatRubricContext([]RubricChunk{
		{Score: 0.9, Text: "  First guideline.  "},
		{Score: 0.75, Text: "Second guideline."},
	})

	assert.Contains(t, formatted, "Guideline 1 (score 0.90)")
	assert.Contains(t, formatted, "First guideline.")
	assert.Contains(t, formatted, "Guideline 2 (score 0.75)")
	assert.Contains(t, formatted, "Second guideline.")
}
