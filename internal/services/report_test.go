package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-match-bot/internal/models"
)

func sampleResult() *models.AnalysisResult {
	return &models.AnalysisResult{
		OverallScore: 72,
		Summary:      "Solid match overall.",
		Headline: models.HeadlineReport{
			MatchScore:  65,
			Explanation: "Titles are close.",
			Problems:    []string{"current title differs"},
		},
		Skills: models.SkillsReport{
			MatchScore:    80,
			MatchedSkills: []string{"Go", "Postgres"},
			MissingSkills: []string{"Kubernetes"},
			Explanation:   "Strong overlap.",
		},
		Experience: models.ExperienceReport{
			MatchScore:   70,
			SeniorityFit: "match",
			Explanation:  "Seniority lines up.",
		},
		JobConditions: models.JobConditionsReport{
			MatchScore:    75,
			LocationScore: 80,
			ScheduleScore: 70,
			SalaryScore:   50,
			Explanation:   "Remote friendly.",
		},
	}
}

func TestRenderReportStructure(t *testing.T) {
	messages := renderReport(sampleResult())
	require.Len(t, messages, 5)

	assert.Contains(t, messages[0], "🟡 Overall match: 72/100")
	assert.Contains(t, messages[0], "Solid match overall.")

	assert.True(t, strings.HasPrefix(messages[1], "🏷 Job title fit: 65/100"))
	assert.Contains(t, messages[1], "Problems:")
	assert.Contains(t, messages[1], "• current title differs")

	assert.True(t, strings.HasPrefix(messages[2], "🛠 Skills overlap: 80/100"))
	assert.Contains(t, messages[2], "Matched skills:")
	assert.Contains(t, messages[2], "• Go")
	assert.Contains(t, messages[2], "Missing skills:")
	assert.Contains(t, messages[2], "• Kubernetes")

	assert.True(t, strings.HasPrefix(messages[3], "📈 Experience fit: 70/100"))
	assert.Contains(t, messages[3], "matches the posting's level")

	assert.True(t, strings.HasPrefix(messages[4], "📍 Conditions fit: 75/100"))
	assert.Contains(t, messages[4], "Location: 80/100")
	assert.Contains(t, messages[4], "Schedule: 70/100")
	assert.Contains(t, messages[4], "Salary: 50/100")
}

func TestRenderReportSkipsEmptyLists(t *testing.T) {
	result := sampleResult()
	result.Headline.Problems = nil

	messages := renderReport(result)
	assert.NotContains(t, messages[1], "Problems:")
	assert.NotContains(t, messages[1], "Recommendations:")
}

func TestScoreEmoji(t *testing.T) {
	assert.Equal(t, "🟢", scoreEmoji(100))
	assert.Equal(t, "🟢", scoreEmoji(75))
	assert.Equal(t, "🟡", scoreEmoji(74))
	assert.Equal(t, "🟡", scoreEmoji(50))
	assert.Equal(t, "🔴", scoreEmoji(49))
	assert.Equal(t, "🔴", scoreEmoji(0))
}

func TestSeniorityLabel(t *testing.T) {
	assert.Equal(t, "below the posting's level", seniorityLabel("below"))
	assert.Equal(t, "above the posting's level", seniorityLabel("Above"))
	assert.Equal(t, "matches the posting's level", seniorityLabel("match"))
	assert.Equal(t, "junior-to-mid", seniorityLabel("junior-to-mid"))
}
