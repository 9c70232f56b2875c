package services

import (
	"fmt"
	"strings"

	"alfredoptarigan/resume-match-bot/internal/models"
)

// renderReport formats the analysis into one chat message per dimension plus
// a leading overall verdict, keeping each message under the transport limit.
func renderReport(result *models.AnalysisResult) []string {
	return []string{
		renderOverall(result),
		renderHeadline(&result.Headline),
		renderSkills(&result.Skills),
		renderExperience(&result.Experience),
		renderJobConditions(&result.JobConditions),
	}
}

func renderOverall(result *models.AnalysisResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s Overall match: %d/100\n\n", scoreEmoji(result.OverallScore), result.OverallScore)
	b.WriteString(result.Summary)
	b.WriteString("\n\nBreakdown by dimension follows 👇")
	return b.String()
}

func renderHeadline(r *models.HeadlineReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🏷 Job title fit: %d/100\n\n%s", r.MatchScore, r.Explanation)
	appendList(&b, "Problems", r.Problems)
	appendList(&b, "Recommendations", r.Recommendations)
	return b.String()
}

func renderSkills(r *models.SkillsReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🛠 Skills overlap: %d/100\n\n%s", r.MatchScore, r.Explanation)
	appendList(&b, "Matched skills", r.MatchedSkills)
	appendList(&b, "Missing skills", r.MissingSkills)
	appendList(&b, "Problems", r.Problems)
	appendList(&b, "Recommendations", r.Recommendations)
	return b.String()
}

func renderExperience(r *models.ExperienceReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📈 Experience fit: %d/100\n\n%s", r.MatchScore, r.Explanation)
	if r.SeniorityFit != "" {
		fmt.Fprintf(&b, "\n\nSeniority: %s", seniorityLabel(r.SeniorityFit))
	}
	appendList(&b, "Problems", r.Problems)
	appendList(&b, "Recommendations", r.Recommendations)
	return b.String()
}

func renderJobConditions(r *models.JobConditionsReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📍 Conditions fit: %d/100\n\n%s", r.MatchScore, r.Explanation)
	fmt.Fprintf(&b, "\n\nLocation: %d/100\nSchedule: %d/100\nSalary: %d/100",
		r.LocationScore, r.ScheduleScore, r.SalaryScore)
	appendList(&b, "Problems", r.Problems)
	appendList(&b, "Recommendations", r.Recommendations)
	return b.String()
}

func appendList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}

	fmt.Fprintf(b, "\n\n%s:", title)
	for _, item := range items {
		fmt.Fprintf(b, "\n• %s", item)
	}
}

func scoreEmoji(score int) string {
	switch {
	case score >= 75:
		return "🟢"
	case score >= 50:
		return "🟡"
	default:
		return "🔴"
	}
}

func seniorityLabel(fit string) string {
	switch strings.ToLower(fit) {
	case "below":
		return "below the posting's level"
	case "above":
		return "above the posting's level"
	case "match":
		return "matches the posting's level"
	default:
		return fit
	}
}
