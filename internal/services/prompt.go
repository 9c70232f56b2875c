package services

import (
	"fmt"
	"strings"

	"alfredoptarigan/resume-match-bot/internal/models"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildDimensionPrompt creates the prompt for one analysis dimension.
func (pb *PromptBuilder) BuildDimensionPrompt(dimension models.DimensionKind, resumeText, jobText, rubricContext string) string {
	if rubricContext == "" {
		rubricContext = "No scoring guidelines retrieved. Use balanced, practical judgement."
	}

	switch dimension {
	case models.DimensionHeadline:
		return pb.buildHeadlinePrompt(resumeText, jobText, rubricContext)
	case models.DimensionSkills:
		return pb.buildSkillsPrompt(resumeText, jobText, rubricContext)
	case models.DimensionExperience:
		return pb.buildExperiencePrompt(resumeText, jobText, rubricContext)
	case models.DimensionJobConditions:
		return pb.buildJobConditionsPrompt(resumeText, jobText, rubricContext)
	default:
		return ""
	}
}

func (pb *PromptBuilder) buildHeadlinePrompt(resumeText, jobText, rubricContext string) string {
	return fmt.Sprintf(`You are an expert recruiter comparing a candidate's resume against a job posting.

JOB POSTING:
%s

CANDIDATE RESUME:
%s

SCORING GUIDELINES:
%s

Evaluate ONLY the title/headline fit: how well the candidate's current role, desired position and professional headline match the posted position.

Return your response in the following JSON format:
{
  "match_score": <integer 0-100>,
  "explanation": "<2-4 sentences explaining the score>",
  "problems": ["<specific mismatch>", ...],
  "recommendations": ["<specific, actionable suggestion for the candidate>", ...]
}

Be objective. Cite concrete wording from both documents.`, jobText, resumeText, rubricContext)
}

func (pb *PromptBuilder) buildSkillsPrompt(resumeText, jobText, rubricContext string) string {
	return fmt.Sprintf(`You are an expert technical recruiter comparing a candidate's resume against a job posting.

JOB POSTING:
%s

CANDIDATE RESUME:
%s

SCORING GUIDELINES:
%s

Evaluate ONLY the skills overlap: required and nice-to-have skills from the posting versus skills evidenced in the resume.

Return your response in the following JSON format:
{
  "match_score": <integer 0-100>,
  "matched_skills": ["<skill present in both>", ...],
  "missing_skills": ["<required skill absent from the resume>", ...],
  "explanation": "<2-4 sentences explaining the score>",
  "problems": ["<specific gap>", ...],
  "recommendations": ["<specific, actionable suggestion>", ...]
}

Only list a skill as matched when the resume gives real evidence for it.`, jobText, resumeText, rubricContext)
}

func (pb *PromptBuilder) buildExperiencePrompt(resumeText, jobText, rubricContext string) string {
	return fmt.Sprintf(`You are an expert hiring manager comparing a candidate's resume against a job posting.

JOB POSTING:
%s

CANDIDATE RESUME:
%s

SCORING GUIDELINES:
%s

Evaluate ONLY the experience and seniority fit: years of relevant experience, project scale and complexity, and seniority level versus what the posting asks for.

Return your response in the following JSON format:
{
  "match_score": <integer 0-100>,
  "seniority_fit": "<one of: below, match, above>",
  "explanation": "<2-4 sentences explaining the score>",
  "problems": ["<specific shortfall or overqualification>", ...],
  "recommendations": ["<specific, actionable suggestion>", ...]
}

Judge by evidence in the resume, not by job titles alone.`, jobText, resumeText, rubricContext)
}

func (pb *PromptBuilder) buildJobConditionsPrompt(resumeText, jobText, rubricContext string) string {
	return fmt.Sprintf(`You are an expert recruiter comparing a candidate's resume against a job posting.

JOB POSTING:
%s

CANDIDATE RESUME:
%s

SCORING GUIDELINES:
%s

Evaluate ONLY the logistics and conditions fit: location and relocation, work schedule and format (office/hybrid/remote), and salary expectations where stated.

Return your response in the following JSON format:
{
  "match_score": <integer 0-100>,
  "location_score": <integer 0-100>,
  "schedule_score": <integer 0-100>,
  "salary_score": <integer 0-100>,
  "explanation": "<2-4 sentences explaining the scores>",
  "problems": ["<specific conflict>", ...],
  "recommendations": ["<specific, actionable suggestion>", ...]
}

When a document is silent on a condition, score that condition 50 and say so in the explanation.`, jobText, resumeText, rubricContext)
}

// BuildSynthesisPrompt hands the four validated dimension reports back to the
// model for the composite verdict. The overall score comes from this round
// trip; no local weighting formula is applied on top.
func (pb *PromptBuilder) BuildSynthesisPrompt(result *models.AnalysisResult) string {
	return fmt.Sprintf(`You are an expert recruiter delivering a final verdict on how well a candidate matches a job posting.

Four independent analyses were already performed:

TITLE/HEADLINE FIT (score %d/100):
%s

SKILLS OVERLAP (score %d/100):
%s

EXPERIENCE AND SENIORITY (score %d/100):
%s

CONDITIONS AND LOGISTICS (score %d/100):
%s

Weigh the four analyses and produce the final composite verdict.

Return your response in the following JSON format:
{
  "overall_score": <integer 0-100>,
  "summary": "<3-5 sentences: overall fit, the biggest strengths, the biggest risks, and a clear recommendation>"
}

Be direct and actionable. Do not restate every detail, synthesize.`,
		result.Headline.MatchScore, result.Headline.Explanation,
		result.Skills.MatchScore, result.Skills.Explanation,
		result.Experience.MatchScore, result.Experience.Explanation,
		result.JobConditions.MatchScore, result.JobConditions.Explanation)
}

// BuildRetrievalQuery creates the rubric-retrieval query for one dimension.
func (pb *PromptBuilder) BuildRetrievalQuery(dimension models.DimensionKind) string {
	switch dimension {
	case models.DimensionHeadline:
		return "Guidelines for scoring job title and professional headline match"
	case models.DimensionSkills:
		return "Guidelines for scoring required and optional skills overlap"
	case models.DimensionExperience:
		return "Guidelines for scoring years of experience and seniority fit"
	case models.DimensionJobConditions:
		return "Guidelines for scoring location, schedule and salary compatibility"
	default:
		return string(dimension)
	}
}

// FormatRubricContext flattens retrieved rubric chunks into a prompt section.
func FormatRubricContext(chunks []RubricChunk) string {
	if len(chunks) == 0 {
		return ""
	}

	var parts []string
	for i, chunk := range chunks {
		parts = append(parts, fmt.Sprintf("--- Guideline %d (score %.2f) ---\n%s",
			i+1, chunk.Score, strings.TrimSpace(chunk.Text)))
	}

	return strings.Join(parts, "\n\n")
}
