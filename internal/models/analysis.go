package models

import "fmt"

type DimensionKind string

const (
	DimensionHeadline      DimensionKind = "headline"
	DimensionSkills        DimensionKind = "skills"
	DimensionExperience    DimensionKind = "experience"
	DimensionJobConditions DimensionKind = "job_conditions"
)

// AnalysisDimensions is the fixed set of comparison facets, in report order.
var AnalysisDimensions = []DimensionKind{
	DimensionHeadline,
	DimensionSkills,
	DimensionExperience,
	DimensionJobConditions,
}

type HeadlineReport struct {
	MatchScore      int      `json:"match_score"`
	Explanation     string   `json:"explanation"`
	Problems        []string `json:"problems"`
	Recommendations []string `json:"recommendations"`
}

type SkillsReport struct {
	MatchScore      int      `json:"match_score"`
	MatchedSkills   []string `json:"matched_skills"`
	MissingSkills   []string `json:"missing_skills"`
	Explanation     string   `json:"explanation"`
	Problems        []string `json:"problems"`
	Recommendations []string `json:"recommendations"`
}

type ExperienceReport struct {
	MatchScore      int      `json:"match_score"`
	SeniorityFit    string   `json:"seniority_fit"`
	Explanation     string   `json:"explanation"`
	Problems        []string `json:"problems"`
	Recommendations []string `json:"recommendations"`
}

type JobConditionsReport struct {
	MatchScore      int      `json:"match_score"`
	LocationScore   int      `json:"location_score"`
	ScheduleScore   int      `json:"schedule_score"`
	SalaryScore     int      `json:"salary_score"`
	Explanation     string   `json:"explanation"`
	Problems        []string `json:"problems"`
	Recommendations []string `json:"recommendations"`
}

// OverallReport is the synthesis round trip's payload: composite score and
// summary come straight from the reasoning backend, no local formula.
type OverallReport struct {
	OverallScore int    `json:"overall_score"`
	Summary      string `json:"summary"`
}

// AnalysisResult is the orchestrator's output. It lives only for the duration
// of the response it is rendered into and is never persisted.
type AnalysisResult struct {
	OverallScore  int
	Headline      HeadlineReport
	Skills        SkillsReport
	Experience    ExperienceReport
	JobConditions JobConditionsReport
	Summary       string
}

func scoreInRange(score int) bool {
	return score >= 0 && score <= 100
}

func (r *HeadlineReport) Validate() error {
	if !scoreInRange(r.MatchScore) {
		return fmt.Errorf("headline match_score %d out of range", r.MatchScore)
	}
	if r.Explanation == "" {
		return fmt.Errorf("headline explanation is empty")
	}
	return nil
}

func (r *SkillsReport) Validate() error {
	if !scoreInRange(r.MatchScore) {
		return fmt.Errorf("skills match_score %d out of range", r.MatchScore)
	}
	if r.Explanation == "" {
		return fmt.Errorf("skills explanation is empty")
	}
	return nil
}

func (r *ExperienceReport) Validate() error {
	if !scoreInRange(r.MatchScore) {
		return fmt.Errorf("experience match_score %d out of range", r.MatchScore)
	}
	if r.Explanation == "" {
		return fmt.Errorf("experience explanation is empty")
	}
	return nil
}

func (r *JobConditionsReport) Validate() error {
	if !scoreInRange(r.MatchScore) {
		return fmt.Errorf("job_conditions match_score %d out of range", r.MatchScore)
	}
	for name, score := range map[string]int{
		"location_score": r.LocationScore,
		"schedule_score": r.ScheduleScore,
		"salary_score":   r.SalaryScore,
	} {
		if !scoreInRange(score) {
			return fmt.Errorf("job_conditions %s %d out of range", name, score)
		}
	}
	if r.Explanation == "" {
		return fmt.Errorf("job_conditions explanation is empty")
	}
	return nil
}

func (r *OverallReport) Validate() error {
	if !scoreInRange(r.OverallScore) {
		return fmt.Errorf("overall_score %d out of range", r.OverallScore)
	}
	if r.Summary == "" {
		return fmt.Errorf("summary is empty")
	}
	return nil
}

// RequiredKeys lists the payload fields the reasoning backend must supply;
// decoding rejects payloads that omit any of them. An absent score would
// otherwise decode as 0, which Validate cannot tell apart from a real 0.
func (r *HeadlineReport) RequiredKeys() []string {
	return []string{"match_score", "explanation"}
}

func (r *SkillsReport) RequiredKeys() []string {
	return []string{"match_score", "explanation"}
}

func (r *ExperienceReport) RequiredKeys() []string {
	return []string{"match_score", "explanation"}
}

func (r *JobConditionsReport) RequiredKeys() []string {
	return []string{"match_score", "location_score", "schedule_score", "salary_score", "explanation"}
}

func (r *OverallReport) RequiredKeys() []string {
	return []string{"overall_score", "summary"}
}
