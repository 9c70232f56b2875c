package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"alfredoptarigan/resume-match-bot/internal/models"
	"alfredoptarigan/resume-match-bot/internal/repositories"
)

// OrchestratorService runs the full analysis for a session holding both
// documents: four independent dimension analyses, one synthesis round trip,
// report delivery, and session completion. The session never stays in
// processing, whatever the outcome.
type OrchestratorService interface {
	AnalyzeAndReport(ctx context.Context, session *models.Session) error
}

type orchestratorService struct {
	gemini        GeminiService
	qdrant        QdrantService // nil when rubric retrieval is not configured
	telegram      TelegramService
	sessionRepo   repositories.SessionRepository
	logService    LogService
	promptBuilder *PromptBuilder
	timeout       time.Duration
	maxRetries    int
}

func NewOrchestratorService(
	gemini GeminiService,
	qdrant QdrantService,
	telegram TelegramService,
	sessionRepo repositories.SessionRepository,
	logService LogService,
	timeout time.Duration,
	maxRetries int,
) OrchestratorService {
	return &orchestratorService{
		gemini:        gemini,
		qdrant:        qdrant,
		telegram:      telegram,
		sessionRepo:   sessionRepo,
		logService:    logService,
		promptBuilder: NewPromptBuilder(),
		timeout:       timeout,
		maxRetries:    maxRetries,
	}
}

// AnalyzeAndReport implements OrchestratorService.
func (o *orchestratorService) AnalyzeAndReport(ctx context.Context, session *models.Session) error {
	userID, chatID := session.UserID, session.ChatID

	defer func() {
		if err := o.sessionRepo.Complete(userID); err != nil {
			o.logService.Append(models.LevelError, "session_complete_failed", err.Error(), nil, userID, chatID)
		}
	}()

	resume, jobPost, err := sessionDocuments(session)
	if err != nil {
		o.logService.Append(models.LevelError, "analysis_precondition_failed", err.Error(), nil, userID, chatID)
		return o.telegram.SendMessage(ctx, chatID, msgAnalysisFailed, nil)
	}

	o.logService.Append(models.LevelInfo, "analysis_started",
		fmt.Sprintf("resume %d chars, job post %d chars", resume.CharacterCount, jobPost.CharacterCount),
		nil, userID, chatID)

	started := time.Now()

	// The whole run shares one deadline. The failure notice below is sent on
	// the parent context, which is still alive after a timeout.
	runCtx, cancel := context.WithTimeout(ctx, o.timeout)
	result, runErr := o.runAnalysis(runCtx, resume, jobPost, userID, chatID)
	cancel()

	if runErr != nil {
		o.logService.Append(models.LevelWarn, "analysis_failed", runErr.Error(),
			map[string]interface{}{"elapsed": time.Since(started).Round(time.Second).String()},
			userID, chatID)
		if sendErr := o.telegram.SendMessage(ctx, chatID, msgAnalysisFailed, nil); sendErr != nil {
			return fmt.Errorf("failed to deliver analysis failure notice: %w", sendErr)
		}
		return nil
	}

	if err := o.deliverReport(ctx, chatID, result); err != nil {
		o.logService.Append(models.LevelError, "report_delivery_failed", err.Error(), nil, userID, chatID)
		return fmt.Errorf("failed to deliver report: %w", err)
	}

	o.logService.Append(models.LevelInfo, "analysis_completed",
		fmt.Sprintf("overall score %d in %s", result.OverallScore, time.Since(started).Round(time.Second)),
		nil, userID, chatID)

	return nil
}

func (o *orchestratorService) runAnalysis(ctx context.Context, resume, jobPost *models.Document, userID, chatID int64) (*models.AnalysisResult, error) {
	rubrics := o.retrieveRubricContexts(ctx, userID, chatID)

	result := &models.AnalysisResult{}

	// The four dimensions are independent round trips and run concurrently;
	// the first malformed or failed one sinks the whole run.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return o.analyzeDimension(gctx, models.DimensionHeadline, resume.Text, jobPost.Text, rubrics[models.DimensionHeadline], &result.Headline)
	})
	g.Go(func() error {
		return o.analyzeDimension(gctx, models.DimensionSkills, resume.Text, jobPost.Text, rubrics[models.DimensionSkills], &result.Skills)
	})
	g.Go(func() error {
		return o.analyzeDimension(gctx, models.DimensionExperience, resume.Text, jobPost.Text, rubrics[models.DimensionExperience], &result.Experience)
	})
	g.Go(func() error {
		return o.analyzeDimension(gctx, models.DimensionJobConditions, resume.Text, jobPost.Text, rubrics[models.DimensionJobConditions], &result.JobConditions)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	overall, err := o.synthesize(ctx, result)
	if err != nil {
		return nil, err
	}

	result.OverallScore = overall.OverallScore
	result.Summary = overall.Summary

	return result, nil
}

// reportPayload is implemented by every report the reasoning backend fills.
type reportPayload interface {
	Validate() error
	RequiredKeys() []string
}

func (o *orchestratorService) analyzeDimension(ctx context.Context, dimension models.DimensionKind, resumeText, jobText, rubricContext string, target reportPayload) error {
	prompt := o.promptBuilder.BuildDimensionPrompt(dimension, resumeText, jobText, rubricContext)

	response, err := o.gemini.GenerateTextWithRetry(ctx, prompt, 0.3, o.maxRetries)
	if err != nil {
		return fmt.Errorf("%s analysis failed: %w", dimension, err)
	}

	if err := parseJSONResponse(response, target); err != nil {
		return fmt.Errorf("%s analysis returned malformed data: %w", dimension, err)
	}

	if err := target.Validate(); err != nil {
		return fmt.Errorf("%s analysis rejected: %w", dimension, err)
	}

	return nil
}

func (o *orchestratorService) synthesize(ctx context.Context, result *models.AnalysisResult) (*models.OverallReport, error) {
	prompt := o.promptBuilder.BuildSynthesisPrompt(result)

	response, err := o.gemini.GenerateTextWithRetry(ctx, prompt, 0.5, o.maxRetries)
	if err != nil {
		return nil, fmt.Errorf("synthesis failed: %w", err)
	}

	var overall models.OverallReport
	if err := parseJSONResponse(response, &overall); err != nil {
		return nil, fmt.Errorf("synthesis returned malformed data: %w", err)
	}

	if err := overall.Validate(); err != nil {
		return nil, fmt.Errorf("synthesis rejected: %w", err)
	}

	return &overall, nil
}

// retrieveRubricContexts fetches scoring-guideline snippets per dimension.
// Best-effort: any failure degrades that dimension to an ungrounded prompt.
func (o *orchestratorService) retrieveRubricContexts(ctx context.Context, userID, chatID int64) map[models.DimensionKind]string {
	if o.qdrant == nil {
		return nil
	}

	contexts := make(map[models.DimensionKind]string, len(models.AnalysisDimensions))
	for _, dimension := range models.AnalysisDimensions {
		query := o.promptBuilder.BuildRetrievalQuery(dimension)

		embedding, err := o.gemini.GenerateEmbedding(ctx, query)
		if err != nil {
			o.logService.Append(models.LevelWarn, "rubric_retrieval_failed",
				fmt.Sprintf("%s: %v", dimension, err), nil, userID, chatID)
			continue
		}

		chunks, err := o.qdrant.SearchSimilar(ctx, embedding, string(dimension), 3)
		if err != nil {
			o.logService.Append(models.LevelWarn, "rubric_retrieval_failed",
				fmt.Sprintf("%s: %v", dimension, err), nil, userID, chatID)
			continue
		}

		contexts[dimension] = FormatRubricContext(chunks)
	}

	return contexts
}

func (o *orchestratorService) deliverReport(ctx context.Context, chatID int64, result *models.AnalysisResult) error {
	for _, message := range renderReport(result) {
		if err := o.telegram.SendMessage(ctx, chatID, message, nil); err != nil {
			return err
		}
	}
	return nil
}

func sessionDocuments(session *models.Session) (*models.Document, *models.Document, error) {
	resume, err := session.Resume()
	if err != nil {
		return nil, nil, err
	}
	if resume == nil {
		return nil, nil, fmt.Errorf("resume document missing from session %d", session.UserID)
	}

	jobPost, err := session.JobPost()
	if err != nil {
		return nil, nil, err
	}
	if jobPost == nil {
		return nil, nil, fmt.Errorf("job post document missing from session %d", session.UserID)
	}

	return resume, jobPost, nil
}

func parseJSONResponse(response string, target reportPayload) error {
	// The model may wrap its JSON in markdown fences or prose.
	jsonStr := extractJSON(response)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(jsonStr), &fields); err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	// An omitted or null key must not decode into a zero value and pass as a
	// real score.
	for _, key := range target.RequiredKeys() {
		raw, ok := fields[key]
		if !ok || string(raw) == "null" {
			return fmt.Errorf("missing required field %q", key)
		}
	}

	if err := json.Unmarshal([]byte(jsonStr), target); err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	return nil
}

// extractJSON pulls the first JSON object or array out of text that may
// contain markdown or other formatting around it.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	startObj := strings.Index(text, "{")
	startArr := strings.Index(text, "[")
	endObj := strings.LastIndex(text, "}")
	endArr := strings.LastIndex(text, "]")

	if startObj != -1 && endObj != -1 && endObj > startObj {
		return text[startObj : endObj+1]
	} else if startArr != -1 && endArr != -1 && endArr > startArr {
		return text[startArr : endArr+1]
	}

	return text
}
