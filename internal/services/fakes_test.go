package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"alfredoptarigan/resume-match-bot/internal/models"
)

func newServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.Session{}, &models.RateWindow{}, &models.LogEntry{}))
	return db
}

type sentMessage struct {
	ChatID int64
	Text   string
}

// fakeTelegram records outgoing messages and serves canned file downloads.
// sendErr fails every send; narrowing failText to one message text fails only
// that send and lets the rest through.
type fakeTelegram struct {
	mu        sync.Mutex
	sent      []sentMessage
	sendErr   error
	failText  string
	metaCalls int
	fileData  []byte
}

func (f *fakeTelegram) SendMessage(_ context.Context, chatID int64, text string, _ *SendMessageOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.sendErr != nil && (f.failText == "" || f.failText == text) {
		return f.sendErr
	}
	f.sent = append(f.sent, sentMessage{ChatID: chatID, Text: text})
	return nil
}

func (f *fakeTelegram) GetFileMetadata(_ context.Context, fileID string) (*models.File, error) {
	f.mu.Lock()
	f.metaCalls++
	f.mu.Unlock()

	return &models.File{FileID: fileID, FilePath: "documents/" + fileID}, nil
}

func (f *fakeTelegram) DownloadFile(_ context.Context, _ string) ([]byte, error) {
	return f.fileData, nil
}

func (f *fakeTelegram) SetWebhook(_ context.Context, _, _ string) error { return nil }

func (f *fakeTelegram) DeleteWebhook(_ context.Context) error { return nil }

func (f *fakeTelegram) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, 0, len(f.sent))
	for _, msg := range f.sent {
		out = append(out, msg.Text)
	}
	return out
}

func (f *fakeTelegram) lastText(t *testing.T) string {
	t.Helper()

	texts := f.texts()
	require.NotEmpty(t, texts)
	return texts[len(texts)-1]
}

// Prompt markers unique to each generation request, taken from the prompt
// builder's wording.
const (
	markerHeadline   = "ONLY the title/headline fit"
	markerSkills     = "ONLY the skills overlap"
	markerExperience = "ONLY the experience and seniority fit"
	markerConditions = "ONLY the logistics and conditions fit"
	markerSynthesis  = "final composite verdict"
)

// fakeGemini answers generation requests by matching canned responses against
// prompt markers. Markers must be mutually exclusive.
type fakeGemini struct {
	mu        sync.Mutex
	prompts   []string
	responses map[string]string
	errMarker string
	err       error
	embedErr  error
}

func (f *fakeGemini) GenerateEmbedding(_ context.Context, _ string) ([]float32, error) {
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (f *fakeGemini) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	return f.GenerateTextWithRetry(ctx, prompt, temperature, 1)
}

func (f *fakeGemini) GenerateTextWithRetry(ctx context.Context, prompt string, _ float32, _ int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", models.NewCollaboratorError("gemini", err)
	}

	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()

	if f.errMarker != "" && strings.Contains(prompt, f.errMarker) {
		if f.err != nil {
			return "", f.err
		}
		return "", models.NewCollaboratorError("gemini", fmt.Errorf("canned failure"))
	}

	for marker, response := range f.responses {
		if strings.Contains(prompt, marker) {
			return response, nil
		}
	}

	return "", fmt.Errorf("no canned response matches prompt")
}

func (f *fakeGemini) promptCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func (f *fakeGemini) promptsContaining(marker string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0
	for _, prompt := range f.prompts {
		if strings.Contains(prompt, marker) {
			count++
		}
	}
	return count
}

// cannedDimensionResponses covers all four dimensions plus synthesis with
// well-formed payloads. The conditions response arrives fenced, the way the
// model often wraps JSON.
func cannedDimensionResponses() map[string]string {
	return map[string]string{
		markerHeadline:   `{"match_score": 65, "explanation": "Titles are close.", "problems": ["current title differs"], "recommendations": ["align the headline"]}`,
		markerSkills:     `{"match_score": 80, "matched_skills": ["Go", "Postgres"], "missing_skills": ["Kubernetes"], "explanation": "Strong overlap.", "problems": [], "recommendations": ["mention container experience"]}`,
		markerExperience: `{"match_score": 70, "seniority_fit": "match", "explanation": "Seniority lines up.", "problems": [], "recommendations": []}`,
		markerConditions: "```json\n{\"match_score\": 75, \"location_score\": 80, \"schedule_score\": 70, \"salary_score\": 50, \"explanation\": \"Remote friendly.\", \"problems\": [], \"recommendations\": []}\n```",
		markerSynthesis:  `{"overall_score": 72, "summary": "Solid match with a few gaps."}`,
	}
}

type loggedEvent struct {
	Level   models.LogLevel
	Event   string
	Message string
}

// fakeLogService records appended events and serves canned query results.
type fakeLogService struct {
	mu           sync.Mutex
	events       []loggedEvent
	entries      []models.LogEntry
	lastLimit    int
	summary      string
	queryErr     error
	summarizeErr error
}

func (f *fakeLogService) Append(level models.LogLevel, eventName, message string, _ map[string]interface{}, _, _ int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, loggedEvent{Level: level, Event: eventName, Message: message})
}

func (f *fakeLogService) QueryRecent(limit int) ([]models.LogEntry, error) {
	f.mu.Lock()
	f.lastLimit = limit
	f.mu.Unlock()

	if f.queryErr != nil {
		return nil, f.queryErr
	}
	if limit < 0 {
		limit = 0
	}
	if limit > len(f.entries) {
		limit = len(f.entries)
	}
	return f.entries[:limit], nil
}

func (f *fakeLogService) Summarize(_ int) (string, error) {
	if f.summarizeErr != nil {
		return "", f.summarizeErr
	}
	return f.summary, nil
}

func (f *fakeLogService) eventsNamed(name string) []loggedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []loggedEvent
	for _, event := range f.events {
		if event.Event == name {
			out = append(out, event)
		}
	}
	return out
}

func (f *fakeLogService) eventCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

// fakeOrchestrator records invocations; run lets a test mimic the real
// orchestrator's session completion or inject a failure.
type fakeOrchestrator struct {
	mu    sync.Mutex
	calls []*models.Session
	run   func(ctx context.Context, session *models.Session) error
}

func (f *fakeOrchestrator) AnalyzeAndReport(ctx context.Context, session *models.Session) error {
	f.mu.Lock()
	f.calls = append(f.calls, session)
	f.mu.Unlock()

	if f.run != nil {
		return f.run(ctx, session)
	}
	return nil
}

func (f *fakeOrchestrator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakeWindowRepo is an in-memory rate-window store with fault injection.
type fakeWindowRepo struct {
	windows map[int64]*models.RateWindow
	getErr  error
	saveErr error
	saves   int
}

func newFakeWindowRepo() *fakeWindowRepo {
	return &fakeWindowRepo{windows: make(map[int64]*models.RateWindow)}
}

func (f *fakeWindowRepo) Get(userID int64) (*models.RateWindow, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}

	window, ok := f.windows[userID]
	if !ok {
		return nil, nil
	}
	copied := *window
	return &copied, nil
}

func (f *fakeWindowRepo) Save(window *models.RateWindow) error {
	if f.saveErr != nil {
		return f.saveErr
	}

	f.saves++
	copied := *window
	f.windows[window.UserID] = &copied
	return nil
}

func (f *fakeWindowRepo) DeleteExpired(now time.Time) (int64, error) {
	var deleted int64
	for userID, window := range f.windows {
		if window.ExpiresAt.Before(now) {
			delete(f.windows, userID)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeWindowRepo) storedTimes(userID int64) []time.Time {
	window, ok := f.windows[userID]
	if !ok {
		return nil
	}
	return window.Times()
}

// fakeQdrant serves one canned chunk list for every search.
type fakeQdrant struct {
	mu        sync.Mutex
	chunks    []RubricChunk
	searched  []string
	searchErr error
}

func (f *fakeQdrant) InitCollection(_ context.Context) error { return nil }

func (f *fakeQdrant) UpsertRubricChunk(_ context.Context, _, _, _ string, _ []float32) error {
	return nil
}

func (f *fakeQdrant) SearchSimilar(_ context.Context, _ []float32, dimension string, _ int) ([]RubricChunk, error) {
	f.mu.Lock()
	f.searched = append(f.searched, dimension)
	f.mu.Unlock()

	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.chunks, nil
}

func (f *fakeQdrant) DeleteRubric(_ context.Context, _ string) error { return nil }
