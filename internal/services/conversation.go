package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"alfredoptarigan/resume-match-bot/internal/models"
	"alfredoptarigan/resume-match-bot/internal/repositories"
)

const (
	cmdStart      = "/start"
	cmdMatch      = "/match"
	cmdHelp       = "/help"
	cmdCancel     = "/cancel"
	cmdLogs       = "/logs"
	cmdLogSummary = "/logsummary"
)

// startKeywords let idle users begin collection with plain words instead of
// the /match command.
var startKeywords = map[string]bool{
	"match":   true,
	"start":   true,
	"analyze": true,
	"resume":  true,
	"подбор":  true,
}

// ConversationService is the per-update state machine: it routes commands,
// drives the idle → waiting_resume → waiting_job_post → processing → idle
// cycle, and hands completed document pairs to the orchestrator. Unexpected
// dispatch failures are caught here, logged, and answered with a generic
// apology.
type ConversationService interface {
	HandleUpdate(ctx context.Context, update *models.Update) error
}

type conversationService struct {
	sessionRepo  repositories.SessionRepository
	telegram     TelegramService
	normalizer   NormalizerService
	orchestrator OrchestratorService
	admin        AdminService
	logService   LogService
}

func NewConversationService(
	sessionRepo repositories.SessionRepository,
	telegram TelegramService,
	normalizer NormalizerService,
	orchestrator OrchestratorService,
	admin AdminService,
	logService LogService,
) ConversationService {
	return &conversationService{
		sessionRepo:  sessionRepo,
		telegram:     telegram,
		normalizer:   normalizer,
		orchestrator: orchestrator,
		admin:        admin,
		logService:   logService,
	}
}

// HandleUpdate implements ConversationService.
func (c *conversationService) HandleUpdate(ctx context.Context, update *models.Update) error {
	if !update.HasSender() {
		return nil
	}

	msg := update.Message
	if err := c.dispatch(ctx, msg); err != nil {
		c.logService.Append(models.LevelError, "update_failed", err.Error(),
			map[string]interface{}{"update_id": update.UpdateID}, msg.From.ID, msg.Chat.ID)

		if sendErr := c.telegram.SendMessage(ctx, msg.Chat.ID, msgSomethingWentWrong, nil); sendErr != nil {
			return fmt.Errorf("failed to deliver failure notice: %w", sendErr)
		}
	}

	return nil
}

func (c *conversationService) dispatch(ctx context.Context, msg *models.Message) error {
	session, err := c.loadOrCreateSession(msg)
	if err != nil {
		return err
	}

	text := strings.TrimSpace(messageText(msg))

	if cmd, args, ok := parseCommand(text); ok {
		return c.handleCommand(ctx, session, cmd, args)
	}

	switch session.State {
	case models.StateIdle:
		return c.handleIdleText(ctx, session, text)
	case models.StateWaitingResume:
		return c.handleDocumentSubmission(ctx, session, msg, true)
	case models.StateWaitingJobPost:
		return c.handleDocumentSubmission(ctx, session, msg, false)
	case models.StateProcessing:
		return c.telegram.SendMessage(ctx, session.ChatID, msgAnalysisRunning, nil)
	default:
		return fmt.Errorf("session %d is in unknown state %q", session.UserID, session.State)
	}
}

func (c *conversationService) loadOrCreateSession(msg *models.Message) (*models.Session, error) {
	session, err := c.sessionRepo.Get(msg.From.ID)
	if errors.Is(err, models.ErrSessionNotFound) {
		return c.sessionRepo.Create(msg.From.ID, msg.Chat.ID, msg.From.LanguageCode), nil
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (c *conversationService) handleCommand(ctx context.Context, session *models.Session, cmd string, args []string) error {
	// A running analysis blocks every command except cancel and help.
	if session.State == models.StateProcessing && cmd != cmdCancel && cmd != cmdHelp {
		return c.telegram.SendMessage(ctx, session.ChatID, msgBusy, nil)
	}

	switch cmd {
	case cmdStart:
		return c.telegram.SendMessage(ctx, session.ChatID, msgWelcome, nil)
	case cmdMatch:
		return c.beginCollection(ctx, session)
	case cmdHelp:
		return c.telegram.SendMessage(ctx, session.ChatID, msgHelp, nil)
	case cmdCancel:
		return c.handleCancel(ctx, session)
	case cmdLogs:
		reply := c.admin.HandleLogs(args, session.UserID, session.ChatID)
		return c.telegram.SendMessage(ctx, session.ChatID, reply, nil)
	case cmdLogSummary:
		reply := c.admin.HandleLogSummary(args, session.UserID, session.ChatID)
		return c.telegram.SendMessage(ctx, session.ChatID, reply, nil)
	default:
		return c.telegram.SendMessage(ctx, session.ChatID, msgUnknownCommand, nil)
	}
}

func (c *conversationService) handleIdleText(ctx context.Context, session *models.Session, text string) error {
	if containsStartKeyword(text) {
		return c.beginCollection(ctx, session)
	}
	return c.telegram.SendMessage(ctx, session.ChatID, msgIdleHint, nil)
}

// beginCollection moves the session into waiting_resume. A /match issued
// mid-collection restarts from scratch, dropping anything gathered so far.
func (c *conversationService) beginCollection(ctx context.Context, session *models.Session) error {
	if session.State != models.StateIdle {
		if err := c.sessionRepo.Complete(session.UserID); err != nil {
			return err
		}
		session = c.sessionRepo.Create(session.UserID, session.ChatID, session.LanguageCode)
	}

	if !session.State.CanTransitionTo(models.StateWaitingResume) {
		return fmt.Errorf("illegal transition %s -> %s for user %d", session.State, models.StateWaitingResume, session.UserID)
	}

	session.State = models.StateWaitingResume
	if err := c.sessionRepo.Save(session); err != nil {
		return err
	}

	c.logService.Append(models.LevelInfo, "collection_started", "", nil, session.UserID, session.ChatID)

	return c.telegram.SendMessage(ctx, session.ChatID, msgSendResume, nil)
}

func (c *conversationService) handleCancel(ctx context.Context, session *models.Session) error {
	hadFlow := session.State != models.StateIdle

	if err := c.sessionRepo.Complete(session.UserID); err != nil {
		return err
	}

	if !hadFlow {
		return c.telegram.SendMessage(ctx, session.ChatID, msgNothingToCancel, nil)
	}

	c.logService.Append(models.LevelInfo, "collection_cancelled", "from state "+string(session.State),
		nil, session.UserID, session.ChatID)

	return c.telegram.SendMessage(ctx, session.ChatID, msgCancelled, nil)
}

func (c *conversationService) handleDocumentSubmission(ctx context.Context, session *models.Session, msg *models.Message, isResume bool) error {
	input, err := c.buildDocumentInput(ctx, msg)
	if err != nil {
		if models.IsValidationError(err) {
			return c.telegram.SendMessage(ctx, session.ChatID, "⚠️ "+err.Error(), nil)
		}
		return err
	}

	doc, err := c.normalizer.Normalize(*input)
	if err != nil {
		// Validation failures stay in the current collection step.
		if models.IsValidationError(err) {
			return c.telegram.SendMessage(ctx, session.ChatID, "⚠️ "+err.Error(), nil)
		}
		return err
	}

	if isResume {
		return c.acceptResume(ctx, session, doc)
	}
	return c.acceptJobPost(ctx, session, doc)
}

func (c *conversationService) acceptResume(ctx context.Context, session *models.Session, doc *models.Document) error {
	if !session.State.CanTransitionTo(models.StateWaitingJobPost) {
		return fmt.Errorf("illegal transition %s -> %s for user %d", session.State, models.StateWaitingJobPost, session.UserID)
	}

	if err := c.sessionRepo.AttachResume(session.UserID, doc); err != nil {
		return err
	}
	if err := c.sessionRepo.SetState(session.UserID, models.StateWaitingJobPost); err != nil {
		return err
	}

	c.logService.Append(models.LevelInfo, "resume_received",
		fmt.Sprintf("%d chars, %d words, %s", doc.CharacterCount, doc.WordCount, doc.SourceKind),
		nil, session.UserID, session.ChatID)

	return c.telegram.SendMessage(ctx, session.ChatID, msgSendJobPost, nil)
}

// acceptJobPost stores the second document and runs the analysis before
// returning: by the time the webhook answers, the run has settled one way or
// the other.
func (c *conversationService) acceptJobPost(ctx context.Context, session *models.Session, doc *models.Document) error {
	if !session.State.CanTransitionTo(models.StateProcessing) {
		return fmt.Errorf("illegal transition %s -> %s for user %d", session.State, models.StateProcessing, session.UserID)
	}

	if err := c.sessionRepo.AttachJobPost(session.UserID, doc); err != nil {
		return err
	}
	if err := c.sessionRepo.SetState(session.UserID, models.StateProcessing); err != nil {
		return err
	}

	c.logService.Append(models.LevelInfo, "job_post_received",
		fmt.Sprintf("%d chars, %d words, %s", doc.CharacterCount, doc.WordCount, doc.SourceKind),
		nil, session.UserID, session.ChatID)

	// Best-effort notice; a lost ack must not keep the analysis from running.
	if err := c.telegram.SendMessage(ctx, session.ChatID, msgAnalyzing, nil); err != nil {
		c.logService.Append(models.LevelWarn, "analyzing_notice_failed", err.Error(),
			nil, session.UserID, session.ChatID)
	}

	// Reload so the orchestrator sees both stored documents.
	fresh, err := c.sessionRepo.Get(session.UserID)
	if err != nil {
		// The orchestrator's completion guarantee starts at AnalyzeAndReport, so
		// the session has to be released here or it stays stuck in processing.
		if cerr := c.sessionRepo.Complete(session.UserID); cerr != nil {
			c.logService.Append(models.LevelError, "session_complete_failed", cerr.Error(),
				nil, session.UserID, session.ChatID)
		}
		return fmt.Errorf("failed to reload session before analysis: %w", err)
	}

	return c.orchestrator.AnalyzeAndReport(ctx, fresh)
}

// buildDocumentInput turns a message into normalizer input. File attachments
// are checked against the size and type limits before the download happens.
func (c *conversationService) buildDocumentInput(ctx context.Context, msg *models.Message) (*DocumentInput, error) {
	if att := msg.Document; att != nil {
		mediaType := att.MimeType
		if mediaType == "" {
			mediaType = mediaTypeFromName(att.FileName)
		}

		input := DocumentInput{
			MediaType: mediaType,
			FileSize:  att.FileSize,
			FileName:  att.FileName,
		}
		if err := c.normalizer.CheckAttachment(input); err != nil {
			return nil, err
		}

		meta, err := c.telegram.GetFileMetadata(ctx, att.FileID)
		if err != nil {
			return nil, err
		}

		data, err := c.telegram.DownloadFile(ctx, meta.FilePath)
		if err != nil {
			return nil, err
		}

		input.Data = data
		return &input, nil
	}

	text := messageText(msg)
	if strings.TrimSpace(text) == "" {
		return nil, models.NewValidationError(msgDocumentExpected)
	}

	return &DocumentInput{Text: text}, nil
}

func messageText(msg *models.Message) string {
	if msg.Text != "" {
		return msg.Text
	}
	return msg.Caption
}

func parseCommand(text string) (string, []string, bool) {
	if !strings.HasPrefix(text, "/") {
		return "", nil, false
	}

	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", nil, false
	}

	cmd := strings.ToLower(fields[0])
	// Group chats address commands as /cmd@BotName.
	if at := strings.Index(cmd, "@"); at != -1 {
		cmd = cmd[:at]
	}

	return cmd, fields[1:], true
}

func containsStartKeyword(text string) bool {
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?:;()\"'«»")
		if startKeywords[word] {
			return true
		}
	}
	return false
}

func mediaTypeFromName(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return "application/pdf"
	case ".txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
