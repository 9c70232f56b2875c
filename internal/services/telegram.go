package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"alfredoptarigan/resume-match-bot/internal/models"
)

// maxMessageLength is the Telegram sendMessage limit. Longer texts are
// truncated rather than rejected.
const maxMessageLength = 4096

type SendMessageOptions struct {
	ParseMode             string
	DisableWebPagePreview bool
}

type TelegramService interface {
	SendMessage(ctx context.Context, chatID int64, text string, opts *SendMessageOptions) error
	GetFileMetadata(ctx context.Context, fileID string) (*models.File, error)
	DownloadFile(ctx context.Context, filePath string) ([]byte, error)
	SetWebhook(ctx context.Context, webhookURL, secret string) error
	DeleteWebhook(ctx context.Context) error
}

type telegramService struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

func NewTelegramService(baseURL, token string) TelegramService {
	return &telegramService{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
	}
}

// apiResponse is the Bot API envelope wrapping every method result.
type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	Description string          `json:"description,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
}

// SendMessage implements TelegramService.
func (t *telegramService) SendMessage(ctx context.Context, chatID int64, text string, opts *SendMessageOptions) error {
	runes := []rune(text)
	if len(runes) > maxMessageLength {
		log.Printf("⚠️  Message for chat %d truncated from %d characters\n", chatID, len(runes))
		text = string(runes[:maxMessageLength-1]) + "…"
	}

	payload := map[string]interface{}{
		"chat_id": chatID,
		"text":    text,
	}
	if opts != nil {
		if opts.ParseMode != "" {
			payload["parse_mode"] = opts.ParseMode
		}
		if opts.DisableWebPagePreview {
			payload["disable_web_page_preview"] = true
		}
	}

	return t.callMethod(ctx, "sendMessage", payload, nil)
}

// GetFileMetadata implements TelegramService.
func (t *telegramService) GetFileMetadata(ctx context.Context, fileID string) (*models.File, error) {
	var file models.File
	err := t.callMethod(ctx, "getFile", map[string]interface{}{"file_id": fileID}, &file)
	if err != nil {
		return nil, err
	}

	if file.FilePath == "" {
		return nil, models.NewCollaboratorError("telegram", fmt.Errorf("getFile returned no file path"))
	}

	return &file, nil
}

// DownloadFile implements TelegramService.
func (t *telegramService) DownloadFile(ctx context.Context, filePath string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/file/bot%s/%s", t.baseURL, t.token, filePath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build download request: %w", err)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, models.NewCollaboratorError("telegram", fmt.Errorf("file download failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, models.NewCollaboratorError("telegram", fmt.Errorf("file download returned status %d", resp.StatusCode))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, models.NewCollaboratorError("telegram", fmt.Errorf("failed to read file body: %w", err))
	}

	return data, nil
}

// SetWebhook implements TelegramService.
func (t *telegramService) SetWebhook(ctx context.Context, webhookURL, secret string) error {
	payload := map[string]interface{}{
		"url":             webhookURL,
		"allowed_updates": []string{"message"},
	}
	if secret != "" {
		payload["secret_token"] = secret
	}

	if err := t.callMethod(ctx, "setWebhook", payload, nil); err != nil {
		return err
	}

	log.Printf("✅ Webhook registered: %s\n", webhookURL)
	return nil
}

// DeleteWebhook implements TelegramService.
func (t *telegramService) DeleteWebhook(ctx context.Context) error {
	if err := t.callMethod(ctx, "deleteWebhook", map[string]interface{}{}, nil); err != nil {
		return err
	}

	log.Println("✅ Webhook deleted")
	return nil
}

func (t *telegramService) callMethod(ctx context.Context, method string, payload interface{}, result interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", method, err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/%s", t.baseURL, t.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return models.NewCollaboratorError("telegram", fmt.Errorf("%s request failed: %w", method, err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.NewCollaboratorError("telegram", fmt.Errorf("failed to read %s response: %w", method, err))
	}

	var envelope apiResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return models.NewCollaboratorError("telegram", fmt.Errorf("failed to decode %s response: %w", method, err))
	}

	if !envelope.OK {
		return models.NewCollaboratorError("telegram", fmt.Errorf("%s rejected: %d %s", method, envelope.ErrorCode, envelope.Description))
	}

	if result != nil && len(envelope.Result) > 0 {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return models.NewCollaboratorError("telegram", fmt.Errorf("failed to decode %s result: %w", method, err))
		}
	}

	return nil
}
