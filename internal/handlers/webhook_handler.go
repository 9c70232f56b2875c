package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-match-bot/internal/models"
	"alfredoptarigan/resume-match-bot/internal/services"
)

// secretTokenHeader is set by Telegram on every webhook delivery when a
// secret was registered with setWebhook.
const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

const rateLimitNotice = "🚦 Too many messages in a short time. Give it a minute and try again."

type WebhookHandler struct {
	conversation services.ConversationService
	rateLimiter  services.RateLimiterService
	telegram     services.TelegramService
	secret       string
}

func NewWebhookHandler(
	conversation services.ConversationService,
	rateLimiter services.RateLimiterService,
	telegram services.TelegramService,
	secret string,
) *WebhookHandler {
	return &WebhookHandler{
		conversation: conversation,
		rateLimiter:  rateLimiter,
		telegram:     telegram,
		secret:       secret,
	}
}

// HandleTelegramUpdate processes one webhook delivery synchronously: by the
// time the response goes out, the update has either been fully handled or
// explicitly failed.
func (h *WebhookHandler) HandleTelegramUpdate(c *fiber.Ctx) error {
	if h.secret != "" && c.Get(secretTokenHeader) != h.secret {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid secret token",
		})
	}

	var update models.Update
	if err := c.BodyParser(&update); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid update body",
		})
	}

	if update.UpdateID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing update_id",
		})
	}

	// A message without sender identity cannot be routed to a session.
	if update.Message != nil && (update.Message.From == nil || update.Message.Chat == nil) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "message missing sender or chat",
		})
	}

	// Edits, callback queries and other non-message updates are acknowledged
	// so Telegram stops redelivering them.
	if !update.HasSender() {
		return c.JSON(fiber.Map{"ok": true})
	}

	if !h.rateLimiter.Allow(update.Message.From.ID) {
		// Best-effort notice; the 429 status alone is invisible to the user.
		_ = h.telegram.SendMessage(c.UserContext(), update.Message.Chat.ID, rateLimitNotice, nil)

		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": "rate limit exceeded",
		})
	}

	if err := h.conversation.HandleUpdate(c.UserContext(), &update); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"ok": true})
}
