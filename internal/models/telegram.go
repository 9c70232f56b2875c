package models

// Telegram Bot API wire types, limited to the fields this service reads.

type Update struct {
	UpdateID      int64          `json:"update_id"`
	Message       *Message       `json:"message,omitempty"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
}

type Message struct {
	MessageID int64               `json:"message_id"`
	From      *User               `json:"from,omitempty"`
	Chat      *Chat               `json:"chat,omitempty"`
	Text      string              `json:"text,omitempty"`
	Caption   string              `json:"caption,omitempty"`
	Document  *DocumentAttachment `json:"document,omitempty"`
}

type User struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"first_name,omitempty"`
	Username     string `json:"username,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
}

type Chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type,omitempty"`
}

type DocumentAttachment struct {
	FileID   string `json:"file_id"`
	FileName string `json:"file_name,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
	FileSize int64  `json:"file_size,omitempty"`
}

type CallbackQuery struct {
	ID      string   `json:"id"`
	From    *User    `json:"from,omitempty"`
	Message *Message `json:"message,omitempty"`
	Data    string   `json:"data,omitempty"`
}

type File struct {
	FileID   string `json:"file_id"`
	FileSize int64  `json:"file_size,omitempty"`
	FilePath string `json:"file_path,omitempty"`
}

// HasSender reports whether the update carries a message with enough identity
// to be routed: a sender and a chat. Updates without one are acknowledged and
// dropped at the webhook boundary.
func (u *Update) HasSender() bool {
	return u.Message != nil && u.Message.From != nil && u.Message.Chat != nil
}
