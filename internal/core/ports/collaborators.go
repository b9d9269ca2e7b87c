package ports

import "context"

// PasswordHasher derives one-way hashes from secrets and verifies candidates
// against them in constant time.
type PasswordHasher interface {
	Hash(secret string) (string, error)
	Verify(secret string, hash string) bool
}

// MailSender delivers a single mail. Callers in the credential flows treat it
// as fire-and-forget: a send failure is logged, never surfaced.
type MailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// PushPayload is the wire data handed to the push transport. It mirrors the
// draft fields the client app needs to render or act on the notification.
type PushPayload struct {
	Title       string `json:"title"`
	Body        string `json:"body"`
	Type        string `json:"type"`
	SenderID    string `json:"sender_id"`
	ReceiverID  string `json:"receiver_id"`
	SessionCode string `json:"session_code,omitempty"`
	MediaToken  string `json:"media_token,omitempty"`
	MessageID   string `json:"message_id,omitempty"`
}

// PushSender performs the actual push send to a device address.
type PushSender interface {
	Send(ctx context.Context, deviceAddress string, payload PushPayload) error
}

// MediaTokenProvider mints short-lived real-time-media access tokens bound to
// a session code and account.
type MediaTokenProvider interface {
	MintToken(sessionCode string, accountID string) (string, error)
}
