package ports

import (
	"context"

	"github.com/visioncall/calling-api/internal/core/domain"
)

// MessageService persists chat messages between accounts.
type MessageService interface {
	Send(ctx context.Context, senderID, receiverID, text string) (*domain.Message, error)
}

// NotificationService builds notification drafts and records their delivery
// outcome.
type NotificationService interface {
	// CreateCallInvite drafts and persists a call-invitation notification
	// carrying the session code and media token.
	CreateCallInvite(ctx context.Context, senderID, receiverID, sessionCode, mediaToken string) (*domain.NotificationDraft, error)

	// CreateMessageNotification drafts and persists a message notification
	// for the given chat message.
	CreateMessageNotification(ctx context.Context, msg *domain.Message) (*domain.NotificationDraft, error)

	// MarkSent and MarkFailed record the delivery outcome reported by the
	// push transport. Both are idempotent on their own terminal state and
	// reject the opposite one.
	MarkSent(ctx context.Context, draft *domain.NotificationDraft) error
	MarkFailed(ctx context.Context, draft *domain.NotificationDraft, cause error) error
}
