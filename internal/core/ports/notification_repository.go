package ports

import (
	"context"

	"github.com/visioncall/calling-api/internal/core/domain"
)

// MessageRepository persists chat messages.
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) (*domain.Message, error)
	FindByID(ctx context.Context, id string) (*domain.Message, error)
}

// NotificationRepository persists notification drafts and their delivery
// outcome.
type NotificationRepository interface {
	Create(ctx context.Context, draft *domain.NotificationDraft) (*domain.NotificationDraft, error)
	FindByID(ctx context.Context, id string) (*domain.NotificationDraft, error)

	// UpdateDeliveryState transitions a draft from one delivery state to
	// another as a single compare-and-set. A draft already in the target
	// state is a no-op; a draft in the opposite terminal state returns
	// domain.ErrInvalidDeliveryTransition.
	UpdateDeliveryState(ctx context.Context, id string, from, to domain.DeliveryState, deliveryError string) error
}
