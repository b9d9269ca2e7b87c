package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/visioncall/calling-api/internal/core/domain"
	"github.com/visioncall/calling-api/internal/core/ports"
)

// NotificationService builds notification drafts and records delivery
// outcomes. Drafts are created once per signaling event and never reused; a
// retry means a new draft.
type NotificationService struct {
	users         ports.UserRepository
	notifications ports.NotificationRepository
	log           zerolog.Logger
}

func NewNotificationService(
	users ports.UserRepository,
	notifications ports.NotificationRepository,
	log zerolog.Logger,
) *NotificationService {
	return &NotificationService{users: users, notifications: notifications, log: log}
}

// CreateCallInvite drafts and persists a call-invitation notification for one
// call attempt.
func (s *NotificationService) CreateCallInvite(ctx context.Context, senderID, receiverID, sessionCode, mediaToken string) (*domain.NotificationDraft, error) {
	sender, receiver, err := s.participants(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}

	draft, err := domain.DraftNotification(domain.NotificationCallInvite, sender, receiver, sessionCode, mediaToken, nil)
	if err != nil {
		return nil, err
	}

	return s.persist(ctx, draft)
}

// CreateMessageNotification drafts and persists a message notification for a
// single message send.
func (s *NotificationService) CreateMessageNotification(ctx context.Context, msg *domain.Message) (*domain.NotificationDraft, error) {
	if msg == nil {
		return nil, domain.ErrMissingField
	}

	sender, receiver, err := s.participants(ctx, msg.SenderID, msg.ReceiverID)
	if err != nil {
		return nil, err
	}

	draft, err := domain.DraftNotification(domain.NotificationMessage, sender, receiver, "", "", msg)
	if err != nil {
		return nil, err
	}

	return s.persist(ctx, draft)
}

// MarkSent records a successful send. The repository transition is a
// compare-and-set, so a late callback racing a recorded failure is rejected
// with ErrInvalidDeliveryTransition instead of overwriting it.
func (s *NotificationService) MarkSent(ctx context.Context, draft *domain.NotificationDraft) error {
	if err := s.notifications.UpdateDeliveryState(ctx, draft.ID, domain.DeliveryPending, domain.DeliverySent, ""); err != nil {
		return err
	}
	return draft.MarkSent()
}

// MarkFailed records a failed send and its cause, with the same
// compare-and-set guarantee as MarkSent.
func (s *NotificationService) MarkFailed(ctx context.Context, draft *domain.NotificationDraft, cause error) error {
	detail := ""
	if cause != nil {
		detail = cause.Error()
	}
	if err := s.notifications.UpdateDeliveryState(ctx, draft.ID, domain.DeliveryPending, domain.DeliveryFailed, detail); err != nil {
		return err
	}
	return draft.MarkFailed(cause)
}

func (s *NotificationService) participants(ctx context.Context, senderID, receiverID string) (*domain.User, *domain.User, error) {
	sender, err := s.users.FindByID(ctx, senderID)
	if err != nil {
		return nil, nil, fmt.Errorf("load sender: %w", err)
	}
	receiver, err := s.users.FindByID(ctx, receiverID)
	if err != nil {
		return nil, nil, fmt.Errorf("load receiver: %w", err)
	}
	return sender, receiver, nil
}

func (s *NotificationService) persist(ctx context.Context, draft *domain.NotificationDraft) (*domain.NotificationDraft, error) {
	draft.ID = uuid.NewString()

	created, err := s.notifications.Create(ctx, draft)
	if err != nil {
		s.log.Error().Err(err).Str("type", string(draft.Type)).Msg("failed to persist notification draft")
		return nil, err
	}

	s.log.Info().
		Str("notification_id", created.ID).
		Str("type", string(created.Type)).
		Str("receiver_id", created.ReceiverID).
		Msg("notification drafted")

	return created, nil
}
