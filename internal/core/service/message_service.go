package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/visioncall/calling-api/internal/core/domain"
	"github.com/visioncall/calling-api/internal/core/ports"
)

// MessageService persists chat messages between accounts.
type MessageService struct {
	messages ports.MessageRepository
	users    ports.UserRepository
	log      zerolog.Logger
}

func NewMessageService(messages ports.MessageRepository, users ports.UserRepository, log zerolog.Logger) *MessageService {
	return &MessageService{messages: messages, users: users, log: log}
}

// Send validates the participants and stores the message.
func (s *MessageService) Send(ctx context.Context, senderID, receiverID, text string) (*domain.Message, error) {
	if receiverID == "" || text == "" {
		return nil, domain.ErrMissingField
	}

	if _, err := s.users.FindByID(ctx, receiverID); err != nil {
		return nil, err
	}

	msg := &domain.Message{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
		CreatedAt:  time.Now().UTC(),
	}

	created, err := s.messages.Create(ctx, msg)
	if err != nil {
		s.log.Error().Err(err).Str("receiver_id", receiverID).Msg("failed to store message")
		return nil, err
	}

	return created, nil
}
