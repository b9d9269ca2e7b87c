package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/visioncall/calling-api/internal/core/domain"
)

type stubMessageRepo struct {
	mu       sync.Mutex
	messages map[string]*domain.Message
}

func newStubMessageRepo() *stubMessageRepo {
	return &stubMessageRepo{messages: make(map[string]*domain.Message)}
}

func (r *stubMessageRepo) Create(_ context.Context, msg *domain.Message) (*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *msg
	r.messages[msg.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubMessageRepo) FindByID(_ context.Context, id string) (*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[id]
	if !ok {
		return nil, domain.ErrMessageNotFound
	}
	clone := *m
	return &clone, nil
}

func TestMessageService_Send(t *testing.T) {
	users := newStubUserRepo()
	sender, receiver := seedParticipants(users)
	messages := newStubMessageRepo()
	svc := NewMessageService(messages, users, zerolog.Nop())

	msg, err := svc.Send(context.Background(), sender.ID, receiver.ID, "hi\nhello")
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if msg.ID == "" {
		t.Fatalf("expected message identity")
	}
	if msg.LastMessage() != "hello" {
		t.Fatalf("expected last line, got %q", msg.LastMessage())
	}
	if _, err := messages.FindByID(context.Background(), msg.ID); err != nil {
		t.Fatalf("expected message persisted: %v", err)
	}
}

func TestMessageService_Send_Validation(t *testing.T) {
	users := newStubUserRepo()
	sender, receiver := seedParticipants(users)
	svc := NewMessageService(newStubMessageRepo(), users, zerolog.Nop())

	if _, err := svc.Send(context.Background(), sender.ID, "", "hi"); !errors.Is(err, domain.ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
	if _, err := svc.Send(context.Background(), sender.ID, receiver.ID, ""); !errors.Is(err, domain.ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
	if _, err := svc.Send(context.Background(), sender.ID, "ghost", "hi"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
