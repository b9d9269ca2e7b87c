package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/visioncall/calling-api/internal/core/domain"
)

// stubNotificationRepo mirrors the Mongo repository's compare-and-set
// delivery-state update.
type stubNotificationRepo struct {
	mu     sync.Mutex
	drafts map[string]*domain.NotificationDraft
}

func newStubNotificationRepo() *stubNotificationRepo {
	return &stubNotificationRepo{drafts: make(map[string]*domain.NotificationDraft)}
}

func (r *stubNotificationRepo) Create(_ context.Context, draft *domain.NotificationDraft) (*domain.NotificationDraft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *draft
	r.drafts[draft.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubNotificationRepo) FindByID(_ context.Context, id string) (*domain.NotificationDraft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.drafts[id]
	if !ok {
		return nil, domain.ErrNotificationNotFound
	}
	clone := *d
	return &clone, nil
}

func (r *stubNotificationRepo) UpdateDeliveryState(_ context.Context, id string, from, to domain.DeliveryState, deliveryError string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.drafts[id]
	if !ok {
		return domain.ErrNotificationNotFound
	}
	if d.DeliveryState == to {
		return nil
	}
	if d.DeliveryState != from {
		return domain.ErrInvalidDeliveryTransition
	}
	d.DeliveryState = to
	d.DeliveryError = deliveryError
	return nil
}

func (r *stubNotificationRepo) state(id string) domain.DeliveryState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.drafts[id].DeliveryState
}

func seedParticipants(repo *stubUserRepo) (sender, receiver *domain.User) {
	sender = repo.add(&domain.User{Name: "Ann", Email: "ann@example.com", Active: true})
	receiver = repo.add(&domain.User{Name: "Bob", Email: "bob@example.com", Active: true, FCMToken: "fcm-bob"})
	return sender, receiver
}

func newNotificationService(users *stubUserRepo, notifications *stubNotificationRepo) *NotificationService {
	return NewNotificationService(users, notifications, zerolog.Nop())
}

func TestNotificationService_CreateCallInvite(t *testing.T) {
	users := newStubUserRepo()
	sender, receiver := seedParticipants(users)
	notifications := newStubNotificationRepo()
	svc := newNotificationService(users, notifications)

	draft, err := svc.CreateCallInvite(context.Background(), sender.ID, receiver.ID, "room-9", "tok-1")
	if err != nil {
		t.Fatalf("CreateCallInvite returned error: %v", err)
	}
	if draft.ID == "" {
		t.Fatalf("expected draft to receive an identity")
	}
	if draft.Body != domain.CallInviteBody || draft.Title != "Ann" {
		t.Fatalf("unexpected draft content: %+v", draft)
	}
	if draft.DeliveryState != domain.DeliveryPending {
		t.Fatalf("expected pending draft, got %s", draft.DeliveryState)
	}
	if _, err := notifications.FindByID(context.Background(), draft.ID); err != nil {
		t.Fatalf("expected draft persisted: %v", err)
	}
}

func TestNotificationService_CreateCallInvite_UnknownReceiver(t *testing.T) {
	users := newStubUserRepo()
	sender := users.add(&domain.User{Name: "Ann", Email: "ann@example.com"})
	svc := newNotificationService(users, newStubNotificationRepo())

	_, err := svc.CreateCallInvite(context.Background(), sender.ID, "missing", "room-9", "tok-1")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestNotificationService_CreateMessageNotification(t *testing.T) {
	users := newStubUserRepo()
	sender, receiver := seedParticipants(users)
	svc := newNotificationService(users, newStubNotificationRepo())

	msg := &domain.Message{ID: "m5", SenderID: sender.ID, ReceiverID: receiver.ID, Text: "hello"}
	draft, err := svc.CreateMessageNotification(context.Background(), msg)
	if err != nil {
		t.Fatalf("CreateMessageNotification returned error: %v", err)
	}
	if draft.Body != "hello" || draft.MessageID != "m5" {
		t.Fatalf("unexpected draft: %+v", draft)
	}
	if draft.SessionCode != "" || draft.MediaToken != "" {
		t.Fatalf("expected no signaling data on a message draft")
	}
}

func TestNotificationService_MarkSent_Idempotent(t *testing.T) {
	users := newStubUserRepo()
	sender, receiver := seedParticipants(users)
	notifications := newStubNotificationRepo()
	svc := newNotificationService(users, notifications)

	draft, err := svc.CreateCallInvite(context.Background(), sender.ID, receiver.ID, "room-9", "tok-1")
	if err != nil {
		t.Fatalf("CreateCallInvite returned error: %v", err)
	}

	if err := svc.MarkSent(context.Background(), draft); err != nil {
		t.Fatalf("MarkSent returned error: %v", err)
	}
	if err := svc.MarkSent(context.Background(), draft); err != nil {
		t.Fatalf("expected second MarkSent to be a no-op, got %v", err)
	}
	if draft.DeliveryState != domain.DeliverySent {
		t.Fatalf("expected sent state, got %s", draft.DeliveryState)
	}

	// A late failure callback must not corrupt the recorded success.
	if err := svc.MarkFailed(context.Background(), draft, errors.New("late callback")); !errors.Is(err, domain.ErrInvalidDeliveryTransition) {
		t.Fatalf("expected ErrInvalidDeliveryTransition, got %v", err)
	}
	if notifications.state(draft.ID) != domain.DeliverySent {
		t.Fatalf("expected persisted state to remain sent")
	}
}

func TestNotificationService_MarkFailed_RecordsCause(t *testing.T) {
	users := newStubUserRepo()
	sender, receiver := seedParticipants(users)
	notifications := newStubNotificationRepo()
	svc := newNotificationService(users, notifications)

	draft, _ := svc.CreateCallInvite(context.Background(), sender.ID, receiver.ID, "room-9", "tok-1")

	if err := svc.MarkFailed(context.Background(), draft, errors.New("device unreachable")); err != nil {
		t.Fatalf("MarkFailed returned error: %v", err)
	}

	stored, _ := notifications.FindByID(context.Background(), draft.ID)
	if stored.DeliveryState != domain.DeliveryFailed || stored.DeliveryError != "device unreachable" {
		t.Fatalf("unexpected stored outcome: %+v", stored)
	}
}

// Concurrent success and failure callbacks race on the compare-and-set:
// exactly one terminal state wins and the loser is rejected.
func TestNotificationService_ConcurrentCallbacks(t *testing.T) {
	users := newStubUserRepo()
	sender, receiver := seedParticipants(users)
	notifications := newStubNotificationRepo()
	svc := newNotificationService(users, notifications)

	draft, _ := svc.CreateCallInvite(context.Background(), sender.ID, receiver.ID, "room-9", "tok-1")

	sentDraft := *draft
	failedDraft := *draft

	var wg sync.WaitGroup
	var sentErr, failedErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		sentErr = svc.MarkSent(context.Background(), &sentDraft)
	}()
	go func() {
		defer wg.Done()
		failedErr = svc.MarkFailed(context.Background(), &failedDraft, errors.New("push timeout"))
	}()
	wg.Wait()

	final := notifications.state(draft.ID)
	if final != domain.DeliverySent && final != domain.DeliveryFailed {
		t.Fatalf("expected a terminal state, got %s", final)
	}

	switch final {
	case domain.DeliverySent:
		if sentErr != nil {
			t.Fatalf("winner reported error: %v", sentErr)
		}
		if !errors.Is(failedErr, domain.ErrInvalidDeliveryTransition) {
			t.Fatalf("expected losing callback to fail, got %v", failedErr)
		}
	case domain.DeliveryFailed:
		if failedErr != nil {
			t.Fatalf("winner reported error: %v", failedErr)
		}
		if !errors.Is(sentErr, domain.ErrInvalidDeliveryTransition) {
			t.Fatalf("expected losing callback to fail, got %v", sentErr)
		}
	}
}
