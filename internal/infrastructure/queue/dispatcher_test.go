package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/visioncall/calling-api/internal/core/domain"
	"github.com/visioncall/calling-api/internal/core/ports"
)

type stubPushSender struct {
	mu      sync.Mutex
	sent    []ports.PushPayload
	devices []string
	err     error
}

func (s *stubPushSender) Send(_ context.Context, deviceAddress string, payload ports.PushPayload) error {
	s.mu.Lock()
	s.sent = append(s.sent, payload)
	s.devices = append(s.devices, deviceAddress)
	err := s.err
	s.mu.Unlock()
	return err
}

type stubRecorder struct {
	mu     sync.Mutex
	sent   []string
	failed []string
	causes []string
	done   chan struct{}
}

func newStubRecorder(expected int) *stubRecorder {
	return &stubRecorder{done: make(chan struct{}, expected)}
}

func (r *stubRecorder) MarkSent(_ context.Context, draft *domain.NotificationDraft) error {
	r.mu.Lock()
	r.sent = append(r.sent, draft.ID)
	r.mu.Unlock()
	r.done <- struct{}{}
	return nil
}

func (r *stubRecorder) MarkFailed(_ context.Context, draft *domain.NotificationDraft, cause error) error {
	r.mu.Lock()
	r.failed = append(r.failed, draft.ID)
	r.causes = append(r.causes, cause.Error())
	r.mu.Unlock()
	r.done <- struct{}{}
	return nil
}

func waitFor(t *testing.T, ch <-chan struct{}, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-ch:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for delivery %d of %d", i+1, n)
		}
	}
}

func testDraft(id, receiverID string) *domain.NotificationDraft {
	return &domain.NotificationDraft{
		ID:            id,
		Type:          domain.NotificationCallInvite,
		SenderID:      "u1",
		ReceiverID:    receiverID,
		Title:         "Ann",
		Body:          domain.CallInviteBody,
		SessionCode:   "room-7",
		MediaToken:    "tok",
		PushAddress:   "fcm-" + receiverID,
		DeliveryState: domain.DeliveryPending,
	}
}

func TestDispatcherDeliversAndMarksSent(t *testing.T) {
	sender := &stubPushSender{}
	recorder := newStubRecorder(1)
	d := NewDispatcher(4, sender, recorder, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Enqueue(testDraft("n1", "u2"))
	waitFor(t, recorder.done, 1)

	sender.mu.Lock()
	defer sender.mu.Unlock()
	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 push, got %d", len(sender.sent))
	}
	if sender.devices[0] != "fcm-u2" {
		t.Errorf("pushed to %q, want fcm-u2", sender.devices[0])
	}
	payload := sender.sent[0]
	if payload.Type != "call-invite" || payload.Body != domain.CallInviteBody {
		t.Errorf("unexpected payload %+v", payload)
	}
	if payload.SessionCode != "room-7" || payload.MediaToken != "tok" {
		t.Errorf("signaling fields missing from payload %+v", payload)
	}

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	if len(recorder.sent) != 1 || recorder.sent[0] != "n1" {
		t.Errorf("expected n1 marked sent, got %v", recorder.sent)
	}
	if len(recorder.failed) != 0 {
		t.Errorf("unexpected failures: %v", recorder.failed)
	}
}

func TestDispatcherRecordsFailure(t *testing.T) {
	sender := &stubPushSender{}
	sender.err = errors.New("device unreachable")
	recorder := newStubRecorder(1)
	d := NewDispatcher(4, sender, recorder, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Enqueue(testDraft("n2", "u3"))
	waitFor(t, recorder.done, 1)

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	if len(recorder.failed) != 1 || recorder.failed[0] != "n2" {
		t.Fatalf("expected n2 marked failed, got %v", recorder.failed)
	}
	if recorder.causes[0] != "device unreachable" {
		t.Errorf("cause = %q", recorder.causes[0])
	}
	if len(recorder.sent) != 0 {
		t.Errorf("unexpected successes: %v", recorder.sent)
	}
}

func TestDispatcherShardsByReceiver(t *testing.T) {
	d := NewDispatcher(4, &stubPushSender{}, newStubRecorder(0), zerolog.Nop())

	// Same receiver always lands on the same worker.
	first := d.shardIndex("u9")
	for i := 0; i < 10; i++ {
		if got := d.shardIndex("u9"); got != first {
			t.Fatalf("shardIndex not deterministic: %d vs %d", got, first)
		}
	}
}

func TestDispatcherPreservesPerReceiverOrder(t *testing.T) {
	const n = 20
	sender := &stubPushSender{}
	recorder := newStubRecorder(n)
	d := NewDispatcher(4, sender, recorder, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	ids := make([]string, n)
	for i := range ids {
		ids[i] = "n" + string(rune('a'+i))
		d.Enqueue(testDraft(ids[i], "u2"))
	}
	waitFor(t, recorder.done, n)

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	for i, id := range ids {
		if recorder.sent[i] != id {
			t.Fatalf("delivery order broken at %d: got %q want %q", i, recorder.sent[i], id)
		}
	}
}
