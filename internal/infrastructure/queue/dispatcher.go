package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/visioncall/calling-api/internal/api/metrics"
	"github.com/visioncall/calling-api/internal/core/domain"
	"github.com/visioncall/calling-api/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// DeliveryRecorder persists the outcome of a delivery attempt.
type DeliveryRecorder interface {
	MarkSent(ctx context.Context, draft *domain.NotificationDraft) error
	MarkFailed(ctx context.Context, draft *domain.NotificationDraft, cause error) error
}

// Dispatcher routes notification drafts to a fixed set of workers using
// consistent hashing on the receiver ID, guaranteeing per-receiver delivery
// ordering.
type Dispatcher struct {
	workers  []chan *domain.NotificationDraft
	sender   ports.PushSender
	recorder DeliveryRecorder
	log      zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, sender ports.PushSender, recorder DeliveryRecorder, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:  make([]chan *domain.NotificationDraft, numWorkers),
		sender:   sender,
		recorder: recorder,
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan *domain.NotificationDraft, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends a draft to the worker responsible for its receiver.
// The call is non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(draft *domain.NotificationDraft) {
	i := d.shardIndex(draft.ReceiverID)
	d.workers[i] <- draft
	metrics.NotificationsQueueDepth.WithLabelValues(strconv.Itoa(i)).Set(float64(len(d.workers[i])))
}

// shardIndex maps a receiver ID deterministically to a worker index.
func (d *Dispatcher) shardIndex(receiverID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(receiverID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan *domain.NotificationDraft) {
	for {
		select {
		case <-ctx.Done():
			return
		case draft, ok := <-ch:
			if !ok {
				return
			}
			metrics.NotificationsQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(float64(len(ch)))
			d.deliver(ctx, id, draft)
		}
	}
}

// deliver pushes one draft and records the outcome. Delivery errors are
// recorded on the draft, never propagated.
func (d *Dispatcher) deliver(ctx context.Context, workerID int, draft *domain.NotificationDraft) {
	start := time.Now()
	err := d.sender.Send(ctx, draft.PushAddress, buildPayload(draft))
	if err != nil {
		metrics.PushDeliveryDuration.WithLabelValues("failed").Observe(time.Since(start).Seconds())
		metrics.NotificationsFailedTotal.WithLabelValues(string(draft.Type)).Inc()
		d.log.Error().Err(err).
			Str("notification_id", draft.ID).
			Str("type", string(draft.Type)).
			Int("worker_id", workerID).
			Msg("push delivery failed")
		if recErr := d.recorder.MarkFailed(ctx, draft, err); recErr != nil {
			d.log.Error().Err(recErr).
				Str("notification_id", draft.ID).
				Msg("recording delivery failure failed")
		}
		return
	}

	metrics.PushDeliveryDuration.WithLabelValues("sent").Observe(time.Since(start).Seconds())
	metrics.NotificationsSentTotal.WithLabelValues(string(draft.Type)).Inc()
	if recErr := d.recorder.MarkSent(ctx, draft); recErr != nil {
		d.log.Error().Err(recErr).
			Str("notification_id", draft.ID).
			Msg("recording delivery success failed")
	}
}

func buildPayload(draft *domain.NotificationDraft) ports.PushPayload {
	return ports.PushPayload{
		Title:       draft.Title,
		Body:        draft.Body,
		Type:        string(draft.Type),
		SenderID:    draft.SenderID,
		ReceiverID:  draft.ReceiverID,
		SessionCode: draft.SessionCode,
		MediaToken:  draft.MediaToken,
		MessageID:   draft.MessageID,
	}
}
