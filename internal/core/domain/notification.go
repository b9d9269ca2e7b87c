package domain

import "time"

// NotificationType distinguishes the two signals a push can carry.
type NotificationType string

const (
	NotificationCallInvite NotificationType = "call-invite"
	NotificationMessage    NotificationType = "message"
)

// DeliveryState represents the delivery outcome recorded on a draft.
type DeliveryState string

const (
	DeliveryPending DeliveryState = "pending"
	DeliverySent    DeliveryState = "sent"
	DeliveryFailed  DeliveryState = "failed"
)

// validDeliveryTransitions defines the allowed state machine transitions.
// Both terminal states are absorbing.
var validDeliveryTransitions = map[DeliveryState][]DeliveryState{
	DeliveryPending: {DeliverySent, DeliveryFailed},
}

// CanTransitionTo reports whether a transition from the current state to next is valid.
func (s DeliveryState) CanTransitionTo(next DeliveryState) bool {
	for _, allowed := range validDeliveryTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// CallInviteBody is the fixed notification body for call invitations.
const CallInviteBody = "Incoming call invitation"

// NotificationDraft is an immutable delivery record built once per signaling
// event. Only DeliveryState and DeliveryError change after construction, and
// they transition exactly once from pending to a terminal state. A caller that
// wants a retry must construct a new draft.
type NotificationDraft struct {
	ID            string           `json:"id" bson:"_id,omitempty"`
	Type          NotificationType `json:"type" bson:"type"`
	SenderID      string           `json:"sender_id" bson:"sender_id"`
	ReceiverID    string           `json:"receiver_id" bson:"receiver_id"`
	Title         string           `json:"title" bson:"title"`
	Body          string           `json:"body" bson:"body"`
	SessionCode   string           `json:"session_code,omitempty" bson:"session_code,omitempty"`
	MediaToken    string           `json:"media_token,omitempty" bson:"media_token,omitempty"`
	MessageID     string           `json:"message_id,omitempty" bson:"message_id,omitempty"`
	PushAddress   string           `json:"-" bson:"push_address"`
	DeliveryState DeliveryState    `json:"delivery_state" bson:"delivery_state"`
	DeliveryError string           `json:"delivery_error,omitempty" bson:"delivery_error,omitempty"`
	CreatedAt     time.Time        `json:"created_at" bson:"created_at"`
}

// DraftNotification builds a pending draft from a call-invite or message
// event. It performs no I/O; a failure is returned as an error and is never
// representable as a valid draft.
//
// For call invites the body is the fixed invitation text and both sessionCode
// and mediaToken are required. For messages the body is the last line of the
// message text and the draft references the originating message record.
func DraftNotification(
	kind NotificationType,
	sender *User,
	receiver *User,
	sessionCode string,
	mediaToken string,
	msg *Message,
) (*NotificationDraft, error) {
	if sender == nil || receiver == nil {
		return nil, ErrMissingField
	}
	if !receiver.HasPushAddress() {
		return nil, ErrNoPushAddress
	}

	draft := &NotificationDraft{
		Type:          kind,
		SenderID:      sender.ID,
		ReceiverID:    receiver.ID,
		Title:         sender.Name,
		PushAddress:   receiver.FCMToken,
		DeliveryState: DeliveryPending,
		CreatedAt:     time.Now().UTC(),
	}

	switch kind {
	case NotificationCallInvite:
		if sessionCode == "" || mediaToken == "" {
			return nil, ErrMissingSignalingData
		}
		draft.Body = CallInviteBody
		draft.SessionCode = sessionCode
		draft.MediaToken = mediaToken
	case NotificationMessage:
		if msg == nil {
			return nil, ErrMissingField
		}
		draft.Body = msg.LastMessage()
		draft.MessageID = msg.ID
	default:
		return nil, ErrInvalidNotificationType
	}

	return draft, nil
}

// MarkSent records a successful delivery. Calling it on a draft already
// marked sent is a no-op; calling it on a failed draft is an invalid
// transition, so a late duplicate callback cannot overwrite a recorded failure.
func (d *NotificationDraft) MarkSent() error {
	if d.DeliveryState == DeliverySent {
		return nil
	}
	if !d.DeliveryState.CanTransitionTo(DeliverySent) {
		return ErrInvalidDeliveryTransition
	}
	d.DeliveryState = DeliverySent
	d.DeliveryError = ""
	return nil
}

// MarkFailed records a failed delivery with its cause. Idempotent on a draft
// already marked failed; invalid on a draft already marked sent.
func (d *NotificationDraft) MarkFailed(cause error) error {
	if d.DeliveryState == DeliveryFailed {
		return nil
	}
	if !d.DeliveryState.CanTransitionTo(DeliveryFailed) {
		return ErrInvalidDeliveryTransition
	}
	d.DeliveryState = DeliveryFailed
	if cause != nil {
		d.DeliveryError = cause.Error()
	}
	return nil
}
