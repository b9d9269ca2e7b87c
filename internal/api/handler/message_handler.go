package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/visioncall/calling-api/internal/api/metrics"
	"github.com/visioncall/calling-api/internal/core/domain"
	"github.com/visioncall/calling-api/internal/core/ports"
)

// NotificationDispatcher is the interface the handlers use to hand drafts to
// the delivery workers.
type NotificationDispatcher interface {
	Enqueue(draft *domain.NotificationDraft)
}

// MessageHandler handles chat message sending.
type MessageHandler struct {
	messages      ports.MessageService
	notifications ports.NotificationService
	dispatcher    NotificationDispatcher
	log           zerolog.Logger
}

func NewMessageHandler(messages ports.MessageService, notifications ports.NotificationService, dispatcher NotificationDispatcher, log zerolog.Logger) *MessageHandler {
	return &MessageHandler{
		messages:      messages,
		notifications: notifications,
		dispatcher:    dispatcher,
		log:           log,
	}
}

// Send persists a chat message and queues a push notification for the
// receiver. The message survives even when the receiver has no registered
// device: persistence succeeds, the push is skipped.
//
// @Summary      Send a chat message
// @Tags         msg
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      sendMessageRequest  true  "Receiver and text"
// @Success      201   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /msg/send [post]
func (h *MessageHandler) Send(c echo.Context) error {
	senderID, _, err := ctxAccount(c)
	if err != nil {
		return err
	}

	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	msg, err := h.messages.Send(ctx, senderID, req.ReceiverID, req.Text)
	if err != nil {
		return err
	}

	draft, err := h.notifications.CreateMessageNotification(ctx, msg)
	if err != nil {
		// The message is already stored; an undeliverable receiver must not
		// fail the send.
		if errors.Is(err, domain.ErrNoPushAddress) {
			h.log.Warn().
				Str("message_id", msg.ID).
				Str("receiver_id", msg.ReceiverID).
				Msg("receiver has no push address, notification skipped")
			return c.JSON(http.StatusCreated, messageResponse{Message: msg})
		}
		return err
	}
	metrics.NotificationsDraftedTotal.WithLabelValues(string(draft.Type)).Inc()
	h.dispatcher.Enqueue(draft)

	return c.JSON(http.StatusCreated, messageResponse{Message: msg, Notification: draft})
}
