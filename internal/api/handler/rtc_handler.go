package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/visioncall/calling-api/internal/api/metrics"
	"github.com/visioncall/calling-api/internal/core/ports"
)

// RTCHandler handles call setup.
type RTCHandler struct {
	notifications ports.NotificationService
	tokens        ports.MediaTokenProvider
	dispatcher    NotificationDispatcher
}

func NewRTCHandler(notifications ports.NotificationService, tokens ports.MediaTokenProvider, dispatcher NotificationDispatcher) *RTCHandler {
	return &RTCHandler{
		notifications: notifications,
		tokens:        tokens,
		dispatcher:    dispatcher,
	}
}

// Call starts a call: mints media tokens for both parties, drafts the
// call-invite notification carrying the callee's token, and queues it for
// push delivery. The caller's token comes back in the response so the client
// can join the session immediately.
//
// @Summary      Start a call
// @Tags         rtc
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      callRequest  true  "Receiver and session code"
// @Success      201   {object}  callResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /rtc/call [post]
func (h *RTCHandler) Call(c echo.Context) error {
	callerID, _, err := ctxAccount(c)
	if err != nil {
		return err
	}

	var req callRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	calleeToken, err := h.tokens.MintToken(req.SessionCode, req.ReceiverID)
	if err != nil {
		return err
	}
	callerToken, err := h.tokens.MintToken(req.SessionCode, callerID)
	if err != nil {
		return err
	}

	draft, err := h.notifications.CreateCallInvite(c.Request().Context(), callerID, req.ReceiverID, req.SessionCode, calleeToken)
	if err != nil {
		return err
	}
	metrics.NotificationsDraftedTotal.WithLabelValues(string(draft.Type)).Inc()
	h.dispatcher.Enqueue(draft)

	return c.JSON(http.StatusCreated, callResponse{
		Notification: draft,
		SessionCode:  req.SessionCode,
		MediaToken:   callerToken,
	})
}
