// Package push provides the FCM implementation of ports.PushSender.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/visioncall/calling-api/internal/core/ports"
)

const (
	defaultEndpoint = "https://fcm.googleapis.com/fcm/send"
	defaultTimeout  = 10 * time.Second
)

// FCMSender delivers push notifications through the FCM HTTP API. The data
// payload carries the draft fields; the client app renders the notification
// from them.
type FCMSender struct {
	endpoint  string
	serverKey string
	client    *http.Client
}

// NewFCMSender creates an FCMSender. Empty endpoint falls back to the FCM
// default; a non-positive timeout falls back to 10s.
func NewFCMSender(endpoint, serverKey string, timeout time.Duration) *FCMSender {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &FCMSender{
		endpoint:  endpoint,
		serverKey: serverKey,
		client:    &http.Client{Timeout: timeout},
	}
}

type fcmRequest struct {
	To   string            `json:"to"`
	Data ports.PushPayload `json:"data"`
}

func (s *FCMSender) Send(ctx context.Context, deviceAddress string, payload ports.PushPayload) error {
	body, err := json.Marshal(fcmRequest{To: deviceAddress, Data: payload})
	if err != nil {
		return fmt.Errorf("fcm send: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("fcm send: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+s.serverKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("fcm send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("fcm send: status %d: %s", resp.StatusCode, detail)
	}
	return nil
}
