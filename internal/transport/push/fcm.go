// Package push delivers mobile push notifications through FCM's legacy
// server-key HTTP endpoint: a struct holding an HTTP client plus
// credentials, one Send method. See DESIGN.md for why this uses plain
// net/http rather than an SDK.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/iamprecieee/distributed-notification-system/internal/transport"
)

const fcmSendURL = "https://fcm.googleapis.com/fcm/send"

type Pusher interface {
	Send(ctx context.Context, p Push) error
}

type Push struct {
	DeviceToken string
	Title       string
	Body        string
	Data        map[string]string
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type fcmPayload struct {
	To           string            `json:"to"`
	Notification fcmNotification   `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

type Client struct {
	serverKey string
	client    *http.Client
}

func NewClient(serverKey string) *Client {
	return &Client{serverKey: serverKey, client: &http.Client{Timeout: 10 * time.Second}}
}

func (c *Client) Send(ctx context.Context, p Push) error {
	payload := fcmPayload{
		To: p.DeviceToken,
		Notification: fcmNotification{
			Title: p.Title,
			Body:  p.Body,
		},
		Data: p.Data,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return transport.NonRetryable(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fcmSendURL, bytes.NewReader(body))
	if err != nil {
		return transport.NonRetryable(err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("key=%s", c.serverKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return transport.Retryable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return transport.FromStatusCode(resp.StatusCode, string(respBody))
	}
	return nil
}
