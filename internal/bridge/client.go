// Package bridge is the client for the external WhatsApp delivery bridge.
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	apperrors "vigia/internal/common/errors"
	"vigia/internal/common/httpclient"
	"vigia/internal/common/logger"
	"vigia/internal/common/metrics"
)

type sendRequest struct {
	Recipient string `json:"recipient"`
	Message   string `json:"message"`
}

type sendResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type Client struct {
	baseURL string
	http    *httpclient.Client
	logger  logger.Logger
}

func NewClient(baseURL string, timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    httpclient.NewClient(timeout),
		logger:  log.WithFields(map[string]interface{}{"component": "bridge"}),
	}
}

// Send transmits a text message to a phone number through the bridge. The
// call is synchronous; a non-success acknowledgment is a SEND_FAILURE.
func (c *Client) Send(ctx context.Context, recipient, message string) error {
	if c.baseURL == "" {
		return apperrors.NewSendFailure(recipient, fmt.Errorf("bridge URL not configured"))
	}

	payload, err := json.Marshal(sendRequest{Recipient: recipient, Message: message})
	if err != nil {
		return apperrors.NewSendFailure(recipient, err)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/api/send", bytes.NewReader(payload))
	if err != nil {
		return apperrors.NewSendFailure(recipient, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.DoWithContext(ctx, req)
	metrics.ExternalCallDuration.WithLabelValues("bridge").Observe(time.Since(start).Seconds())
	if err != nil {
		return apperrors.NewTransportError("bridge", err)
	}
	defer resp.Body.Close()

	var ack sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return apperrors.NewSendFailure(recipient, err)
	}

	if !ack.Success {
		c.logger.Warn("bridge rejected message", map[string]interface{}{
			"recipient": recipient,
			"reason":    ack.Message,
		})
		return apperrors.NewSendFailure(recipient, fmt.Errorf("bridge: %s", ack.Message))
	}

	c.logger.Info("message delivered via bridge", map[string]interface{}{
		"recipient": recipient,
	})
	return nil
}
