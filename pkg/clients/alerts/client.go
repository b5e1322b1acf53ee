package alerts

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/ecovolt-ph/ecovolt-backend/internal/config"
)

// Notifier delivers threshold alerts to the operators' webhook.
type Notifier interface {
	SendAlert(ctx context.Context, alert Alert) error
}

// Alert is the payload posted to the webhook.
type Alert struct {
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	Value     float64   `json:"value"`
	Threshold float64   `json:"threshold"`
	At        time.Time `json:"at"`
}

// WebhookClient is a resty-backed implementation of Notifier.
type WebhookClient struct {
	httpClient *resty.Client
	url        string
}

// NewWebhookClient builds an alert client using the provided configuration.
func NewWebhookClient(cfg config.AlertsConfig) *WebhookClient {
	restyClient := resty.New()
	restyClient.
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &WebhookClient{
		httpClient: restyClient,
		url:        cfg.WebhookURL,
	}
}

// SendAlert posts the alert payload to the configured webhook.
func (c *WebhookClient) SendAlert(ctx context.Context, alert Alert) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(alert).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("send alert webhook: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("alert webhook error: status=%d body=%s", resp.StatusCode(), resp.String())
	}

	return nil
}
