package paypalx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	contractx "github.com/wearly/concierge/agent/contract"
)

const maxResponseSizeBytes = 1 << 20

type Config struct {
	URL      string        `split_words:"true" required:"true"`
	ClientID string        `split_words:"true" required:"true"`
	Secret   string        `split_words:"true" required:"true"`
	Timeout  time.Duration `split_words:"true" default:"10s"`
}

// Client is a thin REST client for the payment gateway's capture endpoint.
type Client struct {
	baseURL    string
	clientID   string
	secret     string
	httpClient *http.Client
}

var _ contractx.PaymentGateway = (*Client)(nil)

func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.URL)
	if baseURL == "" {
		return nil, errors.New("paypal url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.ClientID) == "" {
		return nil, errors.New("paypal client id is required")
	}
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, errors.New("paypal secret is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		clientID: strings.TrimSpace(cfg.ClientID),
		secret:   strings.TrimSpace(cfg.Secret),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

func MustNew(cfg Config) *Client {
	client, err := NewClient(cfg)
	if err != nil {
		panic(err)
	}
	return client
}

type captureRequest struct {
	PaymentID string         `json:"payment_id"`
	Amount    float64        `json:"amount"`
	Currency  string         `json:"currency"`
	Details   map[string]any `json:"details,omitempty"`
}

type captureResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Capture settles an initiated payment. The returned status is normalized
// to "success" or "failed".
func (c *Client) Capture(ctx context.Context, paymentID string, amount float64, currency string, details map[string]any) (string, error) {
	if strings.TrimSpace(paymentID) == "" {
		return "", fmt.Errorf("%w: payment id is empty", contractx.ErrValidation)
	}

	body, err := json.Marshal(captureRequest{
		PaymentID: paymentID,
		Amount:    amount,
		Currency:  currency,
		Details:   details,
	})
	if err != nil {
		return "", fmt.Errorf("marshal capture request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/payments/captures", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build capture request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.secret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: capture: %v", contractx.ErrTimeout, err)
		}
		return "", fmt.Errorf("%w: capture: %v", contractx.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return "", fmt.Errorf("read capture response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("%w: capture status=%d body=%s", contractx.ErrUnavailable, resp.StatusCode, string(raw))
	}

	var parsed captureResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode capture response: %w", err)
	}
	if parsed.Error != "" {
		return "failed", nil
	}
	if strings.EqualFold(parsed.Status, "COMPLETED") || strings.EqualFold(parsed.Status, "success") {
		return "success", nil
	}
	return "failed", nil
}
