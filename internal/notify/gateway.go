package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Sender delivers one text to a batch of recipients.
type Sender interface {
	SendMessage(ctx context.Context, phones []string, text string) (*GatewayResult, error)
}

type GatewayMessage struct {
	Mobile string `json:"mobile"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type GatewayResult struct {
	Success bool `json:"success"`
	Result  *struct {
		Messages []GatewayMessage `json:"messages"`
	} `json:"result,omitempty"`
	Error string `json:"error,omitempty"`
}

type HTTPGateway struct {
	url        string
	token      string
	senderID   string
	httpClient *http.Client
}

func NewHTTPGateway(url, token, senderID string, timeout time.Duration) *HTTPGateway {
	return &HTTPGateway{
		url:      url,
		token:    token,
		senderID: senderID,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

type sendRequest struct {
	Phone    string `json:"phone"`
	Message  string `json:"message"`
	SenderID string `json:"sender_id,omitempty"`
}

func (g *HTTPGateway) SendMessage(ctx context.Context, phones []string, text string) (*GatewayResult, error) {
	body, err := json.Marshal(sendRequest{
		Phone:    strings.Join(phones, ","),
		Message:  text,
		SenderID: g.senderID,
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrGatewayUnavailable, resp.StatusCode)
	}

	var out GatewayResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrGatewayUnavailable, err)
	}
	return &out, nil
}

// LogSender stands in when no gateway is configured.
type LogSender struct {
	Log *slog.Logger
}

func (s LogSender) SendMessage(_ context.Context, phones []string, text string) (*GatewayResult, error) {
	l := s.Log
	if l == nil {
		l = slog.Default()
	}
	l.Info("sms_not_sent", "reason", "gateway disabled", "recipients", phones, "chars", len(text))
	return &GatewayResult{Success: true}, nil
}
