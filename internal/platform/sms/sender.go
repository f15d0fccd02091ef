// Package sms delivers one-time passwords to mobile numbers.
package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"polygreen-backend/internal/common/logger"
)

// Sender delivers a text message to a mobile number. Only the pass/fail
// contract matters to callers; a delivery failure never invalidates an
// already-stored OTP.
type Sender interface {
	Send(ctx context.Context, mobile, text string) error
}

const vonageEndpoint = "https://rest.nexmo.com/sms/json"

// VonageSender sends SMS through the Vonage REST API.
type VonageSender struct {
	apiKey    string
	apiSecret string
	from      string
	client    *http.Client
}

func NewVonageSender(apiKey, apiSecret, from string) *VonageSender {
	return &VonageSender{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		from:      from,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

type vonageResponse struct {
	Messages []struct {
		Status    string `json:"status"`
		ErrorText string `json:"error-text"`
	} `json:"messages"`
}

func (s *VonageSender) Send(ctx context.Context, mobile, text string) error {
	form := url.Values{}
	form.Set("api_key", s.apiKey)
	form.Set("api_secret", s.apiSecret)
	form.Set("from", s.from)
	form.Set("to", mobile)
	form.Set("text", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, vonageEndpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build SMS request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call Vonage: %w", err)
	}
	defer resp.Body.Close()

	var body vonageResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("failed to decode Vonage response: %w", err)
	}

	if len(body.Messages) == 0 {
		return fmt.Errorf("empty Vonage response")
	}
	// Status "0" means accepted for delivery.
	if body.Messages[0].Status != "0" {
		return fmt.Errorf("vonage rejected message: %s", body.Messages[0].ErrorText)
	}

	return nil
}

// NoopSender is used when Vonage credentials are missing. OTPs are still
// generated and stored; they just never leave the server.
type NoopSender struct{}

func (NoopSender) Send(_ context.Context, mobile, _ string) error {
	logger.Warn().Str("mobile", mobile).Msg("SMS service unavailable, OTP not delivered")
	return nil
}
