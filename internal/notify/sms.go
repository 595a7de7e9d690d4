package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SmsTransport delivers one text message.
type SmsTransport interface {
	Send(ctx context.Context, phone, text string) error
}

type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	From       string
	BaseURL    string
}

type twilioTransport struct {
	cfg    TwilioConfig
	client *http.Client
}

// NewTwilioTransport returns an SmsTransport backed by the Twilio
// Messages REST API.
func NewTwilioTransport(cfg TwilioConfig) SmsTransport {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.twilio.com"
	}
	return &twilioTransport{
		cfg:    cfg,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (t *twilioTransport) Send(ctx context.Context, phone, text string) error {
	form := url.Values{}
	form.Set("To", phone)
	form.Set("From", t.cfg.From)
	form.Set("Body", text)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", t.cfg.BaseURL, t.cfg.AccountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build sms request: %w", err)
	}
	req.SetBasicAuth(t.cfg.AccountSID, t.cfg.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms send to %s failed: %w", phone, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sms provider returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
