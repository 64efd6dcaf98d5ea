// Package sms delivers login codes. Delivery is fire-and-forget: callers log failures.
package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bizchat/internal/config"
	"github.com/bizchat/internal/logger"
)

const smscEndpoint = "https://smsc.ru/sys/send.php"

type Sender interface {
	SendCode(ctx context.Context, phone, code string) error
	// Dev reports that codes are not really delivered and may be returned to the client.
	Dev() bool
}

// New picks SMSC when an API key is configured, LogSender otherwise.
func New(cfg *config.SMSConfig) Sender {
	if cfg.APIKey == "" {
		return LogSender{}
	}
	return &SMSCSender{
		login:    cfg.Login,
		password: cfg.APIKey,
		endpoint: smscEndpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func messageText(code string) string {
	return "BizChat код: " + code
}

// LogSender writes the code to the log instead of sending it.
type LogSender struct{}

func (LogSender) SendCode(ctx context.Context, phone, code string) error {
	logger.Infof("[DEV MODE] SMS to %s: %s", phone, messageText(code))
	return nil
}

func (LogSender) Dev() bool { return true }

type SMSCSender struct {
	login    string
	password string
	endpoint string
	client   *http.Client
}

func (s *SMSCSender) Dev() bool { return false }

func (s *SMSCSender) SendCode(ctx context.Context, phone, code string) error {
	form := url.Values{
		"login":  {s.login},
		"psw":    {s.password},
		"phones": {phone},
		"mes":    {messageText(code)},
		"fmt":    {"3"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("sms: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms: send: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sms: provider status %d", resp.StatusCode)
	}
	// fmt=3 answers JSON; an "error" field means the message was rejected.
	var out struct {
		ID    int64  `json:"id"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return fmt.Errorf("sms: decode response: %w", err)
	}
	if out.Error != "" {
		return fmt.Errorf("sms: provider error: %s", out.Error)
	}
	logger.Infof("sms: sent to %s id=%d", phone, out.ID)
	return nil
}
