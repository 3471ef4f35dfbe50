package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/resy-notifier/internal/config"
	"github.com/example/resy-notifier/internal/errs"
)

// Message is one outbound SMS.
type Message struct {
	To   string
	From string
	Body string
}

// Transport dispatches messages to recipients.
type Transport interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// TwilioProvider posts to the Twilio Messages API with basic auth.
type TwilioProvider struct {
	baseURL    string
	accountSID string
	authToken  string
	client     *http.Client
}

// NewTwilioProvider validates credentials up front: missing credentials are a
// setup failure for every worker, not a per-message error.
func NewTwilioProvider(cfg config.TwilioConfig) (*TwilioProvider, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return nil, &errs.SetupError{
			What: "transport",
			Err:  errors.New("TWILIO_ACCOUNT_SID and TWILIO_AUTH_TOKEN are required"),
		}
	}

	timeout := time.Duration(cfg.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &TwilioProvider{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		client:     &http.Client{Timeout: timeout},
	}, nil
}

func (p *TwilioProvider) Name() string { return "twilio" }

func (p *TwilioProvider) Send(ctx context.Context, msg Message) error {
	form := url.Values{}
	form.Set("To", msg.To)
	form.Set("From", msg.From)
	form.Set("Body", msg.Body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", p.baseURL, p.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(p.accountSID, p.authToken)

	res, err := p.client.Do(req)
	if err != nil {
		return err
	}

	defer res.Body.Close()

	if res.StatusCode/100 != 2 {
		return fmt.Errorf("provider=%s to=%s status=%d", p.Name(), msg.To, res.StatusCode)
	}

	return nil
}
