// Package browser drives a headless Chrome through the WebDriver wire
// protocol: a local chromedriver in amd64 mode, a remote Selenium grid hub in
// arch mode. One session is held per worker for its batch's whole lifetime.
package browser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/example/resy-notifier/internal/config"
)

// element ID key fixed by the W3C WebDriver spec
const elementKey = "element-6066-11e4-a52e-4f735466cecf"

var chromeArgs = []string{"--headless", "--no-sandbox", "--disable-dev-shm-usage"}

type Session struct {
	hc   *http.Client
	base string
	id   string

	closeOnce sync.Once
	closeErr  error
}

// NewSession opens a WebDriver session against the endpoint selected by the
// browser config and applies the page-load timeout.
func NewSession(ctx context.Context, cfg config.BrowserConfig) (*Session, error) {
	endpoint, err := cfg.Endpoint()
	if err != nil {
		return nil, err
	}

	s := &Session{
		hc:   &http.Client{Timeout: cfg.PageLoadTimeout + 10*time.Second},
		base: strings.TrimRight(endpoint, "/"),
	}

	caps := map[string]any{
		"capabilities": map[string]any{
			"alwaysMatch": map[string]any{
				"browserName": "chrome",
				"goog:chromeOptions": map[string]any{
					"args": chromeArgs,
				},
			},
		},
	}

	var created struct {
		Value struct {
			SessionID string `json:"sessionId"`
		} `json:"value"`
	}
	if err := s.do(ctx, http.MethodPost, "/session", caps, &created); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	if created.Value.SessionID == "" {
		return nil, fmt.Errorf("create session: no session id in response")
	}
	s.id = created.Value.SessionID

	timeouts := map[string]any{"pageLoad": cfg.PageLoadTimeout.Milliseconds()}
	if err := s.do(ctx, http.MethodPost, s.path("/timeouts"), timeouts, nil); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("set timeouts: %w", err)
	}

	return s, nil
}

// Navigate loads url and blocks until the page-load timeout.
func (s *Session) Navigate(ctx context.Context, url string) error {
	return s.do(ctx, http.MethodPost, s.path("/url"), map[string]any{"url": url}, nil)
}

// ElementsText returns the visible text of every element matching the CSS
// selector, in page order.
func (s *Session) ElementsText(ctx context.Context, selector string) ([]string, error) {
	ids, err := s.findElements(ctx, selector)
	if err != nil {
		return nil, err
	}

	texts := make([]string, 0, len(ids))
	for _, id := range ids {
		var res struct {
			Value string `json:"value"`
		}
		if err := s.do(ctx, http.MethodGet, s.path("/element/"+id+"/text"), nil, &res); err != nil {
			return nil, err
		}
		texts = append(texts, res.Value)
	}
	return texts, nil
}

// WaitFor polls until at least one element matches the selector or the wait
// times out. The original page renders its slot buttons only after the venue
// container appears.
func (s *Session) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		ids, err := s.findElements(ctx, selector)
		if err == nil && len(ids) > 0 {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timed out waiting for %q", selector)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(250 * time.Millisecond):
		}
	}
}

// Close releases the session. Safe to call more than once; only the first
// call talks to the driver.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.closeErr = s.do(ctx, http.MethodDelete, s.path(""), nil, nil)
	})
	return s.closeErr
}

func (s *Session) path(suffix string) string {
	return "/session/" + s.id + suffix
}

func (s *Session) findElements(ctx context.Context, selector string) ([]string, error) {
	body := map[string]any{"using": "css selector", "value": selector}

	var res struct {
		Value []map[string]string `json:"value"`
	}
	if err := s.do(ctx, http.MethodPost, s.path("/elements"), body, &res); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(res.Value))
	for _, el := range res.Value {
		if id, ok := el[elementKey]; ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *Session) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.base+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := s.hc.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	b, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}
	if res.StatusCode >= 400 {
		// webdriver errors carry {"value":{"error":..., "message":...}}
		var werr struct {
			Value struct {
				Error   string `json:"error"`
				Message string `json:"message"`
			} `json:"value"`
		}
		_ = json.Unmarshal(b, &werr)
		if werr.Value.Error != "" {
			return fmt.Errorf("webdriver %s: %s", werr.Value.Error, werr.Value.Message)
		}
		return fmt.Errorf("webdriver status %d", res.StatusCode)
	}

	if out != nil {
		return json.Unmarshal(b, out)
	}
	return nil
}
