// Package suggest fetches content ideas from an external generator. The
// core treats the results as opaque: nothing here is validated beyond the
// request itself.
package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"

	"github.com/ganeshsabale-99/DMP-Project/internal/domain"
	"github.com/ganeshsabale-99/DMP-Project/pkg/clients"
)

const (
	DefaultCount = 3
	MaxCount     = 10
)

type Request struct {
	Topic    string          `json:"topic"`
	Platform domain.Platform `json:"platform"`
	Tone     string          `json:"tone,omitempty"`
	Count    int             `json:"count,omitempty"`
}

// Normalize defaults the count and canonicalises the platform
func (r *Request) Normalize() {
	r.Topic = strings.TrimSpace(r.Topic)
	if p, err := domain.ParsePlatform(string(r.Platform)); err == nil {
		r.Platform = p
	}
	switch {
	case r.Count <= 0:
		r.Count = DefaultCount
	case r.Count > MaxCount:
		r.Count = MaxCount
	}
}

func (r Request) Validate() error {
	if r.Topic == "" {
		return fmt.Errorf("%w: topic is required", domain.ErrInvalidInput)
	}
	_, err := domain.ParsePlatform(string(r.Platform))
	return err
}

type Suggestion struct {
	Variations          []string          `json:"variations"`
	Hashtags            []string          `json:"hashtags"`
	PredictedEngagement domain.Engagement `json:"predictedEngagement"`
}

type Suggester interface {
	Suggest(ctx context.Context, req Request) (Suggestion, error)
}

// HTTPClient calls a JSON endpoint that accepts a Request and answers
// with a Suggestion.
type HTTPClient struct {
	url      string
	client   *http.Client
	executor failsafe.Executor[*http.Response]
}

func NewHTTPClient(url string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		url:      url,
		client:   clients.NewHTTPClient(timeout),
		executor: clients.NewHTTPExecutor(clients.DefaultRetryConfig(), clients.DefaultBreakerConfig("content-suggestions")),
	}
}

func (c *HTTPClient) Suggest(ctx context.Context, req Request) (Suggestion, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return Suggestion{}, fmt.Errorf("marshal suggestion request: %w", err)
	}

	resp, err := clients.ExecuteHTTP(ctx, c.executor, func() (*http.Response, error) {
		r, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		r.Header.Set("Content-Type", "application/json")
		return c.client.Do(r)
	})
	if err != nil && resp == nil {
		return Suggestion{}, fmt.Errorf("content suggestion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return Suggestion{}, fmt.Errorf("content suggestion service returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var s Suggestion
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return Suggestion{}, fmt.Errorf("decode content suggestions: %w", err)
	}
	return s, nil
}
