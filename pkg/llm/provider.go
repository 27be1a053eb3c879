// Package llm streams chat completions from OpenAI-compatible and
// Anthropic endpoints. Requests go through a failsafe executor so
// throttling and gateway errors are retried behind a circuit breaker.
package llm

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/failsafe-go/failsafe-go"

	"github.com/ganeshsabale-99/DMP-Project/pkg/clients"
)

type Provider interface {
	Complete(ctx context.Context, messages []Message) (Stream, error)
}

type Stream interface {
	Recv() (Chunk, error)
	Close() error
}

type Chunk struct {
	Content string
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Collect drains a completion into one string
func Collect(ctx context.Context, p Provider, messages []Message) (string, error) {
	stream, err := p.Complete(ctx, messages)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	var out strings.Builder
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return out.String(), nil
		}
		if err != nil {
			return out.String(), err
		}
		out.WriteString(chunk.Content)
	}
}

// transport is shared by the providers: one client plus the retry and
// breaker executor named after the provider.
type transport struct {
	name     string
	client   *http.Client
	executor failsafe.Executor[*http.Response]
}

func newTransport(name string, cfg Config) transport {
	retry := clients.DefaultRetryConfig()
	if cfg.MaxRetries > 0 {
		retry.MaxRetries = cfg.MaxRetries
	}
	return transport{
		name:     name,
		client:   clients.NewHTTPClient(cfg.timeout()),
		executor: clients.NewHTTPExecutor(retry, clients.DefaultBreakerConfig("llm-"+name)),
	}
}

// post sends the request built by build, retrying retryable statuses.
// Non-2xx responses after retries become errors with the body attached.
func (t transport) post(ctx context.Context, build func() (*http.Request, error)) (*http.Response, error) {
	resp, err := clients.ExecuteHTTP(ctx, t.executor, func() (*http.Response, error) {
		req, err := build()
		if err != nil {
			return nil, err
		}
		resp, err := t.client.Do(req)
		if err != nil {
			return nil, err
		}
		if clients.DefaultShouldRetry(resp, nil) {
			// drain so the connection can be reused by the next attempt
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			resp.Body = io.NopCloser(strings.NewReader(string(body)))
		}
		return resp, nil
	})
	if err != nil && resp == nil {
		return nil, fmt.Errorf("%s: request failed: %w", t.name, err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%s: unexpected status %s: %s", t.name, resp.Status, strings.TrimSpace(string(body)))
	}
	return resp, nil
}

type sseStream struct {
	resp   *http.Response
	reader *bufio.Reader
	decode func([]byte) (Chunk, error)
}

func newSSEStream(resp *http.Response, decode func([]byte) (Chunk, error)) Stream {
	return &sseStream{
		resp:   resp,
		reader: bufio.NewReader(resp.Body),
		decode: decode,
	}
}

func (s *sseStream) Close() error {
	return s.resp.Body.Close()
}

func (s *sseStream) Recv() (Chunk, error) {
	for {
		data, err := s.readEvent()
		if err != nil {
			return Chunk{}, err
		}
		payload := strings.TrimSpace(string(data))
		if payload == "" {
			continue
		}
		if payload == "[DONE]" {
			return Chunk{}, io.EOF
		}
		chunk, err := s.decode(data)
		if err != nil {
			return Chunk{}, err
		}
		if chunk.Content == "" {
			continue
		}
		return chunk, nil
	}
}

// readEvent returns the joined data lines of the next SSE event
func (s *sseStream) readEvent() ([]byte, error) {
	var dataLines []string
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			if len(dataLines) > 0 {
				return []byte(strings.Join(dataLines, "\n")), nil
			}
			if errors.Is(err, io.EOF) {
				return nil, io.EOF
			}
			continue
		}
		if strings.HasPrefix(line, "data:") {
			dataLines = append(dataLines, strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		}
		if errors.Is(err, io.EOF) {
			if len(dataLines) > 0 {
				return []byte(strings.Join(dataLines, "\n")), nil
			}
			return nil, io.EOF
		}
	}
}
