// Package querysvc sends query documents to the telemetry query service.
//
// Every call is independent: the request is sent once and, on a transient
// failure, retried exactly one more time. Certificate trust failures are
// never retried.
package querysvc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultRetryDelay = time.Second
	userAgent         = "logging-hosts/1.0"
	apiKeyHeader      = "API-Key"

	// maxAttempts is the first try plus one retry.
	maxAttempts = 2

	maxResponseBytes = 64 << 20
	maxErrorBody     = 512
)

// Request is a single logical query.
type Request struct {
	// Op names the query for logs and metrics.
	Op        string
	Query     string
	Variables map[string]any
}

// Observer is notified about every attempt and every failed query.
type Observer interface {
	QueryAttempted(op string)
	QueryFailed(op string, kind Kind)
}

// Client is the query service client. It is safe for concurrent use.
type Client struct {
	endpoint   string
	apiKey     string
	userAgent  string
	httpClient *http.Client
	timeout    time.Duration
	retryDelay time.Duration
	logger     *slog.Logger
	observer   Observer
}

// NewClient creates a client for the given endpoint URL.
func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
		userAgent:  userAgent,
		httpClient: &http.Client{},
		timeout:    defaultTimeout,
		retryDelay: defaultRetryDelay,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "querysvc")

	return c
}

// Endpoint returns the configured endpoint URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

type payload struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type envelope struct {
	Data   json.RawMessage `json:"data"`
	Errors ResponseErrors  `json:"errors"`
}

type outcome int

const (
	outcomeOK outcome = iota
	outcomeTransient
	outcomeFatalTrust
)

// attemptResult is the tagged result of one round trip.
type attemptResult struct {
	outcome outcome
	data    json.RawMessage
	err     error
}

func transient(err error) attemptResult {
	return attemptResult{outcome: outcomeTransient, err: err}
}

// Execute sends req and decodes the response's data section into out.
//
// A nil error means out holds the data. Otherwise the error is a *Failure:
// KindFatalTrust must abort the run, KindTransient means this query
// contributed nothing.
func (c *Client) Execute(ctx context.Context, req Request, out any) error {
	body, err := json.Marshal(payload{Query: req.Query, Variables: req.Variables})
	if err != nil {
		c.queryFailed(req.Op, KindTransient)
		return &Failure{Kind: KindTransient, Op: req.Op, Err: fmt.Errorf("failed to marshal query: %w", err)}
	}

	var last attemptResult
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			if err := c.pause(ctx); err != nil {
				c.queryFailed(req.Op, KindTransient)
				return &Failure{Kind: KindTransient, Op: req.Op, Attempts: attempt - 1, Err: err}
			}
		}

		c.queryAttempted(req.Op)
		last = c.attempt(ctx, body)
		if last.outcome == outcomeOK && out != nil {
			if err := json.Unmarshal(last.data, out); err != nil {
				last = transient(fmt.Errorf("failed to decode %s data: %w", req.Op, err))
			}
		}

		switch last.outcome {
		case outcomeOK:
			return nil
		case outcomeFatalTrust:
			c.logger.Error("certificate trust failure", "op", req.Op, "attempt", attempt, "error", last.err)
			c.queryFailed(req.Op, KindFatalTrust)
			return &Failure{Kind: KindFatalTrust, Op: req.Op, Attempts: attempt, Err: last.err}
		}

		c.logger.Warn("query attempt failed", "op", req.Op, "attempt", attempt, "error", last.err)
	}

	c.queryFailed(req.Op, KindTransient)
	return &Failure{Kind: KindTransient, Op: req.Op, Attempts: maxAttempts, Err: last.err}
}

// attempt performs one HTTP round trip bounded by the client timeout.
func (c *Client) attempt(ctx context.Context, body []byte) attemptResult {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return transient(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("failed to execute request: %w", err)
		if Classify(err) == KindFatalTrust {
			return attemptResult{outcome: outcomeFatalTrust, err: err}
		}
		return transient(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return transient(fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode >= 400 {
		text := string(raw)
		if len(text) > maxErrorBody {
			text = text[:maxErrorBody]
		}
		return transient(&StatusError{StatusCode: resp.StatusCode, Body: text})
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return transient(fmt.Errorf("failed to decode response: %w", err))
	}

	if !hasData(env.Data) {
		if len(env.Errors) > 0 {
			return transient(env.Errors)
		}
		return transient(errors.New("response carried no data"))
	}
	if len(env.Errors) > 0 {
		c.logger.Warn("partial response", "error", env.Errors)
	}

	return attemptResult{outcome: outcomeOK, data: env.Data}
}

func (c *Client) pause(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.retryDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(c.retryDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) queryAttempted(op string) {
	if c.observer != nil {
		c.observer.QueryAttempted(op)
	}
}

func (c *Client) queryFailed(op string, kind Kind) {
	if c.observer != nil {
		c.observer.QueryFailed(op, kind)
	}
}

func hasData(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}
