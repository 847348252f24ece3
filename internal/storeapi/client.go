// Package storeapi is a typed client for the Queen Store REST backend.
package storeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Wjwesley1/queen-store-frontend/internal/session"
	apperrors "github.com/Wjwesley1/queen-store-frontend/pkg/errors"
	"github.com/Wjwesley1/queen-store-frontend/pkg/httpclient"
	"github.com/Wjwesley1/queen-store-frontend/pkg/logger"
	"github.com/Wjwesley1/queen-store-frontend/pkg/middleware"
	"github.com/Wjwesley1/queen-store-frontend/pkg/tracing"
)

const source = "store-api"

// HTTPDoer is the interface for executing HTTP requests.
// Both httpclient.Client and httpclient.CircuitBreakerClient satisfy this.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// CircuitOpenFallback turns an open breaker into a structured error.
func CircuitOpenFallback(_ context.Context, _ error) (*http.Response, error) {
	return nil, apperrors.ServiceUnavailable("store api is temporarily unavailable, try again shortly")
}

// Client calls the store backend on behalf of one session.
type Client struct {
	http    HTTPDoer
	baseURL string
	session session.Context
	logger  *slog.Logger
	tracer  trace.Tracer
}

// New creates a Client. baseURL is the backend origin, e.g.
// http://localhost:5000.
func New(doer HTTPDoer, baseURL string, sc session.Context, logger *slog.Logger) *Client {
	return &Client{
		http:    doer,
		baseURL: strings.TrimRight(baseURL, "/"),
		session: sc,
		logger:  logger,
		tracer:  tracing.Tracer("github.com/Wjwesley1/queen-store-frontend/internal/storeapi"),
	}
}

// WithTokens returns a copy of c that authenticates with tokens. The auth
// keeper is built over the anonymous client and then plugged in here.
func (c *Client) WithTokens(tokens session.TokenSource) *Client {
	cp := *c
	cp.session.Tokens = tokens
	return &cp
}

// BaseURL returns the backend origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// call performs one request. in is JSON-encoded when non-nil; out is
// decoded from a 2xx body when non-nil. Non-2xx responses become
// *apperrors.AppError via httpclient.ParseResponseError.
func (c *Client) call(ctx context.Context, op, method, path string, in, out any) error {
	ctx, span := c.tracer.Start(ctx, "storeapi."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
		),
	)
	defer span.End()

	err := c.roundTrip(ctx, method, path, in, out)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.WithContext(ctx, c.logger).DebugContext(ctx, "store api call failed",
			slog.String("op", op),
			slog.String("method", method),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader = http.NoBody
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal %s %s request: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create %s %s request: %w", method, path, err)
	}
	c.decorate(ctx, req, in != nil)

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("call store api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return httpclient.ParseResponseError(resp, source)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s response: %w", method, path, err)
	}
	// An empty 2xx body leaves out untouched.
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

// decorate sets the session, auth, correlation and trace headers.
func (c *Client) decorate(ctx context.Context, req *http.Request, hasBody bool) {
	req.Header.Set("Accept", "application/json")
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(middleware.HeaderSessionID, c.session.SessionID(ctx))
	if token := c.session.Token(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	correlationID := logger.CorrelationIDFromContext(ctx)
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	req.Header.Set(middleware.HeaderCorrelationID, correlationID)
	tracing.InjectHTTP(ctx, req.Header)
}

// Ping checks that the backend answers the product listing.
func (c *Client) Ping(ctx context.Context) error {
	return c.call(ctx, "ping", http.MethodGet, "/api/produtos", nil, nil)
}
