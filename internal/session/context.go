package session

import (
	"context"

	"github.com/Wjwesley1/queen-store-frontend/pkg/logger"
)

// TokenSource yields the bearer token of the logged-in customer, or "".
type TokenSource interface {
	BearerToken(ctx context.Context) string
}

// Context is the ambient client state every backend call needs: who the
// anonymous cart belongs to and, optionally, who is logged in.
type Context struct {
	Sessions *Provider
	Tokens   TokenSource
}

// NewContext creates a Context. tokens may be nil for anonymous clients.
func NewContext(sessions *Provider, tokens TokenSource) Context {
	return Context{Sessions: sessions, Tokens: tokens}
}

// SessionID returns the current session id.
func (c Context) SessionID(ctx context.Context) string {
	return c.Sessions.GetOrCreate(ctx)
}

// Token returns the bearer token or "" when nobody is logged in.
func (c Context) Token(ctx context.Context) string {
	if c.Tokens == nil {
		return ""
	}
	return c.Tokens.BearerToken(ctx)
}

// Rotate rotates the session id.
func (c Context) Rotate(ctx context.Context) string {
	return c.Sessions.Rotate(ctx)
}

// Annotate returns ctx carrying the session id for log correlation.
func (c Context) Annotate(ctx context.Context) context.Context {
	return logger.WithSessionID(ctx, c.SessionID(ctx))
}
