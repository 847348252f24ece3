// Package session owns the anonymous session identifier that scopes the
// remote cart.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Wjwesley1/queen-store-frontend/internal/profile"
)

// StorageKey is the profile key holding the session id.
const StorageKey = "queen_session_id"

const suffixLen = 9

// Provider hands out the session id for one profile. It is safe for
// concurrent use.
type Provider struct {
	store  profile.Store
	logger *slog.Logger

	mu      sync.Mutex
	current string

	now    func() time.Time
	suffix func() string
}

// NewProvider creates a Provider over store.
func NewProvider(store profile.Store, logger *slog.Logger) *Provider {
	return &Provider{
		store:  store,
		logger: logger,
		now:    time.Now,
		suffix: randomSuffix,
	}
}

// GetOrCreate returns the stored session id, creating and persisting one on
// first use. Storage errors are logged and the in-memory value is used.
func (p *Provider) GetOrCreate(ctx context.Context) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current != "" {
		return p.current
	}

	id, err := p.store.Get(ctx, StorageKey)
	switch {
	case err == nil && id != "":
		p.current = id
		return id
	case err != nil && !profile.IsNotFound(err):
		p.logger.WarnContext(ctx, "failed to read session id, generating a new one",
			slog.String("error", err.Error()),
		)
	}

	p.current = p.generate()
	p.persist(ctx, p.current)
	p.logger.DebugContext(ctx, "session created", slog.String("session_id", p.current))
	return p.current
}

// Rotate replaces the session id with a fresh one that differs from the
// previous value, and returns it.
func (p *Provider) Rotate(ctx context.Context) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	previous := p.current
	if previous == "" {
		if id, err := p.store.Get(ctx, StorageKey); err == nil {
			previous = id
		}
	}

	next := p.generate()
	for next == previous {
		next = p.generate()
	}

	p.current = next
	p.persist(ctx, next)
	p.logger.InfoContext(ctx, "session rotated",
		slog.String("previous_session_id", previous),
		slog.String("session_id", next),
	)
	return next
}

func (p *Provider) generate() string {
	return fmt.Sprintf("sess_%d_%s", p.now().UnixMilli(), p.suffix())
}

func (p *Provider) persist(ctx context.Context, id string) {
	if err := p.store.Set(ctx, StorageKey, id); err != nil {
		p.logger.ErrorContext(ctx, "failed to persist session id",
			slog.String("session_id", id),
			slog.String("error", err.Error()),
		)
	}
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:suffixLen]
}
