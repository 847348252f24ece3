package service

import (
	"sync"
	"time"

	"github.com/Wjwesley1/queen-store-frontend/internal/domain"
)

// Mirror is the client-held copy of the remote cart. It is only ever
// replaced wholesale with a fresh fetch, never edited line by line.
type Mirror struct {
	mu          sync.RWMutex
	cart        domain.Cart
	refreshedAt time.Time
}

// NewMirror returns an empty mirror.
func NewMirror() *Mirror {
	return &Mirror{cart: domain.EmptyCart()}
}

// Snapshot returns a copy of the mirrored cart.
func (m *Mirror) Snapshot() domain.Cart {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cart.Clone()
}

// RefreshedAt is when the mirror was last replaced.
func (m *Mirror) RefreshedAt() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.refreshedAt
}

func (m *Mirror) replace(cart domain.Cart) {
	m.mu.Lock()
	m.cart = cart.Clone()
	m.refreshedAt = time.Now()
	m.mu.Unlock()
}
