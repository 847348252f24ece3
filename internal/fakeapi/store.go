// Package fakeapi is an in-memory implementation of the Queen Store REST
// backend for local development and end-to-end tests.
package fakeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Wjwesley1/queen-store-frontend/internal/domain"
	apperrors "github.com/Wjwesley1/queen-store-frontend/pkg/errors"
)

// Error messages returned in the {"erro": ...} body.
const (
	msgOutOfStock        = "Estoque insuficiente"
	msgEmailTaken        = "Email já cadastrado"
	msgBadCredentials    = "Email ou senha inválidos"
	msgNotVerified       = "Confirme seu email antes de entrar"
	msgInvalidVerifyLink = "Token inválido ou expirado"
)

// Account is a registered customer.
type Account struct {
	ID           int
	Name         string
	Email        string
	PasswordHash []byte
	Verified     bool
	VerifyToken  string
}

func (a *Account) customer() *domain.Customer {
	return &domain.Customer{ID: domain.FlexibleID(strconv.Itoa(a.ID)), Name: a.Name, Email: a.Email}
}

type storedOrder struct {
	ID         string
	CustomerID string
	SessionID  string
	CreatedAt  time.Time
	Draft      domain.OrderDraft
}

// Store holds all backend state behind one mutex.
type Store struct {
	mu          sync.RWMutex
	products    []domain.Product
	carts       map[string][]domain.CartLine
	orders      []storedOrder
	accounts    map[string]*Account
	subscribers map[string]time.Time
	nextID      int
	bcryptCost  int
	now         func() time.Time
}

// NewStore creates a store seeded with products.
func NewStore(products []domain.Product, bcryptCost int) *Store {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	p := make([]domain.Product, len(products))
	copy(p, products)
	return &Store{
		products:    p,
		carts:       make(map[string][]domain.CartLine),
		accounts:    make(map[string]*Account),
		subscribers: make(map[string]time.Time),
		bcryptCost:  bcryptCost,
		now:         time.Now,
	}
}

// SeedProducts is the catalog served when no other is configured.
func SeedProducts() []domain.Product {
	return []domain.Product{
		{ID: 1, Name: "Sérum Vitamina C", Price: domain.MustPrice("89.90"), Stock: 12, Category: "Skincare Facial", Badge: "Mais vendido"},
		{ID: 2, Name: "Hidratante Facial", Price: domain.MustPrice("64.50"), Stock: 8, Category: "Skincare Facial"},
		{ID: 3, Name: "Batom Matte Rubi", Price: domain.MustPrice("39.90"), Stock: 20, Category: "Maquiagem"},
		{ID: 4, Name: "Base Líquida", Price: domain.MustPrice("74.00"), Stock: 0, Category: "Maquiagem", Badge: "Esgotado"},
		{ID: 5, Name: "Geleia de Banho Frutas Vermelhas", Price: domain.MustPrice("29.90"), Stock: 3, Category: "Banho"},
	}
}

// Ping always succeeds; the store lives in process memory.
func (s *Store) Ping(_ context.Context) error {
	return nil
}

// Products returns a copy of the catalog.
func (s *Store) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Product, len(s.products))
	copy(out, s.products)
	return out
}

func (s *Store) productLocked(id int) (domain.Product, bool) {
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

// Cart returns the lines of sessionID in insertion order.
func (s *Store) Cart(sessionID string) []domain.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lines := s.carts[sessionID]
	out := make([]domain.CartLine, len(lines))
	copy(out, lines)
	return out
}

// AddToCart adds quantity units of productID, merging with an existing line.
func (s *Store) AddToCart(sessionID string, productID, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.productLocked(productID)
	if !ok {
		return apperrors.NotFound("produto", strconv.Itoa(productID))
	}

	lines := s.carts[sessionID]
	for i := range lines {
		if lines[i].ProductID == productID {
			if lines[i].Quantity+quantity > p.Stock {
				return apperrors.InvalidInput(msgOutOfStock)
			}
			lines[i].Quantity += quantity
			return nil
		}
	}
	if quantity > p.Stock {
		return apperrors.InvalidInput(msgOutOfStock)
	}
	s.carts[sessionID] = append(lines, domain.CartLine{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Quantity:  quantity,
		ImageRef:  p.Image,
	})
	return nil
}

// SetQuantity replaces the quantity of an existing line.
func (s *Store) SetQuantity(sessionID string, productID, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.productLocked(productID)
	if !ok {
		return apperrors.NotFound("produto", strconv.Itoa(productID))
	}
	lines := s.carts[sessionID]
	for i := range lines {
		if lines[i].ProductID == productID {
			if quantity > p.Stock {
				return apperrors.InvalidInput(msgOutOfStock)
			}
			lines[i].Quantity = quantity
			return nil
		}
	}
	return apperrors.NotFound("item do carrinho", strconv.Itoa(productID))
}

// RemoveFromCart deletes a line. Removing an absent line is not an error.
func (s *Store) RemoveFromCart(sessionID string, productID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.carts[sessionID]
	for i := range lines {
		if lines[i].ProductID == productID {
			s.carts[sessionID] = append(lines[:i], lines[i+1:]...)
			break
		}
	}
	if len(s.carts[sessionID]) == 0 {
		delete(s.carts, sessionID)
	}
}

// CreateOrder records draft and returns its id. The cart is left alone; the
// client clears it line by line.
func (s *Store) CreateOrder(sessionID, customerID string, draft domain.OrderDraft) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.orders = append(s.orders, storedOrder{
		ID:         id,
		CustomerID: customerID,
		SessionID:  sessionID,
		CreatedAt:  s.now().UTC(),
		Draft:      draft,
	})
	return id
}

// OrdersFor lists customerID's orders, newest first. Items are rendered as a
// JSON string, the way the backend's text column returns them.
func (s *Store) OrdersFor(customerID string) ([]customerOrderRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]customerOrderRow, 0)
	for i := len(s.orders) - 1; i >= 0; i-- {
		o := s.orders[i]
		if o.CustomerID != customerID {
			continue
		}
		items, err := json.Marshal(o.Draft.Items)
		if err != nil {
			return nil, fmt.Errorf("encode order items: %w", err)
		}
		rows = append(rows, customerOrderRow{
			ID:        o.ID,
			CreatedAt: o.CreatedAt,
			Status:    "pendente",
			Total:     o.Draft.Total,
			Items:     string(items),
		})
	}
	return rows, nil
}

// OrderCount is the number of recorded orders.
func (s *Store) OrderCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}

// Register creates an unverified account and returns it. When verified is
// true the account can log in straight away.
func (s *Store) Register(name, email, password string, verified bool) (*Account, error) {
	key := strings.ToLower(strings.TrimSpace(email))

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[key]; exists {
		return nil, apperrors.Conflict(msgEmailTaken)
	}
	s.nextID++
	acc := &Account{
		ID:           s.nextID,
		Name:         strings.TrimSpace(name),
		Email:        key,
		PasswordHash: hash,
		Verified:     verified,
	}
	if !verified {
		acc.VerifyToken = uuid.NewString()
	}
	s.accounts[key] = acc
	cp := *acc
	return &cp, nil
}

// Authenticate checks credentials.
func (s *Store) Authenticate(email, password string) (*Account, error) {
	s.mu.RLock()
	acc, ok := s.accounts[strings.ToLower(strings.TrimSpace(email))]
	var cp Account
	if ok {
		cp = *acc
	}
	s.mu.RUnlock()

	if !ok {
		return nil, apperrors.Unauthorized(msgBadCredentials)
	}
	if err := bcrypt.CompareHashAndPassword(cp.PasswordHash, []byte(password)); err != nil {
		return nil, apperrors.Unauthorized(msgBadCredentials)
	}
	if !cp.Verified {
		return nil, apperrors.Forbidden(msgNotVerified)
	}
	return &cp, nil
}

// Verify marks the account holding token as verified.
func (s *Store) Verify(token string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token == "" {
		return nil, apperrors.InvalidInput(msgInvalidVerifyLink)
	}
	for _, acc := range s.accounts {
		if acc.VerifyToken == token {
			acc.Verified = true
			acc.VerifyToken = ""
			cp := *acc
			return &cp, nil
		}
	}
	return nil, apperrors.InvalidInput(msgInvalidVerifyLink)
}

// ReissueVerification replaces the verification token of an unverified
// account. It returns "" when there is nothing to resend.
func (s *Store) ReissueVerification(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[strings.ToLower(strings.TrimSpace(email))]
	if !ok || acc.Verified {
		return ""
	}
	acc.VerifyToken = uuid.NewString()
	return acc.VerifyToken
}

// Subscribe adds email to the newsletter list. Repeats are accepted.
func (s *Store) Subscribe(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(strings.TrimSpace(email))
	if _, ok := s.subscribers[key]; !ok {
		s.subscribers[key] = s.now().UTC()
	}
}

// Subscribed reports whether email is on the newsletter list.
func (s *Store) Subscribed(email string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.subscribers[strings.ToLower(strings.TrimSpace(email))]
	return ok
}

type customerOrderRow struct {
	ID        string       `json:"id"`
	CreatedAt time.Time    `json:"criado_em"`
	Status    string       `json:"status"`
	Total     domain.Price `json:"valor_total"`
	Items     string       `json:"itens"`
}
