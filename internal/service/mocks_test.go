package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/stretchr/testify/mock"

	"github.com/Wjwesley1/queen-store-frontend/internal/domain"
)

// --- Mock store API ---

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) ListCart(ctx context.Context) (domain.Cart, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Cart), args.Error(1)
}

func (m *mockAPI) AddCartLine(ctx context.Context, productID, quantity int) error {
	return m.Called(ctx, productID, quantity).Error(0)
}

func (m *mockAPI) UpdateCartLine(ctx context.Context, productID, quantity int) error {
	return m.Called(ctx, productID, quantity).Error(0)
}

func (m *mockAPI) DeleteCartLine(ctx context.Context, productID int) error {
	return m.Called(ctx, productID).Error(0)
}

func (m *mockAPI) CreateOrder(ctx context.Context, draft domain.OrderDraft) (*domain.CreatedOrder, error) {
	args := m.Called(ctx, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CreatedOrder), args.Error(1)
}

func (m *mockAPI) ListProducts(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockAPI) Subscribe(ctx context.Context, sub domain.Subscription) (*domain.Ack, error) {
	args := m.Called(ctx, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ack), args.Error(1)
}

// --- Mock sessions ---

type mockSessions struct {
	mock.Mock
}

func (m *mockSessions) SessionID(ctx context.Context) string {
	return m.Called(ctx).String(0)
}

func (m *mockSessions) Rotate(ctx context.Context) string {
	return m.Called(ctx).String(0)
}

// --- Mock events ---

type mockEvents struct {
	mock.Mock
}

func (m *mockEvents) PublishOrderSubmitted(ctx context.Context, sessionID string, result *domain.OrderResult) error {
	return m.Called(ctx, sessionID, result).Error(0)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func serum() domain.Product {
	return domain.Product{ID: 1, Name: "Sérum Vitamina C", Price: domain.MustPrice("10.50"), Stock: 5, Category: "Skincare"}
}

func cartWith(lines ...domain.CartLine) domain.Cart {
	return domain.Cart{Lines: lines}
}

func serumLine(qty int) domain.CartLine {
	return domain.CartLine{ProductID: 1, Name: "Sérum Vitamina C", UnitPrice: domain.MustPrice("10.50"), Quantity: qty}
}

func batomLine(qty int) domain.CartLine {
	return domain.CartLine{ProductID: 2, Name: "Batom", UnitPrice: domain.MustPrice("20.00"), Quantity: qty}
}
