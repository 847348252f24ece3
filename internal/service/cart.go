package service

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/Wjwesley1/queen-store-frontend/internal/domain"
	apperrors "github.com/Wjwesley1/queen-store-frontend/pkg/errors"
)

// Cart notices.
const (
	msgAdded         = "%s adicionado!"
	msgAddFailed     = "Erro ao adicionar"
	msgUpdated       = "Quantidade atualizada"
	msgUpdateFailed  = "Erro ao atualizar"
	msgRemoved       = "Item removido"
	msgRemoveFailed  = "Erro ao remover"
	msgSoldOut       = "Produto Esgotado"
	msgOnlyNInStock  = "Apenas %d em estoque"
	msgInvalidAmount = "Quantidade inválida"
)

// clearConcurrency bounds the parallel deletes issued after an order.
const clearConcurrency = 4

// CartAPI is the slice of the store API the cart service calls.
type CartAPI interface {
	ListCart(ctx context.Context) (domain.Cart, error)
	AddCartLine(ctx context.Context, productID, quantity int) error
	UpdateCartLine(ctx context.Context, productID, quantity int) error
	DeleteCartLine(ctx context.Context, productID int) error
}

// CartService mutates the remote cart and keeps the mirror in sync by
// re-fetching after every mutation.
type CartService struct {
	api      CartAPI
	mirror   *Mirror
	notifier Notifier
	logger   *slog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(api CartAPI, mirror *Mirror, notifier Notifier, logger *slog.Logger) *CartService {
	return &CartService{
		api:      api,
		mirror:   mirror,
		notifier: notifier,
		logger:   logger,
	}
}

// Mirror returns the cart mirror this service refreshes.
func (s *CartService) Mirror() *Mirror {
	return s.mirror
}

// List fetches the remote cart. Failures are logged and yield an empty
// cart so rendering is never blocked.
func (s *CartService) List(ctx context.Context) domain.Cart {
	cart, err := s.api.ListCart(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to list cart, showing empty cart",
			slog.String("error", err.Error()),
		)
		return domain.EmptyCart()
	}
	return cart
}

// Refresh replaces the mirror with a fresh fetch and returns it.
func (s *CartService) Refresh(ctx context.Context) domain.Cart {
	cart := s.List(ctx)
	s.mirror.replace(cart)
	return cart
}

// AddItem adds quantity units of product. A zero quantity means one. The
// stock check is local: when it fails no request is sent.
func (s *CartService) AddItem(ctx context.Context, product domain.Product, quantity int) error {
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		cartMutationsTotal.WithLabelValues("add", outcomeRejected).Inc()
		s.notifier.Notify(ctx, failure(msgInvalidAmount))
		return apperrors.InvalidInput(fmt.Sprintf("quantity must be positive, got %d", quantity))
	}
	if quantity > product.Stock {
		cartMutationsTotal.WithLabelValues("add", outcomeRejected).Inc()
		if product.SoldOut() {
			s.notifier.Notify(ctx, failure(msgSoldOut))
		} else {
			s.notifier.Notify(ctx, failure(fmt.Sprintf(msgOnlyNInStock, product.Stock)))
		}
		s.logger.InfoContext(ctx, "add rejected by stock check",
			slog.Int("product_id", product.ID),
			slog.Int("requested", quantity),
			slog.Int("stock", product.Stock),
		)
		return apperrors.InsufficientStock(product.Name, quantity, max(product.Stock, 0))
	}

	if err := s.api.AddCartLine(ctx, product.ID, quantity); err != nil {
		cartMutationsTotal.WithLabelValues("add", outcomeFailed).Inc()
		s.notifier.Notify(ctx, failure(msgAddFailed))
		s.logger.ErrorContext(ctx, "failed to add cart line",
			slog.Int("product_id", product.ID),
			slog.Int("quantity", quantity),
			slog.String("error", err.Error()),
		)
		return apperrors.MutationFailed(apperrors.ErrAddFailed, err)
	}

	cartMutationsTotal.WithLabelValues("add", outcomeOK).Inc()
	s.Refresh(ctx)
	s.notifier.Notify(ctx, success(fmt.Sprintf(msgAdded, product.Name)))
	return nil
}

// UpdateQuantity sets the quantity of productID. Anything below one
// removes the line.
func (s *CartService) UpdateQuantity(ctx context.Context, productID, quantity int) error {
	if quantity < 1 {
		return s.RemoveItem(ctx, productID)
	}

	if err := s.api.UpdateCartLine(ctx, productID, quantity); err != nil {
		cartMutationsTotal.WithLabelValues("update", outcomeFailed).Inc()
		s.notifier.Notify(ctx, failure(msgUpdateFailed))
		s.logger.ErrorContext(ctx, "failed to update cart line",
			slog.Int("product_id", productID),
			slog.Int("quantity", quantity),
			slog.String("error", err.Error()),
		)
		return apperrors.MutationFailed(apperrors.ErrUpdateFailed, err)
	}

	cartMutationsTotal.WithLabelValues("update", outcomeOK).Inc()
	s.Refresh(ctx)
	s.notifier.Notify(ctx, success(msgUpdated))
	return nil
}

// RemoveItem deletes productID from the cart. The mirror is refreshed
// whether or not the delete succeeded.
func (s *CartService) RemoveItem(ctx context.Context, productID int) error {
	err := s.api.DeleteCartLine(ctx, productID)
	s.Refresh(ctx)

	if err != nil {
		cartMutationsTotal.WithLabelValues("remove", outcomeFailed).Inc()
		s.notifier.Notify(ctx, failure(msgRemoveFailed))
		s.logger.ErrorContext(ctx, "failed to remove cart line",
			slog.Int("product_id", productID),
			slog.String("error", err.Error()),
		)
		return apperrors.MutationFailed(apperrors.ErrRemoveFailed, err)
	}

	cartMutationsTotal.WithLabelValues("remove", outcomeOK).Inc()
	s.notifier.Notify(ctx, success(msgRemoved))
	return nil
}

// clearRemote deletes every line of cart without refreshing or notifying.
// Deletes run concurrently, at most clearConcurrency at a time. It returns
// the ids that could not be deleted, in cart order.
func (s *CartService) clearRemote(ctx context.Context, cart domain.Cart) []int {
	errs := make([]error, len(cart.Lines))
	var g errgroup.Group
	g.SetLimit(clearConcurrency)
	for i, l := range cart.Lines {
		g.Go(func() error {
			errs[i] = s.api.DeleteCartLine(ctx, l.ProductID)
			return nil
		})
	}
	_ = g.Wait()

	var failed []int
	for i, err := range errs {
		if err == nil {
			continue
		}
		id := cart.Lines[i].ProductID
		failed = append(failed, id)
		s.logger.WarnContext(ctx, "failed to clear cart line after order",
			slog.Int("product_id", id),
			slog.String("error", err.Error()),
		)
	}
	return failed
}
