package storeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Wjwesley1/queen-store-frontend/internal/domain"
	apperrors "github.com/Wjwesley1/queen-store-frontend/pkg/errors"
	"github.com/Wjwesley1/queen-store-frontend/pkg/validator"
)

// ListProducts fetches the catalog.
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.call(ctx, "list_products", http.MethodGet, "/api/produtos", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// ListCart fetches the session's cart. The backend answers with a bare
// array of lines or with {"itens": [...]}. Lines that would break the
// quantity >= 1 invariant are dropped.
func (c *Client) ListCart(ctx context.Context) (domain.Cart, error) {
	var raw json.RawMessage
	if err := c.call(ctx, "list_cart", http.MethodGet, "/api/carrinho", nil, &raw); err != nil {
		return domain.Cart{}, err
	}

	cart, err := decodeCart(raw)
	if err != nil {
		return domain.Cart{}, err
	}
	return c.sanitize(ctx, cart), nil
}

func decodeCart(raw json.RawMessage) (domain.Cart, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return domain.EmptyCart(), nil
	}
	if raw[0] == '[' {
		var lines []domain.CartLine
		if err := json.Unmarshal(raw, &lines); err != nil {
			return domain.Cart{}, fmt.Errorf("decode cart lines: %w", err)
		}
		return domain.Cart{Lines: lines}, nil
	}
	var cart domain.Cart
	if err := json.Unmarshal(raw, &cart); err != nil {
		return domain.Cart{}, fmt.Errorf("decode cart: %w", err)
	}
	return cart, nil
}

func (c *Client) sanitize(ctx context.Context, cart domain.Cart) domain.Cart {
	kept := make([]domain.CartLine, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		if l.Quantity < 1 || l.ProductID == 0 {
			c.logger.WarnContext(ctx, "dropping invalid cart line",
				slog.Int("product_id", l.ProductID),
				slog.Int("quantity", l.Quantity),
			)
			continue
		}
		kept = append(kept, l)
	}
	return domain.Cart{Lines: kept}
}

type addLineRequest struct {
	ProductID int `json:"produto_id" validate:"gt=0"`
	Quantity  int `json:"quantidade" validate:"gte=1"`
}

type updateLineRequest struct {
	Quantity int `json:"quantidade" validate:"gte=1"`
}

// AddCartLine adds quantity units of productID to the cart.
func (c *Client) AddCartLine(ctx context.Context, productID, quantity int) error {
	body := addLineRequest{ProductID: productID, Quantity: quantity}
	if err := validator.Validate(body); err != nil {
		return apperrors.InvalidInput(err.Error())
	}
	return c.call(ctx, "add_cart_line", http.MethodPost, "/api/carrinho", body, nil)
}

// UpdateCartLine sets the quantity of productID.
func (c *Client) UpdateCartLine(ctx context.Context, productID, quantity int) error {
	body := updateLineRequest{Quantity: quantity}
	if err := validator.Validate(body); err != nil {
		return apperrors.InvalidInput(err.Error())
	}
	return c.call(ctx, "update_cart_line", http.MethodPut, "/api/carrinho/"+strconv.Itoa(productID), body, nil)
}

// DeleteCartLine removes productID from the cart.
func (c *Client) DeleteCartLine(ctx context.Context, productID int) error {
	return c.call(ctx, "delete_cart_line", http.MethodDelete, "/api/carrinho/"+strconv.Itoa(productID), nil, nil)
}

// CreateOrder posts a draft. Any 2xx reply means the order was recorded,
// whatever its body, unless the body says sucesso=false.
func (c *Client) CreateOrder(ctx context.Context, draft domain.OrderDraft) (*domain.CreatedOrder, error) {
	var reply struct {
		ID      domain.FlexibleID `json:"id"`
		Success *bool             `json:"sucesso"`
		Error   string            `json:"erro"`
	}
	if err := c.call(ctx, "create_order", http.MethodPost, "/api/pedidos", draft, &reply); err != nil {
		return nil, err
	}
	if reply.Success != nil && !*reply.Success {
		msg := reply.Error
		if msg == "" {
			msg = "order not accepted"
		}
		return nil, apperrors.Internal(fmt.Errorf("%s: %s", source, msg))
	}
	return &domain.CreatedOrder{ID: reply.ID, Success: true}, nil
}

// ListCustomerOrders fetches the logged-in customer's order history.
func (c *Client) ListCustomerOrders(ctx context.Context) ([]domain.CustomerOrder, error) {
	if c.session.Token(ctx) == "" {
		return nil, apperrors.Unauthorized("login required")
	}
	var orders []domain.CustomerOrder
	if err := c.call(ctx, "list_customer_orders", http.MethodGet, "/api/cliente/pedidos", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// Login posts credentials.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error) {
	var res domain.AuthResult
	if err := c.call(ctx, "login", http.MethodPost, "/api/auth/login", creds, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, reg domain.Registration) (*domain.AuthResult, error) {
	var res domain.AuthResult
	if err := c.call(ctx, "register", http.MethodPost, "/api/auth/register", reg, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// VerifyAccount confirms an e-mailed verification token.
func (c *Client) VerifyAccount(ctx context.Context, token string) (*domain.Ack, error) {
	var ack domain.Ack
	if err := c.call(ctx, "verify_account", http.MethodGet, "/api/auth/verify/"+url.PathEscape(token), nil, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// ResendVerification asks for a new verification e-mail.
func (c *Client) ResendVerification(ctx context.Context, email string) (*domain.Ack, error) {
	var ack domain.Ack
	body := map[string]string{"email": email}
	if err := c.call(ctx, "resend_verification", http.MethodPost, "/api/auth/resend-verification", body, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// Subscribe registers email for the newsletter.
func (c *Client) Subscribe(ctx context.Context, sub domain.Subscription) (*domain.Ack, error) {
	var ack domain.Ack
	if err := c.call(ctx, "subscribe", http.MethodPost, "/api/contato", sub, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}
