package fakeapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Wjwesley1/queen-store-frontend/internal/domain"
	apperrors "github.com/Wjwesley1/queen-store-frontend/pkg/errors"
	"github.com/Wjwesley1/queen-store-frontend/pkg/httputil"
	"github.com/Wjwesley1/queen-store-frontend/pkg/logger"
	"github.com/Wjwesley1/queen-store-frontend/pkg/middleware"
	"github.com/Wjwesley1/queen-store-frontend/pkg/validator"
)

// Handler serves the store REST contract from a Store.
type Handler struct {
	store      *Store
	tokens     *TokenSigner
	autoVerify bool
	logger     *slog.Logger
}

// NewHandler creates a handler. With autoVerify, new accounts can log in
// without following the e-mailed verification link.
func NewHandler(store *Store, tokens *TokenSigner, autoVerify bool, logger *slog.Logger) *Handler {
	return &Handler{
		store:      store,
		tokens:     tokens,
		autoVerify: autoVerify,
		logger:     logger,
	}
}

// --- Request DTOs ---

type addCartLineRequest struct {
	ProductID int `json:"produto_id" validate:"gt=0"`
	Quantity  int `json:"quantidade" validate:"gte=1"`
}

type updateCartLineRequest struct {
	Quantity int `json:"quantidade" validate:"gte=1"`
}

type orderItemRequest struct {
	ProductID int          `json:"produto_id" validate:"gt=0"`
	Name      string       `json:"nome"`
	Quantity  int          `json:"quantidade" validate:"gte=1"`
	UnitPrice domain.Price `json:"preco"`
}

type createOrderRequest struct {
	CustomerName     string             `json:"cliente_nome" validate:"required"`
	CustomerWhatsApp string             `json:"cliente_whatsapp" validate:"required,whatsapp"`
	CustomerEmail    string             `json:"cliente_email" validate:"omitempty,contactemail"`
	Address          *domain.Address    `json:"endereco"`
	Items            []orderItemRequest `json:"itens" validate:"required,min=1,dive"`
	Total            domain.Price       `json:"valor_total"`
}

func (r createOrderRequest) draft() domain.OrderDraft {
	items := make([]domain.OrderItem, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, domain.OrderItem(it))
	}
	return domain.OrderDraft{
		CustomerName:     r.CustomerName,
		CustomerWhatsApp: r.CustomerWhatsApp,
		CustomerEmail:    r.CustomerEmail,
		Address:          r.Address,
		Items:            items,
		Total:            r.Total,
	}
}

type registerRequest struct {
	Name     string `json:"nome" validate:"required"`
	Email    string `json:"email" validate:"required,contactemail"`
	Password string `json:"senha" validate:"required,min=6"`
}

type emailRequest struct {
	Email string `json:"email" validate:"required,contactemail"`
}

type createdOrderResponse struct {
	Success bool   `json:"sucesso"`
	ID      string `json:"id"`
}

// --- Catalog ---

// ListProducts handles GET /api/produtos.
func (h *Handler) ListProducts(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.store.Products())
}

// --- Cart ---

// GetCart handles GET /api/carrinho.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.store.Cart(sessionFrom(r)))
}

// AddCartLine handles POST /api/carrinho.
func (h *Handler) AddCartLine(w http.ResponseWriter, r *http.Request) {
	var req addCartLineRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.store.AddToCart(sessionFrom(r), req.ProductID, req.Quantity); err != nil {
		h.writeFailure(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, domain.Ack{Success: true})
}

// UpdateCartLine handles PUT /api/carrinho/{id}.
func (h *Handler) UpdateCartLine(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var req updateCartLineRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.store.SetQuantity(sessionFrom(r), id, req.Quantity); err != nil {
		h.writeFailure(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, domain.Ack{Success: true})
}

// DeleteCartLine handles DELETE /api/carrinho/{id}.
func (h *Handler) DeleteCartLine(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	h.store.RemoveFromCart(sessionFrom(r), id)
	httputil.WriteJSON(w, http.StatusOK, domain.Ack{Success: true})
}

// --- Orders ---

// CreateOrder handles POST /api/pedidos. A valid bearer token attaches the
// order to the customer.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if !decode(w, r, &req) {
		return
	}

	customerID := middleware.CustomerIDFromContext(r.Context())
	id := h.store.CreateOrder(r.Header.Get(middleware.HeaderSessionID), customerID, req.draft())

	logger.FromContext(r.Context()).InfoContext(r.Context(), "order recorded",
		slog.String("order_id", id),
		slog.String("customer_id", customerID),
		slog.Int("items", len(req.Items)),
		slog.String("valor_total", req.Total.String()),
	)
	httputil.WriteJSON(w, http.StatusCreated, createdOrderResponse{Success: true, ID: id})
}

// ListCustomerOrders handles GET /api/cliente/pedidos.
func (h *Handler) ListCustomerOrders(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.OrdersFor(middleware.CustomerIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rows)
}

// --- Auth ---

// Register handles POST /api/auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decode(w, r, &req) {
		return
	}

	acc, err := h.store.Register(req.Name, req.Email, req.Password, h.autoVerify)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	res := domain.AuthResult{Success: true, Customer: acc.customer()}
	if acc.Verified {
		token, err := h.tokens.Sign(acc)
		if err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		res.Token = token
		res.Message = "Cadastro realizado!"
	} else {
		h.sendVerification(r, acc.Email, acc.VerifyToken)
		res.Message = "Cadastro realizado! Verifique seu email."
	}
	httputil.WriteJSON(w, http.StatusCreated, res)
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.Credentials
	if !decode(w, r, &req) {
		return
	}

	acc, err := h.store.Authenticate(req.Email, req.Password)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	token, err := h.tokens.Sign(acc)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, domain.AuthResult{
		Success:  true,
		Token:    token,
		Customer: acc.customer(),
	})
}

// Verify handles GET /api/auth/verify/{token}.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	acc, err := h.store.Verify(chi.URLParam(r, "token"))
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	logger.FromContext(r.Context()).InfoContext(r.Context(), "account verified", slog.String("email", acc.Email))
	httputil.WriteJSON(w, http.StatusOK, domain.Ack{Success: true, Message: "Conta verificada!"})
}

// ResendVerification handles POST /api/auth/resend-verification. The reply
// does not reveal whether the address is registered.
func (h *Handler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !decode(w, r, &req) {
		return
	}
	if token := h.store.ReissueVerification(req.Email); token != "" {
		h.sendVerification(r, req.Email, token)
	}
	httputil.WriteJSON(w, http.StatusOK, domain.Ack{Success: true, Message: "Se o email estiver cadastrado, enviaremos um novo link."})
}

// --- Newsletter ---

// Subscribe handles POST /api/contato.
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !decode(w, r, &req) {
		return
	}
	h.store.Subscribe(req.Email)
	httputil.WriteJSON(w, http.StatusOK, domain.Ack{Success: true, Message: "Inscrição realizada!"})
}

// --- Helpers ---

// sendVerification stands in for the verification e-mail.
func (h *Handler) sendVerification(r *http.Request, email, token string) {
	logger.FromContext(r.Context()).InfoContext(r.Context(), "verification link issued",
		slog.String("email", email),
		slog.String("path", "/api/auth/verify/"+token),
	)
}

// writeFailure answers domain failures with the backend's {"erro": ...}
// body and anything else with the standard envelope.
func (h *Handler) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Status < http.StatusInternalServerError {
		httputil.WriteJSON(w, appErr.Status, domain.Ack{Success: false, Error: appErr.Message})
		return
	}
	httputil.WriteError(w, r, err, h.logger)
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorEnvelope{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return false
	}
	if err := validator.Validate(dst); err != nil {
		httputil.WriteValidationError(w, err)
		return false
	}
	return true
}

func sessionFrom(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(middleware.HeaderSessionID))
}
