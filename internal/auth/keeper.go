// Package auth keeps the logged-in customer's token in the profile store and
// decides when it may still be sent.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Wjwesley1/queen-store-frontend/internal/domain"
	"github.com/Wjwesley1/queen-store-frontend/internal/profile"
	apperrors "github.com/Wjwesley1/queen-store-frontend/pkg/errors"
	"github.com/Wjwesley1/queen-store-frontend/pkg/validator"
)

// Profile keys.
const (
	TokenKey    = "queen_token"
	ActivityKey = "queen_last_activity"
)

// Customer-facing messages.
const (
	InactivityMessage  = "Sua sessão expirou por inatividade. Faça login novamente."
	PasswordMismatch   = "As senhas não coincidem!"
	EmailRequired      = "Digite seu email primeiro!"
	VerificationResent = "Email de confirmação reenviado! Confira caixa de entrada ou spam 💜"
	DefaultServerError = "Erro no servidor"
)

// DefaultInactivity is the idle period after which the customer is logged out.
const DefaultInactivity = 30 * time.Minute

// Backend is the subset of the store API the keeper calls.
type Backend interface {
	Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error)
	Register(ctx context.Context, reg domain.Registration) (*domain.AuthResult, error)
	VerifyAccount(ctx context.Context, token string) (*domain.Ack, error)
	ResendVerification(ctx context.Context, email string) (*domain.Ack, error)
}

// Identity is what the token says about the customer.
type Identity struct {
	CustomerID string
	Email      string
	ExpiresAt  time.Time
}

type customerClaims struct {
	CustomerID domain.FlexibleID `json:"clienteId"`
	Email      string            `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Keeper owns the customer token. Signatures are not verified: the backend
// does that on every request, the client only reads exp and clienteId.
type Keeper struct {
	backend    Backend
	store      profile.Store
	logger     *slog.Logger
	inactivity time.Duration
	parser     *jwt.Parser

	mu  sync.Mutex
	now func() time.Time
}

// NewKeeper creates a Keeper. A non-positive inactivity disables the idle
// logout.
func NewKeeper(backend Backend, store profile.Store, inactivity time.Duration, logger *slog.Logger) *Keeper {
	return &Keeper{
		backend:    backend,
		store:      store,
		logger:     logger,
		inactivity: inactivity,
		parser:     jwt.NewParser(),
		now:        time.Now,
	}
}

// Login authenticates and stores the returned token.
func (k *Keeper) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	creds := domain.Credentials{Email: strings.TrimSpace(email), Password: password}
	if err := validateInput(creds); err != nil {
		return nil, err
	}

	res, err := k.backend.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	if err := k.accept(ctx, res); err != nil {
		return nil, err
	}
	k.logger.InfoContext(ctx, "customer logged in", slog.String("email", creds.Email))
	return res, nil
}

// Register creates an account. When the backend answers with a token the
// customer is logged in straight away.
func (k *Keeper) Register(ctx context.Context, reg domain.Registration) (*domain.AuthResult, error) {
	reg.Name = strings.TrimSpace(reg.Name)
	reg.Email = strings.TrimSpace(reg.Email)
	if reg.PasswordConfirm != "" && reg.Password != reg.PasswordConfirm {
		return nil, apperrors.ValidationFailed("senha_confirm", PasswordMismatch)
	}
	if err := validateInput(reg); err != nil {
		return nil, err
	}

	res, err := k.backend.Register(ctx, reg)
	if err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, apperrors.Unauthorized(failureMessage(res.Error))
	}
	if res.Token != "" {
		if err := k.accept(ctx, res); err != nil {
			return nil, err
		}
	}
	k.logger.InfoContext(ctx, "customer registered",
		slog.String("email", reg.Email),
		slog.Bool("logged_in", res.Token != ""),
	)
	return res, nil
}

// VerifyAccount confirms the e-mailed verification token.
func (k *Keeper) VerifyAccount(ctx context.Context, token string) (*domain.Ack, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperrors.ValidationFailed("token", "is required")
	}
	return k.backend.VerifyAccount(ctx, token)
}

// ResendVerification asks the backend to send the verification mail again.
func (k *Keeper) ResendVerification(ctx context.Context, email string) (*domain.Ack, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperrors.ValidationFailed("email", EmailRequired)
	}
	ack, err := k.backend.ResendVerification(ctx, email)
	if err != nil {
		return nil, err
	}
	if ack.Message == "" {
		ack.Message = VerificationResent
	}
	return ack, nil
}

// Logout forgets the token.
func (k *Keeper) Logout(ctx context.Context) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.clear(ctx)
}

// BearerToken returns the stored token when it is unexpired and the
// customer has been active within the inactivity window, and records the
// call as activity. Otherwise it logs the customer out and returns "".
func (k *Keeper) BearerToken(ctx context.Context) string {
	k.mu.Lock()
	defer k.mu.Unlock()

	token, id, ok := k.current(ctx)
	if !ok {
		return ""
	}

	now := k.now()
	if !id.ExpiresAt.IsZero() && !now.Before(id.ExpiresAt) {
		k.logger.InfoContext(ctx, "token expired, logging out", slog.String("customer_id", id.CustomerID))
		k.logoutLocked(ctx)
		return ""
	}
	if k.idle(ctx, now) {
		k.logger.WarnContext(ctx, InactivityMessage, slog.String("customer_id", id.CustomerID))
		k.logoutLocked(ctx)
		return ""
	}

	k.touchLocked(ctx, now)
	return token
}

// Customer returns the identity carried by a usable token.
func (k *Keeper) Customer(ctx context.Context) (Identity, bool) {
	if k.BearerToken(ctx) == "" {
		return Identity{}, false
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	_, id, ok := k.current(ctx)
	return id, ok
}

// Touch records activity without reading the token.
func (k *Keeper) Touch(ctx context.Context) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.touchLocked(ctx, k.now())
}

func (k *Keeper) accept(ctx context.Context, res *domain.AuthResult) error {
	if !res.Success || res.Token == "" {
		return apperrors.Unauthorized(failureMessage(res.Error))
	}
	if _, err := k.parse(res.Token); err != nil {
		return apperrors.Wrap(apperrors.Unauthorized("malformed token"), err.Error())
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	if err := k.store.Set(ctx, TokenKey, res.Token); err != nil {
		return apperrors.Wrap(err, "store token")
	}
	k.touchLocked(ctx, k.now())
	return nil
}

// current reads and decodes the stored token. A malformed token is removed.
func (k *Keeper) current(ctx context.Context) (string, Identity, bool) {
	token, err := k.store.Get(ctx, TokenKey)
	if err != nil {
		if !profile.IsNotFound(err) {
			k.logger.WarnContext(ctx, "failed to read token", slog.String("error", err.Error()))
		}
		return "", Identity{}, false
	}
	id, err := k.parse(token)
	if err != nil {
		k.logger.WarnContext(ctx, "discarding malformed token", slog.String("error", err.Error()))
		k.logoutLocked(ctx)
		return "", Identity{}, false
	}
	return token, id, true
}

func (k *Keeper) parse(token string) (Identity, error) {
	var claims customerClaims
	if _, _, err := k.parser.ParseUnverified(token, &claims); err != nil {
		return Identity{}, err
	}
	id := Identity{CustomerID: string(claims.CustomerID), Email: claims.Email}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id, nil
}

func (k *Keeper) idle(ctx context.Context, now time.Time) bool {
	if k.inactivity <= 0 {
		return false
	}
	raw, err := k.store.Get(ctx, ActivityKey)
	if err != nil {
		return false
	}
	last, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return false
	}
	return now.Sub(last) > k.inactivity
}

func (k *Keeper) touchLocked(ctx context.Context, now time.Time) {
	if err := k.store.Set(ctx, ActivityKey, now.UTC().Format(time.RFC3339Nano)); err != nil {
		k.logger.WarnContext(ctx, "failed to record activity", slog.String("error", err.Error()))
	}
}

func (k *Keeper) logoutLocked(ctx context.Context) {
	if err := k.clear(ctx); err != nil {
		k.logger.WarnContext(ctx, "failed to clear token", slog.String("error", err.Error()))
	}
}

func (k *Keeper) clear(ctx context.Context) error {
	return errors.Join(
		k.store.Delete(ctx, TokenKey),
		k.store.Delete(ctx, ActivityKey),
	)
}

func failureMessage(msg string) string {
	if msg == "" {
		return DefaultServerError
	}
	return msg
}

func validateInput(v any) error {
	err := validator.Validate(v)
	if err == nil {
		return nil
	}
	var ve *validator.ValidationError
	if errors.As(err, &ve) {
		field, msg := ve.First()
		return apperrors.ValidationFailed(field, msg)
	}
	return apperrors.InvalidInput(err.Error())
}
