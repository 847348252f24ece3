package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Wjwesley1/queen-store-frontend/internal/domain"
	apperrors "github.com/Wjwesley1/queen-store-frontend/pkg/errors"
	"github.com/Wjwesley1/queen-store-frontend/pkg/validator"
)

const (
	msgSubscribed      = "Inscrição realizada!"
	msgSubscribeFailed = "Erro ao enviar"
	msgInvalidEmail    = "Digite um email válido"
)

// ContactAPI posts newsletter sign-ups.
type ContactAPI interface {
	Subscribe(ctx context.Context, sub domain.Subscription) (*domain.Ack, error)
}

// Newsletter signs customers up for promotional e-mail.
type Newsletter struct {
	api      ContactAPI
	notifier Notifier
	logger   *slog.Logger
}

// NewNewsletter creates a Newsletter.
func NewNewsletter(api ContactAPI, notifier Notifier, logger *slog.Logger) *Newsletter {
	return &Newsletter{api: api, notifier: notifier, logger: logger}
}

// Subscribe validates email and posts it.
func (n *Newsletter) Subscribe(ctx context.Context, email string) error {
	sub := domain.Subscription{Email: strings.TrimSpace(email)}
	if err := validator.Validate(sub); err != nil {
		n.notifier.Notify(ctx, failure(msgInvalidEmail))
		return apperrors.ValidationFailed("email", msgInvalidEmail)
	}

	if _, err := n.api.Subscribe(ctx, sub); err != nil {
		n.notifier.Notify(ctx, failure(msgSubscribeFailed))
		n.logger.ErrorContext(ctx, "newsletter subscription failed", slog.String("error", err.Error()))
		return apperrors.Wrap(err, "subscribe")
	}

	n.notifier.Notify(ctx, success(msgSubscribed))
	n.logger.InfoContext(ctx, "newsletter subscription", slog.String("email", sub.Email))
	return nil
}
