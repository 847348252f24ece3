package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Wjwesley1/queen-store-frontend/internal/domain"
	apperrors "github.com/Wjwesley1/queen-store-frontend/pkg/errors"
	"github.com/Wjwesley1/queen-store-frontend/pkg/validator"
)

// Checkout notices.
const (
	msgOrderRecorded = "Pedido enviado! Finalize pelo WhatsApp."
	msgOrderPartial  = "Não foi possível registrar o pedido, mas você ainda pode finalizá-lo pelo WhatsApp."
)

// OrderAPI creates orders on the backend.
type OrderAPI interface {
	CreateOrder(ctx context.Context, draft domain.OrderDraft) (*domain.CreatedOrder, error)
}

// SessionRotator exposes the session id and its rotation.
type SessionRotator interface {
	SessionID(ctx context.Context) string
	Rotate(ctx context.Context) string
}

// OrderEvents publishes submission outcomes. May be nil.
type OrderEvents interface {
	PublishOrderSubmitted(ctx context.Context, sessionID string, result *domain.OrderResult) error
}

// CheckoutService turns the cart mirror and contact details into an order,
// then clears the cart and starts a new session whatever the order outcome.
type CheckoutService struct {
	orders   OrderAPI
	cart     *CartService
	sessions SessionRotator
	handoff  *Handoff
	events   OrderEvents
	notifier Notifier
	logger   *slog.Logger
}

// NewCheckoutService creates a new checkout service. events may be nil.
func NewCheckoutService(
	orders OrderAPI,
	cart *CartService,
	sessions SessionRotator,
	handoff *Handoff,
	events OrderEvents,
	notifier Notifier,
	logger *slog.Logger,
) *CheckoutService {
	return &CheckoutService{
		orders:   orders,
		cart:     cart,
		sessions: sessions,
		handoff:  handoff,
		events:   events,
		notifier: notifier,
		logger:   logger,
	}
}

// Submit validates contact, posts the order, clears the remote cart,
// rotates the session and refreshes the mirror. A failed order POST does
// not stop the later steps: the result then has status partial_failure and
// still carries the handoff message. The only error returned is a
// validation failure, raised before any request is made.
func (s *CheckoutService) Submit(ctx context.Context, cart domain.Cart, contact domain.ContactInfo) (*domain.OrderResult, error) {
	sub := domain.NewSubmission()
	contact = contact.Normalize()

	if err := s.advance(sub, domain.StateValidating); err != nil {
		return nil, err
	}
	if err := validateOrder(cart, contact); err != nil {
		orderSubmissionsTotal.WithLabelValues("validation_failed").Inc()
		s.notifier.Notify(ctx, failure(fmt.Sprintf("%s: %s", err.Field, err.Message)))
		s.logger.InfoContext(ctx, "order rejected by validation",
			slog.String("field", err.Field),
			slog.String("reason", err.Message),
		)
		if terr := s.advance(sub, domain.StateValidationFailed); terr != nil {
			return nil, terr
		}
		return nil, err
	}

	sessionID := s.sessions.SessionID(ctx)
	draft := domain.NewOrderDraft(cart, contact)
	message := s.handoff.Message(draft)
	result := &domain.OrderResult{
		Message:    message,
		HandoffURL: s.handoff.URL(message),
		Draft:      draft,
	}

	// (1) Create the order.
	if err := s.advance(sub, domain.StateSubmitting); err != nil {
		return nil, err
	}
	created, orderErr := s.orders.CreateOrder(ctx, draft)
	if orderErr != nil {
		sub.Fail(domain.StepCreateOrder, orderErr)
		result.Status = domain.OrderPartialFailure
		result.OrderError = orderErr
		s.logger.ErrorContext(ctx, "order not recorded, continuing with handoff",
			slog.String("session_id", sessionID),
			slog.String("total", draft.Total.String()),
			slog.Int("lines", len(draft.Items)),
			slog.String("error", orderErr.Error()),
		)
		if err := s.advance(sub, domain.StatePartialFailure); err != nil {
			return nil, err
		}
	} else {
		sub.Complete(domain.StepCreateOrder)
		result.Status = domain.OrderRecorded
		result.OrderID = string(created.ID)
		s.logger.InfoContext(ctx, "order recorded",
			slog.String("session_id", sessionID),
			slog.String("order_id", result.OrderID),
			slog.String("total", draft.Total.String()),
		)
		if err := s.advance(sub, domain.StateRecorded); err != nil {
			return nil, err
		}
	}

	// (2) Best-effort cart cleanup.
	if err := s.advance(sub, domain.StateCartClearing); err != nil {
		return nil, err
	}
	switch failed := s.cart.clearRemote(ctx, cart); {
	case cart.IsEmpty():
		sub.Skip(domain.StepClearCart)
	case len(failed) > 0:
		sub.Fail(domain.StepClearCart, fmt.Errorf("could not delete products %v", failed))
	default:
		sub.Complete(domain.StepClearCart)
	}

	// (3) New session so the cleared cart scope is never reused.
	if err := s.advance(sub, domain.StateSessionRotating); err != nil {
		return nil, err
	}
	s.sessions.Rotate(ctx)
	sub.Complete(domain.StepRotateSession)

	// (4) Refresh the mirror, expected empty.
	s.cart.Refresh(ctx)
	sub.Complete(domain.StepRefreshCart)

	if err := s.advance(sub, domain.StateDone); err != nil {
		return nil, err
	}
	result.Steps = sub.Steps()

	orderSubmissionsTotal.WithLabelValues(string(result.Status)).Inc()
	if result.Recorded() {
		s.notifier.Notify(ctx, success(msgOrderRecorded))
	} else {
		s.notifier.Notify(ctx, Notice{Level: NoticeInfo, Message: msgOrderPartial})
	}

	if s.events != nil {
		if err := s.events.PublishOrderSubmitted(ctx, sessionID, result); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish order submitted event",
				slog.String("session_id", sessionID),
				slog.String("error", err.Error()),
			)
		}
	}

	return result, nil
}

func (s *CheckoutService) advance(sub *domain.Submission, next domain.SubmissionState) error {
	if err := sub.Transition(next); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

func validateOrder(cart domain.Cart, contact domain.ContactInfo) *apperrors.AppError {
	if err := validator.Validate(contact); err != nil {
		var ve *validator.ValidationError
		if errors.As(err, &ve) {
			field, msg := ve.First()
			return apperrors.ValidationFailed(field, msg)
		}
		return apperrors.ValidationFailed("", err.Error())
	}
	if cart.IsEmpty() {
		return apperrors.ValidationFailed("itens", "cart is empty")
	}
	return nil
}
