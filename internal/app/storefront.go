package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Wjwesley1/queen-store-frontend/internal/auth"
	"github.com/Wjwesley1/queen-store-frontend/internal/config"
	"github.com/Wjwesley1/queen-store-frontend/internal/event"
	"github.com/Wjwesley1/queen-store-frontend/internal/profile"
	"github.com/Wjwesley1/queen-store-frontend/internal/service"
	"github.com/Wjwesley1/queen-store-frontend/internal/session"
	"github.com/Wjwesley1/queen-store-frontend/internal/storeapi"
	"github.com/Wjwesley1/queen-store-frontend/pkg/health"
	"github.com/Wjwesley1/queen-store-frontend/pkg/httpclient"
	pkgkafka "github.com/Wjwesley1/queen-store-frontend/pkg/kafka"
	"github.com/Wjwesley1/queen-store-frontend/pkg/tracing"
)

// Storefront wires the client stack used by one CLI invocation.
type Storefront struct {
	cfg    *config.Config
	logger *slog.Logger

	Profiles   profile.Store
	Sessions   *session.Provider
	Session    session.Context
	Keeper     *auth.Keeper
	API        *storeapi.Client
	Catalog    *service.Catalog
	Cart       *service.CartService
	Checkout   *service.CheckoutService
	Newsletter *service.Newsletter

	events         *event.Producer
	health         *health.Handler
	closeProfiles  func() error
	shutdownTracer func(context.Context) error
}

// NewStorefront builds every dependency from cfg. Notices from the services
// go to notifier.
func NewStorefront(ctx context.Context, cfg *config.Config, logger *slog.Logger, notifier service.Notifier) (*Storefront, error) {
	tcfg := cfg.Tracing
	if tcfg.ServiceName == "" {
		tcfg.ServiceName = "storefront"
	}
	shutdownTracer, err := tracing.InitTracer(ctx, tcfg)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	profiles, closeProfiles, err := profile.Open(ctx, cfg, logger)
	if err != nil {
		_ = shutdownTracer(ctx)
		return nil, fmt.Errorf("open profile store: %w", err)
	}

	// Store API transport, optionally behind a circuit breaker.
	var doer storeapi.HTTPDoer = httpclient.New(cfg.HTTPClient())
	if cfg.CBEnabled {
		doer = httpclient.NewCircuitBreakerClient(doer, cfg.CircuitBreaker(), logger).
			WithFallback(storeapi.CircuitOpenFallback)
	}

	sessions := session.NewProvider(profiles, logger)
	anon := storeapi.New(doer, cfg.StoreAPIURL, session.NewContext(sessions, nil), logger)
	keeper := auth.NewKeeper(anon, profiles, cfg.InactivityTimeout(), logger)
	api := anon.WithTokens(keeper)
	sc := session.NewContext(sessions, keeper)

	s := &Storefront{
		cfg:            cfg,
		logger:         logger,
		Profiles:       profiles,
		Sessions:       sessions,
		Session:        sc,
		Keeper:         keeper,
		API:            api,
		closeProfiles:  closeProfiles,
		shutdownTracer: shutdownTracer,
	}

	// Order events are optional.
	var events service.OrderEvents
	if len(cfg.KafkaBrokers) > 0 {
		producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		s.events = event.NewProducer(producer, logger)
		events = s.events
		logger.Debug("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	s.Catalog = service.NewCatalog(api, logger)
	s.Cart = service.NewCartService(api, service.NewMirror(), notifier, logger)
	s.Checkout = service.NewCheckoutService(api, s.Cart, sc, service.NewHandoff(cfg.WhatsAppNumber), events, notifier, logger)
	s.Newsletter = service.NewNewsletter(api, notifier, logger)

	// Health checks.
	s.health = health.NewHandler()
	s.health.RegisterCritical("store_api", api.Ping)
	s.health.RegisterCritical("profile_store", profiles.Ping)
	if s.events != nil {
		s.health.RegisterNonCritical("kafka", s.events.Ping)
	}

	return s, nil
}

// Health runs every dependency check.
func (s *Storefront) Health(ctx context.Context) health.Response {
	return s.health.Check(ctx)
}

// Close releases the profile store, the Kafka writer and the tracer.
func (s *Storefront) Close(ctx context.Context) error {
	var errs []error
	if s.events != nil {
		if err := s.events.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close kafka producer: %w", err))
		}
	}
	if err := s.closeProfiles(); err != nil {
		errs = append(errs, fmt.Errorf("close profile store: %w", err))
	}
	if err := s.shutdownTracer(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown tracer: %w", err))
	}
	return errors.Join(errs...)
}
