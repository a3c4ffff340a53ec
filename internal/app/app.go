// Package app wires repositories, usecases and the event bus shared by the
// API server and the scheduler.
package app

import (
	"time"

	"gorm.io/gorm"

	"leadrouter.backend/internal/config"
	"leadrouter.backend/internal/domain/gateways"
	"leadrouter.backend/internal/infrastructure/notifications"
	"leadrouter.backend/internal/infrastructure/payments"
	"leadrouter.backend/internal/infrastructure/repositories"
	"leadrouter.backend/internal/usecases"
	"leadrouter.backend/pkg/events"
)

// EventHandlerTimeout bounds each async event handler
const EventHandlerTimeout = 30 * time.Second

type Application struct {
	Leads   *usecases.LeadUsecase
	Routing *usecases.RoutingUsecase
	Payouts *usecases.PayoutUsecase
	Bus     *events.InMemoryBus
}

// NewChargeGateway returns the Stripe gateway for cfg
func NewChargeGateway(cfg config.StripeConfig) gateways.ChargeGateway {
	return payments.NewStripeGateway(cfg.SecretKey)
}

// NewNotifier sends over SMTP when a host is configured and logs otherwise
func NewNotifier(cfg config.SMTPConfig) gateways.Notifier {
	if cfg.Enabled() {
		return notifications.NewSMTPNotifier(cfg)
	}
	return notifications.NewLogNotifier()
}

func New(cfg *config.Config, db *gorm.DB, gateway gateways.ChargeGateway) *Application {
	leadRepo := repositories.NewLeadRepository(db)
	requestRepo := repositories.NewServiceRequestRepository(db)
	alternativeRepo := repositories.NewAlternativeProviderRepository(db)
	proposalRepo := repositories.NewProposalRepository(db)
	providerRepo := repositories.NewProviderRepository(db)
	subscriptionRepo := repositories.NewSubscriptionRepository(db)
	uow := repositories.NewUnitOfWork(db)

	bus := events.NewInMemoryBus(EventHandlerTimeout)
	usecases.NewNotificationDispatcher(NewNotifier(cfg.SMTP)).Register(bus)

	pricing := usecases.NewPricingCalculator(cfg.Pricing)
	routing := usecases.NewRoutingUsecase(
		leadRepo, requestRepo, alternativeRepo, providerRepo, uow, pricing, bus,
		cfg.Routing.PriorityWindow, cfg.Routing.SweepBatchSize,
	)
	leads := usecases.NewLeadUsecase(
		leadRepo, requestRepo, proposalRepo, providerRepo, subscriptionRepo, uow,
		gateway, pricing, bus, routing, cfg.Stripe.Currency,
	)
	payouts := usecases.NewPayoutUsecase(proposalRepo, providerRepo, uow, pricing)

	return &Application{Leads: leads, Routing: routing, Payouts: payouts, Bus: bus}
}
