package usecases_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"leadrouter.backend/internal/config"
	"leadrouter.backend/internal/domain/entities"
	domainRepos "leadrouter.backend/internal/domain/repositories"
	"leadrouter.backend/internal/infrastructure/datasources/postgres"
	"leadrouter.backend/internal/infrastructure/models"
	"leadrouter.backend/internal/infrastructure/repositories"
	"leadrouter.backend/internal/usecases"
)

var fixedNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

type harness struct {
	t             *testing.T
	db            *gorm.DB
	leads         *repositories.LeadRepositoryImpl
	requests      *repositories.ServiceRequestRepositoryImpl
	alternatives  *repositories.AlternativeProviderRepositoryImpl
	proposals     *repositories.ProposalRepositoryImpl
	providers     *repositories.ProviderRepositoryImpl
	subscriptions *repositories.SubscriptionRepositoryImpl
	uow           domainRepos.UnitOfWork
	gateway       *MockChargeGateway
	bus           *recordingBus
	pricing       *usecases.PricingCalculator
	routing       *usecases.RoutingUsecase
	lead          *usecases.LeadUsecase
	payout        *usecases.PayoutUsecase
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, postgres.Migrate(db))

	h := &harness{
		t:             t,
		db:            db,
		leads:         repositories.NewLeadRepository(db),
		requests:      repositories.NewServiceRequestRepository(db),
		alternatives:  repositories.NewAlternativeProviderRepository(db),
		proposals:     repositories.NewProposalRepository(db),
		providers:     repositories.NewProviderRepository(db),
		subscriptions: repositories.NewSubscriptionRepository(db),
		gateway:       new(MockChargeGateway),
		bus:           &recordingBus{},
		pricing: usecases.NewPricingCalculator(config.PricingConfig{
			DefaultLeadCostCents: 2000,
			PlatformFeePercent:   0.10,
		}),
	}
	uow := repositories.NewUnitOfWork(db)
	h.uow = uow

	h.routing = usecases.NewRoutingUsecase(h.leads, h.requests, h.alternatives, h.providers, uow, h.pricing, h.bus, 24*time.Hour, 50)
	h.routing.SetClock(func() time.Time { return fixedNow })
	h.lead = usecases.NewLeadUsecase(h.leads, h.requests, h.proposals, h.providers, h.subscriptions, uow, h.gateway, h.pricing, h.bus, h.routing, "usd")
	h.lead.SetClock(func() time.Time { return fixedNow })
	h.payout = usecases.NewPayoutUsecase(h.proposals, h.providers, uow, h.pricing)
	h.payout.SetClock(func() time.Time { return fixedNow })
	return h
}

func (h *harness) provider(name string, active bool) *entities.Provider {
	h.t.Helper()
	p := &entities.Provider{
		UserID:       uuid.New(),
		BusinessID:   uuid.New(),
		BusinessName: name + " LLC",
		Name:         name,
		Email:        name + "@example.com",
		IsActive:     active,
	}
	require.NoError(h.t, h.providers.Create(context.Background(), p))
	return p
}

func (h *harness) request(opts ...func(*entities.ServiceRequest)) *entities.ServiceRequest {
	h.t.Helper()
	req := &entities.ServiceRequest{
		CustomerID:         uuid.New(),
		CategoryID:         uuid.New(),
		ZipCode:            "94110",
		ProjectTitle:       "Replace fence",
		ProjectDescription: "40ft cedar fence",
		PreferredDate:      "2026-04-01",
		Attachments:        []string{"https://cdn.example.com/fence.jpg"},
		ContactName:        "Dana",
		ContactEmail:       "dana@example.com",
	}
	for _, opt := range opts {
		opt(req)
	}
	require.NoError(h.t, h.requests.Create(context.Background(), req))
	return req
}

func (h *harness) leadFor(req *entities.ServiceRequest, p *entities.Provider, status entities.LeadStatus) *entities.Lead {
	h.t.Helper()
	lead := &entities.Lead{
		ServiceRequestID: req.ID,
		CustomerID:       req.CustomerID,
		ProviderID:       p.UserID,
		BusinessID:       p.BusinessID,
		CategoryID:       req.CategoryID,
		Status:           status,
		LeadCostCents:    2000,
		Metadata:         entities.LeadMetadata{Project: req.Snapshot()},
	}
	if status == entities.LeadStatusAccepted {
		responded := fixedNow.Add(-time.Hour)
		lead.RespondedAt = &responded
	}
	require.NoError(h.t, h.leads.Create(context.Background(), lead))
	return lead
}

func (h *harness) subscribe(p *entities.Provider, discount float64, maxLeads *int) {
	h.t.Helper()
	require.NoError(h.t, h.db.Create(&models.ProviderSubscription{
		ID:                  uuid.New(),
		UserID:              p.UserID,
		Tier:                "pro",
		Status:              "active",
		LeadDiscountPercent: discount,
		MaxLeadsPerMonth:    maxLeads,
		CreatedAt:           time.Now(),
		UpdatedAt:           time.Now(),
	}).Error)
}

func (h *harness) reload(id uuid.UUID) *entities.Lead {
	h.t.Helper()
	lead, err := h.leads.GetByID(context.Background(), id)
	require.NoError(h.t, err)
	return lead
}

func (h *harness) providerLeads(p *entities.Provider) []*entities.Lead {
	h.t.Helper()
	leads, _, err := h.leads.ListByProvider(context.Background(), p.UserID, domainRepos.LeadFilter{})
	require.NoError(h.t, err)
	return leads
}
