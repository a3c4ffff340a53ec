package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"leadrouter.backend/internal/domain/entities"
	domainerrors "leadrouter.backend/internal/domain/errors"
	domainevents "leadrouter.backend/internal/domain/events"
	domainRepos "leadrouter.backend/internal/domain/repositories"
	"leadrouter.backend/pkg/events"
	"leadrouter.backend/pkg/logger"
	"leadrouter.backend/pkg/metrics"
	"leadrouter.backend/pkg/utils"
)

// RoutingUsecase creates leads for service requests and reassigns them when
// providers decline or let the priority window lapse.
type RoutingUsecase struct {
	leadRepo        domainRepos.LeadRepository
	requestRepo     domainRepos.ServiceRequestRepository
	alternativeRepo domainRepos.AlternativeProviderRepository
	providerRepo    domainRepos.ProviderRepository
	uow             domainRepos.UnitOfWork
	pricing         *PricingCalculator
	bus             events.Bus
	priorityWindow  time.Duration
	batchSize       int
	now             func() time.Time
}

func NewRoutingUsecase(
	leadRepo domainRepos.LeadRepository,
	requestRepo domainRepos.ServiceRequestRepository,
	alternativeRepo domainRepos.AlternativeProviderRepository,
	providerRepo domainRepos.ProviderRepository,
	uow domainRepos.UnitOfWork,
	pricing *PricingCalculator,
	bus events.Bus,
	priorityWindow time.Duration,
	batchSize int,
) *RoutingUsecase {
	if priorityWindow <= 0 {
		priorityWindow = DefaultPriorityWindow
	}
	if batchSize <= 0 {
		batchSize = DefaultSweepBatchSize
	}
	return &RoutingUsecase{
		leadRepo:        leadRepo,
		requestRepo:     requestRepo,
		alternativeRepo: alternativeRepo,
		providerRepo:    providerRepo,
		uow:             uow,
		pricing:         pricing,
		bus:             bus,
		priorityWindow:  priorityWindow,
		batchSize:       batchSize,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the time source.
func (uc *RoutingUsecase) SetClock(now func() time.Time) {
	uc.now = now
}

// RouteResult lists the leads created for a service request
type RouteResult struct {
	ServiceRequestID uuid.UUID   `json:"serviceRequestId"`
	LeadIDs          []uuid.UUID `json:"leadIds"`
	Skipped          int         `json:"skipped"`
}

// leadPlacement describes one lead about to be created
type leadPlacement struct {
	request  *entities.ServiceRequest
	provider *entities.Provider
	status   entities.LeadStatus
	channel  string
	from     *entities.Lead
	expires  *time.Time
	fallback []uuid.UUID
}

// RouteServiceRequest creates the initial leads for a request. With a primary
// provider only that provider gets a lead, holding the other selected
// businesses as fallbacks for when its priority window lapses.
func (uc *RoutingUsecase) RouteServiceRequest(ctx context.Context, requestID uuid.UUID) (*RouteResult, error) {
	request, err := uc.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, domainerrors.FromRepository(err, "service request not found")
	}
	if request.Status != entities.ServiceRequestStatusOpen {
		return nil, domainerrors.InvalidState(fmt.Sprintf("service request cannot be routed in status %s", request.Status))
	}

	result := &RouteResult{ServiceRequestID: request.ID, LeadIDs: []uuid.UUID{}}
	var placements []leadPlacement

	if request.PrimaryProviderID != nil {
		primary, err := uc.providerRepo.GetByUserID(ctx, *request.PrimaryProviderID)
		if err != nil && !errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.InternalError(err)
		}
		if err == nil && primary.IsActive {
			expires := uc.now().Add(uc.priorityWindow)
			placements = append(placements, leadPlacement{
				request:  request,
				provider: primary,
				status:   entities.LeadStatusSubmitted,
				channel:  entities.AssignmentChannelInitial,
				expires:  &expires,
				fallback: excludeID(request.SelectedBusinessIDs, primary.BusinessID),
			})
		} else {
			logger.Warn(ctx, "Primary provider unavailable, routing to selected businesses", zap.String("service_request_id", request.ID.String()))
		}
	}

	if len(placements) == 0 {
		for _, businessID := range uniqueIDs(request.SelectedBusinessIDs) {
			provider, ok, err := uc.activeProviderForBusiness(ctx, businessID)
			if err != nil {
				return nil, domainerrors.InternalError(err)
			}
			if !ok {
				result.Skipped++
				continue
			}
			placements = append(placements, leadPlacement{
				request:  request,
				provider: provider,
				status:   entities.LeadStatusSubmitted,
				channel:  entities.AssignmentChannelInitial,
			})
		}
	}

	var created []createdLead
	err = uc.uow.Do(ctx, func(txCtx context.Context) error {
		for _, p := range placements {
			lead, err := uc.place(txCtx, p)
			if err != nil {
				return err
			}
			if lead == nil {
				result.Skipped++
				continue
			}
			created = append(created, createdLead{lead: lead, provider: p.provider})
		}
		return nil
	})
	if err != nil {
		return nil, domainerrors.FromRepository(err, "service request not found")
	}

	for _, c := range created {
		result.LeadIDs = append(result.LeadIDs, c.lead.ID)
		uc.publishAssigned(ctx, c.lead, c.provider, request)
	}
	logger.Info(ctx, "Service request routed",
		zap.String("service_request_id", request.ID.String()),
		zap.Int("leads", len(result.LeadIDs)),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

type createdLead struct {
	lead     *entities.Lead
	provider *entities.Provider
}

// ReassignToAlternative gives the request to the first eligible alternative
// provider, in position order. It returns nil when nobody is eligible.
func (uc *RoutingUsecase) ReassignToAlternative(ctx context.Context, rejected *entities.Lead) (*entities.Lead, error) {
	request, err := uc.requestRepo.GetByID(ctx, rejected.ServiceRequestID)
	if err != nil {
		metrics.RecordReassignment(metrics.ChannelAlternative, "error")
		return nil, fmt.Errorf("load service request: %w", err)
	}
	selections, err := uc.alternativeRepo.ListByServiceRequest(ctx, request.ID)
	if err != nil {
		metrics.RecordReassignment(metrics.ChannelAlternative, "error")
		return nil, fmt.Errorf("list alternatives: %w", err)
	}

	for _, selection := range selections {
		if selection.ProviderID == rejected.ProviderID {
			continue
		}
		provider, err := uc.providerRepo.GetByUserID(ctx, selection.ProviderID)
		if errors.Is(err, domainerrors.ErrNotFound) {
			continue
		}
		if err != nil {
			metrics.RecordReassignment(metrics.ChannelAlternative, "error")
			return nil, fmt.Errorf("load provider: %w", err)
		}
		if !provider.IsActive {
			continue
		}

		var lead *entities.Lead
		err = uc.uow.Do(ctx, func(txCtx context.Context) error {
			lead, err = uc.place(txCtx, leadPlacement{
				request:  request,
				provider: provider,
				status:   entities.LeadStatusRouted,
				channel:  entities.AssignmentChannelAlternative,
				from:     rejected,
			})
			return err
		})
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			// lost a race for this provider's live slot
			continue
		}
		if err != nil {
			metrics.RecordReassignment(metrics.ChannelAlternative, "error")
			return nil, err
		}
		if lead == nil {
			continue
		}

		metrics.RecordReassignment(metrics.ChannelAlternative, "assigned")
		logger.Info(ctx, "Lead reassigned to alternative provider",
			zap.String("lead_id", lead.ID.String()),
			zap.String("rejected_lead_id", rejected.ID.String()),
			zap.String("service_request_id", request.ID.String()),
		)
		uc.publishAssigned(ctx, lead, provider, request)
		return lead, nil
	}

	metrics.RecordReassignment(metrics.ChannelAlternative, "none")
	logger.Info(ctx, "No eligible alternative provider", zap.String("service_request_id", request.ID.String()))
	return nil, nil
}

// AssignToFallbackBusinesses creates one routed lead per fallback business of
// the expired lead in a single transaction. Businesses without an active
// provider, or whose provider already holds a live lead for the request, are
// skipped.
func (uc *RoutingUsecase) AssignToFallbackBusinesses(ctx context.Context, expired *entities.Lead) ([]*entities.Lead, error) {
	request, err := uc.requestRepo.GetByID(ctx, expired.ServiceRequestID)
	if err != nil {
		return nil, domainerrors.FromRepository(err, "service request not found")
	}
	var created []createdLead
	err = uc.uow.Do(ctx, func(txCtx context.Context) error {
		created, err = uc.assignFallbacks(txCtx, expired, request)
		return err
	})
	if err != nil {
		return nil, domainerrors.FromRepository(err, "lead not found")
	}

	leads := make([]*entities.Lead, 0, len(created))
	for _, c := range created {
		uc.publishAssigned(ctx, c.lead, c.provider, request)
		leads = append(leads, c.lead)
	}
	return leads, nil
}

func (uc *RoutingUsecase) assignFallbacks(ctx context.Context, expired *entities.Lead, request *entities.ServiceRequest) ([]createdLead, error) {
	var created []createdLead
	for _, businessID := range uniqueIDs(expired.Metadata.FallbackBusinessIDs) {
		provider, ok, err := uc.activeProviderForBusiness(ctx, businessID)
		if err != nil {
			return nil, err
		}
		if !ok || provider.UserID == expired.ProviderID {
			continue
		}
		lead, err := uc.place(ctx, leadPlacement{
			request:  request,
			provider: provider,
			status:   entities.LeadStatusRouted,
			channel:  entities.AssignmentChannelFallback,
			from:     expired,
		})
		if err != nil {
			return nil, err
		}
		if lead != nil {
			created = append(created, createdLead{lead: lead, provider: provider})
		}
	}
	return created, nil
}

// SweepResult summarizes one fallback sweep run
type SweepResult struct {
	Processed int `json:"processedCount"`
	Assigned  int `json:"assignedCount"`
	Skipped   int `json:"skippedCount"`
	Failed    int `json:"failedCount"`
}

// RunFallbackSweep reassigns every lead whose priority window lapsed at or
// before now. A failing lead is logged and left for the next run.
func (uc *RoutingUsecase) RunFallbackSweep(ctx context.Context, now time.Time) (*SweepResult, error) {
	start := time.Now()
	defer func() { metrics.SweepDuration.Observe(time.Since(start).Seconds()) }()

	due, undecodable, err := uc.leadRepo.ListFallbackDue(ctx, now, uc.batchSize)
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}

	result := &SweepResult{}
	for _, id := range undecodable {
		result.Failed++
		metrics.RecordReassignment(metrics.ChannelFallback, "error")
		logger.Error(ctx, "Fallback skipped lead with unreadable metadata", zap.String("lead_id", id.String()))
		// stamped so it stops taking a batch slot on every run
		if err := uc.leadRepo.MarkFallbackProcessed(ctx, id, now); err != nil {
			logger.Error(ctx, "Stamping unreadable lead failed", zap.String("lead_id", id.String()), zap.Error(err))
		}
	}
	for _, lead := range due {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		assigned, err := uc.fallbackLead(ctx, lead.ID, now)
		if err != nil {
			result.Failed++
			metrics.RecordReassignment(metrics.ChannelFallback, "error")
			logger.Error(ctx, "Fallback reassignment failed", zap.String("lead_id", lead.ID.String()), zap.Error(err))
			continue
		}
		result.Processed++
		if assigned == 0 {
			result.Skipped++
			metrics.RecordReassignment(metrics.ChannelFallback, "none")
			continue
		}
		result.Assigned += assigned
		metrics.RecordReassignment(metrics.ChannelFallback, "assigned")
	}

	logger.Info(ctx, "Fallback sweep finished",
		zap.Int("due", len(due)+len(undecodable)),
		zap.Int("processed", result.Processed),
		zap.Int("assigned", result.Assigned),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

// fallbackLead reassigns one expired lead and stamps it so it never falls
// back twice. Nothing is assigned when the request already has an accepted lead.
func (uc *RoutingUsecase) fallbackLead(ctx context.Context, leadID uuid.UUID, now time.Time) (int, error) {
	var (
		created []createdLead
		request *entities.ServiceRequest
	)
	err := uc.uow.Do(ctx, func(txCtx context.Context) error {
		lead, err := uc.leadRepo.GetByID(uc.uow.WithLock(txCtx), leadID)
		if err != nil {
			return err
		}
		if !lead.FallbackDue(now) {
			return nil
		}

		accepted, err := uc.leadRepo.HasAcceptedLead(txCtx, lead.ServiceRequestID)
		if err != nil {
			return err
		}
		if !accepted && len(lead.Metadata.FallbackBusinessIDs) > 0 {
			request, err = uc.requestRepo.GetByID(txCtx, lead.ServiceRequestID)
			if err != nil {
				return fmt.Errorf("load service request: %w", err)
			}
			created, err = uc.assignFallbacks(txCtx, lead, request)
			if err != nil {
				return err
			}
		}

		stamped := now
		lead.FallbackProcessedAt = &stamped
		return uc.leadRepo.Update(txCtx, lead)
	})
	if err != nil {
		return 0, err
	}

	for _, c := range created {
		uc.publishAssigned(ctx, c.lead, c.provider, request)
	}
	return len(created), nil
}

// place creates a lead unless the provider already holds a live one for the
// request, in which case it returns nil.
func (uc *RoutingUsecase) place(ctx context.Context, p leadPlacement) (*entities.Lead, error) {
	live, err := uc.leadRepo.HasLiveLead(ctx, p.request.ID, p.provider.UserID)
	if err != nil {
		return nil, err
	}
	if live {
		return nil, nil
	}

	now := uc.now()
	lead := &entities.Lead{
		ID:                utils.GenerateUUIDv7(),
		ServiceRequestID:  p.request.ID,
		CustomerID:        p.request.CustomerID,
		ProviderID:        p.provider.UserID,
		BusinessID:        p.provider.BusinessID,
		CategoryID:        p.request.CategoryID,
		Status:            p.status,
		LeadCostCents:     uc.pricing.BaseLeadCost(p.request.CategoryID),
		PriorityExpiresAt: p.expires,
		Metadata: entities.LeadMetadata{
			Project:             p.request.Snapshot(),
			FallbackBusinessIDs: p.fallback,
		},
	}
	if p.from != nil {
		lead.Metadata.AssignedFrom = &entities.AssignedFrom{
			LeadID:     p.from.ID,
			ProviderID: p.from.ProviderID,
			Channel:    p.channel,
			AssignedAt: now,
		}
	}
	if err := uc.leadRepo.Create(ctx, lead); err != nil {
		return nil, err
	}
	metrics.RecordTransition("", string(lead.Status))
	return lead, nil
}

func (uc *RoutingUsecase) activeProviderForBusiness(ctx context.Context, businessID uuid.UUID) (*entities.Provider, bool, error) {
	provider, err := uc.providerRepo.GetByBusinessID(ctx, businessID)
	if errors.Is(err, domainerrors.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return provider, provider.IsActive, nil
}

func (uc *RoutingUsecase) publishAssigned(ctx context.Context, lead *entities.Lead, provider *entities.Provider, request *entities.ServiceRequest) {
	channel := entities.AssignmentChannelInitial
	if lead.Metadata.AssignedFrom != nil {
		channel = lead.Metadata.AssignedFrom.Channel
	}
	uc.bus.Publish(ctx, domainevents.LeadAssigned{
		BaseEvent:        events.NewBaseEvent(),
		LeadID:           lead.ID,
		ServiceRequestID: lead.ServiceRequestID,
		ProviderID:       lead.ProviderID,
		ProviderName:     provider.Name,
		ProviderEmail:    provider.Email,
		ProjectTitle:     request.ProjectTitle,
		ZipCode:          request.ZipCode,
		Channel:          channel,
	})
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func excludeID(ids []uuid.UUID, drop uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range uniqueIDs(ids) {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}
