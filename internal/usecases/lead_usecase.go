package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"leadrouter.backend/internal/domain/entities"
	domainerrors "leadrouter.backend/internal/domain/errors"
	domainevents "leadrouter.backend/internal/domain/events"
	"leadrouter.backend/internal/domain/gateways"
	domainRepos "leadrouter.backend/internal/domain/repositories"
	"leadrouter.backend/pkg/events"
	"leadrouter.backend/pkg/logger"
	"leadrouter.backend/pkg/metrics"
	"leadrouter.backend/pkg/utils"
)

// LeadReassigner hands a rejected lead to the next alternative provider.
type LeadReassigner interface {
	ReassignToAlternative(ctx context.Context, rejected *entities.Lead) (*entities.Lead, error)
}

type LeadUsecase struct {
	leadRepo         domainRepos.LeadRepository
	requestRepo      domainRepos.ServiceRequestRepository
	proposalRepo     domainRepos.ProposalRepository
	providerRepo     domainRepos.ProviderRepository
	subscriptionRepo domainRepos.SubscriptionRepository
	uow              domainRepos.UnitOfWork
	gateway          gateways.ChargeGateway
	pricing          *PricingCalculator
	bus              events.Bus
	reassigner       LeadReassigner
	currency         string
	now              func() time.Time
}

func NewLeadUsecase(
	leadRepo domainRepos.LeadRepository,
	requestRepo domainRepos.ServiceRequestRepository,
	proposalRepo domainRepos.ProposalRepository,
	providerRepo domainRepos.ProviderRepository,
	subscriptionRepo domainRepos.SubscriptionRepository,
	uow domainRepos.UnitOfWork,
	gateway gateways.ChargeGateway,
	pricing *PricingCalculator,
	bus events.Bus,
	reassigner LeadReassigner,
	currency string,
) *LeadUsecase {
	return &LeadUsecase{
		leadRepo:         leadRepo,
		requestRepo:      requestRepo,
		proposalRepo:     proposalRepo,
		providerRepo:     providerRepo,
		subscriptionRepo: subscriptionRepo,
		uow:              uow,
		gateway:          gateway,
		pricing:          pricing,
		bus:              bus,
		reassigner:       reassigner,
		currency:         currency,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the time source.
func (uc *LeadUsecase) SetClock(now func() time.Time) {
	uc.now = now
}

type AcceptLeadInput struct {
	LeadID              uuid.UUID
	ProviderID          uuid.UUID
	PaymentMethodRef    string
	ProposalDescription string
	ProposalPrice       float64
}

func (in AcceptLeadInput) validate() error {
	if strings.TrimSpace(in.PaymentMethodRef) == "" {
		return domainerrors.Validation("payment method is required")
	}
	return validateProposal(in.ProposalDescription, in.ProposalPrice)
}

func validateProposal(description string, price float64) error {
	if strings.TrimSpace(description) == "" {
		return domainerrors.Validation("proposal description is required")
	}
	if price <= 0 {
		return domainerrors.Validation("proposal price must be greater than zero")
	}
	return nil
}

type AcceptLeadOutput struct {
	LeadID          uuid.UUID                   `json:"leadId"`
	Status          entities.PresentationStatus `json:"status"`
	RequiresAction  bool                        `json:"requiresAction"`
	Processing      bool                        `json:"processing"`
	ClientSecret    string                      `json:"clientSecret,omitempty"`
	PaymentIntentID string                      `json:"paymentIntentId,omitempty"`
	LeadCost        int64                       `json:"leadCost"`
	ProposalID      *uuid.UUID                  `json:"proposalId,omitempty"`
	Contact         *entities.ContactDetails    `json:"contact,omitempty"`
}

// AcceptLead charges the provider for the lead and, once paid, reveals the
// customer contact and records the provider's proposal.
func (uc *LeadUsecase) AcceptLead(ctx context.Context, in AcceptLeadInput) (*AcceptLeadOutput, error) {
	lead, err := uc.ownedLead(ctx, in.LeadID, in.ProviderID)
	if err != nil {
		return nil, err
	}
	if lead.Status == entities.LeadStatusAccepted {
		return nil, domainerrors.AlreadyAccepted("lead has already been accepted")
	}
	if !lead.Status.CanRespond() {
		return nil, domainerrors.InvalidState(fmt.Sprintf("lead cannot be accepted in status %s", lead.Status))
	}
	if lead.AwaitingPayment() {
		return uc.resumeAcceptance(ctx, lead, in)
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	benefits, err := uc.subscriptionRepo.GetBenefits(ctx, in.ProviderID)
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}
	if benefits.HasQuota() {
		used, err := uc.leadRepo.CountAcceptedSince(ctx, in.ProviderID, monthStart(uc.now()))
		if err != nil {
			return nil, domainerrors.InternalError(err)
		}
		if used >= benefits.MaxLeadsPerMonth {
			return nil, domainerrors.QuotaExceeded(used, benefits.MaxLeadsPerMonth)
		}
	}

	cost := uc.pricing.LeadCost(lead.CategoryID, benefits)
	proposal := entities.PendingProposal{
		Description: strings.TrimSpace(in.ProposalDescription),
		Price:       in.ProposalPrice,
	}
	result, err := uc.gateway.CreateAndConfirm(ctx, gateways.ChargeRequest{
		AmountCents:      cost,
		Currency:         uc.currency,
		PaymentMethodRef: in.PaymentMethodRef,
		IdempotencyKey:   chargeIdempotencyKey(lead.ID, lead.Metadata.ChargeAttempt, in.PaymentMethodRef),
		Description:      "Lead " + lead.ID.String(),
		Metadata: map[string]string{
			"leadId":           lead.ID.String(),
			"providerId":       lead.ProviderID.String(),
			"serviceRequestId": lead.ServiceRequestID.String(),
		},
	})
	if err != nil {
		metrics.RecordCharge("error")
		logger.Error(ctx, "Lead charge failed", zap.String("lead_id", lead.ID.String()), zap.Error(err))
		return nil, domainerrors.PaymentFailed(err.Error(), err)
	}

	switch {
	case result.Status == gateways.ChargeStatusSucceeded:
		metrics.RecordCharge(string(result.Status))
		return uc.completeAcceptance(ctx, lead.ID, result.ID, proposal, cost)
	case result.Status.Pending():
		metrics.RecordCharge(string(result.Status))
		if err := uc.stashIntent(ctx, lead.ID, result.ID, proposal, cost); err != nil {
			return nil, domainerrors.FromRepository(err, "lead not found")
		}
		return pendingOutput(lead.ID, result, cost), nil
	default:
		metrics.RecordCharge(string(gateways.ChargeStatusFailed))
		if err := uc.nextChargeAttempt(ctx, lead.ID); err != nil {
			logger.Error(ctx, "Advancing lead charge attempt failed", zap.String("lead_id", lead.ID.String()), zap.Error(err))
		}
		return nil, domainerrors.PaymentFailed(failureMessage(result), nil)
	}
}

// resumeAcceptance continues an acceptance whose charge needed confirmation.
func (uc *LeadUsecase) resumeAcceptance(ctx context.Context, lead *entities.Lead, in AcceptLeadInput) (*AcceptLeadOutput, error) {
	intentID := lead.PaymentIntentID.String
	result, err := uc.gateway.Retrieve(ctx, intentID)
	if err != nil {
		logger.Error(ctx, "Retrieving lead charge failed", zap.String("lead_id", lead.ID.String()), zap.Error(err))
		return nil, domainerrors.PaymentFailed(err.Error(), err)
	}

	switch {
	case result.Status == gateways.ChargeStatusSucceeded:
		proposal := entities.PendingProposal{Description: strings.TrimSpace(in.ProposalDescription), Price: in.ProposalPrice}
		if lead.Metadata.PendingProposal != nil {
			proposal = *lead.Metadata.PendingProposal
		} else if err := validateProposal(proposal.Description, proposal.Price); err != nil {
			return nil, err
		}
		metrics.RecordCharge(string(result.Status))
		return uc.completeAcceptance(ctx, lead.ID, intentID, proposal, lead.LeadCostCents)
	case result.Status.Pending():
		return pendingOutput(lead.ID, result, lead.LeadCostCents), nil
	default:
		metrics.RecordCharge(string(gateways.ChargeStatusFailed))
		if err := uc.clearIntent(ctx, lead.ID, intentID); err != nil {
			logger.Error(ctx, "Clearing failed charge from lead", zap.String("lead_id", lead.ID.String()), zap.Error(err))
		}
		return nil, domainerrors.PaymentFailed(failureMessage(result), nil)
	}
}

// completeAcceptance marks the lead accepted and creates the proposal in one
// transaction, then publishes LeadAccepted.
func (uc *LeadUsecase) completeAcceptance(ctx context.Context, leadID uuid.UUID, intentID string, pending entities.PendingProposal, cost int64) (*AcceptLeadOutput, error) {
	var (
		accepted   *entities.Lead
		proposal   *entities.Proposal
		request    *entities.ServiceRequest
		provider   *entities.Provider
		fromStatus entities.LeadStatus
	)

	err := uc.uow.Do(ctx, func(txCtx context.Context) error {
		lead, err := uc.leadRepo.GetByID(uc.uow.WithLock(txCtx), leadID)
		if err != nil {
			return err
		}
		if lead.Status == entities.LeadStatusAccepted {
			return domainerrors.AlreadyAccepted("lead has already been accepted")
		}
		if !lead.Status.CanRespond() {
			return domainerrors.InvalidState(fmt.Sprintf("lead cannot be accepted in status %s", lead.Status))
		}

		request, err = uc.requestRepo.GetByID(txCtx, lead.ServiceRequestID)
		if err != nil {
			return fmt.Errorf("load service request: %w", err)
		}
		provider, err = uc.providerRepo.GetByUserID(txCtx, lead.ProviderID)
		if err != nil {
			return fmt.Errorf("load provider: %w", err)
		}

		now := uc.now()
		fromStatus = lead.Status
		lead.Status = entities.LeadStatusAccepted
		lead.PaymentIntentID = null.NewString(intentID, intentID != "")
		lead.LeadCostCents = cost
		lead.CustomerName = null.StringFrom(request.ContactName)
		lead.CustomerEmail = null.StringFrom(request.ContactEmail)
		lead.CustomerPhone = request.ContactPhone
		lead.Metadata.PendingProposal = nil
		lead.RespondedAt = &now
		if err := uc.leadRepo.Update(txCtx, lead); err != nil {
			return err
		}

		proposal = &entities.Proposal{
			ID:               utils.GenerateUUIDv7(),
			ServiceRequestID: lead.ServiceRequestID,
			ProviderID:       provider.ProfileID,
			LeadID:           lead.ID,
			Details:          pending.Description,
			Price:            pending.Price,
			Status:           entities.ProposalStatusSent,
			PaymentStatus:    entities.ProposalPaymentPending,
		}
		if err := uc.proposalRepo.Create(txCtx, proposal); err != nil {
			return fmt.Errorf("create proposal: %w", err)
		}

		if request.Status == entities.ServiceRequestStatusOpen {
			if err := uc.requestRepo.UpdateStatus(txCtx, request.ID, entities.ServiceRequestStatusInProgress); err != nil {
				return fmt.Errorf("update service request: %w", err)
			}
		}
		accepted = lead
		return nil
	})
	if err != nil {
		var appErr *domainerrors.AppError
		if intentID != "" && errors.As(err, &appErr) && appErr.Code == domainerrors.CodeAlreadyAccepted {
			logger.Warn(ctx, "Charge succeeded for a lead accepted concurrently", zap.String("lead_id", leadID.String()), zap.String("payment_intent_id", intentID))
		} else if intentID != "" && !errors.As(err, &appErr) {
			// keep the paid intent so a retry finalizes without charging again
			if stashErr := uc.stashIntent(ctx, leadID, intentID, pending, cost); stashErr != nil {
				logger.Error(ctx, "Charge succeeded but the lead could not be updated", zap.String("lead_id", leadID.String()), zap.String("payment_intent_id", intentID), zap.Error(stashErr))
			}
		}
		return nil, domainerrors.FromRepository(err, "lead not found")
	}

	metrics.RecordTransition(string(fromStatus), string(accepted.Status))
	logger.Info(ctx, "Lead accepted", zap.String("lead_id", accepted.ID.String()), zap.String("proposal_id", proposal.ID.String()), zap.Int64("lead_cost", cost))

	uc.bus.Publish(ctx, domainevents.LeadAccepted{
		BaseEvent:        events.NewBaseEvent(),
		LeadID:           accepted.ID,
		ServiceRequestID: accepted.ServiceRequestID,
		ProviderID:       accepted.ProviderID,
		ProposalID:       proposal.ID,
		BusinessName:     provider.BusinessName,
		CustomerName:     request.ContactName,
		CustomerEmail:    request.ContactEmail,
		ProjectTitle:     request.ProjectTitle,
		Price:            proposal.Price,
		LeadCostCents:    cost,
	})

	proposalID := proposal.ID
	return &AcceptLeadOutput{
		LeadID:          accepted.ID,
		Status:          accepted.PresentationStatus(),
		PaymentIntentID: intentID,
		LeadCost:        cost,
		ProposalID:      &proposalID,
		Contact:         accepted.Contact(),
	}, nil
}

// stashIntent records a started charge and the proposal contents on the lead.
func (uc *LeadUsecase) stashIntent(ctx context.Context, leadID uuid.UUID, intentID string, pending entities.PendingProposal, cost int64) error {
	return uc.uow.Do(ctx, func(txCtx context.Context) error {
		lead, err := uc.leadRepo.GetByID(uc.uow.WithLock(txCtx), leadID)
		if err != nil {
			return err
		}
		if !lead.Status.CanRespond() {
			return domainerrors.InvalidState(fmt.Sprintf("lead cannot be accepted in status %s", lead.Status))
		}
		lead.PaymentIntentID = null.StringFrom(intentID)
		lead.LeadCostCents = cost
		lead.Metadata.PendingProposal = &pending
		return uc.leadRepo.Update(txCtx, lead)
	})
}

func (uc *LeadUsecase) clearIntent(ctx context.Context, leadID uuid.UUID, intentID string) error {
	return uc.uow.Do(ctx, func(txCtx context.Context) error {
		lead, err := uc.leadRepo.GetByID(uc.uow.WithLock(txCtx), leadID)
		if err != nil {
			return err
		}
		if !lead.Status.CanRespond() || lead.PaymentIntentID.String != intentID {
			return nil
		}
		lead.PaymentIntentID = null.String{}
		lead.Metadata.PendingProposal = nil
		lead.Metadata.ChargeAttempt++
		return uc.leadRepo.Update(txCtx, lead)
	})
}

// nextChargeAttempt moves the lead to a fresh gateway idempotency key so a
// declined card can be retried.
func (uc *LeadUsecase) nextChargeAttempt(ctx context.Context, leadID uuid.UUID) error {
	return uc.uow.Do(ctx, func(txCtx context.Context) error {
		lead, err := uc.leadRepo.GetByID(uc.uow.WithLock(txCtx), leadID)
		if err != nil {
			return err
		}
		if !lead.Status.CanRespond() || lead.PaymentIntentID.Valid {
			return nil
		}
		lead.Metadata.ChargeAttempt++
		return uc.leadRepo.Update(txCtx, lead)
	})
}

type RejectLeadInput struct {
	LeadID      uuid.UUID
	ProviderID  uuid.UUID
	Reason      string
	ReasonOther string
}

type RejectLeadOutput struct {
	LeadID           uuid.UUID                   `json:"leadId"`
	Status           entities.PresentationStatus `json:"status"`
	ReassignedLeadID *uuid.UUID                  `json:"reassignedLeadId,omitempty"`
}

// RejectLead records the provider's refusal and passes the request to the
// next alternative. Reassignment failures never fail the rejection.
func (uc *LeadUsecase) RejectLead(ctx context.Context, in RejectLeadInput) (*RejectLeadOutput, error) {
	reason, ok := entities.ParseRejectionReason(in.Reason)
	if !ok {
		return nil, domainerrors.Validation("reason must be one of TOO_FAR, TOO_EXPENSIVE, NOT_RELEVANT, OTHER")
	}
	note := strings.TrimSpace(in.ReasonOther)
	if reason == entities.RejectionReasonOther && note == "" {
		return nil, domainerrors.Validation("a note is required when the reason is OTHER")
	}
	if len(note) > MaxRejectionNoteLength {
		return nil, domainerrors.Validation(fmt.Sprintf("note must be at most %d characters", MaxRejectionNoteLength))
	}
	if reason != entities.RejectionReasonOther {
		note = ""
	}

	var (
		rejected      *entities.Lead
		fromStatus    entities.LeadStatus
		pendingIntent string
	)
	err := uc.uow.Do(ctx, func(txCtx context.Context) error {
		lead, err := uc.leadRepo.GetByID(uc.uow.WithLock(txCtx), in.LeadID)
		if err != nil {
			return err
		}
		if lead.ProviderID != in.ProviderID {
			return domainerrors.Unauthorized("lead does not belong to this provider")
		}
		if lead.Status == entities.LeadStatusAccepted {
			return domainerrors.InvalidState("accepted leads cannot be rejected")
		}
		if !lead.Status.CanRespond() {
			return domainerrors.InvalidState(fmt.Sprintf("lead cannot be rejected in status %s", lead.Status))
		}

		if lead.AwaitingPayment() {
			pendingIntent = lead.PaymentIntentID.String
			lead.PaymentIntentID = null.String{}
		}
		now := uc.now()
		fromStatus = lead.Status
		lead.Status = entities.LeadStatusRejected
		lead.RejectionReason = null.StringFrom(string(reason))
		lead.RejectionReasonOther = null.NewString(note, note != "")
		lead.Metadata.PendingProposal = nil
		lead.RespondedAt = &now
		if err := uc.leadRepo.Update(txCtx, lead); err != nil {
			return err
		}
		rejected = lead
		return nil
	})
	if err != nil {
		return nil, domainerrors.FromRepository(err, "lead not found")
	}

	metrics.RecordTransition(string(fromStatus), string(rejected.Status))
	logger.Info(ctx, "Lead rejected", zap.String("lead_id", rejected.ID.String()), zap.String("reason", string(reason)))
	if pendingIntent != "" {
		if err := uc.gateway.Cancel(ctx, pendingIntent); err != nil {
			logger.Error(ctx, "Cancelling charge of rejected lead failed", zap.String("lead_id", rejected.ID.String()), zap.String("payment_intent_id", pendingIntent), zap.Error(err))
		}
	}
	uc.publishRejected(ctx, rejected, reason, note)

	out := &RejectLeadOutput{LeadID: rejected.ID, Status: rejected.PresentationStatus()}
	if uc.reassigner != nil {
		next, err := uc.reassigner.ReassignToAlternative(ctx, rejected)
		if err != nil {
			logger.Error(ctx, "Reassigning rejected lead failed", zap.String("lead_id", rejected.ID.String()), zap.Error(err))
		} else if next != nil {
			id := next.ID
			out.ReassignedLeadID = &id
		}
	}
	return out, nil
}

func (uc *LeadUsecase) publishRejected(ctx context.Context, lead *entities.Lead, reason entities.RejectionReason, note string) {
	evt := domainevents.LeadRejected{
		BaseEvent:        events.NewBaseEvent(),
		LeadID:           lead.ID,
		ServiceRequestID: lead.ServiceRequestID,
		ProviderID:       lead.ProviderID,
		Reason:           string(reason),
		ReasonOther:      note,
		ProjectTitle:     lead.Metadata.Project.Title,
	}
	if request, err := uc.requestRepo.GetByID(ctx, lead.ServiceRequestID); err == nil {
		evt.CustomerName = request.ContactName
		evt.CustomerEmail = request.ContactEmail
	} else {
		logger.Warn(ctx, "Service request lookup for rejection notice failed", zap.String("lead_id", lead.ID.String()), zap.Error(err))
	}
	uc.bus.Publish(ctx, evt)
}

// LeadView is the provider-facing projection of a lead
type LeadView struct {
	ID                uuid.UUID                   `json:"id"`
	ServiceRequestID  uuid.UUID                   `json:"serviceRequestId"`
	Status            entities.PresentationStatus `json:"status"`
	Project           entities.ProjectSnapshot    `json:"project"`
	LeadCost          int64                       `json:"leadCost"`
	Contact           *entities.ContactDetails    `json:"contact,omitempty"`
	RejectionReason   string                      `json:"rejectionReason,omitempty"`
	AssignedVia       string                      `json:"assignedVia"`
	PriorityExpiresAt *time.Time                  `json:"priorityExpiresAt,omitempty"`
	RespondedAt       *time.Time                  `json:"respondedAt,omitempty"`
	CreatedAt         time.Time                   `json:"createdAt"`
}

// NewLeadView hides customer contact until the lead is accepted.
func NewLeadView(lead *entities.Lead) LeadView {
	via := entities.AssignmentChannelInitial
	if lead.Metadata.AssignedFrom != nil {
		via = lead.Metadata.AssignedFrom.Channel
	}
	return LeadView{
		ID:                lead.ID,
		ServiceRequestID:  lead.ServiceRequestID,
		Status:            lead.PresentationStatus(),
		Project:           lead.Metadata.Project,
		LeadCost:          lead.LeadCostCents,
		Contact:           lead.Contact(),
		RejectionReason:   lead.RejectionReason.String,
		AssignedVia:       via,
		PriorityExpiresAt: lead.PriorityExpiresAt,
		RespondedAt:       lead.RespondedAt,
		CreatedAt:         lead.CreatedAt,
	}
}

type ListLeadsInput struct {
	ProviderID uuid.UUID
	Status     string
	Page       int
	Limit      int
}

type ListLeadsOutput struct {
	Leads []LeadView           `json:"leads"`
	Meta  utils.PaginationMeta `json:"meta"`
}

var presentationFilters = map[entities.PresentationStatus][]entities.LeadStatus{
	entities.PresentationPending:       {entities.LeadStatusSubmitted, entities.LeadStatusRouted},
	entities.PresentationAccepted:      {entities.LeadStatusAccepted},
	entities.PresentationRejected:      {entities.LeadStatusRejected},
	entities.PresentationPaymentFailed: {entities.LeadStatusCancelled},
}

// ListProviderLeads returns the provider's inbox, newest first.
func (uc *LeadUsecase) ListProviderLeads(ctx context.Context, in ListLeadsInput) (*ListLeadsOutput, error) {
	filter := domainRepos.LeadFilter{}
	if in.Status != "" {
		statuses, ok := presentationFilters[entities.PresentationStatus(strings.ToUpper(in.Status))]
		if !ok {
			return nil, domainerrors.Validation("unknown status filter")
		}
		filter.Statuses = statuses
	}
	pagination := utils.GetPaginationParams(in.Page, in.Limit)
	filter.Limit = pagination.Limit
	filter.Offset = pagination.Offset()

	leads, total, err := uc.leadRepo.ListByProvider(ctx, in.ProviderID, filter)
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}
	views := make([]LeadView, 0, len(leads))
	for _, lead := range leads {
		views = append(views, NewLeadView(lead))
	}
	return &ListLeadsOutput{Leads: views, Meta: utils.CalculateMeta(int64(total), pagination)}, nil
}

// GetProviderLead returns one lead owned by the provider.
func (uc *LeadUsecase) GetProviderLead(ctx context.Context, leadID, providerID uuid.UUID) (*LeadView, error) {
	lead, err := uc.ownedLead(ctx, leadID, providerID)
	if err != nil {
		return nil, err
	}
	view := NewLeadView(lead)
	return &view, nil
}

func (uc *LeadUsecase) ownedLead(ctx context.Context, leadID, providerID uuid.UUID) (*entities.Lead, error) {
	lead, err := uc.leadRepo.GetByID(ctx, leadID)
	if err != nil {
		return nil, domainerrors.FromRepository(err, "lead not found")
	}
	if lead.ProviderID != providerID {
		return nil, domainerrors.Unauthorized("lead does not belong to this provider")
	}
	return lead, nil
}

func pendingOutput(leadID uuid.UUID, result *gateways.ChargeResult, cost int64) *AcceptLeadOutput {
	return &AcceptLeadOutput{
		LeadID:          leadID,
		Status:          entities.PresentationPaymentPending,
		RequiresAction:  result.Status == gateways.ChargeStatusRequiresAction,
		Processing:      result.Status == gateways.ChargeStatusProcessing,
		ClientSecret:    result.ClientSecret,
		PaymentIntentID: result.ID,
		LeadCost:        cost,
	}
}

func failureMessage(result *gateways.ChargeResult) string {
	if result.FailureMessage != "" {
		return result.FailureMessage
	}
	return "payment failed"
}

func chargeIdempotencyKey(leadID uuid.UUID, attempt int, paymentMethodRef string) string {
	return fmt.Sprintf("%s%s:%d:%s", ChargeIdempotencyPrefix, leadID, attempt, paymentMethodRef)
}

func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
