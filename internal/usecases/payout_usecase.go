package usecases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"leadrouter.backend/internal/domain/entities"
	domainerrors "leadrouter.backend/internal/domain/errors"
	domainRepos "leadrouter.backend/internal/domain/repositories"
	"leadrouter.backend/pkg/logger"
)

type PayoutUsecase struct {
	proposalRepo domainRepos.ProposalRepository
	providerRepo domainRepos.ProviderRepository
	uow          domainRepos.UnitOfWork
	pricing      *PricingCalculator
	now          func() time.Time
}

func NewPayoutUsecase(
	proposalRepo domainRepos.ProposalRepository,
	providerRepo domainRepos.ProviderRepository,
	uow domainRepos.UnitOfWork,
	pricing *PricingCalculator,
) *PayoutUsecase {
	return &PayoutUsecase{
		proposalRepo: proposalRepo,
		providerRepo: providerRepo,
		uow:          uow,
		pricing:      pricing,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the time source.
func (uc *PayoutUsecase) SetClock(now func() time.Time) {
	uc.now = now
}

type PayoutsOutput struct {
	Payouts []entities.Payout    `json:"payouts"`
	Stats   entities.PayoutStats `json:"stats"`
}

// GetPayouts lists the provider's paid proposals with their payout state.
func (uc *PayoutUsecase) GetPayouts(ctx context.Context, providerID uuid.UUID) (*PayoutsOutput, error) {
	provider, err := uc.providerRepo.GetByUserID(ctx, providerID)
	if err != nil {
		return nil, domainerrors.FromRepository(err, "provider not found")
	}
	proposals, err := uc.proposalRepo.ListPaidByProvider(ctx, provider.ProfileID)
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}

	payouts, stats := ReconcilePayouts(ctx, proposals, uc.pricing)
	return &PayoutsOutput{Payouts: payouts, Stats: stats}, nil
}

// ReconcilePayouts derives payouts for succeeded proposals. Recorded amounts
// win over computed ones. Failed payouts stay out of the paid and pending
// totals.
func ReconcilePayouts(ctx context.Context, proposals []*entities.Proposal, pricing *PricingCalculator) ([]entities.Payout, entities.PayoutStats) {
	payouts := make([]entities.Payout, 0, len(proposals))
	var stats entities.PayoutStats

	for _, p := range proposals {
		if p.PaymentStatus != entities.ProposalPaymentSucceeded {
			continue
		}
		payout := entities.Payout{
			ProposalID:       p.ID,
			ServiceRequestID: p.ServiceRequestID,
			TotalAmount:      p.PriceCents(),
			Status:           p.EffectivePayoutStatus(),
			PaidAt:           p.PaidAt,
			ProcessedAt:      p.PayoutProcessedAt,
			TransferID:       p.TransferID.String,
		}
		if p.ProviderPayoutAmount.Valid {
			payout.ProviderAmount = p.ProviderPayoutAmount.Int64
			if p.PlatformFeeAmount.Valid {
				payout.PlatformFee = p.PlatformFeeAmount.Int64
			} else {
				payout.PlatformFee = payout.TotalAmount - payout.ProviderAmount
			}
		} else {
			split, err := pricing.PayoutSplit(p.Price)
			if err != nil {
				logger.Warn(ctx, "Skipping proposal with invalid price", zap.String("proposal_id", p.ID.String()), zap.Float64("price", p.Price))
				continue
			}
			payout.ProviderAmount = split.ProviderShare
			payout.PlatformFee = split.PlatformFee
		}

		stats.TotalEarnings += payout.TotalAmount
		switch payout.Status {
		case entities.PayoutStatusCompleted:
			stats.TotalPayouts += payout.ProviderAmount
		case entities.PayoutStatusPending, entities.PayoutStatusProcessing:
			stats.PendingPayouts += payout.ProviderAmount
		case entities.PayoutStatusFailed:
			stats.FailedPayouts += payout.ProviderAmount
			stats.FailedCount++
		}
		payouts = append(payouts, payout)
	}
	return payouts, stats
}

type RecordPaymentInput struct {
	ProposalID      uuid.UUID
	PaymentIntentID string
	PaidAt          *time.Time
}

// RecordProposalPayment marks a proposal paid by the customer and books the
// payout split. Repeating it for the same intent returns the stored proposal.
func (uc *PayoutUsecase) RecordProposalPayment(ctx context.Context, in RecordPaymentInput) (*entities.Proposal, error) {
	intentID := strings.TrimSpace(in.PaymentIntentID)
	if intentID == "" {
		return nil, domainerrors.Validation("payment intent id is required")
	}

	var updated *entities.Proposal
	err := uc.uow.Do(ctx, func(txCtx context.Context) error {
		proposal, err := uc.proposalRepo.GetByID(uc.uow.WithLock(txCtx), in.ProposalID)
		if err != nil {
			return err
		}
		if proposal.PaymentStatus == entities.ProposalPaymentSucceeded {
			if proposal.PaymentIntentID.String != intentID {
				return domainerrors.InvalidState("proposal already paid with a different payment")
			}
			updated = proposal
			return nil
		}

		split, err := uc.pricing.PayoutSplit(proposal.Price)
		if err != nil {
			return err
		}
		paidAt := uc.now()
		if in.PaidAt != nil {
			paidAt = in.PaidAt.UTC()
		}
		proposal.PaymentIntentID = null.StringFrom(intentID)
		proposal.PaymentStatus = entities.ProposalPaymentSucceeded
		proposal.Status = entities.ProposalStatusAccepted
		proposal.PaidAt = &paidAt
		proposal.ProviderPayoutAmount = null.Int64From(split.ProviderShare)
		proposal.PlatformFeeAmount = null.Int64From(split.PlatformFee)
		proposal.PayoutStatus = entities.PayoutStatusPending
		if err := uc.proposalRepo.Update(txCtx, proposal); err != nil {
			return err
		}
		updated = proposal
		return nil
	})
	if err != nil {
		return nil, domainerrors.FromRepository(err, "proposal not found")
	}

	logger.Info(ctx, "Proposal payment recorded",
		zap.String("proposal_id", updated.ID.String()),
		zap.Int64("provider_amount", updated.ProviderPayoutAmount.Int64),
		zap.Int64("platform_fee", updated.PlatformFeeAmount.Int64),
	)
	return updated, nil
}

type UpdatePayoutInput struct {
	ProposalID uuid.UUID
	Status     string
	TransferID string
}

// UpdatePayoutStatus moves a paid proposal's payout along its lifecycle.
func (uc *PayoutUsecase) UpdatePayoutStatus(ctx context.Context, in UpdatePayoutInput) (*entities.Payout, error) {
	next := entities.PayoutStatus(strings.ToLower(strings.TrimSpace(in.Status)))
	switch next {
	case entities.PayoutStatusProcessing, entities.PayoutStatusCompleted, entities.PayoutStatusFailed:
	default:
		return nil, domainerrors.Validation("status must be one of processing, completed, failed")
	}
	transferID := strings.TrimSpace(in.TransferID)
	if next == entities.PayoutStatusCompleted && transferID == "" {
		return nil, domainerrors.Validation("transfer id is required to complete a payout")
	}

	var updated *entities.Proposal
	err := uc.uow.Do(ctx, func(txCtx context.Context) error {
		proposal, err := uc.proposalRepo.GetByID(uc.uow.WithLock(txCtx), in.ProposalID)
		if err != nil {
			return err
		}
		if proposal.PaymentStatus != entities.ProposalPaymentSucceeded {
			return domainerrors.InvalidState("proposal has not been paid")
		}
		current := proposal.EffectivePayoutStatus()
		if !current.CanTransitionTo(next) {
			return domainerrors.InvalidState(fmt.Sprintf("payout cannot move from %s to %s", current, next))
		}

		if next != entities.PayoutStatusProcessing {
			processedAt := uc.now()
			proposal.PayoutProcessedAt = &processedAt
		}
		if transferID != "" {
			proposal.TransferID = null.StringFrom(transferID)
		}
		proposal.PayoutStatus = next
		if err := uc.proposalRepo.Update(txCtx, proposal); err != nil {
			return err
		}
		updated = proposal
		return nil
	})
	if err != nil {
		return nil, domainerrors.FromRepository(err, "proposal not found")
	}

	logger.Info(ctx, "Payout status updated", zap.String("proposal_id", updated.ID.String()), zap.String("status", string(next)))
	payouts, _ := ReconcilePayouts(ctx, []*entities.Proposal{updated}, uc.pricing)
	if len(payouts) == 0 {
		return nil, domainerrors.InternalError(fmt.Errorf("proposal %s has no payout", updated.ID))
	}
	return &payouts[0], nil
}
