package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"leadrouter.backend/internal/domain/entities"
	"leadrouter.backend/internal/interfaces/http/response"
	"leadrouter.backend/internal/usecases"
)

type RoutingService interface {
	RouteServiceRequest(ctx context.Context, requestID uuid.UUID) (*usecases.RouteResult, error)
	RunFallbackSweep(ctx context.Context, now time.Time) (*usecases.SweepResult, error)
}

type ProposalPaymentService interface {
	RecordProposalPayment(ctx context.Context, in usecases.RecordPaymentInput) (*entities.Proposal, error)
	UpdatePayoutStatus(ctx context.Context, in usecases.UpdatePayoutInput) (*entities.Payout, error)
}

// AdminHandler serves routing and payout operations for operators
type AdminHandler struct {
	routing  RoutingService
	payments ProposalPaymentService
	now      func() time.Time
}

func NewAdminHandler(routing RoutingService, payments ProposalPaymentService) *AdminHandler {
	return &AdminHandler{routing: routing, payments: payments, now: time.Now}
}

type RecordPaymentRequest struct {
	PaymentIntentID string     `json:"paymentIntentId" binding:"required,notblank"`
	PaidAt          *time.Time `json:"paidAt"`
}

type UpdatePayoutRequest struct {
	Status     string `json:"status" binding:"required,oneof=processing completed failed"`
	TransferID string `json:"transferId"`
}

// RouteServiceRequest creates the initial leads for a request
// POST /api/v1/service-requests/:id/route
func (h *AdminHandler) RouteServiceRequest(c *gin.Context) {
	requestID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	out, err := h.routing.RouteServiceRequest(c.Request.Context(), requestID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, out)
}

// RunFallbackSweep runs one pass of the fallback sweep
// POST /api/v1/admin/fallback-sweep
func (h *AdminHandler) RunFallbackSweep(c *gin.Context) {
	out, err := h.routing.RunFallbackSweep(c.Request.Context(), h.now().UTC())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

// RecordProposalPayment marks a proposal paid by the customer
// POST /api/v1/admin/proposals/:id/payment
func (h *AdminHandler) RecordProposalPayment(c *gin.Context) {
	proposalID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	proposal, err := h.payments.RecordProposalPayment(c.Request.Context(), usecases.RecordPaymentInput{
		ProposalID:      proposalID,
		PaymentIntentID: req.PaymentIntentID,
		PaidAt:          req.PaidAt,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, proposal)
}

// UpdatePayoutStatus moves a payout along its lifecycle
// PUT /api/v1/admin/proposals/:id/payout
func (h *AdminHandler) UpdatePayoutStatus(c *gin.Context) {
	proposalID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req UpdatePayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	payout, err := h.payments.UpdatePayoutStatus(c.Request.Context(), usecases.UpdatePayoutInput{
		ProposalID: proposalID,
		Status:     req.Status,
		TransferID: req.TransferID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, payout)
}
