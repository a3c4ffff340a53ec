package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainerrors "leadrouter.backend/internal/domain/errors"
	"leadrouter.backend/internal/interfaces/http/middleware"
	"leadrouter.backend/internal/interfaces/http/response"
	"leadrouter.backend/internal/usecases"
	"leadrouter.backend/pkg/validator"
)

// LeadService is the slice of the lead usecase the handler needs
type LeadService interface {
	AcceptLead(ctx context.Context, in usecases.AcceptLeadInput) (*usecases.AcceptLeadOutput, error)
	RejectLead(ctx context.Context, in usecases.RejectLeadInput) (*usecases.RejectLeadOutput, error)
	ListProviderLeads(ctx context.Context, in usecases.ListLeadsInput) (*usecases.ListLeadsOutput, error)
	GetProviderLead(ctx context.Context, leadID, providerID uuid.UUID) (*usecases.LeadView, error)
}

type LeadHandler struct {
	leads LeadService
}

func NewLeadHandler(leads LeadService) *LeadHandler {
	return &LeadHandler{leads: leads}
}

type AcceptLeadRequest struct {
	PaymentMethodID     string  `json:"paymentMethodId" binding:"required,notblank"`
	ProposalDescription string  `json:"proposalDescription" binding:"required,notblank"`
	ProposalPrice       float64 `json:"proposalPrice" binding:"required,gt=0"`
}

type RejectLeadRequest struct {
	Reason      string `json:"reason" binding:"required,rejection_reason"`
	ReasonOther string `json:"reasonOther"`
}

// ListLeads returns the provider's inbox
// GET /api/v1/leads
func (h *LeadHandler) ListLeads(c *gin.Context) {
	providerID, ok := providerFromContext(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	out, err := h.leads.ListProviderLeads(c.Request.Context(), usecases.ListLeadsInput{
		ProviderID: providerID,
		Status:     c.Query("status"),
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

// GetLead returns one lead from the provider's inbox
// GET /api/v1/leads/:id
func (h *LeadHandler) GetLead(c *gin.Context) {
	providerID, ok := providerFromContext(c)
	if !ok {
		return
	}
	leadID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	view, err := h.leads.GetProviderLead(c.Request.Context(), leadID, providerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// AcceptLead pays for the lead and sends the proposal
// POST /api/v1/leads/:id/accept
func (h *LeadHandler) AcceptLead(c *gin.Context) {
	providerID, ok := providerFromContext(c)
	if !ok {
		return
	}
	leadID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req AcceptLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	out, err := h.leads.AcceptLead(c.Request.Context(), usecases.AcceptLeadInput{
		LeadID:              leadID,
		ProviderID:          providerID,
		PaymentMethodRef:    req.PaymentMethodID,
		ProposalDescription: req.ProposalDescription,
		ProposalPrice:       req.ProposalPrice,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	status := http.StatusOK
	if out.RequiresAction || out.Processing {
		status = http.StatusAccepted
	}
	response.Success(c, status, out)
}

// RejectLead declines the lead
// POST /api/v1/leads/:id/reject
func (h *LeadHandler) RejectLead(c *gin.Context) {
	providerID, ok := providerFromContext(c)
	if !ok {
		return
	}
	leadID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req RejectLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	out, err := h.leads.RejectLead(c.Request.Context(), usecases.RejectLeadInput{
		LeadID:      leadID,
		ProviderID:  providerID,
		Reason:      req.Reason,
		ReasonOther: req.ReasonOther,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

func providerFromContext(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.GetUserID(c)
	if !ok {
		response.ErrorWithError(c, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required")
		return uuid.Nil, false
	}
	return id, true
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Error(c, domainerrors.Validation("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

func bindError(err error) *domainerrors.AppError {
	appErr := domainerrors.Validation("invalid request body")
	if fields := validator.Describe(err); len(fields) > 0 {
		details := make(map[string]interface{}, len(fields))
		for k, v := range fields {
			details[k] = v
		}
		return appErr.WithDetails(details)
	}
	return appErr
}
