package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"leadrouter.backend/internal/interfaces/http/response"
	"leadrouter.backend/internal/usecases"
)

type PayoutService interface {
	GetPayouts(ctx context.Context, providerID uuid.UUID) (*usecases.PayoutsOutput, error)
}

type PayoutHandler struct {
	payouts PayoutService
}

func NewPayoutHandler(payouts PayoutService) *PayoutHandler {
	return &PayoutHandler{payouts: payouts}
}

// GetPayouts returns paid proposals and payout totals
// GET /api/v1/payouts
func (h *PayoutHandler) GetPayouts(c *gin.Context) {
	providerID, ok := providerFromContext(c)
	if !ok {
		return
	}

	out, err := h.payouts.GetPayouts(c.Request.Context(), providerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}
