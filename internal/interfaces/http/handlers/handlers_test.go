package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"leadrouter.backend/internal/domain/entities"
	"leadrouter.backend/internal/interfaces/http/middleware"
	"leadrouter.backend/internal/usecases"
	"leadrouter.backend/pkg/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := validator.Register(); err != nil {
		panic(err)
	}
}

type MockLeadService struct{ mock.Mock }

func (m *MockLeadService) AcceptLead(ctx context.Context, in usecases.AcceptLeadInput) (*usecases.AcceptLeadOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecases.AcceptLeadOutput), args.Error(1)
}

func (m *MockLeadService) RejectLead(ctx context.Context, in usecases.RejectLeadInput) (*usecases.RejectLeadOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecases.RejectLeadOutput), args.Error(1)
}

func (m *MockLeadService) ListProviderLeads(ctx context.Context, in usecases.ListLeadsInput) (*usecases.ListLeadsOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecases.ListLeadsOutput), args.Error(1)
}

func (m *MockLeadService) GetProviderLead(ctx context.Context, leadID, providerID uuid.UUID) (*usecases.LeadView, error) {
	args := m.Called(ctx, leadID, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecases.LeadView), args.Error(1)
}

type MockPayoutService struct{ mock.Mock }

func (m *MockPayoutService) GetPayouts(ctx context.Context, providerID uuid.UUID) (*usecases.PayoutsOutput, error) {
	args := m.Called(ctx, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecases.PayoutsOutput), args.Error(1)
}

type MockRoutingService struct{ mock.Mock }

func (m *MockRoutingService) RouteServiceRequest(ctx context.Context, requestID uuid.UUID) (*usecases.RouteResult, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecases.RouteResult), args.Error(1)
}

func (m *MockRoutingService) RunFallbackSweep(ctx context.Context, now time.Time) (*usecases.SweepResult, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecases.SweepResult), args.Error(1)
}

type MockProposalPaymentService struct{ mock.Mock }

func (m *MockProposalPaymentService) RecordProposalPayment(ctx context.Context, in usecases.RecordPaymentInput) (*entities.Proposal, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Proposal), args.Error(1)
}

func (m *MockProposalPaymentService) UpdatePayoutStatus(ctx context.Context, in usecases.UpdatePayoutInput) (*entities.Payout, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Payout), args.Error(1)
}

// withUser simulates AuthMiddleware having run
func withUser(id uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, id)
		c.Next()
	}
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}
