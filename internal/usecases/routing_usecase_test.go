package usecases_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadrouter.backend/internal/domain/entities"
	domainerrors "leadrouter.backend/internal/domain/errors"
	domainevents "leadrouter.backend/internal/domain/events"
)

func TestRoutingUsecase_RouteServiceRequest_PrimaryProvider(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	primary := h.provider("ray", true)
	b1 := h.provider("sam", true)
	b2 := h.provider("tia", true)
	req := h.request(func(r *entities.ServiceRequest) {
		r.PrimaryProviderID = &primary.UserID
		r.SelectedBusinessIDs = []uuid.UUID{primary.BusinessID, b1.BusinessID, b2.BusinessID, b1.BusinessID}
	})

	out, err := h.routing.RouteServiceRequest(ctx, req.ID)
	require.NoError(t, err)
	require.Len(t, out.LeadIDs, 1)

	lead := h.reload(out.LeadIDs[0])
	assert.Equal(t, primary.UserID, lead.ProviderID)
	assert.Equal(t, primary.BusinessID, lead.BusinessID)
	assert.Equal(t, entities.LeadStatusSubmitted, lead.Status)
	require.NotNil(t, lead.PriorityExpiresAt)
	assert.True(t, lead.PriorityExpiresAt.Equal(fixedNow.Add(24*time.Hour)))
	assert.Equal(t, []uuid.UUID{b1.BusinessID, b2.BusinessID}, lead.Metadata.FallbackBusinessIDs)
	assert.Equal(t, int64(2000), lead.LeadCostCents)
	assert.Empty(t, h.providerLeads(b1))

	assigned := h.bus.named(domainevents.LeadAssignedEvent)
	require.Len(t, assigned, 1)
	assert.Equal(t, entities.AssignmentChannelInitial, assigned[0].(domainevents.LeadAssigned).Channel)
}

func TestRoutingUsecase_RouteServiceRequest_SelectedBusinesses(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	b1 := h.provider("uma", true)
	b2 := h.provider("vic", true)
	inactive := h.provider("wes", false)
	req := h.request(func(r *entities.ServiceRequest) {
		r.SelectedBusinessIDs = []uuid.UUID{b1.BusinessID, inactive.BusinessID, uuid.New(), b2.BusinessID}
	})

	out, err := h.routing.RouteServiceRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Len(t, out.LeadIDs, 2)
	assert.Equal(t, 2, out.Skipped)
	assert.Len(t, h.providerLeads(b1), 1)
	assert.Len(t, h.providerLeads(b2), 1)
	assert.Empty(t, h.providerLeads(inactive))
	assert.Nil(t, h.providerLeads(b1)[0].PriorityExpiresAt)

	// routing again never duplicates a live lead
	out, err = h.routing.RouteServiceRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Empty(t, out.LeadIDs)
	assert.Len(t, h.providerLeads(b1), 1)
}

func TestRoutingUsecase_RouteServiceRequest_Errors(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.routing.RouteServiceRequest(ctx, uuid.New())
	requireAppError(t, err, domainerrors.CodeNotFound)

	closed := h.request(func(r *entities.ServiceRequest) { r.Status = entities.ServiceRequestStatusClosed })
	_, err = h.routing.RouteServiceRequest(ctx, closed.ID)
	requireAppError(t, err, domainerrors.CodeInvalidState)
}

func TestRoutingUsecase_RouteServiceRequest_InactivePrimaryFallsBackToSelection(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	primary := h.provider("xan", false)
	b1 := h.provider("yul", true)
	req := h.request(func(r *entities.ServiceRequest) {
		r.PrimaryProviderID = &primary.UserID
		r.SelectedBusinessIDs = []uuid.UUID{primary.BusinessID, b1.BusinessID}
	})

	out, err := h.routing.RouteServiceRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Len(t, out.LeadIDs, 1)
	assert.Len(t, h.providerLeads(b1), 1)
	assert.Empty(t, h.providerLeads(primary))
}

func routePrimary(t *testing.T, h *harness, primary *entities.Provider, fallbacks ...*entities.Provider) (*entities.ServiceRequest, *entities.Lead) {
	t.Helper()
	ids := []uuid.UUID{primary.BusinessID}
	for _, f := range fallbacks {
		ids = append(ids, f.BusinessID)
	}
	req := h.request(func(r *entities.ServiceRequest) {
		r.PrimaryProviderID = &primary.UserID
		r.SelectedBusinessIDs = ids
	})
	out, err := h.routing.RouteServiceRequest(context.Background(), req.ID)
	require.NoError(t, err)
	require.Len(t, out.LeadIDs, 1)
	return req, h.reload(out.LeadIDs[0])
}

func TestRoutingUsecase_RunFallbackSweep_AssignsAfterExpiry(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	primary := h.provider("zed", true)
	f1 := h.provider("abe", true)
	f2 := h.provider("bea", true)
	busy := h.provider("cid", true)
	req, lead := routePrimary(t, h, primary, f1, f2, busy)
	h.leadFor(req, busy, entities.LeadStatusRouted)

	// window still open
	res, err := h.routing.RunFallbackSweep(ctx, fixedNow.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Processed)

	res, err = h.routing.RunFallbackSweep(ctx, fixedNow.Add(25*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, 2, res.Assigned)
	assert.Equal(t, 0, res.Failed)

	for _, p := range []*entities.Provider{f1, f2} {
		leads := h.providerLeads(p)
		require.Len(t, leads, 1)
		assert.Equal(t, entities.LeadStatusRouted, leads[0].Status)
		require.NotNil(t, leads[0].Metadata.AssignedFrom)
		assert.Equal(t, lead.ID, leads[0].Metadata.AssignedFrom.LeadID)
		assert.Equal(t, entities.AssignmentChannelFallback, leads[0].Metadata.AssignedFrom.Channel)
	}
	assert.Len(t, h.providerLeads(busy), 1)

	stored := h.reload(lead.ID)
	require.NotNil(t, stored.FallbackProcessedAt)
	assert.Equal(t, entities.LeadStatusSubmitted, stored.Status)

	// each lead falls back once
	res, err = h.routing.RunFallbackSweep(ctx, fixedNow.Add(48*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Processed)
}

func TestRoutingUsecase_RunFallbackSweep_SkipsAcceptedRequests(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	primary := h.provider("dax", true)
	f1 := h.provider("eli", true)
	other := h.provider("flo", true)
	req, lead := routePrimary(t, h, primary, f1)
	h.leadFor(req, other, entities.LeadStatusAccepted)

	res, err := h.routing.RunFallbackSweep(ctx, fixedNow.Add(25*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 0, res.Assigned)
	assert.Empty(t, h.providerLeads(f1))
	assert.NotNil(t, h.reload(lead.ID).FallbackProcessedAt)
}

func TestRoutingUsecase_RunFallbackSweep_UnreadableLeadDoesNotBlockBatch(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	primary := h.provider("gil", true)
	f1 := h.provider("han", true)
	_, lead := routePrimary(t, h, primary, f1)

	stray := h.provider("ida", true)
	broken := h.leadFor(h.request(), stray, entities.LeadStatusSubmitted)
	expired := fixedNow.Add(-time.Hour)
	require.NoError(t, h.db.Table("leads").Where("id = ?", broken.ID).Updates(map[string]interface{}{
		"metadata":            `{"fallbackBusinessIds":["not-a-uuid"]}`,
		"priority_expires_at": expired,
	}).Error)

	res, err := h.routing.RunFallbackSweep(ctx, fixedNow.Add(25*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, 1, res.Assigned)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, h.providerLeads(f1), 1)
	assert.NotNil(t, h.reload(lead.ID).FallbackProcessedAt)

	res, err = h.routing.RunFallbackSweep(ctx, fixedNow.Add(26*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Failed)
	assert.Equal(t, 0, res.Processed)
}

func TestRoutingUsecase_AssignToFallbackBusinesses(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	primary := h.provider("gia", true)
	f1 := h.provider("hub", true)
	_, lead := routePrimary(t, h, primary, f1)

	leads, err := h.routing.AssignToFallbackBusinesses(ctx, lead)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, f1.UserID, leads[0].ProviderID)

	leads, err = h.routing.AssignToFallbackBusinesses(ctx, lead)
	require.NoError(t, err)
	assert.Empty(t, leads)
}
