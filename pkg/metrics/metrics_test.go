package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorders(t *testing.T) {
	before := testutil.ToFloat64(LeadTransitionsTotal.WithLabelValues("routed", "accepted"))
	RecordTransition("routed", "accepted")
	assert.Equal(t, before+1, testutil.ToFloat64(LeadTransitionsTotal.WithLabelValues("routed", "accepted")))

	RecordCharge("succeeded")
	assert.GreaterOrEqual(t, testutil.ToFloat64(ChargesTotal.WithLabelValues("succeeded")), 1.0)

	RecordReassignment(ChannelFallback, "assigned")
	assert.GreaterOrEqual(t, testutil.ToFloat64(ReassignmentsTotal.WithLabelValues(ChannelFallback, "assigned")), 1.0)

	RecordNotification("lead_assigned", nil)
	RecordNotification("lead_assigned", errors.New("smtp"))
	assert.GreaterOrEqual(t, testutil.ToFloat64(NotificationsTotal.WithLabelValues("lead_assigned", "error")), 1.0)
}
