package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	domainevents "leadrouter.backend/internal/domain/events"
	"leadrouter.backend/internal/domain/gateways"
	"leadrouter.backend/internal/usecases"
	"leadrouter.backend/pkg/events"
)

func TestNotificationDispatcher_Handle(t *testing.T) {
	notifier := new(MockNotifier)
	d := usecases.NewNotificationDispatcher(notifier)
	ctx := context.Background()

	notifier.On("Send", mock.Anything, mock.MatchedBy(func(n gateways.Notification) bool {
		return n.Template == gateways.TemplateLeadAccepted && n.To == "dana@example.com" && n.Data["Price"] == "$1250.00"
	})).Return(nil).Once()
	require.NoError(t, d.Handle(ctx, domainevents.LeadAccepted{
		BaseEvent: events.NewBaseEvent(), LeadID: uuid.New(),
		CustomerEmail: "dana@example.com", CustomerName: "Dana", BusinessName: "Ana LLC", Price: 1250,
	}))

	notifier.On("Send", mock.Anything, mock.MatchedBy(func(n gateways.Notification) bool {
		return n.Template == gateways.TemplateLeadRejected && n.Data["ReasonOther"] == "on vacation" && n.Data["Reason"] == "Other"
	})).Return(nil).Once()
	require.NoError(t, d.Handle(ctx, domainevents.LeadRejected{
		BaseEvent: events.NewBaseEvent(), CustomerEmail: "dana@example.com", Reason: "OTHER", ReasonOther: "on vacation",
	}))

	notifier.On("Send", mock.Anything, mock.MatchedBy(func(n gateways.Notification) bool {
		return n.Template == gateways.TemplateLeadAssigned && n.To == "kim@example.com"
	})).Return(errors.New("smtp down")).Once()
	err := d.Handle(ctx, domainevents.LeadAssigned{BaseEvent: events.NewBaseEvent(), ProviderEmail: "kim@example.com"})
	assert.EqualError(t, err, "smtp down")

	// no recipient, nothing sent
	require.NoError(t, d.Handle(ctx, domainevents.LeadAssigned{BaseEvent: events.NewBaseEvent()}))

	notifier.AssertExpectations(t)
	notifier.AssertNumberOfCalls(t, "Send", 3)
}

func TestNotificationDispatcher_RegisterOnBus(t *testing.T) {
	notifier := new(MockNotifier)
	notifier.On("Send", mock.Anything, mock.Anything).Return(nil)
	bus := events.NewInMemoryBus(0)
	usecases.NewNotificationDispatcher(notifier).Register(bus)

	bus.Publish(context.Background(), domainevents.LeadAssigned{BaseEvent: events.NewBaseEvent(), ProviderEmail: "a@example.com"})
	bus.Wait()
	notifier.AssertNumberOfCalls(t, "Send", 1)
}
