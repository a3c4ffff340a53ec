package usecases

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	domainevents "leadrouter.backend/internal/domain/events"
	"leadrouter.backend/internal/domain/gateways"
	"leadrouter.backend/pkg/events"
	"leadrouter.backend/pkg/logger"
	"leadrouter.backend/pkg/metrics"
)

var rejectionReasonLabels = map[string]string{
	"TOO_FAR":       "The job is outside the provider's service area",
	"TOO_EXPENSIVE": "The provider could not meet the expected budget",
	"NOT_RELEVANT":  "The job is not a fit for this provider",
	"OTHER":         "Other",
}

// NotificationDispatcher turns lead events into emails. Send failures are
// logged and counted, never returned to the publisher.
type NotificationDispatcher struct {
	notifier gateways.Notifier
}

func NewNotificationDispatcher(notifier gateways.Notifier) *NotificationDispatcher {
	return &NotificationDispatcher{notifier: notifier}
}

// Register subscribes the dispatcher to every lead event.
func (d *NotificationDispatcher) Register(bus events.Bus) {
	bus.Subscribe(domainevents.LeadAcceptedEvent, events.HandlerFunc(d.Handle))
	bus.Subscribe(domainevents.LeadRejectedEvent, events.HandlerFunc(d.Handle))
	bus.Subscribe(domainevents.LeadAssignedEvent, events.HandlerFunc(d.Handle))
}

func (d *NotificationDispatcher) Handle(ctx context.Context, event events.Event) error {
	n, ok := buildNotification(event)
	if !ok {
		return nil
	}
	if strings.TrimSpace(n.To) == "" {
		logger.Warn(ctx, "Notification skipped, recipient has no email", zap.String("event", event.EventName()))
		return nil
	}

	err := d.notifier.Send(ctx, n)
	metrics.RecordNotification(n.Template, err)
	if err != nil {
		logger.Error(ctx, "Notification send failed",
			zap.String("event", event.EventName()),
			zap.String("template", n.Template),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func buildNotification(event events.Event) (gateways.Notification, bool) {
	switch e := event.(type) {
	case domainevents.LeadAccepted:
		return gateways.Notification{
			To:       e.CustomerEmail,
			ToName:   e.CustomerName,
			Template: gateways.TemplateLeadAccepted,
			Data: map[string]interface{}{
				"CustomerName": e.CustomerName,
				"BusinessName": e.BusinessName,
				"ProjectTitle": e.ProjectTitle,
				"Price":        fmt.Sprintf("$%.2f", e.Price),
			},
		}, true
	case domainevents.LeadRejected:
		reason, ok := rejectionReasonLabels[e.Reason]
		if !ok {
			reason = e.Reason
		}
		return gateways.Notification{
			To:       e.CustomerEmail,
			ToName:   e.CustomerName,
			Template: gateways.TemplateLeadRejected,
			Data: map[string]interface{}{
				"CustomerName": e.CustomerName,
				"ProjectTitle": e.ProjectTitle,
				"Reason":       reason,
				"ReasonOther":  e.ReasonOther,
			},
		}, true
	case domainevents.LeadAssigned:
		return gateways.Notification{
			To:       e.ProviderEmail,
			ToName:   e.ProviderName,
			Template: gateways.TemplateLeadAssigned,
			Data: map[string]interface{}{
				"ProviderName": e.ProviderName,
				"ProjectTitle": e.ProjectTitle,
				"ZipCode":      e.ZipCode,
			},
		}, true
	}
	return gateways.Notification{}, false
}
