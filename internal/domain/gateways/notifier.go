package gateways

import (
	"context"
)

// Notification templates
const (
	TemplateLeadAssigned = "lead_assigned"
	TemplateLeadAccepted = "lead_accepted"
	TemplateLeadRejected = "lead_rejected"
)

// Notification is a templated message to a single recipient
type Notification struct {
	To       string
	ToName   string
	Template string
	Subject  string
	Data     map[string]interface{}
}

// Notifier delivers notifications
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}
