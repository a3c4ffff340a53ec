package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"leadrouter.backend/internal/config"
	"leadrouter.backend/internal/infrastructure/notifications"
)

func TestNewNotifier(t *testing.T) {
	assert.IsType(t, &notifications.LogNotifier{}, NewNotifier(config.SMTPConfig{}))
	assert.IsType(t, &notifications.SMTPNotifier{}, NewNotifier(config.SMTPConfig{Host: "smtp.example.com", Port: 587}))
}

func TestNew(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:app_new?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	cfg := &config.Config{Stripe: config.StripeConfig{SecretKey: "sk_test_x", Currency: "usd"}}
	a := New(cfg, db, NewChargeGateway(cfg.Stripe))
	assert.NotNil(t, a.Leads)
	assert.NotNil(t, a.Routing)
	assert.NotNil(t, a.Payouts)
	assert.NotNil(t, a.Bus)
}
