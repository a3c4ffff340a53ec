package postgres

import (
	"fmt"

	"gorm.io/gorm"

	"leadrouter.backend/internal/infrastructure/models"
)

// liveLeadIndex enforces one live lead per provider per request.
const liveLeadIndex = `CREATE UNIQUE INDEX IF NOT EXISTS ux_leads_live_request_provider
	ON leads (service_request_id, provider_id)
	WHERE status IN ('submitted', 'routed', 'accepted')`

const fallbackDueIndex = `CREATE INDEX IF NOT EXISTS ix_leads_fallback_due
	ON leads (priority_expires_at)
	WHERE fallback_processed_at IS NULL`

// Migrate creates or updates the schema. The partial indexes use syntax shared
// by PostgreSQL and SQLite.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.ServiceRequest{},
		&models.AlternativeProviderSelection{},
		&models.ProviderProfile{},
		&models.ProviderSubscription{},
		&models.Lead{},
		&models.Proposal{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	for _, stmt := range []string{liveLeadIndex, fallbackDueIndex} {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}
