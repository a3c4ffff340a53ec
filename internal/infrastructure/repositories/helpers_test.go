package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"leadrouter.backend/internal/domain/entities"
	"leadrouter.backend/internal/infrastructure/datasources/postgres"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	return db
}

func newMigratedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := newTestDB(t)
	require.NoError(t, postgres.Migrate(db), "migrate")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func seedRequest(t *testing.T, db *gorm.DB) *entities.ServiceRequest {
	t.Helper()
	req := &entities.ServiceRequest{
		CustomerID:         uuid.New(),
		CategoryID:         uuid.New(),
		ZipCode:            "94110",
		ProjectTitle:       "Replace fence",
		ProjectDescription: "40ft cedar fence",
		ContactName:        "Dana",
		ContactEmail:       "dana@example.com",
	}
	require.NoError(t, NewServiceRequestRepository(db).Create(context.Background(), req))
	return req
}

func newLead(req *entities.ServiceRequest, providerID uuid.UUID, status entities.LeadStatus) *entities.Lead {
	return &entities.Lead{
		ServiceRequestID: req.ID,
		CustomerID:       req.CustomerID,
		ProviderID:       providerID,
		BusinessID:       uuid.New(),
		CategoryID:       req.CategoryID,
		Status:           status,
		Metadata:         entities.LeadMetadata{Project: req.Snapshot()},
	}
}
