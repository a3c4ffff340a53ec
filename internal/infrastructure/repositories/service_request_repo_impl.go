package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"

	"leadrouter.backend/internal/domain/entities"
	domainerrors "leadrouter.backend/internal/domain/errors"
	"leadrouter.backend/internal/infrastructure/models"
)

// ServiceRequestRepositoryImpl implements ServiceRequestRepository
type ServiceRequestRepositoryImpl struct {
	db *gorm.DB
}

func NewServiceRequestRepository(db *gorm.DB) *ServiceRequestRepositoryImpl {
	return &ServiceRequestRepositoryImpl{db: db}
}

func (r *ServiceRequestRepositoryImpl) Create(ctx context.Context, req *entities.ServiceRequest) error {
	now := time.Now().UTC()
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	if req.Status == "" {
		req.Status = entities.ServiceRequestStatusOpen
	}
	req.CreatedAt = now
	req.UpdatedAt = now

	attachments, err := marshalJSON(nonNilStrings(req.Attachments))
	if err != nil {
		return fmt.Errorf("encode attachments: %w", err)
	}
	selected, err := marshalJSON(nonNilUUIDs(req.SelectedBusinessIDs))
	if err != nil {
		return fmt.Errorf("encode selected businesses: %w", err)
	}

	m := &models.ServiceRequest{
		ID:                  req.ID,
		CustomerID:          req.CustomerID,
		CategoryID:          req.CategoryID,
		SubCategoryID:       req.SubCategoryID,
		ZipCode:             req.ZipCode,
		ProjectTitle:        req.ProjectTitle,
		ProjectDescription:  req.ProjectDescription,
		PreferredDate:       req.PreferredDate,
		PreferredTime:       req.PreferredTime,
		Attachments:         attachments,
		Status:              string(req.Status),
		PrimaryProviderID:   req.PrimaryProviderID,
		SelectedBusinessIDs: selected,
		ContactName:         req.ContactName,
		ContactEmail:        req.ContactEmail,
		ContactPhone:        req.ContactPhone.Ptr(),
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	return mapError(GetDB(ctx, r.db).WithContext(ctx).Create(m).Error)
}

func (r *ServiceRequestRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.ServiceRequest, error) {
	var m models.ServiceRequest
	db := lockedDB(ctx, GetDB(ctx, r.db).WithContext(ctx))
	if err := db.Where("id = ?", id).First(&m).Error; err != nil {
		return nil, mapError(err)
	}
	return r.toEntity(&m)
}

func (r *ServiceRequestRepositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.ServiceRequestStatus) error {
	res := GetDB(ctx, r.db).WithContext(ctx).Model(&models.ServiceRequest{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     string(status),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *ServiceRequestRepositoryImpl) toEntity(m *models.ServiceRequest) (*entities.ServiceRequest, error) {
	req := &entities.ServiceRequest{
		ID:                 m.ID,
		CustomerID:         m.CustomerID,
		CategoryID:         m.CategoryID,
		SubCategoryID:      m.SubCategoryID,
		ZipCode:            m.ZipCode,
		ProjectTitle:       m.ProjectTitle,
		ProjectDescription: m.ProjectDescription,
		PreferredDate:      m.PreferredDate,
		PreferredTime:      m.PreferredTime,
		Status:             entities.ServiceRequestStatus(m.Status),
		PrimaryProviderID:  m.PrimaryProviderID,
		ContactName:        m.ContactName,
		ContactEmail:       m.ContactEmail,
		ContactPhone:       null.StringFromPtr(m.ContactPhone),
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
	if err := unmarshalJSON(m.Attachments, &req.Attachments); err != nil {
		return nil, fmt.Errorf("decode attachments: %w", err)
	}
	if err := unmarshalJSON(m.SelectedBusinessIDs, &req.SelectedBusinessIDs); err != nil {
		return nil, fmt.Errorf("decode selected businesses: %w", err)
	}
	return req, nil
}

func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func nonNilUUIDs(in []uuid.UUID) []uuid.UUID {
	if in == nil {
		return []uuid.UUID{}
	}
	return in
}

// AlternativeProviderRepositoryImpl implements AlternativeProviderRepository
type AlternativeProviderRepositoryImpl struct {
	db *gorm.DB
}

func NewAlternativeProviderRepository(db *gorm.DB) *AlternativeProviderRepositoryImpl {
	return &AlternativeProviderRepositoryImpl{db: db}
}

func (r *AlternativeProviderRepositoryImpl) Create(ctx context.Context, sel *entities.AlternativeProviderSelection) error {
	if sel.ID == uuid.Nil {
		sel.ID = uuid.New()
	}
	sel.CreatedAt = time.Now().UTC()
	m := &models.AlternativeProviderSelection{
		ID:               sel.ID,
		ServiceRequestID: sel.ServiceRequestID,
		ProviderID:       sel.ProviderID,
		Position:         sel.Position,
		CreatedAt:        sel.CreatedAt,
	}
	return mapError(GetDB(ctx, r.db).WithContext(ctx).Create(m).Error)
}

func (r *AlternativeProviderRepositoryImpl) ListByServiceRequest(ctx context.Context, serviceRequestID uuid.UUID) ([]*entities.AlternativeProviderSelection, error) {
	var ms []models.AlternativeProviderSelection
	if err := GetDB(ctx, r.db).WithContext(ctx).
		Where("service_request_id = ?", serviceRequestID).
		Order("position ASC").Order("created_at ASC").
		Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*entities.AlternativeProviderSelection, 0, len(ms))
	for _, m := range ms {
		out = append(out, &entities.AlternativeProviderSelection{
			ID:               m.ID,
			ServiceRequestID: m.ServiceRequestID,
			ProviderID:       m.ProviderID,
			Position:         m.Position,
			CreatedAt:        m.CreatedAt,
		})
	}
	return out, nil
}
