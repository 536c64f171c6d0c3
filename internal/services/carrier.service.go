package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/rastreioapp/tracking-gateway/internal/model"
	"github.com/rastreioapp/tracking-gateway/pkg/logger"
)

type CarrierStore interface {
	Create(ctx context.Context, m *model.Carrier) (*model.Carrier, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Carrier, error)
	GetByCode(ctx context.Context, code string) (*model.Carrier, error)
	List(ctx context.Context, activeOnly bool) ([]*model.Carrier, error)
	Update(ctx context.Context, id uuid.UUID, u model.CarrierUpdate) (*model.Carrier, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type CarrierService struct {
	store CarrierStore
}

func NewCarrierService(store CarrierStore) *CarrierService {
	return &CarrierService{store: store}
}

func (s *CarrierService) Create(ctx context.Context, req model.CarrierCreateRequest) (*model.Carrier, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	created, err := s.store.Create(ctx, &model.Carrier{
		Name:      req.Name,
		Code:      req.Code,
		Active:    active,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("carrier created", "carrier_id", created.ID, "code", created.Code)
	return created, nil
}

func (s *CarrierService) Get(ctx context.Context, id uuid.UUID) (*model.Carrier, error) {
	return s.store.Get(ctx, id)
}

func (s *CarrierService) GetByCode(ctx context.Context, code string) (*model.Carrier, error) {
	return s.store.GetByCode(ctx, code)
}

func (s *CarrierService) List(ctx context.Context, activeOnly bool) ([]*model.Carrier, error) {
	return s.store.List(ctx, activeOnly)
}

func (s *CarrierService) Update(ctx context.Context, id uuid.UUID, u model.CarrierUpdate) (*model.Carrier, error) {
	return s.store.Update(ctx, id, u)
}

func (s *CarrierService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.SoftDelete(ctx, id); err != nil {
		return err
	}
	logger.Info("carrier deleted", "carrier_id", id)
	return nil
}
