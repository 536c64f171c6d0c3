package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rastreioapp/tracking-gateway/internal/model"
	"github.com/rastreioapp/tracking-gateway/pkg/logger"
)

var (
	// ErrInvalidStatus is returned when a caller supplies a status outside
	// the canonical set.
	ErrInvalidStatus = errors.New("invalid shipment status")
	// ErrEmptyUpdate is returned when an update request carries no fields.
	ErrEmptyUpdate = errors.New("update request has no fields")
)

type ShipmentStore interface {
	Create(ctx context.Context, m *model.Shipment) (*model.Shipment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Shipment, error)
	GetByTrackingCode(ctx context.Context, trackingCode string) (*model.Shipment, error)
	List(ctx context.Context, f model.ShipmentFilter) ([]*model.Shipment, error)
	Count(ctx context.Context, f model.ShipmentFilter) (int64, error)
	Stats(ctx context.Context) (*model.ShipmentStats, error)
	Update(ctx context.Context, id uuid.UUID, u model.ShipmentUpdate) (*model.Shipment, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
	CreateEvent(ctx context.Context, m *model.TrackingEvent) (*model.TrackingEvent, error)
	ListEvents(ctx context.Context, shipmentID uuid.UUID) ([]*model.TrackingEvent, error)
}

// ShipmentService is the management surface over shipments: CRUD, listing
// with filters, dashboard stats, and manual event entry.
type ShipmentService struct {
	store ShipmentStore
}

func NewShipmentService(store ShipmentStore) *ShipmentService {
	return &ShipmentService{store: store}
}

func (s *ShipmentService) Create(ctx context.Context, req model.ShipmentCreateRequest) (*model.Shipment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	status := model.StatusPending
	if req.Status != "" {
		status = model.ShipmentStatus(req.Status)
		if !status.Valid() {
			return nil, ErrInvalidStatus
		}
	}
	carrier := req.Carrier
	if carrier == "" {
		carrier = model.DefaultCarrier
	}

	created, err := s.store.Create(ctx, &model.Shipment{
		TrackingCode:          req.TrackingCode,
		InvoiceNumber:         req.InvoiceNumber,
		Document:              req.Document,
		Carrier:               carrier,
		Status:                string(status),
		OriginCity:            req.OriginCity,
		OriginState:           req.OriginState,
		DestinationCity:       req.DestinationCity,
		DestinationState:      req.DestinationState,
		WeightKg:              req.WeightKg,
		FreightCost:           req.FreightCost,
		DeclaredValue:         req.DeclaredValue,
		Description:           req.Description,
		EstimatedDeliveryDate: req.EstimatedDeliveryDate,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("shipment created", "shipment_id", created.ID, "invoice_number", created.InvoiceNumber)
	return created, nil
}

// Get returns a shipment with its tracking events attached.
func (s *ShipmentService) Get(ctx context.Context, id uuid.UUID) (*model.Shipment, error) {
	shipment, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	events, err := s.store.ListEvents(ctx, id)
	if err != nil {
		return nil, err
	}
	shipment.Events = events
	return shipment, nil
}

// GetByTrackingCode is the public lookup used by the customer-facing page.
func (s *ShipmentService) GetByTrackingCode(ctx context.Context, trackingCode string) (*model.Shipment, error) {
	shipment, err := s.store.GetByTrackingCode(ctx, trackingCode)
	if err != nil {
		return nil, err
	}
	events, err := s.store.ListEvents(ctx, shipment.ID)
	if err != nil {
		return nil, err
	}
	shipment.Events = events
	return shipment, nil
}

func (s *ShipmentService) List(ctx context.Context, f model.ShipmentFilter) ([]*model.Shipment, error) {
	if f.Status != nil && !model.ShipmentStatus(*f.Status).Valid() {
		return nil, ErrInvalidStatus
	}
	return s.store.List(ctx, f)
}

func (s *ShipmentService) Count(ctx context.Context, f model.ShipmentFilter) (int64, error) {
	if f.Status != nil && !model.ShipmentStatus(*f.Status).Valid() {
		return 0, ErrInvalidStatus
	}
	return s.store.Count(ctx, f)
}

func (s *ShipmentService) Stats(ctx context.Context) (*model.ShipmentStats, error) {
	return s.store.Stats(ctx)
}

func (s *ShipmentService) Update(ctx context.Context, id uuid.UUID, u model.ShipmentUpdate) (*model.Shipment, error) {
	if u.Empty() {
		return nil, ErrEmptyUpdate
	}
	if u.Status != nil && !model.ShipmentStatus(*u.Status).Valid() {
		return nil, ErrInvalidStatus
	}
	return s.store.Update(ctx, id, u)
}

func (s *ShipmentService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.SoftDelete(ctx, id); err != nil {
		return err
	}
	logger.Info("shipment deleted", "shipment_id", id)
	return nil
}

// AddEvent records a manually entered tracking event. The status goes through
// the same normalization as scraped events so the timeline stays consistent.
func (s *ShipmentService) AddEvent(ctx context.Context, shipmentID uuid.UUID, req model.TrackingEventCreateRequest) (*model.TrackingEvent, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.store.GetByID(ctx, shipmentID); err != nil {
		return nil, err
	}
	return s.store.CreateEvent(ctx, &model.TrackingEvent{
		ShipmentID:     shipmentID,
		Status:         string(model.NormalizeStatus(req.Status)),
		Description:    req.Description,
		Location:       req.Location,
		OccurrenceCode: model.TruncateOccurrenceCode(req.OccurrenceCode),
		Unit:           req.Unit,
		Protocol:       req.Protocol,
		OccurredAt:     req.OccurredAt,
	})
}

func (s *ShipmentService) ListEvents(ctx context.Context, shipmentID uuid.UUID) ([]*model.TrackingEvent, error) {
	if _, err := s.store.GetByID(ctx, shipmentID); err != nil {
		return nil, err
	}
	return s.store.ListEvents(ctx, shipmentID)
}
