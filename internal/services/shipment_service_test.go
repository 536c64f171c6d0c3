package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rastreioapp/tracking-gateway/internal/model"
	"github.com/rastreioapp/tracking-gateway/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockShipmentStore struct {
	mock.Mock
}

func (m *MockShipmentStore) Create(ctx context.Context, s *model.Shipment) (*model.Shipment, error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Shipment), args.Error(1)
}

func (m *MockShipmentStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Shipment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Shipment), args.Error(1)
}

func (m *MockShipmentStore) GetByTrackingCode(ctx context.Context, trackingCode string) (*model.Shipment, error) {
	args := m.Called(ctx, trackingCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Shipment), args.Error(1)
}

func (m *MockShipmentStore) List(ctx context.Context, f model.ShipmentFilter) ([]*model.Shipment, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Shipment), args.Error(1)
}

func (m *MockShipmentStore) Count(ctx context.Context, f model.ShipmentFilter) (int64, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockShipmentStore) Stats(ctx context.Context) (*model.ShipmentStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ShipmentStats), args.Error(1)
}

func (m *MockShipmentStore) Update(ctx context.Context, id uuid.UUID, u model.ShipmentUpdate) (*model.Shipment, error) {
	args := m.Called(ctx, id, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Shipment), args.Error(1)
}

func (m *MockShipmentStore) SoftDelete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockShipmentStore) CreateEvent(ctx context.Context, e *model.TrackingEvent) (*model.TrackingEvent, error) {
	args := m.Called(ctx, e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TrackingEvent), args.Error(1)
}

func (m *MockShipmentStore) ListEvents(ctx context.Context, shipmentID uuid.UUID) ([]*model.TrackingEvent, error) {
	args := m.Called(ctx, shipmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.TrackingEvent), args.Error(1)
}

func TestShipmentService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates with defaults", func(t *testing.T) {
		store := new(MockShipmentStore)
		svc := NewShipmentService(store)

		store.On("Create", ctx, mock.MatchedBy(func(s *model.Shipment) bool {
			return s.Carrier == model.DefaultCarrier && s.Status == string(model.StatusPending)
		})).Return(&model.Shipment{ID: uuid.New(), InvoiceNumber: "NF-1"}, nil)

		created, err := svc.Create(ctx, model.ShipmentCreateRequest{
			InvoiceNumber: "NF-1",
			Document:      "00000000000191",
		})
		require.NoError(t, err)
		assert.Equal(t, "NF-1", created.InvoiceNumber)
		store.AssertExpectations(t)
	})

	t.Run("rejects missing identity fields", func(t *testing.T) {
		store := new(MockShipmentStore)
		svc := NewShipmentService(store)

		_, err := svc.Create(ctx, model.ShipmentCreateRequest{Document: "00000000000191"})
		assert.Error(t, err)
		store.AssertNotCalled(t, "Create")
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		store := new(MockShipmentStore)
		svc := NewShipmentService(store)

		_, err := svc.Create(ctx, model.ShipmentCreateRequest{
			InvoiceNumber: "NF-1",
			Document:      "00000000000191",
			Status:        "flying",
		})
		assert.ErrorIs(t, err, ErrInvalidStatus)
		store.AssertNotCalled(t, "Create")
	})
}

func TestShipmentService_Get(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("attaches events", func(t *testing.T) {
		store := new(MockShipmentStore)
		svc := NewShipmentService(store)

		store.On("GetByID", ctx, id).Return(&model.Shipment{ID: id}, nil)
		store.On("ListEvents", ctx, id).Return([]*model.TrackingEvent{
			{ID: uuid.New(), ShipmentID: id, Status: "in_transit"},
		}, nil)

		shipment, err := svc.Get(ctx, id)
		require.NoError(t, err)
		assert.Len(t, shipment.Events, 1)
	})

	t.Run("propagates not found", func(t *testing.T) {
		store := new(MockShipmentStore)
		svc := NewShipmentService(store)

		store.On("GetByID", ctx, id).Return(nil, repository.ErrNotFound)

		_, err := svc.Get(ctx, id)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestShipmentService_ListAndCount(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects invalid status filter", func(t *testing.T) {
		store := new(MockShipmentStore)
		svc := NewShipmentService(store)

		bad := "warp_speed"
		_, err := svc.List(ctx, model.ShipmentFilter{Status: &bad})
		assert.ErrorIs(t, err, ErrInvalidStatus)
		_, err = svc.Count(ctx, model.ShipmentFilter{Status: &bad})
		assert.ErrorIs(t, err, ErrInvalidStatus)
		store.AssertNotCalled(t, "List")
		store.AssertNotCalled(t, "Count")
	})

	t.Run("passes the filter through", func(t *testing.T) {
		store := new(MockShipmentStore)
		svc := NewShipmentService(store)

		status := "in_transit"
		f := model.ShipmentFilter{Status: &status, Limit: 10}
		store.On("List", ctx, f).Return([]*model.Shipment{}, nil)
		store.On("Count", ctx, f).Return(int64(0), nil)

		_, err := svc.List(ctx, f)
		require.NoError(t, err)
		_, err = svc.Count(ctx, f)
		require.NoError(t, err)
		store.AssertExpectations(t)
	})
}

func TestShipmentService_Update(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("rejects empty update", func(t *testing.T) {
		store := new(MockShipmentStore)
		svc := NewShipmentService(store)

		_, err := svc.Update(ctx, id, model.ShipmentUpdate{})
		assert.ErrorIs(t, err, ErrEmptyUpdate)
		store.AssertNotCalled(t, "Update")
	})

	t.Run("rejects invalid status", func(t *testing.T) {
		store := new(MockShipmentStore)
		svc := NewShipmentService(store)

		bad := "teleported"
		_, err := svc.Update(ctx, id, model.ShipmentUpdate{Status: &bad})
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("applies a valid update", func(t *testing.T) {
		store := new(MockShipmentStore)
		svc := NewShipmentService(store)

		status := "delivered"
		u := model.ShipmentUpdate{Status: &status}
		store.On("Update", ctx, id, u).Return(&model.Shipment{ID: id, Status: status}, nil)

		updated, err := svc.Update(ctx, id, u)
		require.NoError(t, err)
		assert.Equal(t, "delivered", updated.Status)
	})
}

func TestShipmentService_AddEvent(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	occurredAt := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("normalizes the status before persisting", func(t *testing.T) {
		store := new(MockShipmentStore)
		svc := NewShipmentService(store)

		store.On("GetByID", ctx, id).Return(&model.Shipment{ID: id}, nil)
		store.On("CreateEvent", ctx, mock.MatchedBy(func(e *model.TrackingEvent) bool {
			return e.Status == "out_for_delivery"
		})).Return(&model.TrackingEvent{ID: uuid.New(), Status: "out_for_delivery"}, nil)

		_, err := svc.AddEvent(ctx, id, model.TrackingEventCreateRequest{
			Status:     "SAIU PARA ENTREGA",
			OccurredAt: occurredAt,
		})
		require.NoError(t, err)
		store.AssertExpectations(t)
	})

	t.Run("rejects events for unknown shipments", func(t *testing.T) {
		store := new(MockShipmentStore)
		svc := NewShipmentService(store)

		store.On("GetByID", ctx, id).Return(nil, repository.ErrNotFound)

		_, err := svc.AddEvent(ctx, id, model.TrackingEventCreateRequest{
			Status:     "entregue",
			OccurredAt: occurredAt,
		})
		assert.ErrorIs(t, err, repository.ErrNotFound)
		store.AssertNotCalled(t, "CreateEvent")
	})

	t.Run("rejects events without a status", func(t *testing.T) {
		store := new(MockShipmentStore)
		svc := NewShipmentService(store)

		_, err := svc.AddEvent(ctx, id, model.TrackingEventCreateRequest{OccurredAt: occurredAt})
		assert.Error(t, err)
	})
}

func TestShipmentService_Delete(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	store := new(MockShipmentStore)
	svc := NewShipmentService(store)

	store.On("SoftDelete", ctx, id).Return(nil).Once()
	require.NoError(t, svc.Delete(ctx, id))

	store.On("SoftDelete", ctx, id).Return(repository.ErrNotFound).Once()
	assert.ErrorIs(t, svc.Delete(ctx, id), repository.ErrNotFound)
}
