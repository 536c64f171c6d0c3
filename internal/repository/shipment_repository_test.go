package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rastreioapp/tracking-gateway/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func newTestShipment(trackingCode *string, invoice, document, status string) *model.Shipment {
	return &model.Shipment{
		TrackingCode:  trackingCode,
		InvoiceNumber: invoice,
		Document:      document,
		Carrier:       model.DefaultCarrier,
		Status:        status,
	}
}

func TestShipmentRepository_Create(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewShipmentRepository(db)
	ctx := context.Background()

	t.Run("create shipment successfully", func(t *testing.T) {
		created, err := repo.Create(ctx, newTestShipment(ptr("SSW10001"), "NF-1", "00000000000191", "in_transit"))
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, created.ID)
		assert.Equal(t, "SSW10001", *created.TrackingCode)
		assert.Equal(t, "NF-1", created.InvoiceNumber)
		assert.Equal(t, "in_transit", created.Status)
		assert.NotZero(t, created.CreatedAt)
	})

	t.Run("status defaults to pending", func(t *testing.T) {
		created, err := repo.Create(ctx, newTestShipment(nil, "NF-2", "00000000000191", ""))
		require.NoError(t, err)
		assert.Equal(t, string(model.StatusPending), created.Status)
	})

	t.Run("duplicate tracking code is rejected", func(t *testing.T) {
		_, err := repo.Create(ctx, newTestShipment(ptr("SSW10002"), "NF-3", "00000000000191", ""))
		require.NoError(t, err)

		_, err = repo.Create(ctx, newTestShipment(ptr("SSW10002"), "NF-4", "00000000000191", ""))
		assert.ErrorIs(t, err, ErrDuplicateTrackingCode)
	})

	t.Run("tracking code is reusable after soft delete", func(t *testing.T) {
		first, err := repo.Create(ctx, newTestShipment(ptr("SSW10003"), "NF-5", "00000000000191", ""))
		require.NoError(t, err)
		require.NoError(t, repo.SoftDelete(ctx, first.ID))

		_, err = repo.Create(ctx, newTestShipment(ptr("SSW10003"), "NF-6", "00000000000191", ""))
		assert.NoError(t, err)
	})
}

func TestShipmentRepository_Get(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewShipmentRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, newTestShipment(ptr("SSW20001"), "NF-10", "11122233344", "posted"))
	require.NoError(t, err)

	t.Run("get by id", func(t *testing.T) {
		found, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
		assert.Equal(t, "posted", found.Status)
	})

	t.Run("get by tracking code", func(t *testing.T) {
		found, err := repo.GetByTrackingCode(ctx, "SSW20001")
		require.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
	})

	t.Run("unknown id returns ErrNotFound", func(t *testing.T) {
		_, err := repo.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("unknown tracking code returns ErrNotFound", func(t *testing.T) {
		_, err := repo.GetByTrackingCode(ctx, "SSW99999")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("soft deleted shipment is invisible", func(t *testing.T) {
		victim, err := repo.Create(ctx, newTestShipment(ptr("SSW20002"), "NF-11", "11122233344", ""))
		require.NoError(t, err)
		require.NoError(t, repo.SoftDelete(ctx, victim.ID))

		_, err = repo.GetByID(ctx, victim.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = repo.GetByTrackingCode(ctx, "SSW20002")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestShipmentRepository_FindByIdentity(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewShipmentRepository(db)
	ctx := context.Background()

	withCode, err := repo.Create(ctx, newTestShipment(ptr("SSW30001"), "NF-20", "55566677788", ""))
	require.NoError(t, err)
	withoutCode, err := repo.Create(ctx, newTestShipment(nil, "NF-21", "55566677788", ""))
	require.NoError(t, err)

	t.Run("tracking code takes precedence", func(t *testing.T) {
		found, err := repo.FindByIdentity(ctx, ptr("SSW30001"), "NF-21", "55566677788")
		require.NoError(t, err)
		assert.Equal(t, withCode.ID, found.ID)
	})

	t.Run("falls back to invoice and document", func(t *testing.T) {
		found, err := repo.FindByIdentity(ctx, nil, "NF-21", "55566677788")
		require.NoError(t, err)
		assert.Equal(t, withoutCode.ID, found.ID)
	})

	t.Run("unknown tracking code falls back to invoice and document", func(t *testing.T) {
		found, err := repo.FindByIdentity(ctx, ptr("SSW99999"), "NF-21", "55566677788")
		require.NoError(t, err)
		assert.Equal(t, withoutCode.ID, found.ID)
	})

	t.Run("empty tracking code behaves like nil", func(t *testing.T) {
		found, err := repo.FindByIdentity(ctx, ptr(""), "NF-21", "55566677788")
		require.NoError(t, err)
		assert.Equal(t, withoutCode.ID, found.ID)
	})

	t.Run("fallback skips shipments that carry a different code", func(t *testing.T) {
		_, err := repo.FindByIdentity(ctx, ptr("SSW99999"), "NF-20", "55566677788")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("no match returns ErrNotFound", func(t *testing.T) {
		_, err := repo.FindByIdentity(ctx, nil, "NF-404", "55566677788")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("soft deleted shipments never resolve", func(t *testing.T) {
		require.NoError(t, repo.SoftDelete(ctx, withCode.ID))
		_, err := repo.FindByIdentity(ctx, ptr("SSW30001"), "", "")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestShipmentRepository_ListAndCount(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewShipmentRepository(db)
	ctx := context.Background()

	documents := []string{"11111111111", "11111111111", "22222222222"}
	statuses := []string{"in_transit", "delivered", "in_transit"}
	for i := range documents {
		s := newTestShipment(ptr("SSW4000"+string(rune('1'+i))), "NF-3"+string(rune('0'+i)), documents[i], statuses[i])
		if i == 0 {
			s.Description = ptr("caixa de livros")
		}
		_, err := repo.Create(ctx, s)
		require.NoError(t, err)
	}

	t.Run("list all", func(t *testing.T) {
		out, err := repo.List(ctx, model.ShipmentFilter{})
		require.NoError(t, err)
		assert.Len(t, out, 3)
	})

	t.Run("filter by status", func(t *testing.T) {
		out, err := repo.List(ctx, model.ShipmentFilter{Status: ptr("in_transit")})
		require.NoError(t, err)
		assert.Len(t, out, 2)
	})

	t.Run("filter by document", func(t *testing.T) {
		total, err := repo.Count(ctx, model.ShipmentFilter{Document: ptr("11111111111")})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("search matches tracking code and description", func(t *testing.T) {
		out, err := repo.List(ctx, model.ShipmentFilter{Search: ptr("SSW40002")})
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "SSW40002", *out[0].TrackingCode)

		out, err = repo.List(ctx, model.ShipmentFilter{Search: ptr("livros")})
		require.NoError(t, err)
		assert.Len(t, out, 1)
	})

	t.Run("pagination", func(t *testing.T) {
		out, err := repo.List(ctx, model.ShipmentFilter{Limit: 2})
		require.NoError(t, err)
		assert.Len(t, out, 2)

		out, err = repo.List(ctx, model.ShipmentFilter{Limit: 2, Offset: 2})
		require.NoError(t, err)
		assert.Len(t, out, 1)
	})

	t.Run("count ignores pagination", func(t *testing.T) {
		total, err := repo.Count(ctx, model.ShipmentFilter{Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
	})
}

func TestShipmentRepository_Update(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewShipmentRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, newTestShipment(ptr("SSW50001"), "NF-40", "33344455566", ""))
	require.NoError(t, err)

	t.Run("applies only non-nil fields", func(t *testing.T) {
		updated, err := repo.Update(ctx, created.ID, model.ShipmentUpdate{
			Status:          ptr("in_transit"),
			DestinationCity: ptr("Curitiba"),
		})
		require.NoError(t, err)
		assert.Equal(t, "in_transit", updated.Status)
		assert.Equal(t, "Curitiba", *updated.DestinationCity)
		assert.Equal(t, "SSW50001", *updated.TrackingCode)
	})

	t.Run("rejects tracking code already in use", func(t *testing.T) {
		_, err := repo.Create(ctx, newTestShipment(ptr("SSW50002"), "NF-41", "33344455566", ""))
		require.NoError(t, err)

		_, err = repo.Update(ctx, created.ID, model.ShipmentUpdate{TrackingCode: ptr("SSW50002")})
		assert.ErrorIs(t, err, ErrDuplicateTrackingCode)
	})

	t.Run("unknown id returns ErrNotFound", func(t *testing.T) {
		_, err := repo.Update(ctx, uuid.New(), model.ShipmentUpdate{Status: ptr("delivered")})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestShipmentRepository_SetTrackingCodeAndStatus(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewShipmentRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, newTestShipment(nil, "NF-50", "77788899900", ""))
	require.NoError(t, err)

	t.Run("backfills tracking code", func(t *testing.T) {
		require.NoError(t, repo.SetTrackingCode(ctx, created.ID, "SSW60001"))
		found, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "SSW60001", *found.TrackingCode)
	})

	t.Run("sets status", func(t *testing.T) {
		require.NoError(t, repo.SetStatus(ctx, created.ID, string(model.StatusDelivered)))
		found, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, string(model.StatusDelivered), found.Status)
	})

	t.Run("unknown id returns ErrNotFound", func(t *testing.T) {
		assert.ErrorIs(t, repo.SetTrackingCode(ctx, uuid.New(), "SSW60002"), ErrNotFound)
		assert.ErrorIs(t, repo.SetStatus(ctx, uuid.New(), "delivered"), ErrNotFound)
	})
}

func TestShipmentRepository_Events(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewShipmentRepository(db)
	ctx := context.Background()

	shipment, err := repo.Create(ctx, newTestShipment(ptr("SSW70001"), "NF-60", "12312312300", ""))
	require.NoError(t, err)

	occurredAt := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)

	t.Run("create and find by dedup identity", func(t *testing.T) {
		created, err := repo.CreateEvent(ctx, &model.TrackingEvent{
			ShipmentID:  shipment.ID,
			Status:      "in_transit",
			Description: ptr("chegada na unidade"),
			OccurredAt:  occurredAt,
		})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, created.ID)

		found, err := repo.FindEvent(ctx, shipment.ID, occurredAt, "in_transit")
		require.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
	})

	t.Run("different status is a different identity", func(t *testing.T) {
		_, err := repo.FindEvent(ctx, shipment.ID, occurredAt, "delivered")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("update overwrites payload but keeps identity", func(t *testing.T) {
		existing, err := repo.FindEvent(ctx, shipment.ID, occurredAt, "in_transit")
		require.NoError(t, err)

		updated, err := repo.UpdateEvent(ctx, existing.ID, &model.TrackingEvent{
			Description:    ptr("chegada na unidade de destino"),
			Location:       ptr("Curitiba/PR"),
			OccurrenceCode: ptr("84"),
		})
		require.NoError(t, err)
		assert.Equal(t, existing.ID, updated.ID)
		assert.Equal(t, "chegada na unidade de destino", *updated.Description)
		assert.Equal(t, "Curitiba/PR", *updated.Location)
		assert.Equal(t, occurredAt.Unix(), updated.OccurredAt.Unix())
	})

	t.Run("update of unknown event returns ErrNotFound", func(t *testing.T) {
		_, err := repo.UpdateEvent(ctx, uuid.New(), &model.TrackingEvent{})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("list is ordered most recent first", func(t *testing.T) {
		_, err := repo.CreateEvent(ctx, &model.TrackingEvent{
			ShipmentID: shipment.ID,
			Status:     "delivered",
			OccurredAt: occurredAt.Add(24 * time.Hour),
		})
		require.NoError(t, err)

		events, err := repo.ListEvents(ctx, shipment.ID)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, "delivered", events[0].Status)
		assert.Equal(t, "in_transit", events[1].Status)

		total, err := repo.CountEvents(ctx, shipment.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})
}

func TestShipmentRepository_ListPending(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewShipmentRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, newTestShipment(ptr("SSW80001"), "NF-70", "99988877766", "in_transit"))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newTestShipment(ptr("SSW80002"), "NF-71", "99988877766", "delivered"))
	require.NoError(t, err)
	deleted, err := repo.Create(ctx, newTestShipment(ptr("SSW80003"), "NF-72", "99988877766", "pending"))
	require.NoError(t, err)
	require.NoError(t, repo.SoftDelete(ctx, deleted.ID))

	t.Run("excludes delivered and deleted shipments", func(t *testing.T) {
		pending, err := repo.ListPending(ctx, 10)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, "SSW80001", *pending[0].TrackingCode)
		assert.Equal(t, "in_transit", pending[0].Status)
	})
}

func TestShipmentRepository_Stats(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewShipmentRepository(db)
	ctx := context.Background()

	seed := map[string]int{
		"pending":    2,
		"in_transit": 1,
		"delivered":  3,
		"delayed":    1,
		"cancelled":  1,
		"returned":   1,
	}
	i := 0
	for status, n := range seed {
		for j := 0; j < n; j++ {
			_, err := repo.Create(ctx, newTestShipment(nil, "NF-8"+string(rune('0'+i)), "55544433322", status))
			require.NoError(t, err)
			i++
		}
	}

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(9), stats.Total)
	assert.Equal(t, int64(3), stats.InTransit) // pending + posted + in_transit
	assert.Equal(t, int64(3), stats.Delivered)
	assert.Equal(t, int64(1), stats.Delayed)
	assert.Equal(t, int64(2), stats.Cancelled) // cancelled + returned
}
