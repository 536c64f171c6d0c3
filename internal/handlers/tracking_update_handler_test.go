package handlers

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rastreioapp/tracking-gateway/internal/model"
	xhttp "github.com/rastreioapp/tracking-gateway/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

const testAPIKey = "scraper-key"

type MockTrackingService struct {
	mock.Mock
}

func (m *MockTrackingService) Reconcile(ctx context.Context, upd model.ShipmentTrackingUpdate) (*model.TrackingUpdateResult, error) {
	args := m.Called(ctx, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TrackingUpdateResult), args.Error(1)
}

func (m *MockTrackingService) ReconcileBulk(ctx context.Context, bulk model.BulkTrackingUpdate) *model.BulkTrackingResult {
	args := m.Called(ctx, bulk)
	return args.Get(0).(*model.BulkTrackingResult)
}

func (m *MockTrackingService) OccurrenceCodes(ctx context.Context) ([]*model.OccurrenceCode, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.OccurrenceCode), args.Error(1)
}

func (m *MockTrackingService) PendingShipments(ctx context.Context, limit int) ([]*model.PendingShipment, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.PendingShipment), args.Error(1)
}

func setupTestContext(method, path string, body []byte) *xhttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(path)
	if body != nil {
		ctx.Request.SetBody(body)
	}
	return ctx
}

func setupAuthedContext(method, path string, body []byte) *xhttp.RequestCtx {
	ctx := setupTestContext(method, path, body)
	ctx.Request.Header.Set("X-API-Key", testAPIKey)
	return ctx
}

func trackingBody(t *testing.T, occurredAt string) []byte {
	b, err := json.Marshal(trackingUpdateRequest{
		TrackingCode: ptrTo("SSW00100"),
		Carrier:      "SSW",
		Events: []trackingEventRequest{
			{Status: "em transito", OccurredAt: occurredAt},
		},
	})
	require.NoError(t, err)
	return b
}

func ptrTo[T any](v T) *T { return &v }

func TestTrackingHandler_APIKey(t *testing.T) {
	saoPaulo, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	t.Run("missing key is rejected", func(t *testing.T) {
		svc := new(MockTrackingService)
		handler := NewTrackingHandler(svc, testAPIKey, saoPaulo)

		ctx := setupTestContext("POST", "/tracking-updates/shipment", trackingBody(t, "2026-04-01T09:00:00"))
		handler.withAPIKey(handler.UpdateShipmentTracking)(ctx)

		assert.Equal(t, 401, ctx.Response.StatusCode())
		svc.AssertNotCalled(t, "Reconcile")
	})

	t.Run("wrong key is rejected", func(t *testing.T) {
		svc := new(MockTrackingService)
		handler := NewTrackingHandler(svc, testAPIKey, saoPaulo)

		ctx := setupTestContext("POST", "/tracking-updates/shipment", trackingBody(t, "2026-04-01T09:00:00"))
		ctx.Request.Header.Set("X-API-Key", "wrong")
		handler.withAPIKey(handler.UpdateShipmentTracking)(ctx)

		assert.Equal(t, 401, ctx.Response.StatusCode())
	})

	t.Run("empty configured key disables ingestion", func(t *testing.T) {
		svc := new(MockTrackingService)
		handler := NewTrackingHandler(svc, "", saoPaulo)

		ctx := setupTestContext("POST", "/tracking-updates/shipment", trackingBody(t, "2026-04-01T09:00:00"))
		ctx.Request.Header.Set("X-API-Key", "")
		handler.withAPIKey(handler.UpdateShipmentTracking)(ctx)

		assert.Equal(t, 401, ctx.Response.StatusCode())
	})
}

func TestTrackingHandler_UpdateShipmentTracking(t *testing.T) {
	saoPaulo, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	t.Run("successful update", func(t *testing.T) {
		svc := new(MockTrackingService)
		handler := NewTrackingHandler(svc, testAPIKey, saoPaulo)

		svc.On("Reconcile", mock.Anything, mock.MatchedBy(func(upd model.ShipmentTrackingUpdate) bool {
			return upd.TrackingCode != nil && *upd.TrackingCode == "SSW00100" && len(upd.Events) == 1
		})).Return(&model.TrackingUpdateResult{Success: true, EventsCreated: 1, Errors: []string{}}, nil)

		ctx := setupAuthedContext("POST", "/tracking-updates/shipment", trackingBody(t, "2026-04-01T09:00:00"))
		handler.withAPIKey(handler.UpdateShipmentTracking)(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())

		var result model.TrackingUpdateResult
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &result))
		assert.True(t, result.Success)
		assert.Equal(t, 1, result.EventsCreated)
		svc.AssertExpectations(t)
	})

	t.Run("naive timestamps are taken as business-timezone wall time", func(t *testing.T) {
		svc := new(MockTrackingService)
		handler := NewTrackingHandler(svc, testAPIKey, saoPaulo)

		want := time.Date(2026, 4, 1, 9, 0, 0, 0, saoPaulo)
		svc.On("Reconcile", mock.Anything, mock.MatchedBy(func(upd model.ShipmentTrackingUpdate) bool {
			return len(upd.Events) == 1 && upd.Events[0].OccurredAt.Equal(want)
		})).Return(&model.TrackingUpdateResult{Success: true, Errors: []string{}}, nil)

		ctx := setupAuthedContext("POST", "/tracking-updates/shipment", trackingBody(t, "2026-04-01 09:00:00"))
		handler.UpdateShipmentTracking(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())
		svc.AssertExpectations(t)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		svc := new(MockTrackingService)
		handler := NewTrackingHandler(svc, testAPIKey, saoPaulo)

		ctx := setupAuthedContext("POST", "/tracking-updates/shipment", []byte("not json"))
		handler.UpdateShipmentTracking(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
	})

	t.Run("unparseable occurred_at", func(t *testing.T) {
		svc := new(MockTrackingService)
		handler := NewTrackingHandler(svc, testAPIKey, saoPaulo)

		ctx := setupAuthedContext("POST", "/tracking-updates/shipment", trackingBody(t, "amanhã de manhã"))
		handler.UpdateShipmentTracking(ctx)

		assert.Equal(t, 422, ctx.Response.StatusCode())
		svc.AssertNotCalled(t, "Reconcile")
	})

	t.Run("invalid identity maps to 422", func(t *testing.T) {
		svc := new(MockTrackingService)
		handler := NewTrackingHandler(svc, testAPIKey, saoPaulo)

		svc.On("Reconcile", mock.Anything, mock.Anything).Return(nil, model.ErrInvalidIdentity)

		body, _ := json.Marshal(trackingUpdateRequest{InvoiceNumber: "NF-1"})
		ctx := setupAuthedContext("POST", "/tracking-updates/shipment", body)
		handler.UpdateShipmentTracking(ctx)

		assert.Equal(t, 422, ctx.Response.StatusCode())
	})
}

func TestTrackingHandler_Bulk(t *testing.T) {
	svc := new(MockTrackingService)
	handler := NewTrackingHandler(svc, testAPIKey, time.UTC)

	svc.On("ReconcileBulk", mock.Anything, mock.MatchedBy(func(bulk model.BulkTrackingUpdate) bool {
		return len(bulk.Shipments) == 2
	})).Return(&model.BulkTrackingResult{TotalProcessed: 2, Successful: 2})

	body, err := json.Marshal(bulkTrackingUpdateRequest{
		Shipments: []trackingUpdateRequest{
			{TrackingCode: ptrTo("SSW00100")},
			{TrackingCode: ptrTo("SSW00101")},
		},
	})
	require.NoError(t, err)

	ctx := setupAuthedContext("POST", "/tracking-updates/bulk", body)
	handler.UpdateShipmentTrackingBulk(ctx)

	assert.Equal(t, 200, ctx.Response.StatusCode())

	var result model.BulkTrackingResult
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &result))
	assert.Equal(t, 2, result.TotalProcessed)
	svc.AssertExpectations(t)
}

func TestTrackingHandler_ListPendingShipments(t *testing.T) {
	svc := new(MockTrackingService)
	handler := NewTrackingHandler(svc, testAPIKey, time.UTC)

	svc.On("PendingShipments", mock.Anything, 25).Return([]*model.PendingShipment{
		{InvoiceNumber: "NF-1", Document: "00000000000191", Carrier: "SSW", Status: "in_transit"},
	}, nil)

	ctx := setupAuthedContext("GET", "/tracking-updates/pending-shipments?limit=25", nil)
	handler.ListPendingShipments(ctx)

	assert.Equal(t, 200, ctx.Response.StatusCode())

	var shipments []*model.PendingShipment
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &shipments))
	require.Len(t, shipments, 1)
	assert.Equal(t, "NF-1", shipments[0].InvoiceNumber)
	svc.AssertExpectations(t)
}

func TestTrackingHandler_ListOccurrenceCodes(t *testing.T) {
	svc := new(MockTrackingService)
	handler := NewTrackingHandler(svc, testAPIKey, time.UTC)

	svc.On("OccurrenceCodes", mock.Anything).Return([]*model.OccurrenceCode{
		{Code: "1", Description: "mercadoria entregue", Type: "entrega", Process: "entrega"},
	}, nil)

	ctx := setupAuthedContext("GET", "/tracking-updates/occurrence-codes", nil)
	handler.ListOccurrenceCodes(ctx)

	assert.Equal(t, 200, ctx.Response.StatusCode())

	var codes []*model.OccurrenceCode
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &codes))
	require.Len(t, codes, 1)
	assert.Equal(t, "1", codes[0].Code)
}
