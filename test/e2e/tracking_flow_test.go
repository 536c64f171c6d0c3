package e2e

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rastreioapp/tracking-gateway/internal/model"
	"github.com/rastreioapp/tracking-gateway/internal/repository"
	"github.com/rastreioapp/tracking-gateway/internal/services"
	"github.com/rastreioapp/tracking-gateway/pkg/pg"
	"github.com/rastreioapp/tracking-gateway/pkg/redis"
	"github.com/rastreioapp/tracking-gateway/test/fixtures"
	"github.com/rastreioapp/tracking-gateway/test/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type TestEnvironment struct {
	DB              *pg.DB
	Redis           *miniredis.Miniredis
	RedisAdapter    redis.RedisAdapter
	ShipmentRepo    *repository.ShipmentRepository
	OccurrenceRepo  *repository.OccurrenceCodeRepository
	CarrierRepo     *repository.CarrierRepository
	TrackingService *services.TrackingService
	ShipmentService *services.ShipmentService
}

func setupE2EEnvironment(t *testing.T) *TestEnvironment {
	db := helpers.SetupTestDB(t)
	mr, redisAdapter := helpers.SetupTestRedis(t)

	shipmentRepo := repository.NewShipmentRepository(db)
	occurrenceRepo := repository.NewOccurrenceCodeRepository(db)
	carrierRepo := repository.NewCarrierRepository(db)

	trackingService := services.NewTrackingService(shipmentRepo, occurrenceRepo, redisAdapter)
	shipmentService := services.NewShipmentService(shipmentRepo)

	require.NoError(t, trackingService.SeedOccurrenceCodes(context.Background()))

	return &TestEnvironment{
		DB:              db,
		Redis:           mr,
		RedisAdapter:    redisAdapter,
		ShipmentRepo:    shipmentRepo,
		OccurrenceRepo:  occurrenceRepo,
		CarrierRepo:     carrierRepo,
		TrackingService: trackingService,
		ShipmentService: shipmentService,
	}
}

func (env *TestEnvironment) Cleanup() {
	if env.Redis != nil {
		env.Redis.Close()
	}
}

func TestE2E_ScraperUpdateCreatesTrackableShipment(t *testing.T) {
	env := setupE2EEnvironment(t)
	defer env.Cleanup()

	ctx := context.Background()

	occurredAt := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	upd := fixtures.NewTrackingUpdate(helpers.Ptr("SSW00200"), "NF-200", "00000000000191",
		fixtures.NewTrackingEvent("EM TRÂNSITO", helpers.Ptr(fixtures.TransitCode.Code), occurredAt),
		fixtures.NewTrackingEvent("SAIU PARA ENTREGA", nil, occurredAt.Add(4*time.Hour)),
	)
	upd.CurrentStatus = helpers.Ptr("SAIU PARA ENTREGA AO DESTINATARIO")

	res, err := env.TrackingService.Reconcile(ctx, upd)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 2, res.EventsCreated)

	shipment, err := env.ShipmentService.GetByTrackingCode(ctx, "SSW00200")
	require.NoError(t, err)
	assert.Equal(t, "out_for_delivery", shipment.Status)
	require.Len(t, shipment.Events, 2)
	// Newest first, normalized statuses.
	assert.Equal(t, "out_for_delivery", shipment.Events[0].Status)
	assert.Equal(t, "in_transit", shipment.Events[1].Status)
}

func TestE2E_InvoiceFirstShipmentGainsTrackingCode(t *testing.T) {
	env := setupE2EEnvironment(t)
	defer env.Cleanup()

	ctx := context.Background()

	created, err := env.ShipmentService.Create(ctx, fixtures.NewShipmentCreateRequest(nil, "NF-201", "00000000000191"))
	require.NoError(t, err)
	assert.Nil(t, created.TrackingCode)
	assert.Equal(t, string(model.StatusPending), created.Status)

	upd := fixtures.NewTrackingUpdate(helpers.Ptr("SSW00201"), "NF-201", "00000000000191",
		fixtures.NewTrackingEvent("Objeto postado", nil, time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)),
	)
	upd.CurrentStatus = helpers.Ptr("Postado")
	res, err := env.TrackingService.Reconcile(ctx, upd)
	require.NoError(t, err)
	assert.Equal(t, created.ID.String(), res.ShipmentID)

	shipment, err := env.ShipmentService.Get(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, shipment.TrackingCode)
	assert.Equal(t, "SSW00201", *shipment.TrackingCode)
	assert.Equal(t, string(model.StatusPosted), shipment.Status)
}

func TestE2E_FinalizationRemovesShipmentFromSyncQueue(t *testing.T) {
	env := setupE2EEnvironment(t)
	defer env.Cleanup()

	ctx := context.Background()

	upd := fixtures.NewTrackingUpdate(helpers.Ptr("SSW00202"), "NF-202", "00000000000191",
		fixtures.NewTrackingEvent("EM TRANSITO", nil, time.Date(2026, 4, 3, 8, 0, 0, 0, time.UTC)),
	)
	_, err := env.TrackingService.Reconcile(ctx, upd)
	require.NoError(t, err)

	pending, err := env.TrackingService.PendingShipments(ctx, 100)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	// The write-off code with a non-finalizing process must not close it.
	upd = fixtures.NewTrackingUpdate(helpers.Ptr("SSW00202"), "NF-202", "00000000000191",
		fixtures.NewTrackingEvent("CTRC BAIXADO", helpers.Ptr(fixtures.WriteOffCode.Code), time.Date(2026, 4, 3, 12, 0, 0, 0, time.UTC)),
	)
	_, err = env.TrackingService.Reconcile(ctx, upd)
	require.NoError(t, err)

	pending, err = env.TrackingService.PendingShipments(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	upd = fixtures.NewTrackingUpdate(helpers.Ptr("SSW00202"), "NF-202", "00000000000191",
		fixtures.NewTrackingEvent("MERCADORIA ENTREGUE", helpers.Ptr(fixtures.FinalizationCode.Code), time.Date(2026, 4, 3, 16, 0, 0, 0, time.UTC)),
	)
	_, err = env.TrackingService.Reconcile(ctx, upd)
	require.NoError(t, err)

	shipment, err := env.ShipmentService.GetByTrackingCode(ctx, "SSW00202")
	require.NoError(t, err)
	assert.Equal(t, string(model.StatusDelivered), shipment.Status)

	pending, err = env.TrackingService.PendingShipments(ctx, 100)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestE2E_ResubmittedBatchIsIdempotent(t *testing.T) {
	env := setupE2EEnvironment(t)
	defer env.Cleanup()

	ctx := context.Background()

	bulk := model.BulkTrackingUpdate{Shipments: []model.ShipmentTrackingUpdate{
		fixtures.NewTrackingUpdate(helpers.Ptr("SSW00203"), "NF-203", "00000000000191",
			fixtures.NewTrackingEvent("Postado", nil, time.Date(2026, 4, 4, 9, 0, 0, 0, time.UTC)),
		),
		fixtures.NewTrackingUpdate(helpers.Ptr("SSW00204"), "NF-204", "00000000000191",
			fixtures.NewTrackingEvent("Entregue", helpers.Ptr(fixtures.FinalizationCode.Code), time.Date(2026, 4, 4, 11, 0, 0, 0, time.UTC)),
		),
	}}

	res := env.TrackingService.ReconcileBulk(ctx, bulk)
	assert.Equal(t, 2, res.TotalProcessed)
	assert.Equal(t, 2, res.Successful)

	// A scraper retry replays the same batch.
	res = env.TrackingService.ReconcileBulk(ctx, bulk)
	assert.Equal(t, 2, res.Successful)
	for _, r := range res.Results {
		assert.Zero(t, r.EventsCreated)
		assert.Equal(t, 1, r.EventsUpdated)
	}

	count, err := env.ShipmentService.Count(ctx, model.ShipmentFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestE2E_SoftDeletedShipmentIsUnreachable(t *testing.T) {
	env := setupE2EEnvironment(t)
	defer env.Cleanup()

	ctx := context.Background()

	created, err := env.ShipmentService.Create(ctx, fixtures.NewShipmentCreateRequest(helpers.Ptr("SSW00205"), "NF-205", "00000000000191"))
	require.NoError(t, err)

	require.NoError(t, env.ShipmentService.Delete(ctx, created.ID))

	_, err = env.ShipmentService.Get(ctx, created.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = env.ShipmentService.GetByTrackingCode(ctx, "SSW00205")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	// The code is free again for a replacement shipment.
	replacement, err := env.ShipmentService.Create(ctx, fixtures.NewShipmentCreateRequest(helpers.Ptr("SSW00205"), "NF-205", "00000000000191"))
	require.NoError(t, err)
	assert.NotEqual(t, created.ID, replacement.ID)
}
