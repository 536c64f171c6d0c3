package helpers

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/rastreioapp/tracking-gateway/internal/repository"
	"github.com/rastreioapp/tracking-gateway/pkg/pg"
	"github.com/rastreioapp/tracking-gateway/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func SetupTestDB(t *testing.T) *pg.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&repository.ShipmentEntity{},
		&repository.TrackingEventEntity{},
		&repository.OccurrenceCodeEntity{},
		&repository.CarrierEntity{},
	)
	require.NoError(t, err)

	pgDB := &pg.DB{}
	pgDBValue := reflect.ValueOf(pgDB).Elem()

	readField := pgDBValue.FieldByName("read")
	writeField := pgDBValue.FieldByName("write")

	readField = reflect.NewAt(readField.Type(), readField.Addr().UnsafePointer()).Elem()
	writeField = reflect.NewAt(writeField.Type(), writeField.Addr().UnsafePointer()).Elem()

	readField.Set(reflect.ValueOf(db))
	writeField.Set(reflect.ValueOf(db))

	return pgDB
}

func SetupTestRedis(t *testing.T) (*miniredis.Miniredis, redis.RedisAdapter) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	// NewRedisAdapter caches connections by name, so each test gets its own.
	adapter, err := redis.NewRedisAdapter("test-"+uuid.NewString(), "", &goredis.UniversalOptions{
		Addrs: []string{mr.Addr()},
	})
	require.NoError(t, err)

	return mr, adapter
}

func Ptr[T any](v T) *T {
	return &v
}

func CreateTestShipment(t *testing.T, db *pg.DB, trackingCode *string, invoice, document, status string) *repository.ShipmentEntity {
	ctx := context.Background()
	shipment := &repository.ShipmentEntity{
		ID:            uuid.New(),
		TrackingCode:  trackingCode,
		InvoiceNumber: invoice,
		Document:      document,
		Carrier:       "SSW",
		Status:        status,
	}
	err := db.Write(ctx).Create(shipment).Error
	require.NoError(t, err)
	return shipment
}

func CreateTestTrackingEvent(t *testing.T, db *pg.DB, shipmentID uuid.UUID, status string, occurredAt time.Time) *repository.TrackingEventEntity {
	ctx := context.Background()
	event := &repository.TrackingEventEntity{
		ID:         uuid.New(),
		ShipmentID: shipmentID,
		Status:     status,
		OccurredAt: occurredAt,
	}
	err := db.Write(ctx).Create(event).Error
	require.NoError(t, err)
	return event
}

func CreateTestOccurrenceCode(t *testing.T, db *pg.DB, code, description, typ, process string) *repository.OccurrenceCodeEntity {
	ctx := context.Background()
	oc := &repository.OccurrenceCodeEntity{
		Code:        code,
		Description: description,
		Type:        typ,
		Process:     process,
	}
	err := db.Write(ctx).Create(oc).Error
	require.NoError(t, err)
	return oc
}

func WaitForCondition(t *testing.T, timeout time.Duration, condition func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func AssertEventually(t *testing.T, timeout time.Duration, condition func() bool, msg string) {
	if !WaitForCondition(t, timeout, condition) {
		t.Fatal(msg)
	}
}

func ContextWithTimeout(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}
