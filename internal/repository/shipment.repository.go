package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rastreioapp/tracking-gateway/internal/model"
	"github.com/rastreioapp/tracking-gateway/pkg/pg"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a shipment does not exist.
	ErrNotFound = errors.New("shipment not found")
	// ErrDuplicateTrackingCode is returned when a non-deleted shipment
	// already uses the tracking code.
	ErrDuplicateTrackingCode = errors.New("tracking code already in use")
)

type ShipmentRepository struct {
	*pg.DB
}

func NewShipmentRepository(db *pg.DB) *ShipmentRepository {
	return &ShipmentRepository{db}
}

func notDeleted(q *gorm.DB) *gorm.DB {
	return q.Where("deleted_at IS NULL")
}

func (r *ShipmentRepository) Create(ctx context.Context, m *model.Shipment) (*model.Shipment, error) {
	entity := toShipmentEntity(m)
	if entity.ID == uuid.Nil {
		entity.ID = uuid.New()
	}
	if entity.Status == "" {
		entity.Status = string(model.StatusPending)
	}

	if entity.TrackingCode != nil && *entity.TrackingCode != "" {
		var n int64
		err := notDeleted(r.Write(ctx).Model(&ShipmentEntity{})).
			Where("tracking_code = ?", *entity.TrackingCode).Count(&n).Error
		if err != nil {
			return nil, err
		}
		if n > 0 {
			return nil, ErrDuplicateTrackingCode
		}
	}

	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, err
	}
	return toShipmentModel(entity), nil
}

func (r *ShipmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Shipment, error) {
	var entity ShipmentEntity
	err := notDeleted(r.Read(ctx)).Where("id = ?", id).First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toShipmentModel(&entity), nil
}

func (r *ShipmentRepository) GetByTrackingCode(ctx context.Context, trackingCode string) (*model.Shipment, error) {
	var entity ShipmentEntity
	err := notDeleted(r.Read(ctx)).Where("tracking_code = ?", trackingCode).First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toShipmentModel(&entity), nil
}

// FindByIdentity resolves a shipment by tracking code first, falling back to
// the (invoice_number, document) pair. The fallback matters for invoice-first
// shipments that have not learned their tracking code yet. Deleted shipments
// never resolve. Writes-see-own-reads inside a transaction, hence Write.
func (r *ShipmentRepository) FindByIdentity(ctx context.Context, trackingCode *string, invoiceNumber, document string) (*model.Shipment, error) {
	if trackingCode != nil && *trackingCode != "" {
		var entity ShipmentEntity
		err := notDeleted(r.Write(ctx)).Where("tracking_code = ?", *trackingCode).First(&entity).Error
		if err == nil {
			return toShipmentModel(&entity), nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	if invoiceNumber == "" || document == "" {
		return nil, ErrNotFound
	}

	q := notDeleted(r.Write(ctx)).Where("invoice_number = ? AND document = ?", invoiceNumber, document)
	if trackingCode != nil && *trackingCode != "" {
		// A shipment that already carries a different tracking code is a
		// different physical shipment under the same invoice.
		q = q.Where("tracking_code IS NULL")
	}

	var entity ShipmentEntity
	err := q.First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toShipmentModel(&entity), nil
}

func (r *ShipmentRepository) List(ctx context.Context, f model.ShipmentFilter) ([]*model.Shipment, error) {
	q := r.applyFilter(notDeleted(r.Read(ctx).Model(&ShipmentEntity{})), f)

	order := "created_at"
	if f.Desc {
		order += " DESC"
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	var entities []*ShipmentEntity
	if err := q.Order(order).Limit(limit).Offset(offset).Find(&entities).Error; err != nil {
		return nil, err
	}
	return toShipmentModels(entities), nil
}

func (r *ShipmentRepository) Count(ctx context.Context, f model.ShipmentFilter) (int64, error) {
	var total int64
	q := r.applyFilter(notDeleted(r.Read(ctx).Model(&ShipmentEntity{})), f)
	if err := q.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *ShipmentRepository) applyFilter(q *gorm.DB, f model.ShipmentFilter) *gorm.DB {
	if f.Search != nil && *f.Search != "" {
		like := "%" + *f.Search + "%"
		q = q.Where("tracking_code LIKE ? OR description LIKE ?", like, like)
	}
	if f.Status != nil && *f.Status != "" {
		q = q.Where("status = ?", *f.Status)
	}
	if f.Carrier != nil && *f.Carrier != "" {
		q = q.Where("carrier LIKE ?", "%"+*f.Carrier+"%")
	}
	if f.Document != nil && *f.Document != "" {
		q = q.Where("document = ?", *f.Document)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at < ?", *f.To)
	}
	return q
}

func (r *ShipmentRepository) Stats(ctx context.Context) (*model.ShipmentStats, error) {
	stats := &model.ShipmentStats{}

	type bucket struct {
		name     *int64
		statuses []string
	}
	buckets := []bucket{
		{&stats.InTransit, []string{string(model.StatusInTransit), string(model.StatusPending), string(model.StatusPosted)}},
		{&stats.Delivered, []string{string(model.StatusDelivered)}},
		{&stats.Delayed, []string{string(model.StatusDelayed)}},
		{&stats.Cancelled, []string{string(model.StatusCancelled), string(model.StatusReturned)}},
	}

	if err := notDeleted(r.Read(ctx).Model(&ShipmentEntity{})).Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	for _, b := range buckets {
		if err := notDeleted(r.Read(ctx).Model(&ShipmentEntity{})).
			Where("status IN ?", b.statuses).Count(b.name).Error; err != nil {
			return nil, err
		}
	}
	return stats, nil
}

// ListPending returns non-delivered shipments for the poll-based sync job.
func (r *ShipmentRepository) ListPending(ctx context.Context, limit int) ([]*model.PendingShipment, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var entities []*ShipmentEntity
	err := notDeleted(r.Read(ctx).Model(&ShipmentEntity{})).
		Where("status <> ?", string(model.StatusDelivered)).
		Limit(limit).
		Find(&entities).Error
	if err != nil {
		return nil, err
	}

	out := make([]*model.PendingShipment, len(entities))
	for i, e := range entities {
		out[i] = &model.PendingShipment{
			ID:            e.ID,
			TrackingCode:  e.TrackingCode,
			InvoiceNumber: e.InvoiceNumber,
			Document:      e.Document,
			Carrier:       e.Carrier,
			Status:        e.Status,
		}
	}
	return out, nil
}

// Update applies the non-nil fields of the update command. The column list is
// fixed here; nothing outside it is writable.
func (r *ShipmentRepository) Update(ctx context.Context, id uuid.UUID, u model.ShipmentUpdate) (*model.Shipment, error) {
	cols := map[string]any{}
	if u.TrackingCode != nil {
		var n int64
		err := notDeleted(r.Write(ctx).Model(&ShipmentEntity{})).
			Where("tracking_code = ? AND id <> ?", *u.TrackingCode, id).Count(&n).Error
		if err != nil {
			return nil, err
		}
		if n > 0 {
			return nil, ErrDuplicateTrackingCode
		}
		cols["tracking_code"] = *u.TrackingCode
	}
	if u.Carrier != nil {
		cols["carrier"] = *u.Carrier
	}
	if u.Status != nil {
		cols["status"] = *u.Status
	}
	if u.OriginCity != nil {
		cols["origin_city"] = *u.OriginCity
	}
	if u.OriginState != nil {
		cols["origin_state"] = *u.OriginState
	}
	if u.DestinationCity != nil {
		cols["destination_city"] = *u.DestinationCity
	}
	if u.DestinationState != nil {
		cols["destination_state"] = *u.DestinationState
	}
	if u.WeightKg != nil {
		cols["weight_kg"] = *u.WeightKg
	}
	if u.FreightCost != nil {
		cols["freight_cost"] = *u.FreightCost
	}
	if u.DeclaredValue != nil {
		cols["declared_value"] = *u.DeclaredValue
	}
	if u.Description != nil {
		cols["description"] = *u.Description
	}
	if u.EstimatedDeliveryDate != nil {
		cols["estimated_delivery_date"] = *u.EstimatedDeliveryDate
	}
	if u.ActualDeliveryDate != nil {
		cols["actual_delivery_date"] = *u.ActualDeliveryDate
	}

	if len(cols) > 0 {
		cols["updated_at"] = time.Now().UTC()
		res := notDeleted(r.Write(ctx).Model(&ShipmentEntity{})).Where("id = ?", id).Updates(cols)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}
	return r.GetByID(ctx, id)
}

// SetTrackingCode backfills the tracking code on an invoice-first shipment.
func (r *ShipmentRepository) SetTrackingCode(ctx context.Context, id uuid.UUID, trackingCode string) error {
	res := notDeleted(r.Write(ctx).Model(&ShipmentEntity{})).Where("id = ?", id).
		Updates(map[string]any{"tracking_code": trackingCode, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ShipmentRepository) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	res := notDeleted(r.Write(ctx).Model(&ShipmentEntity{})).Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SoftDelete hides the shipment from every lookup. Rows are never hard-deleted
// by normal flows.
func (r *ShipmentRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	now := time.Now().UTC()
	res := notDeleted(r.Write(ctx).Model(&ShipmentEntity{})).Where("id = ?", id).
		Updates(map[string]any{"deleted_at": now, "updated_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// FindEvent looks up an event by its dedup identity
// (shipment_id, occurred_at, status).
func (r *ShipmentRepository) FindEvent(ctx context.Context, shipmentID uuid.UUID, occurredAt time.Time, status string) (*model.TrackingEvent, error) {
	var entity TrackingEventEntity
	err := r.Write(ctx).
		Where("shipment_id = ? AND occurred_at = ? AND status = ?", shipmentID, occurredAt, status).
		First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toTrackingEventModel(&entity), nil
}

func (r *ShipmentRepository) CreateEvent(ctx context.Context, m *model.TrackingEvent) (*model.TrackingEvent, error) {
	entity := toTrackingEventEntity(m)
	if entity.ID == uuid.Nil {
		entity.ID = uuid.New()
	}
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, err
	}
	return toTrackingEventModel(entity), nil
}

// UpdateEvent overwrites the mutable payload of an existing event in place.
// Identity fields (shipment, occurred_at, status) are never touched.
func (r *ShipmentRepository) UpdateEvent(ctx context.Context, id uuid.UUID, m *model.TrackingEvent) (*model.TrackingEvent, error) {
	cols := map[string]any{
		"description":     m.Description,
		"location":        m.Location,
		"occurrence_code": m.OccurrenceCode,
		"unit":            m.Unit,
		"protocol":        m.Protocol,
	}
	if m.CarrierRawData != nil {
		cols["carrier_raw_data"] = m.CarrierRawData
	}

	res := r.Write(ctx).Model(&TrackingEventEntity{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	var entity TrackingEventEntity
	if err := r.Write(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		return nil, err
	}
	return toTrackingEventModel(&entity), nil
}

func (r *ShipmentRepository) ListEvents(ctx context.Context, shipmentID uuid.UUID) ([]*model.TrackingEvent, error) {
	var entities []*TrackingEventEntity
	err := r.Read(ctx).
		Where("shipment_id = ?", shipmentID).
		Order("occurred_at DESC").
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	return toTrackingEventModels(entities), nil
}

func (r *ShipmentRepository) CountEvents(ctx context.Context, shipmentID uuid.UUID) (int64, error) {
	var total int64
	err := r.Read(ctx).Model(&TrackingEventEntity{}).
		Where("shipment_id = ?", shipmentID).Count(&total).Error
	return total, err
}
