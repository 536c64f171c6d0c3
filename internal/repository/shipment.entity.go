package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/rastreioapp/tracking-gateway/internal/model"
)

type ShipmentEntity struct {
	ID            uuid.UUID `gorm:"primaryKey;type:uuid;column:id"`
	TrackingCode  *string   `gorm:"column:tracking_code;size:100;index"`
	InvoiceNumber string    `gorm:"column:invoice_number;size:100;not null;index:ix_shipments_document_invoice,priority:2"`
	Document      string    `gorm:"column:document;size:50;not null;index:ix_shipments_document_invoice,priority:1"`
	Carrier       string    `gorm:"column:carrier;size:50;not null;index"`
	Status        string    `gorm:"column:status;size:50;not null;default:pending;index"`

	OriginCity       *string `gorm:"column:origin_city;size:100"`
	OriginState      *string `gorm:"column:origin_state;size:50"`
	DestinationCity  *string `gorm:"column:destination_city;size:100"`
	DestinationState *string `gorm:"column:destination_state;size:50"`

	WeightKg      *float64 `gorm:"column:weight_kg"`
	FreightCost   *float64 `gorm:"column:freight_cost"`
	DeclaredValue *float64 `gorm:"column:declared_value"`
	Description   *string  `gorm:"column:description;type:text"`

	EstimatedDeliveryDate *time.Time `gorm:"column:estimated_delivery_date"`
	ActualDeliveryDate    *time.Time `gorm:"column:actual_delivery_date"`

	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt *time.Time `gorm:"column:deleted_at;index"`

	Events []*TrackingEventEntity `gorm:"foreignKey:ShipmentID;constraint:OnDelete:CASCADE"`
}

func (ShipmentEntity) TableName() string { return "shipments" }

type TrackingEventEntity struct {
	ID             uuid.UUID `gorm:"primaryKey;type:uuid;column:id"`
	ShipmentID     uuid.UUID `gorm:"column:shipment_id;type:uuid;not null;index"`
	Status         string    `gorm:"column:status;size:50;not null"`
	Description    *string   `gorm:"column:description;type:text"`
	Location       *string   `gorm:"column:location;size:255"`
	OccurrenceCode *string   `gorm:"column:occurrence_code;size:10;index"`
	Unit           *string   `gorm:"column:unit;size:100"`
	Protocol       *string   `gorm:"column:protocol;size:100"`
	OccurredAt     time.Time `gorm:"column:occurred_at;not null;index"`
	CarrierRawData *string   `gorm:"column:carrier_raw_data;type:text"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (TrackingEventEntity) TableName() string { return "shipment_tracking_events" }

func toShipmentEntity(m *model.Shipment) *ShipmentEntity {
	if m == nil {
		return nil
	}
	return &ShipmentEntity{
		ID:                    m.ID,
		TrackingCode:          m.TrackingCode,
		InvoiceNumber:         m.InvoiceNumber,
		Document:              m.Document,
		Carrier:               m.Carrier,
		Status:                m.Status,
		OriginCity:            m.OriginCity,
		OriginState:           m.OriginState,
		DestinationCity:       m.DestinationCity,
		DestinationState:      m.DestinationState,
		WeightKg:              m.WeightKg,
		FreightCost:           m.FreightCost,
		DeclaredValue:         m.DeclaredValue,
		Description:           m.Description,
		EstimatedDeliveryDate: m.EstimatedDeliveryDate,
		ActualDeliveryDate:    m.ActualDeliveryDate,
		CreatedAt:             m.CreatedAt,
		UpdatedAt:             m.UpdatedAt,
		DeletedAt:             m.DeletedAt,
	}
}

func toShipmentModel(e *ShipmentEntity) *model.Shipment {
	if e == nil {
		return nil
	}
	m := &model.Shipment{
		ID:                    e.ID,
		TrackingCode:          e.TrackingCode,
		InvoiceNumber:         e.InvoiceNumber,
		Document:              e.Document,
		Carrier:               e.Carrier,
		Status:                e.Status,
		OriginCity:            e.OriginCity,
		OriginState:           e.OriginState,
		DestinationCity:       e.DestinationCity,
		DestinationState:      e.DestinationState,
		WeightKg:              e.WeightKg,
		FreightCost:           e.FreightCost,
		DeclaredValue:         e.DeclaredValue,
		Description:           e.Description,
		EstimatedDeliveryDate: e.EstimatedDeliveryDate,
		ActualDeliveryDate:    e.ActualDeliveryDate,
		CreatedAt:             e.CreatedAt,
		UpdatedAt:             e.UpdatedAt,
		DeletedAt:             e.DeletedAt,
	}
	if e.Events != nil {
		m.Events = toTrackingEventModels(e.Events)
	}
	return m
}

func toShipmentModels(entities []*ShipmentEntity) []*model.Shipment {
	if entities == nil {
		return nil
	}
	out := make([]*model.Shipment, len(entities))
	for i, e := range entities {
		out[i] = toShipmentModel(e)
	}
	return out
}

func toTrackingEventEntity(m *model.TrackingEvent) *TrackingEventEntity {
	if m == nil {
		return nil
	}
	return &TrackingEventEntity{
		ID:             m.ID,
		ShipmentID:     m.ShipmentID,
		Status:         m.Status,
		Description:    m.Description,
		Location:       m.Location,
		OccurrenceCode: m.OccurrenceCode,
		Unit:           m.Unit,
		Protocol:       m.Protocol,
		OccurredAt:     m.OccurredAt,
		CarrierRawData: m.CarrierRawData,
		CreatedAt:      m.CreatedAt,
	}
}

func toTrackingEventModel(e *TrackingEventEntity) *model.TrackingEvent {
	if e == nil {
		return nil
	}
	return &model.TrackingEvent{
		ID:             e.ID,
		ShipmentID:     e.ShipmentID,
		Status:         e.Status,
		Description:    e.Description,
		Location:       e.Location,
		OccurrenceCode: e.OccurrenceCode,
		Unit:           e.Unit,
		Protocol:       e.Protocol,
		OccurredAt:     e.OccurredAt,
		CarrierRawData: e.CarrierRawData,
		CreatedAt:      e.CreatedAt,
	}
}

func toTrackingEventModels(entities []*TrackingEventEntity) []*model.TrackingEvent {
	if entities == nil {
		return nil
	}
	out := make([]*model.TrackingEvent, len(entities))
	for i, e := range entities {
		out[i] = toTrackingEventModel(e)
	}
	return out
}
