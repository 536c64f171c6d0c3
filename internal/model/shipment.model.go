package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Shipment struct {
	ID            uuid.UUID `json:"id"             db:"id"`
	TrackingCode  *string   `json:"tracking_code"  db:"tracking_code"`
	InvoiceNumber string    `json:"invoice_number" db:"invoice_number"`
	Document      string    `json:"document"       db:"document"` // CPF/CNPJ of the recipient
	Carrier       string    `json:"carrier"        db:"carrier"`
	Status        string    `json:"status"         db:"status"`

	OriginCity       *string `json:"origin_city,omitempty"`
	OriginState      *string `json:"origin_state,omitempty"`
	DestinationCity  *string `json:"destination_city,omitempty"`
	DestinationState *string `json:"destination_state,omitempty"`

	WeightKg      *float64 `json:"weight_kg,omitempty"`
	FreightCost   *float64 `json:"freight_cost,omitempty"`
	DeclaredValue *float64 `json:"declared_value,omitempty"`
	Description   *string  `json:"description,omitempty"`

	EstimatedDeliveryDate *time.Time `json:"estimated_delivery_date,omitempty"`
	ActualDeliveryDate    *time.Time `json:"actual_delivery_date,omitempty"`

	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"-"          db:"deleted_at"`

	Events []*TrackingEvent `json:"tracking_events,omitempty"`
}

type TrackingEvent struct {
	ID             uuid.UUID `json:"id"`
	ShipmentID     uuid.UUID `json:"shipment_id"`
	Status         string    `json:"status"`
	Description    *string   `json:"description,omitempty"`
	Location       *string   `json:"location,omitempty"`
	OccurrenceCode *string   `json:"occurrence_code,omitempty"`
	Unit           *string   `json:"unit,omitempty"`
	Protocol       *string   `json:"protocol,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
	CarrierRawData *string   `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

// ShipmentCreateRequest is the input for the management API.
type ShipmentCreateRequest struct {
	TrackingCode          *string    `json:"tracking_code"`
	InvoiceNumber         string     `json:"invoice_number"`
	Document              string     `json:"document"`
	Carrier               string     `json:"carrier"`
	Status                string     `json:"status"`
	OriginCity            *string    `json:"origin_city"`
	OriginState           *string    `json:"origin_state"`
	DestinationCity       *string    `json:"destination_city"`
	DestinationState      *string    `json:"destination_state"`
	WeightKg              *float64   `json:"weight_kg"`
	FreightCost           *float64   `json:"freight_cost"`
	DeclaredValue         *float64   `json:"declared_value"`
	Description           *string    `json:"description"`
	EstimatedDeliveryDate *time.Time `json:"estimated_delivery_date"`
}

func (p ShipmentCreateRequest) Validate() error {
	if p.InvoiceNumber == "" {
		return errors.New("invoice_number is required")
	}
	if p.Document == "" {
		return errors.New("document is required")
	}
	if p.TrackingCode != nil && *p.TrackingCode == "" {
		return errors.New("tracking_code must not be empty when present")
	}
	return nil
}

// ShipmentUpdate is an explicit update command: only non-nil fields are
// applied. Fields outside this struct are not writable through the API.
type ShipmentUpdate struct {
	TrackingCode          *string    `json:"tracking_code"`
	Carrier               *string    `json:"carrier"`
	Status                *string    `json:"status"`
	OriginCity            *string    `json:"origin_city"`
	OriginState           *string    `json:"origin_state"`
	DestinationCity       *string    `json:"destination_city"`
	DestinationState      *string    `json:"destination_state"`
	WeightKg              *float64   `json:"weight_kg"`
	FreightCost           *float64   `json:"freight_cost"`
	DeclaredValue         *float64   `json:"declared_value"`
	Description           *string    `json:"description"`
	EstimatedDeliveryDate *time.Time `json:"estimated_delivery_date"`
	ActualDeliveryDate    *time.Time `json:"actual_delivery_date"`
}

func (u ShipmentUpdate) Empty() bool {
	return u.TrackingCode == nil && u.Carrier == nil && u.Status == nil &&
		u.OriginCity == nil && u.OriginState == nil &&
		u.DestinationCity == nil && u.DestinationState == nil &&
		u.WeightKg == nil && u.FreightCost == nil && u.DeclaredValue == nil &&
		u.Description == nil && u.EstimatedDeliveryDate == nil && u.ActualDeliveryDate == nil
}

// TrackingEventCreateRequest is a manually added event (management API).
type TrackingEventCreateRequest struct {
	Status         string    `json:"status"`
	Description    *string   `json:"description"`
	Location       *string   `json:"location"`
	OccurrenceCode *string   `json:"occurrence_code"`
	Unit           *string   `json:"unit"`
	Protocol       *string   `json:"protocol"`
	OccurredAt     time.Time `json:"occurred_at"`
}

func (p TrackingEventCreateRequest) Validate() error {
	if p.Status == "" {
		return errors.New("status is required")
	}
	if p.OccurredAt.IsZero() {
		return errors.New("occurred_at is required")
	}
	return nil
}

// ShipmentFilter controls List/Count queries.
type ShipmentFilter struct {
	Search   *string // matches tracking_code or description, ILIKE
	Status   *string
	Carrier  *string
	Document *string
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
	Desc     bool
}

// ShipmentStats is the dashboard aggregate.
type ShipmentStats struct {
	Total     int64 `json:"total_shipments"`
	InTransit int64 `json:"in_transit"`
	Delivered int64 `json:"delivered"`
	Delayed   int64 `json:"delayed"`
	Cancelled int64 `json:"cancelled"`
}

// PendingShipment is the slim projection served to the sync cronjob.
type PendingShipment struct {
	ID            uuid.UUID `json:"id"`
	TrackingCode  *string   `json:"tracking_code"`
	InvoiceNumber string    `json:"invoice_number"`
	Document      string    `json:"document"`
	Carrier       string    `json:"carrier"`
	Status        string    `json:"status"`
}
