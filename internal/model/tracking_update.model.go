package model

import (
	"errors"
	"time"
)

// DefaultCarrier is assumed when an ingestion payload omits the carrier.
const DefaultCarrier = "SSW"

// TrackingEventData is a single scraped/ingested event.
type TrackingEventData struct {
	OccurrenceCode *string   `json:"occurrence_code"`
	Status         string    `json:"status"`
	Description    *string   `json:"description"`
	Location       *string   `json:"location"`
	Unit           *string   `json:"unit"`
	OccurredAt     time.Time `json:"occurred_at"`
	Protocol       *string   `json:"protocol"`
	RawData        *string   `json:"raw_data"`
}

// ShipmentTrackingUpdate is one ingestion payload from a cronjob or scraper.
// Identity is the tracking code when present, else (invoice_number, document).
type ShipmentTrackingUpdate struct {
	TrackingCode  *string             `json:"tracking_code"`
	InvoiceNumber string              `json:"invoice_number"`
	Document      string              `json:"document"`
	Carrier       string              `json:"carrier"`
	CurrentStatus *string             `json:"current_status"`
	Events        []TrackingEventData `json:"events"`
	LastUpdate    *time.Time          `json:"last_update"`
}

var ErrInvalidIdentity = errors.New("shipment identity requires a tracking_code or an invoice_number and document pair")

func (u ShipmentTrackingUpdate) Validate() error {
	if u.TrackingCode != nil && *u.TrackingCode != "" {
		return nil
	}
	if u.InvoiceNumber == "" || u.Document == "" {
		return ErrInvalidIdentity
	}
	return nil
}

// TrackingUpdateResult reports one reconcile call.
type TrackingUpdateResult struct {
	Success       bool     `json:"success"`
	Message       string   `json:"message"`
	ShipmentID    string   `json:"shipment_id,omitempty"`
	EventsCreated int      `json:"events_created"`
	EventsUpdated int      `json:"events_updated"`
	Errors        []string `json:"errors"`
}

// BulkTrackingUpdate is the batch ingestion payload.
type BulkTrackingUpdate struct {
	Shipments []ShipmentTrackingUpdate `json:"shipments"`
}

// BulkTrackingResult aggregates independent per-item results.
type BulkTrackingResult struct {
	TotalProcessed int                    `json:"total_processed"`
	Successful     int                    `json:"successful"`
	Failed         int                    `json:"failed"`
	Results        []TrackingUpdateResult `json:"results"`
}
