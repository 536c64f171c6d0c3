package fixtures

import (
	"time"

	"github.com/rastreioapp/tracking-gateway/internal/model"
)

var (
	// FinalizationCode is a seed-table code whose process finalizes a shipment.
	FinalizationCode = model.OccurrenceCode{
		Code:        "1",
		Description: "mercadoria entregue",
		Type:        "entrega",
		Process:     "entrega",
	}

	// TransitCode never finalizes.
	TransitCode = model.OccurrenceCode{
		Code:        "84",
		Description: "chegada na unidade",
		Type:        "informativa",
		Process:     "operacional",
	}

	// WriteOffCode has type "baixa" but a non-finalizing process: only the
	// process column decides finalization.
	WriteOffCode = model.OccurrenceCode{
		Code:        "99",
		Description: "ctrc baixado/cancelado",
		Type:        "baixa",
		Process:     "geral",
	}
)

func NewTrackingUpdate(trackingCode *string, invoice, document string, events ...model.TrackingEventData) model.ShipmentTrackingUpdate {
	return model.ShipmentTrackingUpdate{
		TrackingCode:  trackingCode,
		InvoiceNumber: invoice,
		Document:      document,
		Carrier:       "SSW",
		Events:        events,
	}
}

func NewTrackingEvent(status string, occurrenceCode *string, occurredAt time.Time) model.TrackingEventData {
	return model.TrackingEventData{
		OccurrenceCode: occurrenceCode,
		Status:         status,
		OccurredAt:     occurredAt,
	}
}

func NewShipmentCreateRequest(trackingCode *string, invoice, document string) model.ShipmentCreateRequest {
	return model.ShipmentCreateRequest{
		TrackingCode:  trackingCode,
		InvoiceNumber: invoice,
		Document:      document,
		Carrier:       "SSW",
	}
}
