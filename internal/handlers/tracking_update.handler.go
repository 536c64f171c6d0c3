package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/fasthttp/router"
	"github.com/rastreioapp/tracking-gateway/internal/model"
	xhttp "github.com/rastreioapp/tracking-gateway/pkg/http"
)

type TrackingService interface {
	Reconcile(ctx context.Context, upd model.ShipmentTrackingUpdate) (*model.TrackingUpdateResult, error)
	ReconcileBulk(ctx context.Context, bulk model.BulkTrackingUpdate) *model.BulkTrackingResult
	OccurrenceCodes(ctx context.Context) ([]*model.OccurrenceCode, error)
	PendingShipments(ctx context.Context, limit int) ([]*model.PendingShipment, error)
}

type TrackingHandler struct {
	svc    TrackingService
	apiKey string
	loc    *time.Location
}

func NewTrackingHandler(svc TrackingService, apiKey string, loc *time.Location) *TrackingHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &TrackingHandler{
		svc:    svc,
		apiKey: apiKey,
		loc:    loc,
	}
}

func RegisterTrackingRoutes(e *router.Group, h *TrackingHandler) {
	e.POST("/tracking-updates/shipment", h.withAPIKey(h.UpdateShipmentTracking))
	e.POST("/tracking-updates/bulk", h.withAPIKey(h.UpdateShipmentTrackingBulk))
	e.GET("/tracking-updates/occurrence-codes", h.withAPIKey(h.ListOccurrenceCodes))
	e.GET("/tracking-updates/pending-shipments", h.withAPIKey(h.ListPendingShipments))
}

// withAPIKey guards scraper-facing routes with the pre-shared key. An empty
// configured key disables ingestion entirely rather than opening it up.
func (h *TrackingHandler) withAPIKey(next xhttp.RequestHandler) xhttp.RequestHandler {
	return func(ctx *xhttp.RequestCtx) {
		key := string(ctx.Request.Header.Peek("X-API-Key"))
		if h.apiKey == "" || key != h.apiKey {
			writeError(ctx, 401, "invalid or missing API key")
			return
		}
		next(ctx)
	}
}

// Ingestion DTOs. occurred_at comes in as a string because carriers emit
// naive local timestamps; they are interpreted in the business timezone.
type trackingEventRequest struct {
	OccurrenceCode *string         `json:"occurrence_code"`
	Status         string          `json:"status"`
	Description    *string         `json:"description"`
	Location       *string         `json:"location"`
	Unit           *string         `json:"unit"`
	OccurredAt     string          `json:"occurred_at"`
	Protocol       *string         `json:"protocol"`
	RawData        json.RawMessage `json:"raw_data"`
}

type trackingUpdateRequest struct {
	TrackingCode  *string                `json:"tracking_code"`
	InvoiceNumber string                 `json:"invoice_number"`
	Document      string                 `json:"document"`
	Carrier       string                 `json:"carrier"`
	CurrentStatus *string                `json:"current_status"`
	Events        []trackingEventRequest `json:"events"`
	LastUpdate    *string                `json:"last_update"`
}

type bulkTrackingUpdateRequest struct {
	Shipments []trackingUpdateRequest `json:"shipments"`
}

func (h *TrackingHandler) UpdateShipmentTracking(ctx *xhttp.RequestCtx) {
	var req trackingUpdateRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	upd, err := h.toUpdate(req)
	if err != nil {
		writeError(ctx, 422, err.Error())
		return
	}

	result, err := h.svc.Reconcile(ctx, upd)
	if err != nil {
		if errors.Is(err, model.ErrInvalidIdentity) {
			writeError(ctx, 422, err.Error())
			return
		}
		writeJSON(ctx, 500, result)
		return
	}
	writeJSON(ctx, 200, result)
}

func (h *TrackingHandler) UpdateShipmentTrackingBulk(ctx *xhttp.RequestCtx) {
	var req bulkTrackingUpdateRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	bulk := model.BulkTrackingUpdate{
		Shipments: make([]model.ShipmentTrackingUpdate, 0, len(req.Shipments)),
	}
	for i, item := range req.Shipments {
		upd, err := h.toUpdate(item)
		if err != nil {
			writeError(ctx, 422, fmt.Sprintf("shipments[%d]: %v", i, err))
			return
		}
		bulk.Shipments = append(bulk.Shipments, upd)
	}

	writeJSON(ctx, 200, h.svc.ReconcileBulk(ctx, bulk))
}

func (h *TrackingHandler) ListOccurrenceCodes(ctx *xhttp.RequestCtx) {
	codes, err := h.svc.OccurrenceCodes(ctx)
	if err != nil {
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, codes)
}

func (h *TrackingHandler) ListPendingShipments(ctx *xhttp.RequestCtx) {
	limit := 0
	if v := query(ctx, "limit"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			limit = n
		}
	}

	shipments, err := h.svc.PendingShipments(ctx, limit)
	if err != nil {
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, shipments)
}

func (h *TrackingHandler) toUpdate(req trackingUpdateRequest) (model.ShipmentTrackingUpdate, error) {
	upd := model.ShipmentTrackingUpdate{
		TrackingCode:  req.TrackingCode,
		InvoiceNumber: req.InvoiceNumber,
		Document:      req.Document,
		Carrier:       req.Carrier,
		CurrentStatus: req.CurrentStatus,
		Events:        make([]model.TrackingEventData, 0, len(req.Events)),
	}

	if req.LastUpdate != nil && *req.LastUpdate != "" {
		if t, err := h.parseOccurredAt(*req.LastUpdate); err == nil {
			upd.LastUpdate = &t
		}
	}

	for i, ev := range req.Events {
		occurredAt, err := h.parseOccurredAt(ev.OccurredAt)
		if err != nil {
			return upd, fmt.Errorf("events[%d]: invalid occurred_at %q", i, ev.OccurredAt)
		}
		var raw *string
		if len(ev.RawData) > 0 && string(ev.RawData) != "null" {
			s := string(ev.RawData)
			raw = &s
		}
		upd.Events = append(upd.Events, model.TrackingEventData{
			OccurrenceCode: ev.OccurrenceCode,
			Status:         ev.Status,
			Description:    ev.Description,
			Location:       ev.Location,
			Unit:           ev.Unit,
			OccurredAt:     occurredAt,
			Protocol:       ev.Protocol,
			RawData:        raw,
		})
	}

	return upd, nil
}

// parseOccurredAt accepts RFC3339, plus the offset-less layouts carriers
// actually send, which are taken as business-timezone wall time.
func (h *TrackingHandler) parseOccurredAt(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range []string{
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	} {
		if t, err := time.ParseInLocation(layout, s, h.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("unsupported time layout")
}
