package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/fasthttp/router"
	"github.com/google/uuid"
	"github.com/rastreioapp/tracking-gateway/internal/model"
	"github.com/rastreioapp/tracking-gateway/internal/repository"
	"github.com/rastreioapp/tracking-gateway/internal/services"
	xhttp "github.com/rastreioapp/tracking-gateway/pkg/http"
)

type ShipmentService interface {
	Create(ctx context.Context, req model.ShipmentCreateRequest) (*model.Shipment, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Shipment, error)
	GetByTrackingCode(ctx context.Context, trackingCode string) (*model.Shipment, error)
	List(ctx context.Context, f model.ShipmentFilter) ([]*model.Shipment, error)
	Count(ctx context.Context, f model.ShipmentFilter) (int64, error)
	Stats(ctx context.Context) (*model.ShipmentStats, error)
	Update(ctx context.Context, id uuid.UUID, u model.ShipmentUpdate) (*model.Shipment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AddEvent(ctx context.Context, shipmentID uuid.UUID, req model.TrackingEventCreateRequest) (*model.TrackingEvent, error)
	ListEvents(ctx context.Context, shipmentID uuid.UUID) ([]*model.TrackingEvent, error)
}

type ShipmentHandler struct {
	svc ShipmentService
}

func NewShipmentHandler(svc ShipmentService) *ShipmentHandler {
	return &ShipmentHandler{svc: svc}
}

func RegisterShipmentRoutes(e *router.Group, h *ShipmentHandler) {
	e.POST("/shipments", h.CreateShipment)
	e.GET("/shipments", h.ListShipments)
	e.GET("/shipments/count", h.CountShipments)
	e.GET("/shipments/stats", h.ShipmentStats)
	e.GET("/shipments/tracking/{code}", h.GetShipmentByTrackingCode)
	e.GET("/shipments/{id}", h.GetShipment)
	e.PATCH("/shipments/{id}", h.UpdateShipment)
	e.DELETE("/shipments/{id}", h.DeleteShipment)
	e.POST("/shipments/{id}/events", h.AddTrackingEvent)
	e.GET("/shipments/{id}/events", h.ListTrackingEvents)
}

type shipmentListResponse struct {
	Items []*model.Shipment `json:"items"`
	Total int64             `json:"total"`
}

type countResponse struct {
	Count int64 `json:"count"`
}

/* --------------------------------- Routes ----------------------------------- */

func (h *ShipmentHandler) CreateShipment(ctx *xhttp.RequestCtx) {
	var req model.ShipmentCreateRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}
	shipment, err := h.svc.Create(ctx, req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 201, shipment)
}

func (h *ShipmentHandler) GetShipment(ctx *xhttp.RequestCtx) {
	id, err := pathUUID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid shipment id")
		return
	}
	shipment, err := h.svc.Get(ctx, id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, shipment)
}

func (h *ShipmentHandler) GetShipmentByTrackingCode(ctx *xhttp.RequestCtx) {
	code, _ := ctx.UserValue("code").(string)
	if code == "" {
		writeError(ctx, 400, "invalid tracking code")
		return
	}
	shipment, err := h.svc.GetByTrackingCode(ctx, code)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, shipment)
}

func (h *ShipmentHandler) ListShipments(ctx *xhttp.RequestCtx) {
	f := shipmentFilter(ctx)

	items, err := h.svc.List(ctx, f)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	total, err := h.svc.Count(ctx, f)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, shipmentListResponse{Items: items, Total: total})
}

func (h *ShipmentHandler) CountShipments(ctx *xhttp.RequestCtx) {
	total, err := h.svc.Count(ctx, shipmentFilter(ctx))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, countResponse{Count: total})
}

func (h *ShipmentHandler) ShipmentStats(ctx *xhttp.RequestCtx) {
	stats, err := h.svc.Stats(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, stats)
}

func (h *ShipmentHandler) UpdateShipment(ctx *xhttp.RequestCtx) {
	id, err := pathUUID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid shipment id")
		return
	}
	var u model.ShipmentUpdate
	if err := readJSON(ctx, &u); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}
	shipment, err := h.svc.Update(ctx, id, u)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, shipment)
}

func (h *ShipmentHandler) DeleteShipment(ctx *xhttp.RequestCtx) {
	id, err := pathUUID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid shipment id")
		return
	}
	if err := h.svc.Delete(ctx, id); err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, map[string]string{"message": "shipment deleted"})
}

func (h *ShipmentHandler) AddTrackingEvent(ctx *xhttp.RequestCtx) {
	id, err := pathUUID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid shipment id")
		return
	}
	var req model.TrackingEventCreateRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}
	event, err := h.svc.AddEvent(ctx, id, req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 201, event)
}

func (h *ShipmentHandler) ListTrackingEvents(ctx *xhttp.RequestCtx) {
	id, err := pathUUID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid shipment id")
		return
	}
	events, err := h.svc.ListEvents(ctx, id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, events)
}

func shipmentFilter(ctx *xhttp.RequestCtx) model.ShipmentFilter {
	var f model.ShipmentFilter

	if v := query(ctx, "search"); v != "" {
		f.Search = &v
	}
	if v := query(ctx, "status"); v != "" {
		f.Status = &v
	}
	if v := query(ctx, "carrier"); v != "" {
		f.Carrier = &v
	}
	if v := query(ctx, "document"); v != "" {
		f.Document = &v
	}
	if v := query(ctx, "from"); v != "" {
		if t, e := parseTime(v); e == nil {
			f.From = &t
		}
	}
	if v := query(ctx, "to"); v != "" {
		if t, e := parseTime(v); e == nil {
			f.To = &t
		}
	}
	if v := query(ctx, "limit"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			f.Limit = n
		}
	}
	if v := query(ctx, "offset"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			f.Offset = n
		}
	}
	if strings.EqualFold(query(ctx, "order"), "desc") {
		f.Desc = true
	}
	return f
}

/* --------------------------------- Helpers ----------------------------------- */

func readJSON(ctx *xhttp.RequestCtx, dst any) error {
	body := ctx.PostBody()
	return json.Unmarshal(body, dst)
}

func writeJSON(ctx *xhttp.RequestCtx, status int, v any) {
	b, _ := json.Marshal(v)
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyRaw(b)
}

func writeError(ctx *xhttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, map[string]string{"error": msg})
}

// writeServiceError maps sentinel errors from the service and repository
// layers onto HTTP statuses.
func writeServiceError(ctx *xhttp.RequestCtx, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, repository.ErrCarrierNotFound),
		errors.Is(err, repository.ErrOccurrenceCodeNotFound):
		writeError(ctx, 404, err.Error())
	case errors.Is(err, repository.ErrDuplicateTrackingCode),
		errors.Is(err, repository.ErrDuplicateCarrier):
		writeError(ctx, 409, err.Error())
	case errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrEmptyUpdate),
		errors.Is(err, model.ErrInvalidIdentity):
		writeError(ctx, 422, err.Error())
	default:
		writeError(ctx, 400, err.Error())
	}
}

func pathUUID(ctx *xhttp.RequestCtx, name string) (uuid.UUID, error) {
	s, _ := ctx.UserValue(name).(string)
	return uuid.Parse(s)
}

func query(ctx *xhttp.RequestCtx, key string) string {
	return string(ctx.QueryArgs().Peek(key))
}

func parseTime(s string) (time.Time, error) {
	// Accept RFC3339 or YYYY-MM-DD
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
