package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/google/uuid"
	"github.com/rastreioapp/tracking-gateway/internal/model"
	xhttp "github.com/rastreioapp/tracking-gateway/pkg/http"
)

type CarrierService interface {
	Create(ctx context.Context, req model.CarrierCreateRequest) (*model.Carrier, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Carrier, error)
	List(ctx context.Context, activeOnly bool) ([]*model.Carrier, error)
	Update(ctx context.Context, id uuid.UUID, u model.CarrierUpdate) (*model.Carrier, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type CarrierHandler struct {
	svc CarrierService
}

func NewCarrierHandler(svc CarrierService) *CarrierHandler {
	return &CarrierHandler{svc: svc}
}

func RegisterCarrierRoutes(e *router.Group, h *CarrierHandler) {
	e.POST("/carriers", h.CreateCarrier)
	e.GET("/carriers", h.ListCarriers)
	e.GET("/carriers/{id}", h.GetCarrier)
	e.PATCH("/carriers/{id}", h.UpdateCarrier)
	e.DELETE("/carriers/{id}", h.DeleteCarrier)
}

func (h *CarrierHandler) CreateCarrier(ctx *xhttp.RequestCtx) {
	var req model.CarrierCreateRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}
	carrier, err := h.svc.Create(ctx, req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 201, carrier)
}

func (h *CarrierHandler) ListCarriers(ctx *xhttp.RequestCtx) {
	activeOnly := query(ctx, "active") == "true"
	carriers, err := h.svc.List(ctx, activeOnly)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, carriers)
}

func (h *CarrierHandler) GetCarrier(ctx *xhttp.RequestCtx) {
	id, err := pathUUID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid carrier id")
		return
	}
	carrier, err := h.svc.Get(ctx, id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, carrier)
}

func (h *CarrierHandler) UpdateCarrier(ctx *xhttp.RequestCtx) {
	id, err := pathUUID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid carrier id")
		return
	}
	var u model.CarrierUpdate
	if err := readJSON(ctx, &u); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}
	carrier, err := h.svc.Update(ctx, id, u)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, carrier)
}

func (h *CarrierHandler) DeleteCarrier(ctx *xhttp.RequestCtx) {
	id, err := pathUUID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid carrier id")
		return
	}
	if err := h.svc.Delete(ctx, id); err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, map[string]string{"message": "carrier deleted"})
}
