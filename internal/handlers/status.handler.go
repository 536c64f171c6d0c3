package handlers

import (
	"github.com/fasthttp/router"
	"github.com/rastreioapp/tracking-gateway/internal/model"
	xhttp "github.com/rastreioapp/tracking-gateway/pkg/http"
)

type StatusHandler struct{}

func NewStatusHandler() *StatusHandler {
	return &StatusHandler{}
}

func RegisterStatusRoutes(e *router.Group, h *StatusHandler) {
	e.GET("/statuses", h.ListStatuses)
}

// ListStatuses serves the canonical status catalog the frontend renders
// badges and filters from.
func (h *StatusHandler) ListStatuses(ctx *xhttp.RequestCtx) {
	writeJSON(ctx, 200, model.StatusCatalog())
}
