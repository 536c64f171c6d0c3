package model

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ShipmentStatus is the canonical lifecycle state of a shipment.
type ShipmentStatus string

const (
	StatusPending        ShipmentStatus = "pending"
	StatusPosted         ShipmentStatus = "posted"
	StatusInTransit      ShipmentStatus = "in_transit"
	StatusOutForDelivery ShipmentStatus = "out_for_delivery"
	StatusDelivered      ShipmentStatus = "delivered"
	StatusDelayed        ShipmentStatus = "delayed"
	StatusFailedDelivery ShipmentStatus = "failed_delivery"
	StatusReturned       ShipmentStatus = "returned"
	StatusCancelled      ShipmentStatus = "cancelled"
	StatusHeld           ShipmentStatus = "held"
	StatusAwaitingPickup ShipmentStatus = "awaiting_pickup"
)

// AllStatuses lists every canonical status in display order.
var AllStatuses = []ShipmentStatus{
	StatusPending,
	StatusPosted,
	StatusInTransit,
	StatusOutForDelivery,
	StatusDelivered,
	StatusDelayed,
	StatusFailedDelivery,
	StatusReturned,
	StatusCancelled,
	StatusHeld,
	StatusAwaitingPickup,
}

var validStatuses = func() map[ShipmentStatus]struct{} {
	m := make(map[ShipmentStatus]struct{}, len(AllStatuses))
	for _, s := range AllStatuses {
		m[s] = struct{}{}
	}
	return m
}()

func (s ShipmentStatus) Valid() bool {
	_, ok := validStatuses[s]
	return ok
}

func (s ShipmentStatus) String() string { return string(s) }

// Label returns the Portuguese display label used by the frontend.
func (s ShipmentStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

func (s ShipmentStatus) Description() string { return statusDescriptions[s] }

// Color returns the Tailwind color token for frontend display.
func (s ShipmentStatus) Color() string {
	if c, ok := statusColors[s]; ok {
		return c
	}
	return "gray"
}

var statusLabels = map[ShipmentStatus]string{
	StatusPending:        "Aguardando Postagem",
	StatusPosted:         "Postado",
	StatusInTransit:      "Em Trânsito",
	StatusOutForDelivery: "Saiu para Entrega",
	StatusDelivered:      "Entregue",
	StatusDelayed:        "Atrasado",
	StatusFailedDelivery: "Tentativa de Entrega Falhou",
	StatusReturned:       "Devolvido",
	StatusCancelled:      "Cancelado",
	StatusHeld:           "Retido",
	StatusAwaitingPickup: "Aguardando Retirada",
}

var statusDescriptions = map[ShipmentStatus]string{
	StatusPending:        "A encomenda foi registrada e está aguardando ser postada",
	StatusPosted:         "A encomenda foi postada e aceita pela transportadora",
	StatusInTransit:      "A encomenda está em trânsito para o destino",
	StatusOutForDelivery: "A encomenda saiu para entrega ao destinatário",
	StatusDelivered:      "A encomenda foi entregue com sucesso",
	StatusDelayed:        "A encomenda está atrasada em relação à previsão",
	StatusFailedDelivery: "Houve uma tentativa de entrega que não foi bem-sucedida",
	StatusReturned:       "A encomenda foi devolvida ao remetente",
	StatusCancelled:      "A encomenda foi cancelada",
	StatusHeld:           "A encomenda está retida (alfândega, documentação, etc)",
	StatusAwaitingPickup: "A encomenda está disponível para retirada",
}

var statusColors = map[ShipmentStatus]string{
	StatusPending:        "yellow",
	StatusPosted:         "blue",
	StatusInTransit:      "blue",
	StatusOutForDelivery: "indigo",
	StatusDelivered:      "green",
	StatusDelayed:        "orange",
	StatusFailedDelivery: "red",
	StatusReturned:       "red",
	StatusCancelled:      "gray",
	StatusHeld:           "orange",
	StatusAwaitingPickup: "purple",
}

// StatusInfo is the catalog entry served to the frontend.
type StatusInfo struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

func StatusCatalog() []StatusInfo {
	out := make([]StatusInfo, 0, len(AllStatuses))
	for _, s := range AllStatuses {
		out = append(out, StatusInfo{
			Value:       string(s),
			Label:       s.Label(),
			Description: s.Description(),
			Color:       s.Color(),
		})
	}
	return out
}

// legacyStatuses maps Portuguese base terms and known malformed Correios/SSW
// strings onto canonical values. Exact match only, after normalizeToken.
var legacyStatuses = map[string]ShipmentStatus{
	"em_transito":         StatusInTransit,
	"transito":            StatusInTransit,
	"saiu_para_entrega":   StatusOutForDelivery,
	"entregue":            StatusDelivered,
	"aguardando":          StatusPending,
	"postado":             StatusPosted,
	"cancelado":           StatusCancelled,
	"devolvido":           StatusReturned,
	"atrasado":            StatusDelayed,
	"aguardando_retirada": StatusAwaitingPickup,
	"retido":              StatusHeld,

	"em_transito_para_a_unidade_destino":       StatusInTransit,
	"em_transito_para_unidade_destino":         StatusInTransit,
	"objeto_saiu_para_entrega_ao_destinatario": StatusOutForDelivery,
	"saiu_para_entrega_ao_destinatario":        StatusOutForDelivery,
	"objeto_entregue_ao_destinatario":          StatusDelivered,
	"entregue_ao_destinatario":                 StatusDelivered,
	"objeto_postado":                           StatusPosted,
	"tentativa_de_entrega_nao_realizada":       StatusFailedDelivery,
	"tentativa_nao_realizada":                  StatusFailedDelivery,
}

// statusKeywords is the containment fallback for long carrier messages.
// Order matters: "entregue" must win over a co-occurring "tentativa".
var statusKeywords = []struct {
	keyword string
	status  ShipmentStatus
}{
	{"entregue", StatusDelivered},
	{"saiu_para_entrega", StatusOutForDelivery},
	{"em_transito", StatusInTransit},
	{"transito", StatusInTransit},
	{"tentativa", StatusFailedDelivery},
}

var diacriticsRemover = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func normalizeToken(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if stripped, _, err := transform.String(diacriticsRemover, s); err == nil {
		s = stripped
	}
	return strings.ReplaceAll(s, " ", "_")
}

// NormalizeStatus maps an arbitrary carrier status string onto the canonical
// enum. It is total: anything unrecognized (including the empty string) maps
// to StatusPending. Carrier integrations return inconsistent, sometimes
// verbose Portuguese strings; this is the single point absorbing that
// variability.
func NormalizeStatus(raw string) ShipmentStatus {
	if raw == "" {
		return StatusPending
	}

	token := normalizeToken(raw)

	if s := ShipmentStatus(token); s.Valid() {
		return s
	}

	if s, ok := legacyStatuses[token]; ok {
		return s
	}

	for _, kw := range statusKeywords {
		if strings.Contains(token, kw.keyword) {
			return kw.status
		}
	}

	return StatusPending
}
