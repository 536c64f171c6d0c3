package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rastreioapp/tracking-gateway/internal/model"
	"github.com/rastreioapp/tracking-gateway/internal/repository"
	"github.com/rastreioapp/tracking-gateway/pkg/logger"
	"github.com/rastreioapp/tracking-gateway/pkg/prom"
	"github.com/rastreioapp/tracking-gateway/pkg/redis"
)

const finalizationCacheKey = "tracking:finalization-codes"
const finalizationCacheTTL = 5 * time.Minute

type ShipmentRepository interface {
	Create(ctx context.Context, m *model.Shipment) (*model.Shipment, error)
	FindByIdentity(ctx context.Context, trackingCode *string, invoiceNumber, document string) (*model.Shipment, error)
	SetTrackingCode(ctx context.Context, id uuid.UUID, trackingCode string) error
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
	FindEvent(ctx context.Context, shipmentID uuid.UUID, occurredAt time.Time, status string) (*model.TrackingEvent, error)
	CreateEvent(ctx context.Context, m *model.TrackingEvent) (*model.TrackingEvent, error)
	UpdateEvent(ctx context.Context, id uuid.UUID, m *model.TrackingEvent) (*model.TrackingEvent, error)
	ListPending(ctx context.Context, limit int) ([]*model.PendingShipment, error)
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type OccurrenceCodeRepository interface {
	List(ctx context.Context) ([]*model.OccurrenceCode, error)
	FinalizationCodes(ctx context.Context, processes []string) ([]string, error)
	Seed(ctx context.Context, codes []model.OccurrenceCode) (int, error)
}

// TrackingService reconciles inbound tracking updates against stored
// shipments: find-or-create by identity, event upsert with dedup, and
// finalization based on the occurrence-code taxonomy.
type TrackingService struct {
	shipments ShipmentRepository
	codes     OccurrenceCodeRepository
	cache     redis.RedisAdapter // optional, best effort
}

func NewTrackingService(shipments ShipmentRepository, codes OccurrenceCodeRepository, cache redis.RedisAdapter) *TrackingService {
	return &TrackingService{
		shipments: shipments,
		codes:     codes,
		cache:     cache,
	}
}

// Reconcile applies one ingestion payload inside a single transaction. The
// identity is validated before any persistence. Per-event failures are
// collected into the result and do not abort sibling events; a transaction
// failure rolls the whole batch back.
func (s *TrackingService) Reconcile(ctx context.Context, upd model.ShipmentTrackingUpdate) (*model.TrackingUpdateResult, error) {
	if err := upd.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	result := &model.TrackingUpdateResult{Errors: []string{}}

	err := s.shipments.WithinTransaction(ctx, func(ctx context.Context) error {
		shipment, err := s.findOrCreateShipment(ctx, upd)
		if err != nil {
			return err
		}
		result.ShipmentID = shipment.ID.String()

		finalization, err := s.finalizationSet(ctx)
		if err != nil {
			return err
		}

		hasFinalizationEvent := false
		for i := range upd.Events {
			event := &upd.Events[i]

			created, err := s.upsertEvent(ctx, shipment.ID, event)
			if err != nil {
				msg := fmt.Sprintf("error processing event at %s: %v", event.OccurredAt.Format(time.RFC3339), err)
				logger.Error("tracking event processing failed",
					"shipment_id", shipment.ID, "occurred_at", event.OccurredAt, "error", err)
				result.Errors = append(result.Errors, msg)
				continue
			}
			if created {
				result.EventsCreated++
			} else {
				result.EventsUpdated++
			}

			if code := model.TruncateOccurrenceCode(event.OccurrenceCode); code != nil {
				if _, ok := finalization[*code]; ok {
					hasFinalizationEvent = true
				}
			}
		}

		// Finalization wins unconditionally over the caller's status hint.
		switch {
		case hasFinalizationEvent:
			if err := s.shipments.SetStatus(ctx, shipment.ID, string(model.StatusDelivered)); err != nil {
				return err
			}
			logger.Info("shipment finalized", "shipment_id", shipment.ID)
			prom.IncCounter(prom.SystemTracking, prom.MetricShipmentsFinalized)
		case upd.CurrentStatus != nil && *upd.CurrentStatus != "":
			status := model.NormalizeStatus(*upd.CurrentStatus)
			if err := s.shipments.SetStatus(ctx, shipment.ID, string(status)); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		result.Success = false
		result.Message = "shipment tracking update failed"
		return result, err
	}

	result.Success = true
	result.Message = "shipment tracking updated successfully"

	prom.AddCounter(prom.SystemTracking, prom.MetricTrackingEventsCreated, float64(result.EventsCreated))
	prom.AddCounter(prom.SystemTracking, prom.MetricTrackingEventsUpdated, float64(result.EventsUpdated))
	prom.AddHistogram(prom.SystemTracking, prom.MetricTrackingIngestDuration, time.Since(start).Seconds())

	return result, nil
}

// ReconcileBulk processes each payload independently; one item's failure does
// not roll back or abort its siblings.
func (s *TrackingService) ReconcileBulk(ctx context.Context, bulk model.BulkTrackingUpdate) *model.BulkTrackingResult {
	out := &model.BulkTrackingResult{
		TotalProcessed: len(bulk.Shipments),
		Results:        make([]model.TrackingUpdateResult, 0, len(bulk.Shipments)),
	}

	for _, upd := range bulk.Shipments {
		result, err := s.Reconcile(ctx, upd)
		if err != nil {
			out.Failed++
			if result == nil {
				result = &model.TrackingUpdateResult{Errors: []string{}}
			}
			result.Success = false
			result.Message = fmt.Sprintf("failed to update shipment %s: %v", upd.InvoiceNumber, err)
			result.Errors = append(result.Errors, err.Error())
			out.Results = append(out.Results, *result)
			continue
		}
		out.Successful++
		out.Results = append(out.Results, *result)
	}

	return out
}

// OccurrenceCodes returns the reference table for the scraper's local mapping.
func (s *TrackingService) OccurrenceCodes(ctx context.Context) ([]*model.OccurrenceCode, error) {
	return s.codes.List(ctx)
}

// PendingShipments lists non-delivered shipments for poll-based sync.
func (s *TrackingService) PendingShipments(ctx context.Context, limit int) ([]*model.PendingShipment, error) {
	return s.shipments.ListPending(ctx, limit)
}

// SeedOccurrenceCodes loads the reference table on startup when empty.
func (s *TrackingService) SeedOccurrenceCodes(ctx context.Context) error {
	n, err := s.codes.Seed(ctx, model.OccurrenceCodeSeed)
	if err != nil {
		return err
	}
	if n > 0 {
		logger.Info("seeded occurrence codes", "count", n)
	}
	return nil
}

func (s *TrackingService) findOrCreateShipment(ctx context.Context, upd model.ShipmentTrackingUpdate) (*model.Shipment, error) {
	shipment, err := s.shipments.FindByIdentity(ctx, upd.TrackingCode, upd.InvoiceNumber, upd.Document)
	if err == nil {
		// Invoice-first shipments gain their tracking code once the scraper
		// learns it.
		if upd.TrackingCode != nil && *upd.TrackingCode != "" && shipment.TrackingCode == nil {
			if err := s.shipments.SetTrackingCode(ctx, shipment.ID, *upd.TrackingCode); err != nil {
				return nil, err
			}
			shipment.TrackingCode = upd.TrackingCode
		}
		return shipment, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	carrier := upd.Carrier
	if carrier == "" {
		carrier = model.DefaultCarrier
	}
	status := model.StatusPending
	if upd.CurrentStatus != nil && *upd.CurrentStatus != "" {
		status = model.NormalizeStatus(*upd.CurrentStatus)
	}

	created, err := s.shipments.Create(ctx, &model.Shipment{
		TrackingCode:  upd.TrackingCode,
		InvoiceNumber: upd.InvoiceNumber,
		Document:      upd.Document,
		Carrier:       carrier,
		Status:        string(status),
	})
	if err != nil {
		return nil, err
	}
	logger.Info("created shipment from tracking update",
		"shipment_id", created.ID, "invoice_number", created.InvoiceNumber)
	return created, nil
}

func (s *TrackingService) upsertEvent(ctx context.Context, shipmentID uuid.UUID, data *model.TrackingEventData) (created bool, err error) {
	status := string(model.NormalizeStatus(data.Status))
	code := model.TruncateOccurrenceCode(data.OccurrenceCode)

	existing, err := s.shipments.FindEvent(ctx, shipmentID, data.OccurredAt, status)
	if err != nil && !isNotFound(err) {
		return false, err
	}

	if existing != nil {
		_, err := s.shipments.UpdateEvent(ctx, existing.ID, &model.TrackingEvent{
			Description:    data.Description,
			Location:       data.Location,
			OccurrenceCode: code,
			Unit:           data.Unit,
			Protocol:       data.Protocol,
			CarrierRawData: data.RawData,
		})
		return false, err
	}

	_, err = s.shipments.CreateEvent(ctx, &model.TrackingEvent{
		ShipmentID:     shipmentID,
		Status:         status,
		Description:    data.Description,
		Location:       data.Location,
		OccurrenceCode: code,
		Unit:           data.Unit,
		Protocol:       data.Protocol,
		OccurredAt:     data.OccurredAt,
		CarrierRawData: data.RawData,
	})
	return true, err
}

// finalizationSet resolves the finalization occurrence codes, preferring the
// redis cache. Cache failures fall through to the repository.
func (s *TrackingService) finalizationSet(ctx context.Context) (map[string]struct{}, error) {
	if s.cache != nil {
		if b, err := s.cache.Get(finalizationCacheKey); err == nil && len(b) > 0 {
			var codes []string
			if json.Unmarshal(b, &codes) == nil {
				return toSet(codes), nil
			}
		}
	}

	codes, err := s.codes.FinalizationCodes(ctx, model.FinalizationProcesses)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if b, err := json.Marshal(codes); err == nil {
			_ = s.cache.Set(finalizationCacheKey, b, finalizationCacheTTL)
		}
	}

	return toSet(codes), nil
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}

func toSet(codes []string) map[string]struct{} {
	set := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		set[c] = struct{}{}
	}
	return set
}
