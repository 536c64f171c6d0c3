package syncer

import (
	"context"
	"errors"
	"os"
	"time"

	gateway "github.com/rastreioapp/tracking-gateway/internal/gateways"
	"github.com/rastreioapp/tracking-gateway/internal/model"
	"github.com/rastreioapp/tracking-gateway/pkg/logger"
	"github.com/rastreioapp/tracking-gateway/pkg/prom"
	"github.com/rastreioapp/tracking-gateway/pkg/redis"
	"github.com/rastreioapp/tracking-gateway/pkg/worker"
)

const lockKeyPrefix = "sync:lock:"

type TrackingReconciler interface {
	Reconcile(ctx context.Context, upd model.ShipmentTrackingUpdate) (*model.TrackingUpdateResult, error)
	PendingShipments(ctx context.Context, limit int) ([]*model.PendingShipment, error)
}

type CarrierGateway interface {
	FetchTracking(ctx context.Context, shipment *model.PendingShipment, loc *time.Location) (*model.ShipmentTrackingUpdate, error)
	Health(ctx context.Context) error
}

type Config struct {
	PollInterval time.Duration
	BatchSize    int
	Workers      int
	LockTTL      time.Duration
	Location     *time.Location
}

// Syncer polls pending shipments on an interval, fetches each one's current
// state from the carrier and reconciles it. A per-shipment redis lock keeps
// concurrent syncer replicas from double-fetching the same shipment.
type Syncer struct {
	cfg      Config
	svc      TrackingReconciler
	gw       CarrierGateway
	cache    redis.RedisAdapter
	pool     *worker.WorkerManager
	stopCh   chan struct{}
	hostname string
}

func New(cfg Config, svc TrackingReconciler, gw CarrierGateway, cache redis.RedisAdapter) *Syncer {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Minute
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 8
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 2 * time.Minute
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	s := &Syncer{
		cfg:      cfg,
		svc:      svc,
		gw:       gw,
		cache:    cache,
		pool:     worker.NewWorkerManager(cfg.BatchSize, cfg.Workers, nil),
		stopCh:   make(chan struct{}),
		hostname: hostname,
	}
	s.pool.SetWorker(s.handleJob)
	return s
}

// Start blocks until Stop is called. The first poll runs immediately.
func (s *Syncer) Start() error {
	go func() {
		if err := s.pool.Start(); err != nil {
			logger.Info("sync worker pool stopped", "reason", err)
		}
	}()

	logger.Info("syncer started",
		"poll_interval", s.cfg.PollInterval, "batch_size", s.cfg.BatchSize, "workers", s.cfg.Workers)

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	s.poll()
	for {
		select {
		case <-ticker.C:
			s.poll()
		case <-s.stopCh:
			return nil
		}
	}
}

func (s *Syncer) Stop() {
	close(s.stopCh)
	s.pool.Exit()
}

func (s *Syncer) poll() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.PollInterval)
	defer cancel()

	if err := s.gw.Health(ctx); err != nil {
		logger.Warn("carrier unhealthy, skipping sync cycle", "error", err)
		prom.IncCounter(prom.SystemSync, prom.MetricSyncPollFailures)
		return
	}

	shipments, err := s.svc.PendingShipments(ctx, s.cfg.BatchSize)
	if err != nil {
		logger.Error("failed listing pending shipments", "error", err)
		prom.IncCounter(prom.SystemSync, prom.MetricSyncPollFailures)
		return
	}
	if len(shipments) == 0 {
		return
	}

	logger.Info("sync cycle", "pending", len(shipments))
	prom.AddCounter(prom.SystemSync, prom.MetricSyncShipmentsPolled, float64(len(shipments)))

	for _, shipment := range shipments {
		s.pool.Enqueue(shipment)
	}
}

func (s *Syncer) handleJob(workerIndex int, job interface{}) {
	shipment, ok := job.(*model.PendingShipment)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.LockTTL)
	defer cancel()

	lockKey := lockKeyPrefix + shipment.ID.String()
	acquired, err := s.cache.SetNX(lockKey, []byte(s.hostname), s.cfg.LockTTL)
	if err != nil {
		logger.Warn("failed acquiring sync lock", "shipment_id", shipment.ID, "error", err)
		return
	}
	if !acquired {
		logger.Debug("shipment locked by another syncer", "shipment_id", shipment.ID)
		return
	}
	defer func() {
		_ = s.cache.Del(lockKey)
	}()

	upd, err := s.gw.FetchTracking(ctx, shipment, s.cfg.Location)
	if err != nil {
		if errors.Is(err, gateway.ErrTrackingNotFound) {
			logger.Debug("carrier has no record yet", "shipment_id", shipment.ID)
			return
		}
		logger.Warn("carrier fetch failed", "shipment_id", shipment.ID, "worker", workerIndex, "error", err)
		prom.IncCounter(prom.SystemSync, prom.MetricSyncPollFailures)
		return
	}
	if len(upd.Events) == 0 && (upd.CurrentStatus == nil || *upd.CurrentStatus == "") {
		return
	}

	result, err := s.svc.Reconcile(ctx, *upd)
	if err != nil {
		logger.Error("reconcile failed", "shipment_id", shipment.ID, "error", err)
		prom.IncCounter(prom.SystemSync, prom.MetricSyncPollFailures)
		return
	}
	if result.EventsCreated > 0 || result.EventsUpdated > 0 {
		logger.Info("shipment synced",
			"shipment_id", shipment.ID,
			"events_created", result.EventsCreated,
			"events_updated", result.EventsUpdated)
	}
}
