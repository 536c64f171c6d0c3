package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rastreioapp/tracking-gateway/internal/config"
	gateway "github.com/rastreioapp/tracking-gateway/internal/gateways"
	"github.com/rastreioapp/tracking-gateway/internal/repository"
	"github.com/rastreioapp/tracking-gateway/internal/services"
	"github.com/rastreioapp/tracking-gateway/internal/syncer"
	"github.com/rastreioapp/tracking-gateway/pkg/logger"
	"github.com/rastreioapp/tracking-gateway/pkg/pg"
	"github.com/rastreioapp/tracking-gateway/pkg/prom"
	"github.com/rastreioapp/tracking-gateway/pkg/redis"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {

	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

	readConf := pg.Config{
		User:     config.Get().PostgresReadUser,
		Host:     config.Get().PostgresReadHost,
		Port:     config.Get().PostgresReadPort,
		Password: config.Get().PostgresReadPassword,
		Database: config.Get().PostgresReadDatabase,
	}
	writeConf := pg.Config{
		User:     config.Get().PostgresWriteUser,
		Host:     config.Get().PostgresWriteHost,
		Port:     config.Get().PostgresWritePort,
		Password: config.Get().PostgresWritePassword,
		Database: config.Get().PostgresWriteDatabase,
	}

	pgDebug := false
	if config.Get().AppEnv == "dev" {
		pgDebug = true
	}
	db, err := pg.CreateReadWrite(readConf, writeConf, pgDebug)
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}

	redisAdap, err := redis.NewRedisAdapter("default", config.Get().RedisUniversalKeyPrefix, &redis.Options{
		Addrs:      []string{config.Get().RedisAddr},
		ClientName: "default",
		DB:         config.Get().RedisDatabase,
		Username:   config.Get().RedisUsername,
		Password:   config.Get().RedisPassword,
	})
	if err != nil {
		logger.Error("failed connecting to redis", "error", err)
		return
	}

	loc, err := time.LoadLocation(config.Get().BusinessTimezone)
	if err != nil {
		logger.Error("invalid business timezone", "tz", config.Get().BusinessTimezone, "error", err)
		return
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Kill, os.Interrupt, syscall.SIGTERM)

	client, err := gateway.NewClient(&gateway.Config{
		BaseURL:                 config.Get().CarrierGatewayUrl,
		Timeout:                 config.Get().CarrierGatewayTimeout,
		MaxRetries:              3,
		RetryDelay:              time.Millisecond * 200,
		MaxConns:                100,
		CircuitBreakerThreshold: 5,
		CircuitBreakerTimeout:   60 * time.Second,
	})
	if err != nil {
		logger.Error("failed to create carrier gateway", "error", err)
		return
	}

	shipmentRepo := repository.NewShipmentRepository(db)
	occurrenceRepo := repository.NewOccurrenceCodeRepository(db)
	trackingService := services.NewTrackingService(shipmentRepo, occurrenceRepo, redisAdap)

	var hostname string
	hostname, err = os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	err = prom.Create(hostname, config.Get().AppEnv, config.Get().PromNamespace)
	if err != nil {
		logger.Error("failed to create prometheus metrics", "error", err)
		return
	}

	go func() {
		prom.ListenAndServer(":9100", "/metrics")
	}()

	service := syncer.New(syncer.Config{
		PollInterval: config.Get().SyncPollInterval,
		BatchSize:    config.Get().SyncBatchSize,
		Workers:      config.Get().SyncWorkers,
		LockTTL:      config.Get().SyncLockTTL,
		Location:     loc,
	}, trackingService, client, redisAdap)

	go func() {
		err := service.Start()
		if err != nil {
			logger.Error("failed to start syncer", "error", err)
		}
	}()

	select {
	case <-c:
		service.Stop()
	}
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	return ""
}
