package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/rastreioapp/tracking-gateway/internal/config"
	"github.com/rastreioapp/tracking-gateway/internal/handlers"
	"github.com/rastreioapp/tracking-gateway/internal/repository"
	"github.com/rastreioapp/tracking-gateway/internal/services"
	xhttp "github.com/rastreioapp/tracking-gateway/pkg/http"
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

	// transport (tcp for now)
	s := xhttp.NewServer(xhttp.DefaultServerOption)
	s.Server.ReadBufferSize = 1024 * 16
	s.Server.WriteBufferSize = 1024 * 16
	s.Use(xhttp.CompressMiddleware(6))
	s.Use(xhttp.TimeoutMiddleware(time.Second * 5))
	s.Use(xhttp.RequestLoggerMiddleware)
	s.Use(xhttp.RecoverMiddleware)
	s.Router = xhttp.CreateDefaultRouter()

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

	if config.Get().AppDebugMetricsAddr != "" {
		if err := prom.Create("", config.Get().AppEnv, config.Get().PromNamespace); err != nil {
			logger.Error("failed creating metrics registry", "error", err)
			return
		}
		go prom.ListenAndServer(config.Get().AppDebugMetricsAddr, config.Get().AppDebugMetricsURI)
	}

	loc, err := time.LoadLocation(config.Get().BusinessTimezone)
	if err != nil {
		logger.Error("invalid business timezone", "tz", config.Get().BusinessTimezone, "error", err)
		return
	}

	shipmentRepo := repository.NewShipmentRepository(db)
	occurrenceRepo := repository.NewOccurrenceCodeRepository(db)
	carrierRepo := repository.NewCarrierRepository(db)

	// services
	trackingService := services.NewTrackingService(shipmentRepo, occurrenceRepo, redisAdap)
	shipmentService := services.NewShipmentService(shipmentRepo)
	carrierService := services.NewCarrierService(carrierRepo)
	healthService := services.NewHealthService()

	if config.Get().SeedOccurrenceCodes {
		if err := trackingService.SeedOccurrenceCodes(context.Background()); err != nil {
			logger.Error("failed seeding occurrence codes", "error", err)
			return
		}
	}

	// v1 handlers
	trackingHandler := handlers.NewTrackingHandler(trackingService, config.Get().TrackingAPIKey, loc)
	shipmentHandler := handlers.NewShipmentHandler(shipmentService)
	carrierHandler := handlers.NewCarrierHandler(carrierService)
	statusHandler := handlers.NewStatusHandler()
	healthHandler := handlers.NewHealthHandler(healthService)

	g := s.Router.Group("/api/v1")
	handlers.RegisterTrackingRoutes(g, trackingHandler)
	handlers.RegisterShipmentRoutes(g, shipmentHandler)
	handlers.RegisterCarrierRoutes(g, carrierHandler)
	handlers.RegisterStatusRoutes(g, statusHandler)
	handlers.RegisterHealthRoutes(g, healthHandler)

	// Create new server
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Kill)

	go func() {
		var err = s.ListenAndServe(config.Get().HttpListenAddr)
		if err != nil {
			logger.Error("error in running http-server", "error", err)
		}
	}()

	select {
	case <-c:
		s.Shutdown()
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
