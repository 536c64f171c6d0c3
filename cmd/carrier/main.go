package main

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// trackingStage is one step of the simulated shipment lifecycle.
type trackingStage struct {
	OccurrenceCode string
	Status         string
	Description    string
}

// Stages mirror what SSW-style carriers actually emit: raw Portuguese
// strings, sometimes with accents, which the gateway has to normalize.
var lifecycle = []trackingStage{
	{"80", "AGUARDANDO COLETA", "MERCADORIA AGUARDANDO COLETA"},
	{"81", "Coletado", "COLETA REALIZADA"},
	{"84", "EM TRÂNSITO", "TRANSFERENCIA DE UNIDADE"},
	{"59", "Em trânsito", "MERCADORIA EM TRANSITO PARA FILIAL DESTINO"},
	{"82", "SAIU PARA ENTREGA", "MERCADORIA SAIU PARA ENTREGA AO DESTINATARIO"},
	{"1", "Entregue", "MERCADORIA ENTREGUE"},
}

var locations = []string{
	"SAO PAULO/SP", "CAMPINAS/SP", "CURITIBA/PR", "BELO HORIZONTE/MG", "RIO DE JANEIRO/RJ",
}

type trackingEvent struct {
	OccurrenceCode *string `json:"occurrence_code"`
	Status         string  `json:"status"`
	Description    *string `json:"description"`
	Location       *string `json:"location"`
	Unit           *string `json:"unit"`
	OccurredAt     string  `json:"occurred_at"`
	Protocol       *string `json:"protocol"`
}

type trackingResponse struct {
	TrackingCode  *string         `json:"tracking_code"`
	InvoiceNumber string          `json:"invoice_number"`
	Document      string          `json:"document"`
	Carrier       string          `json:"carrier"`
	CurrentStatus *string         `json:"current_status"`
	Events        []trackingEvent `json:"events"`
}

// MockCarrier fabricates a deterministic, progressively advancing timeline
// per tracking code so repeated polls look like a real shipment moving.
type MockCarrier struct {
	carrierID   string
	stageMinAge time.Duration
	missRate    float64
	rng         *rand.Rand
}

func NewMockCarrier(stageMinAge time.Duration, missRate float64) *MockCarrier {
	return &MockCarrier{
		carrierID:   "MOCK_SSW_" + uuid.New().String()[:8],
		stageMinAge: stageMinAge,
		missRate:    missRate,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// stagesElapsed derives how far along the lifecycle a code is from a stable
// hash of the code plus wall-clock time, so the same code advances over time.
func (m *MockCarrier) stagesElapsed(key string) int {
	h := fnv.New32a()
	h.Write([]byte(key))
	offset := time.Duration(h.Sum32()%86400) * time.Second
	origin := time.Now().Truncate(24 * time.Hour).Add(offset - 24*time.Hour)
	age := time.Since(origin)
	n := int(age / m.stageMinAge)
	if n > len(lifecycle) {
		n = len(lifecycle)
	}
	if n < 1 {
		n = 1
	}
	return n
}

func (m *MockCarrier) timeline(key string) []trackingEvent {
	h := fnv.New32a()
	h.Write([]byte(key))
	seed := h.Sum32()

	n := m.stagesElapsed(key)
	events := make([]trackingEvent, 0, n)
	base := time.Now().Add(-time.Duration(n) * m.stageMinAge)

	for i := 0; i < n; i++ {
		stage := lifecycle[i]
		code := stage.OccurrenceCode
		desc := stage.Description
		loc := locations[(int(seed)+i)%len(locations)]
		unit := "FILIAL " + loc[:strings.Index(loc, "/")]
		occurredAt := base.Add(time.Duration(i) * m.stageMinAge)

		events = append(events, trackingEvent{
			OccurrenceCode: &code,
			Status:         stage.Status,
			Description:    &desc,
			Location:       &loc,
			Unit:           &unit,
			// Naive local timestamp, exactly as the real integrations send.
			OccurredAt: occurredAt.Format("2006-01-02T15:04:05"),
		})
	}
	return events
}

type Handler struct {
	carrier *MockCarrier
}

func NewHandler(carrier *MockCarrier) *Handler {
	return &Handler{carrier: carrier}
}

// GetTrackingByCode serves the tracking-code lookup.
func (h *Handler) GetTrackingByCode(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tracking code is required"})
		return
	}
	if h.carrier.rng.Float64() < h.carrier.missRate {
		c.JSON(http.StatusNotFound, gin.H{"error": "tracking code not found"})
		return
	}

	events := h.carrier.timeline(code)
	current := events[len(events)-1].Status

	log.Info().
		Str("tracking_code", code).
		Int("events", len(events)).
		Msg("Tracking lookup")

	c.JSON(http.StatusOK, trackingResponse{
		TrackingCode:  &code,
		InvoiceNumber: fmt.Sprintf("NF-%s", code),
		Document:      "00000000000191",
		Carrier:       "SSW",
		CurrentStatus: &current,
		Events:        events,
	})
}

// GetTrackingByInvoice serves the invoice/document lookup used before the
// shipment has a tracking code.
func (h *Handler) GetTrackingByInvoice(c *gin.Context) {
	invoice := c.Query("invoice_number")
	document := c.Query("document")
	if invoice == "" || document == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invoice_number and document are required"})
		return
	}
	if h.carrier.rng.Float64() < h.carrier.missRate {
		c.JSON(http.StatusNotFound, gin.H{"error": "shipment not found"})
		return
	}

	key := invoice + ":" + document
	events := h.carrier.timeline(key)
	current := events[len(events)-1].Status
	trackingCode := fmt.Sprintf("SSW%08d", fnvHash(key)%100000000)

	c.JSON(http.StatusOK, trackingResponse{
		TrackingCode:  &trackingCode,
		InvoiceNumber: invoice,
		Document:      document,
		Carrier:       "SSW",
		CurrentStatus: &current,
		Events:        events,
	})
}

func (h *Handler) HealthCheck(c *gin.Context) {
	// Simulate 5% downtime
	if h.carrier.rng.Float64() < 0.05 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"error":  "Carrier temporarily unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"carrier_id": h.carrier.carrierID,
		"timestamp":  time.Now(),
	})
}

// UpdateConfig allows changing carrier behavior at runtime.
func (h *Handler) UpdateConfig(c *gin.Context) {
	var config struct {
		MissRate *float64 `json:"miss_rate"`
	}

	if err := c.ShouldBindJSON(&config); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	if config.MissRate != nil && *config.MissRate >= 0 && *config.MissRate <= 1.0 {
		h.carrier.missRate = *config.MissRate
		log.Info().Float64("rate", *config.MissRate).Msg("Updated miss rate")
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Configuration updated",
		"miss_rate": h.carrier.missRate,
	})
}

func fnvHash(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}

// SetupRouter configures all routes
func SetupRouter(handler *Handler) *gin.Engine {
	router := gin.Default()

	// Add request logging middleware
	router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Msg("Request processed")
	})

	// API routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/tracking/:code", handler.GetTrackingByCode)
		v1.GET("/tracking", handler.GetTrackingByInvoice)
		v1.GET("/health", handler.HealthCheck)
		v1.PUT("/config", handler.UpdateConfig)
	}

	// Root health check
	router.GET("/health", handler.HealthCheck)

	return router
}

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Get configuration from environment
	port := getEnv("PORT", "8081")
	stageMinAge := getEnvDuration("STAGE_MIN_AGE", 6*time.Hour)
	missRate := getEnvFloat("MISS_RATE", 0)

	log.Info().
		Str("port", port).
		Dur("stage_min_age", stageMinAge).
		Float64("miss_rate", missRate).
		Msg("Starting Mock SSW Carrier")

	carrier := NewMockCarrier(stageMinAge, missRate)
	handler := NewHandler(carrier)
	router := SetupRouter(handler)

	// Setup HTTP server
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var f float64
		if _, err := fmt.Sscanf(value, "%f", &f); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
