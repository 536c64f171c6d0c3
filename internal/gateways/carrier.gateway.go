package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/rastreioapp/tracking-gateway/internal/model"
	"github.com/rastreioapp/tracking-gateway/pkg/logger"
	"github.com/valyala/fasthttp"
)

var (
	ErrCircuitOpen        = errors.New("carrier gateway circuit open")
	ErrTrackingNotFound   = errors.New("carrier has no record for this shipment")
	ErrUnexpectedResponse = errors.New("unexpected carrier response")
)

type Config struct {
	BaseURL                 string
	Timeout                 time.Duration
	MaxRetries              int
	RetryDelay              time.Duration
	MaxConns                int
	CircuitBreakerThreshold int
	CircuitBreakerTimeout   time.Duration
}

// Client talks to a carrier tracking API (SSW-style) and maps its responses
// onto ingestion payloads. Consecutive failures open a circuit so the sync
// job backs off instead of hammering a carrier that is down.
type Client struct {
	config *Config
	client *fasthttp.Client

	consecutiveFails atomic.Int32
	circuitOpenUntil atomic.Int64
}

func NewClient(config *Config) (*Client, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}
	if config.BaseURL == "" {
		return nil, errors.New("carrier base url is required")
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if config.CircuitBreakerThreshold <= 0 {
		config.CircuitBreakerThreshold = 5
	}
	if config.CircuitBreakerTimeout <= 0 {
		config.CircuitBreakerTimeout = 30 * time.Second
	}

	c := &Client{
		config: config,
		client: &fasthttp.Client{
			MaxConnsPerHost:     config.MaxConns,
			ReadTimeout:         config.Timeout,
			WriteTimeout:        config.Timeout,
			MaxIdleConnDuration: 60 * time.Second,
		},
	}
	logger.Info("carrier gateway initialized", "url", config.BaseURL, "timeout", config.Timeout)
	return c, nil
}

// carrierTrackingResponse is the wire shape the SSW-style tracking API
// returns; occurred_at stays a string so the ingestion layer applies the
// business timezone.
type carrierTrackingResponse struct {
	TrackingCode  *string `json:"tracking_code"`
	InvoiceNumber string  `json:"invoice_number"`
	Document      string  `json:"document"`
	Carrier       string  `json:"carrier"`
	CurrentStatus *string `json:"current_status"`
	Events        []struct {
		OccurrenceCode *string `json:"occurrence_code"`
		Status         string  `json:"status"`
		Description    *string `json:"description"`
		Location       *string `json:"location"`
		Unit           *string `json:"unit"`
		OccurredAt     string  `json:"occurred_at"`
		Protocol       *string `json:"protocol"`
	} `json:"events"`
}

// FetchTracking pulls the carrier's current view of one shipment. The
// lookup uses the tracking code when the shipment has one, otherwise the
// invoice/document pair.
func (c *Client) FetchTracking(ctx context.Context, shipment *model.PendingShipment, loc *time.Location) (*model.ShipmentTrackingUpdate, error) {
	if loc == nil {
		loc = time.UTC
	}

	path := c.lookupPath(shipment)

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.config.RetryDelay):
			}
		}

		body, err := c.doRequest(ctx, "GET", path)
		if err != nil {
			if errors.Is(err, ErrTrackingNotFound) || errors.Is(err, ErrCircuitOpen) {
				return nil, err
			}
			logger.Warn("carrier request failed",
				"shipment_id", shipment.ID, "attempt", attempt+1, "error", err)
			lastErr = err
			continue
		}

		var resp carrierTrackingResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
		}
		return c.toUpdate(shipment, &resp, loc), nil
	}

	return nil, fmt.Errorf("carrier fetch failed after %d attempts: %w", c.config.MaxRetries+1, lastErr)
}

// Health probes the carrier endpoint; the sync job skips a cycle when the
// carrier reports unhealthy.
func (c *Client) Health(ctx context.Context) error {
	body, err := c.doRequest(ctx, "GET", "/health")
	if err != nil {
		return err
	}
	var health struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &health); err != nil {
		return ErrUnexpectedResponse
	}
	if health.Status != "healthy" && health.Status != "ok" {
		return fmt.Errorf("carrier unhealthy: %s", health.Status)
	}
	return nil
}

func (c *Client) lookupPath(shipment *model.PendingShipment) string {
	if shipment.TrackingCode != nil && *shipment.TrackingCode != "" {
		return "/api/v1/tracking/" + url.PathEscape(*shipment.TrackingCode)
	}
	q := url.Values{}
	q.Set("invoice_number", shipment.InvoiceNumber)
	q.Set("document", shipment.Document)
	return "/api/v1/tracking?" + q.Encode()
}

func (c *Client) toUpdate(shipment *model.PendingShipment, resp *carrierTrackingResponse, loc *time.Location) *model.ShipmentTrackingUpdate {
	upd := &model.ShipmentTrackingUpdate{
		TrackingCode:  resp.TrackingCode,
		InvoiceNumber: resp.InvoiceNumber,
		Document:      resp.Document,
		Carrier:       resp.Carrier,
		CurrentStatus: resp.CurrentStatus,
	}
	if upd.TrackingCode == nil {
		upd.TrackingCode = shipment.TrackingCode
	}
	if upd.InvoiceNumber == "" {
		upd.InvoiceNumber = shipment.InvoiceNumber
	}
	if upd.Document == "" {
		upd.Document = shipment.Document
	}
	if upd.Carrier == "" {
		upd.Carrier = shipment.Carrier
	}

	for _, ev := range resp.Events {
		occurredAt, err := parseCarrierTime(ev.OccurredAt, loc)
		if err != nil {
			logger.Warn("skipping carrier event with bad timestamp",
				"shipment_id", shipment.ID, "occurred_at", ev.OccurredAt)
			continue
		}
		upd.Events = append(upd.Events, model.TrackingEventData{
			OccurrenceCode: ev.OccurrenceCode,
			Status:         ev.Status,
			Description:    ev.Description,
			Location:       ev.Location,
			Unit:           ev.Unit,
			OccurredAt:     occurredAt,
			Protocol:       ev.Protocol,
		})
	}
	return upd
}

func (c *Client) doRequest(ctx context.Context, method, path string) ([]byte, error) {
	if until := c.circuitOpenUntil.Load(); until > 0 {
		if time.Now().Unix() <= until {
			return nil, ErrCircuitOpen
		}
		c.circuitOpenUntil.Store(0)
		c.consecutiveFails.Store(0)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.config.BaseURL + path)
	req.Header.SetMethod(method)
	req.Header.SetContentType("application/json")

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.config.Timeout)
	}

	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		c.recordFailure()
		return nil, fmt.Errorf("request failed: %w", err)
	}

	switch resp.StatusCode() {
	case fasthttp.StatusOK, fasthttp.StatusAccepted:
	case fasthttp.StatusNotFound:
		return nil, ErrTrackingNotFound
	default:
		c.recordFailure()
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode(), resp.Body())
	}

	c.consecutiveFails.Store(0)

	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())
	return body, nil
}

func (c *Client) recordFailure() {
	fails := c.consecutiveFails.Add(1)
	if fails >= int32(c.config.CircuitBreakerThreshold) {
		openUntil := time.Now().Add(c.config.CircuitBreakerTimeout).Unix()
		c.circuitOpenUntil.Store(openUntil)
		logger.Warn("carrier circuit opened",
			"consecutive_fails", fails, "timeout", c.config.CircuitBreakerTimeout)
	}
}

func parseCarrierTime(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("unsupported time layout")
}
