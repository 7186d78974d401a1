// Package records is the read-only client for the external records service
// that owns medication schedules and appointments.
package records

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"careminder/internal/model"
	"careminder/pkg/circuitbreaker"
	"careminder/pkg/metrics"
	"careminder/pkg/trace"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	cb         *circuitbreaker.CircuitBreaker
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	// stricter thresholds than the default so a dead records service fails fast
	cbConfig := circuitbreaker.Config{
		FailureThreshold:    3,
		SuccessThreshold:    2,
		Timeout:             30 * time.Second,
		HalfOpenMaxRequests: 2,
	}

	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout, // a hung fetch must not stall subsequent ticks
		},
		cb: circuitbreaker.NewCircuitBreaker(cbConfig),
	}
}

type medicationsEnvelope struct {
	Status      string                     `json:"status"`
	Medications []model.MedicationSchedule `json:"medications"`
	Total       int                        `json:"total"`
}

type appointmentsEnvelope struct {
	Status       string              `json:"status"`
	Appointments []model.Appointment `json:"appointments"`
	Total        int                 `json:"total"`
}

// Medications fetches the current medication schedule list.
func (c *Client) Medications(ctx context.Context) ([]model.MedicationSchedule, error) {
	var envelope medicationsEnvelope
	if err := c.get(ctx, "/api/medication", "medications", &envelope); err != nil {
		return nil, err
	}
	return envelope.Medications, nil
}

// Appointments fetches the current appointment list.
func (c *Client) Appointments(ctx context.Context) ([]model.Appointment, error) {
	var envelope appointmentsEnvelope
	if err := c.get(ctx, "/api/appointments", "appointments", &envelope); err != nil {
		return nil, err
	}
	return envelope.Appointments, nil
}

func (c *Client) get(ctx context.Context, path, resource string, out any) error {
	return c.cb.Execute(func() error {
		start := time.Now()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		if traceID := trace.FromContext(ctx); traceID != "" {
			req.Header.Set(trace.HeaderName(), traceID)
		}

		resp, err := c.httpClient.Do(req)
		latency := time.Since(start)

		if err != nil {
			metrics.RecordRecordsCallLatency(resource, "error", latency)
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			metrics.RecordRecordsCallLatency(resource, fmt.Sprintf("%d", resp.StatusCode), latency)
			return fmt.Errorf("records service returned error: %d", resp.StatusCode)
		}

		metrics.RecordRecordsCallLatency(resource, "success", latency)

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode %s response: %w", resource, err)
		}
		return nil
	})
}
