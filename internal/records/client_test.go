package records

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMedicationsDecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/medication", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "success",
			"medications": [
				{"id": "m1", "patient": "Alice", "drug_name": "Levetiracetam",
				 "dosage": "500mg", "times": ["08:00", "20:00"], "status": "active"}
			],
			"total": 1
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 2*time.Second)
	meds, err := c.Medications(context.Background())
	require.NoError(t, err)
	require.Len(t, meds, 1)
	assert.Equal(t, "m1", meds[0].ID)
	assert.Equal(t, "Levetiracetam", meds[0].DrugName)
	assert.Equal(t, []string{"08:00", "20:00"}, meds[0].Times)
}

func TestAppointmentsDecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/appointments", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "success",
			"appointments": [
				{"id": "a1", "patient": "Alice", "doctor": "Dr. Lee",
				 "date": "2026-03-02", "time": "15:00", "status": "scheduled"}
			],
			"total": 1
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 2*time.Second)
	appointments, err := c.Appointments(context.Background())
	require.NoError(t, err)
	require.Len(t, appointments, 1)
	assert.Equal(t, "Dr. Lee", appointments[0].Doctor)
}

func TestServerErrorSurfacesToCaller(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 2*time.Second)
	_, err := c.Medications(context.Background())
	assert.Error(t, err)
}

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 2*time.Second)
	for i := 0; i < 3; i++ {
		_, err := c.Medications(context.Background())
		assert.Error(t, err)
	}

	// breaker is now open: the failure comes back without an HTTP round trip
	srv.Close()
	_, err := c.Medications(context.Background())
	assert.Error(t, err)
}
