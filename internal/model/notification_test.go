package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindMeta(t *testing.T) {
	assert.Equal(t, "pill", KindMedication.Meta().Icon)
	assert.Equal(t, "/medication", KindMedication.Meta().Route)
	assert.Equal(t, "calendar", KindAppointment.Meta().Icon)
	assert.Equal(t, "/appointments", KindAppointment.Meta().Route)

	// unknown kinds fall back to the generic reminder metadata
	assert.Equal(t, KindReminder.Meta(), Kind("bogus").Meta())
}

func TestParseKind(t *testing.T) {
	for _, raw := range []string{"medication", "appointment", "reminder", "alert", "seizure", "progress"} {
		k, err := ParseKind(raw)
		require.NoError(t, err)
		assert.True(t, k.Valid())
	}

	_, err := ParseKind("email")
	assert.Error(t, err)
}

func TestPriorityValid(t *testing.T) {
	assert.True(t, PriorityLow.Valid())
	assert.True(t, PriorityMedium.Valid())
	assert.True(t, PriorityHigh.Valid())
	assert.False(t, Priority("urgent").Valid())
}

func TestScheduleStatusGates(t *testing.T) {
	assert.True(t, MedicationSchedule{Status: "active"}.Active())
	assert.True(t, MedicationSchedule{}.Active())
	assert.False(t, MedicationSchedule{Status: "paused"}.Active())
	assert.False(t, MedicationSchedule{Status: "discontinued"}.Active())

	assert.True(t, Appointment{Status: "scheduled"}.Upcoming())
	assert.True(t, Appointment{}.Upcoming())
	assert.False(t, Appointment{Status: "cancelled"}.Upcoming())
	assert.False(t, Appointment{Status: "completed"}.Upcoming())
}
