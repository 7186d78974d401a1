// Package window decides whether a schedule entity is due at a given
// instant. It is pure: it proposes candidate reminder keys and never touches
// the dedup store.
package window

import (
	"fmt"
	"time"

	"careminder/internal/model"
)

// Candidate is one deliverable occurrence proposed by the matcher. Key is
// the deterministic reminder key used for deduplication.
type Candidate struct {
	Key  string
	Kind model.Kind
	At   time.Time
}

type Matcher struct {
	medicationWindow  time.Duration
	appointmentWindow time.Duration
}

// NewMatcher creates a matcher with the given window widths. The medication
// window is a half-width applied on both sides of the scheduled time; the
// appointment window is forward-looking only.
func NewMatcher(medicationWindow, appointmentWindow time.Duration) *Matcher {
	if medicationWindow <= 0 {
		medicationWindow = 5 * time.Minute
	}
	if appointmentWindow <= 0 {
		appointmentWindow = 60 * time.Minute
	}
	return &Matcher{
		medicationWindow:  medicationWindow,
		appointmentWindow: appointmentWindow,
	}
}

// MedicationKey builds the reminder key for one scheduled dose on one day.
// Keys are never reused across days.
func MedicationKey(scheduleID string, day time.Time, clock string) string {
	return fmt.Sprintf("med_%s_%s_%s", scheduleID, day.Format("2006-01-02"), clock)
}

// AppointmentKey builds the reminder key for an appointment. An appointment
// fires at most once ever, so the key carries no date component.
func AppointmentKey(appointmentID string) string {
	return fmt.Sprintf("apt_%s_reminder", appointmentID)
}

// ParseClock parses a strict 24-hour HH:MM string.
func ParseClock(s string) (time.Time, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return t, nil
}

// EvaluateMedication returns a candidate for every scheduled time within the
// window around now. Comparison is at minute granularity. A malformed time
// makes the whole schedule invalid so the caller can skip the entity.
func (m *Matcher) EvaluateMedication(now time.Time, med model.MedicationSchedule) ([]Candidate, error) {
	if len(med.Times) == 0 {
		return nil, fmt.Errorf("medication %s has no scheduled times", med.ID)
	}

	nowMinute := now.Truncate(time.Minute)
	var due []Candidate

	for _, clock := range med.Times {
		parsed, err := ParseClock(clock)
		if err != nil {
			return nil, fmt.Errorf("medication %s: %w", med.ID, err)
		}

		instant := time.Date(
			now.Year(), now.Month(), now.Day(),
			parsed.Hour(), parsed.Minute(), 0, 0, now.Location(),
		)

		diff := nowMinute.Sub(instant)
		if diff < 0 {
			diff = -diff
		}

		// boundary is inclusive: 07:55 and 08:05 both match 08:00
		if diff <= m.medicationWindow {
			due = append(due, Candidate{
				Key:  MedicationKey(med.ID, now, clock),
				Kind: model.KindMedication,
				At:   instant,
			})
		}
	}

	return due, nil
}

// EvaluateAppointment reports whether the appointment is due: strictly in
// the future and within the appointment window. Past appointments never fire.
func (m *Matcher) EvaluateAppointment(now time.Time, apt model.Appointment) (Candidate, bool, error) {
	if apt.Date == "" || apt.Time == "" {
		return Candidate{}, false, fmt.Errorf("appointment %s is missing date or time", apt.ID)
	}

	instant, err := time.ParseInLocation("2006-01-02 15:04", apt.Date+" "+apt.Time, now.Location())
	if err != nil {
		return Candidate{}, false, fmt.Errorf("appointment %s: invalid date/time: %w", apt.ID, err)
	}

	until := instant.Sub(now.Truncate(time.Minute))
	if until <= 0 || until > m.appointmentWindow {
		return Candidate{}, false, nil
	}

	return Candidate{
		Key:  AppointmentKey(apt.ID),
		Kind: model.KindAppointment,
		At:   instant,
	}, true, nil
}

// MinutesUntil is the whole number of minutes from now until the instant,
// for reminder message rendering.
func MinutesUntil(now, instant time.Time) int {
	return int(instant.Sub(now.Truncate(time.Minute)) / time.Minute)
}
