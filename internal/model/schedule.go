package model

// MedicationSchedule is a read-only snapshot of a medication plan owned by
// the records service. Times are HH:MM strings on a 24-hour clock.
type MedicationSchedule struct {
	ID           string   `json:"id"`
	Patient      string   `json:"patient"`
	DrugName     string   `json:"drug_name"`
	Dosage       string   `json:"dosage"`
	Instructions string   `json:"instructions"`
	Times        []string `json:"times"`
	Status       string   `json:"status"`
}

const MedicationStatusActive = "active"

// Active reports whether reminders should be generated for this schedule.
// Paused and discontinued schedules never fire.
func (m MedicationSchedule) Active() bool {
	return m.Status == "" || m.Status == MedicationStatusActive
}

// Appointment is a read-only snapshot of a booked appointment owned by the
// records service. Date is YYYY-MM-DD, Time is HH:MM.
type Appointment struct {
	ID      string `json:"id"`
	Patient string `json:"patient"`
	Doctor  string `json:"doctor"`
	Date    string `json:"date"`
	Time    string `json:"time"`
	Status  string `json:"status"`
}

const AppointmentStatusScheduled = "scheduled"

// Upcoming reports whether the appointment is still on the calendar.
// Cancelled, completed and rescheduled appointments never fire.
func (a Appointment) Upcoming() bool {
	return a.Status == "" || a.Status == AppointmentStatusScheduled
}
