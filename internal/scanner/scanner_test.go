package scanner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"careminder/internal/model"
	"careminder/internal/window"
)

type fakeRecords struct {
	meds         []model.MedicationSchedule
	appointments []model.Appointment
	medErr       error
	aptErr       error
}

func (f *fakeRecords) Medications(ctx context.Context) ([]model.MedicationSchedule, error) {
	if f.medErr != nil {
		return nil, f.medErr
	}
	return f.meds, nil
}

func (f *fakeRecords) Appointments(ctx context.Context) ([]model.Appointment, error) {
	if f.aptErr != nil {
		return nil, f.aptErr
	}
	return f.appointments, nil
}

type fakeDedup struct {
	mu     sync.Mutex
	marked map[string]bool
}

func newFakeDedup() *fakeDedup {
	return &fakeDedup{marked: make(map[string]bool)}
}

func (f *fakeDedup) MarkOnce(ctx context.Context, key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.marked[key] {
		return false
	}
	f.marked[key] = true
	return true
}

func (f *fakeDedup) Unmark(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.marked, key)
	return nil
}

type fakeStore struct {
	mu            sync.Mutex
	notifications []model.Notification
	nextID        int64
	insertErr     error
}

func (f *fakeStore) Insert(ctx context.Context, n *model.Notification) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	f.nextID++
	n.ID = f.nextID
	n.CreatedAt = time.Now()
	f.notifications = append(f.notifications, *n)
	return n.ID, nil
}

func (f *fakeStore) CountUnread(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, n := range f.notifications {
		if !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) all() []model.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Notification(nil), f.notifications...)
}

type fakeSink struct {
	mu        sync.Mutex
	presented []model.Notification
	unread    []int
}

func (f *fakeSink) Present(ctx context.Context, n model.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.presented = append(f.presented, n)
}

func (f *fakeSink) RenderUnread(ctx context.Context, unread int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unread = append(f.unread, unread)
}

func newTestScanner(records *fakeRecords, dedup *fakeDedup, store *fakeStore, s *fakeSink) *Scanner {
	return NewScanner(
		records,
		dedup,
		store,
		s,
		window.NewMatcher(5*time.Minute, 60*time.Minute),
		time.Minute,
		zap.NewNop(),
	)
}

func clock(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.ParseInLocation("2006-01-02 15:04", value, time.Local)
	require.NoError(t, err)
	return parsed
}

func TestScanFiresMedicationExactlyOncePerDay(t *testing.T) {
	records := &fakeRecords{
		meds: []model.MedicationSchedule{{
			ID:       "m1",
			Patient:  "Alice",
			DrugName: "Levetiracetam",
			Dosage:   "500mg",
			Times:    []string{"20:00"},
			Status:   "active",
		}},
	}
	dedup := newFakeDedup()
	store := &fakeStore{}
	delivery := &fakeSink{}
	s := newTestScanner(records, dedup, store, delivery)

	s.Scan(context.Background(), clock(t, "2026-03-02 20:02"))

	got := store.all()
	require.Len(t, got, 1)
	assert.Equal(t, model.KindMedication, got[0].Kind)
	assert.Contains(t, got[0].Message, "Levetiracetam")
	assert.Contains(t, got[0].Message, "500mg")
	assert.Equal(t, model.PriorityHigh, got[0].Priority)

	// a second scan one minute later must not fire again
	s.Scan(context.Background(), clock(t, "2026-03-02 20:03"))
	assert.Len(t, store.all(), 1)

	require.Len(t, delivery.presented, 1)
	assert.Equal(t, []int{1}, delivery.unread)
}

func TestScanAtMostOncePerKeyAcrossManyTicks(t *testing.T) {
	records := &fakeRecords{
		meds: []model.MedicationSchedule{{
			ID:       "m1",
			DrugName: "Diazepam",
			Times:    []string{"08:00"},
		}},
	}
	dedup := newFakeDedup()
	store := &fakeStore{}
	s := newTestScanner(records, dedup, store, &fakeSink{})

	for minute := 55; minute <= 59; minute++ {
		s.Scan(context.Background(), clock(t, "2026-03-02 07:00").Add(time.Duration(minute)*time.Minute))
	}
	for minute := 0; minute <= 5; minute++ {
		s.Scan(context.Background(), clock(t, "2026-03-02 08:00").Add(time.Duration(minute)*time.Minute))
	}

	assert.Len(t, store.all(), 1)
}

func TestScanMedicationFiresAgainNextDay(t *testing.T) {
	records := &fakeRecords{
		meds: []model.MedicationSchedule{{ID: "m1", DrugName: "X", Times: []string{"08:00"}}},
	}
	store := &fakeStore{}
	s := newTestScanner(records, newFakeDedup(), store, &fakeSink{})

	s.Scan(context.Background(), clock(t, "2026-03-02 08:00"))
	s.Scan(context.Background(), clock(t, "2026-03-03 08:00"))

	assert.Len(t, store.all(), 2)
}

func TestScanAppointmentFiresAtMostOnceEver(t *testing.T) {
	records := &fakeRecords{
		appointments: []model.Appointment{{
			ID:     "a1",
			Doctor: "Dr. Lee",
			Date:   "2026-03-02",
			Time:   "15:00",
			Status: "scheduled",
		}},
	}
	store := &fakeStore{}
	s := newTestScanner(records, newFakeDedup(), store, &fakeSink{})

	s.Scan(context.Background(), clock(t, "2026-03-02 14:10"))
	s.Scan(context.Background(), clock(t, "2026-03-02 14:30"))
	s.Scan(context.Background(), clock(t, "2026-03-02 14:50"))

	got := store.all()
	require.Len(t, got, 1)
	assert.Equal(t, model.KindAppointment, got[0].Kind)
	assert.Contains(t, got[0].Message, "Dr. Lee")
	assert.Contains(t, got[0].Message, "50 minutes")
}

func TestScanPastAppointmentNeverFires(t *testing.T) {
	records := &fakeRecords{
		appointments: []model.Appointment{{
			ID:     "a1",
			Doctor: "Dr. Lee",
			Date:   "2026-03-02",
			Time:   "15:00",
		}},
	}
	store := &fakeStore{}
	s := newTestScanner(records, newFakeDedup(), store, &fakeSink{})

	s.Scan(context.Background(), clock(t, "2026-03-02 15:01"))
	assert.Empty(t, store.all())
}

func TestScanFetchFailureSkipsOnlyThatClass(t *testing.T) {
	records := &fakeRecords{
		meds: []model.MedicationSchedule{{
			ID:       "m1",
			DrugName: "Carbamazepine",
			Times:    []string{"08:00"},
		}},
		appointments: []model.Appointment{{
			ID:     "a1",
			Doctor: "Dr. Lee",
			Date:   "2026-03-02",
			Time:   "08:30",
		}},
		aptErr: errors.New("records service unreachable"),
	}
	store := &fakeStore{}
	s := newTestScanner(records, newFakeDedup(), store, &fakeSink{})

	// tick N: appointments fetch fails, medication still fires
	s.Scan(context.Background(), clock(t, "2026-03-02 08:00"))
	got := store.all()
	require.Len(t, got, 1)
	assert.Equal(t, model.KindMedication, got[0].Kind)

	// next tick the fetch recovers and the appointment reminder is delivered
	records.aptErr = nil
	s.Scan(context.Background(), clock(t, "2026-03-02 08:01"))
	got = store.all()
	require.Len(t, got, 2)
	assert.Equal(t, model.KindAppointment, got[1].Kind)
}

func TestScanInsertFailureReleasesKeyForRetry(t *testing.T) {
	records := &fakeRecords{
		meds: []model.MedicationSchedule{{ID: "m1", DrugName: "X", Times: []string{"08:00"}}},
	}
	dedup := newFakeDedup()
	store := &fakeStore{insertErr: errors.New("db unavailable")}
	s := newTestScanner(records, dedup, store, &fakeSink{})

	s.Scan(context.Background(), clock(t, "2026-03-02 08:00"))
	assert.Empty(t, store.all())
	assert.Empty(t, dedup.marked)

	store.insertErr = nil
	s.Scan(context.Background(), clock(t, "2026-03-02 08:01"))
	assert.Len(t, store.all(), 1)
}

func TestScanSkipsInactiveMedicationAndCancelledAppointment(t *testing.T) {
	records := &fakeRecords{
		meds: []model.MedicationSchedule{{
			ID:       "m1",
			DrugName: "X",
			Times:    []string{"08:00"},
			Status:   "paused",
		}},
		appointments: []model.Appointment{{
			ID:     "a1",
			Doctor: "Dr. Lee",
			Date:   "2026-03-02",
			Time:   "08:30",
			Status: "cancelled",
		}},
	}
	store := &fakeStore{}
	s := newTestScanner(records, newFakeDedup(), store, &fakeSink{})

	s.Scan(context.Background(), clock(t, "2026-03-02 08:00"))
	assert.Empty(t, store.all())
}

func TestScanMalformedEntitySkippedOthersContinue(t *testing.T) {
	records := &fakeRecords{
		meds: []model.MedicationSchedule{
			{ID: "bad", DrugName: "Broken", Times: []string{"not-a-time"}},
			{ID: "good", DrugName: "Valproate", Times: []string{"08:00"}},
		},
	}
	store := &fakeStore{}
	s := newTestScanner(records, newFakeDedup(), store, &fakeSink{})

	s.Scan(context.Background(), clock(t, "2026-03-02 08:00"))

	got := store.all()
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "Valproate")
}

func TestScanSkipsWhileTickInProgress(t *testing.T) {
	records := &fakeRecords{
		meds: []model.MedicationSchedule{{ID: "m1", DrugName: "X", Times: []string{"08:00"}}},
	}
	store := &fakeStore{}
	s := newTestScanner(records, newFakeDedup(), store, &fakeSink{})

	s.running.Store(true)
	s.Scan(context.Background(), clock(t, "2026-03-02 08:00"))
	assert.Empty(t, store.all())

	s.running.Store(false)
	s.Scan(context.Background(), clock(t, "2026-03-02 08:00"))
	assert.Len(t, store.all(), 1)
}
