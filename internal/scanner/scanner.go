// Package scanner drives the periodic reminder scan: pull entities from the
// records service, match them against the current time, and deliver at most
// one notification per reminder key.
package scanner

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"careminder/internal/model"
	"careminder/internal/sink"
	"careminder/internal/window"
	"careminder/pkg/logger"
	"careminder/pkg/metrics"
	"careminder/pkg/trace"
	"careminder/pkg/util"
)

// RecordsSource reads entity snapshots from the records service.
type RecordsSource interface {
	Medications(ctx context.Context) ([]model.MedicationSchedule, error)
	Appointments(ctx context.Context) ([]model.Appointment, error)
}

// DedupStore is the at-most-once gate. MarkOnce must be atomic: of any
// number of callers racing on one key, exactly one gets true.
type DedupStore interface {
	MarkOnce(ctx context.Context, key string) bool
	Unmark(ctx context.Context, key string) error
}

// NotificationStore is the ordered notification log.
type NotificationStore interface {
	Insert(ctx context.Context, n *model.Notification) (int64, error)
	CountUnread(ctx context.Context) (int, error)
}

type Scanner struct {
	records  RecordsSource
	dedup    DedupStore
	store    NotificationStore
	sink     sink.Sink
	matcher  *window.Matcher
	interval time.Duration
	logger   *zap.Logger

	running atomic.Bool
}

func NewScanner(
	records RecordsSource,
	dedup DedupStore,
	store NotificationStore,
	deliverySink sink.Sink,
	matcher *window.Matcher,
	interval time.Duration,
	log *zap.Logger,
) *Scanner {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scanner{
		records:  records,
		dedup:    dedup,
		store:    store,
		sink:     deliverySink,
		matcher:  matcher,
		interval: interval,
		logger:   log,
	}
}

// Run drives Scan on a fixed ticker until the context is cancelled.
// This method blocks and should be called in a goroutine.
func (s *Scanner) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// run immediately on startup
	s.Scan(ctx, time.Now())

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Reminder scanner stopped")
			return
		case <-ticker.C:
			s.Scan(ctx, time.Now())
		}
	}
}

// Scan performs one tick. Ticks never overlap: if a previous scan is still
// running (slow records fetch), this one is skipped and the next ticker
// fire retries.
func (s *Scanner) Scan(ctx context.Context, now time.Time) {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn("Previous scan still running, skipping tick")
		return
	}
	defer s.running.Store(false)

	ctx = trace.WithContext(ctx, trace.GenerateTraceID())
	log := logger.WithTrace(ctx, s.logger)

	start := time.Now()
	fired := s.scanMedications(ctx, now, log) + s.scanAppointments(ctx, now, log)
	metrics.RecordScanDuration(time.Since(start))

	log.Debug("Scan tick completed",
		zap.Int("fired", fired),
		zap.Duration("elapsed", time.Since(start)),
	)
}

// scanMedications handles the medication entity class for one tick. A fetch
// failure skips the whole class until the next tick; a malformed schedule
// skips only that schedule.
func (s *Scanner) scanMedications(ctx context.Context, now time.Time, log *zap.Logger) int {
	meds, err := s.records.Medications(ctx)
	if err != nil {
		transient, errType := util.ClassifyError(err)
		metrics.IncrementRecordsFetchFailure("medications", errType)
		log.Warn("Medication fetch failed, skipping class this tick",
			zap.String("error_type", errType),
			zap.Bool("transient", transient),
			zap.Error(err),
		)
		return 0
	}

	fired := 0
	for _, med := range meds {
		if !med.Active() {
			continue
		}

		candidates, err := s.matcher.EvaluateMedication(now, med)
		if err != nil {
			log.Warn("Skipping malformed medication schedule",
				zap.String("medication_id", med.ID),
				zap.Error(err),
			)
			continue
		}

		for _, c := range candidates {
			if s.fire(ctx, c, medicationNotification(med), log) {
				fired++
			}
		}
	}
	return fired
}

// scanAppointments handles the appointment entity class for one tick.
func (s *Scanner) scanAppointments(ctx context.Context, now time.Time, log *zap.Logger) int {
	appointments, err := s.records.Appointments(ctx)
	if err != nil {
		transient, errType := util.ClassifyError(err)
		metrics.IncrementRecordsFetchFailure("appointments", errType)
		log.Warn("Appointment fetch failed, skipping class this tick",
			zap.String("error_type", errType),
			zap.Bool("transient", transient),
			zap.Error(err),
		)
		return 0
	}

	fired := 0
	for _, apt := range appointments {
		if !apt.Upcoming() {
			continue
		}

		c, due, err := s.matcher.EvaluateAppointment(now, apt)
		if err != nil {
			log.Warn("Skipping malformed appointment",
				zap.String("appointment_id", apt.ID),
				zap.Error(err),
			)
			continue
		}
		if !due {
			continue
		}

		if s.fire(ctx, c, appointmentNotification(apt, window.MinutesUntil(now, c.At)), log) {
			fired++
		}
	}
	return fired
}

// fire claims the reminder key and, if this is its first occurrence,
// persists the notification and hands it to the delivery sink. The claim
// is released when the write fails so the next tick retries.
func (s *Scanner) fire(ctx context.Context, c window.Candidate, n model.Notification, log *zap.Logger) bool {
	if !s.dedup.MarkOnce(ctx, c.Key) {
		metrics.IncrementReminderSuppressed(string(c.Kind))
		return false
	}

	if _, err := s.store.Insert(ctx, &n); err != nil {
		log.Error("Failed to persist notification, releasing reminder key",
			zap.String("key", c.Key),
			zap.Error(err),
		)
		if unmarkErr := s.dedup.Unmark(ctx, c.Key); unmarkErr != nil {
			log.Error("Failed to release reminder key",
				zap.String("key", c.Key),
				zap.Error(unmarkErr),
			)
		}
		return false
	}

	metrics.IncrementReminderFired(string(c.Kind))
	log.Info("Reminder fired",
		zap.String("key", c.Key),
		zap.String("kind", string(c.Kind)),
		zap.Int64("notification_id", n.ID),
	)

	// display is decoupled from persistence: sink failures are logged
	// inside the sink and never reach here
	s.sink.Present(ctx, n)
	if unread, err := s.store.CountUnread(ctx); err == nil {
		s.sink.RenderUnread(ctx, unread)
	} else {
		log.Warn("Failed to count unread notifications", zap.Error(err))
	}

	return true
}

func medicationNotification(med model.MedicationSchedule) model.Notification {
	message := fmt.Sprintf("Time to take %s (%s)", med.DrugName, med.Dosage)
	if med.Dosage == "" {
		message = fmt.Sprintf("Time to take %s", med.DrugName)
	}
	if med.Instructions != "" {
		message += " - " + med.Instructions
	}

	return model.Notification{
		Kind:     model.KindMedication,
		Title:    "Medication Reminder",
		Message:  message,
		Priority: model.PriorityHigh,
	}
}

func appointmentNotification(apt model.Appointment, minutesUntil int) model.Notification {
	return model.Notification{
		Kind:     model.KindAppointment,
		Title:    "Upcoming Appointment",
		Message:  fmt.Sprintf("Appointment with %s in %d minutes", apt.Doctor, minutesUntil),
		Priority: model.PriorityMedium,
	}
}
