// Package jobs runs periodic maintenance on the review data.
package jobs

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const reconcileSQL = `UPDATE users SET comments = (
	(SELECT COUNT(*) FROM professor_reviews pr WHERE pr.user_id = users.id) +
	(SELECT COUNT(*) FROM subject_reviews sr WHERE sr.user_id = users.id)
)`

// ReconcileComments recomputes every user's comment count from the review
// tables and returns how many users were touched.
func ReconcileComments(ctx context.Context, db *gorm.DB) (int64, error) {
	res := db.WithContext(ctx).Exec(reconcileSQL)
	if res.Error != nil {
		return 0, fmt.Errorf("reconcile comments: %w", res.Error)
	}
	return res.RowsAffected, nil
}

type Scheduler struct {
	cron   *cron.Cron
	db     *gorm.DB
	logger zerolog.Logger
}

func NewScheduler(db *gorm.DB, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		db:     db,
		logger: logger.With().Str("component", "jobs").Logger(),
	}
}

// Start schedules the reconcile job. An empty schedule leaves it off.
func (s *Scheduler) Start(schedule string) error {
	if schedule == "" {
		s.logger.Info().Msg("comment reconciliation disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(schedule, s.reconcile); err != nil {
		return fmt.Errorf("invalid reconcile schedule %q: %w", schedule, err)
	}
	s.cron.Start()
	s.logger.Info().Str("schedule", schedule).Msg("comment reconciliation scheduled")
	return nil
}

// Stop waits for a running job to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

func (s *Scheduler) reconcile() {
	n, err := ReconcileComments(context.Background(), s.db)
	if err != nil {
		s.logger.Error().Err(err).Msg("comment reconciliation failed")
		return
	}
	s.logger.Info().Int64("users", n).Msg("comment counts reconciled")
}
