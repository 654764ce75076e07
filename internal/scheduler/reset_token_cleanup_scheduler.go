package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/samaraie/linktree-backend/internal/app/repository"
	"github.com/samaraie/linktree-backend/internal/metrics"
	"github.com/samaraie/linktree-backend/pkg/logger"
)

const cleanupTimeout = time.Minute

// ResetTokenCleanupScheduler periodically purges expired password reset tokens
type ResetTokenCleanupScheduler struct {
	cron   *cron.Cron
	tokens repository.ResetTokenRepository
	spec   string
	now    func() time.Time
}

// NewResetTokenCleanupScheduler creates the cleanup scheduler. spec is a
// standard five-field cron expression, e.g. "0 * * * *" for hourly.
func NewResetTokenCleanupScheduler(tokens repository.ResetTokenRepository, spec string) *ResetTokenCleanupScheduler {
	return &ResetTokenCleanupScheduler{
		cron:   cron.New(),
		tokens: tokens,
		spec:   spec,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Start registers the cleanup job and starts the cron loop
func (s *ResetTokenCleanupScheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
		defer cancel()

		if _, err := s.RunOnce(ctx); err != nil {
			logger.Error("Failed to purge expired reset tokens from scheduler", err)
		}
	})
	if err != nil {
		logger.Error("Failed to add cron job for reset token cleanup", err, map[string]interface{}{
			"spec": s.spec,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Reset token cleanup scheduler started", map[string]interface{}{
		"spec": s.spec,
	})
	return nil
}

// RunOnce deletes every token whose expiry has passed
func (s *ResetTokenCleanupScheduler) RunOnce(ctx context.Context) (int64, error) {
	purged, err := s.tokens.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}

	metrics.ObservePurge(purged)
	if purged > 0 {
		logger.Info("Purged expired reset tokens", map[string]interface{}{
			"count": purged,
		})
	}
	return purged, nil
}

// Stop waits for a running job to finish
func (s *ResetTokenCleanupScheduler) Stop() {
	logger.Info("Stopping reset token cleanup scheduler...", nil)
	<-s.cron.Stop().Done()
	logger.Info("Reset token cleanup scheduler stopped", nil)
}
