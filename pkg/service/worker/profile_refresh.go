package worker

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/watchtower-lab/chanpulse/pkg/domain/interfaces"
	"github.com/watchtower-lab/chanpulse/pkg/domain/model"
	slacksvc "github.com/watchtower-lab/chanpulse/pkg/service/slack"
	"github.com/watchtower-lab/chanpulse/pkg/utils/logging"
)

// ProfileRefreshWorker periodically bulk-loads all workspace users into
// the profile cache so that crawl results stay populated without
// per-message lookups.
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
// - Refresh upserts only; cache entries are never deleted, so a profile
//   delivered by a user_change event survives even if the listing lags
type ProfileRefreshWorker struct {
	repo     interfaces.Repository
	svc      slacksvc.Service
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewProfileRefreshWorker creates a new worker for refreshing profiles
func NewProfileRefreshWorker(repo interfaces.Repository, svc slacksvc.Service, interval time.Duration) *ProfileRefreshWorker {
	return &ProfileRefreshWorker{
		repo:     repo,
		svc:      svc,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background refresh loop. The initial sync runs in
// the background and does not block server startup.
func (w *ProfileRefreshWorker) Start(ctx context.Context) error {
	logging.Default().Info("profile refresh worker starting",
		"interval", w.interval.String())

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *ProfileRefreshWorker) Stop() {
	logging.Default().Info("profile refresh worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("profile refresh worker stopped")
}

// run is the main worker loop (runs in goroutine)
func (w *ProfileRefreshWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	if err := w.Refresh(ctx); err != nil {
		logging.Default().Error("initial profile refresh failed (will retry next interval)",
			"error", err.Error())
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.Refresh(ctx); err != nil {
				// Log error but continue worker
				logging.Default().Error("profile refresh failed (will retry next interval)",
					"error", err.Error())
			}

		case <-w.stopCh:
			return

		case <-ctx.Done():
			logging.Default().Info("profile refresh worker context cancelled")
			return
		}
	}
}

// Refresh performs a single refresh cycle: list all workspace users and
// upsert them into the cache
func (w *ProfileRefreshWorker) Refresh(ctx context.Context) error {
	startTime := time.Now()

	existing, err := w.repo.Profile().GetMetadata(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to get existing sync metadata")
	}

	// Record the attempt before touching the API so a failed refresh is
	// still visible in the metadata
	attempt := &model.ProfileSyncMetadata{
		LastRefreshSuccess: existing.LastRefreshSuccess,
		LastRefreshAttempt: startTime,
		ProfileCount:       existing.ProfileCount,
	}
	if err := w.repo.Profile().SaveMetadata(ctx, attempt); err != nil {
		return goerr.Wrap(err, "failed to save refresh attempt metadata")
	}

	users, err := w.svc.ListUsers(ctx)
	if err != nil {
		// Cached profiles are preserved on failure
		return goerr.Wrap(err, "failed to list workspace users")
	}

	profiles := make([]*model.Profile, len(users))
	for i, u := range users {
		profiles[i] = model.NewProfile(model.ProfileSource{
			ID:          u.ID,
			Name:        u.Name,
			RealName:    u.RealName,
			DisplayName: u.DisplayName,
			Email:       u.Email,
			AvatarURL:   u.AvatarURL,
			IsBot:       u.IsBot,
			IsAdmin:     u.IsAdmin,
			TeamID:      u.TeamID,
		}, startTime)
	}

	if err := w.repo.Profile().SaveMany(ctx, profiles); err != nil {
		return goerr.Wrap(err, "failed to save profiles", goerr.V("count", len(profiles)))
	}

	success := &model.ProfileSyncMetadata{
		LastRefreshSuccess: startTime,
		LastRefreshAttempt: startTime,
		ProfileCount:       len(profiles),
	}
	if err := w.repo.Profile().SaveMetadata(ctx, success); err != nil {
		return goerr.Wrap(err, "failed to save refresh success metadata")
	}

	logging.Default().Info("profile refresh completed",
		"count", len(profiles),
		"duration", time.Since(startTime).String())

	return nil
}
