package worker

import (
	"context"
	"time"

	"github.com/edventure/edventure-backend/internal/connectivity"
	"github.com/edventure/edventure-backend/internal/engine"
	"github.com/rs/zerolog"
)

// SyncRetryInterval is the idle retry period for a non-empty offline queue.
const SyncRetryInterval = 5 * time.Minute

// SyncWorker drains offline-queued exam submissions. It syncs once on
// startup, immediately after every offline-to-online transition, and on a
// slow periodic sweep in case a recovery signal was missed.
type SyncWorker struct {
	pipeline *engine.Pipeline
	monitor  *connectivity.Monitor
	log      zerolog.Logger
}

func NewSyncWorker(pipeline *engine.Pipeline, monitor *connectivity.Monitor, log zerolog.Logger) *SyncWorker {
	return &SyncWorker{
		pipeline: pipeline,
		monitor:  monitor,
		log:      log.With().Str("component", "sync_worker").Logger(),
	}
}

func (w *SyncWorker) Start(ctx context.Context) {
	w.log.Info().Msg("SyncWorker started")

	recovered := w.monitor.Recovered()
	ticker := time.NewTicker(SyncRetryInterval)
	defer ticker.Stop()

	w.sync(ctx)

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Final sync attempt...")
			w.sync(context.Background())
			return

		case <-recovered:
			w.log.Info().Msg("Connectivity recovered, syncing queued exams")
			w.sync(ctx)

		case <-ticker.C:
			w.sync(ctx)
		}
	}
}

func (w *SyncWorker) sync(ctx context.Context) {
	if !w.monitor.Online() {
		return
	}

	synced, err := w.pipeline.SyncQueued(ctx)
	if err != nil {
		w.log.Warn().Err(err).Int("synced", synced).Msg("Sync stopped, queue preserved")
		return
	}
	if synced > 0 {
		w.log.Info().Int("synced", synced).Msg("Offline exams synced")
	}
}
