package services

import (
	"context"
	"time"

	"github.com/Shekhar17ACS/IETE/app/config"
)

// StartScheduler starts the background task scheduler.
func StartScheduler(sweeper *ProposerSweeper) {
	go func() {
		config.Log.Info().Msg("Scheduler started")
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			now := time.Now()

			// Trigger at 00:05 daily
			if now.Hour() == 0 && now.Minute() == 5 {
				config.Log.Info().Msg("Triggering scheduled tasks [00:05]")

				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
				if _, err := sweeper.Sweep(ctx, now); err != nil {
					config.Log.Error().Err(err).Msg("Proposer expiry sweep failed")
				}
				cancel()
			}
		}
	}()
}
