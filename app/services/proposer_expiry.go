package services

import (
	"context"

	"time"

	"github.com/rs/zerolog"

	"github.com/Shekhar17ACS/IETE/app/models"
	"github.com/Shekhar17ACS/IETE/app/services/notify"
)

// ProposerStore is the persistence surface of the expiry sweep.
type ProposerStore interface {
	// OverdueProposers returns proposer requests still pending whose
	// expiry date has passed.
	OverdueProposers(ctx context.Context, now time.Time) ([]*models.Proposer, error)

	// ExpireProposer flips a pending request to expired. It reports
	// false when the row was no longer pending, so a concurrent decision
	// wins over the sweep.
	ExpireProposer(ctx context.Context, proposerID string) (bool, error)

	GetUser(ctx context.Context, id string) (*models.User, error)
}

// ProposerSweeper expires overdue proposer requests and informs the
// affected applicants. Sweeps are idempotent.
type ProposerSweeper struct {
	store    ProposerStore
	notifier Notifier
	log      zerolog.Logger
}

// Notifier mirrors the approval engine's notification surface.
type Notifier interface {
	Notify(ctx context.Context, user *models.User, subject, message string)
}

func NewProposerSweeper(store ProposerStore, notifier Notifier, log zerolog.Logger) *ProposerSweeper {
	return &ProposerSweeper{store: store, notifier: notifier, log: log}
}

// Sweep expires every pending proposer request past its expiry date and
// returns how many rows were transitioned.
func (s *ProposerSweeper) Sweep(ctx context.Context, now time.Time) (int, error) {
	overdue, err := s.store.OverdueProposers(ctx, now)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, p := range overdue {
		ok, err := s.store.ExpireProposer(ctx, p.ID)
		if err != nil {
			s.log.Error().Err(err).Str("proposer", p.ID).Msg("Failed to expire proposer request")
			continue
		}
		if !ok {
			continue
		}
		expired++

		applicant, err := s.store.GetUser(ctx, p.UserID)
		if err != nil {
			s.log.Error().Err(err).Str("user", p.UserID).Msg("Failed to load applicant for expiry notice")
			continue
		}
		subject, msg := notify.ProposerExpiredEmail(applicant.Name, p.Name)
		s.notifier.Notify(ctx, applicant, subject, msg)
	}

	if expired > 0 {
		s.log.Info().Int("expired", expired).Msg("Proposer expiry sweep completed")
	}
	return expired, nil
}
