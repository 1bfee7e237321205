package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Shekhar17ACS/IETE/app/models"
)

type fakeProposerStore struct {
	proposers map[string]*models.Proposer
	users     map[string]*models.User
}

func (s *fakeProposerStore) OverdueProposers(ctx context.Context, now time.Time) ([]*models.Proposer, error) {
	var out []*models.Proposer
	for _, p := range s.proposers {
		if p.Status == models.ProposerPending && p.ExpiryDate.Before(now) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakeProposerStore) ExpireProposer(ctx context.Context, proposerID string) (bool, error) {
	p := s.proposers[proposerID]
	if p == nil || p.Status != models.ProposerPending {
		return false, nil
	}
	p.Status = models.ProposerExpired
	return true, nil
}

func (s *fakeProposerStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.users[id], nil
}

type sweepNotifier struct {
	notes []string
}

func (n *sweepNotifier) Notify(ctx context.Context, user *models.User, subject, message string) {
	n.notes = append(n.notes, user.ID+"|"+subject)
}

func sweepFixture(now time.Time) *fakeProposerStore {
	return &fakeProposerStore{
		proposers: map[string]*models.Proposer{
			"overdue": {
				ID: "overdue", UserID: "applicant-1", Name: "Mentor One",
				Status: models.ProposerPending, ExpiryDate: now.Add(-time.Hour),
			},
			"fresh": {
				ID: "fresh", UserID: "applicant-1", Name: "Mentor Two",
				Status: models.ProposerPending, ExpiryDate: now.Add(24 * time.Hour),
			},
			"decided": {
				ID: "decided", UserID: "applicant-2", Name: "Mentor Three",
				Status: models.ProposerApproved, ExpiryDate: now.Add(-time.Hour),
			},
		},
		users: map[string]*models.User{
			"applicant-1": {ID: "applicant-1", Name: "Chetan", Email: "chetan@example.org"},
			"applicant-2": {ID: "applicant-2", Name: "Deepa", Email: "deepa@example.org"},
		},
	}
}

func TestSweepExpiresOnlyOverduePending(t *testing.T) {
	now := time.Now()
	store := sweepFixture(now)
	notifier := &sweepNotifier{}
	sweeper := NewProposerSweeper(store, notifier, zerolog.Nop())

	expired, err := sweeper.Sweep(context.Background(), now)
	require.NoError(t, err)
	require.Equal(t, 1, expired)

	require.Equal(t, models.ProposerExpired, store.proposers["overdue"].Status)
	require.Equal(t, models.ProposerPending, store.proposers["fresh"].Status)
	require.Equal(t, models.ProposerApproved, store.proposers["decided"].Status)

	// Only the affected applicant is told.
	require.Len(t, notifier.notes, 1)
	require.Contains(t, notifier.notes[0], "applicant-1|")
}

func TestSweepIsIdempotent(t *testing.T) {
	now := time.Now()
	store := sweepFixture(now)
	notifier := &sweepNotifier{}
	sweeper := NewProposerSweeper(store, notifier, zerolog.Nop())

	_, err := sweeper.Sweep(context.Background(), now)
	require.NoError(t, err)

	expired, err := sweeper.Sweep(context.Background(), now)
	require.NoError(t, err)
	require.Zero(t, expired)
	require.Len(t, notifier.notes, 1)
}

// staleReadStore returns an overdue snapshot taken before a concurrent
// decision landed.
type staleReadStore struct {
	*fakeProposerStore
	stale []*models.Proposer
}

func (s *staleReadStore) OverdueProposers(ctx context.Context, now time.Time) ([]*models.Proposer, error) {
	return s.stale, nil
}

func TestSweepLosesRaceToConcurrentDecision(t *testing.T) {
	now := time.Now()
	store := sweepFixture(now)

	// Snapshot sees the row as pending; the proposer then approves
	// before the sweep reaches the update.
	snapshot := *store.proposers["overdue"]
	store.proposers["overdue"].Status = models.ProposerApproved

	notifier := &sweepNotifier{}
	sweeper := NewProposerSweeper(&staleReadStore{store, []*models.Proposer{&snapshot}}, notifier, zerolog.Nop())

	expired, err := sweeper.Sweep(context.Background(), now)
	require.NoError(t, err)
	require.Zero(t, expired)
	require.Empty(t, notifier.notes)
	require.Equal(t, models.ProposerApproved, store.proposers["overdue"].Status)
}
