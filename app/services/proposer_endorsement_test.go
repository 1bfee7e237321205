package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Shekhar17ACS/IETE/app/models"
)

type endorsementStore struct {
	members   map[string]*models.User // key: email|membership_no
	users     map[string]*models.User
	active    int
	created   []*models.Proposer
	proposers map[string]*models.Proposer // by token
}

func (s *endorsementStore) MemberByEmailAndMembershipNo(ctx context.Context, email, membershipNo string) (*models.User, error) {
	return s.members[email+"|"+membershipNo], nil
}

func (s *endorsementStore) CountActiveProposers(ctx context.Context, userID string) (int, error) {
	return s.active, nil
}

func (s *endorsementStore) CreateProposer(ctx context.Context, p *models.Proposer) error {
	p.ID = "prop-1"
	s.created = append(s.created, p)
	return nil
}

func (s *endorsementStore) ProposerByToken(ctx context.Context, token string) (*models.Proposer, error) {
	return s.proposers[token], nil
}

func (s *endorsementStore) DecideProposer(ctx context.Context, proposerID string, status models.ProposerStatus) (bool, error) {
	for _, p := range s.proposers {
		if p.ID == proposerID && p.Status == models.ProposerPending {
			p.Status = status
			return true, nil
		}
	}
	return false, nil
}

func (s *endorsementStore) ExpireProposer(ctx context.Context, proposerID string) (bool, error) {
	for _, p := range s.proposers {
		if p.ID == proposerID && p.Status == models.ProposerPending {
			p.Status = models.ProposerExpired
			return true, nil
		}
	}
	return false, nil
}

func (s *endorsementStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.users[id], nil
}

type recordingMailer struct {
	sent []string
}

func (m *recordingMailer) Send(ctx context.Context, to, subject, body string) error {
	m.sent = append(m.sent, to+"|"+subject)
	return nil
}

func inviteFixture() *endorsementStore {
	memberID := "F-000007"
	return &endorsementStore{
		members: map[string]*models.User{
			"mentor@example.org|F-000007": {
				ID: "member-1", Name: "Asha", Email: "mentor@example.org", MembershipID: &memberID,
			},
		},
		users: map[string]*models.User{
			"applicant-1": {ID: "applicant-1", Name: "Chetan", Email: "chetan@example.org"},
		},
		proposers: map[string]*models.Proposer{},
	}
}

func newTestInviter(store *endorsementStore, mailer *recordingMailer) *ProposerInviter {
	return NewProposerInviter(store, mailer, "https://portal.example.org", zerolog.Nop())
}

func TestInviteCreatesPendingInvitation(t *testing.T) {
	store := inviteFixture()
	mailer := &recordingMailer{}
	inviter := newTestInviter(store, mailer)

	p, err := inviter.Invite(context.Background(), "applicant-1", ProposerInvite{
		MembershipNo: "F-000007",
		Email:        "mentor@example.org",
	})
	require.NoError(t, err)
	require.Equal(t, models.ProposerPending, p.Status)
	require.NotEmpty(t, p.Token)
	require.WithinDuration(t, time.Now().Add(models.ProposerExpiryDays*24*time.Hour), p.ExpiryDate, time.Minute)

	// The proposer's name falls back to the matched member's.
	require.Equal(t, "Asha", p.Name)
	require.Len(t, store.created, 1)
	require.Len(t, mailer.sent, 1)
	require.Contains(t, mailer.sent[0], "mentor@example.org|")
}

func TestInviteRequiresExistingMember(t *testing.T) {
	store := inviteFixture()
	mailer := &recordingMailer{}
	inviter := newTestInviter(store, mailer)

	_, err := inviter.Invite(context.Background(), "applicant-1", ProposerInvite{
		MembershipNo: "F-999999",
		Email:        "stranger@example.org",
	})
	require.ErrorIs(t, err, ErrProposerNotMember)
	require.Empty(t, store.created)
	require.Empty(t, mailer.sent)
}

func TestInviteRequiresMatchingPair(t *testing.T) {
	// Right email, wrong membership number: the pair must match one row.
	store := inviteFixture()
	inviter := newTestInviter(store, &recordingMailer{})

	_, err := inviter.Invite(context.Background(), "applicant-1", ProposerInvite{
		MembershipNo: "F-000008",
		Email:        "mentor@example.org",
	})
	require.ErrorIs(t, err, ErrProposerNotMember)
}

func TestInviteRejectsSelfProposal(t *testing.T) {
	store := inviteFixture()
	own := "F-000007"
	store.users["applicant-1"].MembershipID = &own
	inviter := newTestInviter(store, &recordingMailer{})

	_, err := inviter.Invite(context.Background(), "applicant-1", ProposerInvite{
		MembershipNo: "f-000007",
		Email:        "mentor@example.org",
	})
	require.ErrorIs(t, err, ErrProposerSelf)
}

func TestInviteEnforcesSlotLimit(t *testing.T) {
	store := inviteFixture()
	store.active = models.MaxProposersPerApplicant
	inviter := newTestInviter(store, &recordingMailer{})

	_, err := inviter.Invite(context.Background(), "applicant-1", ProposerInvite{
		MembershipNo: "F-000007",
		Email:        "mentor@example.org",
	})
	require.ErrorIs(t, err, ErrProposerLimit)
	require.Empty(t, store.created)
}

func actionFixture(status models.ProposerStatus, expiry time.Time) *endorsementStore {
	store := inviteFixture()
	store.proposers["tok-1"] = &models.Proposer{
		ID: "prop-1", UserID: "applicant-1", Name: "Asha",
		Status: status, Token: "tok-1", ExpiryDate: expiry,
	}
	return store
}

func TestDecideApprovesPendingInvitation(t *testing.T) {
	now := time.Now()
	store := actionFixture(models.ProposerPending, now.Add(24*time.Hour))
	notifier := &sweepNotifier{}
	decider := NewProposerDecider(store, notifier, zerolog.Nop())

	p, err := decider.Decide(context.Background(), "tok-1", true, now)
	require.NoError(t, err)
	require.Equal(t, models.ProposerApproved, p.Status)
	require.Len(t, notifier.notes, 1)
	require.Contains(t, notifier.notes[0], "applicant-1|")
}

func TestDecideRejectsPendingInvitation(t *testing.T) {
	now := time.Now()
	store := actionFixture(models.ProposerPending, now.Add(24*time.Hour))
	decider := NewProposerDecider(store, &sweepNotifier{}, zerolog.Nop())

	p, err := decider.Decide(context.Background(), "tok-1", false, now)
	require.NoError(t, err)
	require.Equal(t, models.ProposerRejected, p.Status)
}

func TestDecideUnknownToken(t *testing.T) {
	store := actionFixture(models.ProposerPending, time.Now().Add(24*time.Hour))
	decider := NewProposerDecider(store, &sweepNotifier{}, zerolog.Nop())

	_, err := decider.Decide(context.Background(), "tok-unknown", true, time.Now())
	require.ErrorIs(t, err, ErrProposerUnknownToken)
}

func TestDecideAlreadyDecided(t *testing.T) {
	now := time.Now()
	store := actionFixture(models.ProposerApproved, now.Add(24*time.Hour))
	decider := NewProposerDecider(store, &sweepNotifier{}, zerolog.Nop())

	_, err := decider.Decide(context.Background(), "tok-1", false, now)
	require.ErrorIs(t, err, ErrProposerDecided)
	require.Equal(t, models.ProposerApproved, store.proposers["tok-1"].Status)
}

func TestLateClickExpiresInvitation(t *testing.T) {
	now := time.Now()
	store := actionFixture(models.ProposerPending, now.Add(-time.Hour))
	notifier := &sweepNotifier{}
	decider := NewProposerDecider(store, notifier, zerolog.Nop())

	p, err := decider.Decide(context.Background(), "tok-1", true, now)
	require.ErrorIs(t, err, ErrProposerExpired)

	// The row is transitioned, not just reported: a click past the
	// window behaves like the sweep reaching it first.
	require.Equal(t, models.ProposerExpired, p.Status)
	require.Equal(t, models.ProposerExpired, store.proposers["tok-1"].Status)
	require.Len(t, notifier.notes, 1)
	require.Contains(t, notifier.notes[0], "applicant-1|")
}

func TestLateClickAfterSweepReportsExpiry(t *testing.T) {
	now := time.Now()
	store := actionFixture(models.ProposerExpired, now.Add(-time.Hour))
	notifier := &sweepNotifier{}
	decider := NewProposerDecider(store, notifier, zerolog.Nop())

	_, err := decider.Decide(context.Background(), "tok-1", true, now)
	require.ErrorIs(t, err, ErrProposerExpired)
	require.Empty(t, notifier.notes)
}
