package approval

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Shekhar17ACS/IETE/app/models"
)

type fakeRejection struct {
	applicantID string
	remark      string
	rejectedBy  []string
}

type fakeStore struct {
	config     *models.ConfigSetting
	finalized  bool
	users      map[string]*models.User
	payment    *models.Payment
	fee        *models.MembershipFee
	role       *models.Role
	roles      []*models.Role
	ledgers    []models.VoteLedger
	rejections []fakeRejection
	commits    []*Finalization
	commitErrs []error

	// events traces the transaction lifecycle across every vote.
	events    []string
	committed int
	rolled    int
}

func (s *fakeStore) Begin(ctx context.Context) (VoteTx, error) {
	s.events = append(s.events, "begin")
	return &fakeTx{s: s}, nil
}

type fakeTx struct {
	s    *fakeStore
	done bool
}

func (t *fakeTx) ConfigByType(configType string) (*models.ConfigSetting, error) {
	if t.s.config == nil {
		return nil, ErrConfigMissing
	}
	return t.s.config, nil
}

func (t *fakeTx) SaveLedger(configID string, ledger models.VoteLedger) error {
	t.s.events = append(t.s.events, "save_ledger")
	t.s.ledgers = append(t.s.ledgers, ledger)
	return nil
}

func (t *fakeTx) HasApprovedDecision(applicantID string) (bool, error) {
	return t.s.finalized, nil
}

func (t *fakeTx) GetUser(id string) (*models.User, error) {
	return t.s.users[id], nil
}

func (t *fakeTx) LatestPayment(userID string) (*models.Payment, error) {
	return t.s.payment, nil
}

func (t *fakeTx) FeeByCurrencyAndType(currency, membershipType string) (*models.MembershipFee, error) {
	return t.s.fee, nil
}

func (t *fakeTx) RoleByName(name string) (*models.Role, error) {
	return t.s.role, nil
}

func (t *fakeTx) AllRoles() ([]*models.Role, error) {
	return t.s.roles, nil
}

func (t *fakeTx) CreateRejection(applicantID, remark string, rejectedBy []string) error {
	t.s.events = append(t.s.events, "rejection")
	t.s.rejections = append(t.s.rejections, fakeRejection{applicantID, remark, rejectedBy})
	return nil
}

func (t *fakeTx) ApplyFinalization(f *Finalization) error {
	if len(t.s.commitErrs) > 0 {
		err := t.s.commitErrs[0]
		t.s.commitErrs = t.s.commitErrs[1:]
		if err != nil {
			return err
		}
	}
	t.s.events = append(t.s.events, "finalization")
	t.s.commits = append(t.s.commits, f)
	return nil
}

func (t *fakeTx) Commit() error {
	t.done = true
	t.s.committed++
	t.s.events = append(t.s.events, "commit")
	return nil
}

func (t *fakeTx) Rollback() error {
	if !t.done {
		t.s.rolled++
		t.s.events = append(t.s.events, "rollback")
	}
	return nil
}

type fakeAlloc struct {
	ids    []string
	calls  int
	prefix string
}

func (a *fakeAlloc) Allocate(ctx context.Context, prefix string) (string, error) {
	a.prefix = prefix
	id := a.ids[a.calls]
	a.calls++
	return id, nil
}

type note struct {
	userID  string
	subject string
}

type fakeNotifier struct {
	notes []note
}

func (n *fakeNotifier) Notify(ctx context.Context, user *models.User, subject, message string) {
	n.notes = append(n.notes, note{user.ID, subject})
}

func (n *fakeNotifier) sentTo(userID string) int {
	count := 0
	for _, note := range n.notes {
		if note.userID == userID {
			count++
		}
	}
	return count
}

const (
	applicantID = "applicant-1"
	approver1   = "approver-1"
	approver2   = "approver-2"
)

func flatFixture(percent float64) *fakeStore {
	mt := "Fellow Member"
	return &fakeStore{
		config: &models.ConfigSetting{
			ID:              "cfg-1",
			Type:            "membership",
			ApprovalPercent: percent,
			Value:           models.VoteLedger{},
			Approvers: []*models.User{
				{ID: approver1, Name: "Asha", Email: "asha@example.org"},
				{ID: approver2, Name: "Bharat", Email: "bharat@example.org"},
			},
		},
		users: map[string]*models.User{
			applicantID: {ID: applicantID, Name: "Chetan", Email: "chetan@example.org"},
			approver1:   {ID: approver1, Name: "Asha"},
			approver2:   {ID: approver2, Name: "Bharat"},
		},
		payment: &models.Payment{UserID: applicantID, MembershipType: &mt, Currency: "INR"},
		fee:     &models.MembershipFee{MembershipType: "Fellow Member", FeeAmount: 5000, Currency: "INR"},
		role:    &models.Role{ID: "role-fm", Name: "Fellow Member"},
	}
}

func newTestEngine(store *fakeStore, alloc *fakeAlloc, notifier *fakeNotifier) *Engine {
	return NewEngine(store, alloc, notifier, zerolog.Nop())
}

func vote(t *testing.T, e *Engine, approverID string, approved bool, remark string) (*VoteOutcome, error) {
	t.Helper()
	return e.RecordVote(context.Background(), VoteInput{
		ApplicantID: applicantID,
		ApproverID:  approverID,
		ConfigType:  "membership",
		Approved:    approved,
		Remark:      remark,
	})
}

func TestVoteUnauthorized(t *testing.T) {
	store := flatFixture(100)
	e := newTestEngine(store, &fakeAlloc{}, &fakeNotifier{})

	_, err := vote(t, e, "stranger", true, "")
	require.ErrorIs(t, err, ErrUnauthorized)
	require.Empty(t, store.ledgers)
}

func TestVoteAfterFinalizationRejected(t *testing.T) {
	store := flatFixture(100)
	store.finalized = true
	e := newTestEngine(store, &fakeAlloc{}, &fakeNotifier{})

	_, err := vote(t, e, approver1, true, "")
	require.ErrorIs(t, err, ErrAlreadyFinalized)
}

func TestVoteMissingConfig(t *testing.T) {
	store := flatFixture(100)
	store.config = nil
	e := newTestEngine(store, &fakeAlloc{}, &fakeNotifier{})

	_, err := vote(t, e, approver1, true, "")
	require.ErrorIs(t, err, ErrConfigMissing)
}

func TestFlatVoteBelowThreshold(t *testing.T) {
	store := flatFixture(100)
	notifier := &fakeNotifier{}
	e := newTestEngine(store, &fakeAlloc{}, notifier)

	outcome, err := vote(t, e, approver1, true, "looks good")
	require.NoError(t, err)
	require.False(t, outcome.Finalized)
	require.InDelta(t, 50.0, outcome.ApprovalPercent, 0.001)

	// Ledger persisted with the vote and remark.
	require.NotEmpty(t, store.ledgers)
	record := store.ledgers[len(store.ledgers)-1][applicantID]
	require.True(t, record.Votes[approver1])
	require.Equal(t, "looks good", record.Remarks[approver1])

	// The approver who has not voted is re-notified; the applicant gets
	// an interim status email.
	require.Equal(t, 1, notifier.sentTo(approver2))
	require.Equal(t, 1, notifier.sentTo(applicantID))
	require.Zero(t, notifier.sentTo(approver1))
}

func TestFlatFinalization(t *testing.T) {
	store := flatFixture(100)
	alloc := &fakeAlloc{ids: []string{"FM-000001"}}
	notifier := &fakeNotifier{}
	e := newTestEngine(store, alloc, notifier)

	_, err := vote(t, e, approver1, true, "strong candidate")
	require.NoError(t, err)

	outcome, err := vote(t, e, approver2, true, "agreed")
	require.NoError(t, err)
	require.True(t, outcome.Finalized)
	require.Equal(t, "FM-000001", outcome.MembershipID)
	require.InDelta(t, 100.0, outcome.ApprovalPercent, 0.001)

	require.Equal(t, "FM", alloc.prefix)
	require.Len(t, store.commits, 1)
	f := store.commits[0]
	require.Equal(t, applicantID, f.ApplicantID)
	require.Equal(t, "role-fm", f.RoleID)
	require.Equal(t, "Asha: strong candidate\nBharat: agreed", f.Remark)
	require.ElementsMatch(t, []string{approver1, approver2}, f.ApprovedBy)

	// The applicant's ledger entry is cleared in the committed ledger.
	_, open := f.Ledger[applicantID]
	require.False(t, open)

	// Applicant and both approvers are told about the decision.
	require.GreaterOrEqual(t, notifier.sentTo(applicantID), 1)
	require.GreaterOrEqual(t, notifier.sentTo(approver1), 1)
	require.GreaterOrEqual(t, notifier.sentTo(approver2), 1)
}

func TestRejectionRowsAccumulate(t *testing.T) {
	store := flatFixture(100)
	e := newTestEngine(store, &fakeAlloc{}, &fakeNotifier{})

	_, err := vote(t, e, approver1, false, "incomplete records")
	require.NoError(t, err)
	_, err = vote(t, e, approver2, false, "agree with Asha")
	require.NoError(t, err)

	require.Len(t, store.rejections, 2)
	require.Equal(t, "Asha: incomplete records", store.rejections[0].remark)
	require.ElementsMatch(t, []string{approver1}, store.rejections[0].rejectedBy)
	require.Equal(t, "Asha: incomplete records\nBharat: agree with Asha", store.rejections[1].remark)
	require.ElementsMatch(t, []string{approver1, approver2}, store.rejections[1].rejectedBy)
}

func TestRejectionDoesNotFinalize(t *testing.T) {
	store := flatFixture(50)
	e := newTestEngine(store, &fakeAlloc{}, &fakeNotifier{})

	outcome, err := vote(t, e, approver1, false, "")
	require.NoError(t, err)
	require.False(t, outcome.Finalized)
	require.Empty(t, store.commits)
	require.Len(t, store.rejections, 1)
}

func hierarchyFixture(percent float64) *fakeStore {
	store := flatFixture(percent)
	store.config.Hierarchy = true

	senior := &models.Role{ID: "role-senior", Name: "Council Chair"}
	juniorParent := "role-senior"
	junior := &models.Role{ID: "role-junior", Name: "Division Head", ParentID: &juniorParent}

	store.config.Approvers[0].Role = junior
	store.config.Approvers[1].Role = senior
	store.roles = []*models.Role{junior, senior, store.role}
	return store
}

func TestHierarchyBlocksOnLowerTier(t *testing.T) {
	store := hierarchyFixture(50)
	notifier := &fakeNotifier{}
	e := newTestEngine(store, &fakeAlloc{ids: []string{"FM-000001"}}, notifier)

	// The senior approver votes first. The percentage threshold is met,
	// but the junior tier has not voted, so nothing finalizes.
	outcome, err := vote(t, e, approver2, true, "")
	require.NoError(t, err)
	require.False(t, outcome.Finalized)
	require.Empty(t, store.commits)

	// Exactly the blocking tier's un-voted member is prompted.
	require.Equal(t, 1, notifier.sentTo(approver1))
}

func TestHierarchyFinalizesAfterFullWalk(t *testing.T) {
	store := hierarchyFixture(100)
	e := newTestEngine(store, &fakeAlloc{ids: []string{"FM-000001"}}, &fakeNotifier{})

	_, err := vote(t, e, approver1, true, "")
	require.NoError(t, err)
	outcome, err := vote(t, e, approver2, true, "")
	require.NoError(t, err)
	require.True(t, outcome.Finalized)
	require.Len(t, store.commits, 1)
}

func TestHierarchySkipsTiersWithoutApprovers(t *testing.T) {
	store := hierarchyFixture(100)

	// Insert an intermediate role nobody holds between junior and senior.
	midParent := "role-senior"
	mid := &models.Role{ID: "role-mid", Name: "Regional Secretary", ParentID: &midParent}
	juniorParent := "role-mid"
	store.config.Approvers[0].Role.ParentID = &juniorParent
	store.roles = append(store.roles, mid)

	e := newTestEngine(store, &fakeAlloc{ids: []string{"FM-000001"}}, &fakeNotifier{})

	_, err := vote(t, e, approver1, true, "")
	require.NoError(t, err)
	outcome, err := vote(t, e, approver2, true, "")
	require.NoError(t, err)
	require.True(t, outcome.Finalized)
}

func TestFinalizeRequiresMembershipType(t *testing.T) {
	store := flatFixture(50)
	store.payment = nil
	e := newTestEngine(store, &fakeAlloc{}, &fakeNotifier{})

	_, err := vote(t, e, approver1, true, "")
	require.ErrorIs(t, err, ErrMembershipTypeMissing)
}

func TestFinalizeRequiresFee(t *testing.T) {
	store := flatFixture(50)
	store.fee = nil
	e := newTestEngine(store, &fakeAlloc{}, &fakeNotifier{})

	_, err := vote(t, e, approver1, true, "")
	require.ErrorIs(t, err, ErrFeeNotFound)
}

func TestFinalizeRequiresRole(t *testing.T) {
	store := flatFixture(50)
	store.role = nil
	e := newTestEngine(store, &fakeAlloc{}, &fakeNotifier{})

	_, err := vote(t, e, approver1, true, "")
	require.ErrorIs(t, err, ErrRoleNotFound)
}

func TestFinalizeReusesExistingMembershipID(t *testing.T) {
	store := flatFixture(50)
	existing := "FM-000042"
	store.users[applicantID].MembershipID = &existing
	alloc := &fakeAlloc{}
	e := newTestEngine(store, alloc, &fakeNotifier{})

	outcome, err := vote(t, e, approver1, true, "")
	require.NoError(t, err)
	require.True(t, outcome.Finalized)
	require.Equal(t, "FM-000042", outcome.MembershipID)
	require.Zero(t, alloc.calls)
}

func TestFinalizeRetriesOnDuplicateMembershipID(t *testing.T) {
	store := flatFixture(50)
	store.commitErrs = []error{ErrDuplicateMembershipID}
	alloc := &fakeAlloc{ids: []string{"FM-000001", "FM-000002"}}
	e := newTestEngine(store, alloc, &fakeNotifier{})

	outcome, err := vote(t, e, approver1, true, "")
	require.NoError(t, err)
	require.True(t, outcome.Finalized)
	require.Equal(t, "FM-000002", outcome.MembershipID)
	require.Equal(t, 2, alloc.calls)
}

func TestVoteRunsInOneTransaction(t *testing.T) {
	store := flatFixture(100)
	e := newTestEngine(store, &fakeAlloc{ids: []string{"FM-000001"}}, &fakeNotifier{})

	_, err := vote(t, e, approver1, true, "")
	require.NoError(t, err)
	outcome, err := vote(t, e, approver2, true, "")
	require.NoError(t, err)
	require.True(t, outcome.Finalized)

	// Each vote is bracketed by begin/commit, with the ledger save and
	// the finalization inside the same transaction as the config read.
	require.Equal(t, []string{
		"begin", "save_ledger", "commit",
		"begin", "save_ledger", "finalization", "commit",
	}, store.events)
	require.Equal(t, 2, store.committed)
	require.Zero(t, store.rolled)
}

func TestFailedVoteRollsBack(t *testing.T) {
	store := flatFixture(100)
	e := newTestEngine(store, &fakeAlloc{}, &fakeNotifier{})

	_, err := vote(t, e, "stranger", true, "")
	require.ErrorIs(t, err, ErrUnauthorized)
	require.Zero(t, store.committed)
	require.Equal(t, 1, store.rolled)
}

func TestTypePrefix(t *testing.T) {
	require.Equal(t, "FM", TypePrefix("Fellow Member"))
	require.Equal(t, "AM", TypePrefix("associate member"))
	require.Equal(t, "A", TypePrefix("Associate"))
	require.Equal(t, "DHM", TypePrefix("Diamond Honorary Member"))
}
