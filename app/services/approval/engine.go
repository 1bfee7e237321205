package approval

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Shekhar17ACS/IETE/app/models"
	"github.com/Shekhar17ACS/IETE/app/services/notify"
)

// ErrDuplicateMembershipID is returned by VoteTx.ApplyFinalization (or
// Commit) when the allocated membership ID lost a race to a concurrent
// writer. The engine retries allocation; callers never see this error.
var ErrDuplicateMembershipID = errors.New("membership id already taken")

// allocationRetries bounds how often a vote is replayed after an
// allocation race before giving up.
const allocationRetries = 3

// Store opens the transaction a single vote runs in. The production
// implementation lives in app/database.
type Store interface {
	// Begin starts a vote transaction. The transaction locks the config
	// row when ConfigByType runs and holds the lock until Commit or
	// Rollback, so concurrent votes on the same workflow serialize at
	// the database even across processes.
	Begin(ctx context.Context) (VoteTx, error)
}

// VoteTx is the transactional persistence surface of one vote. The
// ledger read-modify-write, any decision rows and the finalization all
// commit or roll back together.
type VoteTx interface {
	// ConfigByType loads the approval configuration for a workflow type,
	// with the approver set and their roles attached, locking the row
	// for the rest of the transaction. Returns ErrConfigMissing when no
	// configuration exists.
	ConfigByType(configType string) (*models.ConfigSetting, error)

	// SaveLedger persists the config's vote ledger.
	SaveLedger(configID string, ledger models.VoteLedger) error

	// HasApprovedDecision reports whether a finalized (approved) decision
	// record already exists for the applicant.
	HasApprovedDecision(applicantID string) (bool, error)

	GetUser(id string) (*models.User, error)

	// LatestPayment returns the applicant's most recent payment, or nil
	// when the applicant has none.
	LatestPayment(userID string) (*models.Payment, error)

	// FeeByCurrencyAndType matches a rate-card row by currency and a
	// case-insensitive membership-type substring; nil when no row matches.
	FeeByCurrencyAndType(currency, membershipType string) (*models.MembershipFee, error)

	// RoleByName matches a role by name, case-insensitively; nil when absent.
	RoleByName(name string) (*models.Role, error)

	AllRoles() ([]*models.Role, error)

	// CreateRejection inserts an interim rejected decision record.
	CreateRejection(applicantID, remark string, rejectedBy []string) error

	// ApplyFinalization writes the whole finalization: role + membership
	// ID assignment, the approved decision record, and the ledger reset.
	// Returns ErrDuplicateMembershipID if the membership ID collided.
	ApplyFinalization(f *Finalization) error

	Commit() error
	Rollback() error
}

// IDAllocator issues collision-free sequential membership IDs per prefix.
type IDAllocator interface {
	Allocate(ctx context.Context, prefix string) (string, error)
}

// Notifier delivers a message to a user, best effort. Implementations
// must never fail the business operation.
type Notifier interface {
	Notify(ctx context.Context, user *models.User, subject, message string)
}

// Finalization is the atomic unit committed when an application crosses
// its approval threshold.
type Finalization struct {
	ApplicantID  string
	MembershipID string
	RoleID       string
	ConfigID     string
	Ledger       models.VoteLedger
	Remark       string
	ApprovedBy   []string
}

// VoteInput is one approver action on an application.
type VoteInput struct {
	ApplicantID string
	ApproverID  string
	ConfigType  string
	Approved    bool
	Remark      string
}

// VoteOutcome reports what a recorded vote led to.
type VoteOutcome struct {
	Finalized       bool               `json:"finalized"`
	ApprovalPercent float64            `json:"approval_percent"`
	MembershipID    string             `json:"membership_id,omitempty"`
	ActionBy        string             `json:"action_by"`
	Record          *models.VoteRecord `json:"approvers_status"`
}

type queuedNote struct {
	user    *models.User
	subject string
	message string
}

// Engine consumes votes, evaluates gating and thresholds, and decides
// whether to finalize, notify, or record a rejection. It is the sole
// mutator of the vote ledger and of decision records.
type Engine struct {
	store    Store
	alloc    IDAllocator
	notifier Notifier
	log      zerolog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewEngine creates a workflow engine.
func NewEngine(store Store, alloc IDAllocator, notifier Notifier, log zerolog.Logger) *Engine {
	return &Engine{
		store:    store,
		alloc:    alloc,
		notifier: notifier,
		log:      log,
		locks:    make(map[string]*sync.Mutex),
	}
}

// applicantLock returns the mutex guarding one applicant's ledger cell.
func (e *Engine) applicantLock(applicantID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[applicantID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[applicantID] = l
	}
	return l
}

// RecordVote records one approver's vote. The vote runs in a single
// store transaction under a per-applicant lock; notifications are
// dispatched only after the lock is released and the transaction has
// committed.
func (e *Engine) RecordVote(ctx context.Context, in VoteInput) (*VoteOutcome, error) {
	lock := e.applicantLock(in.ApplicantID)
	lock.Lock()
	outcome, notes, err := e.recordVoteLocked(ctx, in)
	lock.Unlock()

	for _, n := range notes {
		e.notifier.Notify(ctx, n.user, n.subject, n.message)
	}
	return outcome, err
}

// recordVoteLocked replays the whole vote transaction when a membership
// ID allocation lost a race, a bounded number of times.
func (e *Engine) recordVoteLocked(ctx context.Context, in VoteInput) (*VoteOutcome, []queuedNote, error) {
	var (
		outcome *VoteOutcome
		notes   []queuedNote
		err     error
	)
	for attempt := 0; attempt < allocationRetries; attempt++ {
		outcome, notes, err = e.voteOnce(ctx, in)
		if !errors.Is(err, ErrDuplicateMembershipID) {
			return outcome, notes, err
		}
		e.log.Warn().Str("applicant", in.ApplicantID).Msg("membership id collided, replaying vote")
	}
	return nil, nil, err
}

func (e *Engine) voteOnce(ctx context.Context, in VoteInput) (*VoteOutcome, []queuedNote, error) {
	tx, err := e.store.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	// Loading the config first takes the row lock, serializing
	// concurrent votes on this workflow across processes.
	config, err := tx.ConfigByType(in.ConfigType)
	if err != nil {
		return nil, nil, err
	}

	finalized, err := tx.HasApprovedDecision(in.ApplicantID)
	if err != nil {
		return nil, nil, err
	}
	if finalized {
		return nil, nil, ErrAlreadyFinalized
	}
	if !config.IsApprover(in.ApproverID) {
		return nil, nil, ErrUnauthorized
	}

	applicant, err := tx.GetUser(in.ApplicantID)
	if err != nil {
		return nil, nil, err
	}
	actor, err := tx.GetUser(in.ApproverID)
	if err != nil {
		return nil, nil, err
	}

	if config.Value == nil {
		config.Value = make(models.VoteLedger)
	}
	record := config.Value.Record(in.ApplicantID)
	record.Votes[in.ApproverID] = in.Approved
	if remark := strings.TrimSpace(in.Remark); remark != "" {
		record.Remarks[in.ApproverID] = remark
	}
	if err := tx.SaveLedger(config.ID, config.Value); err != nil {
		return nil, nil, err
	}

	totalApprovers := len(config.Approvers)
	percent := float64(record.ApprovedCount()) / float64(totalApprovers) * 100

	var notes []queuedNote
	finalize := false

	if config.Hierarchy {
		blocked, pending, err := e.hierarchyGate(tx, config, record, applicant)
		if err != nil {
			return nil, nil, err
		}
		notes = append(notes, pending...)
		finalize = !blocked && percent >= config.ApprovalPercent
	} else {
		// Flat mode re-notifies every approver who has not voted yet on
		// each vote event. Known amplification, kept as designed.
		for _, u := range config.Approvers {
			if !record.HasVoted(u.ID) {
				subject, msg := notify.PendingApproverEmail(u.Name, applicant.Name)
				notes = append(notes, queuedNote{u, subject, msg})
			}
		}
		finalize = percent >= config.ApprovalPercent
	}

	if finalize {
		outcome, finalNotes, err := e.finalize(ctx, tx, config, record, applicant, actor, percent)
		if err != nil {
			return nil, nil, err
		}
		if err := tx.Commit(); err != nil {
			return nil, nil, err
		}
		return outcome, append(notes, finalNotes...), nil
	}

	if !in.Approved {
		remark := joinRemarks(config.Approvers, record, false)
		rejectedBy := votersWith(record, false)
		if err := tx.CreateRejection(in.ApplicantID, remark, rejectedBy); err != nil {
			return nil, nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}

	subject, msg := notify.ApplicantInterimStatusEmail(applicant.Name, actor.Name, in.Approved)
	notes = append(notes, queuedNote{applicant, subject, msg})

	return &VoteOutcome{
		Finalized:       false,
		ApprovalPercent: percent,
		ActionBy:        actor.Name,
		Record:          record,
	}, notes, nil
}

// hierarchyGate walks the approver tiers bottom-up. It reports blocked
// when a tier still has un-voted members, queueing pending-action notes
// for exactly those members; higher tiers are not considered until every
// lower tier is fully voted. Tiers with no assigned approvers are skipped.
func (e *Engine) hierarchyGate(tx VoteTx, config *models.ConfigSetting, record *models.VoteRecord, applicant *models.User) (bool, []queuedNote, error) {
	roleToUsers := make(map[string][]*models.User)
	var approverRoles []*models.Role
	for _, u := range config.Approvers {
		if u.Role == nil {
			continue
		}
		if _, seen := roleToUsers[u.Role.ID]; !seen {
			approverRoles = append(approverRoles, u.Role)
		}
		roleToUsers[u.Role.ID] = append(roleToUsers[u.Role.ID], u)
	}

	allRoles, err := tx.AllRoles()
	if err != nil {
		return false, nil, err
	}
	chain, err := RoleChainFromBottom(approverRoles, RoleArena(allRoles))
	if err != nil {
		return false, nil, err
	}

	for _, roleID := range chain {
		tier := roleToUsers[roleID]
		if len(tier) == 0 {
			continue
		}
		var pending []queuedNote
		for _, u := range tier {
			if !record.HasVoted(u.ID) {
				subject, msg := notify.PendingApproverEmail(u.Name, applicant.Name)
				pending = append(pending, queuedNote{u, subject, msg})
			}
		}
		if len(pending) > 0 {
			return true, pending, nil
		}
	}
	return false, nil, nil
}

// finalize runs the transition from Voting to Finalized inside the vote
// transaction: fee and role resolution, membership ID allocation, the
// decision record and the ledger reset.
func (e *Engine) finalize(ctx context.Context, tx VoteTx, config *models.ConfigSetting, record *models.VoteRecord, applicant, actor *models.User, percent float64) (*VoteOutcome, []queuedNote, error) {
	payment, err := tx.LatestPayment(applicant.ID)
	if err != nil {
		return nil, nil, err
	}
	if payment == nil || payment.MembershipType == nil || strings.TrimSpace(*payment.MembershipType) == "" {
		return nil, nil, ErrMembershipTypeMissing
	}

	currency := payment.Currency
	if currency == "" {
		currency = "INR"
	}
	fee, err := tx.FeeByCurrencyAndType(currency, strings.TrimSpace(*payment.MembershipType))
	if err != nil {
		return nil, nil, err
	}
	if fee == nil {
		return nil, nil, ErrFeeNotFound
	}
	membershipType := fee.MembershipType

	role, err := tx.RoleByName(membershipType)
	if err != nil {
		return nil, nil, err
	}
	if role == nil {
		return nil, nil, ErrRoleNotFound
	}

	remark := joinRemarks(config.Approvers, record, true)
	approvedBy := votersWith(record, true)

	// Ledger entry for this applicant is cleared as part of the commit.
	resetLedger := make(models.VoteLedger, len(config.Value))
	for k, v := range config.Value {
		if k != applicant.ID {
			resetLedger[k] = v
		}
	}

	var membershipID string
	if applicant.MembershipID != nil && *applicant.MembershipID != "" {
		// Re-finalization is not expected, but must not crash.
		membershipID = *applicant.MembershipID
	} else {
		membershipID, err = e.alloc.Allocate(ctx, TypePrefix(membershipType))
		if err != nil {
			return nil, nil, err
		}
	}

	err = tx.ApplyFinalization(&Finalization{
		ApplicantID:  applicant.ID,
		MembershipID: membershipID,
		RoleID:       role.ID,
		ConfigID:     config.ID,
		Ledger:       resetLedger,
		Remark:       remark,
		ApprovedBy:   approvedBy,
	})
	if err != nil {
		return nil, nil, err
	}

	e.log.Info().
		Str("applicant", applicant.ID).
		Str("membership_id", membershipID).
		Str("role", role.Name).
		Float64("approval_percent", percent).
		Msg("membership finalized")

	notes := make([]queuedNote, 0, len(config.Approvers)+1)
	subject, msg := notify.MembershipFinalizedEmail(applicant.Name, membershipID, role.Name)
	notes = append(notes, queuedNote{applicant, subject, msg})
	for _, approver := range config.Approvers {
		subject, msg := notify.ApproverFinalizedEmail(approver.Name, applicant.Name, membershipID)
		notes = append(notes, queuedNote{approver, subject, msg})
	}

	return &VoteOutcome{
		Finalized:       true,
		ApprovalPercent: percent,
		MembershipID:    membershipID,
		ActionBy:        actor.Name,
		Record:          record,
	}, notes, nil
}

// joinRemarks concatenates the remarks of approvers whose vote matches
// want, one "Name: remark" line per approver, skipping empty remarks.
func joinRemarks(approvers []*models.User, record *models.VoteRecord, want bool) string {
	var lines []string
	for _, u := range approvers {
		vote, ok := record.Votes[u.ID]
		if !ok || vote != want {
			continue
		}
		remark := strings.TrimSpace(record.Remarks[u.ID])
		if remark == "" {
			continue
		}
		lines = append(lines, u.Name+": "+remark)
	}
	return strings.Join(lines, "\n")
}

func votersWith(record *models.VoteRecord, want bool) []string {
	var ids []string
	for id, vote := range record.Votes {
		if vote == want {
			ids = append(ids, id)
		}
	}
	return ids
}

// TypePrefix derives the membership-ID prefix from a membership type:
// the upper-cased initial of every word, e.g. "Fellow Member" -> "FM".
func TypePrefix(membershipType string) string {
	var b strings.Builder
	for _, word := range strings.Fields(membershipType) {
		r := []rune(word)[0]
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return strings.ToUpper(b.String())
}
