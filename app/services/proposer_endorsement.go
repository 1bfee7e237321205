package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Shekhar17ACS/IETE/app/models"
	"github.com/Shekhar17ACS/IETE/app/services/notify"
)

var (
	// ErrProposerNotMember means no existing member matches the invited
	// email and membership number together.
	ErrProposerNotMember = errors.New("no member matches the given email and membership number")

	// ErrProposerSelf means the applicant tried to name themselves.
	ErrProposerSelf = errors.New("an applicant cannot propose themselves")

	// ErrProposerLimit means the applicant already holds the maximum
	// number of active invitations.
	ErrProposerLimit = errors.New("maximum number of active proposers reached")

	// ErrProposerUnknownToken means the action link matches no invitation.
	ErrProposerUnknownToken = errors.New("unknown proposer token")

	// ErrProposerDecided means the invitation was already decided.
	ErrProposerDecided = errors.New("proposer request already decided")

	// ErrProposerExpired means the invitation's window has closed.
	ErrProposerExpired = errors.New("proposer request expired")
)

// ProposerInviteStore is the persistence surface of the invitation flow.
type ProposerInviteStore interface {
	// MemberByEmailAndMembershipNo matches an existing member by both
	// identifiers; (nil, nil) when no member matches.
	MemberByEmailAndMembershipNo(ctx context.Context, email, membershipNo string) (*models.User, error)

	CountActiveProposers(ctx context.Context, userID string) (int, error)

	CreateProposer(ctx context.Context, p *models.Proposer) error

	GetUser(ctx context.Context, id string) (*models.User, error)
}

// ProposerInvite is one proposer nomination from an applicant.
type ProposerInvite struct {
	Name         string
	MembershipNo string
	MobileNo     string
	Email        string
}

// ProposerInviter validates nominations against the member directory and
// creates pending invitations with their emailed action links.
type ProposerInviter struct {
	store   ProposerInviteStore
	mailer  notify.Mailer
	siteURL string
	log     zerolog.Logger
}

func NewProposerInviter(store ProposerInviteStore, mailer notify.Mailer, siteURL string, log zerolog.Logger) *ProposerInviter {
	return &ProposerInviter{store: store, mailer: mailer, siteURL: siteURL, log: log}
}

// Invite creates a pending invitation for the applicant. The nominee
// must be an existing member matched by email and membership number
// together, may not be the applicant, and the applicant may not exceed
// the active-slot limit. The action link is emailed to the nominee;
// mail failure does not undo the invitation.
func (i *ProposerInviter) Invite(ctx context.Context, applicantID string, in ProposerInvite) (*models.Proposer, error) {
	applicant, err := i.store.GetUser(ctx, applicantID)
	if err != nil {
		return nil, err
	}
	if applicant.MembershipID != nil && strings.EqualFold(*applicant.MembershipID, in.MembershipNo) {
		return nil, ErrProposerSelf
	}

	member, err := i.store.MemberByEmailAndMembershipNo(ctx, in.Email, in.MembershipNo)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrProposerNotMember
	}

	active, err := i.store.CountActiveProposers(ctx, applicantID)
	if err != nil {
		return nil, err
	}
	if active >= models.MaxProposersPerApplicant {
		return nil, ErrProposerLimit
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = member.FullName()
	}
	proposer := &models.Proposer{
		UserID:       applicantID,
		Name:         name,
		MembershipNo: in.MembershipNo,
		MobileNo:     in.MobileNo,
		Email:        in.Email,
		Status:       models.ProposerPending,
		Token:        uuid.NewString(),
		ExpiryDate:   models.DefaultExpiry(time.Now()),
	}
	if err := i.store.CreateProposer(ctx, proposer); err != nil {
		return nil, err
	}

	actionURL := i.siteURL + "/api/v1/proposers/action/" + proposer.Token
	subject, msg := notify.ProposerInviteEmail(proposer.Name, applicant.FullName(), actionURL)
	if err := i.mailer.Send(ctx, proposer.Email, subject, msg); err != nil {
		i.log.Error().Err(err).Str("email", proposer.Email).Msg("Proposer invite email failed")
	}
	return proposer, nil
}

// ProposerActionStore is the persistence surface of the action link.
type ProposerActionStore interface {
	ProposerByToken(ctx context.Context, token string) (*models.Proposer, error)

	// DecideProposer flips pending to approved or rejected; false when
	// the row was no longer pending.
	DecideProposer(ctx context.Context, proposerID string, status models.ProposerStatus) (bool, error)

	// ExpireProposer flips pending to expired with the same guard.
	ExpireProposer(ctx context.Context, proposerID string) (bool, error)

	GetUser(ctx context.Context, id string) (*models.User, error)
}

// ProposerDecider records the proposer's response from the token link.
type ProposerDecider struct {
	store    ProposerActionStore
	notifier Notifier
	log      zerolog.Logger
}

func NewProposerDecider(store ProposerActionStore, notifier Notifier, log zerolog.Logger) *ProposerDecider {
	return &ProposerDecider{store: store, notifier: notifier, log: log}
}

// Decide resolves one click on the action link. A click past the expiry
// date flips the row to expired, exactly as the sweep would, and the
// applicant is told; the guarded update means a concurrent sweep or
// decision wins and the click changes nothing.
func (d *ProposerDecider) Decide(ctx context.Context, token string, approve bool, now time.Time) (*models.Proposer, error) {
	proposer, err := d.store.ProposerByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if proposer == nil {
		return nil, ErrProposerUnknownToken
	}
	if proposer.Status.IsTerminal() {
		if proposer.Status == models.ProposerExpired {
			return proposer, ErrProposerExpired
		}
		return proposer, ErrProposerDecided
	}

	if now.After(proposer.ExpiryDate) {
		ok, err := d.store.ExpireProposer(ctx, proposer.ID)
		if err != nil {
			return nil, err
		}
		if ok {
			proposer.Status = models.ProposerExpired
			if applicant, err := d.store.GetUser(ctx, proposer.UserID); err == nil && applicant != nil {
				subject, msg := notify.ProposerExpiredEmail(applicant.Name, proposer.Name)
				d.notifier.Notify(ctx, applicant, subject, msg)
			}
		}
		return proposer, ErrProposerExpired
	}

	status := models.ProposerRejected
	if approve {
		status = models.ProposerApproved
	}
	ok, err := d.store.DecideProposer(ctx, proposer.ID, status)
	if err != nil {
		return nil, err
	}
	if !ok {
		return proposer, ErrProposerDecided
	}
	proposer.Status = status

	if applicant, err := d.store.GetUser(ctx, proposer.UserID); err == nil && applicant != nil {
		subject, msg := notify.ProposerDecisionEmail(applicant.Name, proposer.Name, approve)
		d.notifier.Notify(ctx, applicant, subject, msg)
	}
	return proposer, nil
}
