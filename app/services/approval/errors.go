package approval

import "errors"

var (
	// ErrUnauthorized means the actor is not in the configured approver set.
	ErrUnauthorized = errors.New("not authorized to act on this membership")

	// ErrAlreadyFinalized means a finalized decision exists; the vote is ignored.
	ErrAlreadyFinalized = errors.New("membership already finalized")

	// ErrConfigMissing means no approval configuration exists for the workflow type.
	ErrConfigMissing = errors.New("approval configuration not found")

	// ErrMembershipTypeMissing means the applicant's latest payment carries no membership type.
	ErrMembershipTypeMissing = errors.New("membership type not found in payment")

	// ErrFeeNotFound means no rate-card row matches the payment's currency and type.
	ErrFeeNotFound = errors.New("no matching membership fee found")

	// ErrRoleNotFound means no role matches the resolved membership type.
	ErrRoleNotFound = errors.New("membership role not found")
)
