package models

// PaymentStatus represents the lifecycle state of a payment attempt
type PaymentStatus string

const (
	PaymentPending         PaymentStatus = "Pending"
	PaymentSuccess         PaymentStatus = "Success"
	PaymentFailed          PaymentStatus = "Failed"
	PaymentRefunded        PaymentStatus = "Refunded"
	PaymentRefundInitiated PaymentStatus = "Refund Initiated"
)

// ProposerStatus represents the state of a proposer invitation
type ProposerStatus string

const (
	ProposerPending  ProposerStatus = "pending"
	ProposerApproved ProposerStatus = "approved"
	ProposerRejected ProposerStatus = "rejected"
	ProposerExpired  ProposerStatus = "expired"
)

// IsTerminal reports whether no further transition is allowed from the status.
func (s ProposerStatus) IsTerminal() bool {
	return s == ProposerApproved || s == ProposerRejected || s == ProposerExpired
}

// AuditAction is the kind of change recorded in an audit log entry
type AuditAction string

const (
	AuditCreate AuditAction = "create"
	AuditUpdate AuditAction = "update"
	AuditDelete AuditAction = "delete"
)
