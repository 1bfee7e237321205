package notify

import "fmt"

// Email copy for the membership lifecycle. Subjects and bodies are kept
// together so a template change never splits across call sites.

func PendingApproverEmail(approverName, applicantName string) (subject, message string) {
	subject = "Membership Approval Pending"
	message = fmt.Sprintf(
		"Dear %s,\n\nA membership application from %s is awaiting your approval. "+
			"Please log in to the portal and record your decision.\n\nRegards,\nIETE Membership Desk",
		approverName, applicantName)
	return subject, message
}

func ApplicantInterimStatusEmail(applicantName, actorName string, approved bool) (subject, message string) {
	verb := "approved"
	if !approved {
		verb = "rejected"
	}
	subject = "Membership Application Update"
	message = fmt.Sprintf(
		"Dear %s,\n\nYour membership application has been %s by %s. "+
			"The review is still in progress; you will be informed once a final decision is made.\n\nRegards,\nIETE Membership Desk",
		applicantName, verb, actorName)
	return subject, message
}

func MembershipFinalizedEmail(applicantName, membershipID, roleName string) (subject, message string) {
	subject = "Membership Approved"
	message = fmt.Sprintf(
		"Dear %s,\n\nCongratulations! Your membership application has been approved. "+
			"Your membership number is %s and you have been admitted as %s.\n\nRegards,\nIETE Membership Desk",
		applicantName, membershipID, roleName)
	return subject, message
}

func ApproverFinalizedEmail(approverName, applicantName, membershipID string) (subject, message string) {
	subject = "Membership Finalized"
	message = fmt.Sprintf(
		"Dear %s,\n\nThe membership application from %s has crossed the approval threshold "+
			"and has been finalized with membership number %s.\n\nRegards,\nIETE Membership Desk",
		approverName, applicantName, membershipID)
	return subject, message
}

func ProposerInviteEmail(proposerName, applicantName, actionURL string) (subject, message string) {
	subject = "Proposer Endorsement Request"
	message = fmt.Sprintf(
		"Dear %s,\n\n%s has named you as a proposer for their IETE membership application. "+
			"Please review and respond within 30 days using the link below:\n\n%s\n\n"+
			"If no action is taken within 30 days the request expires automatically.\n\nRegards,\nIETE Membership Desk",
		proposerName, applicantName, actionURL)
	return subject, message
}

func ProposerExpiredEmail(applicantName, proposerName string) (subject, message string) {
	subject = "Proposer Request Expired"
	message = fmt.Sprintf(
		"Dear %s,\n\nYour proposer request to %s has expired without a response. "+
			"Please nominate another proposer to continue your application.\n\nRegards,\nIETE Membership Desk",
		applicantName, proposerName)
	return subject, message
}

func ProposerDecisionEmail(applicantName, proposerName string, approved bool) (subject, message string) {
	verb := "accepted"
	if !approved {
		verb = "declined"
	}
	subject = "Proposer Response Received"
	message = fmt.Sprintf(
		"Dear %s,\n\n%s has %s your proposer request.\n\nRegards,\nIETE Membership Desk",
		applicantName, proposerName, verb)
	return subject, message
}

func OTPEmail(name, otp string) (subject, message string) {
	subject = "Your IETE Verification Code"
	message = fmt.Sprintf(
		"Dear %s,\n\nYour one-time verification code is %s. It is valid for 10 minutes.\n\n"+
			"If you did not request this code, please ignore this email.\n\nRegards,\nIETE Membership Desk",
		name, otp)
	return subject, message
}

func PaymentReceiptEmail(name, receipt string, amount float64, currency string) (subject, message string) {
	subject = "Payment Received"
	message = fmt.Sprintf(
		"Dear %s,\n\nWe have received your payment of %s %.2f. Your receipt number is %s. "+
			"Your application will now move to the review stage.\n\nRegards,\nIETE Membership Desk",
		name, currency, amount, receipt)
	return subject, message
}

func PaymentFailedEmail(name, receipt string, amount float64, currency string) (subject, message string) {
	subject = "Payment Verification Failed"
	message = fmt.Sprintf(
		"Dear %s,\n\nYour payment of %s %.2f (receipt %s) could not be verified and has been "+
			"marked as failed. No amount has been captured against your application; please retry "+
			"the payment from the portal. If money was deducted it will be reversed by your bank.\n\nRegards,\nIETE Membership Desk",
		name, currency, amount, receipt)
	return subject, message
}

func RefundInitiatedEmail(name string, amount float64, currency string) (subject, message string) {
	subject = "Refund Initiated"
	message = fmt.Sprintf(
		"Dear %s,\n\nA refund of %s %.2f has been initiated against your payment. "+
			"It should reflect in your account within 5-7 working days.\n\nRegards,\nIETE Membership Desk",
		name, currency, amount)
	return subject, message
}

func PasswordResetEmail(name, resetURL string) (subject, message string) {
	subject = "Password Reset Request"
	message = fmt.Sprintf(
		"Dear %s,\n\nA password reset was requested for your account. "+
			"Use the link below to set a new password:\n\n%s\n\n"+
			"If you did not request this, no action is needed.\n\nRegards,\nIETE Membership Desk",
		name, resetURL)
	return subject, message
}
