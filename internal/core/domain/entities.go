package domain

import "strings"

// Role represents user role in the system
type Role string

const (
	RoleReplacement Role = "replacement"
	RoleEmployer    Role = "employer"
	RoleAdmin       Role = "admin"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleReplacement, RoleEmployer, RoleAdmin:
		return true
	}
	return false
}

// HasProfile reports whether the role owns a moderated professional profile
func (r Role) HasProfile() bool {
	return r == RoleReplacement || r == RoleEmployer
}

// ProfileStatus is the moderation state of a professional profile
type ProfileStatus string

const (
	ProfilePending  ProfileStatus = "pending"
	ProfileApproved ProfileStatus = "approved"
	ProfileRejected ProfileStatus = "rejected"
)

func (s ProfileStatus) Valid() bool {
	switch s {
	case ProfilePending, ProfileApproved, ProfileRejected:
		return true
	}
	return false
}

// MissionStatus is the lifecycle state of a mission
type MissionStatus string

const (
	MissionOpen       MissionStatus = "open"
	MissionInProgress MissionStatus = "in_progress"
	MissionCompleted  MissionStatus = "completed"
	MissionCancelled  MissionStatus = "cancelled"
)

func (s MissionStatus) Valid() bool {
	switch s {
	case MissionOpen, MissionInProgress, MissionCompleted, MissionCancelled:
		return true
	}
	return false
}

// ApplicationStatus is the state of a doctor-initiated application
type ApplicationStatus string

const (
	ApplicationPending   ApplicationStatus = "pending"
	ApplicationAccepted  ApplicationStatus = "accepted"
	ApplicationRejected  ApplicationStatus = "rejected"
	ApplicationWithdrawn ApplicationStatus = "withdrawn"
)

func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationPending, ApplicationAccepted, ApplicationRejected, ApplicationWithdrawn:
		return true
	}
	return false
}

// IsFinal reports whether no further transition is allowed
func (s ApplicationStatus) IsFinal() bool {
	return s == ApplicationAccepted || s == ApplicationRejected || s == ApplicationWithdrawn
}

// ProposalStatus is the state of an employer-initiated proposal
type ProposalStatus string

const (
	ProposalPending  ProposalStatus = "pending"
	ProposalAccepted ProposalStatus = "accepted"
	ProposalRejected ProposalStatus = "rejected"
)

func (s ProposalStatus) Valid() bool {
	switch s {
	case ProposalPending, ProposalAccepted, ProposalRejected:
		return true
	}
	return false
}

// VerificationStatus is the moderation state of an uploaded document
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

func (s VerificationStatus) Valid() bool {
	switch s {
	case VerificationPending, VerificationApproved, VerificationRejected:
		return true
	}
	return false
}

// DocumentType is the kind of supporting document a user uploads
type DocumentType string

const (
	DocumentRPPS    DocumentType = "rpps"
	DocumentDiploma DocumentType = "diploma"
	DocumentCV      DocumentType = "cv"
	DocumentCIN     DocumentType = "cin"
)

// ParseDocumentType normalises raw input; "diplome" is accepted for diploma.
func ParseDocumentType(raw string) (DocumentType, bool) {
	t := DocumentType(strings.ToLower(strings.TrimSpace(raw)))
	if t == "diplome" {
		t = DocumentDiploma
	}
	switch t {
	case DocumentRPPS, DocumentDiploma, DocumentCV, DocumentCIN:
		return t, true
	}
	return "", false
}

// NotificationType classifies notification rows
type NotificationType string

const (
	NotifyApplicationReceived  NotificationType = "application_received"
	NotifyApplicationAccepted  NotificationType = "application_accepted"
	NotifyApplicationRejected  NotificationType = "application_rejected"
	NotifyApplicationWithdrawn NotificationType = "application_withdrawn"
	NotifyProposalReceived     NotificationType = "proposal_received"
	NotifyProposalAccepted     NotificationType = "proposal_accepted"
	NotifyProposalRejected     NotificationType = "proposal_rejected"
	NotifyDocumentVerified     NotificationType = "document_verified"
	NotifyDocumentRejected     NotificationType = "document_rejected"
	NotifyProfileApproved      NotificationType = "profile_approved"
	NotifyProfileRejected      NotificationType = "profile_rejected"
	NotifyProfilePending       NotificationType = "profile_pending"
)
