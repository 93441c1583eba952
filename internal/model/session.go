package model

import "time"

const (
	// VerificationSessionDuration is the TTL of a pending verification.
	VerificationSessionDuration = 5 * time.Minute
	// RoleRequestSessionDuration is the TTL of a pending role request.
	RoleRequestSessionDuration = 24 * time.Hour
	// RejectLeaseDuration bounds how long an open rejection form holds a role request.
	RejectLeaseDuration = 15 * time.Minute
)

// VerificationSession is the payload of a verification awaiting confirmation.
type VerificationSession struct {
	TargetID     string
	ExternalName string
	AvatarURL    string
	ImageURL     string
	ModeratorID  string
}

// RoleRequestSession is the payload of a role request awaiting a staff decision.
type RoleRequestSession struct {
	RequesterID   string
	RoleValue     string
	RoleID        string
	RoleLabel     string
	Justification string
	EvidenceURL   string
	EvidenceKey   string
	Prompt        *MessageRef
}

// MessageRef identifies a posted message so it can be edited later.
type MessageRef struct {
	ChannelID string
	MessageID string
}

// StartVerificationParams contains the inputs of the verify command.
type StartVerificationParams struct {
	Moderator    Member
	ChannelID    string
	TargetID     string
	ExternalName string
}

// SubmitRoleRequestParams contains the inputs of the role-request command.
type SubmitRoleRequestParams struct {
	Requester     Member
	RoleValue     string
	Justification string
	Evidence      Attachment
}

// RoleRequestReceipt is returned once a role request awaits a decision.
type RoleRequestReceipt struct {
	Key     string
	Session RoleRequestSession
	// LimitedHeld counts the limited-category roles the requester already holds.
	LimitedHeld int
}

// RoleRequestDecision is a resolved role request.
type RoleRequestDecision struct {
	Session  RoleRequestSession
	Actor    Member
	Accepted bool
	Reason   string
}
