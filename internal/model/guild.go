package model

import (
	"context"
	"slices"
	"strings"
	"time"
)

// MemberManager mutates and inspects guild members.
type MemberManager interface {
	Member(ctx context.Context, userID string) (Member, error)
	MembersWithRole(ctx context.Context, roleID string) ([]Member, error)
	AddRole(ctx context.Context, userID, roleID string) error
	RemoveRole(ctx context.Context, userID, roleID string) error
	SetNickname(ctx context.Context, userID, nickname string) error
	Timeout(ctx context.Context, userID string, until time.Time, reason string) error
	RoleIDByName(ctx context.Context, name string) (string, error)
}

// CapabilityChecker decides whether an actor holds a capability.
type CapabilityChecker interface {
	HasCapability(actor Member, capability Capability) bool
}

// Capability is an authorization attribute checked independently of identity.
type Capability string

const (
	CapabilityModerator        Capability = "moderator"
	CapabilityMuteModerator    Capability = "mute_moderator"
	CapabilityPolice           Capability = "police"
	CapabilityRoleRequestStaff Capability = "role_request_staff"
)

// Member is a guild member as seen by the bot.
type Member struct {
	ID       string
	Username string
	Tag      string
	Nickname string
	Roles    []string
}

// HasRole reports whether the member holds roleID.
func (m Member) HasRole(roleID string) bool {
	return slices.Contains(m.Roles, roleID)
}

// DisplayTag returns the tag, falling back to the username.
func (m Member) DisplayTag() string {
	if m.Tag != "" {
		return m.Tag
	}
	return m.Username
}

// IdentityHint returns the first word of the nickname (or username), which members
// conventionally set to their external account name.
func (m Member) IdentityHint() string {
	name := m.Nickname
	if name == "" {
		name = m.Username
	}
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
