// Package guild adapts the Discord REST API to the member operations the
// services depend on.
package guild

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/argrp/rpbot/internal/logger"
	"github.com/argrp/rpbot/internal/model"
)

const membersPageSize = 1000

var _ model.MemberManager = (*Guild)(nil)

// API is the subset of the discordgo session used for guild member operations.
type API interface {
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	GuildMembers(guildID string, after string, limit int, options ...discordgo.RequestOption) ([]*discordgo.Member, error)
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberNickname(guildID, userID, nickname string, options ...discordgo.RequestOption) error
	GuildMemberTimeout(guildID, userID string, until *time.Time, options ...discordgo.RequestOption) error
	GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error)
}

// Guild implements model.MemberManager for one guild.
type Guild struct {
	api     API
	guildID string
	logger  *logger.Logger
}

// New creates a Guild adapter bound to guildID.
func New(api API, guildID string, logger *logger.Logger) *Guild {
	return &Guild{
		api:     api,
		guildID: guildID,
		logger:  logger,
	}
}

// Member fetches a guild member. A member that left the guild yields model.ErrNotFound.
func (g *Guild) Member(ctx context.Context, userID string) (model.Member, error) {
	m, err := g.api.GuildMember(g.guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		return model.Member{}, mapError("get member", err)
	}
	return ToMember(m), nil
}

// MembersWithRole pages through the member list and returns those holding roleID.
func (g *Guild) MembersWithRole(ctx context.Context, roleID string) ([]model.Member, error) {
	var (
		result []model.Member
		after  string
	)
	for {
		page, err := g.api.GuildMembers(g.guildID, after, membersPageSize, discordgo.WithContext(ctx))
		if err != nil {
			return nil, mapError("list members", err)
		}
		for _, m := range page {
			if member := ToMember(m); member.HasRole(roleID) {
				result = append(result, member)
			}
		}
		if len(page) < membersPageSize {
			break
		}
		after = page[len(page)-1].User.ID
	}

	g.logger.Debug("Guild: members listed", "role", roleID, "count", len(result))

	return result, nil
}

func (g *Guild) AddRole(ctx context.Context, userID, roleID string) error {
	if err := g.api.GuildMemberRoleAdd(g.guildID, userID, roleID, discordgo.WithContext(ctx)); err != nil {
		return mapError("add role", err)
	}
	return nil
}

func (g *Guild) RemoveRole(ctx context.Context, userID, roleID string) error {
	if err := g.api.GuildMemberRoleRemove(g.guildID, userID, roleID, discordgo.WithContext(ctx)); err != nil {
		return mapError("remove role", err)
	}
	return nil
}

func (g *Guild) SetNickname(ctx context.Context, userID, nickname string) error {
	if err := g.api.GuildMemberNickname(g.guildID, userID, nickname, discordgo.WithContext(ctx)); err != nil {
		return mapError("set nickname", err)
	}
	return nil
}

// Timeout disables the member until the given time. reason lands in the audit log.
func (g *Guild) Timeout(ctx context.Context, userID string, until time.Time, reason string) error {
	err := g.api.GuildMemberTimeout(g.guildID, userID, &until,
		discordgo.WithContext(ctx),
		discordgo.WithAuditLogReason(reason),
	)
	if err != nil {
		return mapError("timeout member", err)
	}
	return nil
}

// RoleIDByName finds a guild role by case-insensitive name.
func (g *Guild) RoleIDByName(ctx context.Context, name string) (string, error) {
	roles, err := g.api.GuildRoles(g.guildID, discordgo.WithContext(ctx))
	if err != nil {
		return "", mapError("list roles", err)
	}
	for _, r := range roles {
		if strings.EqualFold(r.Name, name) {
			return r.ID, nil
		}
	}
	return "", model.ErrNotFound
}

// ToMember converts a discordgo member into the domain type.
func ToMember(m *discordgo.Member) model.Member {
	if m == nil {
		return model.Member{}
	}
	member := model.Member{
		Nickname: m.Nick,
		Roles:    m.Roles,
	}
	if m.User != nil {
		member.ID = m.User.ID
		member.Username = m.User.Username
		member.Tag = m.User.String()
	}
	return member
}

func mapError(op string, err error) error {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound {
		return model.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
