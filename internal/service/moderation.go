package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/argrp/rpbot/internal/config"
	"github.com/argrp/rpbot/internal/logger"
	"github.com/argrp/rpbot/internal/model"
)

// MaxMuteDuration is the longest timeout the platform accepts.
const MaxMuteDuration = 28 * 24 * time.Hour

var durationPattern = regexp.MustCompile(`(?i)(\d+)\s*(segundos?|minutos?|horas?|días?|dias?)`)

// ParseDuration reads a Spanish duration such as "30 minutos" or "2 días".
func ParseDuration(text string) (time.Duration, error) {
	m := durationPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, model.NewValidationError("Formato de tiempo inválido. Usá: `1 hora`, `30 minutos`, `2 días`, etc.")
	}

	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0, model.NewValidationError("Formato de tiempo inválido. Usá: `1 hora`, `30 minutos`, `2 días`, etc.")
	}

	var unit time.Duration
	switch u := strings.ToLower(m[2]); {
	case strings.HasPrefix(u, "segundo"):
		unit = time.Second
	case strings.HasPrefix(u, "minuto"):
		unit = time.Minute
	case strings.HasPrefix(u, "hora"):
		unit = time.Hour
	default:
		unit = 24 * time.Hour
	}

	d := time.Duration(n) * unit
	if d > MaxMuteDuration || d/unit != time.Duration(n) {
		return 0, model.NewValidationError("El tiempo máximo de silencio es de 28 días.")
	}
	return d, nil
}

// ModerationOptions holds the guild data moderation commands use.
type ModerationOptions struct {
	ModeratorRoleID string
	ApplicantRoleID string
	TechnicalRoles  []config.TechnicalRole
}

// Moderation applies staff actions to members.
type Moderation struct {
	members      model.MemberManager
	capabilities model.CapabilityChecker
	opts         ModerationOptions
	logger       *logger.Logger
	now          func() time.Time
}

func NewModeration(
	members model.MemberManager,
	capabilities model.CapabilityChecker,
	opts ModerationOptions,
	logger *logger.Logger,
) *Moderation {
	return &Moderation{
		members:      members,
		capabilities: capabilities,
		opts:         opts,
		logger:       logger,
		now:          time.Now,
	}
}

// Mute times the target out for the parsed duration.
func (s *Moderation) Mute(ctx context.Context, params model.MuteParams) (model.MuteResult, error) {
	if !s.capabilities.HasCapability(params.Moderator, model.CapabilityMuteModerator) {
		return model.MuteResult{}, model.ErrUnauthorized
	}
	d, err := ParseDuration(params.Duration)
	if err != nil {
		return model.MuteResult{}, err
	}
	reason := strings.TrimSpace(params.Reason)
	if reason == "" {
		return model.MuteResult{}, model.NewValidationError("Indicá el motivo del silencio.")
	}
	if utf8.RuneCountInString(reason) > maxTextLength {
		return model.MuteResult{}, model.NewValidationError("El motivo no puede superar los %d caracteres.", maxTextLength)
	}

	until := s.now().Add(d)
	auditReason := fmt.Sprintf("%s — Por: %s", reason, params.Moderator.DisplayTag())
	if err := s.members.Timeout(ctx, params.TargetID, until, auditReason); err != nil {
		s.logger.Error("Moderation service: failed to mute member", "target", params.TargetID, "error", err.Error())
		return model.MuteResult{}, model.NewExternalError("silenciar al usuario", err)
	}

	s.logger.Info("Moderation service: member muted", "target", params.TargetID, "moderator", params.Moderator.ID, "duration", d.String())

	return model.MuteResult{Duration: d, Until: until}, nil
}

// AddRole grants a role. A member already holding it is refused.
func (s *Moderation) AddRole(ctx context.Context, params model.RoleChangeParams) error {
	target, err := s.roleChangeTarget(ctx, params)
	if err != nil {
		return err
	}
	if target.HasRole(params.RoleID) {
		return model.NewValidationError("El usuario <@%s> ya tiene el rol <@&%s>.", params.TargetID, params.RoleID)
	}
	if err := s.members.AddRole(ctx, params.TargetID, params.RoleID); err != nil {
		return model.NewExternalError("añadir el rol", err)
	}

	s.logger.Info("Moderation service: role added", "target", params.TargetID, "role", params.RoleID, "moderator", params.Moderator.ID)
	return nil
}

// RemoveRole revokes a role. A member lacking it is refused.
func (s *Moderation) RemoveRole(ctx context.Context, params model.RoleChangeParams) error {
	target, err := s.roleChangeTarget(ctx, params)
	if err != nil {
		return err
	}
	if !target.HasRole(params.RoleID) {
		return model.NewValidationError("El usuario <@%s> no tiene el rol <@&%s>.", params.TargetID, params.RoleID)
	}
	if err := s.members.RemoveRole(ctx, params.TargetID, params.RoleID); err != nil {
		return model.NewExternalError("eliminar el rol", err)
	}

	s.logger.Info("Moderation service: role removed", "target", params.TargetID, "role", params.RoleID, "moderator", params.Moderator.ID)
	return nil
}

func (s *Moderation) roleChangeTarget(ctx context.Context, params model.RoleChangeParams) (model.Member, error) {
	if !s.capabilities.HasCapability(params.Moderator, model.CapabilityModerator) {
		return model.Member{}, model.ErrUnauthorized
	}
	target, err := s.members.Member(ctx, params.TargetID)
	if errors.Is(err, model.ErrNotFound) {
		return model.Member{}, model.NewValidationError("El usuario no está en el servidor.")
	}
	if err != nil {
		return model.Member{}, model.NewExternalError("obtener al usuario", err)
	}
	return target, nil
}

// StaffList returns the members of a staff group.
func (s *Moderation) StaffList(ctx context.Context, group model.StaffGroup) ([]model.Member, error) {
	roleID := s.opts.ModeratorRoleID
	if group == model.StaffGroupApplicants {
		roleID = s.opts.ApplicantRoleID
	}
	members, err := s.members.MembersWithRole(ctx, roleID)
	if err != nil {
		return nil, model.NewExternalError("cargar la lista", err)
	}
	return members, nil
}

// CanPublishTechnicalMenu reports whether actor may post the technical roles menu.
func (s *Moderation) CanPublishTechnicalMenu(actor model.Member) bool {
	return s.capabilities.HasCapability(actor, model.CapabilityModerator)
}

// AssignTechnicalRoles grants the selected technical roles and returns the labels
// of the roles added. Selecting a disabled role refuses the whole selection;
// roles already held are skipped.
func (s *Moderation) AssignTechnicalRoles(ctx context.Context, member model.Member, values []string) ([]string, error) {
	selected := make([]config.TechnicalRole, 0, len(values))
	for _, v := range values {
		role, ok := s.technicalRole(v)
		if !ok {
			continue
		}
		if role.DisabledReason != "" || role.RoleID == "" {
			return nil, model.NewValidationError("Uno o más de los roles seleccionados no están disponibles para vos en este momento.")
		}
		selected = append(selected, role)
	}

	var added []string
	for _, role := range selected {
		if member.HasRole(role.RoleID) {
			continue
		}
		if err := s.members.AddRole(ctx, member.ID, role.RoleID); err != nil {
			return added, model.NewExternalError("añadir el rol "+role.Label, err)
		}
		added = append(added, role.Label)
	}

	return added, nil
}

func (s *Moderation) technicalRole(value string) (config.TechnicalRole, bool) {
	for _, r := range s.opts.TechnicalRoles {
		if r.Value == value {
			return r, true
		}
	}
	return config.TechnicalRole{}, false
}
