package service

import (
	"context"
	"strings"
	"time"

	"github.com/argrp/rpbot/internal/greeting"
	"github.com/argrp/rpbot/internal/logger"
	"github.com/argrp/rpbot/internal/model"
	"github.com/argrp/rpbot/internal/pending"
)

const verificationPrefix = "verificar"

// VerificationOptions holds the guild ids the verification workflow touches.
type VerificationOptions struct {
	ChannelID        string
	CitizenRoleID    string
	UnverifiedRoleID string
	TTL              time.Duration
}

// Verification links a member to an external game identity after the
// moderator who started it confirms the match.
type Verification struct {
	sessions     *pending.Registry[model.VerificationSession]
	greetings    *greeting.Set
	identity     model.IdentityResolver
	members      model.MemberManager
	capabilities model.CapabilityChecker
	opts         VerificationOptions
	logger       *logger.Logger
}

func NewVerification(
	sessions *pending.Registry[model.VerificationSession],
	greetings *greeting.Set,
	identity model.IdentityResolver,
	members model.MemberManager,
	capabilities model.CapabilityChecker,
	opts VerificationOptions,
	logger *logger.Logger,
) *Verification {
	if opts.TTL <= 0 {
		opts.TTL = model.VerificationSessionDuration
	}
	return &Verification{
		sessions:     sessions,
		greetings:    greetings,
		identity:     identity,
		members:      members,
		capabilities: capabilities,
		opts:         opts,
		logger:       logger,
	}
}

// Start resolves the external identity and opens a session awaiting the
// moderator's confirmation. No session exists when lookup fails.
func (s *Verification) Start(ctx context.Context, params model.StartVerificationParams) (string, model.VerificationSession, error) {
	if params.ChannelID != s.opts.ChannelID {
		return "", model.VerificationSession{}, model.NewValidationError("Este comando solo se puede usar en <#%s>", s.opts.ChannelID)
	}
	if !s.capabilities.HasCapability(params.Moderator, model.CapabilityModerator) {
		return "", model.VerificationSession{}, model.ErrUnauthorized
	}
	name := strings.TrimSpace(params.ExternalName)
	if name == "" || params.TargetID == "" {
		return "", model.VerificationSession{}, model.NewValidationError("Indicá el usuario y su nombre de Roblox.")
	}

	identity, err := s.identity.Resolve(ctx, name)
	if err != nil {
		return "", model.VerificationSession{}, err
	}

	session := model.VerificationSession{
		TargetID:     params.TargetID,
		ExternalName: identity.Name,
		AvatarURL:    identity.AvatarURL,
		ImageURL:     identity.FullBodyURL,
		ModeratorID:  params.Moderator.ID,
	}
	key := s.sessions.Create(verificationPrefix, params.Moderator.ID, session, s.opts.TTL)

	s.logger.Info("Verification service: session started", "key", key, "target", params.TargetID, "identity", identity.Name)

	return key, session, nil
}

// Confirm resolves the session as confirmed. Only the moderator who started it
// may confirm; anyone else leaves it untouched.
func (s *Verification) Confirm(ctx context.Context, key, actorID string) (model.VerificationSession, error) {
	sess, err := s.sessions.RemoveIf(key, startedBy(actorID))
	if err != nil {
		return model.VerificationSession{}, err
	}
	p := sess.Payload

	if err := s.members.RemoveRole(ctx, p.TargetID, s.opts.UnverifiedRoleID); err != nil {
		s.logger.Debug("Verification service: unverified role not removed", "key", key, "target", p.TargetID, "error", err.Error())
	}
	if err := s.members.AddRole(ctx, p.TargetID, s.opts.CitizenRoleID); err != nil {
		s.logger.Error("Verification service: failed to grant citizen role", "key", key, "target", p.TargetID, "error", err.Error())
		return p, model.NewExternalError("asignar el rol de ciudadano", err)
	}
	if err := s.members.SetNickname(ctx, p.TargetID, p.ExternalName); err != nil {
		s.logger.Error("Verification service: failed to set nickname", "key", key, "target", p.TargetID, "error", err.Error())
		return p, model.NewExternalError("cambiar el apodo", err)
	}

	s.logger.Info("Verification service: member verified", "key", key, "target", p.TargetID, "moderator", actorID)

	return p, nil
}

// Cancel resolves the session without side effects, under the same rule as Confirm.
func (s *Verification) Cancel(_ context.Context, key, actorID string) error {
	if _, err := s.sessions.RemoveIf(key, startedBy(actorID)); err != nil {
		return err
	}
	s.logger.Info("Verification service: session cancelled", "key", key, "moderator", actorID)
	return nil
}

// Greet claims the welcome greeting of greeterID for targetID.
func (s *Verification) Greet(targetID, greeterID string) error {
	if !s.greetings.Claim(targetID, greeterID) {
		return model.ErrAlreadyGreeted
	}
	return nil
}

func startedBy(actorID string) func(pending.Session[model.VerificationSession]) error {
	return func(s pending.Session[model.VerificationSession]) error {
		if s.CreatedBy != actorID {
			return model.ErrUnauthorized
		}
		return nil
	}
}
