package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/argrp/rpbot/internal/config"
	"github.com/argrp/rpbot/internal/logger"
	"github.com/argrp/rpbot/internal/model"
	"github.com/argrp/rpbot/internal/pending"
)

const (
	roleRequestPrefix = "solicitud"
	maxTextLength     = 500
)

// LockedError reports a role request held by another staff member's open
// rejection form.
type LockedError struct {
	HolderID string
}

func (e *LockedError) Error() string {
	return "role request is being rejected by " + e.HolderID
}

func (e *LockedError) Unwrap() error {
	return pending.ErrSessionLocked
}

// RoleRequestOptions configures the role request workflow.
type RoleRequestOptions struct {
	Roles       []config.RequestableRole
	TTL         time.Duration
	RejectLease time.Duration
}

// RoleRequests lets members ask for a role and staff accept or reject it.
type RoleRequests struct {
	sessions     *pending.Registry[model.RoleRequestSession]
	members      model.MemberManager
	capabilities model.CapabilityChecker
	evidence     *Evidence
	opts         RoleRequestOptions
	logger       *logger.Logger
}

func NewRoleRequests(
	sessions *pending.Registry[model.RoleRequestSession],
	members model.MemberManager,
	capabilities model.CapabilityChecker,
	evidence *Evidence,
	opts RoleRequestOptions,
	logger *logger.Logger,
) *RoleRequests {
	if opts.TTL <= 0 {
		opts.TTL = model.RoleRequestSessionDuration
	}
	if opts.RejectLease <= 0 {
		opts.RejectLease = model.RejectLeaseDuration
	}
	return &RoleRequests{
		sessions:     sessions,
		members:      members,
		capabilities: capabilities,
		evidence:     evidence,
		opts:         opts,
		logger:       logger,
	}
}

// Submit opens a request awaiting a staff decision.
func (s *RoleRequests) Submit(ctx context.Context, params model.SubmitRoleRequestParams) (model.RoleRequestReceipt, error) {
	role, ok := s.role(params.RoleValue)
	if !ok {
		return model.RoleRequestReceipt{}, model.NewValidationError("El rol solicitado no existe.")
	}
	justification := strings.TrimSpace(params.Justification)
	if justification == "" {
		return model.RoleRequestReceipt{}, model.NewValidationError("Indicá el motivo de tu solicitud.")
	}
	if utf8.RuneCountInString(justification) > maxTextLength {
		return model.RoleRequestReceipt{}, model.NewValidationError("El motivo no puede superar los %d caracteres.", maxTextLength)
	}
	if params.Evidence.URL == "" {
		return model.RoleRequestReceipt{}, model.NewValidationError("Adjuntá una foto con las pruebas de tu solicitud.")
	}

	session := model.RoleRequestSession{
		RequesterID:   params.Requester.ID,
		RoleValue:     role.Value,
		RoleID:        role.RoleID,
		RoleLabel:     role.Label,
		Justification: justification,
		EvidenceURL:   params.Evidence.URL,
		EvidenceKey:   s.evidence.Archive(ctx, roleRequestPrefix, params.Requester.ID, params.Evidence),
	}
	key := s.sessions.Create(roleRequestPrefix, params.Requester.ID, session, s.opts.TTL)

	s.logger.Info("Role request service: request submitted", "key", key, "requester", params.Requester.ID, "role", role.Value)

	return model.RoleRequestReceipt{
		Key:         key,
		Session:     session,
		LimitedHeld: s.limitedHeld(ctx, params.Requester),
	}, nil
}

// AttachPrompt records where the decision prompt was posted.
func (s *RoleRequests) AttachPrompt(key string, ref model.MessageRef) bool {
	return s.sessions.Update(key, func(p *model.RoleRequestSession) {
		p.Prompt = &ref
	})
}

// Accept grants the requested role. Any staff member may accept unless another
// one holds the request with an open rejection form.
func (s *RoleRequests) Accept(ctx context.Context, key string, actor model.Member) (model.RoleRequestDecision, error) {
	if err := s.authorize(key, actor); err != nil {
		return model.RoleRequestDecision{}, err
	}

	sess, err := s.sessions.RemoveIf(key, s.sessions.UnlessLockedByOther(actor.ID))
	if err != nil {
		return model.RoleRequestDecision{}, s.lockError(sess, err)
	}

	decision := model.RoleRequestDecision{
		Session:  sess.Payload,
		Actor:    actor,
		Accepted: true,
	}
	if err := s.grant(ctx, sess.Payload); err != nil {
		s.logger.Error("Role request service: failed to grant role", "key", key, "requester", sess.Payload.RequesterID, "error", err.Error())
		return decision, model.NewExternalError("asignar el rol "+sess.Payload.RoleLabel, err)
	}

	s.logger.Info("Role request service: request accepted", "key", key, "actor", actor.ID)

	return decision, nil
}

// BeginReject holds the request for actor while the rejection form is open.
// The request is not consumed.
func (s *RoleRequests) BeginReject(_ context.Context, key string, actor model.Member) (model.RoleRequestSession, error) {
	if err := s.authorize(key, actor); err != nil {
		return model.RoleRequestSession{}, err
	}

	sess, err := s.sessions.Lock(key, actor.ID, s.opts.RejectLease)
	if err != nil {
		return model.RoleRequestSession{}, s.lockError(sess, err)
	}

	return sess.Payload, nil
}

// CompleteReject resolves the request as rejected with reason. The role is not granted.
func (s *RoleRequests) CompleteReject(_ context.Context, key string, actor model.Member, reason string) (model.RoleRequestDecision, error) {
	if err := s.authorize(key, actor); err != nil {
		return model.RoleRequestDecision{}, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return model.RoleRequestDecision{}, model.NewValidationError("Indicá el motivo del rechazo.")
	}
	if utf8.RuneCountInString(reason) > maxTextLength {
		return model.RoleRequestDecision{}, model.NewValidationError("El motivo no puede superar los %d caracteres.", maxTextLength)
	}

	sess, err := s.sessions.RemoveIf(key, s.sessions.UnlessLockedByOther(actor.ID))
	if err != nil {
		return model.RoleRequestDecision{}, s.lockError(sess, err)
	}

	s.logger.Info("Role request service: request rejected", "key", key, "actor", actor.ID)

	return model.RoleRequestDecision{
		Session: sess.Payload,
		Actor:   actor,
		Reason:  reason,
	}, nil
}

// authorize reports a missing session before a missing capability.
func (s *RoleRequests) authorize(key string, actor model.Member) error {
	if _, ok := s.sessions.Get(key); !ok {
		return pending.ErrSessionNotFound
	}
	if !s.capabilities.HasCapability(actor, model.CapabilityRoleRequestStaff) {
		return model.ErrUnauthorized
	}
	return nil
}

func (s *RoleRequests) lockError(sess pending.Session[model.RoleRequestSession], err error) error {
	if errors.Is(err, pending.ErrSessionLocked) {
		return &LockedError{HolderID: sess.LockedBy}
	}
	return err
}

func (s *RoleRequests) grant(ctx context.Context, p model.RoleRequestSession) error {
	roleID := p.RoleID
	if roleID == "" {
		var err error
		roleID, err = s.members.RoleIDByName(ctx, p.RoleLabel)
		if err != nil {
			return err
		}
	}
	return s.members.AddRole(ctx, p.RequesterID, roleID)
}

func (s *RoleRequests) role(value string) (config.RequestableRole, bool) {
	for _, r := range s.opts.Roles {
		if r.Value == value {
			return r, true
		}
	}
	return config.RequestableRole{}, false
}

// limitedHeld counts the limited roles the requester holds. Roles that cannot be
// resolved are skipped.
func (s *RoleRequests) limitedHeld(ctx context.Context, requester model.Member) int {
	held := 0
	for _, r := range s.opts.Roles {
		if !r.Limited {
			continue
		}
		roleID := r.RoleID
		if roleID == "" {
			id, err := s.members.RoleIDByName(ctx, r.Label)
			if err != nil {
				continue
			}
			roleID = id
		}
		if requester.HasRole(roleID) {
			held++
		}
	}
	return held
}
