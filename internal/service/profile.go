package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/argrp/rpbot/internal/logger"
	"github.com/argrp/rpbot/internal/model"
)

// Profiles answers identity lookups for the profile, environment and
// autocomplete commands.
type Profiles struct {
	identity model.IdentityResolver
	logger   *logger.Logger
}

func NewProfiles(identity model.IdentityResolver, logger *logger.Logger) *Profiles {
	return &Profiles{
		identity: identity,
		logger:   logger,
	}
}

// Details returns the extended profile of name. An empty name falls back to
// the caller's nickname hint, then to the caller's username.
func (s *Profiles) Details(ctx context.Context, caller model.Member, name string) (model.IdentityDetails, error) {
	identity, err := s.resolveFor(ctx, caller, strings.TrimSpace(name))
	if err != nil {
		return model.IdentityDetails{}, err
	}
	return s.identity.Details(ctx, identity.ID)
}

func (s *Profiles) resolveFor(ctx context.Context, caller model.Member, name string) (model.Identity, error) {
	if name != "" {
		return s.identity.Resolve(ctx, name)
	}

	for _, candidate := range []string{caller.IdentityHint(), caller.Username} {
		if candidate == "" {
			continue
		}
		identity, err := s.identity.Resolve(ctx, candidate)
		if err == nil {
			return identity, nil
		}
	}
	return model.Identity{}, model.ErrNotFound
}

// Environment validates an environment report and resolves its identity.
func (s *Profiles) Environment(ctx context.Context, params model.EnvironmentParams) (model.Identity, error) {
	place := strings.TrimSpace(params.Place)
	description := strings.TrimSpace(params.Description)
	if place == "" || description == "" {
		return model.Identity{}, model.NewValidationError("Indicá el lugar y el entorno.")
	}
	if utf8.RuneCountInString(description) > maxTextLength {
		return model.Identity{}, model.NewValidationError("El entorno no puede superar los %d caracteres.", maxTextLength)
	}

	return s.identity.Resolve(ctx, params.ExternalName)
}

// Suggest returns autocomplete candidates. Lookup failures yield no candidates.
func (s *Profiles) Suggest(ctx context.Context, query string) []model.IdentityMatch {
	matches, err := s.identity.Search(ctx, query)
	if err != nil {
		return nil
	}
	return matches
}
