package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/argrp/rpbot/internal/model"
)

//go:embed guild.yaml
var defaultGuild []byte

// Guild describes the channels, roles and static content of the community server.
type Guild struct {
	Name             string            `yaml:"name"`
	Channels         Channels          `yaml:"channels"`
	Roles            Roles             `yaml:"roles"`
	RequestableRoles []RequestableRole `yaml:"requestable_roles"`
	TechnicalRoles   []TechnicalRole   `yaml:"technical_roles"`
	FAQ              []FAQEntry        `yaml:"faq"`
	WelcomeMessage   string            `yaml:"welcome_message"`
	RulesURL         string            `yaml:"rules_url"`
	Footer           string            `yaml:"footer"`
	Presence         []string          `yaml:"presence"`
}

// Channels maps each purpose to a channel id.
type Channels struct {
	RateStaff          string `yaml:"rate_staff"`
	RatingsDestination string `yaml:"ratings_destination"`
	Verify             string `yaml:"verify"`
	Welcome            string `yaml:"welcome"`
	Environment        string `yaml:"environment"`
	Arrests            string `yaml:"arrests"`
	Fines              string `yaml:"fines"`
	RoleRequests       string `yaml:"role_requests"`
	RecordsLog         string `yaml:"records_log"`
}

// Roles maps each purpose to a role id.
type Roles struct {
	Moderator        string   `yaml:"moderator"`
	StaffApplicant   string   `yaml:"staff_applicant"`
	MuteModerator    string   `yaml:"mute_moderator"`
	Citizen          string   `yaml:"citizen"`
	Unverified       string   `yaml:"unverified"`
	RoleRequestStaff string   `yaml:"role_request_staff"`
	Police           []string `yaml:"police"`
}

// RequestableRole is a role members may ask staff for. An empty RoleID is
// resolved by label against the guild's roles.
type RequestableRole struct {
	Value   string `yaml:"value"`
	Label   string `yaml:"label"`
	RoleID  string `yaml:"role_id"`
	Limited bool   `yaml:"limited"`
}

// TechnicalRole is a self-assignable technical team role. A non-empty
// DisabledReason makes it visible but not selectable.
type TechnicalRole struct {
	Value          string `yaml:"value"`
	Label          string `yaml:"label"`
	Description    string `yaml:"description"`
	RoleID         string `yaml:"role_id"`
	DisabledReason string `yaml:"disabled_reason"`
}

// FAQEntry is one answer of the FAQ menu.
type FAQEntry struct {
	Value       string `yaml:"value"`
	Label       string `yaml:"label"`
	Description string `yaml:"description"`
	Response    string `yaml:"response"`
}

// LoadGuild reads the guild layout from path, or the embedded default when path is empty.
func LoadGuild(path string) (*Guild, error) {
	data := defaultGuild
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read guild config: %w", err)
		}
	}

	return ParseGuild(data)
}

// ParseGuild decodes and validates a guild layout.
func ParseGuild(data []byte) (*Guild, error) {
	var g Guild
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("failed to decode guild config: %w", err)
	}
	if err := g.validate(); err != nil {
		return nil, fmt.Errorf("invalid guild config: %w", err)
	}

	return &g, nil
}

func (g *Guild) validate() error {
	var errs []error
	if g.Roles.Moderator == "" {
		errs = append(errs, errors.New("roles.moderator is required"))
	}
	if g.Roles.RoleRequestStaff == "" {
		errs = append(errs, errors.New("roles.role_request_staff is required"))
	}
	if g.Channels.Verify == "" {
		errs = append(errs, errors.New("channels.verify is required"))
	}

	seen := make(map[string]bool)
	for _, r := range g.RequestableRoles {
		if r.Value == "" || r.Label == "" {
			errs = append(errs, fmt.Errorf("requestable role %q needs value and label", r.Value))
		}
		if seen[r.Value] {
			errs = append(errs, fmt.Errorf("duplicate requestable role %q", r.Value))
		}
		seen[r.Value] = true
	}

	return errors.Join(errs...)
}

// Capabilities returns the role ids granting each capability.
func (g *Guild) Capabilities() map[model.Capability][]string {
	return map[model.Capability][]string{
		model.CapabilityModerator:        {g.Roles.Moderator},
		model.CapabilityMuteModerator:    {g.Roles.MuteModerator},
		model.CapabilityPolice:           g.Roles.Police,
		model.CapabilityRoleRequestStaff: {g.Roles.RoleRequestStaff},
	}
}

// RequestableRole looks a requestable role up by its choice value.
func (g *Guild) RequestableRole(value string) (RequestableRole, bool) {
	for _, r := range g.RequestableRoles {
		if r.Value == value {
			return r, true
		}
	}
	return RequestableRole{}, false
}

// TechnicalRole looks a technical role up by its menu value.
func (g *Guild) TechnicalRole(value string) (TechnicalRole, bool) {
	for _, r := range g.TechnicalRoles {
		if r.Value == value {
			return r, true
		}
	}
	return TechnicalRole{}, false
}

// FAQEntry looks an FAQ answer up by its menu value.
func (g *Guild) FAQEntry(value string) (FAQEntry, bool) {
	for _, e := range g.FAQ {
		if e.Value == value {
			return e, true
		}
	}
	return FAQEntry{}, false
}
