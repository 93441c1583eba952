package service

import "github.com/argrp/rpbot/internal/model"

var _ model.CapabilityChecker = (*RoleCapabilities)(nil)

// RoleCapabilities grants a capability to every member holding one of its roles.
type RoleCapabilities struct {
	roles map[model.Capability][]string
}

func NewRoleCapabilities(roles map[model.Capability][]string) *RoleCapabilities {
	return &RoleCapabilities{roles: roles}
}

func (c *RoleCapabilities) HasCapability(actor model.Member, capability model.Capability) bool {
	for _, roleID := range c.roles[capability] {
		if roleID != "" && actor.HasRole(roleID) {
			return true
		}
	}
	return false
}
