package service

import (
	"context"
	"fmt"

	"github.com/argrp/rpbot/internal/logger"
	"github.com/argrp/rpbot/internal/model"
)

// Operators issues and checks the tokens guarding the ops endpoint.
type Operators struct {
	manager model.TokenManager
	logger  *logger.Logger
}

func NewOperators(manager model.TokenManager, logger *logger.Logger) *Operators {
	return &Operators{manager: manager, logger: logger}
}

// Issue mints a token for operator.
func (s *Operators) Issue(operator string) (string, error) {
	token, err := s.manager.GenerateOperatorToken(operator)
	if err != nil {
		return "", fmt.Errorf("issue operator token: %w", err)
	}
	s.logger.Info("Operators service: token issued", "operator", operator)
	return token, nil
}

// GetOperator returns the operator a presented token belongs to.
func (s *Operators) GetOperator(_ context.Context, token string) (string, error) {
	operator, err := s.manager.ParseOperatorToken(token)
	if err != nil {
		s.logger.Debug("Operators service: token rejected", "error", err.Error())
		return "", err
	}
	return operator, nil
}
