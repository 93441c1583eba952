package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/argrp/rpbot/internal/model"
)

// Claims represents JWT claims of an operator token.
type Claims struct {
	jwt.RegisteredClaims
	TokenType string `json:"typ"`
}

// JWT implements TokenManager backed by symmetric HMAC.
type JWT struct {
	secretKey string
	ttl       time.Duration
}

const (
	defaultTTL   = 30 * 24 * time.Hour
	issuer       = "rpbot"
	typeOperator = "operator"
)

// NewJWT creates a token manager. A non-positive ttl uses thirty days.
func NewJWT(secretKey string, ttl time.Duration) *JWT {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &JWT{secretKey: secretKey, ttl: ttl}
}

var _ model.TokenManager = (*JWT)(nil)

// GenerateOperatorToken creates a token naming the operator as subject.
func (j *JWT) GenerateOperatorToken(operator string) (string, error) {
	if operator == "" {
		return "", fmt.Errorf("operator name is empty")
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   operator,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
		TokenType: typeOperator,
	})

	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign operator token: %w", err)
	}

	return tokenString, nil
}

// ParseOperatorToken validates the token and returns the operator name.
func (j *JWT) ParseOperatorToken(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return []byte(j.secretKey), nil
	}, jwt.WithIssuer(issuer))
	if err != nil {
		return "", fmt.Errorf("%w: %w", model.ErrTokenInvalid, err)
	}
	if !token.Valid {
		return "", model.ErrTokenInvalid
	}
	if claims.TokenType != typeOperator {
		return "", fmt.Errorf("%w: %s", model.ErrTokenMismatch, claims.TokenType)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: empty subject", model.ErrTokenInvalid)
	}
	return claims.Subject, nil
}
