package model

// TokenManager issues and validates operator tokens for the ops endpoint.
type TokenManager interface {
	GenerateOperatorToken(operator string) (string, error)
	ParseOperatorToken(token string) (string, error)
}
