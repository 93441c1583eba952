package context

import (
	"context"
)

// operatorKey is the context key carrying the authenticated operator. It is
// unexported so only AuthFunc, through the Manager, can set it.
type operatorKey struct{}

// Manager represents a gRPC context manager for operator identity.
// Client metadata never reaches it: the operator is set from a verified token.
type Manager struct{}

// NewManager creates a new gRPC context manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// SetOperatorToContext returns a context carrying operator.
func (m *Manager) SetOperatorToContext(ctx context.Context, operator string) context.Context {
	return context.WithValue(ctx, operatorKey{}, operator)
}

// GetOperatorFromContext retrieves the operator set by SetOperatorToContext.
//
// Returns the operator name and a boolean indicating if it was found.
func (m *Manager) GetOperatorFromContext(ctx context.Context) (string, bool) {
	operator, ok := ctx.Value(operatorKey{}).(string)
	if !ok || operator == "" {
		return "", false
	}
	return operator, true
}
