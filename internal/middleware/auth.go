package middleware

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/feeledger/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// OperatorIDKey is the context key for the authenticated operator ID.
	OperatorIDKey contextKey = "operator_id"
	// OperatorNameKey is the context key for the authenticated operator's name.
	OperatorNameKey contextKey = "operator_name"
)

// GetOperatorID extracts the operator ID from the context.
// Returns empty string if not found.
func GetOperatorID(ctx context.Context) string {
	id, _ := ctx.Value(OperatorIDKey).(string)
	return id
}

// GetOperatorName extracts the operator name from the context.
func GetOperatorName(ctx context.Context) string {
	name, _ := ctx.Value(OperatorNameKey).(string)
	return name
}

// WithOperator returns a context carrying the operator identity.
func WithOperator(ctx context.Context, id, name string) context.Context {
	ctx = context.WithValue(ctx, OperatorIDKey, id)
	return context.WithValue(ctx, OperatorNameKey, name)
}

// RequireAuth returns an interceptor that validates bearer tokens and adds
// the operator identity to the request context.
func RequireAuth(jwtManager *auth.JWTManager) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			authHeader := req.Header().Get("Authorization")
			if authHeader == "" {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
			}

			// Parse Bearer token
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidToken)
			}

			claims, err := jwtManager.Validate(parts[1])
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			return next(WithOperator(ctx, claims.OperatorID, claims.Name), req)
		}
	}
}
