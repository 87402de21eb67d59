package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type contextKey string

const ctxOperatorKey contextKey = "operator"

// TokenValidator validates a bearer token and returns the operator id.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (uuid.UUID, error)
}

// TokenAuth authenticates requests by validating the Bearer token and
// placing the operator id into request context.
func TokenAuth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := extractBearer(r)
			if raw == "" {
				http.Error(w, `{"error":"missing or malformed Authorization header"}`, http.StatusUnauthorized)
				return
			}
			operatorID, err := validator.ValidateToken(r.Context(), raw)
			if err != nil {
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), ctxOperatorKey, operatorID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OperatorFromCtx returns the authenticated operator id, or uuid.Nil.
func OperatorFromCtx(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(ctxOperatorKey).(uuid.UUID)
	return id
}

// WithOperator returns a context carrying the given operator id.
func WithOperator(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxOperatorKey, id)
}

func extractBearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
