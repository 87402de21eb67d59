package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

// stubValidator accepts exactly one token.
type stubValidator struct {
	token      string
	operatorID uuid.UUID
}

func (s *stubValidator) ValidateToken(_ context.Context, token string) (uuid.UUID, error) {
	if token == s.token {
		return s.operatorID, nil
	}
	return uuid.Nil, errors.New("invalid token")
}

// ---------------------------------------------------------------------------
// 1. Valid bearer token -> operator id lands in request context
// ---------------------------------------------------------------------------

func TestTokenAuthValid(t *testing.T) {
	opID := uuid.New()
	mw := TokenAuth(&stubValidator{token: "good-token", operatorID: opID})

	var seen uuid.UUID
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = OperatorFromCtx(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if seen != opID {
		t.Errorf("expected operator %s in context, got %s", opID, seen)
	}
}

// ---------------------------------------------------------------------------
// 2. Missing, malformed, or invalid credentials -> 401
// ---------------------------------------------------------------------------

func TestTokenAuthRejects(t *testing.T) {
	mw := TokenAuth(&stubValidator{token: "good-token", operatorID: uuid.New()})
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("handler must not run for rejected requests")
	}))

	cases := map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic Zm9vOmJhcg==",
		"empty token":    "Bearer ",
		"bad token":      "Bearer wrong",
	}
	for name, authz := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if authz != "" {
			req.Header.Set("Authorization", authz)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", name, rec.Code)
		}
	}
}

// ---------------------------------------------------------------------------
// 3. OperatorFromCtx is nil-safe
// ---------------------------------------------------------------------------

func TestOperatorFromCtxEmpty(t *testing.T) {
	if got := OperatorFromCtx(context.Background()); got != uuid.Nil {
		t.Errorf("expected uuid.Nil for unauthenticated context, got %s", got)
	}
	ctx := WithOperator(context.Background(), uuid.Max)
	if got := OperatorFromCtx(ctx); got != uuid.Max {
		t.Errorf("round trip failed, got %s", got)
	}
}
