package context_test

import (
	"context"
	"testing"

	context_ "github.com/mkrupp/taskmgr/internal/infra/context"
)

func TestWithSession(t *testing.T) {
	t.Parallel()

	ctx := context_.WithSession(context.Background(), "s-1", "bob")

	if id, ok := context_.SessionIDFromContext(ctx); !ok || id != "s-1" {
		t.Errorf("SessionIDFromContext() = %q, %v, want %q, true", id, ok, "s-1")
	}

	if username, ok := context_.UsernameFromContext(ctx); !ok || username != "bob" {
		t.Errorf("UsernameFromContext() = %q, %v, want %q, true", username, ok, "bob")
	}
}

func TestFromContext_Missing(t *testing.T) {
	t.Parallel()

	if _, ok := context_.SessionIDFromContext(context.Background()); ok {
		t.Error("SessionIDFromContext() ok = true on empty context")
	}

	if _, ok := context_.UsernameFromContext(context.Background()); ok {
		t.Error("UsernameFromContext() ok = true on empty context")
	}
}
