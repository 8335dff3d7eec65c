package requestctx

import (
	"context"
	"testing"
)

func TestOperatorRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := WithOperator(context.Background(), Operator{UserID: " 42 ", Admin: true, Permissions: []string{"edit_vendors"}})
	got, ok := OperatorFromContext(ctx)
	if !ok {
		t.Fatal("expected operator in context")
	}
	if !got.Admin || len(got.Permissions) != 1 {
		t.Fatalf("operator = %+v", got)
	}
	if UserIDFromContext(ctx) != "42" {
		t.Fatalf("UserIDFromContext = %q, want %q", UserIDFromContext(ctx), "42")
	}
}

func TestOperatorFromContextEmpty(t *testing.T) {
	t.Parallel()

	if _, ok := OperatorFromContext(context.Background()); ok {
		t.Fatal("expected no operator")
	}
	if _, ok := OperatorFromContext(nil); ok {
		t.Fatal("expected no operator for nil context")
	}
	if got := UserIDFromContext(nil); got != "" {
		t.Fatalf("expected empty user id, got %q", got)
	}
}

func TestWithOperatorNilContext(t *testing.T) {
	t.Parallel()

	ctx := WithOperator(nil, Operator{UserID: "7"})
	if UserIDFromContext(ctx) != "7" {
		t.Fatal("expected operator stored on background context")
	}
}

func TestLanguageAndRequestID(t *testing.T) {
	t.Parallel()

	ctx := WithLanguage(context.Background(), " ar ")
	ctx = WithRequestID(ctx, "req-1")
	if got := LanguageFromContext(ctx); got != "ar" {
		t.Fatalf("LanguageFromContext = %q, want ar", got)
	}
	if got := RequestIDFromContext(ctx); got != "req-1" {
		t.Fatalf("RequestIDFromContext = %q, want req-1", got)
	}
	if LanguageFromContext(nil) != "" || RequestIDFromContext(nil) != "" {
		t.Fatal("expected empty values for nil context")
	}
}
