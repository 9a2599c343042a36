package context

import (
	"context"
	"testing"
)

func TestRequestAndOperatorRoundTrip(t *testing.T) {
	ctx := WithOperatorID(WithRequestID(context.Background(), "req-1"), 7)

	if got := RequestIDFromContext(ctx); got != "req-1" {
		t.Fatalf("expected req-1, got %q", got)
	}
	if got := OperatorIDFromContext(ctx); got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
	if got := OperatorIDString(ctx); got != "7" {
		t.Fatalf("expected \"7\", got %q", got)
	}
	if got := OperatorIDString(context.Background()); got != "" {
		t.Fatalf("expected empty operator, got %q", got)
	}
}

func TestActionForRoute(t *testing.T) {
	cases := map[string]string{
		"/api/tickets/entry":    "entry",
		"/api/tickets/exit":     "exit",
		"/api/tickets/payments": "manual_payment",
		"/api/tickets/:folio":   "lookup",
		"/metrics":              "",
	}
	for route, want := range cases {
		if got := ActionForRoute(route); got != want {
			t.Fatalf("route %s: expected %q, got %q", route, want, got)
		}
	}
}
