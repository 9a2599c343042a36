// Package context carries request-scoped correlation values used by logs and traces.
package context

import (
	"context"
	"strconv"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	operatorIDKey
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

func WithOperatorID(ctx context.Context, operatorID int64) context.Context {
	return context.WithValue(ctx, operatorIDKey, operatorID)
}

// OperatorIDFromContext returns the authenticated operator, or 0 when unset.
func OperatorIDFromContext(ctx context.Context) int64 {
	if ctx == nil {
		return 0
	}
	v, _ := ctx.Value(operatorIDKey).(int64)
	return v
}

func operatorIDString(ctx context.Context) string {
	id := OperatorIDFromContext(ctx)
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

// OperatorIDString formats the operator id for log fields.
func OperatorIDString(ctx context.Context) string {
	return operatorIDString(ctx)
}

// FolioKey is the gin context key handlers set once a ticket is known.
const FolioKey = "folio"

// ActionForRoute names the ticket lifecycle step a route performs, or ""
// for routes outside the lifecycle.
func ActionForRoute(route string) string {
	switch route {
	case "/api/tickets/entry":
		return "entry"
	case "/api/tickets/exit":
		return "exit"
	case "/api/tickets/payments":
		return "manual_payment"
	case "/api/tickets/open", "/api/tickets/:folio":
		return "lookup"
	case "/api/login":
		return "login"
	default:
		return ""
	}
}
