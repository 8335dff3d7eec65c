// Package requestctx carries per-request operator state through context.
package requestctx

import (
	"context"
	"strings"
)

// Operator is the signed-in back-office operator for one request.
type Operator struct {
	UserID      string
	Name        string
	Admin       bool
	Permissions []string
	CSRFToken   string
}

type operatorContextKey struct{}

type languageContextKey struct{}

type requestIDContextKey struct{}

// WithOperator stores the operator in context.
func WithOperator(ctx context.Context, operator Operator) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, operatorContextKey{}, operator)
}

// OperatorFromContext returns the operator stored in context.
func OperatorFromContext(ctx context.Context) (Operator, bool) {
	if ctx == nil {
		return Operator{}, false
	}
	operator, ok := ctx.Value(operatorContextKey{}).(Operator)
	return operator, ok
}

// UserIDFromContext returns the operator user id, or "" when unauthenticated.
func UserIDFromContext(ctx context.Context) string {
	operator, _ := OperatorFromContext(ctx)
	return strings.TrimSpace(operator.UserID)
}

// WithLanguage stores the negotiated UI language.
func WithLanguage(ctx context.Context, lang string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, languageContextKey{}, strings.TrimSpace(lang))
}

// LanguageFromContext returns the negotiated UI language.
func LanguageFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(languageContextKey{}).(string)
	return value
}

// WithRequestID stores the correlation id of the inbound request.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, requestIDContextKey{}, strings.TrimSpace(requestID))
}

// RequestIDFromContext returns the inbound correlation id.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(requestIDContextKey{}).(string)
	return value
}
