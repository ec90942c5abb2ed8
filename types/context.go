package types

import "context"

// contextKey is used for storing values in context.Context.
type contextKey string

const (
	keyRunID contextKey = "run_id"
	keyTurn  contextKey = "turn"
	keyPhase contextKey = "phase"
)

// WithRunID adds run ID to context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, keyRunID, runID)
}

// RunID extracts run ID from context.
func RunID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyRunID).(string)
	return v, ok && v != ""
}

// WithTurn records the external turn number being executed.
func WithTurn(ctx context.Context, turn int) context.Context {
	return context.WithValue(ctx, keyTurn, turn)
}

// Turn extracts the external turn number from context.
func Turn(ctx context.Context) (int, bool) {
	v, ok := ctx.Value(keyTurn).(int)
	return v, ok
}

// WithPhase labels the kind of completion call in flight
// (persona, evaluation, summary). Metrics and logs use it.
func WithPhase(ctx context.Context, phase string) context.Context {
	return context.WithValue(ctx, keyPhase, phase)
}

// Phase extracts the call phase from context, "unknown" if unset.
func Phase(ctx context.Context) string {
	if v, ok := ctx.Value(keyPhase).(string); ok && v != "" {
		return v
	}
	return "unknown"
}
