// Package logging defines the structured logger used across the service.
// The variadic args are key-value pairs, e.g. log.Info(ctx, "user registered", "email", email).
package logging

import "context"

type Logger interface {
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key-value pairs.
	With(args ...any) Logger
}
