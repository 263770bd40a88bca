package bff

import "log/slog"

// Option configures an Archive.
type Option func(*Archive)

// WithLogger sets the logger used for scan and extraction diagnostics.
// Without it, logging is discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Archive) {
		a.logger = logger
	}
}
