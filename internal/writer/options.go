package writer

import "log/slog"

// Option configures a BufferedWriter.
type Option func(*BufferedWriter)

// WithLogger sets the logger used for flush diagnostics.
// If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(w *BufferedWriter) {
		if logger != nil {
			w.logger = logger
		}
	}
}
