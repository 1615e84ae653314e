// Package logging assembles structured slog loggers and formatting helpers used
// across rpgdecrypt.
//
// It owns the console/JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so pipeline code can tag every line with
// the run identifier. The package also provides a no-op logger for tests and
// wiring code that cannot fail.
package logging
