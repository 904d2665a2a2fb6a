// Package logging assembles structured slog loggers and formatting helpers
// used across rollcall components.
//
// It owns the configurable console/JSON handlers, centralizes level and
// output plumbing, and exposes context-aware helpers so components tag log
// lines with resync cycle IDs and correlation IDs consistently. A no-op
// logger is provided for tests and wiring code that cannot fail.
package logging
