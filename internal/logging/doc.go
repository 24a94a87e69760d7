// Package logging constructs the slog loggers used across cinelog.
//
// It provides a human-readable console handler for interactive use, a JSON
// handler for machine consumption, typed attribute helpers so call sites
// stay terse, and component loggers that stamp a standardized component
// attribute on every record. Context helpers surface request correlation
// identifiers in structured output.
package logging
