// Package httpapi exposes the catalog over HTTP. Listing endpoints wrap the
// query orchestrator; every request carries a correlation id so log lines
// across the layers can be tied together.
package httpapi
