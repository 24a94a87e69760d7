// Package reconcile converges external metadata payloads with the local
// catalog. A batch pass resolves the sub-entities shared across the batch
// once, then materializes each item best-effort so one failure never blocks
// its siblings.
package reconcile
