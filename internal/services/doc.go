// Package services holds cross-cutting service conventions: the sentinel
// error taxonomy used to classify failures across the engine, and context
// annotations that carry request correlation identifiers into logs.
package services
