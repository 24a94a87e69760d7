// Package identity memoizes external-provider identifiers to local catalog
// ids. One map per entity type keeps overlapping numeric ranges from the
// same provider apart. The cache is a derived, non-authoritative index over
// the catalog store: it is populated lazily during reconciliation, never
// evicted within a process lifetime, and reset only for test isolation.
package identity
