// Package catalog persists the local catalog in SQLite and exposes the
// lookups the reconciliation engine and query orchestrator depend on.
//
// The Store manages database connections, schema migrations, batch
// lookups by external (TMDB) id, slug lookups, insert-or-get creation,
// relation link writes, and selectable-depth relation hydration. Catalog
// rows are created lazily by reconciliation and never deleted here.
//
// Creation methods are single-round-trip upserts: an insert that loses a
// unique-constraint race on external id or slug converges on the existing
// row instead of failing, so concurrent reconciliations cannot produce
// duplicates. Treat this package as the single source of truth for
// catalog identity; the in-memory identity cache is a derived index over
// it.
package catalog
