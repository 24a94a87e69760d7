// Package textutil provides the slug derivation shared by the catalog
// store and the reconciliation engine. Slugs are the fallback identity for
// sub-entities that arrive without a usable external id, so every caller
// must derive them identically.
package textutil
