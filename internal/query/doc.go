// Package query serves catalog listings by blending local rows with
// external metadata. Listings always reflect the provider's ordering for
// the requested page; anything the catalog is missing gets reconciled in
// before the page returns.
package query
