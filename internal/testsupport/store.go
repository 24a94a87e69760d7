package testsupport

import (
	"context"
	"testing"

	"cinelog/internal/catalog"
	"cinelog/internal/config"
	"cinelog/internal/textutil"
)

// MustOpenStore opens a catalog.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewItem creates a catalog item for tests using the provided store.
func NewItem(t testing.TB, store *catalog.Store, kind catalog.MediaKind, title string, tmdbID int64) *catalog.Item {
	t.Helper()

	item, _, err := store.CreateItem(context.Background(), &catalog.Item{
		Kind:   kind,
		Title:  title,
		Slug:   textutil.Slugify(title),
		TMDBID: tmdbID,
	})
	if err != nil {
		t.Fatalf("store.CreateItem: %v", err)
	}
	return item
}
