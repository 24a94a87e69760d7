package catalog_test

import (
	"context"
	"testing"

	"cinelog/internal/catalog"
	"cinelog/internal/testsupport"
)

func TestOpenAppliesMigrations(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	item, created, err := store.CreateItem(ctx, &catalog.Item{
		Kind:   catalog.KindMovie,
		Title:  "The Matrix",
		Slug:   "the-matrix",
		TMDBID: 603,
	})
	if err != nil {
		t.Fatalf("CreateItem failed: %v", err)
	}
	if !created || item.ID == 0 {
		t.Fatalf("expected new row with assigned id, got created=%v id=%d", created, item.ID)
	}

	fetched, err := store.ItemBySlug(ctx, "the-matrix", catalog.RelationOptions{})
	if err != nil {
		t.Fatalf("ItemBySlug failed: %v", err)
	}
	if fetched == nil || fetched.Title != "The Matrix" || fetched.TMDBID != 603 {
		t.Fatalf("unexpected fetched item: %#v", fetched)
	}
}

func TestCreateItemRequiresSlug(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	if _, _, err := store.CreateItem(context.Background(), &catalog.Item{
		Kind:  catalog.KindMovie,
		Title: "No Slug",
	}); err == nil {
		t.Fatal("expected error when slug missing")
	}
}

func TestCreateItemConvergesOnConflict(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	first, created, err := store.CreateItem(ctx, &catalog.Item{
		Kind:   catalog.KindMovie,
		Title:  "Alien",
		Slug:   "alien",
		TMDBID: 348,
	})
	if err != nil || !created {
		t.Fatalf("first insert failed: created=%v err=%v", created, err)
	}

	second, created, err := store.CreateItem(ctx, &catalog.Item{
		Kind:   catalog.KindMovie,
		Title:  "Alien",
		Slug:   "alien",
		TMDBID: 348,
	})
	if err != nil {
		t.Fatalf("second insert failed: %v", err)
	}
	if created {
		t.Fatal("expected convergence on existing row")
	}
	if second.ID != first.ID {
		t.Fatalf("expected same row, got %d and %d", first.ID, second.ID)
	}
}

func TestCreateItemSlugConflictWithoutExternalID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	first, _, err := store.CreateItem(ctx, &catalog.Item{
		Kind:  catalog.KindMovie,
		Title: "Solaris",
		Slug:  "solaris",
	})
	if err != nil {
		t.Fatalf("first insert failed: %v", err)
	}

	second, created, err := store.CreateItem(ctx, &catalog.Item{
		Kind:  catalog.KindMovie,
		Title: "Solaris",
		Slug:  "solaris",
	})
	if err != nil {
		t.Fatalf("second insert failed: %v", err)
	}
	if created || second.ID != first.ID {
		t.Fatalf("expected convergence on slug, got created=%v ids %d/%d", created, first.ID, second.ID)
	}
}

func TestItemsByTMDBIDs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	testsupport.NewItem(t, store, catalog.KindMovie, "First Movie", 11)
	testsupport.NewItem(t, store, catalog.KindMovie, "Second Movie", 22)
	testsupport.NewItem(t, store, catalog.KindMovie, "Third Movie", 33)

	items, err := store.ItemsByTMDBIDs(context.Background(), []int64{11, 33, 99}, catalog.RelationOptions{})
	if err != nil {
		t.Fatalf("ItemsByTMDBIDs failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(items))
	}
}

func TestEntityUpsertAndLookup(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	category, created, err := store.CreateCategory(ctx, "Science Fiction", "science-fiction", 878)
	if err != nil || !created {
		t.Fatalf("CreateCategory failed: created=%v err=%v", created, err)
	}

	again, created, err := store.CreateCategory(ctx, "Science Fiction", "science-fiction", 878)
	if err != nil {
		t.Fatalf("repeat CreateCategory failed: %v", err)
	}
	if created || again.ID != category.ID {
		t.Fatalf("expected convergence, got created=%v ids %d/%d", created, category.ID, again.ID)
	}

	bySlug, err := store.CategoryBySlug(ctx, "science-fiction")
	if err != nil {
		t.Fatalf("CategoryBySlug failed: %v", err)
	}
	if bySlug == nil || bySlug.TMDBID != 878 {
		t.Fatalf("unexpected category: %#v", bySlug)
	}

	byIDs, err := store.CategoriesByTMDBIDs(ctx, []int64{878, 999})
	if err != nil {
		t.Fatalf("CategoriesByTMDBIDs failed: %v", err)
	}
	if len(byIDs) != 1 || byIDs[0].Name != "Science Fiction" {
		t.Fatalf("unexpected categories: %#v", byIDs)
	}
}

func TestLinkAndHydrateRelations(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	item := testsupport.NewItem(t, store, catalog.KindMovie, "Linked Movie", 777)

	category, _, err := store.CreateCategory(ctx, "Drama", "drama", 18)
	if err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}
	platform, _, err := store.CreatePlatform(ctx, "Netflix", "netflix", 8)
	if err != nil {
		t.Fatalf("CreatePlatform failed: %v", err)
	}
	lead, _, err := store.CreatePerson(ctx, "Lead Actor", "lead-actor", 500)
	if err != nil {
		t.Fatalf("CreatePerson failed: %v", err)
	}
	support, _, err := store.CreatePerson(ctx, "Supporting Actor", "supporting-actor", 501)
	if err != nil {
		t.Fatalf("CreatePerson failed: %v", err)
	}

	if err := store.LinkCategories(ctx, item.ID, []int64{category.ID}); err != nil {
		t.Fatalf("LinkCategories failed: %v", err)
	}
	if err := store.LinkPlatforms(ctx, item.ID, []int64{platform.ID}); err != nil {
		t.Fatalf("LinkPlatforms failed: %v", err)
	}
	if err := store.LinkCast(ctx, item.ID, []catalog.CastLink{
		{PersonID: support.ID, Character: "Friend", Order: 1},
		{PersonID: lead.ID, Character: "Hero", Order: 0},
	}); err != nil {
		t.Fatalf("LinkCast failed: %v", err)
	}
	// repeated links must be a no-op
	if err := store.LinkCategories(ctx, item.ID, []int64{category.ID}); err != nil {
		t.Fatalf("repeat LinkCategories failed: %v", err)
	}

	hydrated, err := store.ItemByID(ctx, item.ID, catalog.AllRelations())
	if err != nil {
		t.Fatalf("ItemByID failed: %v", err)
	}
	if len(hydrated.Categories) != 1 || hydrated.Categories[0].Name != "Drama" {
		t.Fatalf("unexpected categories: %#v", hydrated.Categories)
	}
	if len(hydrated.Platforms) != 1 || hydrated.Platforms[0].Name != "Netflix" {
		t.Fatalf("unexpected platforms: %#v", hydrated.Platforms)
	}
	if len(hydrated.Cast) != 2 {
		t.Fatalf("expected 2 cast credits, got %d", len(hydrated.Cast))
	}
	if hydrated.Cast[0].Person.Name != "Lead Actor" || hydrated.Cast[0].Character != "Hero" {
		t.Fatalf("expected cast ordered by billing, got %#v", hydrated.Cast)
	}
}

func TestSeasonsAndEpisodes(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	show := testsupport.NewItem(t, store, catalog.KindSeries, "A Show", 1399)

	season, created, err := store.CreateSeason(ctx, &catalog.Season{
		ItemID: show.ID,
		TMDBID: 3624,
		Number: 1,
		Name:   "Season 1",
	})
	if err != nil || !created {
		t.Fatalf("CreateSeason failed: created=%v err=%v", created, err)
	}

	again, created, err := store.CreateSeason(ctx, &catalog.Season{
		ItemID: show.ID,
		TMDBID: 3624,
		Number: 1,
	})
	if err != nil {
		t.Fatalf("repeat CreateSeason failed: %v", err)
	}
	if created || again.ID != season.ID {
		t.Fatalf("expected convergence, got created=%v ids %d/%d", created, season.ID, again.ID)
	}

	if _, _, err := store.CreateEpisode(ctx, &catalog.Episode{
		SeasonID: season.ID,
		TMDBID:   63056,
		Number:   1,
		Name:     "Winter Is Coming",
		Runtime:  62,
	}); err != nil {
		t.Fatalf("CreateEpisode failed: %v", err)
	}
	if _, _, err := store.CreateEpisode(ctx, &catalog.Episode{
		SeasonID: season.ID,
		TMDBID:   63057,
		Number:   2,
		Name:     "The Kingsroad",
	}); err != nil {
		t.Fatalf("CreateEpisode failed: %v", err)
	}

	seasons, err := store.SeasonsForItem(ctx, show.ID)
	if err != nil {
		t.Fatalf("SeasonsForItem failed: %v", err)
	}
	if len(seasons) != 1 || len(seasons[0].Episodes) != 2 {
		t.Fatalf("unexpected seasons: %#v", seasons)
	}
	if seasons[0].Episodes[0].Runtime != 62 {
		t.Fatalf("unexpected first episode: %#v", seasons[0].Episodes[0])
	}

	byID, err := store.SeasonByTMDBID(ctx, 3624)
	if err != nil {
		t.Fatalf("SeasonByTMDBID failed: %v", err)
	}
	if byID == nil || byID.ID != season.ID {
		t.Fatalf("unexpected season lookup: %#v", byID)
	}
}

func TestSeasonsOnlyHydratedForSeries(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	movie := testsupport.NewItem(t, store, catalog.KindMovie, "Plain Movie", 42)

	hydrated, err := store.ItemByID(context.Background(), movie.ID, catalog.AllRelations())
	if err != nil {
		t.Fatalf("ItemByID failed: %v", err)
	}
	if hydrated.Seasons != nil {
		t.Fatalf("movies must not carry seasons: %#v", hydrated.Seasons)
	}
}

func TestCountItems(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	tagged := testsupport.NewItem(t, store, catalog.KindMovie, "Space Opera", 1)
	testsupport.NewItem(t, store, catalog.KindMovie, "Space Drama", 2)
	testsupport.NewItem(t, store, catalog.KindSeries, "Space Show", 3)

	category, _, err := store.CreateCategory(ctx, "Science Fiction", "science-fiction", 878)
	if err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}
	if err := store.LinkCategories(ctx, tagged.ID, []int64{category.ID}); err != nil {
		t.Fatalf("LinkCategories failed: %v", err)
	}

	total, err := store.CountItems(ctx, catalog.KindMovie, catalog.ItemFilter{})
	if err != nil {
		t.Fatalf("CountItems failed: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 movies, got %d", total)
	}

	byTitle, err := store.CountItems(ctx, catalog.KindMovie, catalog.ItemFilter{Title: "opera"})
	if err != nil {
		t.Fatalf("CountItems with title failed: %v", err)
	}
	if byTitle != 1 {
		t.Fatalf("expected 1 title match, got %d", byTitle)
	}

	byCategory, err := store.CountItems(ctx, catalog.KindMovie, catalog.ItemFilter{CategoryIDs: []int64{878}})
	if err != nil {
		t.Fatalf("CountItems with category failed: %v", err)
	}
	if byCategory != 1 {
		t.Fatalf("expected 1 category match, got %d", byCategory)
	}
}
