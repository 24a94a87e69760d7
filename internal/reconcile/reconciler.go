package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"cinelog/internal/catalog"
	"cinelog/internal/identity"
	"cinelog/internal/logging"
	"cinelog/internal/services"
	"cinelog/internal/textutil"
	"cinelog/internal/tmdb"
)

// Reconciler converges provider detail payloads with the local catalog.
type Reconciler struct {
	store  *catalog.Store
	cache  *identity.Cache
	logger *slog.Logger
}

// New creates a Reconciler backed by the provided store and identity cache.
func New(store *catalog.Store, cache *identity.Cache, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		store:  store,
		cache:  cache,
		logger: logging.NewComponentLogger(logger, "reconcile"),
	}
}

// CreateBatch materializes the detail payloads as catalog rows. Sub-entities
// shared across the batch resolve once up front; each item then materializes
// independently so a single failure never blocks its siblings. The returned
// items come from a fresh store read at full relation depth, never from the
// in-memory payloads. An error return means a structural store failure, not
// a per-item one; per-item failures surface as skipped outcomes.
func (r *Reconciler) CreateBatch(ctx context.Context, kind catalog.MediaKind, details []tmdb.Detail) ([]*catalog.Item, []Outcome, error) {
	if len(details) == 0 {
		return nil, nil, nil
	}

	if err := r.resolveShared(ctx, details); err != nil {
		return nil, nil, err
	}

	outcomes := make([]Outcome, 0, len(details))
	ids := make([]int64, 0, len(details))
	for _, detail := range details {
		ids = append(ids, detail.ID)

		created, err := r.materializeItem(ctx, kind, detail)
		if err != nil {
			r.logger.Error("item materialization failed",
				logging.String(logging.FieldKind, string(kind)),
				logging.Int64(logging.FieldExternalID, detail.ID),
				logging.Error(err))
			outcomes = append(outcomes, Outcome{TMDBID: detail.ID, Status: StatusSkipped, Reason: err.Error()})
			continue
		}

		status := StatusExisting
		if created {
			status = StatusCreated
		}
		outcomes = append(outcomes, Outcome{TMDBID: detail.ID, Status: status})
	}

	items, err := r.store.ItemsByTMDBIDs(ctx, ids, catalog.AllRelations())
	if err != nil {
		return nil, nil, services.Wrap(nil, "reconcile", "read back", "", err)
	}
	return items, outcomes, nil
}

// entityOps adapts one identity namespace to its store operations. Lookups
// and creates report local ids; a zero id from bySlug means no match.
type entityOps struct {
	entity identity.Entity
	byIDs  func(ctx context.Context, ids []int64) (map[int64]int64, error)
	bySlug func(ctx context.Context, slug string) (int64, error)
	create func(ctx context.Context, name, slug string, tmdbID int64) (int64, error)
}

// resolveShared is the batch-shared pass: dedup every embedded genre,
// provider, and cast reference across the batch and make each one
// cache-resolvable before any item links against them.
func (r *Reconciler) resolveShared(ctx context.Context, details []tmdb.Detail) error {
	genres := make(map[int64]string)
	providers := make(map[int64]string)
	people := make(map[int64]string)
	for _, detail := range details {
		for _, genre := range detail.Genres {
			genres[genre.ID] = genre.Name
		}
		for _, provider := range detail.Providers {
			providers[provider.ID] = provider.Name
		}
		for _, member := range detail.Cast {
			people[member.ID] = member.Name
		}
	}

	passes := []struct {
		refs map[int64]string
		ops  entityOps
	}{
		{genres, r.categoryOps()},
		{providers, r.platformOps()},
		{people, r.personOps()},
	}
	for _, pass := range passes {
		if err := r.resolveEntities(ctx, pass.ops, pass.refs); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reconciler) resolveEntities(ctx context.Context, ops entityOps, refs map[int64]string) error {
	pending := make([]int64, 0, len(refs))
	for externalID := range refs {
		if externalID <= 0 {
			continue
		}
		if _, ok := r.cache.Resolve(ops.entity, externalID); !ok {
			pending = append(pending, externalID)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	found, err := ops.byIDs(ctx, pending)
	if err != nil {
		return services.Wrap(nil, "reconcile", "resolve "+string(ops.entity), "lookup by external id", err)
	}
	for externalID, localID := range found {
		r.cache.Remember(ops.entity, externalID, localID)
	}

	for _, externalID := range pending {
		if _, ok := found[externalID]; ok {
			continue
		}
		name := refs[externalID]
		slug := textutil.Slugify(name)
		if slug == "" {
			r.logger.Warn("sub-entity has no usable name",
				logging.String(logging.FieldEntity, string(ops.entity)),
				logging.Int64(logging.FieldExternalID, externalID))
			continue
		}

		localID, err := ops.bySlug(ctx, slug)
		if err == nil && localID > 0 {
			// pre-existing row without an external id: reuse it and make
			// the external id resolvable from here on
			r.cache.Remember(ops.entity, externalID, localID)
			continue
		}
		if err != nil {
			r.logger.Warn("slug lookup failed",
				logging.String(logging.FieldEntity, string(ops.entity)),
				logging.String("slug", slug),
				logging.Error(err))
		}

		localID, err = ops.create(ctx, name, slug, externalID)
		if err != nil {
			r.logger.Warn("sub-entity creation failed, attempting recovery lookup",
				logging.String(logging.FieldEntity, string(ops.entity)),
				logging.Int64(logging.FieldExternalID, externalID),
				logging.Error(err))
			localID = r.recoverByExternalID(ctx, ops, externalID)
			if localID == 0 {
				// unresolved for this pass; links referencing it are dropped
				continue
			}
		}
		r.cache.Remember(ops.entity, externalID, localID)
	}
	return nil
}

// recoverByExternalID handles the race where a concurrent writer created the
// row between our lookup and our insert. One attempt only.
func (r *Reconciler) recoverByExternalID(ctx context.Context, ops entityOps, externalID int64) int64 {
	found, err := ops.byIDs(ctx, []int64{externalID})
	if err != nil {
		r.logger.Warn("recovery lookup failed",
			logging.String(logging.FieldEntity, string(ops.entity)),
			logging.Int64(logging.FieldExternalID, externalID),
			logging.Error(err))
		return 0
	}
	return found[externalID]
}

func (r *Reconciler) materializeItem(ctx context.Context, kind catalog.MediaKind, detail tmdb.Detail) (bool, error) {
	slug := textutil.Slugify(detail.Title)
	if slug == "" {
		return false, fmt.Errorf("payload %d has no usable title", detail.ID)
	}

	item, created, err := r.store.CreateItem(ctx, &catalog.Item{
		Kind:          kind,
		Title:         detail.Title,
		Slug:          slug,
		TMDBID:        detail.ID,
		Overview:      detail.Overview,
		ReleaseDate:   detail.ReleaseDate,
		RatingAverage: detail.VoteAverage,
		RatingCount:   detail.VoteCount,
	})
	if err != nil {
		return false, fmt.Errorf("create item: %w", err)
	}

	if err := r.linkRelations(ctx, item.ID, detail); err != nil {
		return created, err
	}
	if kind == catalog.KindSeries {
		if err := r.materializeSeasons(ctx, item.ID, detail.Seasons); err != nil {
			return created, err
		}
	}
	return created, nil
}

// linkRelations writes link rows for every reference the batch pass managed
// to resolve. References left unresolved are dropped without error.
func (r *Reconciler) linkRelations(ctx context.Context, itemID int64, detail tmdb.Detail) error {
	var categoryIDs []int64
	for _, genre := range detail.Genres {
		if localID, ok := r.cache.Resolve(identity.Category, genre.ID); ok {
			categoryIDs = append(categoryIDs, localID)
		}
	}
	if len(categoryIDs) > 0 {
		if err := r.store.LinkCategories(ctx, itemID, categoryIDs); err != nil {
			return fmt.Errorf("link categories: %w", err)
		}
	}

	var platformIDs []int64
	for _, provider := range detail.Providers {
		if localID, ok := r.cache.Resolve(identity.Platform, provider.ID); ok {
			platformIDs = append(platformIDs, localID)
		}
	}
	if len(platformIDs) > 0 {
		if err := r.store.LinkPlatforms(ctx, itemID, platformIDs); err != nil {
			return fmt.Errorf("link platforms: %w", err)
		}
	}

	var credits []catalog.CastLink
	for _, member := range detail.Cast {
		if localID, ok := r.cache.Resolve(identity.Cast, member.ID); ok {
			credits = append(credits, catalog.CastLink{
				PersonID:  localID,
				Character: member.Character,
				Order:     member.Order,
			})
		}
	}
	if len(credits) > 0 {
		if err := r.store.LinkCast(ctx, itemID, credits); err != nil {
			return fmt.Errorf("link cast: %w", err)
		}
	}
	return nil
}

func (r *Reconciler) materializeSeasons(ctx context.Context, itemID int64, seasons []tmdb.Season) error {
	for _, payload := range seasons {
		seasonID, err := r.resolveSeason(ctx, itemID, payload)
		if err != nil {
			return fmt.Errorf("season %d: %w", payload.SeasonNumber, err)
		}
		for _, episode := range payload.Episodes {
			if err := r.resolveEpisode(ctx, seasonID, episode); err != nil {
				return fmt.Errorf("season %d episode %d: %w", payload.SeasonNumber, episode.EpisodeNumber, err)
			}
		}
	}
	return nil
}

func (r *Reconciler) resolveSeason(ctx context.Context, itemID int64, payload tmdb.Season) (int64, error) {
	if localID, ok := r.cache.Resolve(identity.Season, payload.ID); ok {
		return localID, nil
	}
	if existing, err := r.store.SeasonByTMDBID(ctx, payload.ID); err != nil {
		return 0, err
	} else if existing != nil {
		r.cache.Remember(identity.Season, payload.ID, existing.ID)
		return existing.ID, nil
	}

	season, _, err := r.store.CreateSeason(ctx, &catalog.Season{
		ItemID:  itemID,
		TMDBID:  payload.ID,
		Number:  payload.SeasonNumber,
		Name:    payload.Name,
		AirDate: payload.AirDate,
	})
	if err != nil {
		return 0, err
	}
	r.cache.Remember(identity.Season, payload.ID, season.ID)
	return season.ID, nil
}

func (r *Reconciler) resolveEpisode(ctx context.Context, seasonID int64, payload tmdb.Episode) error {
	if _, ok := r.cache.Resolve(identity.Episode, payload.ID); ok {
		return nil
	}
	if existing, err := r.store.EpisodeByTMDBID(ctx, payload.ID); err != nil {
		return err
	} else if existing != nil {
		r.cache.Remember(identity.Episode, payload.ID, existing.ID)
		return nil
	}

	episode, _, err := r.store.CreateEpisode(ctx, &catalog.Episode{
		SeasonID: seasonID,
		TMDBID:   payload.ID,
		Number:   payload.EpisodeNumber,
		Name:     payload.Name,
		AirDate:  payload.AirDate,
		Runtime:  payload.Runtime,
	})
	if err != nil {
		return err
	}
	r.cache.Remember(identity.Episode, payload.ID, episode.ID)
	return nil
}

func (r *Reconciler) categoryOps() entityOps {
	return entityOps{
		entity: identity.Category,
		byIDs: func(ctx context.Context, ids []int64) (map[int64]int64, error) {
			rows, err := r.store.CategoriesByTMDBIDs(ctx, ids)
			if err != nil {
				return nil, err
			}
			found := make(map[int64]int64, len(rows))
			for _, row := range rows {
				found[row.TMDBID] = row.ID
			}
			return found, nil
		},
		bySlug: func(ctx context.Context, slug string) (int64, error) {
			row, err := r.store.CategoryBySlug(ctx, slug)
			if err != nil || row == nil {
				return 0, err
			}
			return row.ID, nil
		},
		create: func(ctx context.Context, name, slug string, tmdbID int64) (int64, error) {
			row, _, err := r.store.CreateCategory(ctx, name, slug, tmdbID)
			if err != nil {
				return 0, err
			}
			return row.ID, nil
		},
	}
}

func (r *Reconciler) platformOps() entityOps {
	return entityOps{
		entity: identity.Platform,
		byIDs: func(ctx context.Context, ids []int64) (map[int64]int64, error) {
			rows, err := r.store.PlatformsByTMDBIDs(ctx, ids)
			if err != nil {
				return nil, err
			}
			found := make(map[int64]int64, len(rows))
			for _, row := range rows {
				found[row.TMDBID] = row.ID
			}
			return found, nil
		},
		bySlug: func(ctx context.Context, slug string) (int64, error) {
			row, err := r.store.PlatformBySlug(ctx, slug)
			if err != nil || row == nil {
				return 0, err
			}
			return row.ID, nil
		},
		create: func(ctx context.Context, name, slug string, tmdbID int64) (int64, error) {
			row, _, err := r.store.CreatePlatform(ctx, name, slug, tmdbID)
			if err != nil {
				return 0, err
			}
			return row.ID, nil
		},
	}
}

func (r *Reconciler) personOps() entityOps {
	return entityOps{
		entity: identity.Cast,
		byIDs: func(ctx context.Context, ids []int64) (map[int64]int64, error) {
			rows, err := r.store.PeopleByTMDBIDs(ctx, ids)
			if err != nil {
				return nil, err
			}
			found := make(map[int64]int64, len(rows))
			for _, row := range rows {
				found[row.TMDBID] = row.ID
			}
			return found, nil
		},
		bySlug: func(ctx context.Context, slug string) (int64, error) {
			row, err := r.store.PersonBySlug(ctx, slug)
			if err != nil || row == nil {
				return 0, err
			}
			return row.ID, nil
		},
		create: func(ctx context.Context, name, slug string, tmdbID int64) (int64, error) {
			row, _, err := r.store.CreatePerson(ctx, name, slug, tmdbID)
			if err != nil {
				return 0, err
			}
			return row.ID, nil
		},
	}
}
