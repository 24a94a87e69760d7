package query

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"cinelog/internal/catalog"
	"cinelog/internal/logging"
	"cinelog/internal/reconcile"
	"cinelog/internal/services"
	"cinelog/internal/tmdb"
)

// Connector is the slice of the TMDB client the orchestrator consumes.
type Connector interface {
	Discover(ctx context.Context, kind tmdb.Kind, page int, categoryIDs []int64) (*tmdb.Page, error)
	Search(ctx context.Context, kind tmdb.Kind, query string, page int) (*tmdb.Page, error)
	MultipleDetails(ctx context.Context, kind tmdb.Kind, ids []int64) ([]tmdb.Detail, error)
}

// Params describes one listing request.
type Params struct {
	Kind catalog.MediaKind
	// Query switches the provider call from discover to search.
	Query       string
	Page        int
	CategoryIDs []int64
	Relations   catalog.RelationOptions
}

// Result is one merged listing page.
type Result struct {
	Items []*catalog.Item
	// Total counts locally held items of the kind, not the provider's
	// reported total.
	Total int64
	Page  int
}

// Orchestrator blends local catalog rows with provider listings.
type Orchestrator struct {
	store      *catalog.Store
	connector  Connector
	reconciler *reconcile.Reconciler
	logger     *slog.Logger
}

// New creates an Orchestrator.
func New(store *catalog.Store, connector Connector, reconciler *reconcile.Reconciler, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		store:      store,
		connector:  connector,
		reconciler: reconciler,
		logger:     logging.NewComponentLogger(logger, "query"),
	}
}

// Browse serves one listing page. The provider decides which external ids
// belong on the page; ids the catalog is missing are reconciled in before
// the merged page returns, re-sorted to the provider's ranking. Provider
// and store failures propagate; only per-item reconcile failures are
// absorbed.
func (o *Orchestrator) Browse(ctx context.Context, params Params) (*Result, error) {
	if _, err := catalog.ParseMediaKind(string(params.Kind)); err != nil {
		return nil, services.Wrap(services.ErrValidation, "query", "browse", "", err)
	}
	page := params.Page
	if page < 1 {
		page = 1
	}
	if _, ok := services.RequestIDFromContext(ctx); !ok {
		ctx = services.WithRequestID(ctx, uuid.NewString())
	}
	logger := logging.WithContext(ctx, o.logger)

	providerKind := tmdb.KindMovie
	if params.Kind == catalog.KindSeries {
		providerKind = tmdb.KindSeries
	}

	var (
		listing *tmdb.Page
		err     error
	)
	if query := strings.TrimSpace(params.Query); query != "" {
		listing, err = o.connector.Search(ctx, providerKind, query, page)
	} else {
		listing, err = o.connector.Discover(ctx, providerKind, page, params.CategoryIDs)
	}
	if err != nil {
		return nil, err
	}

	if len(listing.IDs) == 0 {
		logger.Debug("provider returned empty page",
			logging.String(logging.FieldKind, string(params.Kind)),
			logging.Int("page", page))
		return &Result{Page: page}, nil
	}

	existing, err := o.store.ItemsByTMDBIDs(ctx, listing.IDs, catalog.AllRelations())
	if err != nil {
		return nil, services.Wrap(nil, "query", "existing lookup", "", err)
	}

	byExternalID := make(map[int64]*catalog.Item, len(listing.IDs))
	for _, item := range existing {
		byExternalID[item.TMDBID] = item
	}

	var missing []int64
	for _, id := range listing.IDs {
		if _, ok := byExternalID[id]; !ok {
			missing = append(missing, id)
		}
	}

	if len(missing) > 0 {
		details, err := o.connector.MultipleDetails(ctx, providerKind, missing)
		if err != nil {
			return nil, err
		}
		created, outcomes, err := o.reconciler.CreateBatch(ctx, params.Kind, details)
		if err != nil {
			return nil, err
		}
		for _, outcome := range outcomes {
			if outcome.Status == reconcile.StatusSkipped {
				logger.Warn("listing item skipped during reconcile",
					logging.Int64(logging.FieldExternalID, outcome.TMDBID),
					logging.String("reason", outcome.Reason))
			}
		}
		for _, item := range created {
			byExternalID[item.TMDBID] = item
		}
	}

	// merge in the provider's ranking for the page
	merged := make([]*catalog.Item, 0, len(listing.IDs))
	for _, id := range listing.IDs {
		if item, ok := byExternalID[id]; ok {
			merged = append(merged, stripRelations(item, params.Relations))
		}
	}

	total, err := o.store.CountItems(ctx, params.Kind, catalog.ItemFilter{
		Title:       params.Query,
		CategoryIDs: params.CategoryIDs,
	})
	if err != nil {
		return nil, services.Wrap(nil, "query", "count", "", err)
	}

	logger.Info("listing served",
		logging.String(logging.FieldKind, string(params.Kind)),
		logging.Int("page", page),
		logging.Int("returned", len(merged)),
		logging.Int("reconciled", len(missing)))

	return &Result{Items: merged, Total: total, Page: page}, nil
}

// stripRelations narrows a fully hydrated item to the relations the caller
// asked for. Creation always runs at full depth; reads may not want it.
func stripRelations(item *catalog.Item, rel catalog.RelationOptions) *catalog.Item {
	narrowed := *item
	if !rel.Categories {
		narrowed.Categories = nil
	}
	if !rel.Platforms {
		narrowed.Platforms = nil
	}
	if !rel.Cast {
		narrowed.Cast = nil
	}
	if !rel.Seasons {
		narrowed.Seasons = nil
	}
	return &narrowed
}
