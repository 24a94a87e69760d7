package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const itemColumns = "id, kind, title, slug, tmdb_id, overview, release_date, rating_average, rating_count, view_count, created_at, updated_at"

// CreateItem inserts a catalog item, converging on the existing row when the
// external id or slug already exists. The boolean reports whether a new row
// was created.
func (s *Store) CreateItem(ctx context.Context, item *Item) (*Item, bool, error) {
	if item == nil {
		return nil, false, errors.New("item is nil")
	}
	if item.Title == "" {
		return nil, false, errors.New("item title is empty")
	}
	if item.Slug == "" {
		return nil, false, errors.New("item slug is empty")
	}
	if _, err := ParseMediaKind(string(item.Kind)); err != nil {
		return nil, false, err
	}

	now := timestamp(time.Now())
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO catalog_items (
            kind, title, slug, tmdb_id, overview, release_date,
            rating_average, rating_count, view_count, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT DO NOTHING`,
		string(item.Kind),
		item.Title,
		item.Slug,
		nullableID(item.TMDBID),
		nullableString(item.Overview),
		nullableString(item.ReleaseDate),
		item.RatingAverage,
		item.RatingCount,
		item.ViewCount,
		now,
		now,
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert item: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("rows affected: %w", err)
	}

	var existing *Item
	if item.TMDBID > 0 {
		existing, err = s.itemWhere(ctx, "tmdb_id = ?", item.TMDBID)
	} else {
		existing, err = s.itemWhere(ctx, "slug = ?", item.Slug)
	}
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, fmt.Errorf("item %q missing after insert", item.Slug)
	}
	return existing, affected > 0, nil
}

// ItemByID fetches a catalog item by local id with the requested relations.
// Returns nil when no row matches.
func (s *Store) ItemByID(ctx context.Context, id int64, rel RelationOptions) (*Item, error) {
	item, err := s.itemWhere(ctx, "id = ?", id)
	if err != nil || item == nil {
		return item, err
	}
	if err := s.loadRelations(ctx, []*Item{item}, rel); err != nil {
		return nil, err
	}
	return item, nil
}

// ItemBySlug fetches a catalog item by slug. Returns nil when no row matches.
func (s *Store) ItemBySlug(ctx context.Context, slug string, rel RelationOptions) (*Item, error) {
	item, err := s.itemWhere(ctx, "slug = ?", slug)
	if err != nil || item == nil {
		return item, err
	}
	if err := s.loadRelations(ctx, []*Item{item}, rel); err != nil {
		return nil, err
	}
	return item, nil
}

// ItemsByTMDBIDs returns the catalog items matching any of the provided
// external ids, with the requested relations hydrated.
func (s *Store) ItemsByTMDBIDs(ctx context.Context, ids []int64, rel RelationOptions) ([]*Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + itemColumns + ` FROM catalog_items WHERE tmdb_id IN (` + makePlaceholders(len(ids)) + `) ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query, int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("query items by tmdb id: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.loadRelations(ctx, items, rel); err != nil {
		return nil, err
	}
	return items, nil
}

// CountItems reports how many items of the kind exist locally, optionally
// narrowed by a title substring and category membership.
func (s *Store) CountItems(ctx context.Context, kind MediaKind, filter ItemFilter) (int64, error) {
	query := `SELECT COUNT(1) FROM catalog_items WHERE kind = ?`
	args := []any{string(kind)}

	if title := strings.TrimSpace(filter.Title); title != "" {
		query += ` AND title LIKE ? COLLATE NOCASE`
		args = append(args, "%"+title+"%")
	}
	if len(filter.CategoryIDs) > 0 {
		query += ` AND EXISTS (
            SELECT 1 FROM item_categories ic
            JOIN categories c ON c.id = ic.category_id
            WHERE ic.item_id = catalog_items.id AND c.tmdb_id IN (` + makePlaceholders(len(filter.CategoryIDs)) + `))`
		args = append(args, int64Args(filter.CategoryIDs)...)
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return count, nil
}

func (s *Store) itemWhere(ctx context.Context, clause string, args ...any) (*Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM catalog_items WHERE `+clause, args...)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

func scanItem(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		id          int64
		kind        string
		title       string
		slug        string
		tmdbID      sql.NullInt64
		overview    sql.NullString
		releaseDate sql.NullString
		ratingAvg   float64
		ratingCount int64
		viewCount   int64
		createdRaw  string
		updatedRaw  string
	)

	if err := scanner.Scan(
		&id,
		&kind,
		&title,
		&slug,
		&tmdbID,
		&overview,
		&releaseDate,
		&ratingAvg,
		&ratingCount,
		&viewCount,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	return &Item{
		ID:            id,
		Kind:          MediaKind(kind),
		Title:         title,
		Slug:          slug,
		TMDBID:        tmdbID.Int64,
		Overview:      overview.String,
		ReleaseDate:   releaseDate.String,
		RatingAverage: ratingAvg,
		RatingCount:   ratingCount,
		ViewCount:     viewCount,
		CreatedAt:     parseTimeString(createdRaw),
		UpdatedAt:     parseTimeString(updatedRaw),
	}, nil
}

func (s *Store) loadRelations(ctx context.Context, items []*Item, rel RelationOptions) error {
	for _, item := range items {
		if rel.Categories {
			categories, err := s.itemCategories(ctx, item.ID)
			if err != nil {
				return err
			}
			item.Categories = categories
		}
		if rel.Platforms {
			platforms, err := s.itemPlatforms(ctx, item.ID)
			if err != nil {
				return err
			}
			item.Platforms = platforms
		}
		if rel.Cast {
			cast, err := s.itemCast(ctx, item.ID)
			if err != nil {
				return err
			}
			item.Cast = cast
		}
		if rel.Seasons && item.Kind == KindSeries {
			seasons, err := s.SeasonsForItem(ctx, item.ID)
			if err != nil {
				return err
			}
			item.Seasons = seasons
		}
	}
	return nil
}
