package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Categories, platforms, and people share one storage shape: a named row
// with a unique slug and an optional unique external id. The helpers below
// operate on the table name; the exported methods keep call sites typed.

type entityRow struct {
	ID     int64
	TMDBID int64
	Name   string
	Slug   string
}

func (s *Store) entitiesByTMDBIDs(ctx context.Context, table string, ids []int64) ([]entityRow, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT id, name, slug, tmdb_id FROM ` + table + ` WHERE tmdb_id IN (` + makePlaceholders(len(ids)) + `)`
	rows, err := s.db.QueryContext(ctx, query, int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("query %s by tmdb id: %w", table, err)
	}
	defer rows.Close()

	var out []entityRow
	for rows.Next() {
		row, err := scanEntity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *Store) entityBySlug(ctx context.Context, table, slug string) (*entityRow, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name, slug, tmdb_id FROM `+table+` WHERE slug = ?`, slug)
	entity, err := scanEntityRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s by slug: %w", table, err)
	}
	return &entity, nil
}

// createEntity inserts a named row, converging on the existing row when the
// external id or slug already exists.
func (s *Store) createEntity(ctx context.Context, table, name, slug string, tmdbID int64) (*entityRow, bool, error) {
	if name == "" {
		return nil, false, fmt.Errorf("%s name is empty", table)
	}
	if slug == "" {
		return nil, false, fmt.Errorf("%s slug is empty", table)
	}

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO `+table+` (name, slug, tmdb_id) VALUES (?, ?, ?) ON CONFLICT DO NOTHING`,
		name,
		slug,
		nullableID(tmdbID),
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert %s: %w", table, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("rows affected: %w", err)
	}

	var existing *entityRow
	if tmdbID > 0 {
		rows, err := s.entitiesByTMDBIDs(ctx, table, []int64{tmdbID})
		if err != nil {
			return nil, false, err
		}
		if len(rows) > 0 {
			existing = &rows[0]
		}
	}
	if existing == nil {
		existing, err = s.entityBySlug(ctx, table, slug)
		if err != nil {
			return nil, false, err
		}
	}
	if existing == nil {
		return nil, false, fmt.Errorf("%s %q missing after insert", table, slug)
	}
	return existing, affected > 0, nil
}

func scanEntity(rows *sql.Rows) (entityRow, error) {
	var (
		row    entityRow
		tmdbID sql.NullInt64
	)
	if err := rows.Scan(&row.ID, &row.Name, &row.Slug, &tmdbID); err != nil {
		return entityRow{}, err
	}
	row.TMDBID = tmdbID.Int64
	return row, nil
}

func scanEntityRow(row *sql.Row) (entityRow, error) {
	var (
		out    entityRow
		tmdbID sql.NullInt64
	)
	if err := row.Scan(&out.ID, &out.Name, &out.Slug, &tmdbID); err != nil {
		return entityRow{}, err
	}
	out.TMDBID = tmdbID.Int64
	return out, nil
}

// CategoriesByTMDBIDs returns categories matching any of the external ids.
func (s *Store) CategoriesByTMDBIDs(ctx context.Context, ids []int64) ([]Category, error) {
	rows, err := s.entitiesByTMDBIDs(ctx, "categories", ids)
	if err != nil {
		return nil, err
	}
	out := make([]Category, len(rows))
	for i, row := range rows {
		out[i] = Category(row)
	}
	return out, nil
}

// CategoryBySlug returns the category with the slug, or nil.
func (s *Store) CategoryBySlug(ctx context.Context, slug string) (*Category, error) {
	row, err := s.entityBySlug(ctx, "categories", slug)
	if err != nil || row == nil {
		return nil, err
	}
	category := Category(*row)
	return &category, nil
}

// CreateCategory inserts a category, converging on the existing row on conflict.
func (s *Store) CreateCategory(ctx context.Context, name, slug string, tmdbID int64) (*Category, bool, error) {
	row, created, err := s.createEntity(ctx, "categories", name, slug, tmdbID)
	if err != nil {
		return nil, false, err
	}
	category := Category(*row)
	return &category, created, nil
}

// PlatformsByTMDBIDs returns platforms matching any of the external ids.
func (s *Store) PlatformsByTMDBIDs(ctx context.Context, ids []int64) ([]Platform, error) {
	rows, err := s.entitiesByTMDBIDs(ctx, "platforms", ids)
	if err != nil {
		return nil, err
	}
	out := make([]Platform, len(rows))
	for i, row := range rows {
		out[i] = Platform(row)
	}
	return out, nil
}

// PlatformBySlug returns the platform with the slug, or nil.
func (s *Store) PlatformBySlug(ctx context.Context, slug string) (*Platform, error) {
	row, err := s.entityBySlug(ctx, "platforms", slug)
	if err != nil || row == nil {
		return nil, err
	}
	platform := Platform(*row)
	return &platform, nil
}

// CreatePlatform inserts a platform, converging on the existing row on conflict.
func (s *Store) CreatePlatform(ctx context.Context, name, slug string, tmdbID int64) (*Platform, bool, error) {
	row, created, err := s.createEntity(ctx, "platforms", name, slug, tmdbID)
	if err != nil {
		return nil, false, err
	}
	platform := Platform(*row)
	return &platform, created, nil
}

// PeopleByTMDBIDs returns people matching any of the external ids.
func (s *Store) PeopleByTMDBIDs(ctx context.Context, ids []int64) ([]Person, error) {
	rows, err := s.entitiesByTMDBIDs(ctx, "people", ids)
	if err != nil {
		return nil, err
	}
	out := make([]Person, len(rows))
	for i, row := range rows {
		out[i] = Person(row)
	}
	return out, nil
}

// PersonBySlug returns the person with the slug, or nil.
func (s *Store) PersonBySlug(ctx context.Context, slug string) (*Person, error) {
	row, err := s.entityBySlug(ctx, "people", slug)
	if err != nil || row == nil {
		return nil, err
	}
	person := Person(*row)
	return &person, nil
}

// CreatePerson inserts a person, converging on the existing row on conflict.
func (s *Store) CreatePerson(ctx context.Context, name, slug string, tmdbID int64) (*Person, bool, error) {
	row, created, err := s.createEntity(ctx, "people", name, slug, tmdbID)
	if err != nil {
		return nil, false, err
	}
	person := Person(*row)
	return &person, created, nil
}
