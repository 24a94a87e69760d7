package catalog

import (
	"context"
	"database/sql"
	"fmt"
)

// LinkCategories writes item↔category link rows. Existing links are kept.
func (s *Store) LinkCategories(ctx context.Context, itemID int64, categoryIDs []int64) error {
	for _, categoryID := range categoryIDs {
		if _, err := s.db.ExecContext(
			ctx,
			`INSERT OR IGNORE INTO item_categories (item_id, category_id) VALUES (?, ?)`,
			itemID,
			categoryID,
		); err != nil {
			return fmt.Errorf("link category %d to item %d: %w", categoryID, itemID, err)
		}
	}
	return nil
}

// LinkPlatforms writes item↔platform link rows. Existing links are kept.
func (s *Store) LinkPlatforms(ctx context.Context, itemID int64, platformIDs []int64) error {
	for _, platformID := range platformIDs {
		if _, err := s.db.ExecContext(
			ctx,
			`INSERT OR IGNORE INTO item_platforms (item_id, platform_id) VALUES (?, ?)`,
			itemID,
			platformID,
		); err != nil {
			return fmt.Errorf("link platform %d to item %d: %w", platformID, itemID, err)
		}
	}
	return nil
}

// LinkCast writes item↔person link rows with role information. Existing
// links are kept.
func (s *Store) LinkCast(ctx context.Context, itemID int64, credits []CastLink) error {
	for _, credit := range credits {
		if _, err := s.db.ExecContext(
			ctx,
			`INSERT OR IGNORE INTO item_cast (item_id, person_id, character, cast_order) VALUES (?, ?, ?, ?)`,
			itemID,
			credit.PersonID,
			credit.Character,
			credit.Order,
		); err != nil {
			return fmt.Errorf("link person %d to item %d: %w", credit.PersonID, itemID, err)
		}
	}
	return nil
}

func (s *Store) itemCategories(ctx context.Context, itemID int64) ([]Category, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT c.id, c.name, c.slug, c.tmdb_id FROM categories c
         JOIN item_categories ic ON ic.category_id = c.id
         WHERE ic.item_id = ? ORDER BY c.name`,
		itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("query item categories: %w", err)
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		row, err := scanEntity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, Category(row))
	}
	return out, rows.Err()
}

func (s *Store) itemPlatforms(ctx context.Context, itemID int64) ([]Platform, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT p.id, p.name, p.slug, p.tmdb_id FROM platforms p
         JOIN item_platforms ip ON ip.platform_id = p.id
         WHERE ip.item_id = ? ORDER BY p.name`,
		itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("query item platforms: %w", err)
	}
	defer rows.Close()

	var out []Platform
	for rows.Next() {
		row, err := scanEntity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, Platform(row))
	}
	return out, rows.Err()
}

func (s *Store) itemCast(ctx context.Context, itemID int64) ([]CastCredit, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT p.id, p.name, p.slug, p.tmdb_id, ic.character, ic.cast_order
         FROM people p
         JOIN item_cast ic ON ic.person_id = p.id
         WHERE ic.item_id = ? ORDER BY ic.cast_order, p.name`,
		itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("query item cast: %w", err)
	}
	defer rows.Close()

	var out []CastCredit
	for rows.Next() {
		var (
			person    entityRow
			tmdbID    sql.NullInt64
			character string
			order     int
		)
		if err := rows.Scan(&person.ID, &person.Name, &person.Slug, &tmdbID, &character, &order); err != nil {
			return nil, err
		}
		person.TMDBID = tmdbID.Int64
		out = append(out, CastCredit{
			Person:    Person(person),
			Character: character,
			Order:     order,
		})
	}
	return out, rows.Err()
}
