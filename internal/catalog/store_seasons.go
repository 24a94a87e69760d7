package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// CreateSeason inserts a season for a series item, converging on the
// existing row when the external id or (item, number) pair already exists.
func (s *Store) CreateSeason(ctx context.Context, season *Season) (*Season, bool, error) {
	if season == nil {
		return nil, false, errors.New("season is nil")
	}
	if season.ItemID <= 0 {
		return nil, false, errors.New("season requires a parent item id")
	}

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO seasons (item_id, tmdb_id, number, name, air_date)
         VALUES (?, ?, ?, ?, ?) ON CONFLICT DO NOTHING`,
		season.ItemID,
		nullableID(season.TMDBID),
		season.Number,
		nullableString(season.Name),
		nullableString(season.AirDate),
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert season: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("rows affected: %w", err)
	}

	var existing *Season
	if season.TMDBID > 0 {
		existing, err = s.SeasonByTMDBID(ctx, season.TMDBID)
	} else {
		existing, err = s.seasonWhere(ctx, "item_id = ? AND number = ?", season.ItemID, season.Number)
	}
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, fmt.Errorf("season %d for item %d missing after insert", season.Number, season.ItemID)
	}
	return existing, affected > 0, nil
}

// SeasonByTMDBID returns the season with the external id, or nil.
func (s *Store) SeasonByTMDBID(ctx context.Context, tmdbID int64) (*Season, error) {
	if tmdbID <= 0 {
		return nil, nil
	}
	return s.seasonWhere(ctx, "tmdb_id = ?", tmdbID)
}

// CreateEpisode inserts an episode for a season, converging on the existing
// row when the external id or (season, number) pair already exists.
func (s *Store) CreateEpisode(ctx context.Context, episode *Episode) (*Episode, bool, error) {
	if episode == nil {
		return nil, false, errors.New("episode is nil")
	}
	if episode.SeasonID <= 0 {
		return nil, false, errors.New("episode requires a parent season id")
	}

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO episodes (season_id, tmdb_id, number, name, air_date, runtime)
         VALUES (?, ?, ?, ?, ?, ?) ON CONFLICT DO NOTHING`,
		episode.SeasonID,
		nullableID(episode.TMDBID),
		episode.Number,
		nullableString(episode.Name),
		nullableString(episode.AirDate),
		episode.Runtime,
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert episode: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("rows affected: %w", err)
	}

	var existing *Episode
	if episode.TMDBID > 0 {
		existing, err = s.EpisodeByTMDBID(ctx, episode.TMDBID)
	} else {
		existing, err = s.episodeWhere(ctx, "season_id = ? AND number = ?", episode.SeasonID, episode.Number)
	}
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, fmt.Errorf("episode %d for season %d missing after insert", episode.Number, episode.SeasonID)
	}
	return existing, affected > 0, nil
}

// EpisodeByTMDBID returns the episode with the external id, or nil.
func (s *Store) EpisodeByTMDBID(ctx context.Context, tmdbID int64) (*Episode, error) {
	if tmdbID <= 0 {
		return nil, nil
	}
	return s.episodeWhere(ctx, "tmdb_id = ?", tmdbID)
}

// SeasonsForItem returns every season of a series ordered by number, each
// with its episodes hydrated.
func (s *Store) SeasonsForItem(ctx context.Context, itemID int64) ([]Season, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, item_id, tmdb_id, number, name, air_date FROM seasons WHERE item_id = ? ORDER BY number`,
		itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("query seasons: %w", err)
	}
	defer rows.Close()

	var seasons []Season
	for rows.Next() {
		season, err := scanSeason(rows)
		if err != nil {
			return nil, err
		}
		seasons = append(seasons, *season)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range seasons {
		episodes, err := s.episodesForSeason(ctx, seasons[i].ID)
		if err != nil {
			return nil, err
		}
		seasons[i].Episodes = episodes
	}
	return seasons, nil
}

func (s *Store) episodesForSeason(ctx context.Context, seasonID int64) ([]Episode, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, season_id, tmdb_id, number, name, air_date, runtime FROM episodes WHERE season_id = ? ORDER BY number`,
		seasonID,
	)
	if err != nil {
		return nil, fmt.Errorf("query episodes: %w", err)
	}
	defer rows.Close()

	var episodes []Episode
	for rows.Next() {
		episode, err := scanEpisode(rows)
		if err != nil {
			return nil, err
		}
		episodes = append(episodes, *episode)
	}
	return episodes, rows.Err()
}

func (s *Store) seasonWhere(ctx context.Context, clause string, args ...any) (*Season, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, item_id, tmdb_id, number, name, air_date FROM seasons WHERE `+clause, args...)
	season, err := scanSeason(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get season: %w", err)
	}
	return season, nil
}

func (s *Store) episodeWhere(ctx context.Context, clause string, args ...any) (*Episode, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, season_id, tmdb_id, number, name, air_date, runtime FROM episodes WHERE `+clause, args...)
	episode, err := scanEpisode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get episode: %w", err)
	}
	return episode, nil
}

func scanSeason(scanner interface{ Scan(dest ...any) error }) (*Season, error) {
	var (
		season  Season
		tmdbID  sql.NullInt64
		name    sql.NullString
		airDate sql.NullString
	)
	if err := scanner.Scan(&season.ID, &season.ItemID, &tmdbID, &season.Number, &name, &airDate); err != nil {
		return nil, err
	}
	season.TMDBID = tmdbID.Int64
	season.Name = name.String
	season.AirDate = airDate.String
	return &season, nil
}

func scanEpisode(scanner interface{ Scan(dest ...any) error }) (*Episode, error) {
	var (
		episode Episode
		tmdbID  sql.NullInt64
		name    sql.NullString
		airDate sql.NullString
	)
	if err := scanner.Scan(&episode.ID, &episode.SeasonID, &tmdbID, &episode.Number, &name, &airDate, &episode.Runtime); err != nil {
		return nil, err
	}
	episode.TMDBID = tmdbID.Int64
	episode.Name = name.String
	episode.AirDate = airDate.String
	return &episode, nil
}
