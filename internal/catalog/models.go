package catalog

import (
	"fmt"
	"strings"
	"time"
)

// MediaKind distinguishes the two catalog item variants.
type MediaKind string

const (
	KindMovie  MediaKind = "movie"
	KindSeries MediaKind = "series"
)

// ParseMediaKind validates a caller-supplied kind string.
func ParseMediaKind(value string) (MediaKind, error) {
	switch MediaKind(strings.ToLower(strings.TrimSpace(value))) {
	case KindMovie:
		return KindMovie, nil
	case KindSeries:
		return KindSeries, nil
	default:
		return "", fmt.Errorf("unknown media kind %q", value)
	}
}

// Item is a catalog entry for a movie or series. TMDBID zero means the row
// has no external identity; provider ids are always positive.
type Item struct {
	ID            int64     `json:"id"`
	Kind          MediaKind `json:"kind"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	TMDBID        int64     `json:"tmdbId,omitempty"`
	Overview      string    `json:"overview,omitempty"`
	ReleaseDate   string    `json:"releaseDate,omitempty"`
	RatingAverage float64   `json:"ratingAverage"`
	RatingCount   int64     `json:"ratingCount"`
	ViewCount     int64     `json:"viewCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	Categories []Category   `json:"categories,omitempty"`
	Platforms  []Platform   `json:"platforms,omitempty"`
	Cast       []CastCredit `json:"cast,omitempty"`
	Seasons    []Season     `json:"seasons,omitempty"`
}

// Category is a genre shared across catalog items.
type Category struct {
	ID     int64  `json:"id"`
	TMDBID int64  `json:"tmdbId,omitempty"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
}

// Platform is a streaming provider shared across catalog items.
type Platform struct {
	ID     int64  `json:"id"`
	TMDBID int64  `json:"tmdbId,omitempty"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
}

// Person is a cast member shared across catalog items.
type Person struct {
	ID     int64  `json:"id"`
	TMDBID int64  `json:"tmdbId,omitempty"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
}

// CastCredit links a person to an item with role information.
type CastCredit struct {
	Person    Person `json:"person"`
	Character string `json:"character,omitempty"`
	Order     int    `json:"order"`
}

// Season belongs to exactly one series item.
type Season struct {
	ID      int64  `json:"id"`
	ItemID  int64  `json:"itemId"`
	TMDBID  int64  `json:"tmdbId,omitempty"`
	Number  int    `json:"number"`
	Name    string `json:"name,omitempty"`
	AirDate string `json:"airDate,omitempty"`

	Episodes []Episode `json:"episodes,omitempty"`
}

// Episode belongs to exactly one season.
type Episode struct {
	ID       int64  `json:"id"`
	SeasonID int64  `json:"seasonId"`
	TMDBID   int64  `json:"tmdbId,omitempty"`
	Number   int    `json:"number"`
	Name     string `json:"name,omitempty"`
	AirDate  string `json:"airDate,omitempty"`
	Runtime  int    `json:"runtime,omitempty"`
}

// CastLink names a resolved person for a link-row write.
type CastLink struct {
	PersonID  int64
	Character string
	Order     int
}

// RelationOptions selects which relations a read hydrates.
type RelationOptions struct {
	Categories bool
	Platforms  bool
	Cast       bool
	Seasons    bool
}

// AllRelations requests every relation, the depth the creation path uses.
func AllRelations() RelationOptions {
	return RelationOptions{Categories: true, Platforms: true, Cast: true, Seasons: true}
}

// ItemFilter narrows item counts and listings.
type ItemFilter struct {
	Title       string
	CategoryIDs []int64
}
