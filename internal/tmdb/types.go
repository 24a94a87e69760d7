package tmdb

// Kind selects the provider endpoints for a content type.
type Kind string

const (
	KindMovie  Kind = "movie"
	KindSeries Kind = "series"
)

// Genre is an embedded genre reference.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Provider is an embedded streaming provider reference.
type Provider struct {
	ID   int64  `json:"provider_id"`
	Name string `json:"provider_name"`
}

// CastMember is an embedded cast reference with role information.
type CastMember struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Character string `json:"character"`
	Order     int    `json:"order"`
}

// Episode describes a single episode entry within a season payload.
type Episode struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	EpisodeNumber int    `json:"episode_number"`
	AirDate       string `json:"air_date"`
	Runtime       int    `json:"runtime"`
}

// Season captures a season payload with its episodes.
type Season struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	SeasonNumber int       `json:"season_number"`
	AirDate      string    `json:"air_date"`
	Episodes     []Episode `json:"episodes"`
}

// Detail is the full payload for one catalog item: primary fields plus the
// embedded sub-entity collections. Seasons is populated only for series.
type Detail struct {
	ID          int64
	Kind        Kind
	Title       string
	Overview    string
	ReleaseDate string
	VoteAverage float64
	VoteCount   int64
	Popularity  float64
	Genres      []Genre
	Providers   []Provider
	Cast        []CastMember
	Seasons     []Season
}

// Result is a single listing entry from discover or search.
type Result struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	Popularity   float64 `json:"popularity"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int64   `json:"vote_count"`
}

// Page is the provider's ordered answer for one listing page.
type Page struct {
	IDs          []int64
	Results      []Result
	TotalPages   int
	TotalResults int
}

type listResponse struct {
	Page         int      `json:"page"`
	Results      []Result `json:"results"`
	TotalPages   int      `json:"total_pages"`
	TotalResults int      `json:"total_results"`
}

// detailResponse models the raw TMDB detail payload for both kinds; the
// client normalizes it into Detail.
type detailResponse struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	Popularity   float64 `json:"popularity"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int64   `json:"vote_count"`
	Genres       []Genre `json:"genres"`
	Credits      struct {
		Cast []CastMember `json:"cast"`
	} `json:"credits"`
	WatchProviders struct {
		Results map[string]struct {
			Flatrate []Provider `json:"flatrate"`
		} `json:"results"`
	} `json:"watch/providers"`
	Seasons []struct {
		ID           int64  `json:"id"`
		Name         string `json:"name"`
		SeasonNumber int    `json:"season_number"`
		AirDate      string `json:"air_date"`
	} `json:"seasons"`
}
