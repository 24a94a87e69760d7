package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cinelog/internal/services"
)

// Client provides access to the TMDB API.
type Client struct {
	apiKey      string
	baseURL     string
	language    string
	region      string
	seasonDepth int
	httpClient  *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRegion selects the watch-provider region. Defaults to US.
func WithRegion(region string) Option {
	return func(c *Client) {
		if region = strings.ToUpper(strings.TrimSpace(region)); region != "" {
			c.region = region
		}
	}
}

// WithSeasonDepth caps how many seasons Details fetches per series.
// Zero fetches every season.
func WithSeasonDepth(depth int) Option {
	return func(c *Client) {
		if depth >= 0 {
			c.seasonDepth = depth
		}
	}
}

// New creates a TMDB client.
func New(apiKey, baseURL, language string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tmdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tmdb base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   strings.TrimSpace(language),
		region:     "US",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

func endpointKind(kind Kind) (string, error) {
	switch kind {
	case KindMovie:
		return "movie", nil
	case KindSeries:
		return "tv", nil
	default:
		return "", fmt.Errorf("unknown content kind %q", kind)
	}
}

// Discover fetches one ordered page of popular items for the kind,
// optionally narrowed to the provided genre ids.
func (c *Client) Discover(ctx context.Context, kind Kind, page int, categoryIDs []int64) (*Page, error) {
	path, err := endpointKind(kind)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	if len(categoryIDs) > 0 {
		params.Set("with_genres", joinIDs(categoryIDs))
	}
	params.Set("sort_by", "popularity.desc")

	var payload listResponse
	if err := c.get(ctx, "/discover/"+path, params, &payload); err != nil {
		return nil, services.Wrap(services.ErrProvider, "tmdb", "discover", string(kind), err)
	}
	return pageFromResponse(payload), nil
}

// Search fetches one ordered page of free-text matches for the kind.
func (c *Client) Search(ctx context.Context, kind Kind, query string, page int) (*Page, error) {
	path, err := endpointKind(kind)
	if err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}

	params := url.Values{}
	params.Set("query", query)
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}

	var payload listResponse
	if err := c.get(ctx, "/search/"+path, params, &payload); err != nil {
		return nil, services.Wrap(services.ErrProvider, "tmdb", "search", string(kind), err)
	}
	return pageFromResponse(payload), nil
}

// Details fetches the full payload for one item, with credits and watch
// providers embedded in a single request. Series payloads additionally
// fan out to the season endpoint so every season carries its episodes.
func (c *Client) Details(ctx context.Context, kind Kind, id int64) (*Detail, error) {
	path, err := endpointKind(kind)
	if err != nil {
		return nil, err
	}
	if id <= 0 {
		return nil, errors.New("id must be positive")
	}

	params := url.Values{}
	params.Set("append_to_response", "credits,watch/providers")

	var payload detailResponse
	if err := c.get(ctx, fmt.Sprintf("/%s/%d", path, id), params, &payload); err != nil {
		return nil, services.Wrap(services.ErrProvider, "tmdb", "detail", fmt.Sprintf("%s %d", kind, id), err)
	}

	detail := c.normalizeDetail(kind, payload)
	if kind == KindSeries {
		seasons, err := c.fetchSeasons(ctx, id, payload)
		if err != nil {
			return nil, err
		}
		detail.Seasons = seasons
	}
	return detail, nil
}

// MultipleDetails fans out Details over the provided ids, preserving order.
func (c *Client) MultipleDetails(ctx context.Context, kind Kind, ids []int64) ([]Detail, error) {
	details := make([]Detail, 0, len(ids))
	for _, id := range ids {
		detail, err := c.Details(ctx, kind, id)
		if err != nil {
			return nil, err
		}
		details = append(details, *detail)
	}
	return details, nil
}

func (c *Client) fetchSeasons(ctx context.Context, showID int64, payload detailResponse) ([]Season, error) {
	seasons := make([]Season, 0, len(payload.Seasons))
	for _, summary := range payload.Seasons {
		if summary.SeasonNumber <= 0 {
			// season 0 holds specials; the catalog does not track them
			continue
		}
		if c.seasonDepth > 0 && len(seasons) >= c.seasonDepth {
			break
		}

		var season Season
		if err := c.get(ctx, fmt.Sprintf("/tv/%d/season/%d", showID, summary.SeasonNumber), url.Values{}, &season); err != nil {
			return nil, services.Wrap(services.ErrProvider, "tmdb", "season detail",
				fmt.Sprintf("show %d season %d", showID, summary.SeasonNumber), err)
		}
		seasons = append(seasons, season)
	}
	return seasons, nil
}

func (c *Client) normalizeDetail(kind Kind, payload detailResponse) *Detail {
	detail := &Detail{
		ID:          payload.ID,
		Kind:        kind,
		Title:       payload.Title,
		Overview:    payload.Overview,
		ReleaseDate: payload.ReleaseDate,
		VoteAverage: payload.VoteAverage,
		VoteCount:   payload.VoteCount,
		Popularity:  payload.Popularity,
		Genres:      payload.Genres,
		Cast:        payload.Credits.Cast,
	}
	if kind == KindSeries {
		detail.Title = payload.Name
		detail.ReleaseDate = payload.FirstAirDate
	}
	if region, ok := payload.WatchProviders.Results[c.region]; ok {
		detail.Providers = region.Flatrate
	}
	return detail
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse tmdb url: %w", err)
	}
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tmdb returned %d for %s (latency=%v)", resp.StatusCode, path, latency)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode tmdb response: %w", err)
	}
	return nil
}

func pageFromResponse(payload listResponse) *Page {
	page := &Page{
		Results:      payload.Results,
		TotalPages:   payload.TotalPages,
		TotalResults: payload.TotalResults,
	}
	page.IDs = make([]int64, 0, len(payload.Results))
	for _, result := range payload.Results {
		page.IDs = append(page.IDs, result.ID)
	}
	return page
}

func joinIDs(ids []int64) string {
	var b strings.Builder
	for i, id := range ids {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatInt(id, 10))
	}
	return b.String()
}
