package tmdb_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cinelog/internal/services"
	"cinelog/internal/tmdb"
)

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := tmdb.New("", "https://example.com", "en-US"); err == nil {
		t.Fatal("expected error when api key missing")
	}
}

func TestSearchSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/search/movie") {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("api_key") != "key" {
			t.Fatalf("expected api_key query parameter, got %q", r.URL.RawQuery)
		}
		if r.URL.Query().Get("query") != "Example" {
			t.Fatalf("expected query parameter, got %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"page":1,"results":[{"id":42,"title":"Example"}],"total_pages":1,"total_results":1}`))
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("key", server.URL, "en-US")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	page, err := client.Search(context.Background(), tmdb.KindMovie, "Example", 1)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(page.IDs) != 1 || page.IDs[0] != 42 {
		t.Fatalf("unexpected ids: %#v", page.IDs)
	}
	if page.TotalResults != 1 {
		t.Fatalf("unexpected total results: %d", page.TotalResults)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	client, err := tmdb.New("key", "https://example.com", "")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := client.Search(context.Background(), tmdb.KindMovie, "  ", 1); err == nil {
		t.Fatal("expected error for empty query")
	}
}

func TestDiscoverSeriesUsesTVEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/discover/tv" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("with_genres") != "18,35" {
			t.Fatalf("expected genre filter, got %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"page":2,"results":[{"id":7,"name":"Show"}],"total_pages":4,"total_results":61}`))
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("key", server.URL, "en-US")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	page, err := client.Discover(context.Background(), tmdb.KindSeries, 2, []int64{18, 35})
	if err != nil {
		t.Fatalf("Discover returned error: %v", err)
	}
	if len(page.Results) != 1 || page.Results[0].Name != "Show" {
		t.Fatalf("unexpected results: %#v", page.Results)
	}
	if page.TotalResults != 61 {
		t.Fatalf("unexpected total results: %d", page.TotalResults)
	}
}

func TestDiscoverHTTPErrorTagged(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"status_code":500}`))
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("key", server.URL, "")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	_, err = client.Discover(context.Background(), tmdb.KindMovie, 1, nil)
	if err == nil {
		t.Fatal("expected error when TMDB returns non-200")
	}
	if !errors.Is(err, services.ErrProvider) {
		t.Fatalf("expected provider-tagged error, got %v", err)
	}
}

func TestDetailsMovieAppendsCreditsAndProviders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/550" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("append_to_response"); got != "credits,watch/providers" {
			t.Fatalf("unexpected append_to_response %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": 550,
			"title": "Fight Club",
			"release_date": "1999-10-15",
			"vote_average": 8.4,
			"vote_count": 26000,
			"genres": [{"id": 18, "name": "Drama"}],
			"credits": {"cast": [{"id": 819, "name": "Edward Norton", "character": "The Narrator", "order": 0}]},
			"watch/providers": {"results": {"US": {"flatrate": [{"provider_id": 8, "provider_name": "Netflix"}]}}}
		}`))
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("key", server.URL, "en-US")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	detail, err := client.Details(context.Background(), tmdb.KindMovie, 550)
	if err != nil {
		t.Fatalf("Details returned error: %v", err)
	}
	if detail.Title != "Fight Club" || detail.ReleaseDate != "1999-10-15" {
		t.Fatalf("unexpected detail: %#v", detail)
	}
	if len(detail.Genres) != 1 || detail.Genres[0].ID != 18 {
		t.Fatalf("unexpected genres: %#v", detail.Genres)
	}
	if len(detail.Cast) != 1 || detail.Cast[0].Character != "The Narrator" {
		t.Fatalf("unexpected cast: %#v", detail.Cast)
	}
	if len(detail.Providers) != 1 || detail.Providers[0].Name != "Netflix" {
		t.Fatalf("unexpected providers: %#v", detail.Providers)
	}
	if len(detail.Seasons) != 0 {
		t.Fatalf("movies must not carry seasons: %#v", detail.Seasons)
	}
}

func TestDetailsSeriesFansOutSeasons(t *testing.T) {
	var seasonRequests []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/tv/1399":
			_, _ = w.Write([]byte(`{
				"id": 1399,
				"name": "Game of Thrones",
				"first_air_date": "2011-04-17",
				"seasons": [
					{"id": 100, "season_number": 0, "name": "Specials"},
					{"id": 101, "season_number": 1, "name": "Season 1"},
					{"id": 102, "season_number": 2, "name": "Season 2"}
				]
			}`))
		case "/tv/1399/season/1", "/tv/1399/season/2":
			seasonRequests = append(seasonRequests, r.URL.Path)
			number := strings.TrimPrefix(r.URL.Path, "/tv/1399/season/")
			fmt.Fprintf(w, `{
				"id": 10%s,
				"season_number": %s,
				"name": "Season %s",
				"episodes": [{"id": 63056, "episode_number": 1, "name": "Pilot", "runtime": 62}]
			}`, number, number, number)
		default:
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("key", server.URL, "en-US")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	detail, err := client.Details(context.Background(), tmdb.KindSeries, 1399)
	if err != nil {
		t.Fatalf("Details returned error: %v", err)
	}
	if detail.Title != "Game of Thrones" {
		t.Fatalf("expected name mapped to title, got %q", detail.Title)
	}
	if detail.ReleaseDate != "2011-04-17" {
		t.Fatalf("expected first air date mapped to release date, got %q", detail.ReleaseDate)
	}
	if len(detail.Seasons) != 2 {
		t.Fatalf("expected specials skipped, got %d seasons", len(detail.Seasons))
	}
	if len(seasonRequests) != 2 {
		t.Fatalf("expected two season requests, got %v", seasonRequests)
	}
	if len(detail.Seasons[0].Episodes) != 1 || detail.Seasons[0].Episodes[0].Runtime != 62 {
		t.Fatalf("unexpected episodes: %#v", detail.Seasons[0].Episodes)
	}
}

func TestDetailsSeasonDepthCapsFanOut(t *testing.T) {
	var seasonRequests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/tv/9" {
			_, _ = w.Write([]byte(`{
				"id": 9,
				"name": "Long Runner",
				"seasons": [
					{"id": 1, "season_number": 1},
					{"id": 2, "season_number": 2},
					{"id": 3, "season_number": 3}
				]
			}`))
			return
		}
		seasonRequests++
		_, _ = w.Write([]byte(`{"id": 1, "season_number": 1, "episodes": []}`))
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("key", server.URL, "", tmdb.WithSeasonDepth(1))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	detail, err := client.Details(context.Background(), tmdb.KindSeries, 9)
	if err != nil {
		t.Fatalf("Details returned error: %v", err)
	}
	if len(detail.Seasons) != 1 || seasonRequests != 1 {
		t.Fatalf("expected one season fetched, got %d seasons and %d requests", len(detail.Seasons), seasonRequests)
	}
}

func TestMultipleDetailsPreservesOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/movie/2":
			_, _ = w.Write([]byte(`{"id": 2, "title": "Second"}`))
		case "/movie/1":
			_, _ = w.Write([]byte(`{"id": 1, "title": "First"}`))
		default:
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("key", server.URL, "")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	details, err := client.MultipleDetails(context.Background(), tmdb.KindMovie, []int64{2, 1})
	if err != nil {
		t.Fatalf("MultipleDetails returned error: %v", err)
	}
	if len(details) != 2 || details[0].ID != 2 || details[1].ID != 1 {
		t.Fatalf("unexpected order: %#v", details)
	}
}
