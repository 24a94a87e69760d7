package httpapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"cinelog/internal/catalog"
	"cinelog/internal/httpapi"
	"cinelog/internal/logging"
	"cinelog/internal/query"
	"cinelog/internal/services"
)

type stubBrowser struct {
	lastParams query.Params
	result     *query.Result
	err        error
}

func (b *stubBrowser) Browse(_ context.Context, params query.Params) (*query.Result, error) {
	b.lastParams = params
	if b.err != nil {
		return nil, b.err
	}
	return b.result, nil
}

func newTestServer(t *testing.T, browser httpapi.Browser) *httptest.Server {
	t.Helper()
	server := httpapi.New("127.0.0.1:0", browser, logging.NewNop())
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, &stubBrowser{result: &query.Result{}})

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
}

func TestListMoviesParsesParams(t *testing.T) {
	browser := &stubBrowser{result: &query.Result{
		Items: []*catalog.Item{{ID: 1, Kind: catalog.KindMovie, Title: "A Movie", TMDBID: 10}},
		Total: 1,
		Page:  3,
	}}
	ts := newTestServer(t, browser)

	resp, err := http.Get(ts.URL + "/api/v1/movies?query=alien&page=3&categories=28,878&with_cast=true")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}

	if browser.lastParams.Kind != catalog.KindMovie || browser.lastParams.Query != "alien" {
		t.Fatalf("unexpected params: %#v", browser.lastParams)
	}
	if browser.lastParams.Page != 3 {
		t.Fatalf("unexpected page: %d", browser.lastParams.Page)
	}
	if len(browser.lastParams.CategoryIDs) != 2 || browser.lastParams.CategoryIDs[0] != 28 {
		t.Fatalf("unexpected categories: %v", browser.lastParams.CategoryIDs)
	}
	if !browser.lastParams.Relations.Cast || browser.lastParams.Relations.Seasons {
		t.Fatalf("unexpected relations: %#v", browser.lastParams.Relations)
	}

	var payload struct {
		Items []catalog.Item `json:"items"`
		Total int64          `json:"total"`
		Page  int            `json:"page"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Items) != 1 || payload.Total != 1 || payload.Page != 3 {
		t.Fatalf("unexpected payload: %#v", payload)
	}
}

func TestListSeriesRouting(t *testing.T) {
	browser := &stubBrowser{result: &query.Result{Page: 1}}
	ts := newTestServer(t, browser)

	resp, err := http.Get(ts.URL + "/api/v1/series")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()
	if browser.lastParams.Kind != catalog.KindSeries {
		t.Fatalf("expected series kind, got %q", browser.lastParams.Kind)
	}
}

func TestListRejectsBadPage(t *testing.T) {
	ts := newTestServer(t, &stubBrowser{result: &query.Result{}})

	resp, err := http.Get(ts.URL + "/api/v1/movies?page=zero")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestListErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", services.Wrap(services.ErrValidation, "query", "browse", "", errors.New("bad")), http.StatusBadRequest},
		{"not found", services.Wrap(services.ErrNotFound, "query", "browse", "", errors.New("missing")), http.StatusNotFound},
		{"provider", services.Wrap(services.ErrProvider, "tmdb", "discover", "", errors.New("down")), http.StatusBadGateway},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts := newTestServer(t, &stubBrowser{err: tc.err})

			resp, err := http.Get(ts.URL + "/api/v1/movies")
			if err != nil {
				t.Fatalf("GET failed: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, resp.StatusCode)
			}
		})
	}
}

func TestRequestIDEchoed(t *testing.T) {
	ts := newTestServer(t, &stubBrowser{result: &query.Result{}})

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/v1/movies", nil)
	if err != nil {
		t.Fatalf("NewRequest failed: %v", err)
	}
	req.Header.Set("X-Request-ID", "req-123")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get("X-Request-ID"); got != "req-123" {
		t.Fatalf("expected request id echoed, got %q", got)
	}
}
