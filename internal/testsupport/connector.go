package testsupport

import (
	"context"
	"fmt"
	"sync"

	"cinelog/internal/tmdb"
)

// FakeConnector is a scripted stand-in for the TMDB client. Pages and
// details are keyed by the request that produces them; unscripted requests
// fail the call so tests surface unexpected provider traffic.
type FakeConnector struct {
	mu sync.Mutex

	pages   map[string]*tmdb.Page
	details map[string]tmdb.Detail
	errs    map[string]error

	// DetailCalls records the ids passed to MultipleDetails, in order.
	DetailCalls [][]int64
	// ListCalls records discover/search request keys, in order.
	ListCalls []string
}

// NewFakeConnector creates an empty scripted connector.
func NewFakeConnector() *FakeConnector {
	return &FakeConnector{
		pages:   make(map[string]*tmdb.Page),
		details: make(map[string]tmdb.Detail),
		errs:    make(map[string]error),
	}
}

func discoverKey(kind tmdb.Kind, page int) string {
	return fmt.Sprintf("discover/%s/%d", kind, page)
}

func searchKey(kind tmdb.Kind, query string, page int) string {
	return fmt.Sprintf("search/%s/%q/%d", kind, query, page)
}

func detailKey(kind tmdb.Kind, id int64) string {
	return fmt.Sprintf("detail/%s/%d", kind, id)
}

// ScriptDiscover registers the page returned for a discover request.
func (f *FakeConnector) ScriptDiscover(kind tmdb.Kind, page int, result *tmdb.Page) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[discoverKey(kind, page)] = result
}

// ScriptSearch registers the page returned for a search request.
func (f *FakeConnector) ScriptSearch(kind tmdb.Kind, query string, page int, result *tmdb.Page) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[searchKey(kind, query, page)] = result
}

// ScriptDetail registers the payload returned for one external id.
func (f *FakeConnector) ScriptDetail(detail tmdb.Detail) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.details[detailKey(detail.Kind, detail.ID)] = detail
}

// ScriptDetailError forces Details for the given id to fail.
func (f *FakeConnector) ScriptDetailError(kind tmdb.Kind, id int64, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[detailKey(kind, id)] = err
}

// ScriptDiscoverError forces a discover request to fail.
func (f *FakeConnector) ScriptDiscoverError(kind tmdb.Kind, page int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[discoverKey(kind, page)] = err
}

// Discover returns the scripted page for the request.
func (f *FakeConnector) Discover(_ context.Context, kind tmdb.Kind, page int, _ []int64) (*tmdb.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := discoverKey(kind, page)
	f.ListCalls = append(f.ListCalls, key)
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	if result, ok := f.pages[key]; ok {
		return result, nil
	}
	return nil, fmt.Errorf("unscripted request %s", key)
}

// Search returns the scripted page for the request.
func (f *FakeConnector) Search(_ context.Context, kind tmdb.Kind, query string, page int) (*tmdb.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := searchKey(kind, query, page)
	f.ListCalls = append(f.ListCalls, key)
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	if result, ok := f.pages[key]; ok {
		return result, nil
	}
	return nil, fmt.Errorf("unscripted request %s", key)
}

// MultipleDetails returns the scripted payloads for the ids, in order.
func (f *FakeConnector) MultipleDetails(_ context.Context, kind tmdb.Kind, ids []int64) ([]tmdb.Detail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.DetailCalls = append(f.DetailCalls, append([]int64(nil), ids...))

	details := make([]tmdb.Detail, 0, len(ids))
	for _, id := range ids {
		key := detailKey(kind, id)
		if err, ok := f.errs[key]; ok {
			return nil, err
		}
		detail, ok := f.details[key]
		if !ok {
			return nil, fmt.Errorf("unscripted request %s", key)
		}
		details = append(details, detail)
	}
	return details, nil
}
