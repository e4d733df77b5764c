package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/roostaq/irasutoya-images-english/internal/catalog"
)

// MockTranslator fills in English fields with an "EN: " prefix. Safe for
// concurrent use; the processor pool calls it from several goroutines.
type MockTranslator struct {
	mu       sync.Mutex
	calls    int
	FailKeys map[string]bool
}

// NewMockTranslator creates a mock translator that succeeds for every record
func NewMockTranslator() *MockTranslator {
	return &MockTranslator{FailKeys: make(map[string]bool)}
}

// TranslateRecord mocks whole-record translation
func (m *MockTranslator) TranslateRecord(ctx context.Context, rec catalog.Record) (catalog.Record, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.FailKeys[rec.Key()] {
		return rec, errors.New("translation backend unavailable")
	}

	if rec.Title != "" {
		rec.TitleEN = "EN: " + rec.Title
	}
	if rec.Description != "" {
		rec.DescriptionEN = "EN: " + rec.Description
	}
	if rec.ImageAlt != "" {
		rec.ImageAltEN = "EN: " + rec.ImageAlt
	}
	if len(rec.Categories) > 0 {
		rec.CategoriesEN = make([]string, len(rec.Categories))
		for i, cat := range rec.Categories {
			rec.CategoriesEN[i] = "EN: " + cat
		}
	}
	return rec, nil
}

// CallCount returns how many records were offered for translation
func (m *MockTranslator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockFetcher pretends to download images, remembering what it fetched
type MockFetcher struct {
	mu      sync.Mutex
	calls   int
	fetched map[string]bool
	Fails   map[string]error
}

// NewMockFetcher creates a mock fetcher with no failures configured
func NewMockFetcher() *MockFetcher {
	return &MockFetcher{
		fetched: make(map[string]bool),
		Fails:   make(map[string]error),
	}
}

// Fetch mocks an image download and returns the document-relative path
func (m *MockFetcher) Fetch(ctx context.Context, rec catalog.Record) (string, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if err := m.Fails[rec.Key()]; err != nil {
		return "", err
	}

	relPath, err := rec.ComputeDirectoryPath()
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	m.fetched[rec.Key()] = true
	m.mu.Unlock()
	return relPath, nil
}

// Fetched reports whether Fetch succeeded for the record in this process
func (m *MockFetcher) Fetched(rec catalog.Record) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetched[rec.Key()]
}

// CallCount returns how many downloads were attempted
func (m *MockFetcher) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
