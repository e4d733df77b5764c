package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/roostaq/irasutoya-images-english/internal/catalog"
)

// SampleRecords returns a small catalogue fixture: one fully populated
// record, one without description, one with title only.
func SampleRecords() []catalog.Record {
	return []catalog.Record{
		{
			Title:       "聖火ランナーのイラスト",
			Description: "オリンピックの聖火ランナーのイラストです。",
			Categories:  []string{"スポーツ用品", "お祭り"},
			EntryURL:    "https://www.irasutoya.com/2016/10/torch.html",
			ImageURL:    "https://example.com/taimatsu_olympic.png",
			ImageAlt:    "聖火ランナーのイラスト",
			PublishedAt: "2016-10-30 14:33:00",
		},
		{
			Title:       "猫のイラスト",
			Categories:  []string{"動物"},
			EntryURL:    "https://www.irasutoya.com/2017/01/cat.html",
			ImageURL:    "https://example.com/cat.png",
			PublishedAt: "2017-01-05 10:00:00",
		},
		{
			Title:       "犬のイラスト",
			EntryURL:    "https://www.irasutoya.com/2018/03/dog.html",
			ImageURL:    "https://example.com/dog.png",
			PublishedAt: "2018-03-12 09:30:00",
		},
	}
}

// WriteCatalog writes records as a catalogue document at path
func WriteCatalog(t *testing.T, path string, records []catalog.Record) {
	t.Helper()

	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		t.Fatalf("Failed to marshal catalogue: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory for catalogue: %v", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write catalogue %s: %v", path, err)
	}
}

// AssertFileExists checks if a file exists
func AssertFileExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Expected file to exist: %s", path)
	}
}

// AssertFileNotExists checks if a file does not exist
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); err == nil {
		t.Errorf("Expected file to not exist: %s", path)
	}
}
