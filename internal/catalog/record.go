package catalog

import (
	"fmt"
	"path"
	"strings"

	"github.com/roostaq/irasutoya-images-english/internal"
)

// ImageDirName is the directory under the output root that holds downloaded
// images, mirrored in every record's directory_path.
const ImageDirName = "images"

// Record is one illustration catalogue entry. Field order matters: it is the
// key order of the persisted JSON document. The _en fields and directory_path
// are absent until the corresponding pass has run.
type Record struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Categories  []string `json:"categories"`
	EntryURL    string   `json:"entry_url"`
	ImageURL    string   `json:"image_url"`
	ImageAlt    string   `json:"image_alt"`
	PublishedAt string   `json:"published_at"`

	TitleEN       string   `json:"title_en,omitempty"`
	DescriptionEN string   `json:"description_en,omitempty"`
	CategoriesEN  []string `json:"categories_en,omitempty"`
	ImageAltEN    string   `json:"image_alt_en,omitempty"`
	DirectoryPath string   `json:"directory_path,omitempty"`
}

// Key identifies a record across catalogue refreshes. Entries are keyed by
// their entry URL; records without one fall back to the image URL. An empty
// key means the record cannot be matched and is treated as new on merge.
func (r Record) Key() string {
	if r.EntryURL != "" {
		return r.EntryURL
	}
	return r.ImageURL
}

// Translated reports whether the translation pass has completed for this
// record. A translatable unit counts as done when its source text is empty
// (nothing to translate) or its English value is non-empty. Categories
// additionally require index correspondence: categories_en must have the
// same length as categories.
func (r Record) Translated() bool {
	if !unitDone(r.Title, r.TitleEN) ||
		!unitDone(r.Description, r.DescriptionEN) ||
		!unitDone(r.ImageAlt, r.ImageAltEN) {
		return false
	}
	if len(r.CategoriesEN) != len(r.Categories) {
		return false
	}
	for i, category := range r.Categories {
		if !unitDone(category, r.CategoriesEN[i]) {
			return false
		}
	}
	return true
}

func unitDone(source, translated string) bool {
	return source == "" || translated != ""
}

// ImageFilename returns the filename portion of the record's image URL,
// preserved verbatim when the image is stored locally.
func (r Record) ImageFilename() string {
	return internal.FilenameFromURL(r.ImageURL)
}

// PublishedYearMonth extracts the year and month from published_at, which the
// upstream catalogue stores as "YYYY-MM-DD hh:mm:ss". Zero padding is kept
// as-is so derived paths are stable across runs.
func (r Record) PublishedYearMonth() (year, month string, err error) {
	stamp := strings.TrimSpace(r.PublishedAt)
	if stamp == "" {
		return "", "", fmt.Errorf("record %q: published_at is empty", r.Key())
	}

	date := stamp
	if idx := strings.IndexAny(stamp, " T"); idx >= 0 {
		date = stamp[:idx]
	}

	parts := strings.Split(date, "-")
	if len(parts) != 3 || !allDigits(parts[0]) || !allDigits(parts[1]) {
		return "", "", fmt.Errorf("record %q: malformed published_at %q", r.Key(), r.PublishedAt)
	}
	return parts[0], parts[1], nil
}

// ComputeDirectoryPath derives the deterministic local path for the record's
// image: ./images/<year>/<month>/<filename-from-image_url>. The same inputs
// always produce the same path, which is what makes re-runs safe. The path
// uses forward slashes regardless of platform because it is persisted in the
// shared catalogue document.
func (r Record) ComputeDirectoryPath() (string, error) {
	filename := r.ImageFilename()
	if filename == "" {
		return "", fmt.Errorf("record %q: image_url %q has no filename", r.Key(), r.ImageURL)
	}
	year, month, err := r.PublishedYearMonth()
	if err != nil {
		return "", err
	}
	return "./" + path.Join(ImageDirName, year, month, filename), nil
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
