package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/roostaq/irasutoya-images-english/internal/logging"
)

// DefaultCatalogURL is the published irasutoya catalogue snapshot.
const DefaultCatalogURL = "https://roostaq.github.io/irasutoya-data/irasutoya.json"

// maxCatalogBytes caps the upstream document size. The live catalogue is a
// few tens of megabytes; anything past this is a broken or hostile response.
const maxCatalogBytes = 256 << 20

// EnsureSource makes sure the upstream catalogue exists at inputPath,
// downloading it when missing. An already present file is left untouched so
// pinned or hand-edited inputs survive re-runs. The downloaded document is
// parsed before it is written; a response that is not a record collection
// never lands on disk.
func EnsureSource(ctx context.Context, client *http.Client, url, inputPath string, logger *slog.Logger) error {
	if logger == nil {
		logger = logging.NewNop()
	}

	if _, err := os.Stat(inputPath); err == nil {
		logger.Debug("using existing catalogue", "path", inputPath)
		return nil
	}

	if client == nil {
		client = http.DefaultClient
	}

	logger.Info("downloading catalogue", "url", url, "path", inputPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build catalogue request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("download catalogue: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download catalogue: unexpected status %d from %s", resp.StatusCode, url)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCatalogBytes))
	if err != nil {
		return fmt.Errorf("read catalogue response: %w", err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("parse catalogue from %s: %w", url, err)
	}

	if err := os.MkdirAll(filepath.Dir(inputPath), 0755); err != nil {
		return fmt.Errorf("create input directory: %w", err)
	}

	tmpPath := inputPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write catalogue: %w", err)
	}
	if err := os.Rename(tmpPath, inputPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace catalogue: %w", err)
	}

	logger.Info("catalogue downloaded", "records", len(records), "path", inputPath)
	return nil
}
