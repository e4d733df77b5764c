package image

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/roostaq/irasutoya-images-english/internal/catalog"
	"github.com/roostaq/irasutoya-images-english/internal/logging"
	"github.com/roostaq/irasutoya-images-english/internal/retry"
)

// FetchError reports a failed image download
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Transient reports whether the download is worth retrying. Rate limits and
// server errors are; a 404 will still be a 404 next time.
func (e *FetchError) Transient() bool {
	if e.StatusCode == http.StatusTooManyRequests {
		return true
	}
	if e.StatusCode >= 500 {
		return true
	}
	if e.StatusCode >= 400 {
		return false
	}
	return true
}

// Config configures image fetching behavior
type Config struct {
	BaseDir      string        // Directory the document-relative image tree lives under
	Timeout      time.Duration // Per-request timeout
	MaxSizeBytes int64         // Maximum file size to download (0 = no limit)
	UserAgents   []string      // Rotated across requests
}

// DefaultConfig returns sensible defaults for image fetching
func DefaultConfig() *Config {
	return &Config{
		BaseDir:      "output",
		Timeout:      30 * time.Second,
		MaxSizeBytes: 10 * 1024 * 1024, // 10MB
		UserAgents:   defaultUserAgents,
	}
}

// defaultUserAgents is a small rotation of common browser identities. The
// image host throttles unadorned clients.
var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Safari/605.1.15",
}

// Fetcher downloads record images to their deterministic local paths. Fetch
// is idempotent: an image already on disk is never downloaded again, so
// re-runs and crashed runs cost nothing for finished records.
type Fetcher struct {
	client  *http.Client
	config  *Config
	policy  *retry.Policy
	breaker *retry.Breaker
	logger  *slog.Logger
	uaNext  atomic.Uint32
}

// NewFetcher creates a new image fetcher
func NewFetcher(config *Config, policy *retry.Policy, logger *slog.Logger) *Fetcher {
	if config == nil {
		config = DefaultConfig()
	}
	if len(config.UserAgents) == 0 {
		config.UserAgents = defaultUserAgents
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Fetcher{
		client:  &http.Client{Timeout: config.Timeout},
		config:  config,
		policy:  policy,
		breaker: retry.NewBreaker("image", logger),
		logger:  logger,
	}
}

// DirectoryPath returns the document-relative path for rec's image, reusing
// the recorded one when present.
func (f *Fetcher) DirectoryPath(rec catalog.Record) (string, error) {
	if rec.DirectoryPath != "" {
		return rec.DirectoryPath, nil
	}
	return rec.ComputeDirectoryPath()
}

// TargetPath resolves rec's image location on the local filesystem.
func (f *Fetcher) TargetPath(rec catalog.Record) (string, error) {
	relPath, err := f.DirectoryPath(rec)
	if err != nil {
		return "", err
	}
	rel := strings.TrimPrefix(relPath, "./")
	return filepath.Join(f.config.BaseDir, filepath.FromSlash(rel)), nil
}

// Fetched reports whether rec's image already exists locally with content.
// A zero-byte file does not count: a previous crash may have left one.
func (f *Fetcher) Fetched(rec catalog.Record) bool {
	target, err := f.TargetPath(rec)
	if err != nil {
		return false
	}
	info, err := os.Stat(target)
	return err == nil && info.Size() > 0
}

// Fetch downloads rec's image to its deterministic path and returns the
// document-relative directory path to record. An image already on disk is
// left alone.
func (f *Fetcher) Fetch(ctx context.Context, rec catalog.Record) (string, error) {
	if rec.ImageURL == "" {
		return "", fmt.Errorf("record %s has no image URL", rec.Key())
	}

	relPath, err := f.DirectoryPath(rec)
	if err != nil {
		return "", fmt.Errorf("derive image path: %w", err)
	}
	target, err := f.TargetPath(rec)
	if err != nil {
		return "", err
	}

	if info, err := os.Stat(target); err == nil && info.Size() > 0 {
		f.logger.Debug("image already downloaded", "path", target)
		return relPath, nil
	}

	err = f.policy.Do(ctx, "fetch "+rec.ImageFilename(), func() error {
		return f.breaker.Execute(func() error {
			return f.download(ctx, rec.ImageURL, target)
		})
	})
	if err != nil {
		return "", err
	}

	return relPath, nil
}

// download performs one GET and writes the body to target via a temporary
// sibling, so a killed run never leaves a half-written image behind.
func (f *Fetcher) download(ctx context.Context, rawURL, target string) error {
	dir := filepath.Dir(target)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create image directory: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build image request: %w", err)
	}
	req.Header.Set("User-Agent", f.nextUserAgent())

	resp, err := f.client.Do(req)
	if err != nil {
		return &FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &FetchError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	tmpPath := target + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create image file: %w", err)
	}

	written, err := f.copyBody(file, resp.Body)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpPath)
		return &FetchError{URL: rawURL, Err: err}
	}
	if written == 0 {
		os.Remove(tmpPath)
		return &FetchError{URL: rawURL, Err: fmt.Errorf("empty response body")}
	}

	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("finalize image file: %w", err)
	}

	f.logger.Debug("image downloaded", "url", rawURL, "path", target, "bytes", written)
	return nil
}

// copyBody copies the response body with the configured size limit.
func (f *Fetcher) copyBody(dst io.Writer, src io.Reader) (int64, error) {
	if f.config.MaxSizeBytes <= 0 {
		return io.Copy(dst, src)
	}

	written, err := io.CopyN(dst, src, f.config.MaxSizeBytes)
	if err != nil && err != io.EOF {
		return written, err
	}
	if written == f.config.MaxSizeBytes {
		// Probe one byte to tell an exact-size body from an oversized one.
		if _, err := src.Read(make([]byte, 1)); err != io.EOF {
			return written, fmt.Errorf("image exceeds maximum size of %d bytes", f.config.MaxSizeBytes)
		}
	}
	return written, nil
}

func (f *Fetcher) nextUserAgent() string {
	n := f.uaNext.Add(1)
	return f.config.UserAgents[int(n-1)%len(f.config.UserAgents)]
}
