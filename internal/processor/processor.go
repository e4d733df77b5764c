package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/roostaq/irasutoya-images-english/internal/catalog"
	"github.com/roostaq/irasutoya-images-english/internal/logging"
)

const (
	// DefaultWorkers bounds concurrent record processing.
	DefaultWorkers = 4

	// DefaultCheckpointEvery is how many completed records trigger an
	// intermediate save of the output document.
	DefaultCheckpointEvery = 10
)

// Translator fills in the English fields of a record.
type Translator interface {
	TranslateRecord(ctx context.Context, rec catalog.Record) (catalog.Record, error)
}

// ImageFetcher downloads a record's image to its deterministic local path.
type ImageFetcher interface {
	Fetch(ctx context.Context, rec catalog.Record) (string, error)
	Fetched(rec catalog.Record) bool
}

// Config holds the run parameters for an enrichment pass.
type Config struct {
	Translate bool // translate Japanese fields to English
	Download  bool // download record images

	InputPath  string // upstream catalogue document
	CatalogURL string // where to bootstrap the input from when missing

	Workers         int
	CheckpointEvery int
	Limit           int  // process at most this many pending records (0 = all)
	DryRun          bool // report pending work without doing it
}

// Processor drives one enrichment run over the catalogue.
type Processor struct {
	cfg        Config
	store      *catalog.Store
	translator Translator
	fetcher    ImageFetcher
	logger     *slog.Logger
}

// New creates a processor. When neither Translate nor Download is set, both
// are enabled, matching the tool's no-flags default.
func New(cfg Config, store *catalog.Store, translator Translator, fetcher ImageFetcher, logger *slog.Logger) *Processor {
	if !cfg.Translate && !cfg.Download {
		cfg.Translate = true
		cfg.Download = true
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.CheckpointEvery <= 0 {
		cfg.CheckpointEvery = DefaultCheckpointEvery
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Processor{
		cfg:        cfg,
		store:      store,
		translator: translator,
		fetcher:    fetcher,
		logger:     logger,
	}
}

// workItem is one record's pending operations. Workers get their own record
// copy; the shared slice is touched only by the collector.
type workItem struct {
	index     int
	rec       catalog.Record
	translate bool
	download  bool
}

type workResult struct {
	index      int
	rec        catalog.Record
	translated bool
	downloaded bool
	failures   []Failure
}

// Run executes one enrichment pass: reconcile input against previous output,
// process every record that still needs work, checkpoint along the way, and
// write the final document. Per-record failures are collected in the summary;
// only unusable input, a held lock or an unwritable output abort the run.
// On cancellation the summary and the context error are both returned, with
// all completed work saved.
func (p *Processor) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()

	if p.cfg.CatalogURL != "" {
		if err := catalog.EnsureSource(ctx, nil, p.cfg.CatalogURL, p.cfg.InputPath, p.logger); err != nil {
			return nil, err
		}
	}

	upstream, err := catalog.LoadFile(p.cfg.InputPath)
	if err != nil {
		return nil, err
	}
	enriched, err := p.store.Load()
	if err != nil {
		return nil, err
	}
	records := catalog.Merge(upstream, enriched)

	summary := &Summary{Total: len(records), DryRun: p.cfg.DryRun}

	items := p.planWork(records, summary)

	if p.cfg.DryRun {
		for _, item := range items {
			if item.translate {
				summary.Translated++
			}
			if item.download {
				summary.Downloaded++
			}
			p.logger.Info("would process record",
				"key", item.rec.Key(),
				"translate", item.translate,
				"download", item.download)
		}
		summary.Elapsed = time.Since(start)
		return summary, nil
	}

	if err := p.store.Acquire(); err != nil {
		return nil, err
	}
	defer p.store.Release()

	p.logger.Info("starting enrichment",
		"records", len(records),
		"pending", len(items),
		"translate", p.cfg.Translate,
		"download", p.cfg.Download,
		"workers", p.cfg.Workers)

	results := make(chan workResult)
	collectorDone := make(chan struct{})

	// Single collector applies mutations and checkpoints; workers never
	// touch the shared slice or the store.
	go func() {
		defer close(collectorDone)
		completed := 0
		for res := range results {
			records[res.index] = res.rec
			if res.translated {
				summary.Translated++
			}
			if res.downloaded {
				summary.Downloaded++
			}
			if len(res.failures) > 0 {
				summary.Failed++
				summary.Failures = append(summary.Failures, res.failures...)
			}
			completed++
			if completed%p.cfg.CheckpointEvery == 0 {
				if err := p.store.Save(records); err != nil {
					p.logger.Error("checkpoint failed", "error", err)
				} else {
					p.logger.Debug("checkpoint", "completed", completed, "pending", len(items)-completed)
				}
			}
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)

	for _, item := range items {
		if gctx.Err() != nil {
			break
		}
		item := item
		g.Go(func() error {
			results <- p.processRecord(gctx, item)
			return nil
		})
	}

	_ = g.Wait()
	close(results)
	<-collectorDone

	if err := p.store.Save(records); err != nil {
		return summary, fmt.Errorf("write output document: %w", err)
	}

	summary.Elapsed = time.Since(start)

	if err := ctx.Err(); err != nil {
		p.logger.Warn("run interrupted, progress saved",
			"translated", summary.Translated,
			"downloaded", summary.Downloaded)
		return summary, err
	}
	return summary, nil
}

// planWork decides per record what still needs doing. Records needing
// nothing count as skipped; with a limit set, pending records beyond it are
// left for the next run.
func (p *Processor) planWork(records []catalog.Record, summary *Summary) []workItem {
	var items []workItem
	for i, rec := range records {
		needsTranslate := p.cfg.Translate && !rec.Translated()
		needsDownload := p.cfg.Download && rec.ImageURL != "" && !p.fetcher.Fetched(rec)

		if !needsTranslate && !needsDownload {
			summary.Skipped++
			continue
		}
		if p.cfg.Limit > 0 && len(items) >= p.cfg.Limit {
			continue
		}
		items = append(items, workItem{
			index:     i,
			rec:       rec,
			translate: needsTranslate,
			download:  needsDownload,
		})
	}
	return items
}

// processRecord runs one record's pending operations. Translation and
// download are independent: a failed translation does not block the image
// download. Cancellation is not a record failure; the record stays pending
// for the next run.
func (p *Processor) processRecord(ctx context.Context, item workItem) workResult {
	res := workResult{index: item.index, rec: item.rec}
	key := item.rec.Key()

	if item.translate {
		translated, err := p.translator.TranslateRecord(ctx, res.rec)
		switch {
		case err == nil:
			res.rec = translated
			res.translated = true
			p.logger.Info("record translated", "key", key)
		case isCanceled(err):
			return res
		default:
			p.logger.Error("translation failed", "key", key, "error", err)
			res.failures = append(res.failures, Failure{Key: key, Op: "translate", Err: err.Error()})
		}
	}

	if item.download {
		relPath, err := p.fetcher.Fetch(ctx, res.rec)
		switch {
		case err == nil:
			res.rec.DirectoryPath = relPath
			res.downloaded = true
			p.logger.Info("image downloaded", "key", key, "path", relPath)
		case isCanceled(err):
			// Stays pending for the next run.
		default:
			p.logger.Error("download failed", "key", key, "url", item.rec.ImageURL, "error", err)
			res.failures = append(res.failures, Failure{Key: key, Op: "download", Err: err.Error()})
		}
	}

	return res
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
