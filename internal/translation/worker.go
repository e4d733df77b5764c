package translation

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/roostaq/irasutoya-images-english/internal/catalog"
	"github.com/roostaq/irasutoya-images-english/internal/logging"
	"github.com/roostaq/irasutoya-images-english/internal/retry"
)

// DefaultQPS is the default rate for remote translation calls. The upstream
// catalogue is served from someone else's API quota; half a call per second
// keeps batch runs polite.
const DefaultQPS = 0.5

// Worker translates whole catalogue records. Every remote call goes through
// the rate limiter, the circuit breaker and the retry policy, in that order
// from the outside in: retries re-enter the limiter so a retried call still
// pays the politeness delay.
type Worker struct {
	provider   Provider
	cache      *Cache
	limiter    *rate.Limiter
	policy     *retry.Policy
	breaker    *retry.Breaker
	targetLang string
	logger     *slog.Logger
}

// WorkerConfig holds the tunables for a translation worker.
type WorkerConfig struct {
	TargetLang string
	QPS        float64
}

// NewWorker creates a translation worker. The cache may be nil to disable
// persistent caching.
func NewWorker(provider Provider, cache *Cache, policy *retry.Policy, cfg WorkerConfig, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = logging.NewNop()
	}
	qps := cfg.QPS
	if qps <= 0 {
		qps = DefaultQPS
	}
	targetLang := cfg.TargetLang
	if targetLang == "" {
		targetLang = "en"
	}
	return &Worker{
		provider:   provider,
		cache:      cache,
		limiter:    rate.NewLimiter(rate.Limit(qps), 1),
		policy:     policy,
		breaker:    retry.NewBreaker("translation/"+provider.Name(), logger),
		targetLang: targetLang,
		logger:     logger,
	}
}

// TranslateRecord fills in the English fields of rec, one remote request per
// unit of text. It is all or nothing: on any failure the record is returned
// unchanged so the document never holds a half-translated record. Units that
// did succeed are in the cache, so the retried record is cheaper.
func (w *Worker) TranslateRecord(ctx context.Context, rec catalog.Record) (catalog.Record, error) {
	title, err := w.translateUnit(ctx, "title", rec.Title)
	if err != nil {
		return rec, err
	}

	description, err := w.translateUnit(ctx, "description", rec.Description)
	if err != nil {
		return rec, err
	}

	imageAlt, err := w.translateUnit(ctx, "image_alt", rec.ImageAlt)
	if err != nil {
		return rec, err
	}

	var categories []string
	if len(rec.Categories) > 0 {
		categories = make([]string, len(rec.Categories))
		for i, cat := range rec.Categories {
			translated, err := w.translateUnit(ctx, fmt.Sprintf("categories[%d]", i), cat)
			if err != nil {
				return rec, err
			}
			categories[i] = translated
		}
	}

	rec.TitleEN = title
	rec.DescriptionEN = description
	rec.ImageAltEN = imageAlt
	rec.CategoriesEN = categories
	return rec, nil
}

// translateUnit translates one piece of text, consulting the cache first.
// Empty source text yields an empty translation without a remote call.
func (w *Worker) translateUnit(ctx context.Context, field, text string) (string, error) {
	if text == "" {
		return "", nil
	}

	if w.cache != nil {
		if translated, ok := w.cache.Get(ctx, text, w.targetLang); ok {
			w.logger.Debug("translation cache hit", "field", field)
			return translated, nil
		}
	}

	var translated string
	err := w.policy.Do(ctx, "translate "+field, func() error {
		if err := w.limiter.Wait(ctx); err != nil {
			return err
		}
		return w.breaker.Execute(func() error {
			result, err := w.provider.Translate(ctx, text, w.targetLang)
			if err != nil {
				return err
			}
			translated = result
			return nil
		})
	})
	if err != nil {
		return "", &TranslationError{
			Provider:  w.provider.Name(),
			Field:     field,
			Err:       err,
			Retryable: retry.IsTransient(err),
		}
	}

	if w.cache != nil {
		if err := w.cache.Put(ctx, text, w.targetLang, translated); err != nil {
			w.logger.Warn("failed to persist translation", "field", field, "error", err)
		}
	}

	return translated, nil
}
