package coordinator

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/galangw/article-pipeline/internal/article"
	"github.com/galangw/article-pipeline/internal/extract"
	"github.com/galangw/article-pipeline/internal/normalize"
	"github.com/galangw/article-pipeline/internal/render"
)

// TaskProcessor runs the full pipeline for one URL and reports a terminal
// outcome. Implementations never return before the URL reached Succeeded
// or Failed.
type TaskProcessor interface {
	Process(ctx context.Context, url string) article.Outcome
}

// Processor is the production TaskProcessor: fetch, extract, normalize,
// render, persist. Each invocation is fully independent; the only shared
// collaborator is the store, whose upsert is atomic per row.
type Processor struct {
	fetcher    article.Fetcher
	extractor  *extract.Extractor
	normalizer *normalize.Normalizer
	renderer   *render.Renderer
	store      article.Store
	sink       article.FileSink
	logger     *zap.Logger
}

// NewProcessor builds a Processor. sink may be nil to skip file output.
func NewProcessor(
	fetcher article.Fetcher,
	extractor *extract.Extractor,
	normalizer *normalize.Normalizer,
	renderer *render.Renderer,
	store article.Store,
	sink article.FileSink,
	logger *zap.Logger,
) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		fetcher:    fetcher,
		extractor:  extractor,
		normalizer: normalizer,
		renderer:   renderer,
		store:      store,
		sink:       sink,
		logger:     logger,
	}
}

// Process walks one URL through every pipeline stage in order. No stage
// is skipped; each failure is terminal for this URL only.
func (p *Processor) Process(ctx context.Context, url string) article.Outcome {
	start := time.Now()
	outcome := article.Outcome{URL: url, Status: article.TaskPending}
	fail := func(stage string, err error) article.Outcome {
		outcome.Status = article.TaskFailed
		outcome.Error = fmt.Sprintf("%s: %v", stage, err)
		outcome.Duration = time.Since(start)
		p.logger.Error("task failed",
			zap.String("url", url),
			zap.String("stage", stage),
			zap.Error(err),
		)
		return outcome
	}

	outcome.Status = article.TaskFetching
	doc, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		return fail("fetch", err)
	}

	outcome.Status = article.TaskExtracting
	rec, container := p.extractor.Extract(doc, url)

	outcome.Status = article.TaskNormalizing
	normalized := p.normalizer.Normalize(ctx, container)
	fileDoc := p.renderer.FileDocument(rec, normalized)
	rec.Content = p.renderer.StoreContent(rec, normalized)

	outcome.Status = article.TaskPersisting
	if p.sink != nil {
		if _, err := p.sink.Save(ctx, url, fileDoc); err != nil {
			// File output is best-effort; the store row is the record
			// of truth.
			p.logger.Warn("file sink write failed",
				zap.String("url", url),
				zap.Error(err),
			)
		}
	}
	if err := p.store.Upsert(ctx, rec); err != nil {
		return fail("persist", err)
	}

	outcome.Status = article.TaskSucceeded
	outcome.Duration = time.Since(start)
	p.logger.Info("article persisted",
		zap.String("url", url),
		zap.Duration("duration", outcome.Duration),
	)
	return outcome
}
