package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/ppiankov/fever/internal/cache"
	"github.com/ppiankov/fever/internal/docdb"
	"github.com/ppiankov/fever/internal/model"
	"github.com/ppiankov/fever/internal/reader"
	"github.com/ppiankov/fever/internal/sample"
	"github.com/ppiankov/fever/internal/scorer"
	"github.com/ppiankov/fever/internal/worker"
	"go.uber.org/zap"
)

// Pipeline wires the document store, the evidence reader and the scorer
type Pipeline struct {
	store  *docdb.Store
	cache  *cache.MemoryCache // nil if disabled
	reader *reader.Reader
	config *model.Config
	logger *zap.Logger
}

// New opens the document store and builds the reader described by cfg
func New(cfg *model.Config, logger *zap.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	generator, err := reader.NewGenerator(cfg.Reader.Strategy)
	if err != nil {
		return nil, err
	}

	store, err := docdb.Open(cfg.Database.Path, logger)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{store: store, config: cfg, logger: logger}

	var source docdb.LineSource = store
	if cfg.Cache.Enabled {
		p.cache = cache.NewMemoryCache(cfg.Cache.TTL, cfg.Cache.CleanupInterval)
		source = docdb.NewCachedStore(store, p.cache)
	}

	resolver := reader.NewResolver(source, sample.New(cfg.Reader.Seed))
	p.reader = reader.NewReader(resolver, generator, logger)

	logger.Debug("Pipeline ready",
		zap.String("db", cfg.Database.Path),
		zap.String("strategy", cfg.Reader.Strategy),
		zap.Uint64("seed", cfg.Reader.Seed),
		zap.Bool("cache", cfg.Cache.Enabled))

	return p, nil
}

// Close releases the document store
func (p *Pipeline) Close() error {
	return p.store.Close()
}

// Reader returns the evidence reader
func (p *Pipeline) Reader() *reader.Reader {
	return p.reader
}

// ReadClaims assembles instances for every claim in in and writes them as JSON lines
func (p *Pipeline) ReadClaims(ctx context.Context, in io.Reader, out *Renderer) (int, error) {
	n := 0
	err := p.reader.Read(ctx, in, func(inst model.Instance) error {
		if err := out.Write(inst); err != nil {
			return err
		}
		n++
		return nil
	})
	return n, err
}

// NewScorer builds the configured scorer behind the request rate limiter
func (p *Pipeline) NewScorer() (scorer.Scorer, error) {
	s, err := scorer.NewScorer(p.config.Scorer, p.labels())
	if err != nil {
		return nil, err
	}

	limiter := worker.NewLimiter(p.config.RateLimiting.RequestsPerSecond, p.config.RateLimiting.BurstSize)
	return &scorer.Limited{Scorer: s, Limiter: limiter, Endpoint: scorer.Endpoint(p.config.Scorer)}, nil
}

// NewPredictor creates a predictor over this pipeline's reader
func (p *Pipeline) NewPredictor(s scorer.Scorer, oracle bool) (*Predictor, error) {
	return NewPredictor(p.reader, s, p.labels(), oracle, p.logger)
}

// PredictFile predicts every line of inputPath and writes the predictions in input order.
// Output stops at the first failed input.
func (p *Pipeline) PredictFile(ctx context.Context, predictor *Predictor, inputPath string, out *Renderer) (int, error) {
	workers := p.config.Concurrency.Workers
	if workers < 1 {
		workers = 1
	}

	processor := worker.NewBatchProcessor(predictor, workers)
	results, err := processor.ProcessFile(ctx, inputPath)
	if err != nil {
		return 0, err
	}

	failed := 0
	for _, r := range results {
		if r.Error != nil {
			failed++
			p.logger.Warn("Prediction failed", zap.Int("record", r.Index+1), zap.Error(r.Error))
		}
	}

	written := 0
	for _, r := range results {
		if r.Error != nil {
			return written, fmt.Errorf("record %d (%d of %d failed): %w", r.Index+1, failed, len(results), r.Error)
		}
		if err := out.Write(r.Prediction); err != nil {
			return written, err
		}
		written++
	}

	p.logger.Info("Predicted", zap.Int("records", written), zap.Int("workers", workers))
	return written, nil
}

func (p *Pipeline) labels() []string {
	if len(p.config.Reader.Labels) == 0 {
		return model.DefaultLabels()
	}
	return p.config.Reader.Labels
}
