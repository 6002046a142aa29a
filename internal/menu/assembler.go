package menu

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/chainmerge/internal/chain"
	"github.com/dusk-indust/chainmerge/internal/graph"
	"github.com/dusk-indust/chainmerge/internal/logfields"
	"github.com/dusk-indust/chainmerge/internal/merge"
	"github.com/dusk-indust/chainmerge/internal/metrics"
)

// Options configures an Assembler. The zero value is usable.
type Options struct {
	// Concurrency bounds how many chains are merged at once. Zero means
	// GOMAXPROCS.
	Concurrency int

	// Cache memoizes placeholders across every chain of the menu. Nil gets
	// a fresh MapCache.
	Cache merge.Cache

	// Store receives every merged chain. Nil skips persistence.
	Store graph.Store

	// Recorder receives merge metrics. Nil means metrics.NoopRecorder.
	Recorder metrics.Recorder

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// OnProgress is called synchronously from the merging goroutines; it
	// may be nil.
	OnProgress func(ProgressEvent)
}

// Assembler merges the chains of a menu in parallel through one shared
// merge.Merger.
type Assembler struct {
	merger      *merge.Merger
	store       graph.Store
	rec         metrics.Recorder
	log         *slog.Logger
	concurrency int
	onProgress  func(ProgressEvent)
}

// NewAssembler creates an Assembler from opts.
func NewAssembler(opts Options) *Assembler {
	rec := opts.Recorder
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	cache := opts.Cache
	if cache == nil {
		cache = merge.NewMapCache()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	return &Assembler{
		merger:      merge.New(meteredCache{inner: cache, rec: rec}),
		store:       opts.Store,
		rec:         rec,
		log:         logger,
		concurrency: concurrency,
		onProgress:  opts.OnProgress,
	}
}

// Assemble merges every chain of m. Results are in the order of m.Chains.
// The first failure cancels the chains still in flight and is returned
// wrapped with the failing chain's name; no partial result is returned.
func (a *Assembler) Assemble(ctx context.Context, m Menu) ([]chain.Chain, error) {
	start := time.Now()
	results := make([]chain.Chain, len(m.Chains))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for i, def := range m.Chains {
		a.emit(ProgressEvent{Chain: def.Name, Status: ProgressPending})

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			a.emit(ProgressEvent{Chain: def.Name, Status: ProgressWorking})

			merged, err := a.MergeChain(gctx, def, m.GroupOrder)
			if err == nil && a.store != nil {
				if serr := a.store.AddChain(gctx, graph.FromChain(merged)); serr != nil {
					err = fmt.Errorf("store: %w", serr)
				}
			}
			if err != nil {
				a.emit(ProgressEvent{Chain: def.Name, Status: ProgressFailed, Message: err.Error()})
				return fmt.Errorf("menu: chain %s: %w", def.Name, err)
			}

			results[i] = merged
			a.emit(ProgressEvent{
				Chain:   def.Name,
				Status:  ProgressComplete,
				Message: fmt.Sprintf("%d steps, %d legs", len(merged.Steps), merged.Width()),
			})
			return nil
		})
	}

	err := g.Wait()
	elapsed := time.Since(start)
	a.rec.ObserveAssembly(len(m.Chains), elapsed)
	if err != nil {
		a.log.Error("menu assembly failed", logfields.Error(err), logfields.Duration(elapsed))
		return nil, err
	}
	a.log.Info("menu assembled", slog.Int("chains", len(m.Chains)), logfields.Duration(elapsed))
	return results, nil
}

// MergeChain merges a single chain definition. groupOrder is used by the
// auto strategy.
func (a *Assembler) MergeChain(ctx context.Context, def ChainDef, groupOrder []string) (chain.Chain, error) {
	if err := ctx.Err(); err != nil {
		return chain.Chain{}, err
	}
	strategy := def.Strategy
	if strategy == "" {
		strategy = merge.StrategyAuto
	}

	start := time.Now()
	merged, err := a.merger.Merge(merge.Request{
		Legs:       def.Legs,
		Strategy:   strategy,
		Offset:     def.Offset,
		GroupOrder: groupOrder,
	})
	elapsed := time.Since(start)
	a.rec.ObserveMergeDuration(string(strategy), elapsed)
	a.rec.IncMerge(string(strategy), outcomeOf(err))

	if err != nil {
		a.log.Warn("merge failed",
			logfields.Chain(def.Name),
			logfields.Strategy(string(strategy)),
			logfields.Error(err))
		return chain.Chain{}, err
	}

	a.log.Debug("merged chain",
		logfields.Chain(def.Name),
		logfields.Strategy(string(strategy)),
		logfields.Legs(len(def.Legs)),
		logfields.Steps(len(merged.Steps)),
		logfields.Placeholders(countPlaceholders(merged)),
		logfields.Duration(elapsed))
	return merged, nil
}

func (a *Assembler) emit(ev ProgressEvent) {
	if a.onProgress != nil {
		a.onProgress(ev)
	}
}

func outcomeOf(err error) metrics.Outcome {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.OutcomeCanceled
	case errors.Is(err, merge.ErrStructural):
		return metrics.OutcomeStructural
	default:
		return metrics.OutcomeConfiguration
	}
}

func countPlaceholders(c chain.Chain) int {
	n := 0
	for _, s := range c.Steps {
		for _, seq := range s.Sequences {
			if chain.IsEmpty(seq) {
				n++
			}
		}
	}
	return n
}

// meteredCache reports every placeholder lookup to a Recorder.
type meteredCache struct {
	inner merge.Cache
	rec   metrics.Recorder
}

func (c meteredCache) LookupOrInsert(key string, build func() []chain.Sequence) ([]chain.Sequence, bool) {
	seqs, hit := c.inner.LookupOrInsert(key, build)
	c.rec.IncPlaceholderCache(hit)
	return seqs, hit
}
