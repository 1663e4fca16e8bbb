// Package builder runs the offline build: collect entries from the
// configured sources, index and reconcile them, and publish the result as a
// new store generation.
package builder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/heartmarshall/kodict/internal/collector"
	"github.com/heartmarshall/kodict/internal/compress"
	"github.com/heartmarshall/kodict/internal/domain"
	"github.com/heartmarshall/kodict/internal/index"
	"github.com/heartmarshall/kodict/internal/reconcile"
	"github.com/heartmarshall/kodict/internal/store"
)

// Phase names, in execution order. Collection runs once per source as
// "collect:<source>".
const (
	PhaseDedupe    = "dedupe"
	PhaseOverrides = "overrides"
	PhaseIndex     = "index"
	PhaseReconcile = "reconcile"
	PhasePublish   = "publish"
	PhasePrune     = "prune"
)

// Config holds build pipeline settings.
type Config struct {
	StoreDir        string
	Compression     compress.Algorithm
	KeepGenerations int
	OverridesPath   string
	// DryRun stops the pipeline before anything is written.
	DryRun bool
}

// PhaseResult holds the outcome of a single pipeline phase.
type PhaseResult struct {
	Input    int
	Output   int
	Skipped  int
	Duration time.Duration
	Err      error
}

// Pipeline orchestrates one build.
type Pipeline struct {
	log     *slog.Logger
	sources []collector.Source
	cfg     Config
	results map[string]PhaseResult
	order   []string
	now     func() time.Time
}

// NewPipeline creates a new Pipeline.
func NewPipeline(log *slog.Logger, sources []collector.Source, cfg Config) *Pipeline {
	return &Pipeline{
		log:     log,
		sources: sources,
		cfg:     cfg,
		results: make(map[string]PhaseResult),
		now:     time.Now,
	}
}

// Results returns phase results after Run completes.
func (p *Pipeline) Results() map[string]PhaseResult {
	return p.results
}

// Phases returns the names of the phases that ran, in order.
func (p *Pipeline) Phases() []string {
	return p.order
}

// Run executes the build. Any phase error aborts the run before publish, so
// the live generation is only ever replaced by a complete, consistent store.
// In dry-run mode the returned manifest is the zero value.
func (p *Pipeline) Run(ctx context.Context) (store.Manifest, error) {
	if len(p.sources) == 0 {
		return store.Manifest{}, fmt.Errorf("builder: no sources configured")
	}

	var entries []domain.Entry
	for _, src := range p.sources {
		got, err := phase(p, "collect:"+src.Name(), func() (PhaseResult, []domain.Entry, error) {
			es, err := src.Collect(ctx)
			if err != nil {
				return PhaseResult{}, nil, err
			}
			res := PhaseResult{Input: len(es), Output: len(es)}
			if r, ok := src.(collector.StatsReporter); ok {
				st := r.CollectStats()
				res.Input, res.Skipped = st.Read, st.TotalSkipped()
				p.logSkipped(src.Name(), st)
			}
			return res, es, nil
		})
		if err != nil {
			return store.Manifest{}, err
		}
		entries = append(entries, got...)
	}

	entries, err := phase(p, PhaseDedupe, func() (PhaseResult, []domain.Entry, error) {
		out, st := collector.Dedupe(entries)
		return PhaseResult{Input: st.Input, Output: st.Output, Skipped: st.MergedEntries}, out, nil
	})
	if err != nil {
		return store.Manifest{}, err
	}

	entries, err = phase(p, PhaseOverrides, func() (PhaseResult, []domain.Entry, error) {
		overrides, err := collector.LoadOverrides(p.cfg.OverridesPath)
		if err != nil {
			return PhaseResult{}, nil, err
		}
		out, added := collector.ApplyOverrides(entries, overrides)
		return PhaseResult{Input: len(overrides), Output: added, Skipped: len(overrides) - added}, out, nil
	})
	if err != nil {
		return store.Manifest{}, err
	}

	ix, err := phase(p, PhaseIndex, func() (PhaseResult, *index.Index, error) {
		ix, err := index.Build(domain.Keys(entries))
		if err != nil {
			return PhaseResult{Input: len(entries)}, nil, err
		}
		st := ix.Stats()
		p.log.Info("index built",
			slog.Int("keys", st.Keys),
			slog.Int("nodes", st.Nodes),
			slog.Int("label_bytes", st.LabelBytes),
		)
		return PhaseResult{Input: len(entries), Output: st.Keys}, ix, nil
	})
	if err != nil {
		return store.Manifest{}, err
	}

	s, err := phase(p, PhaseReconcile, func() (PhaseResult, *store.Store, error) {
		table, err := reconcile.Reconcile(entries, ix)
		if err != nil {
			return PhaseResult{Input: len(entries)}, nil, err
		}
		s, err := store.New(ix, table)
		return PhaseResult{Input: len(entries), Output: len(table)}, s, err
	})
	if err != nil {
		return store.Manifest{}, err
	}

	if p.cfg.DryRun {
		p.log.Info("dry run: skipping publish", slog.Int("entries", s.Len()))
		return store.Manifest{}, nil
	}

	m, err := phase(p, PhasePublish, func() (PhaseResult, store.Manifest, error) {
		m, err := store.Publish(ctx, p.cfg.StoreDir, s, store.PublishOptions{
			Compression: p.cfg.Compression,
			Now:         p.now,
		})
		if errors.Is(err, store.ErrNotDurable) {
			// The generation is live; only crash durability of CURRENT is in doubt.
			p.log.Warn("generation published without durable sync",
				slog.String("generation", m.Generation),
				slog.String("error", err.Error()),
			)
			err = nil
		}
		if err != nil {
			return PhaseResult{Input: s.Len()}, m, err
		}
		p.log.Info("generation published",
			slog.String("generation", m.Generation),
			slog.String("compression", m.Compression),
			slog.Int64("index_bytes", m.IndexSize),
			slog.Int64("metadata_bytes", m.MetadataSize),
		)
		return PhaseResult{Input: s.Len(), Output: m.Keys}, m, nil
	})
	if err != nil {
		return store.Manifest{}, err
	}

	// Pruning happens after the new generation is live; a failure here is
	// reported but does not undo the publish.
	if _, err := phase(p, PhasePrune, func() (PhaseResult, []string, error) {
		removed, err := store.Prune(p.cfg.StoreDir, p.cfg.KeepGenerations)
		return PhaseResult{Output: len(removed)}, removed, err
	}); err != nil {
		return m, err
	}

	p.log.Info("pipeline completed", slog.Int("phases_run", len(p.order)), slog.Int("entries", m.Keys))
	return m, nil
}

// logSkipped logs per-reason drop counts reported by a source.
func (p *Pipeline) logSkipped(source string, st collector.CollectStats) {
	attrs := []any{slog.String("source", source), slog.Int("read", st.Read)}
	for _, reason := range slices.Sorted(maps.Keys(st.Skipped)) {
		attrs = append(attrs, slog.Int("skipped_"+reason, st.Skipped[reason]))
	}
	p.log.Info("source records skipped", attrs...)
}

// phase runs fn as the named phase, recording and logging its result.
func phase[T any](p *Pipeline, name string, fn func() (PhaseResult, T, error)) (T, error) {
	start := time.Now()
	p.log.Info("starting phase", slog.String("phase", name))

	result, out, err := fn()
	result.Duration = time.Since(start)
	result.Err = err
	p.results[name] = result
	p.order = append(p.order, name)

	if err != nil {
		p.log.Error("phase failed",
			slog.String("phase", name),
			slog.String("error", err.Error()),
			slog.Duration("duration", result.Duration),
		)
		var zero T
		return zero, fmt.Errorf("builder: %s: %w", name, err)
	}

	p.log.Info("phase completed",
		slog.String("phase", name),
		slog.Int("input", result.Input),
		slog.Int("output", result.Output),
		slog.Int("skipped", result.Skipped),
		slog.Duration("duration", result.Duration),
	)
	return out, nil
}
