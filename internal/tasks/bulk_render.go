package tasks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/desertthunder/guitartube/internal/formatter"
	"github.com/desertthunder/guitartube/internal/models"
	"github.com/desertthunder/guitartube/internal/shared"
	"github.com/desertthunder/guitartube/internal/variants"
	"golang.org/x/time/rate"
)

const (
	defaultWorkers   = 4
	defaultRateLimit = 10.0
)

// BulkRenderOpts contains configuration for bulk diagram renders.
type BulkRenderOpts struct {
	PositionTypes []string // Position types to enumerate (default: open, barre)
	Frets         []int    // Fret positions to enumerate (default: 0)
	NumWorkers    int      // Concurrent workers (default: 4, max: [shared.MaxWorkers])
	RateLimit     float64  // Store writes per second (default: 10)
	ManifestPath  string   // Manifest written here when set
}

// BulkRenderResult summarizes a bulk render. Results follow enumeration order.
type BulkRenderResult struct {
	TotalVariants int
	Rendered      int
	Skipped       int
	Failed        int
	Results       []RenderResult
	ManifestPath  string
}

type renderJob struct {
	index   int
	variant models.VariantKey
}

type indexedResult struct {
	index int
	res   *RenderResult
}

// BulkRender renders every variant of names over the configured position types and frets.
//
// Variants are rendered by a pool of workers. Store writes are rate limited. Variants
// without a voicing are skipped and failures are recorded per variant, so one bad
// variant never aborts the run. An empty names list renders the whole chord table.
func (e *RenderEngine) BulkRender(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	names []string,
	opts BulkRenderOpts,
) (*BulkRenderResult, error) {
	if e.store == nil {
		return nil, fmt.Errorf("%w: store not initialized", shared.ErrServiceUnavailable)
	}

	if len(names) == 0 {
		names = e.resolver.Names()
	}
	names = dedupe(names)
	if len(opts.PositionTypes) == 0 {
		opts.PositionTypes = []string{models.PositionOpen, models.PositionBarre}
	}
	if len(opts.Frets) == 0 {
		opts.Frets = []int{0}
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = defaultWorkers
	}
	if opts.NumWorkers > shared.MaxWorkers {
		opts.NumWorkers = shared.MaxWorkers
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = defaultRateLimit
	}

	total := len(names) * variants.Count(opts.PositionTypes, opts.Frets)
	result := &BulkRenderResult{
		TotalVariants: total,
		Results:       make([]RenderResult, 0, total),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan renderJob, opts.NumWorkers)
	results := make(chan indexedResult, opts.NumWorkers)

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.renderWorker(ctx, &wg, jobs, results, limiter)
	}

	go func() {
		defer close(jobs)
		e.sendProgress(prog, enumerateUpdate(len(names), total))

		i := 0
		for _, name := range names {
			for v := range variants.Enumerate(name, opts.PositionTypes, opts.Frets) {
				select {
				case <-ctx.Done():
					return
				case jobs <- renderJob{index: i, variant: v}:
				}
				i++
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	collected := make([]indexedResult, 0, total)
	for r := range results {
		collected = append(collected, r)
		res := r.res

		switch res.Status {
		case StatusRendered:
			result.Rendered++
			e.sendProgress(prog, renderCompletedUpdate(len(collected), total, res))
		case StatusSkipped:
			result.Skipped++
			e.sendProgress(prog, renderSkippedUpdate(len(collected), total, res))
		default:
			result.Failed++
			e.sendProgress(prog, renderFailedUpdate(len(collected), total, res))
		}
	}

	sort.Slice(collected, func(i, j int) bool { return collected[i].index < collected[j].index })
	for _, r := range collected {
		result.Results = append(result.Results, *r.res)
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	if opts.ManifestPath != "" {
		e.sendProgress(prog, manifestUpdate(opts.ManifestPath))
		if err := formatter.WriteManifest(buildManifest(result), opts.ManifestPath); err != nil {
			return result, fmt.Errorf("render completed but failed to write manifest: %w", err)
		}
		result.ManifestPath = opts.ManifestPath
	}
	return result, nil
}

// renderWorker renders variants from the jobs channel until it closes or ctx is done.
func (e *RenderEngine) renderWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan renderJob,
	results chan<- indexedResult,
	limiter *rate.Limiter,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		results <- indexedResult{index: job.index, res: e.render(ctx, job.variant, limiter.Wait)}
	}
}

func buildManifest(r *BulkRenderResult) *formatter.Manifest {
	m := &formatter.Manifest{
		GeneratedAt: time.Now().UTC(),
		Total:       r.TotalVariants,
		Rendered:    r.Rendered,
		Skipped:     r.Skipped,
		Failed:      r.Failed,
		Entries:     make([]formatter.ManifestEntry, 0, len(r.Results)),
	}
	for _, res := range r.Results {
		entry := formatter.ManifestEntry{
			Key:          res.Key,
			Chord:        res.Variant.ChordName,
			PositionType: res.Variant.PositionType,
			Fret:         res.Variant.FretPosition,
			Theme:        string(res.Variant.Theme),
			Status:       string(res.Status),
			Locator:      res.Locator,
			Checksum:     res.Checksum,
			Size:         res.Size,
		}
		if res.Error != nil {
			entry.Error = res.Error.Error()
		}
		m.Entries = append(m.Entries, entry)
	}
	return m
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
