// Package pipeline turns a Claude data directory into a usage aggregate:
// discovery, cached parsing on a bounded worker pool, per-session summaries
// and the rollup reduce.
package pipeline

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/theirongolddev/pulse/internal/config"
	"github.com/theirongolddev/pulse/internal/model"
	"github.com/theirongolddev/pulse/internal/source"
	"github.com/theirongolddev/pulse/internal/store"
)

// ErrInternal wraps any panic recovered while building an aggregate.
var ErrInternal = errors.New("internal error")

// ProgressFunc is called during loading to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// Options configures one run.
type Options struct {
	DataDir      string             // Claude data directory, e.g. ~/.claude
	ForceRefresh bool               // ignore cached records and reparse every file
	UseCache     bool               // read and write the record cache
	CachePath    string             // defaults to store.DefaultPath()
	Workers      int                // defaults to GOMAXPROCS
	TopPrompts   int                // defaults to config.DefaultTopPrompts
	Prices       *config.PriceTable // defaults to config.DefaultPriceTable
	Progress     ProgressFunc

	// Logf receives non-fatal diagnostics such as cache failures. Nil discards them.
	Logf func(format string, args ...any)
}

// Result holds the aggregate plus counters describing how it was built.
type Result struct {
	Aggregate    model.Aggregate
	TotalFiles   int
	ParsedFiles  int
	CacheHits    int
	Reparsed     int
	FileErrors   int
	ParseErrors  int
	ProjectCount int
}

// fileOutcome is one worker's output for one file. Workers only write their
// own slot, and the reduce reads the slots in file order.
type fileOutcome struct {
	fingerprint store.Fingerprint
	records     []model.QueryRecord
	part        *Rollup
	fromCache   bool
	parseErrors int
	err         error
	panicked    any
}

// Run scans opts.DataDir and builds the aggregate. Unreadable files are
// counted and skipped; a missing projects directory yields an empty
// aggregate. Cache problems never fail the run.
func Run(opts Options) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("%w: %v", ErrInternal, r)
		}
	}()

	opts = withDefaults(opts)

	files, err := source.ScanDir(opts.DataDir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", opts.DataDir, err)
	}

	result := &Result{
		Aggregate:    model.EmptyAggregate(),
		TotalFiles:   len(files),
		ProjectCount: source.CountProjects(files),
	}
	// An existing but empty projects directory still runs the cache path
	// below, so entries for deleted sessions are pruned.
	if len(files) == 0 && !source.HasProjectsDir(opts.DataDir) {
		return result, nil
	}

	history, err := source.ReadHistory(filepath.Join(opts.DataDir, "history.jsonl"))
	if err != nil {
		opts.Logf("reading prompt history: %v", err)
	}

	var cache *store.Cache
	cached := map[string][]model.QueryRecord{}
	if opts.UseCache {
		cache, err = store.Open(opts.CachePath)
		if err != nil {
			opts.Logf("opening cache: %v", err)
			cache = nil
		} else {
			defer func() { _ = cache.Close() }()
			if !opts.ForceRefresh {
				if loaded, err := cache.Load(); err != nil {
					opts.Logf("loading cache: %v", err)
				} else {
					cached = loaded
				}
			}
		}
	}

	outcomes := processFiles(files, cached, history, opts)

	total := NewRollup()
	var touched []store.Entry
	for _, o := range outcomes {
		if o.panicked != nil {
			return nil, fmt.Errorf("%w: %v", ErrInternal, o.panicked)
		}
		if o.err != nil {
			result.FileErrors++
			opts.Logf("skipping file: %v", o.err)
			continue
		}
		result.ParsedFiles++
		result.ParseErrors += o.parseErrors
		if o.fromCache {
			result.CacheHits++
		} else {
			result.Reparsed++
		}
		touched = append(touched, store.Entry{Fingerprint: o.fingerprint, Records: o.records})
		if o.part != nil {
			total.Merge(o.part)
		}
	}

	result.Aggregate = total.Build(opts.TopPrompts)

	if cache != nil {
		if err := cache.Replace(touched); err != nil {
			opts.Logf("saving cache: %v", err)
		}
	}

	return result, nil
}

func withDefaults(opts Options) Options {
	if opts.CachePath == "" {
		opts.CachePath = store.DefaultPath()
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.Workers < 1 {
		opts.Workers = 4
	}
	if opts.TopPrompts <= 0 {
		opts.TopPrompts = config.DefaultTopPrompts
	}
	if opts.Prices == nil {
		opts.Prices = config.DefaultPriceTable
	}
	if opts.Logf == nil {
		opts.Logf = func(string, ...any) {}
	}
	return opts
}

// processFiles runs the map step on a bounded worker pool: fingerprint,
// cache lookup or parse, then summarize into a single-session rollup.
func processFiles(files []source.DiscoveredFile, cached map[string][]model.QueryRecord, history source.PromptHistory, opts Options) []fileOutcome {
	numWorkers := opts.Workers
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	work := make(chan int, len(files))
	outcomes := make([]fileOutcome, len(files))
	var wg sync.WaitGroup
	var processed atomic.Int64

	for i := range files {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				func() {
					defer func() {
						if r := recover(); r != nil {
							outcomes[idx] = fileOutcome{panicked: r}
						}
					}()
					outcomes[idx] = processFile(files[idx], cached, history, opts)
					n := processed.Add(1)
					if opts.Progress != nil {
						opts.Progress(int(n), len(files))
					}
				}()
			}
		}()
	}

	wg.Wait()
	return outcomes
}

func processFile(df source.DiscoveredFile, cached map[string][]model.QueryRecord, history source.PromptHistory, opts Options) fileOutcome {
	var out fileOutcome

	fp, err := store.FingerprintFor(df.Path)
	if err != nil {
		return fileOutcome{err: err}
	}
	out.fingerprint = fp

	if recs, ok := cached[fp.Key()]; ok {
		source.Reprice(recs, opts.Prices)
		out.records = recs
		out.fromCache = true
	} else {
		pr := source.ParseFile(df, opts.Prices)
		if pr.Err != nil {
			return fileOutcome{err: fmt.Errorf("%s: %w", df.Path, pr.Err)}
		}
		out.records = pr.Records
		out.parseErrors = pr.ParseErrors
	}

	if len(out.records) > 0 {
		out.part = NewRollup()
		out.part.AddSession(SummarizeSession(df, out.records, history))
	}
	return out
}
