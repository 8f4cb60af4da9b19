package core

import (
	"context"
	"runtime"
	"sync"

	"github.com/adam-gaia/checklints/internal/types"
)

// maxFetchWorkers caps concurrent downloads regardless of CPU count.
const maxFetchWorkers = 8

// FetchRequest names one external resource to make available locally.
type FetchRequest struct {
	Ref  *types.RemoteFile
	Kind ResourceKind
}

// FetchResult is the outcome of one FetchRequest.
type FetchResult struct {
	Request FetchRequest
	Path    string
	Error   error
}

// ParallelFetcher resolves external resources through a RemoteCache using a
// bounded worker pool.
type ParallelFetcher struct {
	maxWorkers int
	remotes    *RemoteCache
}

// NewParallelFetcher creates a fetcher with at most maxWorkers concurrent
// downloads. Zero means one per CPU.
func NewParallelFetcher(remotes *RemoteCache, maxWorkers int) *ParallelFetcher {
	workers := maxWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > maxFetchWorkers {
		workers = maxFetchWorkers
	}
	return &ParallelFetcher{maxWorkers: workers, remotes: remotes}
}

// FetchAll resolves every request. Results come back in request order. The
// returned error is the first failure in request order.
func (p *ParallelFetcher) FetchAll(ctx context.Context, reqs []FetchRequest) ([]FetchResult, error) {
	if len(reqs) == 0 {
		return nil, nil
	}

	workerCount := p.maxWorkers
	if workerCount > len(reqs) {
		workerCount = len(reqs)
	}

	jobs := make(chan int, len(reqs))
	results := make([]FetchResult, len(reqs))

	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go p.fetchWorker(ctx, &wg, jobs, reqs, results)
	}

	for i := range reqs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, r := range results {
		if r.Error != nil {
			return results, r.Error
		}
	}
	return results, nil
}

// fetchWorker handles request indexes from jobs. Each index is written by
// exactly one worker, so results needs no lock.
func (p *ParallelFetcher) fetchWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan int,
	reqs []FetchRequest,
	results []FetchResult,
) {
	defer wg.Done()

	for i := range jobs {
		req := reqs[i]
		if ctx.Err() != nil {
			results[i] = FetchResult{Request: req, Error: ctx.Err()}
			continue
		}
		path, err := p.remotes.GetOrFetch(ctx, req.Ref.Name(), req.Ref.URL(), req.Ref.Hash, req.Kind)
		results[i] = FetchResult{Request: req, Path: path, Error: err}
	}
}
