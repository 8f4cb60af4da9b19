package core

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang/mock/gomock"

	"github.com/adam-gaia/checklints/internal/types"
)

// mustRemote parses a reference or fails the test.
func mustRemote(t *testing.T, ref string) *types.RemoteFile {
	t.Helper()
	r, err := types.ParseRemoteFile(ref)
	if err != nil {
		t.Fatalf("ParseRemoteFile(%q): %v", ref, err)
	}
	return r
}

// slowFetcher returns the URL as the body after a delay and records peak concurrency.
type slowFetcher struct {
	delay  time.Duration
	active atomic.Int32
	peak   atomic.Int32
	fail   map[string]error
	mu     sync.Mutex
	calls  []string
}

func (f *slowFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	f.mu.Lock()
	f.calls = append(f.calls, url)
	f.mu.Unlock()

	time.Sleep(f.delay)
	if err, ok := f.fail[url]; ok {
		return nil, err
	}
	return []byte(url), nil
}

// ============================================================================
// ParallelFetcher Tests
// ============================================================================

func TestParallelFetcher_FetchAll(t *testing.T) {
	fetcher := &slowFetcher{delay: 10 * time.Millisecond}
	cache, table, _ := newTestRemoteCache(t, fetcher)

	var reqs []FetchRequest
	for i := 0; i < 5; i++ {
		ref := mustRemote(t, fmt.Sprintf("https://example.com/lists/list-%d.yml", i))
		reqs = append(reqs, FetchRequest{Ref: ref, Kind: ResourceChecklist})
	}

	results, err := NewParallelFetcher(cache, 2).FetchAll(context.Background(), reqs)
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if len(results) != 5 {
		t.Fatalf("got %d results, want 5", len(results))
	}
	for i, r := range results {
		if r.Request.Ref != reqs[i].Ref {
			t.Errorf("result %d out of order: %s", i, r.Request.Ref)
		}
		want := fmt.Sprintf("list-%d.yml", i)
		if r.Path == "" || r.Path[len(r.Path)-len(want):] != want {
			t.Errorf("result %d path = %q, want suffix %q", i, r.Path, want)
		}
	}
	if len(table) != 5 {
		t.Errorf("table has %d entries, want 5", len(table))
	}
	if peak := fetcher.peak.Load(); peak > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", peak)
	}
}

func TestParallelFetcher_WorkerCount(t *testing.T) {
	tests := []struct {
		name      string
		requested int
		want      int
	}{
		{"explicit", 3, 3},
		{"capped", 100, maxFetchWorkers},
		{"default", 0, min(runtime.NumCPU(), maxFetchWorkers)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewParallelFetcher(nil, tt.requested).maxWorkers; got != tt.want {
				t.Errorf("maxWorkers = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParallelFetcher_FirstErrorInRequestOrder(t *testing.T) {
	errFirst := errors.New("first broken")
	errSecond := errors.New("second broken")
	fetcher := &slowFetcher{fail: map[string]error{
		"https://example.com/b.yml": errFirst,
		"https://example.com/d.yml": errSecond,
	}}
	cache, _, _ := newTestRemoteCache(t, fetcher)

	var reqs []FetchRequest
	for _, name := range []string{"a", "b", "c", "d"} {
		reqs = append(reqs, FetchRequest{Ref: mustRemote(t, "https://example.com/"+name+".yml"), Kind: ResourceTemplate})
	}

	results, err := NewParallelFetcher(cache, 4).FetchAll(context.Background(), reqs)
	if !errors.Is(err, errFirst) {
		t.Fatalf("err = %v, want %v", err, errFirst)
	}
	if results[0].Error != nil || results[0].Path == "" {
		t.Errorf("healthy request should still resolve: %+v", results[0])
	}
	if !errors.Is(results[3].Error, errSecond) {
		t.Errorf("results[3].Error = %v", results[3].Error)
	}
}

func TestParallelFetcher_PinMismatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	fetcher := NewMockFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any(), "https://example.com/base.yml").Return([]byte(remoteBody), nil)

	cache, table, _ := newTestRemoteCache(t, fetcher)
	ref := mustRemote(t, "https://example.com/base.yml::"+HashBytes([]byte("something else")))

	_, err := NewParallelFetcher(cache, 1).FetchAll(context.Background(), []FetchRequest{{Ref: ref, Kind: ResourceChecklist}})
	if !IsIntegrityError(err) {
		t.Fatalf("expected IntegrityError, got %v", err)
	}
	if len(table) != 0 {
		t.Error("nothing should be registered on a pin mismatch")
	}
}

func TestParallelFetcher_Cancelled(t *testing.T) {
	fetcher := &slowFetcher{}
	cache, _, _ := newTestRemoteCache(t, fetcher)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reqs := []FetchRequest{{Ref: mustRemote(t, "https://example.com/a.yml"), Kind: ResourceChecklist}}
	_, err := NewParallelFetcher(cache, 1).FetchAll(ctx, reqs)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(fetcher.calls) != 0 {
		t.Errorf("no fetch expected after cancellation, got %v", fetcher.calls)
	}
}

func TestParallelFetcher_Empty(t *testing.T) {
	results, err := NewParallelFetcher(nil, 1).FetchAll(context.Background(), nil)
	if err != nil || results != nil {
		t.Errorf("FetchAll(nil) = %v, %v", results, err)
	}
}
