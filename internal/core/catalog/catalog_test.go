package catalog

import (
	"context"
	"errors"
	"listings-service/internal/contextkeys"
	"listings-service/internal/core/domain"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu      sync.Mutex
	records []domain.RawRecord
	err     error
	calls   atomic.Int32
	gate    chan struct{}
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) FetchRecords(ctx context.Context) ([]domain.RawRecord, error) {
	f.calls.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records, f.err
}

func (f *fakeSource) set(records []domain.RawRecord, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records, f.err = records, err
}

type fakeCache struct {
	records []domain.RawRecord
	sets    int
}

func (f *fakeCache) GetRecords(ctx context.Context) ([]domain.RawRecord, error) {
	if f.records == nil {
		return nil, domain.ErrCacheMiss
	}
	return f.records, nil
}

func (f *fakeCache) SetRecords(ctx context.Context, records []domain.RawRecord, ttl time.Duration) error {
	f.records = records
	f.sets++
	return nil
}

func (f *fakeCache) Invalidate(ctx context.Context) error {
	f.records = nil
	return nil
}

type fakeEvents struct{ published []domain.CatalogState }

func (f *fakeEvents) PublishCatalogRefreshed(ctx context.Context, state domain.CatalogState) error {
	f.published = append(f.published, state)
	return nil
}

func records() []domain.RawRecord {
	return []domain.RawRecord{
		{"id": "A-1", "title": "Bungalow in Lekki", "price": 100000.0},
		{"_id": "B-2", "name": "Flat", "amount": "₦250,000"},
	}
}

func newTestCatalog(t *testing.T, src *fakeSource, cache *fakeCache, events *fakeEvents) *Catalog {
	t.Helper()
	var c *Catalog
	var err error
	// nil-указатели на фейки не должны превращаться в непустые интерфейсы
	switch {
	case cache != nil && events != nil:
		c, err = NewCatalog(src, cache, events, contextkeys.NoopLogger(), Config{})
	case cache != nil:
		c, err = NewCatalog(src, cache, nil, contextkeys.NoopLogger(), Config{})
	case events != nil:
		c, err = NewCatalog(src, nil, events, contextkeys.NoopLogger(), Config{})
	default:
		c, err = NewCatalog(src, nil, nil, contextkeys.NoopLogger(), Config{})
	}
	require.NoError(t, err)
	return c
}

func TestSnapshotBeforeLoadReportsLoading(t *testing.T) {
	c := newTestCatalog(t, &fakeSource{records: records()}, nil, nil)

	_, err := c.Snapshot()
	assert.ErrorIs(t, err, domain.ErrCatalogLoading)
	assert.Equal(t, domain.CatalogIdle, c.State().Status)
}

func TestLoadNormalizesAndIndexes(t *testing.T) {
	events := &fakeEvents{}
	c := newTestCatalog(t, &fakeSource{records: records()}, nil, events)

	require.NoError(t, c.Load(context.Background()))

	listings, err := c.Snapshot()
	require.NoError(t, err)
	require.Len(t, listings, 2)

	l, err := c.Get("b-2")
	require.NoError(t, err)
	assert.Equal(t, "Flat", l.Title)
	require.NotNil(t, l.Price)
	assert.Equal(t, 250000.0, *l.Price)

	_, err = c.Get("missing")
	assert.ErrorIs(t, err, domain.ErrListingNotFound)

	state := c.State()
	assert.Equal(t, domain.CatalogReady, state.Status)
	assert.Equal(t, 2, state.Count)
	assert.Equal(t, "fake", state.Source)
	require.Len(t, events.published, 1)
	assert.Equal(t, 2, events.published[0].Count)
}

func TestConcurrentLoadsShareOneFetch(t *testing.T) {
	src := &fakeSource{records: records(), gate: make(chan struct{})}
	c := newTestCatalog(t, src, nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, c.Load(context.Background()))
		}()
	}

	require.Eventually(t, func() bool { return src.calls.Load() == 1 }, time.Second, time.Millisecond)
	_, err := c.Snapshot()
	assert.ErrorIs(t, err, domain.ErrCatalogLoading)

	close(src.gate)
	wg.Wait()

	assert.Equal(t, int32(1), src.calls.Load())
	assert.NoError(t, c.Load(context.Background()))
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestFailedFirstLoadIsUnavailable(t *testing.T) {
	boom := errors.New("connection refused")
	c := newTestCatalog(t, &fakeSource{err: boom}, nil, nil)

	err := c.Load(context.Background())
	require.ErrorIs(t, err, domain.ErrCatalogUnavailable)
	assert.ErrorIs(t, err, boom)

	_, err = c.Snapshot()
	assert.ErrorIs(t, err, domain.ErrCatalogUnavailable)
	assert.Equal(t, domain.CatalogFailed, c.State().Status)
}

func TestFailedRefreshKeepsPreviousSnapshot(t *testing.T) {
	src := &fakeSource{records: records()}
	c := newTestCatalog(t, src, nil, nil)
	require.NoError(t, c.Load(context.Background()))

	src.set(nil, errors.New("timeout"))
	require.Error(t, c.Refresh(context.Background()))

	listings, err := c.Snapshot()
	require.NoError(t, err)
	assert.Len(t, listings, 2)
	assert.Equal(t, domain.CatalogReady, c.State().Status)
	assert.Error(t, c.State().LastError)
}

func TestCacheIsUsedOnLoadAndBypassedOnRefresh(t *testing.T) {
	src := &fakeSource{records: records()}
	cache := &fakeCache{records: []domain.RawRecord{{"id": "cached"}}}
	c := newTestCatalog(t, src, cache, nil)

	require.NoError(t, c.Load(context.Background()))
	assert.Equal(t, int32(0), src.calls.Load())
	_, err := c.Get("cached")
	require.NoError(t, err)

	require.NoError(t, c.Refresh(context.Background()))
	assert.Equal(t, int32(1), src.calls.Load())
	assert.Equal(t, 1, cache.sets)
	listings, _ := c.Snapshot()
	assert.Len(t, listings, 2)
}

func TestEnsureLoadingStartsBackgroundLoad(t *testing.T) {
	c := newTestCatalog(t, &fakeSource{records: records()}, nil, nil)

	c.EnsureLoading()
	require.Eventually(t, func() bool {
		return c.State().Status == domain.CatalogReady
	}, time.Second, 5*time.Millisecond)
}
