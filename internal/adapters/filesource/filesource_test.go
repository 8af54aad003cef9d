package filesource

import (
	"context"
	"listings-service/internal/contextkeys"
	"listings-service/internal/contracts"
	"listings-service/internal/core/domain"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestFileSourceFetchRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "listings.json")
	writeFile(t, path, `[{"id":"1","city":"Lagos"},{"id":"2"},"junk"]`)

	src, err := NewFileSource(path)
	require.NoError(t, err)

	records, err := src.FetchRecords(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, "file", src.Name())
}

func TestFileSourceErrors(t *testing.T) {
	dir := t.TempDir()

	src, err := NewFileSource(filepath.Join(dir, "missing.json"))
	require.NoError(t, err)
	_, err = src.FetchRecords(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.json")
	writeFile(t, bad, `{"count": 3}`)
	src, err = NewFileSource(bad)
	require.NoError(t, err)
	_, err = src.FetchRecords(context.Background())
	assert.ErrorIs(t, err, contracts.ErrInvalidPayload)

	_, err = NewFileSource("")
	assert.Error(t, err)
}

type countingRefresh struct {
	calls atomic.Int32
}

func (c *countingRefresh) Execute(ctx context.Context) (*domain.CatalogState, error) {
	c.calls.Add(1)
	return &domain.CatalogState{Status: domain.CatalogReady}, nil
}

func TestWatcherRefreshesOnceForBurst(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "listings.json")
	writeFile(t, path, `[]`)

	uc := &countingRefresh{}
	w, err := NewWatcher(path, 100*time.Millisecond, uc, contextkeys.NoopLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = w.Start(ctx)
		close(done)
	}()

	// соседний файл не должен вызывать перечитывание
	writeFile(t, filepath.Join(dir, "other.json"), `[]`)
	time.Sleep(50 * time.Millisecond)

	for i := 0; i < 5; i++ {
		writeFile(t, path, `[{"id":"1"}]`)
	}

	assert.Eventually(t, func() bool { return uc.calls.Load() == 1 }, 2*time.Second, 20*time.Millisecond)
	time.Sleep(250 * time.Millisecond)
	assert.Equal(t, int32(1), uc.calls.Load())

	cancel()
	<-done
	require.NoError(t, w.Close())
}

func TestWatcherStartAfterCloseReturns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "listings.json")
	writeFile(t, path, `[]`)

	w, err := NewWatcher(path, 0, &countingRefresh{}, contextkeys.NoopLogger())
	require.NoError(t, err)
	require.NoError(t, w.Close())

	done := make(chan error, 1)
	go func() { done <- w.Start(context.Background()) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Start did not return after Close")
	}
}

func TestWatcherConcurrentStartAndClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "listings.json")
	writeFile(t, path, `[]`)

	for i := 0; i < 20; i++ {
		w, err := NewWatcher(path, 0, &countingRefresh{}, contextkeys.NoopLogger())
		require.NoError(t, err)

		done := make(chan struct{})
		go func() {
			_ = w.Start(context.Background())
			close(done)
		}()
		require.NoError(t, w.Close())

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatalf("Start did not return after Close, iteration %d", i)
		}
	}
}
