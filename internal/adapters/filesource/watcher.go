package filesource

import (
	"context"
	"fmt"
	"listings-service/internal/contextkeys"
	"listings-service/internal/core/port"
	"listings-service/internal/core/port/usecases_port"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
)

const DefaultDebounce = 500 * time.Millisecond

// Watcher следит за файлом с записями и перечитывает каталог после его изменения.
// Следим за каталогом, а не за файлом: редакторы и деплой часто заменяют файл через rename.
type Watcher struct {
	path     string
	debounce time.Duration
	useCase  usecases_port.RefreshCatalogUseCase
	logger   port.LoggerPort

	watcher  *fsnotify.Watcher
	wg       sync.WaitGroup
	closeMu  sync.Mutex
	isClosed bool
}

func NewWatcher(path string, debounce time.Duration, useCase usecases_port.RefreshCatalogUseCase, logger port.LoggerPort) (*Watcher, error) {
	if useCase == nil {
		return nil, fmt.Errorf("refresh use case is nil")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve watched path: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	return &Watcher{
		path:     abs,
		debounce: debounce,
		useCase:  useCase,
		logger:   logger.WithFields(port.Fields{"component": "ListingsFileWatcher", "path": abs}),
		watcher:  fw,
	}, nil
}

// Start блокируется до отмены контекста или закрытия наблюдателя.
// После Close сразу возвращает nil.
func (w *Watcher) Start(ctx context.Context) error {
	// Add под closeMu: Close выставляет isClosed под тем же мьютексом до wg.Wait
	w.closeMu.Lock()
	if w.isClosed {
		w.closeMu.Unlock()
		return nil
	}
	w.wg.Add(1)
	w.closeMu.Unlock()
	defer w.wg.Done()

	w.logger.Info("Watching listings file for changes", nil)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			w.logger.Info("File watcher stopped by context", nil)
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("Listings file event", port.Fields{"op": event.Op.String()})
			// серия событий одной записи сворачивается в одно перечитывание
			if pending && !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)
			pending = true

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("File watcher error", err, nil)

		case <-timer.C:
			pending = false
			w.refresh(ctx)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

func (w *Watcher) refresh(ctx context.Context) {
	traceID := uuid.New().String()
	refreshLogger := w.logger.WithFields(port.Fields{"trace_id": traceID})
	refreshCtx := contextkeys.ContextWithLogger(ctx, refreshLogger)
	refreshCtx = contextkeys.ContextWithTraceID(refreshCtx, traceID)

	state, err := w.useCase.Execute(refreshCtx)
	if err != nil {
		refreshLogger.Error("Catalog refresh after file change failed", err, nil)
		return
	}
	refreshLogger.Info("Catalog refreshed after file change", port.Fields{"count": state.Count})
}

func (w *Watcher) Close() error {
	w.closeMu.Lock()
	if w.isClosed {
		w.closeMu.Unlock()
		return nil
	}
	w.isClosed = true
	w.closeMu.Unlock()

	err := w.watcher.Close()
	w.wg.Wait()
	return err
}
