// Package catalog держит в памяти нормализованный набор объявлений и управляет его загрузкой.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"listings-service/internal/core/domain"
	"listings-service/internal/core/normalizer"
	"listings-service/internal/core/port"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	DefaultFetchTimeout = 30 * time.Second
	DefaultCacheTTL     = 5 * time.Minute

	flightLoad    = "load"
	flightRefresh = "refresh"
)

type Config struct {
	FetchTimeout time.Duration
	CacheTTL     time.Duration
}

// Catalog - реализация port.CatalogPort. Опубликованный снимок не изменяется,
// новая загрузка подменяет его целиком.
type Catalog struct {
	source port.RecordSourcePort
	cache  port.RecordCachePort   // может быть nil
	events port.CatalogEventsPort // может быть nil
	logger port.LoggerPort
	cfg    Config

	flight singleflight.Group

	mu       sync.RWMutex
	status   domain.CatalogStatus
	listings []domain.Listing
	byID     map[string]int
	loadedAt time.Time
	lastErr  error
}

func NewCatalog(source port.RecordSourcePort, cache port.RecordCachePort, events port.CatalogEventsPort, logger port.LoggerPort, cfg Config) (*Catalog, error) {
	if source == nil {
		return nil, fmt.Errorf("catalog: record source is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("catalog: logger is required")
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}

	return &Catalog{
		source: source,
		cache:  cache,
		events: events,
		logger: logger.WithFields(port.Fields{"component": "catalog", "source": source.Name()}),
		cfg:    cfg,
		status: domain.CatalogIdle,
	}, nil
}

// Snapshot не блокируется. Пока первая загрузка не завершилась, возвращает ErrCatalogLoading;
// если она завершилась ошибкой - ErrCatalogUnavailable с причиной.
// После успешной загрузки неудачное обновление не скрывает предыдущий снимок.
func (c *Catalog) Snapshot() ([]domain.Listing, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.listings != nil {
		return c.listings, nil
	}
	switch c.status {
	case domain.CatalogFailed:
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, c.lastErr)
	default:
		return nil, domain.ErrCatalogLoading
	}
}

func (c *Catalog) Get(id string) (domain.Listing, error) {
	listings, err := c.Snapshot()
	if err != nil {
		return domain.Listing{}, err
	}

	c.mu.RLock()
	idx, ok := c.byID[strings.ToLower(strings.TrimSpace(id))]
	c.mu.RUnlock()
	if !ok || idx >= len(listings) {
		return domain.Listing{}, fmt.Errorf("%w: %s", domain.ErrListingNotFound, id)
	}
	return listings[idx], nil
}

func (c *Catalog) State() domain.CatalogState {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return domain.CatalogState{
		Status:    c.status,
		Count:     len(c.listings),
		Source:    c.source.Name(),
		LoadedAt:  c.loadedAt,
		LastError: c.lastErr,
	}
}

// EnsureLoading запускает фоновую загрузку, если каталог ещё не загружался
func (c *Catalog) EnsureLoading() {
	c.mu.Lock()
	if c.status != domain.CatalogIdle {
		c.mu.Unlock()
		return
	}
	c.status = domain.CatalogLoading
	c.mu.Unlock()

	go func() {
		if err := c.Load(context.Background()); err != nil {
			c.logger.Error("Background catalog load failed", err, nil)
		}
	}()
}

// Load загружает каталог, если он ещё не загружен. Параллельные вызовы
// дожидаются одной и той же загрузки. Сначала проверяется кэш.
func (c *Catalog) Load(ctx context.Context) error {
	c.mu.RLock()
	ready := c.listings != nil
	c.mu.RUnlock()
	if ready {
		return nil
	}

	_, err, _ := c.flight.Do(flightLoad, func() (interface{}, error) {
		return nil, c.fetch(ctx, true)
	})
	return err
}

// Refresh перечитывает источник в обход кэша
func (c *Catalog) Refresh(ctx context.Context) error {
	_, err, _ := c.flight.Do(flightRefresh, func() (interface{}, error) {
		return nil, c.fetch(ctx, false)
	})
	return err
}

func (c *Catalog) fetch(ctx context.Context, useCache bool) error {
	c.setStatus(domain.CatalogLoading)
	start := time.Now()

	// загрузка не должна обрываться вместе с запросом, который её инициировал
	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.FetchTimeout)
	defer cancel()

	records, fromCache, err := c.readRecords(fetchCtx, useCache)
	if err != nil {
		c.fail(err)
		return fmt.Errorf("%w: %w", domain.ErrCatalogUnavailable, err)
	}

	listings := normalizer.NormalizeAll(records)
	byID := make(map[string]int, len(listings))
	for i, l := range listings {
		key := strings.ToLower(l.ID)
		if _, dup := byID[key]; !dup {
			byID[key] = i
		}
	}

	c.mu.Lock()
	c.listings = listings
	c.byID = byID
	c.status = domain.CatalogReady
	c.loadedAt = time.Now()
	c.lastErr = nil
	c.mu.Unlock()

	c.logger.Info("Catalog loaded", port.Fields{
		"records":     len(records),
		"listings":    len(listings),
		"from_cache":  fromCache,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	if !fromCache && c.cache != nil {
		if err := c.cache.SetRecords(fetchCtx, records, c.cfg.CacheTTL); err != nil {
			c.logger.Warn("Failed to cache source records", port.Fields{"error": err.Error()})
		}
	}

	if c.events != nil {
		if err := c.events.PublishCatalogRefreshed(fetchCtx, c.State()); err != nil {
			c.logger.Warn("Failed to publish catalog refreshed event", port.Fields{"error": err.Error()})
		}
	}
	return nil
}

func (c *Catalog) readRecords(ctx context.Context, useCache bool) ([]domain.RawRecord, bool, error) {
	if useCache && c.cache != nil {
		records, err := c.cache.GetRecords(ctx)
		switch {
		case err == nil:
			return records, true, nil
		case errors.Is(err, domain.ErrCacheMiss):
			c.logger.Debug("Source records are not cached", nil)
		default:
			c.logger.Warn("Cache read failed, falling back to source", port.Fields{"error": err.Error()})
		}
	}

	records, err := c.source.FetchRecords(ctx)
	if err != nil {
		return nil, false, err
	}
	return records, false, nil
}

func (c *Catalog) setStatus(s domain.CatalogStatus) {
	c.mu.Lock()
	c.status = s
	c.mu.Unlock()
}

// fail фиксирует ошибку. Если снимок уже был, каталог остаётся готовым к работе на старых данных.
func (c *Catalog) fail(err error) {
	c.mu.Lock()
	c.lastErr = err
	if c.listings != nil {
		c.status = domain.CatalogReady
	} else {
		c.status = domain.CatalogFailed
	}
	c.mu.Unlock()

	c.logger.Error("Failed to fetch source records", err, nil)
}
