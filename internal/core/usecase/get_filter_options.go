package usecase

import (
	"context"
	"listings-service/internal/contextkeys"
	"listings-service/internal/core/domain"
	"listings-service/internal/core/port"
	"slices"
	"strings"
)

// GetFilterOptionsUseCase собирает значения для виджетов фильтра по всему каталогу
type GetFilterOptionsUseCase struct {
	catalog port.CatalogPort
}

func NewGetFilterOptionsUseCase(catalog port.CatalogPort) *GetFilterOptionsUseCase {
	return &GetFilterOptionsUseCase{catalog: catalog}
}

func (uc *GetFilterOptionsUseCase) Execute(ctx context.Context) (*domain.FilterOptions, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "GetFilterOptionsUseCase",
	})

	ucLogger.Info("Use case started", nil)

	uc.catalog.EnsureLoading()

	listings, err := uc.catalog.Snapshot()
	if err != nil {
		ucLogger.Warn("Catalog is not ready", port.Fields{"error": err.Error()})
		return nil, err
	}

	options := collectFilterOptions(listings)

	ucLogger.Info("Use case finished successfully", port.Fields{
		"cities":     len(options.Cities),
		"categories": len(options.Categories),
	})
	return options, nil
}

func collectFilterOptions(listings []domain.Listing) *domain.FilterOptions {
	cities := newDistinct()
	categories := newDistinct()
	amenities := newDistinct()
	var price, size *domain.Range
	var year *domain.YearRange

	for _, l := range listings {
		cities.add(l.City)
		categories.add(l.Category)
		for _, a := range l.Amenities {
			amenities.add(a)
		}
		if l.Price != nil {
			price = widen(price, *l.Price)
		}
		if l.SizeInSqFt != nil {
			size = widen(size, *l.SizeInSqFt)
		}
		if l.YearBuilt != nil {
			y := *l.YearBuilt
			if year == nil {
				year = &domain.YearRange{Min: y, Max: y}
			} else {
				year.Min = min(year.Min, y)
				year.Max = max(year.Max, y)
			}
		}
	}

	return &domain.FilterOptions{
		Cities:     cities.sorted(),
		Categories: categories.sorted(),
		Amenities:  amenities.sorted(),
		Price:      price,
		SquareFeet: size,
		YearBuilt:  year,
		Count:      len(listings),
	}
}

func widen(r *domain.Range, v float64) *domain.Range {
	if r == nil {
		return &domain.Range{Min: v, Max: v}
	}
	r.Min = min(r.Min, v)
	r.Max = max(r.Max, v)
	return r
}

// distinct - множество строк без учёта регистра, сохраняет первое встреченное написание
type distinct struct {
	seen   map[string]struct{}
	values []string
}

func newDistinct() *distinct {
	return &distinct{seen: make(map[string]struct{})}
}

func (d *distinct) add(v string) {
	v = strings.TrimSpace(v)
	if v == "" {
		return
	}
	key := strings.ToLower(v)
	if _, ok := d.seen[key]; ok {
		return
	}
	d.seen[key] = struct{}{}
	d.values = append(d.values, v)
}

func (d *distinct) sorted() []string {
	out := slices.Clone(d.values)
	slices.SortFunc(out, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	if out == nil {
		return []string{}
	}
	return out
}
