// Package session - владелец состояния одной выдачи. Хранит ViewState и
// query-параметры, принимает изменения и пересчитывает страницу лениво:
// сколько бы изменений ни пришло между чтениями, пересчёт будет один.
package session

import (
	"listings-service/internal/core/domain"
	"listings-service/internal/core/engine"
	"listings-service/internal/core/querysync"
	"net/url"
	"strings"
)

// SnapshotProvider - источник нормализованных объявлений (каталог)
type SnapshotProvider interface {
	Snapshot() ([]domain.Listing, error)
}

type Options struct {
	PageSize int
	// ResetPageOnSort - сбрасывать страницу на первую при смене сортировки
	ResetPageOnSort bool
}

// Controller не потокобезопасен: один экземпляр на одну выдачу.
type Controller struct {
	source   SnapshotProvider
	pipeline *engine.Pipeline
	opts     Options

	state  domain.ViewState
	values url.Values

	dirty        bool
	lastSnapshot []domain.Listing
	lastResult   domain.PageResult
	recomputes   int
}

// NewController восстанавливает состояние из query-строки.
// Посторонние ключи сохраняются и переживают все последующие изменения.
func NewController(source SnapshotProvider, pipeline *engine.Pipeline, rawQuery string, opts Options) *Controller {
	if pipeline == nil {
		pipeline = engine.NewPipeline()
	}
	if opts.PageSize < 1 {
		opts.PageSize = domain.DefaultPageSize
	}

	values, _ := url.ParseQuery(strings.TrimPrefix(rawQuery, "?"))
	if values == nil {
		values = url.Values{}
	}
	state := querysync.Parse(values)
	state.Page.Size = opts.PageSize

	return &Controller{
		source:   source,
		pipeline: pipeline,
		opts:     opts,
		state:    state,
		values:   querysync.Encode(values, state),
		dirty:    true,
	}
}

func (c *Controller) State() domain.ViewState { return c.state }

// Query - текущая query-строка, по которой состояние восстанавливается без потерь
func (c *Controller) Query() string { return c.values.Encode() }

// Recomputes - сколько раз реально выполнялся проход фильтр → сортировка → страница
func (c *Controller) Recomputes() int { return c.recomputes }

// View возвращает видимую страницу. Пока каталог загружается или недоступен,
// возвращается ошибка каталога, а состояние не трогается.
func (c *Controller) View() (domain.QueryResult, error) {
	listings, err := c.source.Snapshot()
	if err != nil {
		return domain.QueryResult{State: c.state, Query: c.Query()}, err
	}

	if c.dirty || !sameSnapshot(c.lastSnapshot, listings) {
		c.lastResult = c.pipeline.Run(listings, c.state)
		c.lastSnapshot = listings
		c.dirty = false
		c.recomputes++

		// номер страницы за пределами выдачи исправляется и в URL
		if c.lastResult.Page != c.state.Page.Number {
			c.state.Page.Number = c.lastResult.Page
			c.sync()
		}
	}

	return domain.QueryResult{Page: c.lastResult, State: c.state, Query: c.Query()}, nil
}

// --- изменения фильтров: любое реальное изменение возвращает на первую страницу ---

func (c *Controller) SetFreeText(q string) { c.setFilters(c.state.Filters.WithFreeText(q)) }

func (c *Controller) SetListingMode(mode domain.ListingMode) {
	c.setFilters(c.state.Filters.WithListingMode(mode))
}

func (c *Controller) SetPropertyTypes(types []string) {
	c.setFilters(c.state.Filters.WithPropertyTypes(types))
}

func (c *Controller) TogglePropertyType(t string) {
	c.setFilters(c.state.Filters.WithPropertyTypeToggled(t))
}

func (c *Controller) SetPriceRange(r domain.Range) { c.setFilters(c.state.Filters.WithPriceRange(r)) }

func (c *Controller) SetMinBedrooms(n int) { c.setFilters(c.state.Filters.WithMinBedrooms(n)) }

func (c *Controller) SetMinBathrooms(n int) { c.setFilters(c.state.Filters.WithMinBathrooms(n)) }

func (c *Controller) SetLocation(city string) { c.setFilters(c.state.Filters.WithLocation(city)) }

func (c *Controller) SetSquareFeetRange(r domain.Range) {
	c.setFilters(c.state.Filters.WithSquareFeetRange(r))
}

func (c *Controller) SetYearBuiltRange(r domain.YearRange) {
	c.setFilters(c.state.Filters.WithYearBuiltRange(r))
}

func (c *Controller) SetAmenities(amenities []string) {
	c.setFilters(c.state.Filters.WithAmenities(amenities))
}

func (c *Controller) ToggleAmenity(a string) { c.setFilters(c.state.Filters.WithAmenityToggled(a)) }

func (c *Controller) SetPropertyID(id string) { c.setFilters(c.state.Filters.WithPropertyID(id)) }

func (c *Controller) SetNear(prefix string) { c.setFilters(c.state.Filters.WithNear(prefix)) }

// SetSort меняет сортировку. Страница сохраняется, если не включён ResetPageOnSort.
func (c *Controller) SetSort(mode domain.SortMode) {
	if mode != domain.SortPriceLow && mode != domain.SortPriceHigh {
		mode = domain.SortNewest
	}
	if mode == c.state.Sort {
		return
	}
	c.state.Sort = mode
	if c.opts.ResetPageOnSort {
		c.state.Page.Number = 1
	}
	c.touch()
}

// SetPage не проверяет верхнюю границу: она известна только после фильтрации и исправляется в View
func (c *Controller) SetPage(n int) {
	n = max(n, 1)
	if n == c.state.Page.Number {
		return
	}
	c.state.Page.Number = n
	c.touch()
}

// Reset возвращает все измерения к значениям по умолчанию
func (c *Controller) Reset() {
	next := domain.DefaultViewState()
	next.Page.Size = c.opts.PageSize
	if next.Filters.Equal(c.state.Filters) && next.Sort == c.state.Sort && next.Page == c.state.Page {
		return
	}
	c.state = next
	c.touch()
}

// ApplyPatch применяет патч к query-строке и заново выводит из неё состояние.
// Так внешние изменения URL (кнопка "назад", ссылка) проходят тот же путь, что и действия пользователя.
func (c *Controller) ApplyPatch(patch querysync.Patch) {
	if len(patch) == 0 {
		return
	}
	values := querysync.ApplyPatch(c.values, patch)
	parsed := querysync.Parse(values)
	c.values = values

	next := c.state
	if !parsed.Filters.Equal(next.Filters) {
		next.Filters = parsed.Filters
		next.Page.Number = 1
	}
	if _, ok := patch[querysync.KeySort]; ok && parsed.Sort != next.Sort {
		next.Sort = parsed.Sort
		if c.opts.ResetPageOnSort {
			next.Page.Number = 1
		}
	}
	if _, ok := patch[querysync.KeyPage]; ok {
		next.Page.Number = parsed.Page.Number
	}

	c.state = next
	c.touch()
}

func (c *Controller) setFilters(f domain.FilterState) {
	if f.Equal(c.state.Filters) {
		return
	}
	c.state.Filters = f
	c.state.Page.Number = 1
	c.touch()
}

func (c *Controller) touch() {
	c.sync()
	c.dirty = true
}

func (c *Controller) sync() {
	c.values = querysync.Encode(c.values, c.state)
}

func sameSnapshot(a, b []domain.Listing) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return (a == nil) == (b == nil)
	}
	return &a[0] == &b[0]
}
