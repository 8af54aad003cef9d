package engine

import (
	"listings-service/internal/core/domain"
	"sync"
)

// Apply фильтрует объявления: сначала тип сделки, затем все предикаты.
// Порядок входа сохраняется. Если ничего не отфильтровано, возвращается исходный срез.
func Apply(listings []domain.Listing, f domain.FilterState) []domain.Listing {
	preds := Compile(f)
	mode := f.ListingMode
	if len(preds) == 0 && !modeActive(mode) {
		return listings
	}

	out := make([]domain.Listing, 0, len(listings))
	for _, l := range listings {
		if !matchesMode(l, mode) {
			continue
		}
		if !MatchAll(preds, l) {
			continue
		}
		out = append(out, l)
	}
	return out
}

func modeActive(mode domain.ListingMode) bool {
	return mode == domain.ListingModeBuy || mode == domain.ListingModeRent
}

// matchesMode - объявления с неизвестным типом сделки видны в любом режиме
func matchesMode(l domain.Listing, mode domain.ListingMode) bool {
	if !modeActive(mode) {
		return true
	}
	return l.ListingMode == mode || l.ListingMode == domain.ListingModeUnknown || l.ListingMode == ""
}

// FilterEngine запоминает последний результат и пересчитывает его только
// при смене набора записей или состояния фильтра.
type FilterEngine struct {
	mu sync.Mutex

	lastInput   []domain.Listing
	lastFilters domain.FilterState
	lastOutput  []domain.Listing
	hasResult   bool
	evaluations int
}

func NewFilterEngine() *FilterEngine {
	return &FilterEngine{}
}

func (e *FilterEngine) Filter(listings []domain.Listing, f domain.FilterState) []domain.Listing {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.hasResult && sameSlice(e.lastInput, listings) && e.lastFilters.Equal(f) {
		return e.lastOutput
	}

	out := Apply(listings, f)
	e.lastInput = listings
	e.lastFilters = f
	e.lastOutput = out
	e.hasResult = true
	e.evaluations++
	return out
}

// Evaluations - сколько раз фильтр реально пересчитывался
func (e *FilterEngine) Evaluations() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.evaluations
}

// sameSlice сравнивает срезы по идентичности: снимок каталога не изменяется после публикации
func sameSlice(a, b []domain.Listing) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return (a == nil) == (b == nil)
	}
	return &a[0] == &b[0]
}
