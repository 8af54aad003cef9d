package engine

import "listings-service/internal/core/domain"

// Pipeline - полный проход фильтр → сортировка → страница с запоминанием результата фильтрации
type Pipeline struct {
	filter *FilterEngine
}

func NewPipeline() *Pipeline {
	return &Pipeline{filter: NewFilterEngine()}
}

// Run считает видимую страницу. Номер страницы в результате уже приведён к допустимому.
func (p *Pipeline) Run(listings []domain.Listing, state domain.ViewState) domain.PageResult {
	filtered := p.filter.Filter(listings, state.Filters)
	sorted := Sort(filtered, state.Sort)

	size := state.Page.Size
	if size < 1 {
		size = domain.DefaultPageSize
	}
	page := ClampPage(state.Page.Number, len(sorted), size)
	items, label := Paginate(sorted, page, size)

	return domain.PageResult{
		Items:      items,
		TotalCount: len(sorted),
		Range:      label,
		Page:       page,
		PageSize:   size,
		TotalPages: TotalPages(len(sorted), size),
	}
}

// FilterEvaluations - счётчик реальных пересчётов фильтра
func (p *Pipeline) FilterEvaluations() int {
	return p.filter.Evaluations()
}
