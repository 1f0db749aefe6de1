package collection

// Meta mirrors the optional range block of the paginated envelope.
type Meta struct {
	From  int `json:"from"`
	To    int `json:"to"`
	Total int `json:"total"`
}

// Page is one page of a remote collection as returned by
// GET /api/v1/<resource>.
type Page[T any] struct {
	Data        []T   `json:"data"`
	CurrentPage int   `json:"current_page"`
	LastPage    int   `json:"last_page"`
	PerPage     int   `json:"per_page,omitempty"`
	Total       int   `json:"total"`
	Meta        *Meta `json:"meta,omitempty"`
}

// LastPage is ceil(total/perPage), and 1 for an empty collection.
func LastPage(total, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 1
	}
	return (total + perPage - 1) / perPage
}

// ClampPage keeps page inside [1, last].
func ClampPage(page, last int) int {
	if last < 1 {
		last = 1
	}
	if page < 1 {
		return 1
	}
	if page > last {
		return last
	}
	return page
}

// NewPage builds the envelope for data already sliced to the requested page.
func NewPage[T any](data []T, page, perPage, total int) Page[T] {
	if data == nil {
		data = []T{}
	}
	last := LastPage(total, perPage)
	page = ClampPage(page, last)

	meta := &Meta{Total: total}
	if len(data) > 0 {
		meta.From = (page-1)*perPage + 1
		meta.To = meta.From + len(data) - 1
	}

	return Page[T]{
		Data:        data,
		CurrentPage: page,
		LastPage:    last,
		PerPage:     perPage,
		Total:       total,
		Meta:        meta,
	}
}

// Normalize repairs envelopes from backends that omit or zero fields.
func (p Page[T]) Normalize() Page[T] {
	if p.Data == nil {
		p.Data = []T{}
	}
	if p.Total == 0 && p.Meta != nil && p.Meta.Total > 0 {
		p.Total = p.Meta.Total
	}
	if p.LastPage < 1 {
		if p.PerPage > 0 {
			p.LastPage = LastPage(p.Total, p.PerPage)
		} else {
			p.LastPage = 1
		}
	}
	p.CurrentPage = ClampPage(p.CurrentPage, p.LastPage)
	return p
}

// Empty reports a page without records.
func (p Page[T]) Empty() bool {
	return len(p.Data) == 0
}

// HasPrev and HasNext gate pagination controls.
func (p Page[T]) HasPrev() bool { return p.CurrentPage > 1 }

func (p Page[T]) HasNext() bool { return p.CurrentPage < p.LastPage }
