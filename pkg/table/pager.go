package table

import (
	"fmt"

	"github.com/jwalitptl/optica-admin/pkg/collection"
)

// Pager backs the previous/next controls. Current is kept inside [1, Last].
type Pager struct {
	Current int
	Last    int
	Total   int
}

func NewPager(current, last, total int) Pager {
	if last < 1 {
		last = 1
	}
	return Pager{Current: collection.ClampPage(current, last), Last: last, Total: total}
}

func PagerOf[T any](p collection.Page[T]) Pager {
	return NewPager(p.CurrentPage, p.LastPage, p.Total)
}

func (p Pager) CanPrev() bool { return p.Current > 1 }

func (p Pager) CanNext() bool { return p.Current < p.Last }

// Goto returns n clamped into [1, Last].
func (p Pager) Goto(n int) int { return collection.ClampPage(n, p.Last) }

func (p Pager) Prev() int { return p.Goto(p.Current - 1) }

func (p Pager) Next() int { return p.Goto(p.Current + 1) }

func (p Pager) String() string {
	prev, next := "< prev", "next >"
	if !p.CanPrev() {
		prev = "       "
	}
	if !p.CanNext() {
		next = ""
	}
	return fmt.Sprintf("%s  page %d of %d (%d total)  %s", prev, p.Current, p.Last, p.Total, next)
}
