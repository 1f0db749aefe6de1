package collection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLastPage(t *testing.T) {
	cases := []struct {
		total, perPage, want int
	}{
		{0, 15, 1},
		{1, 15, 1},
		{15, 15, 1},
		{16, 15, 2},
		{100, 10, 10},
		{101, 10, 11},
		{5, 0, 1},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, LastPage(c.total, c.perPage), "total=%d perPage=%d", c.total, c.perPage)
	}
}

func TestLastPageProperty(t *testing.T) {
	for perPage := 1; perPage <= 12; perPage++ {
		for total := 0; total <= 60; total++ {
			last := LastPage(total, perPage)
			if total == 0 {
				assert.Equal(t, 1, last)
				continue
			}
			assert.GreaterOrEqual(t, last*perPage, total)
			assert.Less(t, (last-1)*perPage, total)
		}
	}
}

func TestClampPage(t *testing.T) {
	assert.Equal(t, 1, ClampPage(0, 5))
	assert.Equal(t, 1, ClampPage(-2, 5))
	assert.Equal(t, 5, ClampPage(9, 5))
	assert.Equal(t, 3, ClampPage(3, 5))
	assert.Equal(t, 1, ClampPage(3, 0))
}

func TestNewPageMeta(t *testing.T) {
	p := NewPage([]string{"a", "b", "c"}, 2, 3, 8)

	assert.Equal(t, 2, p.CurrentPage)
	assert.Equal(t, 3, p.LastPage)
	assert.Equal(t, 8, p.Total)
	assert.Equal(t, &Meta{From: 4, To: 6, Total: 8}, p.Meta)
	assert.True(t, p.HasPrev())
	assert.True(t, p.HasNext())

	empty := NewPage[string](nil, 4, 10, 0)
	assert.Equal(t, 1, empty.CurrentPage)
	assert.Equal(t, 1, empty.LastPage)
	assert.NotNil(t, empty.Data)
	assert.False(t, empty.HasPrev())
	assert.False(t, empty.HasNext())
}

func TestNormalize(t *testing.T) {
	p := Page[int]{CurrentPage: 9, PerPage: 10, Meta: &Meta{Total: 25}}.Normalize()

	assert.Equal(t, 25, p.Total)
	assert.Equal(t, 3, p.LastPage)
	assert.Equal(t, 3, p.CurrentPage)
	assert.NotNil(t, p.Data)
}
