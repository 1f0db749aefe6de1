package table

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/optica-admin/pkg/collection"
)

type product struct {
	ID        string
	Name      string
	Price     decimal.Decimal
	Status    string
	CreatedAt time.Time
}

var productStatus = Dictionary{
	"active":   {Label: "Active", Variant: VariantSuccess},
	"inactive": {Label: "Inactive", Variant: VariantDanger},
}

func productTable(events *[]string) *Table[product] {
	t := New[product](
		TextColumn[product]{Title: "Name", Value: func(p product) string { return p.Name }},
		MoneyColumn[product]{Title: "Price", Value: func(p product) decimal.Decimal { return p.Price }},
		StatusColumn[product]{Title: "Status", Value: func(p product) string { return p.Status }, Dictionary: productStatus},
		DateColumn[product]{Title: "Created", Value: func(p product) time.Time { return p.CreatedAt }},
		CustomColumn[product]{Title: "Code", Render: func(p product) string { return "P-" + p.ID }},
		ActionsColumn[product]{Title: "", Actions: []Action[product]{
			{Name: "edit", Label: "Edit", Handler: func(p product, ev *Event) { *events = append(*events, "edit "+p.ID) }},
			{Name: "delete", Label: "Delete",
				Visible: func(p product) bool { return p.Status != "active" },
				Handler: func(p product, ev *Event) { *events = append(*events, "delete "+p.ID) }},
		}},
	)
	t.OnRowClick = func(p product, ev *Event) { *events = append(*events, "row "+p.ID) }
	return t
}

func TestCellsUseColumnKinds(t *testing.T) {
	var events []string
	tbl := productTable(&events)

	cells := tbl.Cells(product{
		ID:        "7",
		Name:      "Aviator",
		Price:     decimal.RequireFromString("1234.5"),
		Status:    "discontinued",
		CreatedAt: time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC),
	})

	require.Len(t, cells, 6)
	assert.Equal(t, "Aviator", cells[0].Text)
	assert.Equal(t, "$1,234.50", cells[1].Text)
	assert.Equal(t, "discontinued", cells[2].Text, "unmapped status renders raw")
	assert.Equal(t, VariantDefault, cells[2].Variant)
	assert.Equal(t, "2024-03-09", cells[3].Text)
	assert.Equal(t, "P-7", cells[4].Text)
	assert.Equal(t, "[Edit] [Delete]", cells[5].Text)
}

func TestStatusDictionary(t *testing.T) {
	assert.Equal(t, Status{Label: "Active", Variant: VariantSuccess}, productStatus.Lookup("active"))
	assert.Equal(t, Status{Label: "weird", Variant: VariantDefault}, productStatus.Lookup("weird"))
	assert.Equal(t, "", Dictionary(nil).Lookup("").Label)
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$0.00", FormatMoney(decimal.Zero, "$"))
	assert.Equal(t, "$999.99", FormatMoney(decimal.RequireFromString("999.99"), "$"))
	assert.Equal(t, "$1,000,000.00", FormatMoney(decimal.NewFromInt(1000000), "$"))
	assert.Equal(t, "-$12.35", FormatMoney(decimal.RequireFromString("-12.345"), "$"))
}

func TestDateColumnZero(t *testing.T) {
	c := DateColumn[product]{Value: func(p product) time.Time { return p.CreatedAt }}
	assert.Equal(t, "-", c.cell(product{}).Text)
}

func TestActionClickDoesNotReachRow(t *testing.T) {
	var events []string
	tbl := productTable(&events)
	p := product{ID: "3", Status: "inactive"}

	ev, err := tbl.Click(p, "delete")
	require.NoError(t, err)
	assert.True(t, ev.Stopped())
	assert.Equal(t, []string{"delete 3"}, events)

	ev, err = tbl.Click(p, TargetRow)
	require.NoError(t, err)
	assert.False(t, ev.Stopped())
	assert.Equal(t, []string{"delete 3", "row 3"}, events)
}

func TestHiddenActionIsNotClickable(t *testing.T) {
	var events []string
	tbl := productTable(&events)

	_, err := tbl.Click(product{ID: "1", Status: "active"}, "delete")
	assert.ErrorIs(t, err, ErrUnknownTarget)
	assert.Empty(t, events)
}

func TestRenderContainsHeadersAndRows(t *testing.T) {
	var events []string
	tbl := productTable(&events)

	out := tbl.Render([]product{
		{ID: "1", Name: "Aviator", Price: decimal.NewFromInt(120), Status: "active"},
		{ID: "2", Name: "Wayfarer", Price: decimal.NewFromInt(95), Status: "inactive"},
	})
	for _, want := range []string{"Name", "Price", "Aviator", "Wayfarer", "$120.00", "Active", "Inactive"} {
		assert.Contains(t, out, want)
	}

	assert.Contains(t, tbl.Render(nil), "No records found.")
}

func TestPagerBoundaries(t *testing.T) {
	p := NewPager(1, 3, 40)
	assert.False(t, p.CanPrev())
	assert.True(t, p.CanNext())
	assert.Equal(t, 1, p.Prev())

	p = NewPager(9, 3, 40)
	assert.Equal(t, 3, p.Current)
	assert.False(t, p.CanNext())
	assert.Equal(t, 3, p.Next())
	assert.Equal(t, 1, p.Goto(-4))

	empty := PagerOf(collection.NewPage[product](nil, 1, 15, 0))
	assert.False(t, empty.CanPrev())
	assert.False(t, empty.CanNext())
	assert.Equal(t, 1, empty.Last)
}

func TestPagerNeverLeavesRange(t *testing.T) {
	for total := 0; total <= 50; total++ {
		last := collection.LastPage(total, 7)
		p := NewPager(1, last, total)
		for i := 0; i < 20; i++ {
			p = NewPager(p.Next(), last, total)
			assert.LessOrEqual(t, p.Current, last)
		}
		for i := 0; i < 20; i++ {
			p = NewPager(p.Prev(), last, total)
			assert.GreaterOrEqual(t, p.Current, 1)
		}
	}
}
