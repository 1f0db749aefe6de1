package table

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
)

var ErrUnknownTarget = errors.New("unknown click target")

// TargetRow is the click target of the row itself.
const TargetRow = "row"

// Event is passed to click handlers. Action handlers always receive a
// stopped event so the enclosing row never sees the click.
type Event struct {
	Target  string
	stopped bool
}

func (e *Event) StopPropagation() { e.stopped = true }

func (e *Event) Stopped() bool { return e.stopped }

// Table renders rows of T as a terminal table.
type Table[T any] struct {
	Columns    []Column[T]
	OnRowClick func(row T, ev *Event)
	// EmptyText is shown when there are no rows.
	EmptyText string
}

func New[T any](cols ...Column[T]) *Table[T] {
	return &Table[T]{Columns: cols, EmptyText: "No records found."}
}

func (t *Table[T]) Headers() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Header()
	}
	return out
}

// Cells returns the plain text of every cell of row.
func (t *Table[T]) Cells(row T) []Cell {
	out := make([]Cell, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.cell(row)
	}
	return out
}

func (t *Table[T]) Render(rows []T) string {
	if len(rows) == 0 {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#7f849c")).Render(t.EmptyText)
	}

	cells := make([][]Cell, len(rows))
	data := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = t.Cells(r)
		data[i] = make([]string, len(cells[i]))
		for j, c := range cells[i] {
			data[i][j] = c.Text
		}
	}

	pad := lipgloss.NewStyle().Padding(0, 1)
	return lgtable.New().
		Border(lipgloss.NormalBorder()).
		Headers(t.Headers()...).
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == lgtable.HeaderRow {
				return pad.Bold(true)
			}
			if row >= 0 && row < len(cells) && col < len(cells[row]) {
				return cells[row][col].Variant.Style().Padding(0, 1)
			}
			return pad
		}).
		String()
}

// Click dispatches a click on row. target is TargetRow or the name of an
// action; action clicks never reach OnRowClick.
func (t *Table[T]) Click(row T, target string) (*Event, error) {
	ev := &Event{Target: target}
	if target == "" || target == TargetRow {
		ev.Target = TargetRow
		if t.OnRowClick != nil {
			t.OnRowClick(row, ev)
		}
		return ev, nil
	}

	for _, c := range t.Columns {
		ac, ok := c.(ActionsColumn[T])
		if !ok {
			continue
		}
		for _, a := range ac.visible(row) {
			if a.Name != target {
				continue
			}
			ev.StopPropagation()
			if a.Handler != nil {
				a.Handler(row, ev)
			}
			return ev, nil
		}
	}
	return ev, fmt.Errorf("%w: %s", ErrUnknownTarget, target)
}
