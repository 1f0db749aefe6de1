package table

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindText    Kind = "text"
	KindDate    Kind = "date"
	KindMoney   Kind = "money"
	KindStatus  Kind = "status"
	KindActions Kind = "actions"
	KindCustom  Kind = "custom"
)

// Cell is a rendered value plus the variant used to colour it.
type Cell struct {
	Text    string
	Variant Variant
}

// Column is one of the column kinds declared in this package. The set is
// closed: the unexported method keeps other packages from adding kinds.
type Column[T any] interface {
	Header() string
	Kind() Kind
	cell(row T) Cell
}

type TextColumn[T any] struct {
	Title string
	Value func(T) string
}

func (c TextColumn[T]) Header() string { return c.Title }
func (c TextColumn[T]) Kind() Kind { return KindText }
func (c TextColumn[T]) cell(row T) Cell { return Cell{Text: c.Value(row)} }

const DefaultDateLayout = "2006-01-02"

type DateColumn[T any] struct {
	Title  string
	Value  func(T) time.Time
	Layout string
}

func (c DateColumn[T]) Header() string { return c.Title }
func (c DateColumn[T]) Kind() Kind { return KindDate }

func (c DateColumn[T]) cell(row T) Cell {
	t := c.Value(row)
	if t.IsZero() {
		return Cell{Text: "-"}
	}
	layout := c.Layout
	if layout == "" {
		layout = DefaultDateLayout
	}
	return Cell{Text: t.Format(layout)}
}

type MoneyColumn[T any] struct {
	Title  string
	Value  func(T) decimal.Decimal
	Symbol string
}

func (c MoneyColumn[T]) Header() string { return c.Title }
func (c MoneyColumn[T]) Kind() Kind { return KindMoney }

func (c MoneyColumn[T]) cell(row T) Cell {
	symbol := c.Symbol
	if symbol == "" {
		symbol = "$"
	}
	return Cell{Text: FormatMoney(c.Value(row), symbol)}
}

// FormatMoney renders d with two decimals and thousands separators.
func FormatMoney(d decimal.Decimal, symbol string) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	fixed := d.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + symbol + b.String() + "." + frac
}

type StatusColumn[T any] struct {
	Title      string
	Value      func(T) string
	Dictionary Dictionary
}

func (c StatusColumn[T]) Header() string { return c.Title }
func (c StatusColumn[T]) Kind() Kind { return KindStatus }

func (c StatusColumn[T]) cell(row T) Cell {
	s := c.Dictionary.Lookup(c.Value(row))
	return Cell{Text: s.Label, Variant: s.Variant}
}

// Action is a button rendered in an ActionsColumn.
type Action[T any] struct {
	Name    string
	Label   string
	Visible func(T) bool
	Handler func(row T, ev *Event)
}

type ActionsColumn[T any] struct {
	Title   string
	Actions []Action[T]
}

func (c ActionsColumn[T]) Header() string { return c.Title }
func (c ActionsColumn[T]) Kind() Kind { return KindActions }

func (c ActionsColumn[T]) cell(row T) Cell {
	labels := make([]string, 0, len(c.Actions))
	for _, a := range c.visible(row) {
		label := a.Label
		if label == "" {
			label = a.Name
		}
		labels = append(labels, "["+label+"]")
	}
	return Cell{Text: strings.Join(labels, " ")}
}

func (c ActionsColumn[T]) visible(row T) []Action[T] {
	out := make([]Action[T], 0, len(c.Actions))
	for _, a := range c.Actions {
		if a.Visible == nil || a.Visible(row) {
			out = append(out, a)
		}
	}
	return out
}

type CustomColumn[T any] struct {
	Title  string
	Render func(T) string
}

func (c CustomColumn[T]) Header() string { return c.Title }
func (c CustomColumn[T]) Kind() Kind { return KindCustom }
func (c CustomColumn[T]) cell(row T) Cell { return Cell{Text: c.Render(row)} }
