package table

import "github.com/charmbracelet/lipgloss"

type Variant string

const (
	VariantDefault Variant = "default"
	VariantSuccess Variant = "success"
	VariantWarning Variant = "warning"
	VariantDanger  Variant = "danger"
	VariantInfo    Variant = "info"
)

var variantColors = map[Variant]lipgloss.Color{
	VariantSuccess: lipgloss.Color("#a6e3a1"),
	VariantWarning: lipgloss.Color("#f9e2af"),
	VariantDanger:  lipgloss.Color("#f38ba8"),
	VariantInfo:    lipgloss.Color("#89b4fa"),
}

// Style returns the foreground style for v.
func (v Variant) Style() lipgloss.Style {
	style := lipgloss.NewStyle()
	if c, ok := variantColors[v]; ok {
		style = style.Foreground(c)
	}
	return style
}

type Status struct {
	Label   string
	Variant Variant
}

// Dictionary maps raw enum values to how they are displayed.
type Dictionary map[string]Status

// Lookup returns the mapped status. Unmapped values are shown as-is.
func (d Dictionary) Lookup(value string) Status {
	if s, ok := d[value]; ok {
		return s
	}
	return Status{Label: value, Variant: VariantDefault}
}
