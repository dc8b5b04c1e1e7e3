// internal/grid/column.go
package grid

import (
	"strconv"
	"strings"

	"github.com/solatis/sttable/internal/types"
)

/*
 * Column specifications.
 *
 * A Column is a closed struct: every per-type option is an explicit field,
 * and sort/filter/buttons are optional sub-specs. The engine reads columns
 * for three things only: value lookup (Index), local sort/filter behavior,
 * and cell formatting. Layout fields (Width, Fixed, ClassName) pass through
 * to the host, with fixed offsets precomputed by normalizeColumns.
 */

// ColumnType selects cell formatting and selection behavior.
type ColumnType string

const (
	TypePlain    ColumnType = ""
	TypeCheckbox ColumnType = "checkbox"
	TypeRadio    ColumnType = "radio"
	TypeLink     ColumnType = "link"
	TypeImg      ColumnType = "img"
	TypeCurrency ColumnType = "currency"
	TypeNumber   ColumnType = "number"
	TypeDate     ColumnType = "date"
	TypeYN       ColumnType = "yn"
	TypeBadge    ColumnType = "badge"
	TypeTag      ColumnType = "tag"
	TypeCustom   ColumnType = "custom"
)

// Valid reports whether t is a known column type.
func (t ColumnType) Valid() bool {
	switch t {
	case TypePlain, TypeCheckbox, TypeRadio, TypeLink, TypeImg, TypeCurrency,
		TypeNumber, TypeDate, TypeYN, TypeBadge, TypeTag, TypeCustom:
		return true
	default:
		return false
	}
}

// Fixed pins a column to one table edge.
type Fixed string

const (
	FixedNone  Fixed = ""
	FixedLeft  Fixed = "left"
	FixedRight Fixed = "right"
)

// selectionWidth is applied to checkbox/radio columns without a width.
const selectionWidth = "50px"

// YNOptions configures yes/no cells.
// A nil Truth means true.
type YNOptions struct {
	Truth any
	Yes   string
	No    string
}

// Badge is the display of one badge/tag value.
type Badge struct {
	Text  string
	Color string
}

// Selection is a named bulk-selection rule for checkbox columns.
// Select receives the enabled rows of the current page and sets their
// Checked field.
type Selection struct {
	Text   string
	Select func(rows []*Row)
}

// Column describes one table column.
type Column struct {
	Index     string
	Title     string
	Type      ColumnType
	Default   string
	Width     string
	Fixed     Fixed
	ClassName string

	YN             *YNOptions
	NumberDigits   string
	DateFormat     string
	CurrencySymbol string
	// Badges maps a value's text form to its badge (badge and tag columns).
	Badges map[string]Badge
	// Format overrides type formatting entirely.
	Format func(rec types.Record) string

	Sort   *SortSpec
	Filter *FilterSpec

	Buttons    []Button
	Selections []Selection
	// Click resolves a navigation target for link columns.
	Click func(rec types.Record) string
}

// SortKind classifies a column's sort configuration.
type SortKind int

const (
	// SortDisabled: the column cannot be sorted.
	SortDisabled SortKind = iota
	// SortEnabled: sortable, with a comparator for local mode.
	SortEnabled
	// SortMissingCompare: sortable remotely, but local sorting is a no-op.
	SortMissingCompare
)

// SortKind reports the column's sort variant.
func (c *Column) SortKind() SortKind {
	switch {
	case c.Sort == nil:
		return SortDisabled
	case c.Sort.Compare == nil:
		return SortMissingCompare
	default:
		return SortEnabled
	}
}

// FilterKind classifies a column's filter configuration.
type FilterKind int

const (
	FilterDisabled FilterKind = iota
	FilterEnabled
	FilterMissingFn
)

// FilterKind reports the column's filter variant.
// A filter spec without menus is treated as disabled.
func (c *Column) FilterKind() FilterKind {
	switch {
	case c.Filter == nil || len(c.Filter.Menus) == 0:
		return FilterDisabled
	case c.Filter.Fn == nil:
		return FilterMissingFn
	default:
		return FilterEnabled
	}
}

// sortField returns the wire field name used in sort tokens.
func (c *Column) sortField() string {
	if c.Sort != nil && c.Sort.Key != "" {
		return c.Sort.Key
	}
	return c.Index
}

// filterField returns the wire key used for filter params.
func (c *Column) filterField() string {
	if c.Filter != nil && c.Filter.Key != "" {
		return c.Filter.Key
	}
	return c.Index
}

// ColumnView is a normalized column as exposed to the host.
// Left/Right are the pixel offsets of fixed columns ("" when not fixed).
type ColumnView struct {
	Column
	Left  string
	Right string
}

// normalizeColumns applies width defaults and fixed offsets.
// Offsets accumulate the widths of preceding columns fixed to the same
// edge; widths that are not "<n>px" or bare numbers count as zero.
func normalizeColumns(cols []Column) []ColumnView {
	views := make([]ColumnView, len(cols))
	for i, c := range cols {
		if c.Width == "" && (c.Type == TypeCheckbox || c.Type == TypeRadio) {
			c.Width = selectionWidth
		}
		views[i] = ColumnView{Column: c}
	}

	left := 0
	for i := range views {
		if views[i].Fixed != FixedLeft {
			continue
		}
		views[i].Left = strconv.Itoa(left) + "px"
		left += widthPixels(views[i].Width)
	}

	right := 0
	for i := len(views) - 1; i >= 0; i-- {
		if views[i].Fixed != FixedRight {
			continue
		}
		views[i].Right = strconv.Itoa(right) + "px"
		right += widthPixels(views[i].Width)
	}
	return views
}

func widthPixels(w string) int {
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(w), "px"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
