// internal/grid/pagination.go
package grid

import (
	"strconv"
	"strings"
)

// Mode selects where sorting, filtering and slicing happen.
type Mode string

const (
	// ModeAuto derives the mode from the data variant.
	ModeAuto  Mode = ""
	ModeFront Mode = "front"
	ModeBack  Mode = "back"
)

// ShowMode controls pagination visibility.
type ShowMode string

const (
	// ShowAuto shows the control only when there is more than one page.
	ShowAuto   ShowMode = ""
	ShowAlways ShowMode = "always"
	ShowNever  ShowMode = "never"
)

// PageOptions configures pagination.
type PageOptions struct {
	Mode Mode
	Show ShowMode
	// Total is the total-text template; empty disables total text.
	// Placeholders: {{total}}, {{range[0]}}, {{range[1]}}.
	Total string
}

// Pagination is the position of the current page within the data.
type Pagination struct {
	PI    int
	PS    int
	Total int
}

// PageCount returns the number of pages (at least 1).
func (p Pagination) PageCount() int {
	if p.PS < 1 || p.Total <= p.PS {
		return 1
	}
	return (p.Total + p.PS - 1) / p.PS
}

// Range returns the 1-based positions of the first and last row of the
// page, or (0, 0) when the page is empty.
func (p Pagination) Range() (int, int) {
	start := (p.PI-1)*p.PS + 1
	end := min(p.PI*p.PS, p.Total)
	if p.Total == 0 || start > end {
		return 0, 0
	}
	return start, end
}

// Visible applies the show mode.
func (p Pagination) Visible(show ShowMode) bool {
	switch show {
	case ShowAlways:
		return true
	case ShowNever:
		return false
	default:
		return p.Total > p.PS
	}
}

// TotalText renders the total template.
func (p Pagination) TotalText(tpl string) string {
	if tpl == "" {
		return ""
	}
	start, end := p.Range()
	return strings.NewReplacer(
		"{{total}}", strconv.Itoa(p.Total),
		"{{range[0]}}", strconv.Itoa(start),
		"{{range[1]}}", strconv.Itoa(end),
	).Replace(tpl)
}

// paginate returns the rows of page pi. Out-of-range pages are empty.
func paginate[T any](rows []T, pi, ps int) []T {
	start := (pi - 1) * ps
	if start < 0 || start >= len(rows) {
		return []T{}
	}
	end := min(start+ps, len(rows))
	return rows[start:end]
}
