// internal/grid/cell.go
package grid

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/solatis/sttable/internal/types"
)

/*
 * Cell text formatting.
 *
 * Cell computes the display text of one record under one column. Rendering
 * (elements, images, badges as markup) belongs to the host; the engine only
 * resolves what the text and color are, so exports and the CLI print the
 * same values a rendered table would show.
 */

// Formatting defaults.
const (
	DefaultYes            = "是"
	DefaultNo             = "否"
	DefaultNumberDigits   = "1.0-3"
	DefaultCurrencySymbol = "￥"
	DefaultDateFormat     = "YYYY-MM-DD HH:mm"
)

// CellView is the formatted content of a cell.
// Empty is set when the value is missing; img and link cells render no
// element in that case.
type CellView struct {
	Text  string `json:"text"`
	Color string `json:"color,omitempty"`
	Empty bool   `json:"empty,omitempty"`
}

var numberPrinter = message.NewPrinter(language.English)

// Cell formats the value of col in rec.
func Cell(col *Column, rec types.Record) CellView {
	if col.Format != nil {
		return CellView{Text: col.Format(rec)}
	}
	switch col.Type {
	case TypeCheckbox, TypeRadio:
		return CellView{}
	}

	value := Get(rec, col.Index)
	if value == nil {
		if col.Type == TypeYN {
			return CellView{Text: ynText(col.YN, false)}
		}
		return CellView{Text: col.Default, Empty: true}
	}

	switch col.Type {
	case TypeYN:
		var truth any = true
		if col.YN != nil && col.YN.Truth != nil {
			truth = col.YN.Truth
		}
		return CellView{Text: ynText(col.YN, EqualValues(value, truth))}
	case TypeBadge, TypeTag:
		if b, ok := col.Badges[ToText(value)]; ok {
			return CellView{Text: b.Text, Color: b.Color}
		}
	case TypeNumber:
		if f, ok := ToNumber(value); ok {
			return CellView{Text: FormatNumber(f, col.NumberDigits)}
		}
	case TypeCurrency:
		if f, ok := ToNumber(value); ok {
			return CellView{Text: FormatCurrency(f, col.CurrencySymbol)}
		}
	case TypeDate:
		if t, ok := toTime(value); ok {
			return CellView{Text: FormatDate(t, col.DateFormat)}
		}
	}
	return CellView{Text: ToText(value)}
}

func ynText(opts *YNOptions, yes bool) string {
	y, n := DefaultYes, DefaultNo
	if opts != nil {
		if opts.Yes != "" {
			y = opts.Yes
		}
		if opts.No != "" {
			n = opts.No
		}
	}
	if yes {
		return y
	}
	return n
}

// FormatNumber formats f with grouping under a digits spec
// "minInt.minFrac-maxFrac" (default "1.0-3").
func FormatNumber(f float64, digits string) string {
	minInt, minFrac, maxFrac := parseDigits(digits)
	return numberPrinter.Sprint(number.Decimal(f,
		number.MinIntegerDigits(minInt),
		number.MinFractionDigits(minFrac),
		number.MaxFractionDigits(maxFrac),
	))
}

// FormatCurrency formats f with grouping, two decimals and symbol
// (default "￥").
func FormatCurrency(f float64, symbol string) string {
	if symbol == "" {
		symbol = DefaultCurrencySymbol
	}
	return symbol + numberPrinter.Sprint(number.Decimal(f,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))
}

// parseDigits parses "minInt.minFrac-maxFrac". Malformed parts fall back to
// the default spec.
func parseDigits(digits string) (minInt, minFrac, maxFrac int) {
	minInt, minFrac, maxFrac = 1, 0, 3
	if digits == "" {
		return
	}
	intPart, fracPart, _ := strings.Cut(digits, ".")
	if n, err := strconv.Atoi(intPart); err == nil && n >= 0 {
		minInt = n
	}
	if fracPart == "" {
		return
	}
	lo, hi, hasHi := strings.Cut(fracPart, "-")
	if n, err := strconv.Atoi(lo); err == nil && n >= 0 {
		minFrac = n
	}
	if hasHi {
		if n, err := strconv.Atoi(hi); err == nil && n >= 0 {
			maxFrac = n
		}
	}
	maxFrac = max(maxFrac, minFrac)
	return
}

var dateTokens = strings.NewReplacer(
	"YYYY", "2006",
	"YY", "06",
	"MM", "01",
	"DD", "02",
	"HH", "15",
	"mm", "04",
	"ss", "05",
)

// FormatDate formats t with a token layout (YYYY, YY, MM, DD, HH, mm, ss),
// default "YYYY-MM-DD HH:mm".
func FormatDate(t time.Time, layout string) string {
	if layout == "" {
		layout = DefaultDateFormat
	}
	return t.Format(dateTokens.Replace(layout))
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// toTime accepts time.Time, date strings and unix milliseconds (UTC).
func toTime(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case string:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	}
	if ms, ok := ToNumber(value); ok {
		return time.UnixMilli(int64(ms)).UTC(), true
	}
	return time.Time{}, false
}
