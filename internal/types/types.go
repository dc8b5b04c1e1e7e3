// Package types provides domain models shared across sttable components.
//
// Records are schema-agnostic: the engine never needs to know the shape of
// an application row beyond the dot-paths named by column specs. Transient
// per-row state (checked, disabled) lives in side tables keyed by RowKey,
// never on the record itself.
package types

// Record is an opaque application row.
// Values follow encoding/json decoding conventions (map[string]any, []any,
// float64, string, bool, nil) but any Go value is tolerated.
type Record map[string]any

// RowKey is the stable identity of a row within a data-source configuration.
// Either the string form of an explicit id field or a positional key.
type RowKey string

// CycleID identifies one load cycle (one fetch/recompute).
type CycleID string

// Direction is a sort direction token. The values are sent verbatim to
// remote sources.
type Direction string

const (
	NoDirection Direction = ""
	Ascend      Direction = "ascend"
	Descend     Direction = "descend"
)

// Valid reports whether d is one of the known tokens (including none).
func (d Direction) Valid() bool {
	switch d {
	case NoDirection, Ascend, Descend:
		return true
	default:
		return false
	}
}

// Engine limits and defaults.
const (
	// MaxPathDepth bounds dot-path resolution. Deeper paths resolve to nil.
	MaxPathDepth = 16

	// DefaultPageSize applies when no page size is configured.
	DefaultPageSize = 10

	// DefaultTotalTemplate is the total text used when total display is
	// enabled without a custom template.
	DefaultTotalTemplate = "共 {{total}} 条"
)
