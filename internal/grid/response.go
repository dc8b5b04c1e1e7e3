// internal/grid/response.go
package grid

import "github.com/solatis/sttable/internal/types"

// Default response paths.
const (
	DefaultTotalPath = "total"
	DefaultListPath  = "list"
)

// ResRename maps the logical response fields to dot-paths in the raw
// response. Empty fields keep the defaults.
type ResRename struct {
	Total string
	List  string
}

// ResponseShape is a normalized ResRename.
type ResponseShape struct {
	Total []string
	List  []string
}

// NewResponseShape normalizes rn, applying defaults for empty or
// path-less entries.
func NewResponseShape(rn ResRename) ResponseShape {
	shape := ResponseShape{
		Total: NormalizePath(rn.Total),
		List:  NormalizePath(rn.List),
	}
	if len(shape.Total) == 0 {
		shape.Total = []string{DefaultTotalPath}
	}
	if len(shape.List) == 0 {
		shape.List = []string{DefaultListPath}
	}
	return shape
}

// Result is one fetched page (back mode) or collection (front mode).
type Result struct {
	Rows  []types.Record
	Total int
}

// Extract resolves total and list from a raw response.
// Never fails: a missing total is 0 and a missing or non-list list is empty.
func Extract(raw any, shape ResponseShape) Result {
	total, _ := Lookup(raw, shape.Total)
	list, _ := Lookup(raw, shape.List)
	return Result{
		Rows:  ToRecords(list),
		Total: ToCount(total),
	}
}

// Encode writes a result into a raw response using shape. It is the
// inverse of Extract for servers speaking a renamed wire format.
func Encode(res Result, shape ResponseShape) map[string]any {
	list := make([]any, len(res.Rows))
	for i, r := range res.Rows {
		list[i] = map[string]any(r)
	}
	out := make(map[string]any)
	Set(out, shape.Total, res.Total)
	Set(out, shape.List, list)
	return out
}
