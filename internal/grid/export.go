// internal/grid/export.go
package grid

import (
	"context"

	"github.com/solatis/sttable/internal/types"
)

// Exporter turns resolved rows and column specs into an artifact.
type Exporter interface {
	Export(ctx context.Context, rows []types.Record, cols []Column) error
}
