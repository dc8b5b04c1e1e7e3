// internal/grid/buttons.go
package grid

import (
	"context"

	"github.com/solatis/sttable/internal/types"
)

// ButtonType selects how a row button is activated.
type ButtonType string

const (
	ButtonPlain  ButtonType = ""
	ButtonDel    ButtonType = "del"
	ButtonModal  ButtonType = "modal"
	ButtonStatic ButtonType = "static"
	ButtonLink   ButtonType = "link"
)

// ButtonAction is a table command run after a button's click handler.
type ButtonAction string

const (
	ActionNone   ButtonAction = ""
	ActionLoad   ButtonAction = "load"
	ActionReload ButtonAction = "reload"
)

// ModalSpec describes the dialog opened by modal and static buttons.
type ModalSpec struct {
	Component string
	Size      string
	// Params builds the dialog params for a record.
	Params func(rec types.Record) map[string]any
}

// Button is one row action in a column.
type Button struct {
	Text string
	Type ButtonType
	// Click runs on activation with the modal result (nil for non-modal
	// buttons). A non-empty return value is a navigation target.
	Click  func(rec types.Record, result any) string
	Action ButtonAction
	// If hides the button for records it rejects.
	If func(rec types.Record) bool
	// PopTitle is the confirmation text the host shows for del buttons.
	PopTitle string
	Modal    *ModalSpec
}

// visible reports whether the button is shown for rec.
func (b *Button) visible(rec types.Record) bool {
	return b.If == nil || b.If(rec)
}

// Navigator performs navigation to a target location.
type Navigator interface {
	Navigate(ctx context.Context, target string) error
}

// ModalOpener opens a dialog and waits for it to close.
// ok is false when the dialog was dismissed without a result.
type ModalOpener interface {
	Open(ctx context.Context, spec ModalSpec, static bool, params map[string]any) (result any, ok bool, err error)
}
