package types

import "errors"

// Sentinel errors for sttable operations.
var (
	// ErrInvalidPageIndex indicates a page index below 1.
	ErrInvalidPageIndex = errors.New("page index must be at least 1")

	// ErrInvalidPageSize indicates a page size below 1.
	ErrInvalidPageSize = errors.New("page size must be at least 1")

	// ErrColumnNotFound indicates a column index outside the configured columns.
	ErrColumnNotFound = errors.New("column not found")

	// ErrInvalidColumn indicates a column spec that cannot be configured.
	ErrInvalidColumn = errors.New("invalid column")

	// ErrInvalidDirection indicates a sort direction other than ascend/descend.
	ErrInvalidDirection = errors.New("invalid sort direction")

	// ErrNotSortable indicates a sort request on a column without sort config.
	ErrNotSortable = errors.New("column is not sortable")

	// ErrNotFilterable indicates a filter request on a column without filter config.
	ErrNotFilterable = errors.New("column is not filterable")

	// ErrMenuNotFound indicates a filter menu index outside the column's menus.
	ErrMenuNotFound = errors.New("filter menu not found")

	// ErrRowNotFound indicates a row key that is not on the current page.
	ErrRowNotFound = errors.New("row not found on current page")

	// ErrSelectionNotFound indicates an unknown bulk-selection rule.
	ErrSelectionNotFound = errors.New("selection rule not found")

	// ErrButtonNotFound indicates an unknown column button.
	ErrButtonNotFound = errors.New("button not found")

	// ErrNoSource indicates the table has no data source configured.
	ErrNoSource = errors.New("no data source configured")

	// ErrNoFetcher indicates a remote source without a fetch collaborator.
	ErrNoFetcher = errors.New("remote source requires a fetcher")

	// ErrNoNavigator indicates a navigation target without a navigation collaborator.
	ErrNoNavigator = errors.New("no navigator configured")

	// ErrNoModal indicates a modal button without a modal collaborator.
	ErrNoModal = errors.New("no modal opener configured")

	// ErrNoExporter indicates an export without an export collaborator.
	ErrNoExporter = errors.New("no exporter configured")

	// ErrUnknownDataset indicates a dataset name with no stored rows.
	ErrUnknownDataset = errors.New("unknown dataset")
)
