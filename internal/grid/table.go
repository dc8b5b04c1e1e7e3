// internal/grid/table.go
package grid

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/solatis/sttable/internal/types"
)

/*
 * Table orchestrator.
 *
 * A Table owns all mutable engine state (page position, params, sort,
 * filter, selection, current page) behind one mutex. Every command is a
 * synchronous call; only Source.Fetch runs without the lock held.
 *
 * Load cycle:
 *   1. lock, bump the request token, set loading, snapshot the request
 *   2. unlock, run pre-fetch notifications, fetch
 *   3. lock, compare the token: a superseded completion is dropped
 *   4. front mode: sort -> filter -> paginate the full collection
 *      back mode: take the page and total as returned
 *   5. unlock, emit callbacks
 *
 * Callbacks always run without the lock, in the calling goroutine, so a
 * callback may call back into the table.
 */

// Options configures a table.
type Options struct {
	// PI is the initial page index (default 1). PS is the page size
	// (default DefaultPageSize).
	PI int
	PS int

	Columns   []Column
	Req       ReqRename
	Res       ResRename
	MultiSort *MultiSort
	Page      PageOptions

	// RowKey is the dot-path of a row's identity. Rows without a value at
	// RowKey get positional keys.
	RowKey string
	// RowDisabled excludes rows from bulk selection.
	RowDisabled func(rec types.Record) bool
	// Params are the initial extra request params.
	Params map[string]any
}

// Events are the host notifications. Nil handlers are skipped.
type Events struct {
	OnChange         func(ViewState)
	OnError          func(error)
	OnCheckboxChange func(checked []types.Record)
	OnRadioChange    func(rec types.Record)
	OnSortChange     func(SortState)
	OnFilterChange   func(FilterState)
}

// Option configures collaborators of a Table.
type Option func(*Table)

// WithLogger sets the engine logger. The default discards output.
func WithLogger(log zerolog.Logger) Option {
	return func(t *Table) { t.log = log }
}

// WithFetcher sets the remote transport used by Remote data.
func WithFetcher(f Fetcher) Option {
	return func(t *Table) { t.fetcher = f }
}

// WithEvents sets the host notifications.
func WithEvents(ev Events) Option {
	return func(t *Table) { t.events = ev }
}

// WithNavigator sets the navigation collaborator.
func WithNavigator(n Navigator) Option {
	return func(t *Table) { t.nav = n }
}

// WithModal sets the modal collaborator.
func WithModal(m ModalOpener) Option {
	return func(t *Table) { t.modal = m }
}

// WithExporter sets the default export collaborator.
func WithExporter(e Exporter) Option {
	return func(t *Table) { t.exporter = e }
}

// LoadOptions modifies how load params are applied.
type LoadOptions struct {
	// Merge unions the params with the current ones instead of replacing.
	Merge bool
}

// ViewState is a snapshot of the current page.
type ViewState struct {
	Rows           []Row          `json:"rows"`
	PI             int            `json:"pi"`
	PS             int            `json:"ps"`
	Total          int            `json:"total"`
	PageCount      int            `json:"pageCount"`
	ShowPagination bool           `json:"showPagination"`
	TotalText      string         `json:"totalText,omitempty"`
	Loading        bool           `json:"loading"`
	Err            error          `json:"-"`
	Error          string         `json:"error,omitempty"`
	Cycle          types.CycleID  `json:"cycle,omitempty"`
	Mode           Mode           `json:"mode"`
	Sort           SortState      `json:"sort"`
	Filter         FilterState    `json:"filter"`
	Params         map[string]any `json:"params,omitempty"`
}

// Records returns the records of the page in order.
func (v ViewState) Records() []types.Record {
	out := make([]types.Record, len(v.Rows))
	for i, r := range v.Rows {
		out[i] = r.Record
	}
	return out
}

// keyed is a record with its row identity.
type keyed struct {
	key types.RowKey
	rec types.Record
}

// Table is the data-table engine.
type Table struct {
	mu sync.Mutex

	log      zerolog.Logger
	fetcher  Fetcher
	events   Events
	nav      Navigator
	modal    ModalOpener
	exporter Exporter

	cols   []Column
	views  []ColumnView
	opts   Options
	mode   Mode
	source Source
	shape  ResponseShape
	rowKey []string

	pi     int
	ps     int
	params map[string]any

	sort   *sortEngine
	filter *filterEngine
	sel    *selectionEngine

	token   uint64
	loading bool
	err     error
	cycle   types.CycleID
	full    []keyed
	rows    []*Row
	total   int

	positional map[types.RowKey]struct{}
	querySig   string
}

// New configures a table over data. No fetch happens until Load.
func New(data Data, opts Options, options ...Option) (*Table, error) {
	if opts.PI < 0 {
		return nil, fmt.Errorf("%w: %d", types.ErrInvalidPageIndex, opts.PI)
	}
	if opts.PS < 0 {
		return nil, fmt.Errorf("%w: %d", types.ErrInvalidPageSize, opts.PS)
	}
	if opts.PI == 0 {
		opts.PI = 1
	}
	if opts.PS == 0 {
		opts.PS = types.DefaultPageSize
	}
	if err := validateColumns(opts.Columns); err != nil {
		return nil, err
	}

	t := &Table{
		log:    zerolog.Nop(),
		cols:   slices.Clone(opts.Columns),
		opts:   opts,
		shape:  NewResponseShape(opts.Res),
		rowKey: NormalizePath(opts.RowKey),
		pi:     opts.PI,
		ps:     opts.PS,
		params: maps.Clone(opts.Params),

		positional: make(map[types.RowKey]struct{}),
	}
	for _, o := range options {
		o(t)
	}

	src, err := data.resolve(t.fetcher, t.shape)
	if err != nil {
		return nil, err
	}
	t.source = src
	t.mode = opts.Page.Mode
	if t.mode == ModeAuto {
		t.mode = data.defaultMode()
	}

	t.views = normalizeColumns(t.cols)
	t.sort = newSortEngine(t.cols, opts.MultiSort != nil)
	t.filter = newFilterEngine(t.cols)
	t.sel = newSelectionEngine()
	return t, nil
}

func validateColumns(cols []Column) error {
	for i := range cols {
		c := &cols[i]
		if !c.Type.Valid() {
			return fmt.Errorf("%w: column %d: unknown type %q", types.ErrInvalidColumn, i, c.Type)
		}
		if c.Fixed != FixedNone && c.Fixed != FixedLeft && c.Fixed != FixedRight {
			return fmt.Errorf("%w: column %d: unknown fixed %q", types.ErrInvalidColumn, i, c.Fixed)
		}
		if c.Sort != nil && !c.Sort.Default.Valid() {
			return fmt.Errorf("%w: column %d: %q", types.ErrInvalidDirection, i, c.Sort.Default)
		}
	}
	return nil
}

// Mode returns the resolved pagination mode.
func (t *Table) Mode() Mode {
	return t.mode
}

// Columns returns the normalized columns.
func (t *Table) Columns() []ColumnView {
	return slices.Clone(t.views)
}

// View returns a snapshot of the current state.
func (t *Table) View() ViewState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.viewLocked()
}

// Load fetches page pi (0 keeps the current page). Non-nil params replace
// the current params, or are merged into them with LoadOptions.Merge.
func (t *Table) Load(ctx context.Context, pi int, params map[string]any, opts ...LoadOptions) error {
	if pi < 0 {
		return fmt.Errorf("%w: %d", types.ErrInvalidPageIndex, pi)
	}
	t.mu.Lock()
	if pi > 0 {
		t.pi = pi
	}
	t.applyParamsLocked(params, opts)
	return t.fetchLocked(ctx)
}

// Reload fetches the current page again.
func (t *Table) Reload(ctx context.Context, params map[string]any, opts ...LoadOptions) error {
	return t.Load(ctx, 0, params, opts...)
}

// Reset clears selection, radio, filter and sort state and fetches page 1.
func (t *Table) Reset(ctx context.Context, params map[string]any, opts ...LoadOptions) error {
	t.mu.Lock()
	t.pi = 1
	t.applyParamsLocked(params, opts)
	t.sel.clearCheck()
	t.sel.clearRadio()
	t.filter.clear()
	t.sort.clear()
	sortState, filterState := t.sort.state(), t.filter.state(t.cols)
	return t.fetchLocked(ctx, func() {
		t.emitCheckbox(nil)
		t.emitRadio(nil)
		t.emitSort(sortState)
		t.emitFilter(filterState)
	})
}

func (t *Table) applyParamsLocked(params map[string]any, opts []LoadOptions) {
	if params == nil {
		return
	}
	merge := len(opts) > 0 && opts[0].Merge
	t.params = mergeParams(t.params, params, merge)
}

// fetchLocked runs one load cycle. Called with t.mu held; returns with it
// released. notify runs after unlocking, before the fetch.
func (t *Table) fetchLocked(ctx context.Context, notify ...func()) error {
	t.token++
	token := t.token
	t.loading = true
	cycle := types.NewCycleID()
	req := t.requestLocked(cycle, t.pi, t.ps)
	src, mode := t.source, t.mode
	log := t.log.With().
		Str("cycle", string(cycle)).
		Uint64("token", token).
		Int("pi", req.PI).
		Int("ps", req.PS).
		Str("mode", string(mode)).
		Logger()
	t.mu.Unlock()

	for _, fn := range notify {
		fn()
	}

	log.Debug().Msg("load started")
	res, err := src.Fetch(ctx, req)

	t.mu.Lock()
	if current := t.token; token != current {
		t.mu.Unlock()
		log.Debug().Uint64("current", current).Msg("stale completion discarded")
		return nil
	}
	t.loading = false
	if err != nil {
		t.err = err
		t.mu.Unlock()
		log.Warn().Err(err).Msg("load failed")
		if t.events.OnError != nil {
			t.events.OnError(err)
		}
		return fmt.Errorf("load page %d: %w", req.PI, err)
	}

	t.err = nil
	t.cycle = cycle
	var dropCheck, dropRadio bool
	if mode == ModeFront {
		t.recomputeLocked(res.Rows, log)
	} else {
		if sig := querySignature(req); sig != t.querySig {
			dropCheck, dropRadio = t.sel.drop(t.positional)
			clear(t.positional)
			t.querySig = sig
		}
		prefix := strconv.Itoa(req.PI) + "#"
		page := t.keyRowsLocked(res.Rows, prefix, true, log)
		t.full = nil
		t.total = res.Total
		t.setPageLocked(page)
	}
	view := t.viewLocked()
	checked, radio := t.sel.checkedRecords(), t.sel.radioRecord()
	t.mu.Unlock()

	log.Debug().Int("total", view.Total).Int("rows", len(view.Rows)).Msg("load finished")
	if dropCheck {
		log.Debug().Msg("positional checks dropped after query change")
		t.emitCheckbox(checked)
	}
	if dropRadio {
		t.emitRadio(radio)
	}
	t.emitChange(view)
	return nil
}

// querySignature identifies the query a back-mode page answers, ignoring
// the page position. Positional keys are only meaningful under one
// signature.
func querySignature(req Request) string {
	return fmt.Sprintf("%v|%v|%v", req.Sort.Entries, req.Filter.Columns, req.Extra)
}

// recomputeLocked runs the local pipeline over the full collection.
func (t *Table) recomputeLocked(all []types.Record, log zerolog.Logger) {
	rows := t.keyRowsLocked(all, "#", false, log)
	rows = t.sort.apply(rows, t.cols, log)
	rows = t.filter.apply(rows, t.cols, log)
	t.full = rows
	t.total = len(rows)
	t.setPageLocked(paginate(rows, t.pi, t.ps))
}

func (t *Table) setPageLocked(page []keyed) {
	t.rows = make([]*Row, len(page))
	for i, k := range page {
		disabled := t.opts.RowDisabled != nil && t.opts.RowDisabled(k.rec)
		t.rows[i] = &Row{Key: k.key, Index: i, Record: k.rec, Disabled: disabled}
	}
	t.sel.decorate(t.rows)
}

// keyRowsLocked assigns row identities. Records without a value at the
// configured key path, and records repeating a key already seen, get
// prefix+index. track records positional keys so they can be dropped when
// the query changes.
func (t *Table) keyRowsLocked(recs []types.Record, prefix string, track bool, log zerolog.Logger) []keyed {
	out := make([]keyed, len(recs))
	seen := make(map[types.RowKey]struct{}, len(recs))
	for i, rec := range recs {
		key, ok := t.rowKeyFor(rec)
		if ok {
			if _, dup := seen[key]; dup {
				log.Warn().Str("key", string(key)).Int("index", i).Msg("duplicate row key, using position")
				ok = false
			}
		}
		if !ok {
			key = types.RowKey(prefix + strconv.Itoa(i))
			if track {
				t.positional[key] = struct{}{}
			}
		}
		seen[key] = struct{}{}
		out[i] = keyed{key: key, rec: rec}
	}
	return out
}

// rowKeyFor returns the identity of rec at the configured key path.
func (t *Table) rowKeyFor(rec types.Record) (types.RowKey, bool) {
	if len(t.rowKey) > 0 {
		if v, ok := Lookup(rec, t.rowKey); ok && v != nil {
			return types.RowKey(ToText(v)), true
		}
	}
	return "", false
}

func (t *Table) requestLocked(cycle types.CycleID, pi, ps int) Request {
	sortState := t.sort.state()
	filterState := t.filter.state(t.cols)
	extra := maps.Clone(t.params)
	return Request{
		PI:      pi,
		PS:      ps,
		Sort:    sortState,
		Filter:  filterState,
		Extra:   extra,
		Params:  BuildRequest(pi, ps, sortState, filterState, extra, t.opts.Req, t.opts.MultiSort),
		CycleID: cycle,
	}
}

func (t *Table) viewLocked() ViewState {
	p := Pagination{PI: t.pi, PS: t.ps, Total: t.total}
	rows := make([]Row, len(t.rows))
	for i, r := range t.rows {
		rows[i] = *r
	}
	v := ViewState{
		Rows:           rows,
		PI:             t.pi,
		PS:             t.ps,
		Total:          t.total,
		PageCount:      p.PageCount(),
		ShowPagination: p.Visible(t.opts.Page.Show),
		TotalText:      p.TotalText(t.opts.Page.Total),
		Loading:        t.loading,
		Err:            t.err,
		Cycle:          t.cycle,
		Mode:           t.mode,
		Sort:           t.sort.state(),
		Filter:         t.filter.state(t.cols),
		Params:         maps.Clone(t.params),
	}
	if t.err != nil {
		v.Error = t.err.Error()
	}
	return v
}

func (t *Table) column(col int) (*Column, error) {
	if col < 0 || col >= len(t.cols) {
		return nil, fmt.Errorf("%w: %d", types.ErrColumnNotFound, col)
	}
	return &t.cols[col], nil
}

// Sort sets the direction of a column (NoDirection deactivates it) and
// loads page 1.
func (t *Table) Sort(ctx context.Context, col int, dir types.Direction) error {
	if !dir.Valid() {
		return fmt.Errorf("%w: %q", types.ErrInvalidDirection, dir)
	}
	t.mu.Lock()
	c, err := t.column(col)
	if err == nil && c.SortKind() == SortDisabled {
		err = fmt.Errorf("%w: %d", types.ErrNotSortable, col)
	}
	if err != nil {
		t.mu.Unlock()
		return err
	}
	t.sort.set(col, c.sortField(), dir)
	t.pi = 1
	state := t.sort.state()
	return t.fetchLocked(ctx, func() { t.emitSort(state) })
}

// ClearSort deactivates every sort column. Takes effect on the next load.
func (t *Table) ClearSort() {
	t.mu.Lock()
	t.sort.clear()
	state := t.sort.state()
	t.mu.Unlock()
	t.emitSort(state)
}

func (t *Table) filterColumn(col int) (*Column, error) {
	c, err := t.column(col)
	if err != nil {
		return nil, err
	}
	if c.FilterKind() == FilterDisabled {
		return nil, fmt.Errorf("%w: %d", types.ErrNotFilterable, col)
	}
	return c, nil
}

// FilterMenus returns a column's menus with their staged checks.
func (t *Table) FilterMenus(col int) ([]FilterMenu, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := t.filterColumn(col); err != nil {
		return nil, err
	}
	return t.filter.menus(t.cols, col), nil
}

// FilterToggle stages a menu check. Nothing is applied until FilterConfirm.
func (t *Table) FilterToggle(col, menu int, checked bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	c, err := t.filterColumn(col)
	if err != nil {
		return err
	}
	if menu < 0 || menu >= len(c.Filter.Menus) {
		return fmt.Errorf("%w: column %d menu %d", types.ErrMenuNotFound, col, menu)
	}
	t.filter.toggle(col, c.Filter.Multiple, menu, checked)
	return nil
}

// FilterConfirm applies the staged checks of a column and loads page 1.
func (t *Table) FilterConfirm(ctx context.Context, col int) error {
	t.mu.Lock()
	if _, err := t.filterColumn(col); err != nil {
		t.mu.Unlock()
		return err
	}
	t.filter.confirm(col)
	t.pi = 1
	state := t.filter.state(t.cols)
	return t.fetchLocked(ctx, func() { t.emitFilter(state) })
}

// FilterClear unchecks and applies a column's menus and loads page 1.
func (t *Table) FilterClear(ctx context.Context, col int) error {
	t.mu.Lock()
	if _, err := t.filterColumn(col); err != nil {
		t.mu.Unlock()
		return err
	}
	t.filter.clearColumn(col)
	t.pi = 1
	state := t.filter.state(t.cols)
	return t.fetchLocked(ctx, func() { t.emitFilter(state) })
}

// ClearFilter unchecks every filter menu. Takes effect on the next load.
func (t *Table) ClearFilter() {
	t.mu.Lock()
	t.filter.clear()
	state := t.filter.state(t.cols)
	t.mu.Unlock()
	t.emitFilter(state)
}

// Checked returns every checked record, across pages, in check order.
func (t *Table) Checked() []types.Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sel.checkedRecords()
}

// RadioRecord returns the radio-checked record, or nil.
func (t *Table) RadioRecord() types.Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sel.radioRecord()
}

// CheckAll toggles the enabled rows of the current page and returns the
// new state.
func (t *Table) CheckAll() bool {
	t.mu.Lock()
	on := t.sel.checkAll(t.rows)
	t.selectionChangedLocked()
	return on
}

// SetPageChecked checks or unchecks the enabled rows of the current page.
func (t *Table) SetPageChecked(on bool) {
	t.mu.Lock()
	t.sel.setPage(t.rows, on)
	t.selectionChangedLocked()
}

// CheckRow sets one row's checkbox. Disabled rows are left unchanged.
func (t *Table) CheckRow(key types.RowKey, on bool) error {
	t.mu.Lock()
	r, err := t.rowLocked(key)
	if err != nil {
		t.mu.Unlock()
		return err
	}
	if !r.Disabled {
		t.sel.setChecked(r.Key, r.Record, on)
	}
	t.selectionChangedLocked()
	return nil
}

// RadioRow checks a row as the single radio row, or unchecks it when it is
// already checked.
func (t *Table) RadioRow(key types.RowKey) error {
	t.mu.Lock()
	r, err := t.rowLocked(key)
	if err != nil {
		t.mu.Unlock()
		return err
	}
	rec := t.sel.radio(r.Key, r.Record)
	t.sel.decorate(t.rows)
	view := t.viewLocked()
	t.mu.Unlock()
	t.emitRadio(rec)
	t.emitChange(view)
	return nil
}

// RowSelection applies a checkbox column's bulk-selection rule to the
// enabled rows of the current page.
func (t *Table) RowSelection(col, idx int) error {
	t.mu.Lock()
	c, err := t.column(col)
	if err == nil && (idx < 0 || idx >= len(c.Selections)) {
		err = fmt.Errorf("%w: column %d rule %d", types.ErrSelectionNotFound, col, idx)
	}
	if err != nil {
		t.mu.Unlock()
		return err
	}
	rows := enabledRows(t.rows)
	work := make([]*Row, len(rows))
	for i, r := range rows {
		cp := *r
		work[i] = &cp
	}
	if sel := c.Selections[idx].Select; sel != nil {
		sel(work)
	}
	t.sel.commit(work)
	t.selectionChangedLocked()
	return nil
}

// ClearCheck unchecks every row on every page.
func (t *Table) ClearCheck() {
	t.mu.Lock()
	t.sel.clearCheck()
	t.selectionChangedLocked()
}

// ClearRadio unchecks the radio row.
func (t *Table) ClearRadio() {
	t.mu.Lock()
	t.sel.clearRadio()
	t.sel.decorate(t.rows)
	view := t.viewLocked()
	t.mu.Unlock()
	t.emitRadio(nil)
	t.emitChange(view)
}

// selectionChangedLocked redecorates the page, unlocks and notifies.
func (t *Table) selectionChangedLocked() {
	t.sel.decorate(t.rows)
	checked := t.sel.checkedRecords()
	view := t.viewLocked()
	t.mu.Unlock()
	t.emitCheckbox(checked)
	t.emitChange(view)
}

func (t *Table) rowLocked(key types.RowKey) (*Row, error) {
	for _, r := range t.rows {
		if r.Key == key {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", types.ErrRowNotFound, key)
}

// Buttons returns the buttons of a column visible for a row.
func (t *Table) Buttons(key types.RowKey, col int) ([]Button, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	c, err := t.column(col)
	if err != nil {
		return nil, err
	}
	r, err := t.rowLocked(key)
	if err != nil {
		return nil, err
	}
	var out []Button
	for i := range c.Buttons {
		if c.Buttons[i].visible(r.Record) {
			out = append(out, c.Buttons[i])
		}
	}
	return out, nil
}

// ClickButton activates button btn of column col for a row.
//
// Modal and static buttons open the modal first and run Click only with a
// result. A del button without Click does nothing; confirmation is the
// host's. A non-empty Click return navigates; link buttons always do.
// The button's Action then reloads or loads page 1.
func (t *Table) ClickButton(ctx context.Context, key types.RowKey, col, btn int) error {
	t.mu.Lock()
	c, err := t.column(col)
	var r *Row
	if err == nil {
		r, err = t.rowLocked(key)
	}
	if err == nil && (btn < 0 || btn >= len(c.Buttons) || !c.Buttons[btn].visible(r.Record)) {
		err = fmt.Errorf("%w: column %d button %d", types.ErrButtonNotFound, col, btn)
	}
	if err != nil {
		t.mu.Unlock()
		return err
	}
	b := c.Buttons[btn]
	rec := r.Record
	t.mu.Unlock()

	var result any
	switch b.Type {
	case ButtonModal, ButtonStatic:
		if t.modal == nil {
			return types.ErrNoModal
		}
		spec := ModalSpec{}
		if b.Modal != nil {
			spec = *b.Modal
		}
		var params map[string]any
		if spec.Params != nil {
			params = spec.Params(rec)
		}
		res, ok, err := t.modal.Open(ctx, spec, b.Type == ButtonStatic, params)
		if err != nil {
			return fmt.Errorf("open modal %q: %w", spec.Component, err)
		}
		if !ok {
			return nil
		}
		result = res
	}

	if b.Click != nil {
		if target := b.Click(rec, result); target != "" {
			if err := t.navigate(ctx, target); err != nil {
				return err
			}
		}
	}

	switch b.Action {
	case ActionReload:
		return t.Reload(ctx, nil)
	case ActionLoad:
		return t.Load(ctx, 1, nil)
	}
	return nil
}

// ClickLink navigates to the target of a link column's Click for a row.
func (t *Table) ClickLink(ctx context.Context, key types.RowKey, col int) error {
	t.mu.Lock()
	c, err := t.column(col)
	var r *Row
	if err == nil {
		r, err = t.rowLocked(key)
	}
	if err != nil {
		t.mu.Unlock()
		return err
	}
	click, rec := c.Click, r.Record
	t.mu.Unlock()

	if click == nil {
		return nil
	}
	if target := click(rec); target != "" {
		return t.navigate(ctx, target)
	}
	return nil
}

func (t *Table) navigate(ctx context.Context, target string) error {
	if t.nav == nil {
		return types.ErrNoNavigator
	}
	if err := t.nav.Navigate(ctx, target); err != nil {
		return fmt.Errorf("navigate %q: %w", target, err)
	}
	return nil
}

// Export hands rows to exp (or the WithExporter default).
// With nil rows the full dataset is exported: the filtered and sorted
// collection in front mode, a refetch of every row in back mode.
func (t *Table) Export(ctx context.Context, exp Exporter, rows []types.Record) error {
	if exp == nil {
		exp = t.exporter
	}
	if exp == nil {
		return types.ErrNoExporter
	}
	if rows == nil {
		var err error
		if rows, err = t.exportRows(ctx); err != nil {
			return err
		}
	}
	if err := exp.Export(ctx, rows, slices.Clone(t.cols)); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

func (t *Table) exportRows(ctx context.Context) ([]types.Record, error) {
	t.mu.Lock()
	if t.mode == ModeFront {
		rows := make([]types.Record, len(t.full))
		for i, k := range t.full {
			rows[i] = k.rec
		}
		t.mu.Unlock()
		return rows, nil
	}
	ps := max(t.total, t.ps)
	req := t.requestLocked(types.NewCycleID(), 1, ps)
	src := t.source
	t.mu.Unlock()

	res, err := src.Fetch(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("fetch export rows: %w", err)
	}
	return res.Rows, nil
}

func (t *Table) emitChange(v ViewState) {
	if t.events.OnChange != nil {
		t.events.OnChange(v)
	}
}

func (t *Table) emitCheckbox(checked []types.Record) {
	if t.events.OnCheckboxChange != nil {
		if checked == nil {
			checked = []types.Record{}
		}
		t.events.OnCheckboxChange(checked)
	}
}

func (t *Table) emitRadio(rec types.Record) {
	if t.events.OnRadioChange != nil {
		t.events.OnRadioChange(rec)
	}
}

func (t *Table) emitSort(s SortState) {
	if t.events.OnSortChange != nil {
		t.events.OnSortChange(s)
	}
}

func (t *Table) emitFilter(s FilterState) {
	if t.events.OnFilterChange != nil {
		t.events.OnFilterChange(s)
	}
}
