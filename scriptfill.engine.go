package scriptfill

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"go.uber.org/zap"
)

// Engine is the main entry point for script generation.
// It owns the value library, consumption tracker, settings and presets of
// one session, and persists session state through a DocumentStore.
//
// An Engine is not safe for concurrent use; front ends serialize access.
type Engine struct {
	config  *engineConfig
	logger  *zap.Logger
	store   DocumentStore
	rng     Rand
	library *ValueLibrary
	actions *ActionLibrary
	tracker *Tracker
	presets *PresetStore

	mode         MatchingMode
	deleteOnUse  map[string]struct{}
	overrides    map[string]string
	template     string
	activePreset string

	// stateUnloaded is set while the stored engine state failed to load;
	// persist refuses to overwrite it until Load or ResetState succeeds.
	stateUnloaded bool
}

// globalRand draws from the math/rand/v2 global source
type globalRand struct{}

func (globalRand) IntN(n int) int {
	return rand.IntN(n)
}

// New creates a new Engine with the given options.
// Nothing is read from the store; call Load or use Open for that.
func New(opts ...Option) (*Engine, error) {
	config := defaultEngineConfig()
	for _, opt := range opts {
		opt(config)
	}

	if !validPlaceholderFormat(config.placeholderFormat) {
		return nil, NewInvalidPlaceholderFormatError(config.placeholderFormat)
	}

	logger := config.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	store := config.store
	if store == nil {
		store = NewMemoryStore()
	}

	rng := config.rng
	if rng == nil {
		rng = globalRand{}
	}

	library := config.library
	if library == nil {
		library = EmptyValueLibrary()
	}

	actions := config.actions
	if actions == nil {
		actions = DefaultActionLibrary()
	}

	e := &Engine{
		config:      config,
		logger:      logger,
		store:       store,
		rng:         rng,
		library:     library,
		actions:     actions,
		tracker:     NewTracker(),
		presets:     NewPresetStore(store, config.now, logger),
		mode:        MatchingModeRandom,
		deleteOnUse: make(map[string]struct{}),
		overrides:   make(map[string]string),
		template:    config.defaultTemplate,
	}

	logger.Debug(LogMsgEngineCreated,
		zap.String(LogFieldMode, e.mode.String()),
		zap.Int(LogFieldFields, library.Len()))
	return e, nil
}

// placeholderSampleName is rendered once to check a placeholder format
const placeholderSampleName = "field"

// validPlaceholderFormat accepts formats whose only verb is a single %s
// (a literal %% is allowed).
func validPlaceholderFormat(format string) bool {
	if strings.Count(format, "%s") != 1 {
		return false
	}
	return !strings.Contains(fmt.Sprintf(format, placeholderSampleName), "%!")
}

// MustNew creates a new Engine and panics if there's an error.
func MustNew(opts ...Option) *Engine {
	engine, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return engine
}

// Open creates an Engine and loads its persisted state and presets.
//
// A load failure is non-fatal: the engine is returned together with an error
// matching ErrPersistence and runs on fresh in-memory state. Until a later
// Load or ResetState succeeds, the documents that failed to load are not
// overwritten and mutations report ErrStateNotLoaded.
func Open(ctx context.Context, opts ...Option) (*Engine, error) {
	e, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return e, e.Load(ctx)
}

// Load reads the engine state and preset documents from the store.
// On failure the affected part keeps its current in-memory value and an
// error matching ErrPersistence is returned.
func (e *Engine) Load(ctx context.Context) error {
	stateErr := e.loadState(ctx)
	presetErr := e.presets.Load(ctx)
	if stateErr != nil {
		return stateErr
	}
	return presetErr
}

// ResetState discards whatever is stored and writes the current in-memory
// state and presets, lifting the protection left by a failed load.
func (e *Engine) ResetState(ctx context.Context) error {
	e.stateUnloaded = false
	e.logger.Info(LogMsgStateReset)
	stateErr := e.persist(ctx)
	presetErr := e.presets.Reset(ctx)
	if stateErr != nil {
		return stateErr
	}
	return presetErr
}

// StateLoaded reports whether the stored state and presets were read successfully
func (e *Engine) StateLoaded() bool {
	return !e.stateUnloaded && e.presets.Loaded()
}

// Store returns the document store the engine persists to
func (e *Engine) Store() DocumentStore {
	return e.store
}

// Presets returns the engine's preset store
func (e *Engine) Presets() *PresetStore {
	return e.presets
}

// Tracker returns the engine's consumption tracker
func (e *Engine) Tracker() *Tracker {
	return e.tracker
}

// MarkUsed records the values of text covered by spans as used, for spans
// whose marker is a delete-on-use field. Unresolved spans are skipped.
// Spans are validated against text before anything changes; state is
// persisted once.
func (e *Engine) MarkUsed(ctx context.Context, text string, spans []Span) error {
	runes := []rune(text)
	for _, span := range spans {
		if span.Start < 0 || span.End < span.Start || span.End > len(runes) {
			return NewInvalidSpanError(span, len(runes))
		}
	}

	added := 0
	for _, span := range spans {
		if span.Source == SourceUnresolved || !e.IsDeleteOnUse(span.Marker) {
			continue
		}
		if e.tracker.MarkUsed(span.Marker, string(runes[span.Start:span.End])) {
			added++
		}
	}

	e.logger.Debug(LogMsgUsedMarked,
		zap.Int(LogFieldSpans, len(spans)),
		zap.Int(LogFieldAdded, added))

	if added == 0 {
		return nil
	}
	return e.persist(ctx)
}

// Commit marks the values of a generation result as used
func (e *Engine) Commit(ctx context.Context, result *GenerationResult) error {
	return e.MarkUsed(ctx, result.Text, result.Spans)
}

// ClearUsed empties the used set of a field. Its sequential cursor is kept.
func (e *Engine) ClearUsed(ctx context.Context, field string) error {
	if !e.tracker.Clear(field) {
		return nil
	}
	e.logger.Debug(LogMsgUsedCleared, zap.String(LogFieldField, field))
	return e.persist(ctx)
}

// ClearAllUsed empties the used set of every field
func (e *Engine) ClearAllUsed(ctx context.Context) error {
	if !e.tracker.ClearAll() {
		return nil
	}
	e.logger.Debug(LogMsgUsedCleared, zap.Int(LogFieldFields, len(e.tracker.Fields())))
	return e.persist(ctx)
}

// MatchingMode returns the current matching mode
func (e *Engine) MatchingMode() MatchingMode {
	return e.mode
}

// SetMatchingMode changes how values are chosen from pools.
func (e *Engine) SetMatchingMode(ctx context.Context, mode MatchingMode) error {
	if !mode.IsValid() {
		return NewInvalidMatchingModeError(string(mode))
	}
	if mode == e.mode {
		return nil
	}
	e.mode = mode
	e.logger.Debug(LogMsgModeChanged, zap.String(LogFieldMode, mode.String()))
	return e.persist(ctx)
}

// DeleteOnUseFields returns the delete-on-use fields in sorted order
func (e *Engine) DeleteOnUseFields() []string {
	return sortedKeys(e.deleteOnUse)
}

// IsDeleteOnUse reports whether a field's used values are excluded from draws
func (e *Engine) IsDeleteOnUse(field string) bool {
	_, ok := e.deleteOnUse[field]
	return ok
}

// SetDeleteOnUseFields replaces the set of delete-on-use fields.
// Used sets of fields leaving the set are kept and apply again if the field returns.
func (e *Engine) SetDeleteOnUseFields(ctx context.Context, fields []string) error {
	set := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		if field = strings.TrimSpace(field); field != "" {
			set[field] = struct{}{}
		}
	}
	e.deleteOnUse = set
	e.logger.Debug(LogMsgDeleteOnUseChanged, zap.Int(LogFieldFields, len(set)))
	return e.persist(ctx)
}

// SetDeleteOnUse adds or removes a single delete-on-use field
func (e *Engine) SetDeleteOnUse(ctx context.Context, field string, enabled bool) error {
	if e.IsDeleteOnUse(field) == enabled {
		return nil
	}
	if enabled {
		e.deleteOnUse[field] = struct{}{}
	} else {
		delete(e.deleteOnUse, field)
	}
	e.logger.Debug(LogMsgDeleteOnUseChanged,
		zap.String(LogFieldField, field),
		zap.Int(LogFieldFields, len(e.deleteOnUse)))
	return e.persist(ctx)
}

// Overrides returns a copy of the persisted custom overrides
func (e *Engine) Overrides() map[string]string {
	return copyStringMap(e.overrides)
}

// SetOverride fixes the value of a field for every following generation
func (e *Engine) SetOverride(ctx context.Context, field, value string) error {
	if v, ok := e.overrides[field]; ok && v == value {
		return nil
	}
	e.overrides[field] = value
	e.logger.Debug(LogMsgOverrideChanged, zap.String(LogFieldField, field))
	return e.persist(ctx)
}

// RemoveOverride drops the custom override of a field
func (e *Engine) RemoveOverride(ctx context.Context, field string) error {
	if _, ok := e.overrides[field]; !ok {
		return nil
	}
	delete(e.overrides, field)
	e.logger.Debug(LogMsgOverrideChanged, zap.String(LogFieldField, field))
	return e.persist(ctx)
}

// SetOverrides replaces all custom overrides
func (e *Engine) SetOverrides(ctx context.Context, overrides map[string]string) error {
	e.overrides = copyStringMap(overrides)
	e.logger.Debug(LogMsgOverrideChanged, zap.Int(LogFieldFields, len(e.overrides)))
	return e.persist(ctx)
}

// Template returns the active template
func (e *Engine) Template() string {
	return e.template
}

// ActivePreset returns the name of the preset the active template came from, if any
func (e *Engine) ActivePreset() string {
	return e.activePreset
}

// SetTemplate replaces the active template.
// The current preset stays selected but is not modified; use UpdatePreset for that.
func (e *Engine) SetTemplate(ctx context.Context, template string) error {
	if template == e.template {
		return nil
	}
	e.template = template
	e.logger.Debug(LogMsgTemplateChanged, zap.Int(LogFieldMarkers, len(ExtractMarkers(template))))
	return e.persist(ctx)
}

// Library returns the current value library
func (e *Engine) Library() *ValueLibrary {
	return e.library
}

// Actions returns the current action library
func (e *Engine) Actions() *ActionLibrary {
	return e.actions
}

// SetLibrary replaces the value library wholesale.
// Tracker state is kept; cursors are normalized against the new pools when read.
func (e *Engine) SetLibrary(library *ValueLibrary) {
	if library == nil {
		library = EmptyValueLibrary()
	}
	e.library = library
	e.logger.Debug(LogMsgLibraryReplaced, zap.Int(LogFieldFields, library.Len()))
}

// SetActionLibrary replaces the action library
func (e *Engine) SetActionLibrary(actions *ActionLibrary) {
	if actions == nil {
		actions = DefaultActionLibrary()
	}
	e.actions = actions
}

// LoadLibraryFile reads a spreadsheet and installs its value and action libraries
func (e *Engine) LoadLibraryFile(path string) (*LoadResult, error) {
	result, err := LoadLibraryFile(path)
	if err != nil {
		return nil, err
	}
	e.SetLibrary(result.Library)
	e.SetActionLibrary(result.Actions)
	return result, nil
}

// Eligible returns the pool values of a field that the next draw may pick,
// before any exhaustion reset.
func (e *Engine) Eligible(field string) []string {
	pool := e.library.Pool(field)
	if !e.IsDeleteOnUse(field) {
		return copyStringSlice(pool)
	}
	out := make([]string, 0, len(pool))
	for _, v := range pool {
		if !e.tracker.IsUsed(field, v) {
			out = append(out, v)
		}
	}
	return out
}

// FieldStatus reports the pool and consumption state of a field
func (e *Engine) FieldStatus(field string) FieldStatus {
	pool := e.library.Pool(field)
	return FieldStatus{
		Field:       field,
		PoolSize:    len(pool),
		Used:        e.tracker.Used(field),
		Eligible:    len(e.Eligible(field)),
		Cursor:      e.tracker.Cursor(field, len(pool)),
		DeleteOnUse: e.IsDeleteOnUse(field),
	}
}

// FieldStatuses reports every library field in library order, followed by
// tracked fields that are no longer in the library.
func (e *Engine) FieldStatuses() []FieldStatus {
	fields := e.library.Fields()
	for _, field := range e.tracker.Fields() {
		if !e.library.Has(field) {
			fields = append(fields, field)
		}
	}

	out := make([]FieldStatus, 0, len(fields))
	for _, field := range fields {
		out = append(out, e.FieldStatus(field))
	}
	return out
}

// SavePreset stores template under a new preset name
func (e *Engine) SavePreset(ctx context.Context, name, template string) (*Preset, error) {
	return e.presets.Save(ctx, name, template)
}

// UpdatePreset replaces the template of an existing preset
func (e *Engine) UpdatePreset(ctx context.Context, name, template string) (*Preset, error) {
	return e.presets.Update(ctx, name, template)
}

// DeletePreset removes a preset. If it was the current preset, no preset is current afterwards;
// the active template is kept.
func (e *Engine) DeletePreset(ctx context.Context, name string) error {
	err := e.presets.Delete(ctx, name)
	if err != nil && !IsPersistenceError(err) {
		return err
	}
	if e.activePreset == strings.TrimSpace(name) {
		e.activePreset = ""
		if perr := e.persist(ctx); perr != nil && err == nil {
			err = perr
		}
	}
	return err
}

// GetPreset returns the named preset
func (e *Engine) GetPreset(name string) (*Preset, error) {
	return e.presets.Get(name)
}

// ListPresets returns all presets in the order they were saved
func (e *Engine) ListPresets() []*Preset {
	return e.presets.List()
}

// UsePreset makes the named preset current and its template active
func (e *Engine) UsePreset(ctx context.Context, name string) error {
	p, err := e.presets.Get(name)
	if err != nil {
		return err
	}
	e.template = p.Template
	e.activePreset = p.Name
	e.logger.Debug(LogMsgPresetActivated, zap.String(LogFieldPreset, name))
	return e.persist(ctx)
}
