package scriptfill

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
)

// engineState is the persisted form of an Engine's session state.
// The value library is not part of it; it is reloaded from its source file.
type engineState struct {
	Version      int                   `json:"version"`
	Mode         MatchingMode          `json:"mode"`
	DeleteOnUse  []string              `json:"delete_on_use"`
	Overrides    map[string]string     `json:"overrides"`
	Fields       map[string]FieldState `json:"fields"`
	Template     string                `json:"template"`
	ActivePreset string                `json:"active_preset,omitempty"`
}

// snapshotState captures the engine's current state for persistence
func (e *Engine) snapshotState() *engineState {
	return &engineState{
		Version:      EngineStateVersion,
		Mode:         e.mode,
		DeleteOnUse:  sortedKeys(e.deleteOnUse),
		Overrides:    copyStringMap(e.overrides),
		Fields:       e.tracker.Snapshot(),
		Template:     e.template,
		ActivePreset: e.activePreset,
	}
}

// restoreState replaces the engine's session state with st.
// Unknown modes fall back to random.
func (e *Engine) restoreState(st *engineState) {
	e.mode = st.Mode
	if !e.mode.IsValid() {
		e.mode = MatchingModeRandom
	}

	e.deleteOnUse = make(map[string]struct{}, len(st.DeleteOnUse))
	for _, field := range st.DeleteOnUse {
		e.deleteOnUse[field] = struct{}{}
	}

	e.overrides = copyStringMap(st.Overrides)
	e.tracker.Restore(st.Fields)
	e.template = st.Template
	e.activePreset = st.ActivePreset
}

// persist writes the engine state document once.
// A failure leaves in-memory state authoritative and is reported as a persistence error.
func (e *Engine) persist(ctx context.Context) error {
	if e.stateUnloaded {
		return e.persistFailed(DocKeyEngineState, ErrStateNotLoaded)
	}
	data, err := json.MarshalIndent(e.snapshotState(), "", JSONIndent)
	if err != nil {
		return e.persistFailed(DocKeyEngineState, err)
	}

	if err := e.store.Save(ctx, DocKeyEngineState, data); err != nil {
		return e.persistFailed(DocKeyEngineState, err)
	}

	e.logger.Debug(LogMsgStatePersisted, zap.String(LogFieldDocKey, DocKeyEngineState))
	return nil
}

// loadState reads the engine state document. A missing document is not an error.
func (e *Engine) loadState(ctx context.Context) error {
	data, err := e.store.Load(ctx, DocKeyEngineState)
	if err != nil {
		if IsDocumentNotFound(err) {
			e.logger.Debug(LogMsgStateMissing)
			e.stateUnloaded = false
			return nil
		}
		e.stateUnloaded = true
		return e.persistFailed(DocKeyEngineState, err)
	}

	var st engineState
	if err := json.Unmarshal(data, &st); err != nil {
		e.stateUnloaded = true
		return e.persistFailed(DocKeyEngineState, err)
	}

	e.stateUnloaded = false
	e.restoreState(&st)
	e.logger.Debug(LogMsgStateLoaded,
		zap.String(LogFieldMode, e.mode.String()),
		zap.Int(LogFieldFields, len(st.Fields)))
	return nil
}

func (e *Engine) persistFailed(docKey string, cause error) error {
	e.logger.Warn(LogMsgPersistFailed,
		zap.String(LogFieldDocKey, docKey),
		zap.Error(cause))
	return NewPersistenceError(docKey, cause)
}
