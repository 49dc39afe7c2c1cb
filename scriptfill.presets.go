package scriptfill

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Preset is a named, reusable template.
type Preset struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Template  string    `json:"template"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a copy of the preset
func (p *Preset) Clone() *Preset {
	c := *p
	return &c
}

// presetDocument is the persisted form of a PresetStore
type presetDocument struct {
	Presets []*Preset `json:"presets"`
}

// PresetStore keeps named templates in insertion order and persists them
// as one document. It is not safe for concurrent use.
//
// Mutations always take effect in memory. When the write to the document
// store fails, the mutation stands and an error matching ErrPersistence is
// returned.
type PresetStore struct {
	store   DocumentStore
	presets []*Preset
	now     func() time.Time
	logger  *zap.Logger

	// unloaded guards a stored document that failed to load from being overwritten
	unloaded bool
}

// NewPresetStore creates an empty preset store backed by store.
// A nil now uses time.Now; a nil logger disables logging.
func NewPresetStore(store DocumentStore, now func() time.Time, logger *zap.Logger) *PresetStore {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PresetStore{
		store:  store,
		now:    now,
		logger: logger,
	}
}

// Load replaces the in-memory presets with the persisted document.
// A missing document leaves the store empty.
func (s *PresetStore) Load(ctx context.Context) error {
	data, err := s.store.Load(ctx, DocKeyPresets)
	if err != nil {
		if IsDocumentNotFound(err) {
			s.unloaded = false
			return nil
		}
		s.unloaded = true
		return s.persistFailed(err)
	}

	var doc presetDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		s.unloaded = true
		return s.persistFailed(err)
	}
	s.unloaded = false

	s.presets = s.presets[:0]
	for _, p := range doc.Presets {
		if p == nil || p.Name == "" || s.index(p.Name) >= 0 {
			continue
		}
		s.presets = append(s.presets, p)
	}

	s.logger.Debug(LogMsgPresetsLoaded, zap.Int(LogFieldPresets, len(s.presets)))
	return nil
}

// Save adds a new preset.
// Returns an error matching ErrPresetExists if the name is taken.
func (s *PresetStore) Save(ctx context.Context, name, template string) (*Preset, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewEmptyPresetNameError()
	}
	if s.index(name) >= 0 {
		return nil, NewPresetExistsError(name)
	}

	now := s.now()
	p := &Preset{
		ID:        uuid.NewString(),
		Name:      name,
		Template:  template,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.presets = append(s.presets, p)

	s.logger.Debug(LogMsgPresetSaved, zap.String(LogFieldPreset, name))
	return p.Clone(), s.persist(ctx)
}

// Update replaces the template of an existing preset.
// Returns an error matching ErrPresetNotFound if no preset has that name.
func (s *PresetStore) Update(ctx context.Context, name, template string) (*Preset, error) {
	i := s.index(name)
	if i < 0 {
		return nil, NewPresetNotFoundError(name)
	}

	p := s.presets[i]
	p.Template = template
	p.UpdatedAt = s.now()

	s.logger.Debug(LogMsgPresetUpdated, zap.String(LogFieldPreset, name))
	return p.Clone(), s.persist(ctx)
}

// Delete removes a preset.
// Returns an error matching ErrPresetNotFound if no preset has that name.
func (s *PresetStore) Delete(ctx context.Context, name string) error {
	i := s.index(name)
	if i < 0 {
		return NewPresetNotFoundError(name)
	}

	s.presets = append(s.presets[:i], s.presets[i+1:]...)

	s.logger.Debug(LogMsgPresetDeleted, zap.String(LogFieldPreset, name))
	return s.persist(ctx)
}

// Get returns a copy of the named preset.
func (s *PresetStore) Get(name string) (*Preset, error) {
	i := s.index(name)
	if i < 0 {
		return nil, NewPresetNotFoundError(name)
	}
	return s.presets[i].Clone(), nil
}

// Has reports whether a preset with the name exists
func (s *PresetStore) Has(name string) bool {
	return s.index(name) >= 0
}

// List returns copies of all presets in insertion order.
func (s *PresetStore) List() []*Preset {
	out := make([]*Preset, len(s.presets))
	for i, p := range s.presets {
		out[i] = p.Clone()
	}
	return out
}

// Names returns the preset names in insertion order
func (s *PresetStore) Names() []string {
	names := make([]string, len(s.presets))
	for i, p := range s.presets {
		names[i] = p.Name
	}
	return names
}

// Len returns the number of presets
func (s *PresetStore) Len() int {
	return len(s.presets)
}

// index finds a preset by name, ignoring surrounding whitespace as Save does
func (s *PresetStore) index(name string) int {
	name = strings.TrimSpace(name)
	for i, p := range s.presets {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// Loaded reports whether the last Load read the stored document or found none
func (s *PresetStore) Loaded() bool {
	return !s.unloaded
}

// Reset overwrites the stored document with the in-memory presets,
// even when the last Load failed.
func (s *PresetStore) Reset(ctx context.Context) error {
	s.unloaded = false
	return s.persist(ctx)
}

func (s *PresetStore) persist(ctx context.Context) error {
	if s.unloaded {
		return s.persistFailed(ErrStateNotLoaded)
	}
	data, err := json.MarshalIndent(presetDocument{Presets: s.presets}, "", JSONIndent)
	if err != nil {
		return s.persistFailed(err)
	}
	if err := s.store.Save(ctx, DocKeyPresets, data); err != nil {
		return s.persistFailed(err)
	}
	s.logger.Debug(LogMsgStatePersisted, zap.String(LogFieldDocKey, DocKeyPresets))
	return nil
}

func (s *PresetStore) persistFailed(cause error) error {
	s.logger.Warn(LogMsgPersistFailed,
		zap.String(LogFieldDocKey, DocKeyPresets),
		zap.Error(cause))
	return NewPersistenceError(DocKeyPresets, cause)
}
