package scriptfill

import "time"

// Synthetic field names understood without a value pool
const (
	FieldProduct     = "产品"
	FieldProductType = "产品类型"
	FieldAction      = "动作"
	FieldAtmosphere  = "氛围"
)

// Placeholder format for markers that could not be resolved.
// The single %s verb receives the marker name.
const (
	DefaultPlaceholderFormat = "[自定义:%s]"
)

// Matching mode names
const (
	MatchingModeNameRandom     = "random"
	MatchingModeNameSequential = "sequential"
)

// Value source names reported on spans
const (
	SourceNameOverride   = "override"
	SourceNameLibrary    = "library"
	SourceNameSynthetic  = "synthetic"
	SourceNameUnresolved = "unresolved"
)

// Product keywords used to detect product-type columns during ingestion
var ProductColumnKeywords = []string{"裤", "衣", "衫", "裙", "外套", "夹克"}

// Spreadsheet file extensions
const (
	ExtXLSX = ".xlsx"
	ExtXLSM = ".xlsm"
	ExtCSV  = ".csv"
)

// Storage driver names
const (
	StorageDriverNameMemory     = "memory"
	StorageDriverNameFilesystem = "filesystem"
	StorageDriverNamePostgres   = "postgres"
)

// Document keys used for persisted state
const (
	DocKeyEngineState = "engine_state"
	DocKeyPresets     = "presets"
)

// Engine state document version
const (
	EngineStateVersion = 1
)

// Filesystem storage constants
const (
	FilesystemDocSuffix       = ".json"
	FilesystemTempPattern     = ".tmp-*"
	FilesystemDirPermissions  = 0755
	FilesystemFilePermissions = 0644
)

// Postgres storage defaults
const (
	PostgresTablePrefix            = "scriptfill_"
	PostgresDefaultMaxOpenConns    = 10
	PostgresDefaultMaxIdleConns    = 2
	PostgresDefaultConnMaxLifetime = 5 * time.Minute
	PostgresDefaultConnMaxIdleTime = 5 * time.Minute
	PostgresDefaultQueryTimeout    = 30 * time.Second
	PostgresDocumentsTable         = "documents"
	PostgresMigrationsTable        = "schema_migrations"
	FmtMigrationFailed             = "migration %d failed: %w"
)

// Preferences defaults
const (
	PreferencesFileName     = "preferences.yaml"
	DefaultFontSize         = 12
	DefaultPreferencesTheme = "system"
)

// JSON indentation for persisted documents
const (
	JSONIndent = "  "
)

// Log message constants
const (
	LogMsgEngineCreated      = "engine created"
	LogMsgStateLoaded        = "engine state loaded"
	LogMsgStateMissing       = "no persisted engine state - starting fresh"
	LogMsgStateReset         = "stored state reset from memory"
	LogMsgStatePersisted     = "engine state persisted"
	LogMsgPersistFailed      = "persistence failed - continuing in memory"
	LogMsgGenerateStart      = "starting generation"
	LogMsgGenerateEnd        = "generation complete"
	LogMsgMarkerResolved     = "marker resolved"
	LogMsgMarkerUnresolved   = "marker unresolved - emitting placeholder"
	LogMsgUsedMarked         = "values marked as used"
	LogMsgUsedCleared        = "used set cleared"
	LogMsgPoolExhausted      = "pool exhausted - used set reset"
	LogMsgLibraryReplaced    = "value library replaced"
	LogMsgModeChanged        = "matching mode changed"
	LogMsgDeleteOnUseChanged = "delete-on-use fields changed"
	LogMsgOverrideChanged    = "custom override changed"
	LogMsgTemplateChanged    = "active template changed"
	LogMsgPresetSaved        = "preset saved"
	LogMsgPresetUpdated      = "preset updated"
	LogMsgPresetDeleted      = "preset deleted"
	LogMsgPresetActivated    = "preset activated"
	LogMsgPresetsLoaded      = "presets loaded"
)

// Log field constants
const (
	LogFieldField       = "field"
	LogFieldMarker      = "marker"
	LogFieldSource      = "source"
	LogFieldMode        = "mode"
	LogFieldMarkers     = "marker_count"
	LogFieldSpans       = "span_count"
	LogFieldPreview     = "preview"
	LogFieldFields      = "field_count"
	LogFieldAdded       = "added"
	LogFieldPreset      = "preset"
	LogFieldPresets     = "preset_count"
	LogFieldDocKey      = "doc_key"
	LogFieldOutputRunes = "output_runes"
)
