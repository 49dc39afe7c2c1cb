package scriptfill

import (
	"errors"
	"strconv"

	"github.com/itsatony/go-cuserr"
)

// Error message constants - ALL error messages must be constants (NO MAGIC STRINGS)
const (
	// Preset errors
	ErrMsgPresetExists    = "preset already exists"
	ErrMsgPresetNotFound  = "preset not found"
	ErrMsgEmptyPresetName = "preset name cannot be empty"

	// Settings errors
	ErrMsgInvalidMatchingMode      = "invalid matching mode"
	ErrMsgInvalidPlaceholderFormat = "placeholder format must contain exactly one %s verb"

	// Tracking errors
	ErrMsgInvalidSpan = "span out of range for output text"

	// Persistence errors
	ErrMsgPersistenceFailed = "persistence failed"
	ErrMsgEncodeState       = "failed to encode state document"
	ErrMsgDecodeState       = "failed to decode state document"
	ErrMsgStateNotLoaded    = "stored document could not be loaded; not overwriting it until a reload or reset succeeds"

	// Ingestion errors
	ErrMsgUnsupportedFormat = "unsupported library file format"
	ErrMsgReadLibrary       = "failed to read library file"
	ErrMsgEmptySheet        = "library sheet has no header row"

	// Output errors
	ErrMsgWriteOutput = "failed to write output file"

	// Preferences errors
	ErrMsgReadPreferences  = "failed to read preferences file"
	ErrMsgParsePreferences = "failed to parse preferences file"
	ErrMsgWritePreferences = "failed to write preferences file"
)

// Error code constants for categorization
const (
	ErrCodePreset      = "SCRIPTFILL_PRESET"
	ErrCodeSettings    = "SCRIPTFILL_SETTINGS"
	ErrCodeTracking    = "SCRIPTFILL_TRACKING"
	ErrCodePersistence = "SCRIPTFILL_PERSISTENCE"
	ErrCodeIngest      = "SCRIPTFILL_INGEST"
	ErrCodeOutput      = "SCRIPTFILL_OUTPUT"
	ErrCodePreferences = "SCRIPTFILL_PREFERENCES"
)

// Metadata key constants
const (
	MetaKeyPresetName = "preset_name"
	MetaKeyMode       = "mode"
	MetaKeyField      = "field"
	MetaKeyStart      = "start"
	MetaKeyEnd        = "end"
	MetaKeyLength     = "length"
	MetaKeyDocKey     = "doc_key"
	MetaKeyPath       = "path"
	MetaKeyExtension  = "extension"
	MetaKeyFormat     = "format"
)

// Sentinel errors for errors.Is checks
var (
	// ErrPresetExists is returned when saving a preset whose name is taken.
	ErrPresetExists = errors.New(ErrMsgPresetExists)
	// ErrPresetNotFound is returned for updates, deletes and lookups of unknown presets.
	ErrPresetNotFound = errors.New(ErrMsgPresetNotFound)
	// ErrPersistence marks a non-fatal failure to read or write durable state.
	// The in-memory effect of the operation stands.
	ErrPersistence = errors.New(ErrMsgPersistenceFailed)
	// ErrStateNotLoaded is the cause of persistence errors raised while a stored
	// document that failed to load is protected from being overwritten.
	ErrStateNotLoaded = errors.New(ErrMsgStateNotLoaded)
	// ErrInvalidMatchingMode is returned for unknown matching mode names.
	ErrInvalidMatchingMode = errors.New(ErrMsgInvalidMatchingMode)
	// ErrInvalidSpan is returned by MarkUsed for spans outside the output text.
	ErrInvalidSpan = errors.New(ErrMsgInvalidSpan)
	// ErrUnsupportedFormat is returned when a library file type cannot be read.
	ErrUnsupportedFormat = errors.New(ErrMsgUnsupportedFormat)
	// ErrEmptyPresetName is returned when a preset name is blank after trimming.
	ErrEmptyPresetName = errors.New(ErrMsgEmptyPresetName)
)

// NewPresetExistsError creates a duplicate preset name error
func NewPresetExistsError(name string) error {
	return cuserr.WrapStdError(ErrPresetExists, ErrCodePreset, ErrMsgPresetExists).
		WithMetadata(MetaKeyPresetName, name)
}

// NewPresetNotFoundError creates a preset not found error
func NewPresetNotFoundError(name string) error {
	return cuserr.WrapStdError(ErrPresetNotFound, ErrCodePreset, ErrMsgPresetNotFound).
		WithMetadata(MetaKeyPresetName, name)
}

// NewEmptyPresetNameError creates an error for presets saved without a name
func NewEmptyPresetNameError() error {
	return cuserr.WrapStdError(ErrEmptyPresetName, ErrCodePreset, ErrMsgEmptyPresetName)
}

// NewInvalidMatchingModeError creates an error for unknown matching modes
func NewInvalidMatchingModeError(mode string) error {
	return cuserr.WrapStdError(ErrInvalidMatchingMode, ErrCodeSettings, ErrMsgInvalidMatchingMode).
		WithMetadata(MetaKeyMode, mode)
}

// NewInvalidPlaceholderFormatError creates an error for a placeholder format without a name verb
func NewInvalidPlaceholderFormatError(format string) error {
	return cuserr.NewValidationError(ErrCodeSettings, ErrMsgInvalidPlaceholderFormat).
		WithMetadata(MetaKeyFormat, format)
}

// NewInvalidSpanError creates an error for a span that does not fit the text
func NewInvalidSpanError(span Span, length int) error {
	return cuserr.WrapStdError(ErrInvalidSpan, ErrCodeTracking, ErrMsgInvalidSpan).
		WithMetadata(MetaKeyField, span.Marker).
		WithMetadata(MetaKeyStart, strconv.Itoa(span.Start)).
		WithMetadata(MetaKeyEnd, strconv.Itoa(span.End)).
		WithMetadata(MetaKeyLength, strconv.Itoa(length))
}

// NewPersistenceError wraps a storage failure as a non-fatal persistence error
func NewPersistenceError(docKey string, cause error) error {
	return cuserr.WrapStdError(&persistenceError{cause: cause}, ErrCodePersistence, ErrMsgPersistenceFailed).
		WithMetadata(MetaKeyDocKey, docKey)
}

// IsPersistenceError reports whether err is a non-fatal persistence failure
func IsPersistenceError(err error) bool {
	return errors.Is(err, ErrPersistence)
}

// NewUnsupportedFormatError creates an error for unreadable library file types
func NewUnsupportedFormatError(path, ext string) error {
	return cuserr.WrapStdError(ErrUnsupportedFormat, ErrCodeIngest, ErrMsgUnsupportedFormat).
		WithMetadata(MetaKeyPath, path).
		WithMetadata(MetaKeyExtension, ext)
}

// NewReadLibraryError wraps a failure to read or parse a library file
func NewReadLibraryError(path string, cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeIngest, ErrMsgReadLibrary).
		WithMetadata(MetaKeyPath, path)
}

// NewWriteOutputError wraps a failure to write generated text to a file
func NewWriteOutputError(path string, cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeOutput, ErrMsgWriteOutput).
		WithMetadata(MetaKeyPath, path)
}

// NewPreferencesError wraps a failure to read, parse or write the preferences file
func NewPreferencesError(msg, path string, cause error) error {
	return cuserr.WrapStdError(cause, ErrCodePreferences, msg).
		WithMetadata(MetaKeyPath, path)
}

// persistenceError carries the storage cause while matching ErrPersistence
type persistenceError struct {
	cause error
}

func (e *persistenceError) Error() string {
	if e.cause == nil {
		return ErrMsgPersistenceFailed
	}
	return ErrMsgPersistenceFailed + ": " + e.cause.Error()
}

func (e *persistenceError) Is(target error) bool {
	return target == ErrPersistence
}

func (e *persistenceError) Unwrap() error {
	return e.cause
}
