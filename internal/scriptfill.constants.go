package internal

// Marker delimiters
const (
	MarkerOpen  = '{'
	MarkerClose = '}'
)

// SelectionMode selects how a pool value is drawn
type SelectionMode int

// Selection mode constants
const (
	SelectionRandom SelectionMode = iota
	SelectionSequential
)

// Selection mode names for logging
const (
	SelectionNameRandom     = "random"
	SelectionNameSequential = "sequential"
	SelectionNameUnknown    = "unknown"
)

// String returns the string representation of the selection mode
func (m SelectionMode) String() string {
	switch m {
	case SelectionRandom:
		return SelectionNameRandom
	case SelectionSequential:
		return SelectionNameSequential
	default:
		return SelectionNameUnknown
	}
}

// Log message constants
const (
	LogMsgScannerCreated = "scanner created"
	LogMsgScanStart      = "starting marker scan"
	LogMsgScanEnd        = "marker scan complete"
	LogMsgPoolExhausted  = "pool exhausted - resetting used set"
)

// Log field constants
const (
	LogFieldSource  = "source_length"
	LogFieldMarkers = "marker_count"
	LogFieldPool    = "pool_size"
	LogFieldMode    = "mode"
)
