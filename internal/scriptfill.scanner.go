package internal

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Marker is a single {name} occurrence in a template.
// Start/End are rune offsets (End exclusive), ByteStart/ByteEnd the same range in bytes.
type Marker struct {
	Name      string
	Start     int
	End       int
	ByteStart int
	ByteEnd   int
}

// Scanner locates markers in template source
type Scanner struct {
	source string
	logger *zap.Logger
}

// NewScanner creates a new scanner for the given source
func NewScanner(source string, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug(LogMsgScannerCreated, zap.Int(LogFieldSource, len(source)))
	return &Scanner{
		source: source,
		logger: logger,
	}
}

// Scan returns all well-formed markers in left-to-right order.
// A marker starts at '{' and ends at the first following '}'; the name may
// contain anything but '}' (including '{' and newlines). An opening brace
// with no closing brace after it is literal text.
func (s *Scanner) Scan() []Marker {
	s.logger.Debug(LogMsgScanStart)

	var markers []Marker
	pos := 0     // byte position
	runePos := 0 // rune position of pos

	for pos < len(s.source) {
		open := strings.IndexByte(s.source[pos:], MarkerOpen)
		if open < 0 {
			break
		}
		open += pos

		closeRel := strings.IndexByte(s.source[open+1:], MarkerClose)
		if closeRel < 0 {
			// no '}' anywhere after this point, so no later '{' can close either
			break
		}
		closeIdx := open + 1 + closeRel

		start := runePos + utf8.RuneCountInString(s.source[pos:open])
		name := s.source[open+1 : closeIdx]
		end := start + 2 + utf8.RuneCountInString(name)

		markers = append(markers, Marker{
			Name:      name,
			Start:     start,
			End:       end,
			ByteStart: open,
			ByteEnd:   closeIdx + 1,
		})

		pos = closeIdx + 1
		runePos = end
	}

	s.logger.Debug(LogMsgScanEnd, zap.Int(LogFieldMarkers, len(markers)))
	return markers
}

// ScanMarkers is a convenience wrapper that scans source without logging
func ScanMarkers(source string) []Marker {
	return NewScanner(source, nil).Scan()
}

// UniqueMarkerNames returns marker names deduplicated in first-appearance order
func UniqueMarkerNames(source string) []string {
	markers := ScanMarkers(source)
	seen := make(map[string]struct{}, len(markers))
	names := make([]string, 0, len(markers))
	for _, m := range markers {
		if _, ok := seen[m.Name]; ok {
			continue
		}
		seen[m.Name] = struct{}{}
		names = append(names, m.Name)
	}
	return names
}
