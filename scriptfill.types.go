package scriptfill

import (
	"strings"

	"github.com/itsatony/go-scriptfill/internal"
)

// Rand is the source of randomness for draws. *math/rand/v2.Rand satisfies it.
type Rand = internal.Rand

// MatchingMode selects how a field's next value is chosen from its pool.
type MatchingMode string

// Matching modes
const (
	// MatchingModeRandom draws uniformly among eligible values.
	MatchingModeRandom MatchingMode = MatchingModeNameRandom
	// MatchingModeSequential walks the pool in order from the field's cursor.
	MatchingModeSequential MatchingMode = MatchingModeNameSequential
)

// ParseMatchingMode parses a mode name, case-insensitively
func ParseMatchingMode(s string) (MatchingMode, error) {
	mode := MatchingMode(strings.ToLower(strings.TrimSpace(s)))
	if !mode.IsValid() {
		return "", NewInvalidMatchingModeError(s)
	}
	return mode, nil
}

// IsValid reports whether the mode is known
func (m MatchingMode) IsValid() bool {
	return m == MatchingModeRandom || m == MatchingModeSequential
}

// String returns the mode name
func (m MatchingMode) String() string {
	return string(m)
}

func (m MatchingMode) selection() internal.SelectionMode {
	if m == MatchingModeSequential {
		return internal.SelectionSequential
	}
	return internal.SelectionRandom
}

// ValueSource records where a substituted value came from.
type ValueSource string

// Value sources
const (
	SourceOverride   ValueSource = SourceNameOverride
	SourceLibrary    ValueSource = SourceNameLibrary
	SourceSynthetic  ValueSource = SourceNameSynthetic
	SourceUnresolved ValueSource = SourceNameUnresolved
)

// Span locates one substitution in generated text.
// Start and End are rune offsets into the output (End exclusive), so
// End-Start equals the rune length of Value.
type Span struct {
	Start  int         `json:"start"`
	End    int         `json:"end"`
	Marker string      `json:"marker"`
	Value  string      `json:"value"`
	Source ValueSource `json:"source"`
}

// Len returns the span length in runes
func (s Span) Len() int {
	return s.End - s.Start
}

// Draw records a pool selection made during generation and the state
// transition it implies for the field.
type Draw struct {
	Field     string `json:"field"`
	Index     int    `json:"index"`
	Value     string `json:"value"`
	Exhausted bool   `json:"exhausted,omitempty"`
	// Cursor is the field's cursor after the draw; -1 in random mode.
	Cursor int `json:"cursor"`
}

// GenerateRequest selects a template and supplies per-call context.
// Template text wins over Preset; with neither, the active template is used.
type GenerateRequest struct {
	Template    string            `json:"template,omitempty"`
	Preset      string            `json:"preset,omitempty"`
	Overrides   map[string]string `json:"overrides,omitempty"`
	ProductType string            `json:"product_type,omitempty"`
	Action      string            `json:"action,omitempty"`
	Atmosphere  string            `json:"atmosphere,omitempty"`
}

// GenerationResult is the output of one generation pass.
type GenerationResult struct {
	Text     string `json:"text"`
	Spans    []Span `json:"spans"`
	Template string `json:"template"`
	Preview  bool   `json:"preview"`
	Draws    []Draw `json:"draws,omitempty"`
}

// Unresolved returns the names of markers that were emitted as placeholders
func (r *GenerationResult) Unresolved() []string {
	var names []string
	seen := make(map[string]struct{})
	for _, s := range r.Spans {
		if s.Source != SourceUnresolved {
			continue
		}
		if _, ok := seen[s.Marker]; ok {
			continue
		}
		seen[s.Marker] = struct{}{}
		names = append(names, s.Marker)
	}
	return names
}
