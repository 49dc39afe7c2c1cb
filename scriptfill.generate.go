package scriptfill

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/itsatony/go-scriptfill/internal"
	"go.uber.org/zap"
)

// Generate fills the selected template and applies the selection
// transitions it made (cursor advances, exhaustion resets) to the tracker,
// persisting state once. Used sets only grow through MarkUsed.
//
// On a persistence failure the result is still returned, together with an
// error matching ErrPersistence.
func (e *Engine) Generate(ctx context.Context, req GenerateRequest) (*GenerationResult, error) {
	return e.generate(ctx, req, false)
}

// Preview fills the selected template without changing any state.
func (e *Engine) Preview(ctx context.Context, req GenerateRequest) (*GenerationResult, error) {
	return e.generate(ctx, req, true)
}

func (e *Engine) generate(ctx context.Context, req GenerateRequest, preview bool) (*GenerationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	template, err := e.selectTemplate(req)
	if err != nil {
		return nil, err
	}

	e.logger.Debug(LogMsgGenerateStart,
		zap.String(LogFieldMode, e.mode.String()),
		zap.Bool(LogFieldPreview, preview))

	r := e.newResolver(req)
	markers := internal.NewScanner(template, e.logger).Scan()

	var b strings.Builder
	b.Grow(len(template))
	spans := make([]Span, 0, len(markers))
	runes := 0
	last := 0

	for _, m := range markers {
		literal := template[last:m.ByteStart]
		b.WriteString(literal)
		runes += utf8.RuneCountInString(literal)

		res := r.resolve(m.Name)
		start := runes
		b.WriteString(res.value)
		runes += utf8.RuneCountInString(res.value)

		spans = append(spans, Span{
			Start:  start,
			End:    runes,
			Marker: m.Name,
			Value:  res.value,
			Source: res.source,
		})
		last = m.ByteEnd
	}
	b.WriteString(template[last:])
	runes += utf8.RuneCountInString(template[last:])

	result := &GenerationResult{
		Text:     b.String(),
		Spans:    spans,
		Template: template,
		Preview:  preview,
	}

	e.logger.Debug(LogMsgGenerateEnd,
		zap.Int(LogFieldSpans, len(spans)),
		zap.Int(LogFieldOutputRunes, runes),
		zap.Bool(LogFieldPreview, preview))

	if preview {
		return result, nil
	}

	result.Draws = r.draws
	if !e.applyPending(r.pending) {
		return result, nil
	}
	return result, e.persist(ctx)
}

// selectTemplate picks the template text for a request
func (e *Engine) selectTemplate(req GenerateRequest) (string, error) {
	if req.Template != "" {
		return req.Template, nil
	}
	if req.Preset != "" {
		p, err := e.presets.Get(req.Preset)
		if err != nil {
			return "", err
		}
		return p.Template, nil
	}
	return e.template, nil
}

func (e *Engine) newResolver(req GenerateRequest) *markerResolver {
	overrides := copyStringMap(e.overrides)
	for field, value := range req.Overrides {
		overrides[field] = value
	}

	return &markerResolver{
		library:           e.library,
		actions:           e.actions,
		tracker:           e.tracker,
		deleteOnUse:       e.deleteOnUse,
		overrides:         overrides,
		selector:          internal.NewSelector(e.mode.selection(), e.rng, e.logger),
		rng:               e.rng,
		placeholderFormat: e.config.placeholderFormat,
		req:               req,
		logger:            e.logger,
		pending:           make(map[string]*pendingField),
		resolved:          make(map[string]string),
	}
}

// applyPending commits the transitions collected by a resolver.
// Returns true if the tracker changed.
func (e *Engine) applyPending(pending map[string]*pendingField) bool {
	changed := false
	for _, field := range sortedKeys(pending) {
		p := pending[field]
		if p.cleared && e.tracker.Clear(field) {
			e.logger.Debug(LogMsgPoolExhausted, zap.String(LogFieldField, field))
			changed = true
		}
		if p.hasCursor && e.tracker.SetCursor(field, p.cursor) {
			changed = true
		}
	}
	return changed
}

// ExtractMarkers returns the distinct marker names of a template in order of first appearance
func ExtractMarkers(template string) []string {
	return internal.UniqueMarkerNames(template)
}

// SaveOutput writes generated text to path, replacing the file atomically
func SaveOutput(path, text string) error {
	if err := writeFileAtomic(path, []byte(text)); err != nil {
		return NewWriteOutputError(path, err)
	}
	return nil
}
