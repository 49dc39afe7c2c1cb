package scriptfill

import (
	"fmt"

	"github.com/itsatony/go-scriptfill/internal"
	"go.uber.org/zap"
)

// resolution is the value chosen for one marker occurrence
type resolution struct {
	value  string
	source ValueSource
}

// pendingField holds the selection transitions a generation has made for one
// field. They are applied to the tracker only by a committing generation.
type pendingField struct {
	cursor    int
	hasCursor bool
	cleared   bool
}

// markerResolver resolves the markers of a single generation pass.
// It reads the tracker but never writes it; transitions collect in pending.
type markerResolver struct {
	library           *ValueLibrary
	actions           *ActionLibrary
	tracker           *Tracker
	deleteOnUse       map[string]struct{}
	overrides         map[string]string
	selector          *internal.Selector
	rng               Rand
	placeholderFormat string
	req               GenerateRequest
	logger            *zap.Logger

	pending  map[string]*pendingField
	resolved map[string]string
	draws    []Draw
}

// resolve picks the replacement for one marker occurrence.
// Priority: override, value pool, synthetic field, placeholder.
func (r *markerResolver) resolve(name string) resolution {
	res, ok := r.lookup(name)
	if !ok {
		r.logger.Debug(LogMsgMarkerUnresolved, zap.String(LogFieldMarker, name))
		return resolution{
			value:  fmt.Sprintf(r.placeholderFormat, name),
			source: SourceUnresolved,
		}
	}

	r.resolved[name] = res.value
	r.logger.Debug(LogMsgMarkerResolved,
		zap.String(LogFieldMarker, name),
		zap.String(LogFieldSource, string(res.source)))
	return res
}

func (r *markerResolver) lookup(name string) (resolution, bool) {
	if v, ok := r.overrides[name]; ok {
		return resolution{value: v, source: SourceOverride}, true
	}

	if pool := r.library.Pool(name); len(pool) > 0 {
		return resolution{value: r.draw(name, pool), source: SourceLibrary}, true
	}

	if v, ok := r.synthetic(name); ok {
		return resolution{value: v, source: SourceSynthetic}, true
	}

	return resolution{}, false
}

// draw selects a pool value and records the implied transition
func (r *markerResolver) draw(field string, pool []string) string {
	p := r.pending[field]

	cursor := r.tracker.Cursor(field, len(pool))
	if p != nil && p.hasCursor {
		cursor = p.cursor
	}

	sel := r.selector.Select(pool, r.usedFunc(field), cursor)

	if p == nil {
		p = &pendingField{}
		r.pending[field] = p
	}
	if sel.Exhausted {
		p.cleared = true
	}
	if sel.NextCursor >= 0 {
		p.cursor = sel.NextCursor
		p.hasCursor = true
	}

	r.draws = append(r.draws, Draw{
		Field:     field,
		Index:     sel.Index,
		Value:     sel.Value,
		Exhausted: sel.Exhausted,
		Cursor:    sel.NextCursor,
	})
	return sel.Value
}

// usedFunc returns the exclusion test for a field. Fields outside the
// delete-on-use set exclude nothing; a used set reset earlier in this pass
// counts as empty.
func (r *markerResolver) usedFunc(field string) func(string) bool {
	if _, ok := r.deleteOnUse[field]; !ok {
		return nil
	}
	if p := r.pending[field]; p != nil && p.cleared {
		return nil
	}
	return func(v string) bool {
		return r.tracker.IsUsed(field, v)
	}
}

func (r *markerResolver) synthetic(name string) (string, bool) {
	switch name {
	case FieldProduct, FieldProductType:
		pt := r.productType()
		return pt, pt != ""

	case FieldAction:
		if r.req.Action != "" {
			return r.req.Action, true
		}
		return r.pick(r.actions.Actions(r.productType()))

	case FieldAtmosphere:
		if r.req.Atmosphere != "" {
			return r.req.Atmosphere, true
		}
		return r.pick(r.actions.Atmospheres())
	}
	return "", false
}

// productType returns the product type in effect at this point of the pass:
// the explicit selection, an override, an earlier resolved product marker,
// or the first known product type.
func (r *markerResolver) productType() string {
	if r.req.ProductType != "" {
		return r.req.ProductType
	}
	for _, field := range []string{FieldProductType, FieldProduct} {
		if v, ok := r.overrides[field]; ok && v != "" {
			return v
		}
	}
	for _, field := range []string{FieldProductType, FieldProduct} {
		if v, ok := r.resolved[field]; ok && v != "" {
			return v
		}
	}
	if types := r.actions.ProductTypes(); len(types) > 0 {
		return types[0]
	}
	return ""
}

func (r *markerResolver) pick(list []string) (string, bool) {
	if len(list) == 0 {
		return "", false
	}
	return list[r.rng.IntN(len(list))], true
}
