// Package scriptfill fills marketing-script templates from spreadsheet value pools.
//
// Templates mark fillable positions with braces:
//
//	{产品类型}穿{材质}，{动作}
//
// Each marker is replaced by, in order of preference, a fixed override, a
// value drawn from the field's pool, a synthetic value (product type,
// action, atmosphere) or a visible placeholder such as [自定义:材质].
//
// # Basic Usage
//
//	library := scriptfill.NewValueLibrary(nil, map[string][]string{
//	    "材质": {"棉", "麻"},
//	})
//	engine := scriptfill.MustNew(scriptfill.WithLibrary(library))
//	_ = engine.SetOverride(ctx, "产品类型", "裤子")
//
//	result, err := engine.Generate(ctx, scriptfill.GenerateRequest{Template: "{产品类型}穿{材质}"})
//	// result.Text: "裤子穿棉" or "裤子穿麻"
//	// result.Spans[1]: {Start: 3, End: 4, Marker: "材质", Value: "棉", ...}
//
// # Consumption Tracking
//
// Fields flagged delete-on-use exclude values that were marked used, until
// the pool runs dry and the used set resets:
//
//	_ = engine.SetDeleteOnUseFields(ctx, []string{"材质"})
//	result, _ := engine.Generate(ctx, req)
//	_ = engine.Commit(ctx, result) // the drawn 材质 will not repeat until exhausted
//
// Preview draws the same way without touching any state. Span offsets are
// rune offsets into result.Text.
//
// # Matching Modes
//
// MatchingModeRandom draws uniformly among eligible values.
// MatchingModeSequential walks each pool from a persisted cursor, wrapping
// at the end.
//
// # Persistence
//
// Engine state (mode, delete-on-use fields, overrides, used sets, cursors,
// active template) and presets are stored as JSON documents through a
// DocumentStore opened from the driver registry:
//
//	store, err := scriptfill.OpenStorage("filesystem", "/home/me/.scriptfill")
//	engine, err := scriptfill.Open(ctx, scriptfill.WithStore(store))
//
// Storage failures never lose in-memory state: the operation takes effect
// and an error matching ErrPersistence is returned. When a stored document
// cannot be loaded, Open still returns a working engine along with the error,
// and that document is left untouched (writes report ErrStateNotLoaded) until
// a later Load or ResetState succeeds.
package scriptfill
