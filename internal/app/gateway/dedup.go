package gateway

import "golang.org/x/sync/singleflight"

// Deduper collapses concurrent duplicate upstream requests. It guarantees at
// most one outstanding call per key: callers arriving while a call is in
// flight block and receive that call's result (or error) instead of issuing
// their own. The key is forgotten the moment the call settles, so a later
// caller always triggers a fresh request — this is in-flight collapsing, not
// a response cache.
//
// Deduper is instance-scoped on purpose. Each Client owns one (or is handed
// one explicitly); there is no process-wide map to leak state across
// sessions or tests.
type Deduper struct {
	g singleflight.Group
}

// NewDeduper creates an empty Deduper.
func NewDeduper() *Deduper {
	return &Deduper{}
}

// Shared runs fn under d for the given key, collapsing concurrent callers.
// It is a function rather than a method because methods cannot introduce
// type parameters.
func Shared[T any](d *Deduper, key string, fn func() (T, error)) (T, error) {
	v, err, _ := d.g.Do(key, func() (any, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
