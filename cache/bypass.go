package cache

import "context"

type bypassKey struct{}

// WithBypass returns a context under which cached queries skip the lookup
// and always recompute. Fresh results are still written back, so later
// callers without the bypass see the refreshed value. The scope is carried
// by the context: it nests naturally and never leaks to work running under
// a different context.
func WithBypass(ctx context.Context) context.Context {
	return context.WithValue(ctx, bypassKey{}, true)
}

// Bypassed reports whether ctx is inside a WithBypass scope.
func Bypassed(ctx context.Context) bool {
	v, _ := ctx.Value(bypassKey{}).(bool)
	return v
}
