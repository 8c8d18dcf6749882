package api

// Environment maps token names to concrete implementations. It is supplied
// wholesale by the caller of Run and treated as read-only for the duration
// of a run; the interpreter never mutates it and provides no locking for
// any shared mutable resource an implementation may expose.
type Environment map[string]any

// Lookup returns the implementation registered under name, if any.
func (e Environment) Lookup(name string) (any, bool) {
	impl, ok := e[name]
	return impl, ok
}

// Provide returns a single-entry Environment binding tok to impl.
// The implementation is not validated against the token's contract shape;
// an incomplete implementation fails at first use, not at run start.
func Provide[T any](tok Token[T], impl T) Environment {
	return Environment{tok.TokenName(): impl}
}

// MergeEnvironments combines partial environments by shallow override:
// entries from later environments win. The interpreter itself performs no
// merging; callers merge before invoking Run.
func MergeEnvironments(envs ...Environment) Environment {
	merged := make(Environment)
	for _, env := range envs {
		for name, impl := range env {
			merged[name] = impl
		}
	}
	return merged
}
