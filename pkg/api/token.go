package api

// Token is a named capability descriptor that a program can request during
// a run. The type parameter T is the contract shape: it exists only at
// compile time and carries no runtime behavior. Tokens are plain values
// compared by name; NewToken performs no registration and has no side
// effects.
//
// Token names must be unique within any single Environment. A collision is
// a caller error and is not detected by the interpreter.
type Token[T any] struct {
	name string
}

// NewToken creates a token with the given resolution name.
func NewToken[T any](name string) Token[T] {
	return Token[T]{name: name}
}

// TokenName returns the name the interpreter resolves this token by.
// It also makes Token satisfy TokenRef.
func (t Token[T]) TokenName() string {
	return t.name
}

// String implements fmt.Stringer.
func (t Token[T]) String() string {
	return "token:" + t.name
}

// TokenRef is the type-erased view of a Token. The interpreter classifies
// yielded payloads through this interface, so resolution is by name, never
// by object identity.
type TokenRef interface {
	TokenName() string
}
