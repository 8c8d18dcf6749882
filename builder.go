package weft

import (
	"fmt"

	"github.com/weftlabs/weft/pkg/api"
)

// HandlerBuilder provides a fluent API for declaring operations:
//
//	h := weft.NewHandler("getUser").
//	    Description("Load a user by id").
//	    Fails("NotFound").
//	    Uses(Logger, Database).
//	    Program(func(s *weft.Scope, input any) (any, error) { ... })
//
//	if err := h.Register(registry); err != nil {
//	    log.Fatal(err)
//	}
//
// The builder produces the declarative HandlerDefinition the rest of the
// toolkit consumes: transports build a fresh program per request through
// it, and code generators read its metadata without executing anything.
type HandlerBuilder struct {
	def api.HandlerDefinition
}

// NewHandler creates a new handler builder with the given operation name.
func NewHandler(name string) *HandlerBuilder {
	return &HandlerBuilder{
		def: api.HandlerDefinition{Name: name},
	}
}

// Name returns the operation name.
func (b *HandlerBuilder) Name() string {
	return b.def.Name
}

// Description sets the operation description for generated API surfaces.
func (b *HandlerBuilder) Description(d string) *HandlerBuilder {
	b.def.Description = d
	return b
}

// Fails declares the operation's error set by name.
func (b *HandlerBuilder) Fails(names ...string) *HandlerBuilder {
	b.def.ErrorNames = append(b.def.ErrorNames, names...)
	return b
}

// Uses declares the capabilities the operation's programs request.
// Metadata only; resolution follows what is actually yielded.
func (b *HandlerBuilder) Uses(tokens ...api.TokenRef) *HandlerBuilder {
	for _, tok := range tokens {
		b.def.Tokens = append(b.def.Tokens, tok.TokenName())
	}
	return b
}

// Program sets the operation body as an asynchronous-flavor program. Each
// invocation builds a fresh one-shot Program around the body.
func (b *HandlerBuilder) Program(body func(s *Scope, input any) (any, error)) *HandlerBuilder {
	if body == nil {
		panic(fmt.Sprintf("weft: handler %q has nil program body", b.def.Name))
	}
	name := b.def.Name
	b.def.New = func(input any) any {
		return api.NewProgram(name, func(s *Scope) (any, error) {
			return body(s, input)
		})
	}
	return b
}

// Plan sets the operation body as a synchronous-flavor plan factory.
func (b *HandlerBuilder) Plan(build func(input any) Plan[any]) *HandlerBuilder {
	if build == nil {
		panic(fmt.Sprintf("weft: handler %q has nil plan factory", b.def.Name))
	}
	b.def.New = func(input any) any {
		return build(input)
	}
	return b
}

// Definition returns the underlying HandlerDefinition.
// Typically used when interacting with lower-level APIs.
func (b *HandlerBuilder) Definition() HandlerDefinition {
	return b.def
}

// Register registers the built handler with the given registry.
func (b *HandlerBuilder) Register(reg *Registry) error {
	return reg.Register(b.def)
}

// MustRegister is like Register but panics on error.
// Useful for initialization in main().
func (b *HandlerBuilder) MustRegister(reg *Registry) {
	if err := b.Register(reg); err != nil {
		panic(err)
	}
}
