package api

// HandlerDefinition is the declarative metadata object the builder layer
// produces for one operation. It is everything the surrounding toolkit
// needs: transports build a program per inbound request through New, and
// code generators read the metadata fields without ever executing a run.
type HandlerDefinition struct {
	// Name is the operation name. Unique within a registry.
	Name string

	// Description documents the operation for generated API surfaces.
	Description string

	// ErrorNames is the declared error set, used by transports to map
	// failures onto wire responses.
	ErrorNames []string

	// Tokens lists the capability names the operation's programs request.
	// Metadata only; the interpreter resolves whatever is actually
	// yielded.
	Tokens []string

	// New builds a fresh suspendable computation for one invocation with
	// the given input. The returned value must be drivable by the
	// interpreter (a Program or a Plan). Programs are one-shot, hence the
	// factory.
	New func(input any) any
}
