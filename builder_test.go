package weft

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuilderProducesDefinition(t *testing.T) {
	t.Parallel()

	def := NewHandler("getUser").
		Description("Load a user by id").
		Fails("NotFound", "Forbidden").
		Uses(storeToken, prefixToken).
		Program(func(s *Scope, input any) (any, error) {
			return input, nil
		}).
		Definition()

	require.Equal(t, "getUser", def.Name)
	require.Equal(t, "Load a user by id", def.Description)
	require.Equal(t, []string{"NotFound", "Forbidden"}, def.ErrorNames)
	require.Equal(t, []string{"UserStore", "Prefix"}, def.Tokens)
	require.NotNil(t, def.New)
}

func TestBuilderProgramBuildsFreshPrograms(t *testing.T) {
	t.Parallel()

	b := NewHandler("echo").Program(func(s *Scope, input any) (any, error) {
		return input, nil
	})
	def := b.Definition()

	ctx := context.Background()
	d := NewDriver()

	// Programs are one-shot, so each invocation must get a fresh one.
	for i := 0; i < 3; i++ {
		out, err := d.Run(ctx, def.New(i), Environment{})
		require.NoError(t, err)
		require.Equal(t, i, out)
	}
}

func TestBuilderPlanFlavor(t *testing.T) {
	t.Parallel()

	def := NewHandler("lookup").
		Plan(func(input any) Plan[any] {
			return Bind(Request(storeToken), func(store userStore) Plan[any] {
				name, err := store.Find(input.(string))
				if err != nil {
					return Fail[any](err)
				}
				return Pure[any](name)
			})
		}).
		Definition()

	env := Provide[userStore](storeToken, mapStore{"u-9": "dave"})

	out, err := NewDriver().Run(context.Background(), def.New("u-9"), env)
	require.NoError(t, err)
	require.Equal(t, "dave", out)
}

func TestBuilderRegister(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()

	b := NewHandler("getUser").Program(func(s *Scope, input any) (any, error) {
		return nil, nil
	})
	require.NoError(t, b.Register(reg))

	// Duplicate names are rejected; MustRegister turns that into a panic.
	require.Error(t, b.Register(reg))
	require.Panics(t, func() { b.MustRegister(reg) })
}

func TestBuilderNilBodyPanics(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() { NewHandler("x").Program(nil) })
	require.Panics(t, func() { NewHandler("x").Plan(nil) })
}
