package registry

import (
	"errors"
	"testing"

	"github.com/weftlabs/weft/pkg/api"
)

func def(name string) api.HandlerDefinition {
	return api.HandlerDefinition{
		Name: name,
		New:  func(input any) any { return api.Pure(input) },
	}
}

func TestRegisterAndGet(t *testing.T) {
	r := New()

	if err := r.Register(def("getUser")); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	got, err := r.Get("getUser")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Name != "getUser" {
		t.Fatalf("unexpected definition: %+v", got)
	}
}

func TestRegisterValidation(t *testing.T) {
	r := New()

	if err := r.Register(api.HandlerDefinition{Name: "", New: func(any) any { return nil }}); err == nil {
		t.Fatalf("expected empty name to be rejected")
	}
	if err := r.Register(api.HandlerDefinition{Name: "noFactory"}); err == nil {
		t.Fatalf("expected missing factory to be rejected")
	}
}

func TestRegisterDuplicate(t *testing.T) {
	r := New()

	if err := r.Register(def("getUser")); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register(def("getUser")); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
}

func TestGetNotFound(t *testing.T) {
	r := New()

	_, err := r.Get("nope")
	if !errors.Is(err, ErrHandlerNotFound) {
		t.Fatalf("expected ErrHandlerNotFound, got %v", err)
	}
}

func TestListSortedByName(t *testing.T) {
	r := New()

	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := r.Register(def(name)); err != nil {
			t.Fatalf("Register %s failed: %v", name, err)
		}
	}

	defs := r.List()
	if len(defs) != 3 {
		t.Fatalf("expected 3 definitions, got %d", len(defs))
	}
	want := []string{"alpha", "mid", "zeta"}
	for i, name := range want {
		if defs[i].Name != name {
			t.Fatalf("expected %q at %d, got %q", name, i, defs[i].Name)
		}
	}
}
