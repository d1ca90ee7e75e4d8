package isolator

import (
	"context"
	"reflect"
	"testing"
)

func TestWithConfirmOverride(t *testing.T) {
	called := false
	cb := func(ctx context.Context, req SandboxRequest) (bool, error) {
		called = true
		return true, nil
	}

	var o callOptions
	WithConfirm(cb)(&o)

	if !o.confirmSet {
		t.Error("WithConfirm must mark the hook as explicitly set")
	}
	if o.confirm == nil {
		t.Fatal("confirm hook not stored")
	}
	if _, err := o.confirm(context.Background(), SandboxRequest{}); err != nil {
		t.Fatal(err)
	}
	if !called {
		t.Error("stored hook was not the one supplied")
	}
}

func TestWithConfirmNilDisablesPrompt(t *testing.T) {
	// WithConfirm(nil) must be distinguishable from no option at all: it
	// explicitly disables the configured hook for one call.
	var o callOptions
	WithConfirm(nil)(&o)

	if !o.confirmSet {
		t.Error("WithConfirm(nil) must still mark the hook as set")
	}
	if o.confirm != nil {
		t.Error("WithConfirm(nil) must store a nil hook")
	}
}

func TestWithExtraEnv(t *testing.T) {
	var o callOptions
	WithExtraEnv("A=1", "B=2")(&o)
	WithExtraEnv("C=3")(&o)

	want := []string{"A=1", "B=2", "C=3"}
	if !reflect.DeepEqual(o.extraEnv, want) {
		t.Errorf("got %v, want %v", o.extraEnv, want)
	}
}

func TestWithExtraEnvCopiesInput(t *testing.T) {
	env := []string{"A=1"}
	opt := WithExtraEnv(env...)
	env[0] = "A=mutated"

	var o callOptions
	opt(&o)
	if o.extraEnv[0] != "A=1" {
		t.Error("WithExtraEnv must copy the caller's slice")
	}
}
