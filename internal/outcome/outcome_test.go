package outcome

import (
	"errors"
	"strconv"
	"testing"
)

func TestSuccessVariant(t *testing.T) {
	t.Parallel()

	o := Success[int, error](42)
	if !o.IsSuccess() || o.IsFailure() {
		t.Fatalf("expected success variant, got success=%v failure=%v", o.IsSuccess(), o.IsFailure())
	}
	if got := o.SuccessValue(); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
	s, f, ok := o.Get()
	if !ok || s != 42 || f != nil {
		t.Fatalf("unexpected Get result: %v %v %v", s, f, ok)
	}
}

func TestFailureVariant(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	o := Failure[int](boom)
	if o.IsSuccess() || !o.IsFailure() {
		t.Fatalf("expected failure variant")
	}
	if got := o.FailureValue(); !errors.Is(got, boom) {
		t.Fatalf("expected boom, got %v", got)
	}
	if _, _, ok := o.Get(); ok {
		t.Fatal("expected ok=false for failure")
	}
}

func TestAbsentVariantPanics(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		fn   func()
	}{
		{name: "success_value_on_failure", fn: func() { Failure[int]("x").SuccessValue() }},
		{name: "failure_value_on_success", fn: func() { Success[int, string](1).FailureValue() }},
		{name: "zero_success_value", fn: func() { Outcome[int, string]{}.SuccessValue() }},
		{name: "zero_failure_value", fn: func() { Outcome[int, string]{}.FailureValue() }},
		{name: "zero_get", fn: func() { Outcome[int, string]{}.Get() }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			defer func() {
				if r := recover(); r == nil {
					t.Fatal("expected panic")
				}
			}()
			tt.fn()
		})
	}
}

func TestZeroValueIsNeither(t *testing.T) {
	t.Parallel()

	var o Outcome[int, string]
	if o.IsSuccess() || o.IsFailure() {
		t.Fatal("zero Outcome must be neither success nor failure")
	}
}

func TestMap(t *testing.T) {
	t.Parallel()

	ok := Map(Success[int, string](7), strconv.Itoa)
	if ok.SuccessValue() != "7" {
		t.Fatalf("expected \"7\", got %q", ok.SuccessValue())
	}

	called := false
	failed := Map(Failure[int]("nope"), func(i int) string {
		called = true
		return strconv.Itoa(i)
	})
	if called {
		t.Fatal("map function must not run on failure")
	}
	if failed.FailureValue() != "nope" {
		t.Fatalf("failure payload changed: %q", failed.FailureValue())
	}
}

func TestMapFailure(t *testing.T) {
	t.Parallel()

	wrapped := MapFailure(Failure[int]("db down"), func(s string) error {
		return errors.New("create order: " + s)
	})
	if got := wrapped.FailureValue().Error(); got != "create order: db down" {
		t.Fatalf("unexpected wrapped failure %q", got)
	}

	kept := MapFailure(Success[int, string](3), func(string) error { return errors.New("unused") })
	if kept.SuccessValue() != 3 {
		t.Fatalf("success payload changed: %d", kept.SuccessValue())
	}
}
