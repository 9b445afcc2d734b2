// Package outcome provides a two-variant result used by every fallible
// operation in the checkout flow instead of a bare error.
package outcome

import "fmt"

type variant uint8

const (
	invalid variant = iota
	success
	failure
)

// Outcome holds exactly one of a success payload S or a failure payload F.
// The zero value is invalid; build values with Success or Failure only.
type Outcome[S, F any] struct {
	v variant
	s S
	f F
}

// Success wraps s as the success variant.
func Success[S, F any](s S) Outcome[S, F] {
	return Outcome[S, F]{v: success, s: s}
}

// Failure wraps f as the failure variant.
func Failure[S, F any](f F) Outcome[S, F] {
	return Outcome[S, F]{v: failure, f: f}
}

func (o Outcome[S, F]) IsSuccess() bool { return o.v == success }
func (o Outcome[S, F]) IsFailure() bool { return o.v == failure }

// SuccessValue returns the success payload. It panics when o is not a success:
// asking for the absent variant is a programming error.
func (o Outcome[S, F]) SuccessValue() S {
	if o.v != success {
		panic(fmt.Sprintf("outcome: SuccessValue called on %s", o.v))
	}
	return o.s
}

// FailureValue returns the failure payload. It panics when o is not a failure.
func (o Outcome[S, F]) FailureValue() F {
	if o.v != failure {
		panic(fmt.Sprintf("outcome: FailureValue called on %s", o.v))
	}
	return o.f
}

// Get returns both payload slots and reports whether o is a success.
// Only the slot matching the variant is meaningful.
func (o Outcome[S, F]) Get() (S, F, bool) {
	if o.v == invalid {
		panic("outcome: Get called on zero Outcome")
	}
	return o.s, o.f, o.v == success
}

// Map transforms the success payload and leaves a failure untouched.
func Map[S, T, F any](o Outcome[S, F], fn func(S) T) Outcome[T, F] {
	if o.IsSuccess() {
		return Success[T, F](fn(o.s))
	}
	return Failure[T](o.FailureValue())
}

// MapFailure transforms the failure payload and leaves a success untouched.
func MapFailure[S, F, G any](o Outcome[S, F], fn func(F) G) Outcome[S, G] {
	if o.IsFailure() {
		return Failure[S](fn(o.f))
	}
	return Success[S, G](o.SuccessValue())
}

func (v variant) String() string {
	switch v {
	case success:
		return "success"
	case failure:
		return "failure"
	default:
		return "invalid"
	}
}
