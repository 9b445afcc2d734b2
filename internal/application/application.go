package application

import "context"

// UseCase is a single application operation. Failures travel inside R (an
// outcome.Outcome) rather than as a separate error.
type UseCase[C any, R any] interface {
	Execute(ctx context.Context, cmd C) R
}
