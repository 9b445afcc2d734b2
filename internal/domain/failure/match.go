package failure

import "fmt"

// IntegrationVisitor has one method per integration kind. Adding a kind adds a
// method here, which breaks every implementation until it handles the new case.
type IntegrationVisitor[R any] interface {
	Connection(ConnectionError) R
	Database(DatabaseError) R
	HTTPResponse(HTTPResponseError) R
}

// Visitor has one method per kind in the taxonomy.
type Visitor[R any] interface {
	IntegrationVisitor[R]
	ProductNotFound(ProductNotFound) R
	OutOfStock(OutOfStock) R
	InsufficientFunds(InsufficientFunds) R
	FraudSuspected(FraudSuspected) R
}

// Match dispatches f to the visitor method for its kind.
func Match[R any](f Failure, v Visitor[R]) R {
	switch x := f.(type) {
	case ConnectionError:
		return v.Connection(x)
	case DatabaseError:
		return v.Database(x)
	case HTTPResponseError:
		return v.HTTPResponse(x)
	case ProductNotFound:
		return v.ProductNotFound(x)
	case OutOfStock:
		return v.OutOfStock(x)
	case InsufficientFunds:
		return v.InsufficientFunds(x)
	case FraudSuspected:
		return v.FraudSuspected(x)
	}
	// Failure is sealed; only a nil interface gets here.
	panic(fmt.Sprintf("failure: unmatched %T", f))
}

// MatchIntegration dispatches an integration failure.
func MatchIntegration[R any](f Integration, v IntegrationVisitor[R]) R {
	switch x := f.(type) {
	case ConnectionError:
		return v.Connection(x)
	case DatabaseError:
		return v.Database(x)
	case HTTPResponseError:
		return v.HTTPResponse(x)
	}
	panic(fmt.Sprintf("failure: unmatched integration %T", f))
}

// IsIntegration reports whether f belongs to the integration family.
func IsIntegration(f Failure) bool {
	return f != nil && f.Family() == FamilyIntegration
}
