package mysql

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"syscall"

	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/failure"
	drivermysql "github.com/go-sql-driver/mysql"
)

// storeFailure is what a database call can fail with. Both concrete results
// of classify satisfy every connector's failure set.
type storeFailure interface {
	failure.Integration
	failure.ProductLookup
}

// classify maps a driver or gorm error onto the failure taxonomy. The server
// answering with an error is a DatabaseError; not reaching it is a
// ConnectionError.
func classify(op string, err error) storeFailure {
	if cerr, ok := failure.FromContext(err); ok {
		return cerr
	}

	var myErr *drivermysql.MySQLError
	if errors.As(err, &myErr) {
		return failure.DatabaseError{
			Message: fmt.Sprintf("%s: mysql error %d", op, myErr.Number),
			Err:     err,
		}
	}

	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return failure.ConnectionError{Code: "ECONNREFUSED", Err: err}
	case errors.Is(err, syscall.ECONNRESET):
		return failure.ConnectionError{Code: "ECONNRESET", Err: err}
	case errors.Is(err, driver.ErrBadConn), errors.Is(err, drivermysql.ErrInvalidConn):
		return failure.ConnectionError{Code: "BAD_CONNECTION", Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		code := "NETWORK"
		if netErr.Timeout() {
			code = "ETIMEDOUT"
		}
		return failure.ConnectionError{Code: code, Err: err}
	}

	return failure.DatabaseError{Message: op, Err: err}
}
