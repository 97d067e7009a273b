package dberr

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"net"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// Kind is the coarse class of a driver error.
type Kind int

const (
	// KindNone is returned for a nil error.
	KindNone Kind = iota
	// KindObjectMissing means the server rejected the statement because a
	// table, view, function or variable it names does not exist.
	KindObjectMissing
	// KindRejected means the server answered with some other error.
	KindRejected
	// KindConnection means the connection is unusable or the call was cancelled.
	KindConnection
	// KindUnknown covers errors that carry no server or transport signal.
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindObjectMissing:
		return "object missing"
	case KindRejected:
		return "rejected"
	case KindConnection:
		return "connection"
	default:
		return "unknown"
	}
}

// SQLSTATE codes (PostgreSQL family) meaning "no such object".
var pgMissingCodes = map[string]bool{
	"42P01": true, // undefined_table
	"42883": true, // undefined_function
	"42704": true, // undefined_object
	"42703": true, // undefined_column
	"3F000": true, // invalid_schema_name
	"42601": true, // syntax_error: a probe written for another dialect
}

// MySQL server error numbers meaning "no such object".
var mysqlMissingCodes = map[uint16]bool{
	1049: true, // ER_BAD_DB_ERROR
	1054: true, // ER_BAD_FIELD_ERROR
	1064: true, // ER_PARSE_ERROR
	1146: true, // ER_NO_SUCH_TABLE
	1193: true, // ER_UNKNOWN_SYSTEM_VARIABLE
	1305: true, // ER_SP_DOES_NOT_EXIST
}

// MySQL server error numbers reported when the server drops the session.
var mysqlConnCodes = map[uint16]bool{
	1053: true, // ER_SERVER_SHUTDOWN
	1927: true, // ER_CONNECTION_KILLED
	2006: true, // CR_SERVER_GONE_ERROR
	2013: true, // CR_SERVER_LOST
}

// Classify maps a raw error from database/sql or a driver to a Kind.
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, mysql.ErrInvalidConn) || errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) {
		return KindConnection
	}

	var ce *ConnectionError
	if errors.As(err, &ce) {
		return KindConnection
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return classifySQLState(pgErr.Code)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return classifySQLState(string(pqErr.Code))
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch {
		case mysqlMissingCodes[myErr.Number]:
			return KindObjectMissing
		case mysqlConnCodes[myErr.Number]:
			return KindConnection
		default:
			return KindRejected
		}
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return KindConnection
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindConnection
	}

	// database/sql reports a closed pool as a plain error string.
	if strings.Contains(err.Error(), "sql: database is closed") {
		return KindConnection
	}

	return KindUnknown
}

func classifySQLState(code string) Kind {
	switch {
	case pgMissingCodes[code]:
		return KindObjectMissing
	case strings.HasPrefix(code, "08"), strings.HasPrefix(code, "57P"):
		// connection_exception class and admin/crash shutdown.
		return KindConnection
	default:
		return KindRejected
	}
}
