package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

var (
	// ErrDuplicateUser is returned when an insert collides with the unique
	// email or (provider, sns_id) index.
	ErrDuplicateUser = errors.New("user already exists")

	// ErrDuplicateEdge is returned when a follow edge already exists.
	ErrDuplicateEdge = errors.New("follow edge already exists")

	// ErrNoSuchUser is returned when a write references a user id that does
	// not exist (foreign key violation).
	ErrNoSuchUser = errors.New("referenced user does not exist")
)

// MySQL server error numbers the repositories classify.
const (
	mysqlErrDuplicateEntry  = 1062
	mysqlErrNoReferencedRow = 1452
)

func mysqlErrNumber(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}
