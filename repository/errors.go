package repository

import (
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is a unique index violation (room number, floor number...).
	ErrDuplicate = errors.New("duplicate record")
	// ErrOverlap is the reservation exclusion constraint firing.
	ErrOverlap    = errors.New("overlapping reservation")
	ErrForeignKey = errors.New("foreign key violation")
)

const (
	mysqlDuplicateEntry  = 1062
	mysqlRowIsReferenced = 1451
	mysqlNoReferencedRow = 1452

	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgExclusionViolation  = "23P01"
)

// translate maps gorm and driver errors onto the package sentinels and adds
// op as context. nil stays nil.
func translate(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.Wrap(ErrNotFound, op)
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlDuplicateEntry:
			return errors.Wrapf(ErrDuplicate, "%s: %s", op, myErr.Message)
		case mysqlRowIsReferenced, mysqlNoReferencedRow:
			return errors.Wrapf(ErrForeignKey, "%s: %s", op, myErr.Message)
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return errors.Wrapf(ErrDuplicate, "%s: %s", op, pgErr.Message)
		case pgForeignKeyViolation:
			return errors.Wrapf(ErrForeignKey, "%s: %s", op, pgErr.Message)
		case pgExclusionViolation:
			return errors.Wrapf(ErrOverlap, "%s: %s", op, pgErr.Message)
		}
	}

	return errors.Wrap(err, op)
}
