package repository

import (
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTranslate(t *testing.T) {
	assert.Nil(t, translate(nil, "op"))

	cases := []struct {
		name string
		in   error
		want error
	}{
		{"gorm not found", gorm.ErrRecordNotFound, ErrNotFound},
		{"mysql duplicate", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, ErrDuplicate},
		{"mysql fk", &mysql.MySQLError{Number: 1451, Message: "Cannot delete"}, ErrForeignKey},
		{"pg unique", &pgconn.PgError{Code: "23505"}, ErrDuplicate},
		{"pg fk", &pgconn.PgError{Code: "23503"}, ErrForeignKey},
		{"pg exclusion", &pgconn.PgError{Code: "23P01", Message: "conflicting key value violates exclusion constraint"}, ErrOverlap},
		{"wrapped pg exclusion", errors.Wrap(&pgconn.PgError{Code: "23P01"}, "insert"), ErrOverlap},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := translate(tc.in, "create reservation")
			assert.True(t, errors.Is(got, tc.want), "got %v", got)
		})
	}

	other := errors.New("connection reset")
	got := translate(other, "list rooms")
	assert.True(t, errors.Is(got, other))
	assert.False(t, errors.Is(got, ErrNotFound))
	assert.Contains(t, got.Error(), "list rooms")
}
