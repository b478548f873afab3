package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"landingCms/internal/modules/homepage/application/port"
)

func TestClassifyPgError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		err   error
		write bool
		want  error
	}{
		{name: "connection failure", err: &pgconn.PgError{Code: "08006", Message: "connection failure"}, want: port.ErrAdapterUnavailable},
		{name: "too many connections", err: &pgconn.PgError{Code: "53300"}, want: port.ErrAdapterUnavailable},
		{name: "admin shutdown", err: &pgconn.PgError{Code: "57P01"}, want: port.ErrAdapterUnavailable},
		{name: "missing table", err: &pgconn.PgError{Code: "42P01"}, want: port.ErrAdapterUnavailable},
		{name: "bad json on read", err: &pgconn.PgError{Code: "22P02"}, want: port.ErrMalformed},
		{name: "unique violation on write", err: &pgconn.PgError{Code: "23505"}, write: true, want: port.ErrRejected},
		{name: "check violation on write", err: fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23514"}), write: true, want: port.ErrRejected},
		{name: "deadline", err: context.DeadlineExceeded, want: port.ErrAdapterUnavailable},
		{name: "dial error", err: errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"), want: port.ErrAdapterUnavailable},
		{name: "already classified", err: port.ErrNotFound, want: port.ErrNotFound},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.ErrorIs(t, classifyPgError(tc.err, tc.write), tc.want)
		})
	}
	assert.NoError(t, classifyPgError(nil, false))
}
