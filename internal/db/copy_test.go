package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var listingCols = []string{"id", "title"}

func TestCopyFrom_EmptyRows(t *testing.T) {
	n, err := CopyFrom(context.TODO(), nil, "listings", listingCols, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCopyFrom_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"listings"}, listingCols).WillReturnResult(3)

	rows := [][]any{{"1", "a"}, {"2", "b"}, {"3", "c"}}
	n, err := CopyFrom(context.Background(), mock, "listings", listingCols, rows)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFrom_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"listings"}, listingCols).WillReturnError(fmt.Errorf("copy failed"))

	_, err = CopyFrom(context.Background(), mock, "listings", listingCols, [][]any{{"1", "a"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY INTO listings")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyInTx_Commits(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectCopyFrom(pgx.Identifier{"listings"}, listingCols).WillReturnResult(2)
	mock.ExpectCommit()

	n, err := CopyInTx(context.Background(), mock, "listings", listingCols, [][]any{{"1", "a"}, {"2", "b"}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyInTx_RollsBackOnError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectCopyFrom(pgx.Identifier{"listings"}, listingCols).WillReturnError(fmt.Errorf("violates foreign key"))
	mock.ExpectRollback()

	_, err = CopyInTx(context.Background(), mock, "listings", listingCols, [][]any{{"1", "a"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY INTO listings")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyInTx_EmptyRows(t *testing.T) {
	n, err := CopyInTx(context.TODO(), nil, "listings", listingCols, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}
