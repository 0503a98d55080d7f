package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent), SkipDefaultTransaction: true})
	require.NoError(t, err)
	return db, mock
}

var (
	claimSQL     = regexp.QuoteMeta(`UPDATE "spin_transactions" SET "is_used"=$1 WHERE transaction_id = $2 AND is_used = false AND spin > 0`)
	decrementSQL = regexp.QuoteMeta(`UPDATE "prizes" SET "prize_limit"=prize_limit - 1 WHERE id = $1 AND prize_limit > 0`)
)

func TestClaim(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(claimSQL).WithArgs(true, "TX1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(claimSQL).WithArgs(true, "TX1").WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewSpinRepository(db)
	ok, err := repo.Claim(context.Background(), "TX1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Claim(context.Background(), "TX1")
	require.NoError(t, err)
	assert.False(t, ok, "second claim must not match")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecrementPrize(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(decrementSQL).WithArgs("prize-1").WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := NewSpinRepository(db).DecrementPrize(context.Background(), "prize-1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRollsBackClaim(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec(claimSQL).WithArgs(true, "TX1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	boom := errors.New("prize lookup failed")
	err := NewSpinRepository(db).Transaction(context.Background(), func(repo SpinRepository) error {
		ok, err := repo.Claim(context.Background(), "TX1")
		require.NoError(t, err)
		require.True(t, ok)
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}
