package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func TestTxManager_CommitsAndExposesTx(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)
	tm := NewTxManager(mock)

	mock.ExpectBeginTx(pgx.TxOptions{AccessMode: pgx.ReadWrite})
	mock.ExpectCommit()

	err := tm.WithinReadWrite(context.Background(), func(ctx context.Context) error {
		if QueryerFromContext(ctx, mock) == mock {
			t.Errorf("expected transaction queryer inside WithinReadWrite")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithinReadWrite returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTxManager_RollsBackOnError(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)
	tm := NewTxManager(mock)

	mock.ExpectBeginTx(pgx.TxOptions{AccessMode: pgx.ReadOnly})
	mock.ExpectRollback()

	provisionErr := errors.New("identity provider unavailable")
	err := tm.WithinReadOnly(context.Background(), func(context.Context) error {
		return provisionErr
	})
	if !errors.Is(err, provisionErr) {
		t.Fatalf("expected %v, got %v", provisionErr, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTxManager_CommitFailure(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)
	tm := NewTxManager(mock)

	mock.ExpectBeginTx(pgx.TxOptions{AccessMode: pgx.ReadWrite})
	mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))
	mock.ExpectRollback()

	err := tm.WithinReadWrite(context.Background(), func(context.Context) error { return nil })
	if err == nil {
		t.Fatal("expected commit error")
	}
}

func TestTxManager_NestedCallsShareTx(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)
	tm := NewTxManager(mock)

	mock.ExpectBeginTx(pgx.TxOptions{AccessMode: pgx.ReadWrite})
	mock.ExpectCommit()

	err := tm.WithinReadWrite(context.Background(), func(outer context.Context) error {
		return tm.WithinReadOnly(outer, func(inner context.Context) error {
			if QueryerFromContext(inner, mock) != QueryerFromContext(outer, mock) {
				t.Errorf("nested call started a new transaction")
			}
			return nil
		})
	})
	if err != nil {
		t.Fatalf("nested transaction returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTxManager_NilRunsDirectly(t *testing.T) {
	t.Parallel()

	var tm *TxManager
	called := false
	if err := tm.WithinReadWrite(context.Background(), func(context.Context) error {
		called = true
		return nil
	}); err != nil || !called {
		t.Fatalf("expected fn to run without a transaction, called=%v err=%v", called, err)
	}
}
