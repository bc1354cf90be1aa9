package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ogurasousui/hr-records/internal/core/apperr"
)

type transactionContextKey struct{}

var txContextKey = transactionContextKey{}

type txStarter interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// TransactionManager は database/sql を用いたトランザクション制御を提供します。
// 最も外側のトランザクションに操作タイムアウトを適用します。
type TransactionManager struct {
	db      txStarter
	timeout time.Duration
}

// NewTransactionManager は TransactionManager を生成します。timeout が 0 以下の場合は制限しません。
func NewTransactionManager(db txStarter, timeout time.Duration) *TransactionManager {
	if db == nil {
		return nil
	}
	return &TransactionManager{db: db, timeout: timeout}
}

// WithinReadOnly は読み取り用トランザクションを開始し、fn を実行します。
func (m *TransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if m == nil {
		return fn(ctx)
	}
	return m.within(ctx, fn)
}

// WithinReadWrite は読み書きトランザクションを開始し、fn を実行します。
func (m *TransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if m == nil {
		return fn(ctx)
	}
	return m.within(ctx, fn)
}

func (m *TransactionManager) within(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return errors.New("sqlite: transaction function is required")
	}

	if _, ok := txFromContext(ctx); ok {
		return fn(ctx)
	}

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	// modernc.org/sqlite は読み取り専用オプションを受け付けないため既定値で開始します。
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return translateTimeout(ctx, fmt.Errorf("sqlite: begin tx: %w", err))
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(contextWithTx(ctx, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(translateTimeout(ctx, err), fmt.Errorf("sqlite: rollback: %w", rbErr))
		}
		return translateTimeout(ctx, err)
	}

	if err := tx.Commit(); err != nil {
		return translateTimeout(ctx, fmt.Errorf("sqlite: commit: %w", err))
	}

	committed = true
	return nil
}

func translateTimeout(ctx context.Context, err error) error {
	if errors.Is(err, apperr.ErrStoreUnavailable) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("sqlite: %w: %w", apperr.ErrStoreUnavailable, err)
	}
	return err
}

func contextWithTx(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, txContextKey, tx)
}

func txFromContext(ctx context.Context) (*sql.Tx, bool) {
	if ctx == nil {
		return nil, false
	}
	tx, ok := ctx.Value(txContextKey).(*sql.Tx)
	return tx, ok
}

// QueryerFromContext はコンテキスト内にトランザクションが存在すればそれを返し、存在しなければ fallback を返します。
func QueryerFromContext(ctx context.Context, fallback Queryer) Queryer {
	if tx, ok := txFromContext(ctx); ok {
		return tx
	}
	return fallback
}

// Queryer は *sql.Tx および *sql.DB と互換性のあるクエリ実行インターフェースです。
type Queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
