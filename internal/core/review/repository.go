package review

import "context"

// Repository は評価ドキュメント永続化の抽象です。接続障害やタイムアウトは ErrUnavailable として返します。
type Repository interface {
	Create(ctx context.Context, review *Review) (*Review, error)
	// ListByEmployee は評価日の降順で返します。
	ListByEmployee(ctx context.Context, employeeID int64) ([]*Review, error)
	ListAll(ctx context.Context) ([]*Review, error)
	Count(ctx context.Context) (int, error)
	CountByEmployee(ctx context.Context, employeeID int64) (int, error)
	// DeleteByEmployee は社員の評価をすべて削除し、削除件数を返します。
	DeleteByEmployee(ctx context.Context, employeeID int64) (int, error)
	Ping(ctx context.Context) error
}
