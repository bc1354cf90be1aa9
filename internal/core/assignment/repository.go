package assignment

import "context"

// Repository は割り当て永続化の抽象です。
type Repository interface {
	// Create は重複する組み合わせに ErrAlreadyAssigned、参照先の欠落に ErrDanglingReference を返します。
	Create(ctx context.Context, assignment *Assignment) (*Assignment, error)
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*Assignment, error)
	FindByPair(ctx context.Context, employeeID, projectID int64) (*Assignment, error)
	List(ctx context.Context, filter ListAssignmentsFilter) ([]*Assignment, string, error)
	Count(ctx context.Context) (int, error)
	CountByEmployee(ctx context.Context, employeeID int64) (int, error)
	CountByProject(ctx context.Context, projectID int64) (int, error)
	// DeleteByEmployee は社員の割り当てをすべて削除し、削除件数を返します。
	DeleteByEmployee(ctx context.Context, employeeID int64) (int, error)
	// DeleteByProject はプロジェクトの割り当てをすべて削除し、削除件数を返します。
	DeleteByProject(ctx context.Context, projectID int64) (int, error)
}

// ListAssignmentsFilter は一覧取得用フィルタです。ID が 0 の条件は無視され、Limit が 0 の場合は全件を返します。
// 並び順は割り当て ID の昇順です。
type ListAssignmentsFilter struct {
	EmployeeID int64
	ProjectID  int64
	Limit      int
	Offset     int
}
