package employee

import "context"

// Repository は社員永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, employee *Employee) (*Employee, error)
	Update(ctx context.Context, employee *Employee) (*Employee, error)
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*Employee, error)
	// FindByEmail は大文字小文字を区別せずにメールアドレスで検索します。
	FindByEmail(ctx context.Context, email string) (*Employee, error)
	List(ctx context.Context, filter ListEmployeesFilter) ([]*Employee, string, error)
	Count(ctx context.Context) (int, error)
}

// SortKey は一覧の並び順です。空の場合は登録順になります。
type SortKey string

const (
	SortByInsertion  SortKey = ""
	SortByFirstName  SortKey = "first_name"
	SortByLastName   SortKey = "last_name"
	SortByEmail      SortKey = "email"
	SortByHireDate   SortKey = "hire_date"
	SortByDepartment SortKey = "department"
)

// ListEmployeesFilter は一覧取得用フィルタです。Limit が 0 の場合は全件を返します。
type ListEmployeesFilter struct {
	Department string
	Search     string
	SortBy     SortKey
	Limit      int
	Offset     int
}

// IsValidSortKey は key が既知の並び順かを返します。
func IsValidSortKey(key SortKey) bool {
	switch key {
	case SortByInsertion, SortByFirstName, SortByLastName, SortByEmail, SortByHireDate, SortByDepartment:
		return true
	default:
		return false
	}
}
