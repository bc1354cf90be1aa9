package project

import "context"

// Repository はプロジェクト永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, project *Project) (*Project, error)
	Update(ctx context.Context, project *Project) (*Project, error)
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*Project, error)
	List(ctx context.Context, filter ListProjectsFilter) ([]*Project, string, error)
}

// SortKey は一覧の並び順です。空の場合は登録順になります。
type SortKey string

const (
	SortByInsertion SortKey = ""
	SortByName      SortKey = "name"
	SortByStartDate SortKey = "start_date"
	SortByStatus    SortKey = "status"
)

// ListProjectsFilter は一覧取得時の検索条件を表します。Limit が 0 の場合は全件を返します。
type ListProjectsFilter struct {
	Status *Status
	Search string
	SortBy SortKey
	Limit  int
	Offset int
}

// IsValidSortKey は key が既知の並び順かを返します。
func IsValidSortKey(key SortKey) bool {
	switch key {
	case SortByInsertion, SortByName, SortByStartDate, SortByStatus:
		return true
	default:
		return false
	}
}
