package project

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ogurasousui/hr-records/internal/core/calendar"
)

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

const (
	defaultListPageSize = 50
	maxListPageSize     = 200
)

// Service はプロジェクトに関するユースケースをまとめます。
type Service struct {
	repo Repository
	tx   TransactionManager
}

// UseCase はプロジェクトユースケースの公開インターフェースです。
type UseCase interface {
	CreateProject(ctx context.Context, in CreateProjectInput) (*Project, error)
	GetProject(ctx context.Context, in GetProjectInput) (*Project, error)
	ListProjects(ctx context.Context, in ListProjectsInput) (*ListProjectsResult, error)
	UpdateProject(ctx context.Context, in UpdateProjectInput) (*Project, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, tx TransactionManager) *Service {
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, tx: tx}
}

// CreateProjectInput はプロジェクト作成時の入力です。
type CreateProjectInput struct {
	Name      string
	StartDate string
	EndDate   string
	Status    string
}

// UpdateProjectInput はプロジェクト更新時の入力です。EndDate に空文字を渡すと終了日を消去します。
type UpdateProjectInput struct {
	ID        int64
	Name      *string
	StartDate *string
	EndDate   *string
	Status    *string
}

// GetProjectInput はプロジェクト取得時の入力です。
type GetProjectInput struct {
	ID int64
}

// ListProjectsInput は一覧取得時の入力です。
type ListProjectsInput struct {
	Status    string
	Search    string
	SortBy    string
	PageSize  int
	PageToken string
}

// ListProjectsResult は一覧取得結果を表します。
type ListProjectsResult struct {
	Projects      []*Project
	NextPageToken string
}

// CreateProject は新しいプロジェクトを作成します。
func (s *Service) CreateProject(ctx context.Context, in CreateProjectInput) (*Project, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrInvalidName
	}

	startDate, err := calendar.Parse(in.StartDate)
	if err != nil {
		return nil, ErrInvalidStartDate
	}

	endDate, err := parseOptionalDate(in.EndDate)
	if err != nil {
		return nil, err
	}

	if err := validatePeriod(startDate, endDate); err != nil {
		return nil, err
	}

	status := StatusPlanning
	if strings.TrimSpace(in.Status) != "" {
		status, err = ParseStatus(in.Status)
		if err != nil {
			return nil, err
		}
	}

	var created *Project
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		result, err := s.repo.Create(txCtx, &Project{
			Name:      name,
			StartDate: startDate,
			EndDate:   endDate,
			Status:    status,
		})
		if err != nil {
			return err
		}
		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	return created, nil
}

// UpdateProject はプロジェクト情報を更新します。
func (s *Service) UpdateProject(ctx context.Context, in UpdateProjectInput) (*Project, error) {
	if in.ID <= 0 {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var updated *Project
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}

		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return ErrInvalidName
			}
			existing.Name = name
		}

		if in.StartDate != nil {
			startDate, err := calendar.Parse(*in.StartDate)
			if err != nil {
				return ErrInvalidStartDate
			}
			existing.StartDate = startDate
		}

		if in.EndDate != nil {
			endDate, err := parseOptionalDate(*in.EndDate)
			if err != nil {
				return err
			}
			existing.EndDate = endDate
		}

		if in.Status != nil {
			status, err := ParseStatus(*in.Status)
			if err != nil {
				return err
			}
			existing.Status = status
		}

		if err := validatePeriod(existing.StartDate, existing.EndDate); err != nil {
			return err
		}

		result, err := s.repo.Update(txCtx, existing)
		if err != nil {
			return err
		}
		updated = result
		return nil
	}); err != nil {
		return nil, err
	}

	return updated, nil
}

// GetProject はプロジェクトを取得します。
func (s *Service) GetProject(ctx context.Context, in GetProjectInput) (*Project, error) {
	if in.ID <= 0 {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var result *Project
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// ListProjects はプロジェクトの一覧を取得します。
func (s *Service) ListProjects(ctx context.Context, in ListProjectsInput) (*ListProjectsResult, error) {
	sortBy := SortKey(strings.ToLower(strings.TrimSpace(in.SortBy)))
	if !IsValidSortKey(sortBy) {
		return nil, ErrInvalidSortKey
	}

	var statusPtr *Status
	if strings.TrimSpace(in.Status) != "" {
		status, err := ParseStatus(in.Status)
		if err != nil {
			return nil, err
		}
		statusPtr = &status
	}

	limit, err := normalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}

	offset, err := parsePageToken(in.PageToken)
	if err != nil {
		return nil, err
	}

	var (
		projects  []*Project
		nextToken string
	)

	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, token, err := s.repo.List(txCtx, ListProjectsFilter{
			Status: statusPtr,
			Search: strings.TrimSpace(in.Search),
			SortBy: sortBy,
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			return err
		}
		projects = result
		nextToken = token
		return nil
	}); err != nil {
		return nil, err
	}

	return &ListProjectsResult{Projects: projects, NextPageToken: nextToken}, nil
}

func parseOptionalDate(raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	t, err := calendar.Parse(raw)
	if err != nil {
		return nil, ErrInvalidEndDate
	}
	return &t, nil
}

func validatePeriod(start time.Time, end *time.Time) error {
	if end == nil {
		return nil
	}
	if end.Before(start) {
		return ErrInvalidDateRange
	}
	return nil
}

func normalizePageSize(pageSize int) (int, error) {
	if pageSize <= 0 {
		return defaultListPageSize, nil
	}
	if pageSize > maxListPageSize {
		return 0, ErrInvalidPageSize
	}
	return pageSize, nil
}

func parsePageToken(token string) (int, error) {
	if strings.TrimSpace(token) == "" {
		return 0, nil
	}

	offset, err := strconv.Atoi(token)
	if err != nil || offset < 0 {
		return 0, ErrInvalidPageToken
	}

	return offset, nil
}
