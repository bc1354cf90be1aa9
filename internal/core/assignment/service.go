package assignment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ogurasousui/hr-records/internal/core/calendar"
	"github.com/ogurasousui/hr-records/internal/core/employee"
	"github.com/ogurasousui/hr-records/internal/core/project"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

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

// EmployeeFinder は割り当て対象の社員を参照します。
type EmployeeFinder interface {
	FindByID(ctx context.Context, id int64) (*employee.Employee, error)
}

// ProjectFinder は割り当て先のプロジェクトを参照します。
type ProjectFinder interface {
	FindByID(ctx context.Context, id int64) (*project.Project, error)
}

const (
	defaultListPageSize = 50
	maxListPageSize     = 200
)

// Service は割り当てに関するユースケースをまとめます。
type Service struct {
	repo      Repository
	employees EmployeeFinder
	projects  ProjectFinder
	clock     Clock
	tx        TransactionManager
}

// UseCase は割り当てユースケースの公開インターフェースです。
type UseCase interface {
	Assign(ctx context.Context, in AssignInput) (*Assignment, error)
	Unassign(ctx context.Context, in UnassignInput) error
	GetAssignment(ctx context.Context, in GetAssignmentInput) (*Assignment, error)
	ListAssignments(ctx context.Context, in ListAssignmentsInput) (*ListAssignmentsResult, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, employees EmployeeFinder, projects ProjectFinder, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, employees: employees, projects: projects, clock: clock, tx: tx}
}

// AssignInput は割り当て作成時の入力です。AssignmentDate が空の場合は当日になります。
type AssignInput struct {
	EmployeeID     int64
	ProjectID      int64
	Role           string
	AssignmentDate string
}

// UnassignInput は割り当て解除時の入力です。ID か EmployeeID/ProjectID の組のいずれかを指定します。
type UnassignInput struct {
	ID         int64
	EmployeeID int64
	ProjectID  int64
}

// GetAssignmentInput は割り当て取得時の入力です。
type GetAssignmentInput struct {
	ID int64
}

// ListAssignmentsInput は一覧取得時の入力です。
type ListAssignmentsInput struct {
	EmployeeID int64
	ProjectID  int64
	PageSize   int
	PageToken  string
}

// ListAssignmentsResult は一覧取得結果を表します。
type ListAssignmentsResult struct {
	Assignments   []*Assignment
	NextPageToken string
}

// Assign は社員をプロジェクトに割り当てます。
func (s *Service) Assign(ctx context.Context, in AssignInput) (*Assignment, error) {
	if in.EmployeeID <= 0 {
		return nil, ErrInvalidEmployeeID
	}
	if in.ProjectID <= 0 {
		return nil, ErrInvalidProjectID
	}

	role := strings.TrimSpace(in.Role)
	if role == "" {
		return nil, ErrInvalidRole
	}

	assignedOn := calendar.Normalize(s.clock.Now())
	if strings.TrimSpace(in.AssignmentDate) != "" {
		parsed, err := calendar.Parse(in.AssignmentDate)
		if err != nil {
			return nil, ErrInvalidDate
		}
		assignedOn = parsed
	}

	var created *Assignment
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if _, err := s.employees.FindByID(txCtx, in.EmployeeID); err != nil {
			if errors.Is(err, employee.ErrEmployeeNotFound) {
				return ErrEmployeeNotFound
			}
			return err
		}
		if _, err := s.projects.FindByID(txCtx, in.ProjectID); err != nil {
			if errors.Is(err, project.ErrProjectNotFound) {
				return ErrProjectNotFound
			}
			return err
		}

		existing, err := s.repo.FindByPair(txCtx, in.EmployeeID, in.ProjectID)
		if err != nil && !errors.Is(err, ErrAssignmentNotFound) {
			return err
		}
		if existing != nil {
			return ErrAlreadyAssigned
		}

		result, err := s.repo.Create(txCtx, &Assignment{
			EmployeeID:     in.EmployeeID,
			ProjectID:      in.ProjectID,
			Role:           role,
			AssignmentDate: assignedOn,
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

// Unassign は割り当てを解除します。
func (s *Service) Unassign(ctx context.Context, in UnassignInput) error {
	byPair := in.EmployeeID > 0 && in.ProjectID > 0
	if in.ID <= 0 && !byPair {
		return ErrInvalidTarget
	}

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		id := in.ID
		if id <= 0 {
			found, err := s.repo.FindByPair(txCtx, in.EmployeeID, in.ProjectID)
			if err != nil {
				return err
			}
			id = found.ID
		}
		return s.repo.Delete(txCtx, id)
	})
}

// GetAssignment は割り当てを取得します。
func (s *Service) GetAssignment(ctx context.Context, in GetAssignmentInput) (*Assignment, error) {
	if in.ID <= 0 {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var result *Assignment
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

// ListAssignments は社員やプロジェクトで絞り込んだ割り当て一覧を取得します。
func (s *Service) ListAssignments(ctx context.Context, in ListAssignmentsInput) (*ListAssignmentsResult, error) {
	if in.EmployeeID < 0 {
		return nil, ErrInvalidEmployeeID
	}
	if in.ProjectID < 0 {
		return nil, ErrInvalidProjectID
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
		assignments []*Assignment
		nextToken   string
	)

	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, token, err := s.repo.List(txCtx, ListAssignmentsFilter{
			EmployeeID: in.EmployeeID,
			ProjectID:  in.ProjectID,
			Limit:      limit,
			Offset:     offset,
		})
		if err != nil {
			return err
		}
		assignments = result
		nextToken = token
		return nil
	}); err != nil {
		return nil, err
	}

	return &ListAssignmentsResult{Assignments: assignments, NextPageToken: nextToken}, nil
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
