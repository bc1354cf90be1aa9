package hr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ogurasousui/hr-records/internal/core/employee"
	"github.com/ogurasousui/hr-records/internal/core/project"
	"github.com/ogurasousui/hr-records/internal/core/review"
)

// TransactionManager はリレーショナルストアのトランザクション制御です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

// EmployeeStore は整合性チェックに必要な社員ストア操作です。
type EmployeeStore interface {
	FindByID(ctx context.Context, id int64) (*employee.Employee, error)
	Delete(ctx context.Context, id int64) error
}

// ProjectStore は整合性チェックに必要なプロジェクトストア操作です。
type ProjectStore interface {
	FindByID(ctx context.Context, id int64) (*project.Project, error)
	Delete(ctx context.Context, id int64) error
}

// AssignmentStore は整合性チェックに必要な割り当てストア操作です。
type AssignmentStore interface {
	CountByEmployee(ctx context.Context, employeeID int64) (int, error)
	CountByProject(ctx context.Context, projectID int64) (int, error)
	DeleteByEmployee(ctx context.Context, employeeID int64) (int, error)
	DeleteByProject(ctx context.Context, projectID int64) (int, error)
}

// ReviewStore は整合性チェックに必要な評価ストア操作です。
type ReviewStore interface {
	Create(ctx context.Context, review *review.Review) (*review.Review, error)
	CountByEmployee(ctx context.Context, employeeID int64) (int, error)
	DeleteByEmployee(ctx context.Context, employeeID int64) (int, error)
}

// Stores は Service が扱うストア群です。
type Stores struct {
	Employees   EmployeeStore
	Projects    ProjectStore
	Assignments AssignmentStore
	Reviews     ReviewStore
	// ReviewsDegraded はドキュメントストアがインメモリで代替されていることを示します。
	ReviewsDegraded bool
}

// Service はリレーショナルストアとドキュメントストアの参照整合性を保ちます。状態は持ちません。
type Service struct {
	stores Stores
	tx     TransactionManager
	logger *slog.Logger
}

// NewService は Service を生成します。
func NewService(stores Stores, tx TransactionManager, logger *slog.Logger) *Service {
	if tx == nil {
		tx = noopTransactionManager{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{stores: stores, tx: tx, logger: logger}
}

// DeleteEmployeeInput は社員削除の入力です。PurgeReviews は Cascade と併用する必要があります。
type DeleteEmployeeInput struct {
	ID           int64
	Cascade      bool
	PurgeReviews bool
}

// DeleteEmployeeResult は社員削除の結果です。
type DeleteEmployeeResult struct {
	EmployeeID         int64 `json:"employee_id"`
	RemovedAssignments int   `json:"removed_assignments"`
	RemovedReviews     int   `json:"removed_reviews"`
	RetainedReviews    int   `json:"retained_reviews"`
}

// DeleteProjectInput はプロジェクト削除の入力です。
type DeleteProjectInput struct {
	ID      int64
	Cascade bool
}

// DeleteProjectResult はプロジェクト削除の結果です。
type DeleteProjectResult struct {
	ProjectID          int64 `json:"project_id"`
	RemovedAssignments int   `json:"removed_assignments"`
}

const (
	stepDeleteAssignments = "delete assignments"
	stepDeleteEmployee    = "delete employee"
	stepPurgeReviews      = "purge reviews"
)

// SubmitReview は社員の存在を確認してから評価を登録します。社員がいなければ何も書き込みません。
func (s *Service) SubmitReview(ctx context.Context, in review.SubmitReviewInput) (*review.Review, error) {
	draft, err := review.Build(in)
	if err != nil {
		return nil, err
	}

	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		_, err := s.stores.Employees.FindByID(txCtx, draft.EmployeeID)
		return err
	}); err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return nil, fmt.Errorf("employee %d: %w", draft.EmployeeID, ErrEmployeeNotFound)
		}
		return nil, err
	}

	return s.stores.Reviews.Create(ctx, draft)
}

// DeleteEmployee は依存データの扱いを指定して社員を削除します。
func (s *Service) DeleteEmployee(ctx context.Context, in DeleteEmployeeInput) (*DeleteEmployeeResult, error) {
	if in.ID <= 0 {
		return nil, ErrInvalidEmployeeID
	}
	if in.PurgeReviews && !in.Cascade {
		return nil, ErrPurgeRequiresCascade
	}
	if s.stores.ReviewsDegraded && (!in.Cascade || in.PurgeReviews) {
		return nil, ErrReviewsUnverifiable
	}

	result := &DeleteEmployeeResult{EmployeeID: in.ID}

	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if _, err := s.stores.Employees.FindByID(txCtx, in.ID); err != nil {
			return err
		}

		reviewCount, err := s.stores.Reviews.CountByEmployee(ctx, in.ID)
		if err != nil {
			return err
		}

		assignmentCount, err := s.stores.Assignments.CountByEmployee(txCtx, in.ID)
		if err != nil {
			return err
		}

		if !in.Cascade {
			if assignmentCount > 0 || reviewCount > 0 {
				return fmt.Errorf("%w: %d assignments, %d reviews", employee.ErrHasDependents, assignmentCount, reviewCount)
			}
			return s.stores.Employees.Delete(txCtx, in.ID)
		}

		removed, err := s.stores.Assignments.DeleteByEmployee(txCtx, in.ID)
		if err != nil {
			return err
		}
		result.RemovedAssignments = removed
		result.RetainedReviews = reviewCount

		return s.stores.Employees.Delete(txCtx, in.ID)
	}); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "employee deleted",
		slog.Int64("employee_id", in.ID),
		slog.Bool("cascade", in.Cascade),
		slog.Int("removed_assignments", result.RemovedAssignments),
	)

	if !in.PurgeReviews {
		if result.RetainedReviews > 0 {
			s.logger.InfoContext(ctx, "reviews retained as historical records",
				slog.Int64("employee_id", in.ID),
				slog.Int("count", result.RetainedReviews),
			)
		}
		return result, nil
	}

	purged, err := s.stores.Reviews.DeleteByEmployee(ctx, in.ID)
	if err != nil {
		stepErr := &StepError{
			Op:        "delete employee",
			Step:      stepPurgeReviews,
			Completed: []string{stepDeleteAssignments, stepDeleteEmployee},
			Err:       err,
		}
		s.logger.ErrorContext(ctx, "partial cross-store failure",
			slog.Int64("employee_id", in.ID),
			slog.String("failed_step", stepErr.Step),
			slog.Any("error", err),
		)
		return nil, stepErr
	}

	result.RemovedReviews = purged
	result.RetainedReviews = 0
	return result, nil
}

// DeleteProject はプロジェクトを削除します。割り当ての削除とプロジェクトの削除は同一トランザクションで行います。
func (s *Service) DeleteProject(ctx context.Context, in DeleteProjectInput) (*DeleteProjectResult, error) {
	if in.ID <= 0 {
		return nil, ErrInvalidProjectID
	}

	result := &DeleteProjectResult{ProjectID: in.ID}

	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if _, err := s.stores.Projects.FindByID(txCtx, in.ID); err != nil {
			return err
		}

		if !in.Cascade {
			count, err := s.stores.Assignments.CountByProject(txCtx, in.ID)
			if err != nil {
				return err
			}
			if count > 0 {
				return fmt.Errorf("%w: %d assignments", project.ErrHasDependents, count)
			}
			return s.stores.Projects.Delete(txCtx, in.ID)
		}

		removed, err := s.stores.Assignments.DeleteByProject(txCtx, in.ID)
		if err != nil {
			return err
		}
		result.RemovedAssignments = removed

		return s.stores.Projects.Delete(txCtx, in.ID)
	}); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "project deleted",
		slog.Int64("project_id", in.ID),
		slog.Bool("cascade", in.Cascade),
		slog.Int("removed_assignments", result.RemovedAssignments),
	)

	return result, nil
}
