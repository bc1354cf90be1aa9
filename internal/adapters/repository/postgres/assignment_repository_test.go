package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/ogurasousui/hr-records/internal/core/apperr"
	"github.com/ogurasousui/hr-records/internal/core/assignment"
	pgdb "github.com/ogurasousui/hr-records/internal/platform/db/postgres"
)

func TestTranslateAssignmentPgError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want error
	}{
		{name: "duplicate pair", err: &pgconn.PgError{Code: uniqueViolationCode}, want: assignment.ErrAlreadyAssigned},
		{name: "missing employee", err: &pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "employee_projects_employee_id_fkey"}, want: assignment.ErrEmployeeNotFound},
		{name: "missing project", err: &pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "employee_projects_project_id_fkey"}, want: assignment.ErrProjectNotFound},
		{name: "unknown fk", err: &pgconn.PgError{Code: foreignKeyViolationCode}, want: apperr.ErrDanglingReference},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := translateAssignmentPgError(tc.err); !errors.Is(got, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}

	if !errors.Is(translateAssignmentPgError(&pgconn.PgError{Code: uniqueViolationCode}), apperr.ErrDuplicateAssignment) {
		t.Fatalf("expected duplicate pair to be a duplicate assignment")
	}
}

func TestAssignmentRepository_DeleteByProjectInTransaction(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewAssignmentRepository(mock)
	projects := NewProjectRepository(mock)
	tm := pgdb.NewTransactionManager(mock, time.Second)

	mock.ExpectBeginTx(pgx.TxOptions{AccessMode: pgx.ReadWrite})
	mock.ExpectExec(`DELETE FROM employee_projects WHERE project_id = \$1`).
		WithArgs(int64(5)).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectExec(`DELETE FROM projects WHERE project_id = \$1`).
		WithArgs(int64(5)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	var removed int
	err = tm.WithinReadWrite(context.Background(), func(ctx context.Context) error {
		n, err := repo.DeleteByProject(ctx, 5)
		if err != nil {
			return err
		}
		removed = n
		return projects.Delete(ctx, 5)
	})
	if err != nil {
		t.Fatalf("transaction returned error: %v", err)
	}
	if removed != 3 {
		t.Fatalf("expected 3 removed assignments, got %d", removed)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAssignmentRepository_CountByEmployee(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewAssignmentRepository(mock)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM employee_projects WHERE employee_id = \$1`).
		WithArgs(int64(2)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(4))

	n, err := repo.CountByEmployee(context.Background(), 2)
	if err != nil {
		t.Fatalf("CountByEmployee returned error: %v", err)
	}
	if n != 4 {
		t.Fatalf("expected 4, got %d", n)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAssignmentRepository_List_ByEmployeeAndProject(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewAssignmentRepository(mock)
	assigned := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM employee_projects WHERE employee_id = \$1 AND project_id = \$2`).
		WithArgs(int64(1), int64(2), 0).
		WillReturnRows(pgxmock.NewRows([]string{"assignment_id", "employee_id", "project_id", "role", "assignment_date"}).
			AddRow(int64(10), int64(1), int64(2), "Lead", assigned))

	assignments, _, err := repo.List(context.Background(), assignment.ListAssignmentsFilter{EmployeeID: 1, ProjectID: 2})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(assignments) != 1 || assignments[0].Role != "Lead" || !assignments[0].AssignmentDate.Equal(assigned) {
		t.Fatalf("unexpected assignments: %+v", assignments)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
