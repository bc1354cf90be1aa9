package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogurasousui/hr-records/internal/core/apperr"
	"github.com/ogurasousui/hr-records/internal/core/assignment"
	"github.com/ogurasousui/hr-records/internal/core/employee"
	"github.com/ogurasousui/hr-records/internal/core/project"
	"github.com/ogurasousui/hr-records/internal/platform/config"
	sqlitedb "github.com/ogurasousui/hr-records/internal/platform/db/sqlite"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sqlitedb.Open(context.Background(), config.SQLiteConfig{
		Path:        filepath.Join(t.TempDir(), "company.db"),
		BusyTimeout: 5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedEmployee(t *testing.T, repo *EmployeeRepository, first, last, email, dept string) *employee.Employee {
	t.Helper()

	created, err := repo.Create(context.Background(), &employee.Employee{
		FirstName: first, LastName: last, Email: email, HireDate: date(2020, 4, 1), Department: dept,
	})
	require.NoError(t, err)
	return created
}

func seedProject(t *testing.T, repo *ProjectRepository, name string, status project.Status) *project.Project {
	t.Helper()

	created, err := repo.Create(context.Background(), &project.Project{
		Name: name, StartDate: date(2025, 1, 1), Status: status,
	})
	require.NoError(t, err)
	return created
}

func TestEmployeeRepository_RoundTrip(t *testing.T) {
	t.Parallel()

	repo := NewEmployeeRepository(openDB(t))
	ctx := context.Background()

	created := seedEmployee(t, repo, "Ada", "Lovelace", "Ada@Example.com", "Engineering")
	assert.Positive(t, created.ID)
	assert.Equal(t, date(2020, 4, 1), created.HireDate)

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, found)

	byEmail, err := repo.FindByEmail(ctx, "ada@example.COM")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
	assert.Equal(t, "Ada@Example.com", byEmail.Email)

	found.Department = "Research"
	updated, err := repo.Update(ctx, found)
	require.NoError(t, err)
	assert.Equal(t, "Research", updated.Department)

	_, err = repo.FindByID(ctx, 999)
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	_, err = repo.Update(ctx, &employee.Employee{ID: 999, Email: "x@example.com", HireDate: date(2020, 1, 1)})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestEmployeeRepository_EmailUniqueIgnoresCase(t *testing.T) {
	t.Parallel()

	repo := NewEmployeeRepository(openDB(t))
	seedEmployee(t, repo, "Ada", "Lovelace", "ada@example.com", "Engineering")

	_, err := repo.Create(context.Background(), &employee.Employee{
		FirstName: "Other", LastName: "Person", Email: "ADA@EXAMPLE.COM", HireDate: date(2021, 1, 1), Department: "Sales",
	})
	assert.ErrorIs(t, err, employee.ErrEmailAlreadyExists)
	assert.ErrorIs(t, err, apperr.ErrDuplicateKey)

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestEmployeeRepository_EmailUniqueIgnoresNonASCIICase(t *testing.T) {
	t.Parallel()

	repo := NewEmployeeRepository(openDB(t))
	ctx := context.Background()
	created := seedEmployee(t, repo, "Ünal", "Yılmaz", "Ünal@example.com", "Sales")

	found, err := repo.FindByEmail(ctx, "ünal@EXAMPLE.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "Ünal@example.com", found.Email)

	_, err = repo.Create(ctx, &employee.Employee{
		FirstName: "Other", LastName: "Person", Email: "ünal@example.com", HireDate: date(2021, 1, 1), Department: "Sales",
	})
	assert.ErrorIs(t, err, employee.ErrEmailAlreadyExists)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestEmployeeRepository_ListFilterSortPage(t *testing.T) {
	t.Parallel()

	repo := NewEmployeeRepository(openDB(t))
	ctx := context.Background()

	seedEmployee(t, repo, "Carol", "Zimmer", "carol@example.com", "Engineering")
	seedEmployee(t, repo, "alice", "Young", "alice@example.com", "Sales")
	seedEmployee(t, repo, "Bob", "Xu", "bob@example.com", "Engineering")

	all, token, err := repo.List(ctx, employee.ListEmployeesFilter{})
	require.NoError(t, err)
	assert.Empty(t, token)
	require.Len(t, all, 3)
	assert.Equal(t, "Carol", all[0].FirstName)

	sorted, _, err := repo.List(ctx, employee.ListEmployeesFilter{SortBy: employee.SortByFirstName})
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "Bob", "Carol"}, []string{sorted[0].FirstName, sorted[1].FirstName, sorted[2].FirstName})

	engineering, _, err := repo.List(ctx, employee.ListEmployeesFilter{Department: "Engineering"})
	require.NoError(t, err)
	assert.Len(t, engineering, 2)

	searched, _, err := repo.List(ctx, employee.ListEmployeesFilter{Search: "ZIMM"})
	require.NoError(t, err)
	require.Len(t, searched, 1)
	assert.Equal(t, "Carol", searched[0].FirstName)

	page, token, err := repo.List(ctx, employee.ListEmployeesFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page, 2)
	assert.Equal(t, "2", token)

	rest, token, err := repo.List(ctx, employee.ListEmployeesFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, rest, 1)
	assert.Empty(t, token)
}

func TestProjectRepository_RoundTripAndFilter(t *testing.T) {
	t.Parallel()

	repo := NewProjectRepository(openDB(t))
	ctx := context.Background()

	end := date(2025, 12, 31)
	created, err := repo.Create(ctx, &project.Project{
		Name: "Payroll", StartDate: date(2025, 1, 1), EndDate: &end, Status: project.StatusOnHold,
	})
	require.NoError(t, err)
	require.NotNil(t, created.EndDate)
	assert.Equal(t, end, *created.EndDate)
	assert.Equal(t, project.StatusOnHold, created.Status)

	seedProject(t, repo, "Onboarding", project.StatusActive)

	active := project.StatusActive
	list, _, err := repo.List(ctx, project.ListProjectsFilter{Status: &active})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Onboarding", list[0].Name)
	assert.Nil(t, list[0].EndDate)

	created.EndDate = nil
	created.Status = project.StatusCompleted
	updated, err := repo.Update(ctx, created)
	require.NoError(t, err)
	assert.Nil(t, updated.EndDate)
	assert.Equal(t, project.StatusCompleted, updated.Status)

	bad := date(2024, 1, 1)
	created.EndDate = &bad
	_, err = repo.Update(ctx, created)
	assert.ErrorIs(t, err, project.ErrInvalidDateRange)

	require.NoError(t, repo.Delete(ctx, created.ID))
	assert.ErrorIs(t, repo.Delete(ctx, created.ID), project.ErrProjectNotFound)
}

func TestAssignmentRepository_Constraints(t *testing.T) {
	t.Parallel()

	db := openDB(t)
	employees := NewEmployeeRepository(db)
	projects := NewProjectRepository(db)
	repo := NewAssignmentRepository(db)
	ctx := context.Background()

	emp := seedEmployee(t, employees, "Ada", "Lovelace", "ada@example.com", "Engineering")
	proj := seedProject(t, projects, "Engine", project.StatusActive)

	created, err := repo.Create(ctx, &assignment.Assignment{
		EmployeeID: emp.ID, ProjectID: proj.ID, Role: "Lead", AssignmentDate: date(2025, 2, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, date(2025, 2, 1), created.AssignmentDate)

	_, err = repo.Create(ctx, &assignment.Assignment{
		EmployeeID: emp.ID, ProjectID: proj.ID, Role: "Other", AssignmentDate: date(2025, 2, 2),
	})
	assert.ErrorIs(t, err, apperr.ErrDuplicateAssignment)

	_, err = repo.Create(ctx, &assignment.Assignment{
		EmployeeID: 999, ProjectID: proj.ID, Role: "Ghost", AssignmentDate: date(2025, 2, 2),
	})
	assert.ErrorIs(t, err, apperr.ErrDanglingReference)

	assert.ErrorIs(t, employees.Delete(ctx, emp.ID), apperr.ErrHasDependents)
	assert.ErrorIs(t, projects.Delete(ctx, proj.ID), apperr.ErrHasDependents)

	pair, err := repo.FindByPair(ctx, emp.ID, proj.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, pair.ID)

	n, err := repo.CountByEmployee(ctx, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	removed, err := repo.DeleteByProject(ctx, proj.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	require.NoError(t, employees.Delete(ctx, emp.ID))
	require.NoError(t, projects.Delete(ctx, proj.ID))
}

func TestAssignmentRepository_ListAndDeleteByEmployee(t *testing.T) {
	t.Parallel()

	db := openDB(t)
	employees := NewEmployeeRepository(db)
	projects := NewProjectRepository(db)
	repo := NewAssignmentRepository(db)
	ctx := context.Background()

	ada := seedEmployee(t, employees, "Ada", "Lovelace", "ada@example.com", "Engineering")
	alan := seedEmployee(t, employees, "Alan", "Turing", "alan@example.com", "Research")
	p1 := seedProject(t, projects, "Engine", project.StatusActive)
	p2 := seedProject(t, projects, "Bombe", project.StatusActive)

	for _, pair := range [][2]int64{{ada.ID, p1.ID}, {alan.ID, p1.ID}, {ada.ID, p2.ID}} {
		_, err := repo.Create(ctx, &assignment.Assignment{EmployeeID: pair[0], ProjectID: pair[1], Role: "Member", AssignmentDate: date(2025, 3, 1)})
		require.NoError(t, err)
	}

	byProject, _, err := repo.List(ctx, assignment.ListAssignmentsFilter{ProjectID: p1.ID})
	require.NoError(t, err)
	assert.Len(t, byProject, 2)

	both, _, err := repo.List(ctx, assignment.ListAssignmentsFilter{EmployeeID: ada.ID, ProjectID: p2.ID})
	require.NoError(t, err)
	assert.Len(t, both, 1)

	removed, err := repo.DeleteByEmployee(ctx, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	_, err = repo.FindByPair(ctx, ada.ID, p1.ID)
	assert.ErrorIs(t, err, assignment.ErrAssignmentNotFound)
}

func TestRepositories_ShareTransaction(t *testing.T) {
	t.Parallel()

	db := openDB(t)
	tm := sqlitedb.NewTransactionManager(db, time.Second)
	employees := NewEmployeeRepository(db)
	ctx := context.Background()

	err := tm.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if _, err := employees.Create(txCtx, &employee.Employee{
			FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", HireDate: date(2020, 4, 1), Department: "Engineering",
		}); err != nil {
			return err
		}
		inside, err := employees.Count(txCtx)
		if err != nil {
			return err
		}
		assert.Equal(t, 1, inside)
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	n, err := employees.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
