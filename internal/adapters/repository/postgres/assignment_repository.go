package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ogurasousui/hr-records/internal/core/assignment"
	"github.com/ogurasousui/hr-records/internal/core/calendar"
	pgdb "github.com/ogurasousui/hr-records/internal/platform/db/postgres"
)

const assignmentColumns = `assignment_id, employee_id, project_id, role, assignment_date`

// AssignmentRepository は PostgreSQL を利用した割り当て永続化の実装です。
type AssignmentRepository struct {
	pool pgdb.Queryer
}

// NewAssignmentRepository は AssignmentRepository を生成します。
func NewAssignmentRepository(pool pgdb.Queryer) *AssignmentRepository {
	return &AssignmentRepository{pool: pool}
}

// Create は割り当てを新規作成します。
func (r *AssignmentRepository) Create(ctx context.Context, a *assignment.Assignment) (*assignment.Assignment, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO employee_projects (employee_id, project_id, role, assignment_date)
        VALUES ($1, $2, $3, $4)
        RETURNING `+assignmentColumns,
		a.EmployeeID,
		a.ProjectID,
		a.Role,
		calendar.Normalize(a.AssignmentDate),
	)

	created, err := scanAssignment(row)
	if err != nil {
		return nil, translateAssignmentPgError(err)
	}
	return created, nil
}

// Delete は割り当てを削除します。
func (r *AssignmentRepository) Delete(ctx context.Context, id int64) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM employee_projects WHERE assignment_id = $1`, id)
	if err != nil {
		return translateAssignmentPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return assignment.ErrAssignmentNotFound
	}
	return nil
}

// FindByID は ID で割り当てを取得します。
func (r *AssignmentRepository) FindByID(ctx context.Context, id int64) (*assignment.Assignment, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `SELECT `+assignmentColumns+` FROM employee_projects WHERE assignment_id = $1`, id)

	found, err := scanAssignment(row)
	if err != nil {
		return nil, translateAssignmentPgError(err)
	}
	return found, nil
}

// FindByPair は社員とプロジェクトの組で割り当てを取得します。
func (r *AssignmentRepository) FindByPair(ctx context.Context, employeeID, projectID int64) (*assignment.Assignment, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+assignmentColumns+`
          FROM employee_projects
         WHERE employee_id = $1 AND project_id = $2`, employeeID, projectID)

	found, err := scanAssignment(row)
	if err != nil {
		return nil, translateAssignmentPgError(err)
	}
	return found, nil
}

// List は割り当ての一覧を ID 昇順で取得します。
func (r *AssignmentRepository) List(ctx context.Context, filter assignment.ListAssignmentsFilter) ([]*assignment.Assignment, string, error) {
	if filter.Limit < 0 {
		return nil, "", assignment.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", assignment.ErrInvalidPageToken
	}

	var ph placeholders
	conditions := make([]string, 0, 2)

	if filter.EmployeeID != 0 {
		conditions = append(conditions, "employee_id = "+ph.next(filter.EmployeeID))
	}
	if filter.ProjectID != 0 {
		conditions = append(conditions, "project_id = "+ph.next(filter.ProjectID))
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := `SELECT ` + assignmentColumns + ` FROM employee_projects` + whereClause + `
         ORDER BY assignment_id` + ph.pageClause(filter.Limit, filter.Offset)

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, ph.args...)
	if err != nil {
		return nil, "", translateAssignmentPgError(err)
	}
	defer rows.Close()

	assignments := make([]*assignment.Assignment, 0, filter.Limit)
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, "", translateAssignmentPgError(err)
		}
		assignments = append(assignments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, "", translateAssignmentPgError(err)
	}

	var nextToken string
	if filter.Limit > 0 && len(assignments) > filter.Limit {
		assignments = assignments[:filter.Limit]
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
	}

	return assignments, nextToken, nil
}

// Count は割り当ての総数を返します。
func (r *AssignmentRepository) Count(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM employee_projects`)
}

// CountByEmployee は社員の割り当て数を返します。
func (r *AssignmentRepository) CountByEmployee(ctx context.Context, employeeID int64) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM employee_projects WHERE employee_id = $1`, employeeID)
}

// CountByProject はプロジェクトの割り当て数を返します。
func (r *AssignmentRepository) CountByProject(ctx context.Context, projectID int64) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM employee_projects WHERE project_id = $1`, projectID)
}

// DeleteByEmployee は社員の割り当てをすべて削除します。
func (r *AssignmentRepository) DeleteByEmployee(ctx context.Context, employeeID int64) (int, error) {
	return r.deleteWhere(ctx, `DELETE FROM employee_projects WHERE employee_id = $1`, employeeID)
}

// DeleteByProject はプロジェクトの割り当てをすべて削除します。
func (r *AssignmentRepository) DeleteByProject(ctx context.Context, projectID int64) (int, error) {
	return r.deleteWhere(ctx, `DELETE FROM employee_projects WHERE project_id = $1`, projectID)
}

func (r *AssignmentRepository) count(ctx context.Context, query string, args ...any) (int, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	var n int
	if err := exec.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, translateAssignmentPgError(err)
	}
	return n, nil
}

func (r *AssignmentRepository) deleteWhere(ctx context.Context, query string, args ...any) (int, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, query, args...)
	if err != nil {
		return 0, translateAssignmentPgError(err)
	}
	return int(tag.RowsAffected()), nil
}

func scanAssignment(row pgx.Row) (*assignment.Assignment, error) {
	var (
		a              assignment.Assignment
		assignmentDate time.Time
	)

	if err := row.Scan(&a.ID, &a.EmployeeID, &a.ProjectID, &a.Role, &assignmentDate); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, assignment.ErrAssignmentNotFound
		}
		return nil, err
	}

	a.AssignmentDate = calendar.Normalize(assignmentDate)
	return &a, nil
}

func translateAssignmentPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return assignment.ErrAssignmentNotFound
	}
	if isUnavailable(err) {
		return unavailable(err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return assignment.ErrAlreadyAssigned
		case foreignKeyViolationCode:
			switch pgErr.ConstraintName {
			case "employee_projects_employee_id_fkey":
				return assignment.ErrEmployeeNotFound
			case "employee_projects_project_id_fkey":
				return assignment.ErrProjectNotFound
			default:
				return assignment.ErrDanglingReference
			}
		}
	}

	return err
}
