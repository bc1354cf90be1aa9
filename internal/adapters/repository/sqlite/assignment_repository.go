package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/ogurasousui/hr-records/internal/core/assignment"
	"github.com/ogurasousui/hr-records/internal/core/calendar"
	sqlitedb "github.com/ogurasousui/hr-records/internal/platform/db/sqlite"
)

const assignmentColumns = `assignment_id, employee_id, project_id, role, assignment_date`

// AssignmentRepository は SQLite を利用した割り当て永続化の実装です。
type AssignmentRepository struct {
	db sqlitedb.Queryer
}

// NewAssignmentRepository は AssignmentRepository を生成します。
func NewAssignmentRepository(db sqlitedb.Queryer) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Create は割り当てを新規作成します。
func (r *AssignmentRepository) Create(ctx context.Context, a *assignment.Assignment) (*assignment.Assignment, error) {
	exec := sqlitedb.QueryerFromContext(ctx, r.db)
	row := exec.QueryRowContext(ctx, `
        INSERT INTO EmployeeProjects (employee_id, project_id, role, assignment_date)
        VALUES (?, ?, ?, ?)
        RETURNING `+assignmentColumns,
		a.EmployeeID, a.ProjectID, a.Role, calendar.Format(a.AssignmentDate),
	)

	created, err := scanAssignment(row)
	if err != nil {
		return nil, translateAssignmentError(err)
	}
	return created, nil
}

// Delete は割り当てを削除します。
func (r *AssignmentRepository) Delete(ctx context.Context, id int64) error {
	exec := sqlitedb.QueryerFromContext(ctx, r.db)
	res, err := exec.ExecContext(ctx, `DELETE FROM EmployeeProjects WHERE assignment_id = ?`, id)
	if err != nil {
		return translateAssignmentError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return translateAssignmentError(err)
	}
	if affected == 0 {
		return assignment.ErrAssignmentNotFound
	}
	return nil
}

// FindByID は ID で割り当てを取得します。
func (r *AssignmentRepository) FindByID(ctx context.Context, id int64) (*assignment.Assignment, error) {
	exec := sqlitedb.QueryerFromContext(ctx, r.db)
	row := exec.QueryRowContext(ctx, `SELECT `+assignmentColumns+` FROM EmployeeProjects WHERE assignment_id = ?`, id)

	found, err := scanAssignment(row)
	if err != nil {
		return nil, translateAssignmentError(err)
	}
	return found, nil
}

// FindByPair は社員とプロジェクトの組で割り当てを取得します。
func (r *AssignmentRepository) FindByPair(ctx context.Context, employeeID, projectID int64) (*assignment.Assignment, error) {
	exec := sqlitedb.QueryerFromContext(ctx, r.db)
	row := exec.QueryRowContext(ctx, `
        SELECT `+assignmentColumns+`
          FROM EmployeeProjects
         WHERE employee_id = ? AND project_id = ?`, employeeID, projectID)

	found, err := scanAssignment(row)
	if err != nil {
		return nil, translateAssignmentError(err)
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

	conditions := make([]string, 0, 2)
	args := make([]any, 0, 4)

	if filter.EmployeeID != 0 {
		conditions = append(conditions, "employee_id = ?")
		args = append(args, filter.EmployeeID)
	}
	if filter.ProjectID != 0 {
		conditions = append(conditions, "project_id = ?")
		args = append(args, filter.ProjectID)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	limit := -1
	if filter.Limit > 0 {
		limit = filter.Limit + 1
	}
	args = append(args, limit, filter.Offset)

	query := `SELECT ` + assignmentColumns + ` FROM EmployeeProjects` + whereClause + `
         ORDER BY assignment_id
         LIMIT ? OFFSET ?`

	exec := sqlitedb.QueryerFromContext(ctx, r.db)
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, "", translateAssignmentError(err)
	}
	defer rows.Close()

	assignments := make([]*assignment.Assignment, 0)
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, "", translateAssignmentError(err)
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, "", translateAssignmentError(err)
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
	return r.count(ctx, `SELECT COUNT(*) FROM EmployeeProjects`)
}

// CountByEmployee は社員の割り当て数を返します。
func (r *AssignmentRepository) CountByEmployee(ctx context.Context, employeeID int64) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM EmployeeProjects WHERE employee_id = ?`, employeeID)
}

// CountByProject はプロジェクトの割り当て数を返します。
func (r *AssignmentRepository) CountByProject(ctx context.Context, projectID int64) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM EmployeeProjects WHERE project_id = ?`, projectID)
}

// DeleteByEmployee は社員の割り当てをすべて削除します。
func (r *AssignmentRepository) DeleteByEmployee(ctx context.Context, employeeID int64) (int, error) {
	return r.deleteWhere(ctx, `DELETE FROM EmployeeProjects WHERE employee_id = ?`, employeeID)
}

// DeleteByProject はプロジェクトの割り当てをすべて削除します。
func (r *AssignmentRepository) DeleteByProject(ctx context.Context, projectID int64) (int, error) {
	return r.deleteWhere(ctx, `DELETE FROM EmployeeProjects WHERE project_id = ?`, projectID)
}

func (r *AssignmentRepository) count(ctx context.Context, query string, args ...any) (int, error) {
	exec := sqlitedb.QueryerFromContext(ctx, r.db)
	var n int
	if err := exec.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, translateAssignmentError(err)
	}
	return n, nil
}

func (r *AssignmentRepository) deleteWhere(ctx context.Context, query string, args ...any) (int, error) {
	exec := sqlitedb.QueryerFromContext(ctx, r.db)
	res, err := exec.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, translateAssignmentError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, translateAssignmentError(err)
	}
	return int(affected), nil
}

func scanAssignment(row rowScanner) (*assignment.Assignment, error) {
	var (
		a              assignment.Assignment
		assignmentDate string
	)

	if err := row.Scan(&a.ID, &a.EmployeeID, &a.ProjectID, &a.Role, &assignmentDate); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, assignment.ErrAssignmentNotFound
		}
		return nil, err
	}

	parsed, err := calendar.Parse(assignmentDate)
	if err != nil {
		return nil, err
	}
	a.AssignmentDate = parsed

	return &a, nil
}

func translateAssignmentError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return assignment.ErrAssignmentNotFound
	}
	if isUnavailable(err) {
		return unavailable(err)
	}

	switch classifyConstraint(err) {
	case constraintUnique:
		return assignment.ErrAlreadyAssigned
	case constraintForeignKey:
		return assignment.ErrDanglingReference
	}

	return err
}
