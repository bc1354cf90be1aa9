package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ogurasousui/hr-records/internal/core/calendar"
	"github.com/ogurasousui/hr-records/internal/core/employee"
	pgdb "github.com/ogurasousui/hr-records/internal/platform/db/postgres"
)

const employeeColumns = `employee_id, first_name, last_name, email, hire_date, department`

var employeeSortColumns = map[employee.SortKey]string{
	employee.SortByInsertion:  "employee_id",
	employee.SortByFirstName:  "lower(first_name), employee_id",
	employee.SortByLastName:   "lower(last_name), employee_id",
	employee.SortByEmail:      "lower(email), employee_id",
	employee.SortByHireDate:   "hire_date, employee_id",
	employee.SortByDepartment: "department, employee_id",
}

// EmployeeRepository は PostgreSQL を利用した社員永続化の実装です。
type EmployeeRepository struct {
	pool pgdb.Queryer
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(pool pgdb.Queryer) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// Create は社員を新規作成します。
func (r *EmployeeRepository) Create(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO employees (first_name, last_name, email, hire_date, department)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING `+employeeColumns,
		e.FirstName,
		e.LastName,
		e.Email,
		calendar.Normalize(e.HireDate),
		e.Department,
	)

	created, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return created, nil
}

// Update は社員情報を更新します。
func (r *EmployeeRepository) Update(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE employees
           SET first_name = $1,
               last_name = $2,
               email = $3,
               hire_date = $4,
               department = $5
         WHERE employee_id = $6
        RETURNING `+employeeColumns,
		e.FirstName,
		e.LastName,
		e.Email,
		calendar.Normalize(e.HireDate),
		e.Department,
		e.ID,
	)

	updated, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return updated, nil
}

// Delete は社員を削除します。
func (r *EmployeeRepository) Delete(ctx context.Context, id int64) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM employees WHERE employee_id = $1`, id)
	if err != nil {
		return translateEmployeePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// FindByID は ID で社員を取得します。
func (r *EmployeeRepository) FindByID(ctx context.Context, id int64) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE employee_id = $1`, id)

	found, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return found, nil
}

// FindByEmail は大文字小文字を区別せずにメールアドレスで社員を取得します。
func (r *EmployeeRepository) FindByEmail(ctx context.Context, email string) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE lower(email) = lower($1) LIMIT 1`, email)

	found, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return found, nil
}

// List は社員の一覧を取得します。
func (r *EmployeeRepository) List(ctx context.Context, filter employee.ListEmployeesFilter) ([]*employee.Employee, string, error) {
	if filter.Limit < 0 {
		return nil, "", employee.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", employee.ErrInvalidPageToken
	}

	orderBy, ok := employeeSortColumns[filter.SortBy]
	if !ok {
		return nil, "", employee.ErrInvalidSortKey
	}

	var ph placeholders
	conditions := make([]string, 0, 2)

	if filter.Department != "" {
		conditions = append(conditions, "department = "+ph.next(filter.Department))
	}
	if filter.Search != "" {
		p := ph.next(likePattern(filter.Search))
		conditions = append(conditions, "(first_name ILIKE "+p+" OR last_name ILIKE "+p+" OR email ILIKE "+p+" OR department ILIKE "+p+")")
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := `SELECT ` + employeeColumns + ` FROM employees` + whereClause + `
         ORDER BY ` + orderBy + ph.pageClause(filter.Limit, filter.Offset)

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, ph.args...)
	if err != nil {
		return nil, "", translateEmployeePgError(err)
	}
	defer rows.Close()

	employees := make([]*employee.Employee, 0, filter.Limit)
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, "", translateEmployeePgError(err)
		}
		employees = append(employees, emp)
	}

	if err := rows.Err(); err != nil {
		return nil, "", translateEmployeePgError(err)
	}

	var nextToken string
	if filter.Limit > 0 && len(employees) > filter.Limit {
		employees = employees[:filter.Limit]
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
	}

	return employees, nextToken, nil
}

// Count は社員数を返します。
func (r *EmployeeRepository) Count(ctx context.Context) (int, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	var n int
	if err := exec.QueryRow(ctx, `SELECT COUNT(*) FROM employees`).Scan(&n); err != nil {
		return 0, translateEmployeePgError(err)
	}
	return n, nil
}

func scanEmployee(row pgx.Row) (*employee.Employee, error) {
	var (
		e        employee.Employee
		hireDate time.Time
	)

	if err := row.Scan(&e.ID, &e.FirstName, &e.LastName, &e.Email, &hireDate, &e.Department); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, err
	}

	e.HireDate = calendar.Normalize(hireDate)
	return &e, nil
}

func translateEmployeePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return employee.ErrEmployeeNotFound
	}
	if isUnavailable(err) {
		return unavailable(err)
	}

	switch pgErrorCode(err) {
	case uniqueViolationCode:
		return employee.ErrEmailAlreadyExists
	case foreignKeyViolationCode:
		return employee.ErrHasDependents
	}

	return err
}
