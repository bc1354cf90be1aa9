package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/ogurasousui/hr-records/internal/core/calendar"
	"github.com/ogurasousui/hr-records/internal/core/employee"
	sqlitedb "github.com/ogurasousui/hr-records/internal/platform/db/sqlite"
)

const employeeColumns = `employee_id, first_name, last_name, email, hire_date, department`

var employeeSortColumns = map[employee.SortKey]string{
	employee.SortByInsertion:  "employee_id",
	employee.SortByFirstName:  "first_name COLLATE NOCASE, employee_id",
	employee.SortByLastName:   "last_name COLLATE NOCASE, employee_id",
	employee.SortByEmail:      "email_key, employee_id",
	employee.SortByHireDate:   "hire_date, employee_id",
	employee.SortByDepartment: "department, employee_id",
}

// EmployeeRepository は SQLite を利用した社員永続化の実装です。
type EmployeeRepository struct {
	db sqlitedb.Queryer
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(db sqlitedb.Queryer) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// Create は社員を新規作成します。
func (r *EmployeeRepository) Create(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	exec := sqlitedb.QueryerFromContext(ctx, r.db)
	row := exec.QueryRowContext(ctx, `
        INSERT INTO Employees (first_name, last_name, email, email_key, hire_date, department)
        VALUES (?, ?, ?, ?, ?, ?)
        RETURNING `+employeeColumns,
		e.FirstName, e.LastName, e.Email, emailKey(e.Email), calendar.Format(e.HireDate), e.Department,
	)

	created, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeeError(err)
	}
	return created, nil
}

// Update は社員情報を更新します。
func (r *EmployeeRepository) Update(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	exec := sqlitedb.QueryerFromContext(ctx, r.db)
	row := exec.QueryRowContext(ctx, `
        UPDATE Employees
           SET first_name = ?,
               last_name = ?,
               email = ?,
               email_key = ?,
               hire_date = ?,
               department = ?
         WHERE employee_id = ?
        RETURNING `+employeeColumns,
		e.FirstName, e.LastName, e.Email, emailKey(e.Email), calendar.Format(e.HireDate), e.Department, e.ID,
	)

	updated, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeeError(err)
	}
	return updated, nil
}

// Delete は社員を削除します。割り当てが残っている場合は ErrHasDependents を返します。
func (r *EmployeeRepository) Delete(ctx context.Context, id int64) error {
	exec := sqlitedb.QueryerFromContext(ctx, r.db)
	res, err := exec.ExecContext(ctx, `DELETE FROM Employees WHERE employee_id = ?`, id)
	if err != nil {
		return translateEmployeeError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return translateEmployeeError(err)
	}
	if affected == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// FindByID は ID で社員を取得します。
func (r *EmployeeRepository) FindByID(ctx context.Context, id int64) (*employee.Employee, error) {
	exec := sqlitedb.QueryerFromContext(ctx, r.db)
	row := exec.QueryRowContext(ctx, `SELECT `+employeeColumns+` FROM Employees WHERE employee_id = ?`, id)

	found, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeeError(err)
	}
	return found, nil
}

// FindByEmail はメールアドレスで社員を取得します。小文字化した email_key で照合するため非 ASCII 文字も大文字小文字を区別しません。
func (r *EmployeeRepository) FindByEmail(ctx context.Context, email string) (*employee.Employee, error) {
	exec := sqlitedb.QueryerFromContext(ctx, r.db)
	row := exec.QueryRowContext(ctx, `SELECT `+employeeColumns+` FROM Employees WHERE email_key = ? LIMIT 1`, emailKey(email))

	found, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeeError(err)
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

	conditions := make([]string, 0, 2)
	args := make([]any, 0, 7)

	if filter.Department != "" {
		conditions = append(conditions, "department = ?")
		args = append(args, filter.Department)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		conditions = append(conditions, `(first_name LIKE ? ESCAPE '\' OR last_name LIKE ? ESCAPE '\' OR email LIKE ? ESCAPE '\' OR department LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern, pattern, pattern)
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

	query := `SELECT ` + employeeColumns + ` FROM Employees` + whereClause + `
         ORDER BY ` + orderBy + `
         LIMIT ? OFFSET ?`

	exec := sqlitedb.QueryerFromContext(ctx, r.db)
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, "", translateEmployeeError(err)
	}
	defer rows.Close()

	employees := make([]*employee.Employee, 0)
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, "", translateEmployeeError(err)
		}
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, "", translateEmployeeError(err)
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
	exec := sqlitedb.QueryerFromContext(ctx, r.db)
	var n int
	if err := exec.QueryRowContext(ctx, `SELECT COUNT(*) FROM Employees`).Scan(&n); err != nil {
		return 0, translateEmployeeError(err)
	}
	return n, nil
}

// emailKey は一意制約と検索に使う正規化済みのメールアドレスです。
func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (*employee.Employee, error) {
	var (
		e        employee.Employee
		hireDate string
	)

	if err := row.Scan(&e.ID, &e.FirstName, &e.LastName, &e.Email, &hireDate, &e.Department); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, err
	}

	parsed, err := calendar.Parse(hireDate)
	if err != nil {
		return nil, err
	}
	e.HireDate = parsed

	return &e, nil
}

func translateEmployeeError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return employee.ErrEmployeeNotFound
	}
	if isUnavailable(err) {
		return unavailable(err)
	}

	switch classifyConstraint(err) {
	case constraintUnique:
		return employee.ErrEmailAlreadyExists
	case constraintForeignKey:
		return employee.ErrHasDependents
	}

	return err
}
