package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/ogurasousui/hr-records/internal/core/calendar"
	"github.com/ogurasousui/hr-records/internal/core/project"
	sqlitedb "github.com/ogurasousui/hr-records/internal/platform/db/sqlite"
)

const projectColumns = `project_id, project_name, start_date, end_date, status`

var projectSortColumns = map[project.SortKey]string{
	project.SortByInsertion: "project_id",
	project.SortByName:      "project_name COLLATE NOCASE, project_id",
	project.SortByStartDate: "start_date, project_id",
	project.SortByStatus:    "status, project_id",
}

// ProjectRepository は SQLite を利用したプロジェクト永続化の実装です。
type ProjectRepository struct {
	db sqlitedb.Queryer
}

// NewProjectRepository は ProjectRepository を生成します。
func NewProjectRepository(db sqlitedb.Queryer) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create はプロジェクトを新規作成します。
func (r *ProjectRepository) Create(ctx context.Context, p *project.Project) (*project.Project, error) {
	exec := sqlitedb.QueryerFromContext(ctx, r.db)
	row := exec.QueryRowContext(ctx, `
        INSERT INTO Projects (project_name, start_date, end_date, status)
        VALUES (?, ?, ?, ?)
        RETURNING `+projectColumns,
		p.Name, calendar.Format(p.StartDate), nullableDate(p.EndDate), string(p.Status),
	)

	created, err := scanProject(row)
	if err != nil {
		return nil, translateProjectError(err)
	}
	return created, nil
}

// Update はプロジェクト情報を更新します。
func (r *ProjectRepository) Update(ctx context.Context, p *project.Project) (*project.Project, error) {
	exec := sqlitedb.QueryerFromContext(ctx, r.db)
	row := exec.QueryRowContext(ctx, `
        UPDATE Projects
           SET project_name = ?,
               start_date = ?,
               end_date = ?,
               status = ?
         WHERE project_id = ?
        RETURNING `+projectColumns,
		p.Name, calendar.Format(p.StartDate), nullableDate(p.EndDate), string(p.Status), p.ID,
	)

	updated, err := scanProject(row)
	if err != nil {
		return nil, translateProjectError(err)
	}
	return updated, nil
}

// Delete はプロジェクトを削除します。割り当てが残っている場合は ErrHasDependents を返します。
func (r *ProjectRepository) Delete(ctx context.Context, id int64) error {
	exec := sqlitedb.QueryerFromContext(ctx, r.db)
	res, err := exec.ExecContext(ctx, `DELETE FROM Projects WHERE project_id = ?`, id)
	if err != nil {
		return translateProjectError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return translateProjectError(err)
	}
	if affected == 0 {
		return project.ErrProjectNotFound
	}
	return nil
}

// FindByID は ID でプロジェクトを取得します。
func (r *ProjectRepository) FindByID(ctx context.Context, id int64) (*project.Project, error) {
	exec := sqlitedb.QueryerFromContext(ctx, r.db)
	row := exec.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM Projects WHERE project_id = ?`, id)

	found, err := scanProject(row)
	if err != nil {
		return nil, translateProjectError(err)
	}
	return found, nil
}

// List はプロジェクトの一覧を取得します。
func (r *ProjectRepository) List(ctx context.Context, filter project.ListProjectsFilter) ([]*project.Project, string, error) {
	if filter.Limit < 0 {
		return nil, "", project.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", project.ErrInvalidPageToken
	}

	orderBy, ok := projectSortColumns[filter.SortBy]
	if !ok {
		return nil, "", project.ErrInvalidSortKey
	}

	conditions := make([]string, 0, 2)
	args := make([]any, 0, 4)

	if filter.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.Search != "" {
		conditions = append(conditions, `project_name LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(filter.Search))
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

	query := `SELECT ` + projectColumns + ` FROM Projects` + whereClause + `
         ORDER BY ` + orderBy + `
         LIMIT ? OFFSET ?`

	exec := sqlitedb.QueryerFromContext(ctx, r.db)
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, "", translateProjectError(err)
	}
	defer rows.Close()

	projects := make([]*project.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, "", translateProjectError(err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, "", translateProjectError(err)
	}

	var nextToken string
	if filter.Limit > 0 && len(projects) > filter.Limit {
		projects = projects[:filter.Limit]
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
	}

	return projects, nextToken, nil
}

func scanProject(row rowScanner) (*project.Project, error) {
	var (
		p         project.Project
		startDate string
		endDate   sql.NullString
		status    string
	)

	if err := row.Scan(&p.ID, &p.Name, &startDate, &endDate, &status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, project.ErrProjectNotFound
		}
		return nil, err
	}

	start, err := calendar.Parse(startDate)
	if err != nil {
		return nil, err
	}
	p.StartDate = start

	if endDate.Valid && strings.TrimSpace(endDate.String) != "" {
		end, err := calendar.Parse(endDate.String)
		if err != nil {
			return nil, err
		}
		p.EndDate = &end
	}

	p.Status = project.Status(status)
	return &p, nil
}

func translateProjectError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return project.ErrProjectNotFound
	}
	if isUnavailable(err) {
		return unavailable(err)
	}

	switch classifyConstraint(err) {
	case constraintForeignKey:
		return project.ErrHasDependents
	case constraintCheck:
		return project.ErrInvalidDateRange
	}

	return err
}

func nullableDate(value *time.Time) any {
	if value == nil {
		return nil
	}
	return calendar.Format(*value)
}
