package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ogurasousui/hr-records/internal/core/calendar"
	"github.com/ogurasousui/hr-records/internal/core/project"
	pgdb "github.com/ogurasousui/hr-records/internal/platform/db/postgres"
)

const projectColumns = `project_id, project_name, start_date, end_date, status`

var projectSortColumns = map[project.SortKey]string{
	project.SortByInsertion: "project_id",
	project.SortByName:      "lower(project_name), project_id",
	project.SortByStartDate: "start_date, project_id",
	project.SortByStatus:    "status, project_id",
}

// ProjectRepository は PostgreSQL を利用したプロジェクト永続化の実装です。
type ProjectRepository struct {
	pool pgdb.Queryer
}

// NewProjectRepository は ProjectRepository を生成します。
func NewProjectRepository(pool pgdb.Queryer) *ProjectRepository {
	return &ProjectRepository{pool: pool}
}

// Create はプロジェクトを新規作成します。
func (r *ProjectRepository) Create(ctx context.Context, p *project.Project) (*project.Project, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO projects (project_name, start_date, end_date, status)
        VALUES ($1, $2, $3, $4)
        RETURNING `+projectColumns,
		p.Name,
		calendar.Normalize(p.StartDate),
		nullableTime(p.EndDate),
		string(p.Status),
	)

	created, err := scanProject(row)
	if err != nil {
		return nil, translateProjectPgError(err)
	}
	return created, nil
}

// Update はプロジェクト情報を更新します。
func (r *ProjectRepository) Update(ctx context.Context, p *project.Project) (*project.Project, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE projects
           SET project_name = $1,
               start_date = $2,
               end_date = $3,
               status = $4
         WHERE project_id = $5
        RETURNING `+projectColumns,
		p.Name,
		calendar.Normalize(p.StartDate),
		nullableTime(p.EndDate),
		string(p.Status),
		p.ID,
	)

	updated, err := scanProject(row)
	if err != nil {
		return nil, translateProjectPgError(err)
	}
	return updated, nil
}

// Delete はプロジェクトを削除します。
func (r *ProjectRepository) Delete(ctx context.Context, id int64) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM projects WHERE project_id = $1`, id)
	if err != nil {
		return translateProjectPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return project.ErrProjectNotFound
	}
	return nil
}

// FindByID は ID でプロジェクトを取得します。
func (r *ProjectRepository) FindByID(ctx context.Context, id int64) (*project.Project, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE project_id = $1`, id)

	found, err := scanProject(row)
	if err != nil {
		return nil, translateProjectPgError(err)
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

	var ph placeholders
	conditions := make([]string, 0, 2)

	if filter.Status != nil {
		conditions = append(conditions, "status = "+ph.next(string(*filter.Status)))
	}
	if filter.Search != "" {
		conditions = append(conditions, "project_name ILIKE "+ph.next(likePattern(filter.Search)))
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := `SELECT ` + projectColumns + ` FROM projects` + whereClause + `
         ORDER BY ` + orderBy + ph.pageClause(filter.Limit, filter.Offset)

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, ph.args...)
	if err != nil {
		return nil, "", translateProjectPgError(err)
	}
	defer rows.Close()

	projects := make([]*project.Project, 0, filter.Limit)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, "", translateProjectPgError(err)
		}
		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		return nil, "", translateProjectPgError(err)
	}

	var nextToken string
	if filter.Limit > 0 && len(projects) > filter.Limit {
		projects = projects[:filter.Limit]
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
	}

	return projects, nextToken, nil
}

func scanProject(row pgx.Row) (*project.Project, error) {
	var (
		p         project.Project
		startDate time.Time
		endDate   sql.NullTime
		status    string
	)

	if err := row.Scan(&p.ID, &p.Name, &startDate, &endDate, &status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, project.ErrProjectNotFound
		}
		return nil, err
	}

	p.StartDate = calendar.Normalize(startDate)
	if endDate.Valid {
		end := calendar.Normalize(endDate.Time)
		p.EndDate = &end
	}
	p.Status = project.Status(status)

	return &p, nil
}

func translateProjectPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return project.ErrProjectNotFound
	}
	if isUnavailable(err) {
		return unavailable(err)
	}

	switch pgErrorCode(err) {
	case foreignKeyViolationCode:
		return project.ErrHasDependents
	case checkViolationCode:
		return project.ErrInvalidDateRange
	}

	return err
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return calendar.Normalize(*value)
}
