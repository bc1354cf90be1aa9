package report

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/ogurasousui/hr-records/internal/core/assignment"
	"github.com/ogurasousui/hr-records/internal/core/employee"
	"github.com/ogurasousui/hr-records/internal/core/project"
	"github.com/ogurasousui/hr-records/internal/core/review"
)

// TransactionManager はリレーショナルストアのトランザクション制御です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

// EmployeeReader は集計に使う社員の読み取り操作です。
type EmployeeReader interface {
	FindByID(ctx context.Context, id int64) (*employee.Employee, error)
	List(ctx context.Context, filter employee.ListEmployeesFilter) ([]*employee.Employee, string, error)
}

// ProjectReader は集計に使うプロジェクトの読み取り操作です。
type ProjectReader interface {
	FindByID(ctx context.Context, id int64) (*project.Project, error)
	List(ctx context.Context, filter project.ListProjectsFilter) ([]*project.Project, string, error)
}

// AssignmentReader は集計に使う割り当ての読み取り操作です。
type AssignmentReader interface {
	List(ctx context.Context, filter assignment.ListAssignmentsFilter) ([]*assignment.Assignment, string, error)
}

// ReviewReader は集計に使う評価の読み取り操作です。
type ReviewReader interface {
	ListByEmployee(ctx context.Context, employeeID int64) ([]*review.Review, error)
	ListAll(ctx context.Context) ([]*review.Review, error)
}

// Readers は Service が参照するストア群です。
type Readers struct {
	Employees   EmployeeReader
	Projects    ProjectReader
	Assignments AssignmentReader
	Reviews     ReviewReader
}

// Service は両ストアを突き合わせてレポートを生成します。書き込みは行いません。
type Service struct {
	readers Readers
	tx      TransactionManager
	logger  *slog.Logger
}

// NewService は Service を生成します。
func NewService(readers Readers, tx TransactionManager, logger *slog.Logger) *Service {
	if tx == nil {
		tx = noopTransactionManager{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{readers: readers, tx: tx, logger: logger}
}

// TopPerformersInput は高評価者ランキングの条件です。
type TopPerformersInput struct {
	Limit      int
	MinReviews int
}

// EmployeeSummary は社員の割り当てと評価をまとめて返します。
func (s *Service) EmployeeSummary(ctx context.Context, employeeID int64) (*EmployeeSummary, error) {
	if employeeID <= 0 {
		return nil, ErrInvalidEmployeeID
	}

	summary := &EmployeeSummary{Assignments: []AssignmentDetail{}}
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		emp, err := s.readers.Employees.FindByID(txCtx, employeeID)
		if err != nil {
			return err
		}
		summary.Employee = emp

		assignments, _, err := s.readers.Assignments.List(txCtx, assignment.ListAssignmentsFilter{EmployeeID: employeeID})
		if err != nil {
			return err
		}
		for _, a := range assignments {
			proj, err := s.readers.Projects.FindByID(txCtx, a.ProjectID)
			if err != nil {
				if errors.Is(err, project.ErrProjectNotFound) {
					s.logger.WarnContext(ctx, "assignment references missing project",
						slog.Int64("assignment_id", a.ID),
						slog.Int64("project_id", a.ProjectID),
					)
					continue
				}
				return err
			}
			summary.Assignments = append(summary.Assignments, AssignmentDetail{Assignment: a, Project: proj})
		}
		return nil
	}); err != nil {
		return nil, err
	}

	reviews, err := s.readers.Reviews.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	review.SortByDateDesc(reviews)

	summary.Reviews = reviews
	summary.ReviewCount = len(reviews)
	summary.AverageRating = AverageRating(reviews)
	summary.RatingTrend = ratingTrend(reviews)

	return summary, nil
}

// ProjectTeamView はプロジェクトのメンバー一覧を返します。社員が存在しない割り当ては読み飛ばします。
func (s *Service) ProjectTeamView(ctx context.Context, projectID int64) (*ProjectTeam, error) {
	if projectID <= 0 {
		return nil, ErrInvalidProjectID
	}

	team := &ProjectTeam{Members: []TeamMember{}}
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		proj, err := s.readers.Projects.FindByID(txCtx, projectID)
		if err != nil {
			return err
		}
		team.Project = proj

		assignments, _, err := s.readers.Assignments.List(txCtx, assignment.ListAssignmentsFilter{ProjectID: projectID})
		if err != nil {
			return err
		}
		for _, a := range assignments {
			emp, err := s.readers.Employees.FindByID(txCtx, a.EmployeeID)
			if err != nil {
				if errors.Is(err, employee.ErrEmployeeNotFound) {
					s.logger.WarnContext(ctx, "assignment references missing employee",
						slog.Int64("assignment_id", a.ID),
						slog.Int64("employee_id", a.EmployeeID),
					)
					continue
				}
				return err
			}
			team.Members = append(team.Members, TeamMember{Employee: emp, Role: a.Role, AssignmentDate: a.AssignmentDate})
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return team, nil
}

// DepartmentDistribution は部署ごとの社員数を返します。部署名はそのまま集計します。
func (s *Service) DepartmentDistribution(ctx context.Context) (map[string]int, error) {
	employees, err := s.allEmployees(ctx)
	if err != nil {
		return nil, err
	}

	distribution := make(map[string]int)
	for _, e := range employees {
		distribution[e.Department]++
	}
	return distribution, nil
}

// TopPerformers は平均評価の高い社員を返します。同点は社員 ID の昇順です。
func (s *Service) TopPerformers(ctx context.Context, in TopPerformersInput) ([]Performer, error) {
	if in.Limit <= 0 {
		return nil, ErrInvalidLimit
	}
	if in.MinReviews < 0 {
		return nil, ErrInvalidMinReviews
	}

	employees, err := s.allEmployees(ctx)
	if err != nil {
		return nil, err
	}

	reviews, err := s.readers.Reviews.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	byEmployee := groupByEmployee(reviews)

	performers := make([]Performer, 0, len(employees))
	for _, e := range employees {
		own := byEmployee[e.ID]
		if len(own) == 0 || len(own) < in.MinReviews {
			continue
		}
		performers = append(performers, Performer{
			Employee:      e,
			AverageRating: *AverageRating(own),
			ReviewCount:   len(own),
		})
	}

	sort.Slice(performers, func(i, j int) bool {
		if performers[i].AverageRating != performers[j].AverageRating {
			return performers[i].AverageRating > performers[j].AverageRating
		}
		return performers[i].Employee.ID < performers[j].Employee.ID
	})

	if len(performers) > in.Limit {
		performers = performers[:in.Limit]
	}
	return performers, nil
}

// EmployeeProjectReport は割り当てごとに社員・プロジェクト・平均評価を並べた表を返します。
func (s *Service) EmployeeProjectReport(ctx context.Context) ([]EmployeeProjectRow, error) {
	var (
		employees   map[int64]*employee.Employee
		projects    map[int64]*project.Project
		assignments []*assignment.Assignment
	)
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		var err error
		if employees, err = s.employeeIndex(txCtx); err != nil {
			return err
		}
		if projects, err = s.projectIndex(txCtx); err != nil {
			return err
		}
		assignments, _, err = s.readers.Assignments.List(txCtx, assignment.ListAssignmentsFilter{})
		return err
	}); err != nil {
		return nil, err
	}

	reviews, err := s.readers.Reviews.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	byEmployee := groupByEmployee(reviews)

	rows := make([]EmployeeProjectRow, 0, len(assignments))
	for _, a := range assignments {
		emp, ok := employees[a.EmployeeID]
		if !ok {
			s.logger.WarnContext(ctx, "assignment references missing employee", slog.Int64("assignment_id", a.ID))
			continue
		}
		proj, ok := projects[a.ProjectID]
		if !ok {
			s.logger.WarnContext(ctx, "assignment references missing project", slog.Int64("assignment_id", a.ID))
			continue
		}
		rows = append(rows, EmployeeProjectRow{
			AssignmentID:   a.ID,
			EmployeeID:     emp.ID,
			FirstName:      emp.FirstName,
			LastName:       emp.LastName,
			Department:     emp.Department,
			ProjectID:      proj.ID,
			ProjectName:    proj.Name,
			ProjectStatus:  proj.Status,
			Role:           a.Role,
			AssignmentDate: a.AssignmentDate,
			AverageRating:  AverageRating(byEmployee[emp.ID]),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.LastName != b.LastName {
			return a.LastName < b.LastName
		}
		if a.FirstName != b.FirstName {
			return a.FirstName < b.FirstName
		}
		if a.ProjectName != b.ProjectName {
			return a.ProjectName < b.ProjectName
		}
		return a.AssignmentID < b.AssignmentID
	})

	return rows, nil
}

// Dashboard は全体の件数と孤立した評価の件数を返します。
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	var (
		employees   map[int64]*employee.Employee
		projects    map[int64]*project.Project
		assignments []*assignment.Assignment
	)
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		var err error
		if employees, err = s.employeeIndex(txCtx); err != nil {
			return err
		}
		if projects, err = s.projectIndex(txCtx); err != nil {
			return err
		}
		assignments, _, err = s.readers.Assignments.List(txCtx, assignment.ListAssignmentsFilter{})
		return err
	}); err != nil {
		return nil, err
	}

	reviews, err := s.readers.Reviews.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	dashboard := &Dashboard{
		TotalEmployees:   len(employees),
		TotalProjects:    len(projects),
		TotalAssignments: len(assignments),
		TotalReviews:     len(reviews),
	}
	for _, p := range projects {
		if p.Status == project.StatusActive {
			dashboard.ActiveProjects++
		}
	}
	for _, rv := range reviews {
		if _, ok := employees[rv.EmployeeID]; !ok {
			dashboard.OrphanedReviews++
		}
	}
	return dashboard, nil
}

// ProjectStatusDistribution は状態ごとのプロジェクト数を返します。件数 0 の状態も含みます。
func (s *Service) ProjectStatusDistribution(ctx context.Context) (map[project.Status]int, error) {
	var projects map[int64]*project.Project
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		var err error
		projects, err = s.projectIndex(txCtx)
		return err
	}); err != nil {
		return nil, err
	}

	distribution := make(map[project.Status]int, len(project.Statuses()))
	for _, st := range project.Statuses() {
		distribution[st] = 0
	}
	for _, p := range projects {
		distribution[p.Status]++
	}
	return distribution, nil
}

// DepartmentRatings は部署ごとの評価集計を部署名順で返します。評価のない部署は含みません。
func (s *Service) DepartmentRatings(ctx context.Context) ([]DepartmentRating, error) {
	employees, err := s.allEmployees(ctx)
	if err != nil {
		return nil, err
	}

	reviews, err := s.readers.Reviews.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	byEmployee := groupByEmployee(reviews)

	type bucket struct {
		sum       float64
		reviews   int
		employees int
	}
	buckets := make(map[string]*bucket)
	for _, e := range employees {
		own := byEmployee[e.ID]
		if len(own) == 0 {
			continue
		}
		b, ok := buckets[e.Department]
		if !ok {
			b = &bucket{}
			buckets[e.Department] = b
		}
		for _, rv := range own {
			b.sum += rv.OverallRating
		}
		b.reviews += len(own)
		b.employees++
	}

	out := make([]DepartmentRating, 0, len(buckets))
	for dept, b := range buckets {
		out = append(out, DepartmentRating{
			Department:            dept,
			AverageRating:         b.sum / float64(b.reviews),
			ReviewCount:           b.reviews,
			ReviewedEmployeeCount: b.employees,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Department < out[j].Department })
	return out, nil
}

// RatingStatistics は在籍中の社員に紐づく評価値の統計を返します。
func (s *Service) RatingStatistics(ctx context.Context) (*RatingStatistics, error) {
	var employees map[int64]*employee.Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		var err error
		employees, err = s.employeeIndex(txCtx)
		return err
	}); err != nil {
		return nil, err
	}

	reviews, err := s.readers.Reviews.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	ratings := make([]float64, 0, len(reviews))
	for _, rv := range reviews {
		if _, ok := employees[rv.EmployeeID]; ok {
			ratings = append(ratings, rv.OverallRating)
		}
	}

	stats := ratingStatistics(ratings)
	return &stats, nil
}

// AssignmentLoad は割り当て件数の多い社員を返します。同数は社員 ID の昇順です。
func (s *Service) AssignmentLoad(ctx context.Context, limit int) ([]AssignmentLoad, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	var (
		employees   []*employee.Employee
		assignments []*assignment.Assignment
	)
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		var err error
		if employees, _, err = s.readers.Employees.List(txCtx, employee.ListEmployeesFilter{}); err != nil {
			return err
		}
		assignments, _, err = s.readers.Assignments.List(txCtx, assignment.ListAssignmentsFilter{})
		return err
	}); err != nil {
		return nil, err
	}

	counts := make(map[int64]int, len(employees))
	for _, a := range assignments {
		counts[a.EmployeeID]++
	}

	load := make([]AssignmentLoad, 0, len(employees))
	for _, e := range employees {
		load = append(load, AssignmentLoad{Employee: e, AssignmentCount: counts[e.ID]})
	}
	sort.Slice(load, func(i, j int) bool {
		if load[i].AssignmentCount != load[j].AssignmentCount {
			return load[i].AssignmentCount > load[j].AssignmentCount
		}
		return load[i].Employee.ID < load[j].Employee.ID
	})

	if len(load) > limit {
		load = load[:limit]
	}
	return load, nil
}

func (s *Service) allEmployees(ctx context.Context) ([]*employee.Employee, error) {
	var employees []*employee.Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		var err error
		employees, _, err = s.readers.Employees.List(txCtx, employee.ListEmployeesFilter{})
		return err
	}); err != nil {
		return nil, err
	}
	return employees, nil
}

func (s *Service) employeeIndex(ctx context.Context) (map[int64]*employee.Employee, error) {
	employees, _, err := s.readers.Employees.List(ctx, employee.ListEmployeesFilter{})
	if err != nil {
		return nil, err
	}
	index := make(map[int64]*employee.Employee, len(employees))
	for _, e := range employees {
		index[e.ID] = e
	}
	return index, nil
}

func (s *Service) projectIndex(ctx context.Context) (map[int64]*project.Project, error) {
	projects, _, err := s.readers.Projects.List(ctx, project.ListProjectsFilter{})
	if err != nil {
		return nil, err
	}
	index := make(map[int64]*project.Project, len(projects))
	for _, p := range projects {
		index[p.ID] = p
	}
	return index, nil
}

// ratingTrend は評価日の昇順で評価値を並べます。同日の評価は取得順を保ちます。
func ratingTrend(reviews []*review.Review) []RatingPoint {
	ordered := append([]*review.Review(nil), reviews...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ReviewDate.Before(ordered[j].ReviewDate)
	})

	trend := make([]RatingPoint, 0, len(ordered))
	for _, rv := range ordered {
		trend = append(trend, RatingPoint{Date: rv.ReviewDate, Rating: rv.OverallRating})
	}
	return trend
}
