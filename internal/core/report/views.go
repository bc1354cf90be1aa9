package report

import (
	"time"

	"github.com/ogurasousui/hr-records/internal/core/assignment"
	"github.com/ogurasousui/hr-records/internal/core/employee"
	"github.com/ogurasousui/hr-records/internal/core/project"
	"github.com/ogurasousui/hr-records/internal/core/review"
)

// EmployeeSummary は社員 1 名分の横断ビューです。
type EmployeeSummary struct {
	Employee      *employee.Employee `json:"employee"`
	Assignments   []AssignmentDetail `json:"assignments"`
	Reviews       []*review.Review   `json:"reviews"`
	ReviewCount   int                `json:"review_count"`
	AverageRating *float64           `json:"average_rating"`
	RatingTrend   []RatingPoint      `json:"rating_trend"`
}

// AssignmentDetail は割り当てと割り当て先プロジェクトの組です。
type AssignmentDetail struct {
	Assignment *assignment.Assignment `json:"assignment"`
	Project    *project.Project       `json:"project"`
}

// RatingPoint は評価推移の 1 点です。
type RatingPoint struct {
	Date   time.Time `json:"date"`
	Rating float64   `json:"rating"`
}

// ProjectTeam はプロジェクトとメンバーの一覧です。
type ProjectTeam struct {
	Project *project.Project `json:"project"`
	Members []TeamMember     `json:"members"`
}

// TeamMember はプロジェクトメンバー 1 名を表します。
type TeamMember struct {
	Employee       *employee.Employee `json:"employee"`
	Role           string             `json:"role"`
	AssignmentDate time.Time          `json:"assignment_date"`
}

// Performer は高評価者ランキングの 1 行です。
type Performer struct {
	Employee      *employee.Employee `json:"employee"`
	AverageRating float64            `json:"average_rating"`
	ReviewCount   int                `json:"review_count"`
}

// EmployeeProjectRow は社員×プロジェクトレポートの 1 行です。
type EmployeeProjectRow struct {
	AssignmentID   int64          `json:"assignment_id"`
	EmployeeID     int64          `json:"employee_id"`
	FirstName      string         `json:"first_name"`
	LastName       string         `json:"last_name"`
	Department     string         `json:"department"`
	ProjectID      int64          `json:"project_id"`
	ProjectName    string         `json:"project_name"`
	ProjectStatus  project.Status `json:"project_status"`
	Role           string         `json:"role"`
	AssignmentDate time.Time      `json:"assignment_date"`
	AverageRating  *float64       `json:"average_rating"`
}

// Dashboard は全体の件数サマリーです。
type Dashboard struct {
	TotalEmployees   int `json:"total_employees"`
	TotalProjects    int `json:"total_projects"`
	ActiveProjects   int `json:"active_projects"`
	TotalAssignments int `json:"total_assignments"`
	TotalReviews     int `json:"total_reviews"`
	OrphanedReviews  int `json:"orphaned_reviews"`
}

// DepartmentRating は部署別の評価集計です。
type DepartmentRating struct {
	Department            string  `json:"department"`
	AverageRating         float64 `json:"average_rating"`
	ReviewCount           int     `json:"review_count"`
	ReviewedEmployeeCount int     `json:"reviewed_employee_count"`
}

// RatingStatistics は評価値の統計です。評価が 0 件の場合は各値が nil になります。
type RatingStatistics struct {
	Count  int      `json:"count"`
	Mean   *float64 `json:"mean"`
	Median *float64 `json:"median"`
	Min    *float64 `json:"min"`
	Max    *float64 `json:"max"`
}

// AssignmentLoad は社員ごとの割り当て件数です。
type AssignmentLoad struct {
	Employee        *employee.Employee `json:"employee"`
	AssignmentCount int                `json:"assignment_count"`
}
