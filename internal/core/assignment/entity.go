package assignment

import "time"

// Assignment は社員とプロジェクトの割り当てです。(EmployeeID, ProjectID) は一意です。
type Assignment struct {
	ID             int64     `json:"id"`
	EmployeeID     int64     `json:"employee_id"`
	ProjectID      int64     `json:"project_id"`
	Role           string    `json:"role"`
	AssignmentDate time.Time `json:"assignment_date"`
}
