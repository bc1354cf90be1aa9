package review

import "time"

const (
	// MinRating は評価の下限です。
	MinRating = 1.0
	// MaxRating は評価の上限です。
	MaxRating = 5.0
)

// Review は人事評価ドキュメントです。ID はドキュメントストアが採番する不透明な文字列です。
type Review struct {
	ID                  string    `json:"id"`
	EmployeeID          int64     `json:"employee_id"`
	ReviewDate          time.Time `json:"review_date"`
	ReviewerName        string    `json:"reviewer_name"`
	OverallRating       float64   `json:"overall_rating"`
	Strengths           []string  `json:"strengths"`
	AreasForImprovement []string  `json:"areas_for_improvement"`
	Comments            string    `json:"comments"`
	GoalsForNextPeriod  []string  `json:"goals_for_next_period"`
}
