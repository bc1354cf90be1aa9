package employee

import "time"

// Employee は社員エンティティです。
type Employee struct {
	ID         int64     `json:"id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Email      string    `json:"email"`
	HireDate   time.Time `json:"hire_date"`
	Department string    `json:"department"`
}

// FullName は「名 姓」形式の氏名を返します。
func (e *Employee) FullName() string {
	if e == nil {
		return ""
	}
	return e.FirstName + " " + e.LastName
}
