package project

import (
	"strings"
	"time"
)

// Status はプロジェクトの状態を表します。任意の状態から任意の状態へ遷移できます。
type Status string

const (
	StatusPlanning  Status = "Planning"
	StatusActive    Status = "Active"
	StatusOnHold    Status = "On Hold"
	StatusCompleted Status = "Completed"
)

// Statuses は定義済みの状態を表示順に返します。
func Statuses() []Status {
	return []Status{StatusPlanning, StatusActive, StatusOnHold, StatusCompleted}
}

// ParseStatus は大文字小文字や区切り文字の揺れを吸収して状態を解釈します。
func ParseStatus(raw string) (Status, error) {
	key := strings.ToLower(strings.Join(strings.FieldsFunc(raw, func(r rune) bool {
		return r == ' ' || r == '_' || r == '-'
	}), ""))
	for _, s := range Statuses() {
		if strings.ToLower(strings.ReplaceAll(string(s), " ", "")) == key {
			return s, nil
		}
	}
	return "", ErrInvalidStatus
}

// IsValid は定義済みの状態かを返します。
func (s Status) IsValid() bool {
	switch s {
	case StatusPlanning, StatusActive, StatusOnHold, StatusCompleted:
		return true
	default:
		return false
	}
}

// Project はプロジェクトエンティティです。
type Project struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Status    Status     `json:"status"`
}
