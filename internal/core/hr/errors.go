package hr

import (
	"fmt"
	"strings"

	"github.com/ogurasousui/hr-records/internal/core/apperr"
)

var (
	ErrInvalidEmployeeID    = apperr.New(apperr.ErrValidation, "hr: invalid employee id")
	ErrInvalidProjectID     = apperr.New(apperr.ErrValidation, "hr: invalid project id")
	ErrPurgeRequiresCascade = apperr.New(apperr.ErrValidation, "hr: purging reviews requires cascade")
	ErrEmployeeNotFound     = apperr.New(apperr.ErrDanglingReference, "hr: review references a missing employee")
	ErrReviewsUnverifiable  = apperr.New(apperr.ErrStoreUnavailable, "hr: review store is degraded; review dependents cannot be verified")
)

// StepError は複数ストアにまたがる操作が途中で失敗したことを表します。完了済みの手順は取り消されません。
type StepError struct {
	Op        string
	Step      string
	Completed []string
	Err       error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: step %q failed after [%s]: %v", e.Op, e.Step, strings.Join(e.Completed, ", "), e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
