package report

import "github.com/ogurasousui/hr-records/internal/core/apperr"

var (
	ErrInvalidEmployeeID = apperr.New(apperr.ErrValidation, "report: invalid employee id")
	ErrInvalidProjectID  = apperr.New(apperr.ErrValidation, "report: invalid project id")
	ErrInvalidLimit      = apperr.New(apperr.ErrValidation, "report: limit must be positive")
	ErrInvalidMinReviews = apperr.New(apperr.ErrValidation, "report: minimum review count must not be negative")
)
