package review

import "github.com/ogurasousui/hr-records/internal/core/apperr"

var (
	ErrInvalidEmployeeID = apperr.New(apperr.ErrValidation, "review: invalid employee id")
	ErrInvalidReviewDate = apperr.New(apperr.ErrValidation, "review: invalid review date")
	ErrInvalidReviewer   = apperr.New(apperr.ErrValidation, "review: reviewer name is required")
	ErrInvalidRating     = apperr.New(apperr.ErrValidation, "review: overall rating must be between 1.0 and 5.0")
	ErrUnavailable       = apperr.New(apperr.ErrStoreUnavailable, "review: document store unavailable")
)
