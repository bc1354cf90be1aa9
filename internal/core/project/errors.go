package project

import "github.com/ogurasousui/hr-records/internal/core/apperr"

var (
	ErrInvalidID        = apperr.New(apperr.ErrValidation, "project: invalid id")
	ErrInvalidName      = apperr.New(apperr.ErrValidation, "project: invalid name")
	ErrInvalidStartDate = apperr.New(apperr.ErrValidation, "project: invalid start date")
	ErrInvalidEndDate   = apperr.New(apperr.ErrValidation, "project: invalid end date")
	ErrInvalidDateRange = apperr.New(apperr.ErrValidation, "project: end date precedes start date")
	ErrInvalidStatus    = apperr.New(apperr.ErrValidation, "project: invalid status")
	ErrInvalidSortKey   = apperr.New(apperr.ErrValidation, "project: invalid sort key")
	ErrInvalidPageSize  = apperr.New(apperr.ErrValidation, "project: invalid page size")
	ErrInvalidPageToken = apperr.New(apperr.ErrValidation, "project: invalid page token")
	ErrProjectNotFound  = apperr.New(apperr.ErrNotFound, "project: not found")
	ErrHasDependents    = apperr.New(apperr.ErrHasDependents, "project: referenced by assignments")
)
