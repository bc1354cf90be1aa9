package assignment

import "github.com/ogurasousui/hr-records/internal/core/apperr"

var (
	ErrInvalidID          = apperr.New(apperr.ErrValidation, "assignment: invalid id")
	ErrInvalidEmployeeID  = apperr.New(apperr.ErrValidation, "assignment: invalid employee id")
	ErrInvalidProjectID   = apperr.New(apperr.ErrValidation, "assignment: invalid project id")
	ErrInvalidRole        = apperr.New(apperr.ErrValidation, "assignment: invalid role")
	ErrInvalidDate        = apperr.New(apperr.ErrValidation, "assignment: invalid assignment date")
	ErrInvalidTarget      = apperr.New(apperr.ErrValidation, "assignment: id or employee/project pair is required")
	ErrInvalidPageSize    = apperr.New(apperr.ErrValidation, "assignment: invalid page size")
	ErrInvalidPageToken   = apperr.New(apperr.ErrValidation, "assignment: invalid page token")
	ErrAssignmentNotFound = apperr.New(apperr.ErrNotFound, "assignment: not found")
	ErrAlreadyAssigned    = apperr.New(apperr.ErrDuplicateAssignment, "assignment: employee already assigned to project")
	ErrEmployeeNotFound   = apperr.New(apperr.ErrDanglingReference, "assignment: employee does not exist")
	ErrProjectNotFound    = apperr.New(apperr.ErrDanglingReference, "assignment: project does not exist")
	ErrDanglingReference  = apperr.New(apperr.ErrDanglingReference, "assignment: referenced employee or project does not exist")
)
