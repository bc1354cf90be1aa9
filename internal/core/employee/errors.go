package employee

import "github.com/ogurasousui/hr-records/internal/core/apperr"

var (
	ErrInvalidID          = apperr.New(apperr.ErrValidation, "employee: invalid id")
	ErrInvalidFirstName   = apperr.New(apperr.ErrValidation, "employee: invalid first name")
	ErrInvalidLastName    = apperr.New(apperr.ErrValidation, "employee: invalid last name")
	ErrInvalidEmail       = apperr.New(apperr.ErrValidation, "employee: invalid email")
	ErrInvalidHireDate    = apperr.New(apperr.ErrValidation, "employee: invalid hire date")
	ErrFutureHireDate     = apperr.New(apperr.ErrValidation, "employee: hire date is in the future")
	ErrInvalidDepartment  = apperr.New(apperr.ErrValidation, "employee: invalid department")
	ErrInvalidSortKey     = apperr.New(apperr.ErrValidation, "employee: invalid sort key")
	ErrInvalidPageSize    = apperr.New(apperr.ErrValidation, "employee: invalid page size")
	ErrInvalidPageToken   = apperr.New(apperr.ErrValidation, "employee: invalid page token")
	ErrEmployeeNotFound   = apperr.New(apperr.ErrNotFound, "employee: not found")
	ErrEmailAlreadyExists = apperr.New(apperr.ErrDuplicateKey, "employee: email already exists")
	ErrHasDependents      = apperr.New(apperr.ErrHasDependents, "employee: referenced by other records")
)
