package apperr

import "errors"

// エラー分類です。各ドメインパッケージのセンチネルエラーはいずれかに Unwrap されます。
var (
	ErrValidation          = errors.New("validation error")
	ErrDuplicateKey        = errors.New("duplicate key")
	ErrDuplicateAssignment = errors.New("duplicate assignment")
	ErrDanglingReference   = errors.New("dangling reference")
	ErrNotFound            = errors.New("not found")
	ErrHasDependents       = errors.New("has dependents")
	ErrStoreUnavailable    = errors.New("store unavailable")
)

// Kind はエラー分類を表します。
type Kind string

const (
	KindUnknown             Kind = "unknown"
	KindValidation          Kind = "validation"
	KindDuplicateKey        Kind = "duplicate_key"
	KindDuplicateAssignment Kind = "duplicate_assignment"
	KindDanglingReference   Kind = "dangling_reference"
	KindNotFound            Kind = "not_found"
	KindHasDependents       Kind = "has_dependents"
	KindStoreUnavailable    Kind = "store_unavailable"
)

var kinds = []struct {
	sentinel error
	kind     Kind
}{
	{ErrStoreUnavailable, KindStoreUnavailable},
	{ErrValidation, KindValidation},
	{ErrDuplicateKey, KindDuplicateKey},
	{ErrDuplicateAssignment, KindDuplicateAssignment},
	{ErrDanglingReference, KindDanglingReference},
	{ErrNotFound, KindNotFound},
	{ErrHasDependents, KindHasDependents},
}

type sentinel struct {
	msg  string
	kind error
}

func (e *sentinel) Error() string { return e.msg }

func (e *sentinel) Unwrap() error { return e.kind }

// New は kind に分類されるセンチネルエラーを生成します。
func New(kind error, msg string) error {
	return &sentinel{msg: msg, kind: kind}
}

// KindOf は err の分類を返します。
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.sentinel) {
			return k.kind
		}
	}
	return KindUnknown
}

// Retryable は同じ入力での再試行が成功しうるかを返します。
func Retryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

// Resolvable は参照先データの作成により解消しうるエラーかを返します。
func Resolvable(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrDanglingReference)
}
