package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ogurasousui/hr-records/internal/core/apperr"
)

const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
)

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUnavailable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return true
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	// Class 08: Connection Exception, Class 57: Operator Intervention
	code := pgErrorCode(err)
	return strings.HasPrefix(code, "08") || strings.HasPrefix(code, "57")
}

func unavailable(err error) error {
	return fmt.Errorf("postgres: %w: %w", apperr.ErrStoreUnavailable, err)
}

func likePattern(search string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(search) + "%"
}

// placeholders は $n 形式のプレースホルダと引数を順に積み上げます。
type placeholders struct {
	args []any
}

func (p *placeholders) next(value any) string {
	p.args = append(p.args, value)
	return "$" + strconv.Itoa(len(p.args))
}

// pageClause は Limit が 0 の場合に LIMIT を省略します。
func (p *placeholders) pageClause(limit, offset int) string {
	clause := ""
	if limit > 0 {
		clause += "\n         LIMIT " + p.next(limit+1)
	}
	return clause + "\n        OFFSET " + p.next(offset)
}
