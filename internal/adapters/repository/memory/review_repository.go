package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/ogurasousui/hr-records/internal/core/review"
)

// ReviewRepository はプロセス内に評価を保持する縮退用の実装です。プロセス終了とともに内容は失われます。
type ReviewRepository struct {
	mu      sync.RWMutex
	reviews []*review.Review
}

// NewReviewRepository は空の ReviewRepository を生成します。
func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{}
}

// Create は評価を保存します。
func (r *ReviewRepository) Create(ctx context.Context, rv *review.Review) (*review.Review, error) {
	if err := contextErr(ctx); err != nil {
		return nil, err
	}

	stored := clone(rv)
	stored.ID = uuid.NewString()

	r.mu.Lock()
	r.reviews = append(r.reviews, stored)
	r.mu.Unlock()

	return clone(stored), nil
}

// ListByEmployee は社員の評価を評価日の降順で返します。
func (r *ReviewRepository) ListByEmployee(ctx context.Context, employeeID int64) ([]*review.Review, error) {
	if err := contextErr(ctx); err != nil {
		return nil, err
	}

	r.mu.RLock()
	out := make([]*review.Review, 0)
	for _, rv := range r.reviews {
		if rv.EmployeeID == employeeID {
			out = append(out, clone(rv))
		}
	}
	r.mu.RUnlock()

	review.SortByDateDesc(out)
	return out, nil
}

// ListAll はすべての評価を保存順に返します。
func (r *ReviewRepository) ListAll(ctx context.Context) ([]*review.Review, error) {
	if err := contextErr(ctx); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*review.Review, 0, len(r.reviews))
	for _, rv := range r.reviews {
		out = append(out, clone(rv))
	}
	return out, nil
}

// Count は評価の総数を返します。
func (r *ReviewRepository) Count(ctx context.Context) (int, error) {
	if err := contextErr(ctx); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.reviews), nil
}

// CountByEmployee は社員の評価数を返します。
func (r *ReviewRepository) CountByEmployee(ctx context.Context, employeeID int64) (int, error) {
	if err := contextErr(ctx); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, rv := range r.reviews {
		if rv.EmployeeID == employeeID {
			n++
		}
	}
	return n, nil
}

// DeleteByEmployee は社員の評価をすべて削除します。
func (r *ReviewRepository) DeleteByEmployee(ctx context.Context, employeeID int64) (int, error) {
	if err := contextErr(ctx); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.reviews[:0]
	removed := 0
	for _, rv := range r.reviews {
		if rv.EmployeeID == employeeID {
			removed++
			continue
		}
		kept = append(kept, rv)
	}
	for i := len(kept); i < len(r.reviews); i++ {
		r.reviews[i] = nil
	}
	r.reviews = kept
	return removed, nil
}

// Ping はコンテキストが有効な限り成功します。
func (r *ReviewRepository) Ping(ctx context.Context) error {
	return contextErr(ctx)
}

// contextErr は期限切れを他の評価ストアと同じく ErrUnavailable として返します。
func contextErr(ctx context.Context) error {
	err := ctx.Err()
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("memory: %w: %w", review.ErrUnavailable, err)
	}
	return err
}

func clone(rv *review.Review) *review.Review {
	c := *rv
	c.Strengths = append([]string{}, rv.Strengths...)
	c.AreasForImprovement = append([]string{}, rv.AreasForImprovement...)
	c.GoalsForNextPeriod = append([]string{}, rv.GoalsForNextPeriod...)
	return &c
}
