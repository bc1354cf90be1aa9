package review

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/ogurasousui/hr-records/internal/core/calendar"
)

// Service は評価ドキュメントに関するユースケースをまとめます。社員の存在確認は行いません。
type Service struct {
	repo Repository
}

// UseCase は評価ユースケースの公開インターフェースです。
type UseCase interface {
	SubmitReview(ctx context.Context, in SubmitReviewInput) (*Review, error)
	ListReviewsForEmployee(ctx context.Context, in ListReviewsForEmployeeInput) ([]*Review, error)
	ListAllReviews(ctx context.Context) ([]*Review, error)
}

// NewService は Service を生成します。
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// SubmitReviewInput は評価登録時の入力です。
type SubmitReviewInput struct {
	EmployeeID          int64
	ReviewDate          string
	ReviewerName        string
	OverallRating       float64
	Strengths           []string
	AreasForImprovement []string
	Comments            string
	GoalsForNextPeriod  []string
}

// ListReviewsForEmployeeInput は社員別評価一覧の入力です。
type ListReviewsForEmployeeInput struct {
	EmployeeID int64
}

// Build は入力を検証し、保存前の Review を組み立てます。
func Build(in SubmitReviewInput) (*Review, error) {
	if in.EmployeeID <= 0 {
		return nil, ErrInvalidEmployeeID
	}

	reviewDate, err := calendar.Parse(in.ReviewDate)
	if err != nil {
		return nil, ErrInvalidReviewDate
	}

	reviewer := strings.TrimSpace(in.ReviewerName)
	if reviewer == "" {
		return nil, ErrInvalidReviewer
	}

	if math.IsNaN(in.OverallRating) || in.OverallRating < MinRating || in.OverallRating > MaxRating {
		return nil, ErrInvalidRating
	}

	return &Review{
		EmployeeID:          in.EmployeeID,
		ReviewDate:          reviewDate,
		ReviewerName:        reviewer,
		OverallRating:       in.OverallRating,
		Strengths:           CleanTags(in.Strengths),
		AreasForImprovement: CleanTags(in.AreasForImprovement),
		Comments:            strings.TrimSpace(in.Comments),
		GoalsForNextPeriod:  CleanTags(in.GoalsForNextPeriod),
	}, nil
}

// CleanTags は各要素の前後空白を除き、空要素を捨てます。順序は保持します。
func CleanTags(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, tag := range raw {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// SortByDateDesc は評価日の降順に並べ替えます。同日の場合は元の順序を保ちます。
func SortByDateDesc(reviews []*Review) {
	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].ReviewDate.After(reviews[j].ReviewDate)
	})
}

// SubmitReview は評価を登録します。
func (s *Service) SubmitReview(ctx context.Context, in SubmitReviewInput) (*Review, error) {
	draft, err := Build(in)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, draft)
}

// ListReviewsForEmployee は社員の評価を評価日の降順で返します。
func (s *Service) ListReviewsForEmployee(ctx context.Context, in ListReviewsForEmployeeInput) ([]*Review, error) {
	if in.EmployeeID <= 0 {
		return nil, ErrInvalidEmployeeID
	}

	reviews, err := s.repo.ListByEmployee(ctx, in.EmployeeID)
	if err != nil {
		return nil, err
	}
	SortByDateDesc(reviews)
	return reviews, nil
}

// ListAllReviews はすべての評価を返します。
func (s *Service) ListAllReviews(ctx context.Context) ([]*Review, error) {
	return s.repo.ListAll(ctx)
}
