package report

import (
	"sort"

	"github.com/ogurasousui/hr-records/internal/core/review"
)

// AverageRating は評価の平均を返します。評価がなければ nil です。
func AverageRating(reviews []*review.Review) *float64 {
	if len(reviews) == 0 {
		return nil
	}
	var sum float64
	for _, rv := range reviews {
		sum += rv.OverallRating
	}
	avg := sum / float64(len(reviews))
	return &avg
}

func ratingStatistics(ratings []float64) RatingStatistics {
	stats := RatingStatistics{Count: len(ratings)}
	if len(ratings) == 0 {
		return stats
	}

	sorted := append([]float64(nil), ratings...)
	sort.Float64s(sorted)

	var sum float64
	for _, r := range sorted {
		sum += r
	}
	mean := sum / float64(len(sorted))

	mid := len(sorted) / 2
	median := sorted[mid]
	if len(sorted)%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	}

	minimum := sorted[0]
	maximum := sorted[len(sorted)-1]

	stats.Mean = &mean
	stats.Median = &median
	stats.Min = &minimum
	stats.Max = &maximum
	return stats
}

func groupByEmployee(reviews []*review.Review) map[int64][]*review.Review {
	grouped := make(map[int64][]*review.Review)
	for _, rv := range reviews {
		grouped[rv.EmployeeID] = append(grouped[rv.EmployeeID], rv)
	}
	return grouped
}
