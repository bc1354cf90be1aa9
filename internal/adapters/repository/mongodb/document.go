package mongodb

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ogurasousui/hr-records/internal/core/calendar"
	"github.com/ogurasousui/hr-records/internal/core/review"
)

// reviewDocument は書き込み時のドキュメント形状です。
type reviewDocument struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty"`
	EmployeeID          int64              `bson:"employee_id"`
	ReviewDate          string             `bson:"review_date"`
	ReviewerName        string             `bson:"reviewer_name"`
	OverallRating       float64            `bson:"overall_rating"`
	Strengths           []string           `bson:"strengths"`
	AreasForImprovement []string           `bson:"areas_for_improvement"`
	Comments            string             `bson:"comments"`
	GoalsForNextPeriod  []string           `bson:"goals_for_next_period"`
}

var knownFields = map[string]struct{}{
	"_id":                   {},
	"employee_id":           {},
	"review_date":           {},
	"reviewer_name":         {},
	"overall_rating":        {},
	"strengths":             {},
	"areas_for_improvement": {},
	"comments":              {},
	"goals_for_next_period": {},
}

func toDocument(r *review.Review) reviewDocument {
	return reviewDocument{
		EmployeeID:          r.EmployeeID,
		ReviewDate:          calendar.Format(r.ReviewDate),
		ReviewerName:        r.ReviewerName,
		OverallRating:       r.OverallRating,
		Strengths:           nonNil(r.Strengths),
		AreasForImprovement: nonNil(r.AreasForImprovement),
		Comments:            r.Comments,
		GoalsForNextPeriod:  nonNil(r.GoalsForNextPeriod),
	}
}

// decodeReview は保存形式の揺れを吸収して Review に変換します。未知のフィールド名は dropped に返します。
func decodeReview(doc bson.M) (*review.Review, []string, error) {
	var (
		r   review.Review
		err error
	)

	r.ID = decodeID(doc["_id"])

	if r.EmployeeID, err = decodeEmployeeID(doc["employee_id"]); err != nil {
		return nil, nil, fmt.Errorf("review %s: employee_id: %w", r.ID, err)
	}
	if r.ReviewDate, err = decodeDate(doc["review_date"]); err != nil {
		return nil, nil, fmt.Errorf("review %s: review_date: %w", r.ID, err)
	}
	if r.OverallRating, err = decodeRating(doc["overall_rating"]); err != nil {
		return nil, nil, fmt.Errorf("review %s: overall_rating: %w", r.ID, err)
	}
	if r.OverallRating < review.MinRating || r.OverallRating > review.MaxRating {
		return nil, nil, fmt.Errorf("review %s: overall_rating %v outside [%v, %v]", r.ID, r.OverallRating, review.MinRating, review.MaxRating)
	}

	r.ReviewerName = decodeString(doc["reviewer_name"])
	r.Comments = decodeString(doc["comments"])
	r.Strengths = decodeStrings(doc["strengths"])
	r.AreasForImprovement = decodeStrings(doc["areas_for_improvement"])
	r.GoalsForNextPeriod = decodeStrings(doc["goals_for_next_period"])

	var dropped []string
	for key := range doc {
		if _, ok := knownFields[key]; !ok {
			dropped = append(dropped, key)
		}
	}
	sort.Strings(dropped)

	return &r, dropped, nil
}

func decodeID(value any) string {
	switch v := value.(type) {
	case primitive.ObjectID:
		return v.Hex()
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func decodeEmployeeID(value any) (int64, error) {
	switch v := value.(type) {
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("non-integral value %v", v)
		}
		return int64(v), nil
	case string:
		return strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	default:
		return 0, fmt.Errorf("unsupported type %T", value)
	}
}

func decodeDate(value any) (time.Time, error) {
	switch v := value.(type) {
	case primitive.DateTime:
		return calendar.Normalize(v.Time().UTC()), nil
	case time.Time:
		return calendar.Normalize(v.UTC()), nil
	case string:
		return calendar.Parse(v)
	default:
		return time.Time{}, fmt.Errorf("unsupported type %T", value)
	}
}

func decodeRating(value any) (float64, error) {
	switch v := value.(type) {
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case float64:
		return v, nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	case nil:
		return 0, errors.New("missing")
	default:
		return 0, fmt.Errorf("unsupported type %T", value)
	}
}

func decodeString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func decodeStrings(value any) []string {
	var items []any
	switch v := value.(type) {
	case primitive.A:
		items = v
	case []any:
		items = v
	case []string:
		return review.CleanTags(v)
	case string:
		// 旧データはカンマ区切りの文字列で保存されていることがあります。
		return review.CleanTags(strings.Split(v, ","))
	default:
		return []string{}
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return review.CleanTags(out)
}

// employeeFilter は数値と文字列の両方で保存された employee_id に一致するフィルタを返します。
func employeeFilter(employeeID int64) bson.M {
	return bson.M{"employee_id": bson.M{"$in": bson.A{employeeID, strconv.FormatInt(employeeID, 10)}}}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
