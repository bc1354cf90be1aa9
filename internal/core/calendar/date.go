package calendar

import (
	"errors"
	"strings"
	"time"
)

// Layout は永続化と表示に使う日付書式です。
const Layout = "2006-01-02"

// ErrUnparsableDate は日付文字列を解釈できない場合に返却されます。
var ErrUnparsableDate = errors.New("calendar: unparsable date")

// 先頭から順に試行します。月/日の曖昧な表記は月を優先します。
var acceptedLayouts = []string{
	Layout,
	"01/02/2006",
	"02/01/2006",
	"2006/01/02",
	"01-02-2006",
	"02-01-2006",
	time.RFC3339,
}

// Parse は日付文字列を UTC 0 時の日付に変換します。
func Parse(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, ErrUnparsableDate
	}
	for _, layout := range acceptedLayouts {
		t, err := time.Parse(layout, trimmed)
		if err == nil {
			return Normalize(t), nil
		}
	}
	return time.Time{}, ErrUnparsableDate
}

// Normalize は時刻部分を切り捨てた UTC の日付を返します。
func Normalize(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Format は日付を Layout で整形します。
func Format(t time.Time) string {
	return t.UTC().Format(Layout)
}

// IsAfterDay は a が b より後の日付かを返します。
func IsAfterDay(a, b time.Time) bool {
	return Normalize(a).After(Normalize(b))
}
