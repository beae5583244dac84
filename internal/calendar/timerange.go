package calendar

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidTimeRange = errors.New("invalid time range")
	ErrInvalidTimestamp = errors.New("invalid timestamp")
)

// TimeRange представляет временной интервал [Start, End).
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// NewTimeRange создаёт интервал; границы не должны быть нулевыми, End строго после Start.
func NewTimeRange(start, end time.Time) (TimeRange, error) {
	if start.IsZero() || end.IsZero() {
		return TimeRange{}, ErrInvalidTimeRange
	}
	if !end.After(start) {
		return TimeRange{}, ErrInvalidTimeRange
	}
	return TimeRange{Start: start, End: end}, nil
}

// Форматы, которые присылают клиенты. Первым идёт RFC3339 со смещением,
// остальные без зоны и интерпретируются в loc.
var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// ParseTimestamp приводит строку к каноническому виду хранения:
// UTC, с точностью до секунды.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidTimestamp
	}
	if loc == nil {
		loc = time.UTC
	}

	for _, layout := range layouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return Canonical(t), nil
		}
	}
	return time.Time{}, ErrInvalidTimestamp
}

// Canonical приводит время к UTC без долей секунды. Одинаковая точность нужна, чтобы
// сравнения в БД (в sqlite это строки) совпадали со сравнениями в Go.
func Canonical(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

// ParseTimeRange разбирает обе границы и проверяет, что End после Start.
func ParseTimeRange(start, end string, loc *time.Location) (TimeRange, error) {
	s, err := ParseTimestamp(start, loc)
	if err != nil {
		return TimeRange{}, err
	}
	e, err := ParseTimestamp(end, loc)
	if err != nil {
		return TimeRange{}, err
	}
	return NewTimeRange(s, e)
}

// Overlaps сообщает, пересекаются ли полуоткрытые интервалы:
// a.Start < b.End && b.Start < a.End. Касание концами пересечением не считается.
func (tr TimeRange) Overlaps(other TimeRange) bool {
	return rangesOverlap(tr, other, false)
}

// HasOverlap проверяет, пересекается ли newRange с existing.
// При inclusive = true касание концами считается пересечением.
func HasOverlap(
	newRange TimeRange,
	existing []TimeRange,
	inclusive bool,
) (bool, []TimeRange) {
	var conflicts []TimeRange

	for _, tr := range existing {
		if rangesOverlap(newRange, tr, inclusive) {
			conflicts = append(conflicts, tr)
		}
	}

	return len(conflicts) > 0, conflicts
}

func rangesOverlap(a, b TimeRange, inclusive bool) bool {
	if inclusive {
		return !a.Start.After(b.End) && !b.Start.After(a.End)
	}
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}
