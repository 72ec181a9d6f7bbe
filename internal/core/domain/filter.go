package domain

import "strings"

// View is one of the three top-level groupings the UI renders.
type View string

const (
	ViewDrive  View = "DRIVE"
	ViewRecent View = "RECENT"
	ViewAI     View = "AI"
)

func ParseView(raw string) (View, error) {
	switch View(strings.ToUpper(strings.TrimSpace(raw))) {
	case ViewDrive, "":
		return ViewDrive, nil
	case ViewRecent:
		return ViewRecent, nil
	case ViewAI:
		return ViewAI, nil
	}
	return "", WrapError(ErrInvalidInput, "parse view", errInvalidEnum(raw))
}

type DateRange string

const (
	DateRangeAll   DateRange = "ALL"
	DateRangeToday DateRange = "TODAY"
	DateRangeWeek  DateRange = "WEEK"
	DateRangeMonth DateRange = "MONTH"
)

// CutoffDays is the offset back from local midnight of today. ALL has no
// cutoff and returns -1.
func (d DateRange) CutoffDays() int {
	switch d {
	case DateRangeToday:
		return 0
	case DateRangeWeek:
		return 7
	case DateRangeMonth:
		return 30
	default:
		return -1
	}
}

// ParseDateRange rejects unknown values instead of silently widening the
// query to ALL.
func ParseDateRange(raw string) (DateRange, error) {
	switch DateRange(strings.ToUpper(strings.TrimSpace(raw))) {
	case DateRangeAll, "":
		return DateRangeAll, nil
	case DateRangeToday:
		return DateRangeToday, nil
	case DateRangeWeek:
		return DateRangeWeek, nil
	case DateRangeMonth:
		return DateRangeMonth, nil
	}
	return "", WrapError(ErrInvalidInput, "parse date range", errInvalidEnum(raw))
}

// TypeFilterAll widens the type facet to every kind.
const TypeFilterAll = "ALL"

// FilterState is the free-text search plus the two facets applied after it.
// The zero value matches everything.
type FilterState struct {
	Search    string
	Type      string // a FileKind or TypeFilterAll
	DateRange DateRange
}

func NewFilterState() FilterState {
	return FilterState{
		Search:    "",
		Type:      TypeFilterAll,
		DateRange: DateRangeAll,
	}
}

func ParseTypeFilter(raw string) (string, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(raw))
	if trimmed == "" || trimmed == TypeFilterAll {
		return TypeFilterAll, nil
	}
	kind, err := ParseFileKind(trimmed)
	if err != nil {
		return "", err
	}
	return string(kind), nil
}
