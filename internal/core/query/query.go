// Package query projects the file collection into what the user currently
// sees. Apply is a pure function of (records, view, filter, now); identical
// inputs always yield an identical sequence.
package query

import (
	"sort"
	"strings"
	"time"

	"github.com/kirillkom/gemini-drive/internal/core/domain"
)

const dayMillis = 24 * int64(time.Hour/time.Millisecond)

// Apply runs the four pipeline steps in order: view selection (base sort and
// the AI pre-filter), free-text search over name and notes, type facet, date
// facet. Later steps operate on the already-reduced set.
func Apply(records []domain.FileRecord, view domain.View, filter domain.FilterState, now time.Time) []domain.FileRecord {
	result := make([]domain.FileRecord, len(records))
	copy(result, records)

	// Stable sort keeps ties in input order, so re-running over an
	// unchanged collection cannot reshuffle the rendered grid.
	switch view {
	case domain.ViewRecent:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].UpdatedAt > result[j].UpdatedAt
		})
	default:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].CreatedAt > result[j].CreatedAt
		})
	}

	if view == domain.ViewAI {
		result = keep(result, func(f domain.FileRecord) bool {
			return f.Analyzed()
		})
	}

	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		result = keep(result, func(f domain.FileRecord) bool {
			return strings.Contains(strings.ToLower(f.Name), search) ||
				strings.Contains(strings.ToLower(f.Notes), search)
		})
	}

	if filter.Type != "" && filter.Type != domain.TypeFilterAll {
		result = keep(result, func(f domain.FileRecord) bool {
			return string(f.Kind) == filter.Type
		})
	}

	if days := filter.DateRange.CutoffDays(); days >= 0 {
		cutoff := midnightMillis(now) - int64(days)*dayMillis
		result = keep(result, func(f domain.FileRecord) bool {
			return f.CreatedAt >= cutoff
		})
	}

	return result
}

func keep(records []domain.FileRecord, pred func(domain.FileRecord) bool) []domain.FileRecord {
	kept := records[:0]
	for _, record := range records {
		if pred(record) {
			kept = append(kept, record)
		}
	}
	return kept
}

// midnightMillis is local midnight of the given day in epoch milliseconds.
// The date facet anchors on the user's calendar day, not a rolling 24h
// window.
func midnightMillis(now time.Time) int64 {
	year, month, day := now.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, now.Location()).UnixMilli()
}
