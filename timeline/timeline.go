package timeline

import (
	"fmt"
	"sort"

	"github.com/solarlog/tariff-tracker/tariff"
)

// Timeline is the ordered history of tariff contracts for one flow
// direction. Periods are kept sorted by start date after every mutation.
//
// Coverage is advisory rather than enforced: overlapping or gappy period
// sets are accepted and surfaced through Validate, so in-progress edits are
// never rejected.
type Timeline struct {
	FlowDirection tariff.FlowDirection `json:"flow_direction"`
	Periods       []*tariff.Period     `json:"periods"`
}

// New returns an empty timeline for the given flow direction.
func New(direction tariff.FlowDirection) Timeline {
	return Timeline{FlowDirection: direction, Periods: []*tariff.Period{}}
}

// AddPeriod appends a period and re-sorts the timeline. It refuses periods
// whose flow direction does not match the timeline's.
func (tl *Timeline) AddPeriod(p *tariff.Period) error {
	if p.FlowDirection != tl.FlowDirection {
		return fmt.Errorf("period flow direction %s does not match timeline %s", p.FlowDirection, tl.FlowDirection)
	}
	tl.Periods = append(tl.Periods, p)
	tl.sortPeriods()
	return nil
}

// RemovePeriod removes the period at the given index in the current sorted
// order. Indices shift after any mutation, so callers must re-fetch them.
func (tl *Timeline) RemovePeriod(index int) error {
	if index < 0 || index >= len(tl.Periods) {
		return fmt.Errorf("period index %d out of range (have %d periods)", index, len(tl.Periods))
	}
	tl.Periods = append(tl.Periods[:index], tl.Periods[index+1:]...)
	return nil
}

func (tl *Timeline) sortPeriods() {
	sort.SliceStable(tl.Periods, func(i, j int) bool {
		return tl.Periods[i].StartDate.Before(tl.Periods[j].StartDate)
	})
}

// PeriodAt returns the period in force on the given date, or nil when the
// date is uncovered. Periods are scanned in start-date order and the first
// covering period wins; under an (invalid but permitted) overlap this means
// the earliest-starting period takes precedence, a tie-break preserved for
// compatibility and pinned by tests.
func (tl *Timeline) PeriodAt(d tariff.Date) *tariff.Period {
	for _, p := range tl.Periods {
		if p.Covers(d) {
			return p
		}
	}
	return nil
}

// ActivePeriod returns the period in force today, or nil.
func (tl *Timeline) ActivePeriod(today tariff.Date) *tariff.Period {
	return tl.PeriodAt(today)
}

// DateRange is an inclusive range of calendar dates.
type DateRange struct {
	Start tariff.Date `json:"start"`
	End   tariff.Date `json:"end"`
}

// Gaps returns the date ranges covered by no period. Only closed periods can
// open a gap; an open-ended period covers everything after its start.
func (tl *Timeline) Gaps() []DateRange {
	var gaps []DateRange
	periods := tl.sortedCopy()

	for i := 0; i < len(periods)-1; i++ {
		end := periods[i].EndDate
		next := periods[i+1].StartDate
		if end != nil && end.AddDays(1).Before(next) {
			gaps = append(gaps, DateRange{Start: end.AddDays(1), End: next.AddDays(-1)})
		}
	}
	return gaps
}

// IndexPair identifies two overlapping periods by their positions in
// start-date order.
type IndexPair struct {
	First  int `json:"first"`
	Second int `json:"second"`
}

// Overlaps returns the adjacent period pairs whose date ranges intersect. An
// open-ended period overlaps every period starting after it.
func (tl *Timeline) Overlaps() []IndexPair {
	var overlaps []IndexPair
	periods := tl.sortedCopy()

	for i := 0; i < len(periods)-1; i++ {
		current, next := periods[i], periods[i+1]
		if current.EndDate == nil || !current.EndDate.Before(next.StartDate) {
			overlaps = append(overlaps, IndexPair{First: i, Second: i + 1})
		}
	}
	return overlaps
}

// InvalidPeriod flags a period with a malformed date range.
type InvalidPeriod struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// Issues is the result of validating a timeline. Findings are reported, never
// auto-corrected.
type Issues struct {
	Gaps           []DateRange     `json:"gaps"`
	Overlaps       []IndexPair     `json:"overlaps"`
	InvalidPeriods []InvalidPeriod `json:"invalid_periods"`
}

// Clean reports whether validation found nothing to flag.
func (i Issues) Clean() bool {
	return len(i.Gaps) == 0 && len(i.Overlaps) == 0 && len(i.InvalidPeriods) == 0
}

// Validate checks the timeline for coverage gaps, overlapping contracts and
// malformed date ranges.
func (tl *Timeline) Validate() Issues {
	issues := Issues{
		Gaps:     tl.Gaps(),
		Overlaps: tl.Overlaps(),
	}
	for i, p := range tl.Periods {
		if p.EndDate != nil && p.EndDate.Before(p.StartDate) {
			issues.InvalidPeriods = append(issues.InvalidPeriods, InvalidPeriod{
				Index:  i,
				Reason: "end date before start date",
			})
		}
	}
	return issues
}

func (tl *Timeline) sortedCopy() []*tariff.Period {
	periods := make([]*tariff.Period, len(tl.Periods))
	copy(periods, tl.Periods)
	sort.SliceStable(periods, func(i, j int) bool {
		return periods[i].StartDate.Before(periods[j].StartDate)
	})
	return periods
}
