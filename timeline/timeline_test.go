package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/solarlog/tariff-tracker/tariff"
)

func datePtr(d tariff.Date) *tariff.Date {
	return &d
}

func period(name string, direction tariff.FlowDirection, start tariff.Date, end *tariff.Date) *tariff.Period {
	return &tariff.Period{
		StartDate:     start,
		EndDate:       end,
		ProductCode:   "VAR-22-11-01",
		TariffCode:    "E-1R-VAR-22-11-01-C",
		DisplayName:   name,
		Kind:          tariff.KindVariable,
		FlowDirection: direction,
		Region:        "C",
	}
}

func TestAddPeriodRejectsDirectionMismatch(t *testing.T) {
	tl := New(tariff.Import)
	err := tl.AddPeriod(period("export", tariff.Export, tariff.NewDate(2023, time.January, 1), nil))
	require.Error(t, err)
	require.Empty(t, tl.Periods)
}

func TestAddPeriodKeepsSortedOrder(t *testing.T) {
	tl := New(tariff.Import)
	later := period("later", tariff.Import, tariff.NewDate(2023, time.July, 1), nil)
	earlier := period("earlier", tariff.Import, tariff.NewDate(2023, time.January, 1),
		datePtr(tariff.NewDate(2023, time.June, 30)))

	require.NoError(t, tl.AddPeriod(later))
	require.NoError(t, tl.AddPeriod(earlier))

	require.Equal(t, "earlier", tl.Periods[0].DisplayName)
	require.Equal(t, "later", tl.Periods[1].DisplayName)
}

func TestRemovePeriod(t *testing.T) {
	tl := New(tariff.Import)
	require.NoError(t, tl.AddPeriod(period("a", tariff.Import, tariff.NewDate(2023, time.January, 1),
		datePtr(tariff.NewDate(2023, time.June, 30)))))
	require.NoError(t, tl.AddPeriod(period("b", tariff.Import, tariff.NewDate(2023, time.July, 1), nil)))

	require.Error(t, tl.RemovePeriod(-1))
	require.Error(t, tl.RemovePeriod(2))

	require.NoError(t, tl.RemovePeriod(0))
	require.Len(t, tl.Periods, 1)
	require.Equal(t, "b", tl.Periods[0].DisplayName)
}

func TestPeriodAt(t *testing.T) {
	tl := New(tariff.Import)
	first := period("first", tariff.Import, tariff.NewDate(2023, time.January, 1),
		datePtr(tariff.NewDate(2023, time.March, 31)))
	second := period("second", tariff.Import, tariff.NewDate(2023, time.April, 1), nil)
	require.NoError(t, tl.AddPeriod(first))
	require.NoError(t, tl.AddPeriod(second))

	require.Equal(t, first, tl.PeriodAt(tariff.NewDate(2023, time.February, 15)))
	require.Equal(t, first, tl.PeriodAt(tariff.NewDate(2023, time.March, 31)))
	require.Equal(t, second, tl.PeriodAt(tariff.NewDate(2023, time.April, 1)))
	require.Nil(t, tl.PeriodAt(tariff.NewDate(2022, time.December, 31)))
}

func TestPeriodAtOverlapEarliestStartWins(t *testing.T) {
	// Overlapping periods are a misconfiguration, but lookup must stay
	// deterministic: the earliest-starting period takes precedence.
	tl := New(tariff.Import)
	late := period("late", tariff.Import, tariff.NewDate(2023, time.June, 1), nil)
	early := period("early", tariff.Import, tariff.NewDate(2023, time.January, 1),
		datePtr(tariff.NewDate(2023, time.June, 30)))
	require.NoError(t, tl.AddPeriod(late))
	require.NoError(t, tl.AddPeriod(early))

	got := tl.PeriodAt(tariff.NewDate(2023, time.June, 15))
	require.Equal(t, "early", got.DisplayName)
}

func TestGaps(t *testing.T) {
	tl := New(tariff.Import)
	require.NoError(t, tl.AddPeriod(period("q1", tariff.Import, tariff.NewDate(2023, time.January, 1),
		datePtr(tariff.NewDate(2023, time.March, 31)))))
	require.NoError(t, tl.AddPeriod(period("rest", tariff.Import, tariff.NewDate(2023, time.April, 2), nil)))

	gaps := tl.Gaps()
	require.Equal(t, []DateRange{{
		Start: tariff.NewDate(2023, time.April, 1),
		End:   tariff.NewDate(2023, time.April, 1),
	}}, gaps)
}

func TestGapsContiguousAndOpenEnded(t *testing.T) {
	tl := New(tariff.Import)
	require.NoError(t, tl.AddPeriod(period("q1", tariff.Import, tariff.NewDate(2023, time.January, 1),
		datePtr(tariff.NewDate(2023, time.March, 31)))))
	require.NoError(t, tl.AddPeriod(period("rest", tariff.Import, tariff.NewDate(2023, time.April, 1), nil)))

	require.Empty(t, tl.Gaps())

	// An open-ended period never produces a trailing gap.
	solo := New(tariff.Export)
	require.NoError(t, solo.AddPeriod(period("solo", tariff.Export, tariff.NewDate(2023, time.January, 1), nil)))
	require.Empty(t, solo.Gaps())
}

func TestOverlaps(t *testing.T) {
	tl := New(tariff.Import)
	require.NoError(t, tl.AddPeriod(period("h1", tariff.Import, tariff.NewDate(2023, time.January, 1),
		datePtr(tariff.NewDate(2023, time.June, 30)))))
	require.NoError(t, tl.AddPeriod(period("h2", tariff.Import, tariff.NewDate(2023, time.June, 1), nil)))

	require.Equal(t, []IndexPair{{First: 0, Second: 1}}, tl.Overlaps())
}

func TestOverlapsOpenEndedPeriod(t *testing.T) {
	tl := New(tariff.Import)
	require.NoError(t, tl.AddPeriod(period("ongoing", tariff.Import, tariff.NewDate(2023, time.January, 1), nil)))
	require.NoError(t, tl.AddPeriod(period("new", tariff.Import, tariff.NewDate(2023, time.July, 1), nil)))

	require.Equal(t, []IndexPair{{First: 0, Second: 1}}, tl.Overlaps())
}

func TestValidate(t *testing.T) {
	tl := New(tariff.Import)
	require.NoError(t, tl.AddPeriod(period("backwards", tariff.Import, tariff.NewDate(2023, time.June, 1),
		datePtr(tariff.NewDate(2023, time.January, 1)))))

	issues := tl.Validate()
	require.Len(t, issues.InvalidPeriods, 1)
	require.Equal(t, 0, issues.InvalidPeriods[0].Index)
	require.False(t, issues.Clean())

	clean := New(tariff.Import)
	require.NoError(t, clean.AddPeriod(period("fine", tariff.Import, tariff.NewDate(2023, time.January, 1), nil)))
	require.True(t, clean.Validate().Clean())
}
