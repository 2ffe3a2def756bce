package octopus

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/solarlog/tariff-tracker/tariff"
	"github.com/solarlog/tariff-tracker/timeline"
)

// manualProductPrefix marks periods whose records were entered by hand and
// must survive a refresh.
const manualProductPrefix = "MANUAL-"

// fetchBounds returns the UTC window that covers the period's date range in
// the market's civil timezone. Midnight civil time is 23:00 UTC during
// summer time, so the bounds come from the timezone database rather than
// fixed offsets.
func (s *Service) fetchBounds(p *tariff.Period) (time.Time, time.Time) {
	start := p.StartDate.Midnight(s.loc)

	endDate := tariff.Today(s.loc)
	if p.EndDate != nil {
		endDate = *p.EndDate
	}
	end := endDate.AddDays(1).Midnight(s.loc)

	return start.UTC(), end.UTC()
}

// RefreshPeriod replaces the period's rate and standing charge records with
// fresh data from the supplier API, choosing the endpoints by the period's
// kind. Manually maintained periods (product code prefixed "MANUAL-") are
// left untouched.
func (s *Service) RefreshPeriod(p *tariff.Period) error {
	if strings.HasPrefix(p.ProductCode, manualProductPrefix) {
		zap.L().Info("skipping refresh of manually maintained period",
			zap.String("period", p.DisplayName))
		return nil
	}

	start, end := s.fetchBounds(p)

	var (
		rates []tariff.Rate
		err   error
	)
	if p.Kind == tariff.KindTimeOfUse {
		rates, err = s.FetchDayNightRates(p.ProductCode, p.TariffCode, start, end)
	} else {
		rates, err = s.FetchStandardRates(p.ProductCode, p.TariffCode, start, end)
	}
	if err != nil {
		return fmt.Errorf("refresh rates for %s: %w", p.DisplayName, err)
	}

	charges, err := s.FetchStandingCharges(p.ProductCode, p.TariffCode, start, end)
	if err != nil {
		return fmt.Errorf("refresh standing charges for %s: %w", p.DisplayName, err)
	}

	p.Rates = rates
	p.StandingCharges = charges
	now := time.Now().UTC()
	p.LastUpdated = &now

	zap.L().Info("period refreshed",
		zap.String("period", p.DisplayName),
		zap.Int("rates", len(rates)),
		zap.Int("standing_charges", len(charges)))
	return nil
}

// RefreshAll refreshes every period in both timelines. Individual period
// failures are logged and skipped so one dead product code cannot block the
// rest; the first error encountered is returned after the sweep.
func (s *Service) RefreshAll(cfg *timeline.Config) error {
	var firstErr error
	for _, tl := range []*timeline.Timeline{&cfg.ImportTimeline, &cfg.ExportTimeline} {
		for _, p := range tl.Periods {
			if err := s.RefreshPeriod(p); err != nil {
				zap.L().Error("period refresh failed",
					zap.String("period", p.DisplayName),
					zap.Error(err))
				if firstErr == nil {
					firstErr = err
				}
			}
		}
	}
	return firstErr
}
