package timeline

import (
	"time"

	"go.uber.org/zap"

	"github.com/solarlog/tariff-tracker/tariff"
)

// marketTimezone returns the civil timezone of the GB energy market.
// Time-of-use window boundaries are defined in local civil time, so queries
// must be rendered here before any date or clock arithmetic.
func marketTimezone() *time.Location {
	loc, err := time.LoadLocation("Europe/London")
	if err != nil {
		// No tzdata available; UTC is wrong for half the year but keeps
		// the resolver usable.
		zap.L().Warn("Europe/London timezone unavailable, using UTC", zap.Error(err))
		return time.UTC
	}
	return loc
}

// Resolver answers point-in-time pricing queries over a loaded
// configuration. It is a pure in-memory query object: construct one
// explicitly and hand it to every consumer, there is no ambient global
// instance. Queries are side-effect free; mutations of the underlying
// configuration must be serialized externally.
type Resolver struct {
	cfg *Config
	loc *time.Location
	log *zap.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLocation overrides the market civil timezone used to interpret query
// instants.
func WithLocation(loc *time.Location) Option {
	return func(r *Resolver) { r.loc = loc }
}

// WithLogger overrides the logger used for lookup diagnostics.
func WithLogger(log *zap.Logger) Option {
	return func(r *Resolver) { r.log = log }
}

// NewResolver returns a resolver over cfg, defaulting to the Europe/London
// civil timezone.
func NewResolver(cfg *Config, opts ...Option) *Resolver {
	r := &Resolver{cfg: cfg, loc: marketTimezone(), log: zap.L()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Config returns the configuration the resolver answers queries over.
func (r *Resolver) Config() *Config {
	return r.cfg
}

// RateAt returns the unit rate that applied at t for the given flow
// direction, deriving the rate label from the owning period's time-of-use
// logic. The second return is false when no period covers t's date or the
// period has no matching rate record; neither case is an error.
func (r *Resolver) RateAt(t time.Time, direction tariff.FlowDirection) (tariff.Rate, bool) {
	local := t.In(r.loc)

	period := r.cfg.Timeline(direction).PeriodAt(tariff.DateOf(local))
	if period == nil {
		r.log.Debug("no period covers instant",
			zap.Time("instant", t),
			zap.Stringer("direction", direction))
		return tariff.Rate{}, false
	}

	rate, ok := period.RateAt(local)
	r.log.Debug("rate lookup",
		zap.Time("instant", t),
		zap.Stringer("direction", direction),
		zap.String("period", period.DisplayName),
		zap.Bool("found", ok))
	return rate, ok
}

// RateAtLabel is RateAt with an explicit rate label, bypassing window-based
// label selection.
func (r *Resolver) RateAtLabel(t time.Time, direction tariff.FlowDirection, label tariff.Label) (tariff.Rate, bool) {
	local := t.In(r.loc)

	period := r.cfg.Timeline(direction).PeriodAt(tariff.DateOf(local))
	if period == nil {
		return tariff.Rate{}, false
	}
	return period.RateAtLabel(local, label)
}

// StandingChargeAt returns the daily standing charge that applied at t for
// the given flow direction.
func (r *Resolver) StandingChargeAt(t time.Time, direction tariff.FlowDirection) (tariff.StandingCharge, bool) {
	local := t.In(r.loc)

	period := r.cfg.Timeline(direction).PeriodAt(tariff.DateOf(local))
	if period == nil {
		return tariff.StandingCharge{}, false
	}
	return period.StandingChargeAt(local)
}

// PeriodAt returns the period in force on the given date for the given flow
// direction, or nil.
func (r *Resolver) PeriodAt(direction tariff.FlowDirection, d tariff.Date) *tariff.Period {
	return r.cfg.Timeline(direction).PeriodAt(d)
}

// ActivePeriod returns the period in force today for the given flow
// direction, or nil.
func (r *Resolver) ActivePeriod(direction tariff.FlowDirection) *tariff.Period {
	return r.cfg.Timeline(direction).ActivePeriod(tariff.Today(r.loc))
}

// Report holds validation findings for both timelines.
type Report struct {
	Import Issues `json:"import"`
	Export Issues `json:"export"`
}

// Clean reports whether neither timeline has findings.
func (r Report) Clean() bool {
	return r.Import.Clean() && r.Export.Clean()
}

// Validate checks both timelines for gaps, overlaps and malformed periods.
func (r *Resolver) Validate() Report {
	report := Report{
		Import: r.cfg.ImportTimeline.Validate(),
		Export: r.cfg.ExportTimeline.Validate(),
	}
	r.log.Debug("timelines validated",
		zap.Int("import_gaps", len(report.Import.Gaps)),
		zap.Int("import_overlaps", len(report.Import.Overlaps)),
		zap.Int("export_gaps", len(report.Export.Gaps)),
		zap.Int("export_overlaps", len(report.Export.Overlaps)))
	return report
}

// Summary describes the configured timelines at a glance.
type Summary struct {
	ImportPeriods int    `json:"import_periods"`
	ExportPeriods int    `json:"export_periods"`
	ImportActive  string `json:"import_active"`
	ExportActive  string `json:"export_active"`
	Validation    Report `json:"validation"`
}

// Summary returns period counts, the currently active contracts and the
// validation report.
func (r *Resolver) Summary() Summary {
	s := Summary{
		ImportPeriods: len(r.cfg.ImportTimeline.Periods),
		ExportPeriods: len(r.cfg.ExportTimeline.Periods),
		Validation:    r.Validate(),
	}
	if p := r.ActivePeriod(tariff.Import); p != nil {
		s.ImportActive = p.DisplayName
	}
	if p := r.ActivePeriod(tariff.Export); p != nil {
		s.ExportActive = p.DisplayName
	}
	return s
}
