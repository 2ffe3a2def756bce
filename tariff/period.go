package tariff

import (
	"time"
)

// Period is one tariff contract: fixed metadata plus the rate and standing
// charge records that applied over its date range. Records are supplied by an
// ingestion collaborator (or entered manually) and stored in insertion order;
// lookups match on label and time containment, never on position.
//
// Serialized field names follow the tracker's persisted document schema.
type Period struct {
	StartDate   Date   `json:"start_date"`
	EndDate     *Date  `json:"end_date"`
	ProductCode string `json:"product_id"`
	TariffCode  string `json:"contract_id"`
	DisplayName string `json:"display_name"`

	Kind          Kind          `json:"kind"`
	FlowDirection FlowDirection `json:"flow_direction"`
	Region        string        `json:"region"`

	Rates           []Rate           `json:"rates"`
	StandingCharges []StandingCharge `json:"standing_charges"`
	Windows         []Window         `json:"time_of_use_windows,omitempty"`

	Notes       string     `json:"notes"`
	LastUpdated *time.Time `json:"last_updated"`
}

// Covers reports whether the contract was in force on the given date.
// Unlike rate validity intervals, contract date ranges are inclusive at both
// ends; a nil EndDate means the contract is ongoing.
func (p *Period) Covers(d Date) bool {
	if d.Before(p.StartDate) {
		return false
	}
	return p.EndDate == nil || !d.After(*p.EndDate)
}

// Active reports whether the contract is in force today.
func (p *Period) Active(today Date) bool {
	return p.Covers(today)
}

// DurationDays returns the contract length in days, or false if it is
// ongoing.
func (p *Period) DurationDays() (int, bool) {
	if p.EndDate == nil {
		return 0, false
	}
	return p.StartDate.DaysUntil(*p.EndDate) + 1, true
}

// effectiveWindows returns the time-of-use windows that drive label
// selection. Time-of-use contracts without explicit windows fall back to the
// standard Economy 7 pattern.
func (p *Period) effectiveWindows() []Window {
	if len(p.Windows) > 0 {
		return p.Windows
	}
	if p.Kind == KindTimeOfUse {
		return DefaultEconomy7Windows
	}
	return nil
}

// LabelAt returns the rate label that applies at t's local clock time. The
// first window containing t wins; when no window matches, the first defined
// window is used as a documented fallback. Contracts without windows always
// price at the standard label.
func (p *Period) LabelAt(t time.Time) Label {
	windows := p.effectiveWindows()
	if len(windows) == 0 {
		return LabelStandard
	}
	for _, w := range windows {
		if w.Contains(t) {
			return w.Label
		}
	}
	return windows[0].Label
}

// RateAt returns the rate that applied at t, selecting the variant by the
// contract's own window logic. The second return is false when no matching
// record exists, which legitimately happens for a period whose rates have not
// been ingested yet.
func (p *Period) RateAt(t time.Time) (Rate, bool) {
	if p.Kind == KindFixed && len(p.Windows) == 0 && len(p.Rates) == 1 {
		// A fixed contract carries a single price for its whole term.
		return p.Rates[0], true
	}
	return p.RateAtLabel(t, p.LabelAt(t))
}

// RateAtLabel returns the rate with the given label valid at t.
func (p *Period) RateAtLabel(t time.Time, label Label) (Rate, bool) {
	for _, r := range p.Rates {
		if r.Label == label && r.Contains(t) {
			return r, true
		}
	}
	return Rate{}, false
}

// StandingChargeAt returns the standing charge valid at t. Some export
// contracts carry no standing charge, in which case the second return is
// false.
func (p *Period) StandingChargeAt(t time.Time) (StandingCharge, bool) {
	for _, c := range p.StandingCharges {
		if c.Contains(t) {
			return c, true
		}
	}
	return StandingCharge{}, false
}

// span returns the UTC validity interval covering the period's full date
// range, for manually entered records.
func (p *Period) span() (time.Time, *time.Time) {
	from := p.StartDate.Midnight(time.UTC)
	if p.EndDate == nil {
		return from, nil
	}
	to := p.EndDate.AddDays(1).Midnight(time.UTC)
	return from, &to
}

// SetManualFlatRate replaces the period's rate records with a single standard
// rate spanning the contract's date range. Export prices carry no VAT, so
// callers pass the same value for both when entering export rates.
func (p *Period) SetManualFlatRate(excVAT, incVAT float64) {
	from, to := p.span()
	p.Rates = []Rate{{
		ValidFrom:   from,
		ValidTo:     to,
		ValueExcVAT: excVAT,
		ValueIncVAT: incVAT,
		Label:       LabelStandard,
	}}
	p.touch()
}

// SetManualDayNightRates replaces the period's rate records with day and
// night rates spanning the contract's date range.
func (p *Period) SetManualDayNightRates(dayExcVAT, dayIncVAT, nightExcVAT, nightIncVAT float64) {
	from, to := p.span()
	p.Rates = []Rate{
		{ValidFrom: from, ValidTo: to, ValueExcVAT: dayExcVAT, ValueIncVAT: dayIncVAT, Label: LabelDay},
		{ValidFrom: from, ValidTo: to, ValueExcVAT: nightExcVAT, ValueIncVAT: nightIncVAT, Label: LabelNight},
	}
	p.touch()
}

// SetManualStandingCharge replaces the period's standing charges with a
// single charge spanning the contract's date range.
func (p *Period) SetManualStandingCharge(excVAT, incVAT float64) {
	from, to := p.span()
	p.StandingCharges = []StandingCharge{{
		ValidFrom:   from,
		ValidTo:     to,
		ValueExcVAT: excVAT,
		ValueIncVAT: incVAT,
	}}
	p.touch()
}

func (p *Period) touch() {
	now := time.Now().UTC()
	p.LastUpdated = &now
}
