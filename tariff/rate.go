package tariff

import (
	"encoding/json"
	"fmt"
	"time"
)

// Label names the rate variant within a tariff period.
type Label string

const (
	// LabelStandard is the single rate of fixed/variable/market-linked tariffs.
	LabelStandard Label = "standard"
	// LabelDay is the daytime rate of a time-of-use tariff.
	LabelDay Label = "day"
	// LabelNight is the off-peak rate of a time-of-use tariff.
	LabelNight Label = "night"
)

// ParseLabel returns the Label for s, rejecting anything outside the closed set.
func ParseLabel(s string) (Label, error) {
	switch Label(s) {
	case LabelStandard, LabelDay, LabelNight:
		return Label(s), nil
	}
	return "", fmt.Errorf("unknown rate label %q", s)
}

func (l Label) String() string {
	return string(l)
}

func (l *Label) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseLabel(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Rate is a unit price in p/kWh valid over the half-open interval
// [ValidFrom, ValidTo). A nil ValidTo means the rate is still in effect.
type Rate struct {
	ValidFrom   time.Time  `json:"valid_from"`
	ValidTo     *time.Time `json:"valid_to"`
	ValueExcVAT float64    `json:"value_exc_vat"`
	ValueIncVAT float64    `json:"value_inc_vat"`
	Label       Label      `json:"label"`
}

// Contains reports whether t falls within the rate's validity interval.
func (r Rate) Contains(t time.Time) bool {
	if t.Before(r.ValidFrom) {
		return false
	}
	return r.ValidTo == nil || t.Before(*r.ValidTo)
}

// StandingCharge is a flat daily charge in p/day valid over the half-open
// interval [ValidFrom, ValidTo). It carries no label: standing charges do not
// vary by time of day.
type StandingCharge struct {
	ValidFrom   time.Time  `json:"valid_from"`
	ValidTo     *time.Time `json:"valid_to"`
	ValueExcVAT float64    `json:"value_exc_vat"`
	ValueIncVAT float64    `json:"value_inc_vat"`
}

// Contains reports whether t falls within the charge's validity interval.
func (c StandingCharge) Contains(t time.Time) bool {
	if t.Before(c.ValidFrom) {
		return false
	}
	return c.ValidTo == nil || t.Before(*c.ValidTo)
}
