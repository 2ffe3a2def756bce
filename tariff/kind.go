package tariff

import (
	"encoding/json"
	"fmt"
)

// Kind categorises the rate shape of a tariff contract.
type Kind string

const (
	// KindFixed is a flat unit rate locked for the contract term.
	KindFixed Kind = "fixed"
	// KindVariable is a supplier-set rate that changes occasionally.
	KindVariable Kind = "variable"
	// KindTimeOfUse is a day/night or off-peak-window split (Economy 7, Go).
	KindTimeOfUse Kind = "time_of_use"
	// KindMarketLinked tracks wholesale pricing in half-hour slots (Agile).
	KindMarketLinked Kind = "market_linked"
)

// ParseKind returns the Kind for s, rejecting anything outside the closed set.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindFixed, KindVariable, KindTimeOfUse, KindMarketLinked:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown tariff kind %q", s)
}

func (k Kind) String() string {
	return string(k)
}

func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// FlowDirection is the direction of energy flow a tariff prices.
type FlowDirection string

const (
	// Import is grid consumption, paid for by the customer.
	Import FlowDirection = "import"
	// Export is generation sold back to the grid.
	Export FlowDirection = "export"
)

// ParseFlowDirection returns the FlowDirection for s, rejecting unknown values.
func ParseFlowDirection(s string) (FlowDirection, error) {
	switch FlowDirection(s) {
	case Import, Export:
		return FlowDirection(s), nil
	}
	return "", fmt.Errorf("unknown flow direction %q", s)
}

func (f FlowDirection) String() string {
	return string(f)
}

func (f *FlowDirection) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseFlowDirection(s)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
