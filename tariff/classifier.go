package tariff

import "strings"

// ProbeFunc asks the supplier API whether a product publishes separate day
// and night unit rates, to disambiguate time-of-use contracts from plain
// fixed/variable ones when the product name alone is inconclusive.
type ProbeFunc func(productCode string) (dayNight bool, err error)

// economy7Patterns are product-name fragments that indicate a two-rate
// day/night contract.
var economy7Patterns = []string{"eco7", "economy7", "economy-7", "dual", "2-rate", "two-rate"}

// ClassifyProduct guesses the Kind of a contract from its product code using
// case-insensitive keyword matching against known supplier naming
// conventions, optionally invoking probe for ambiguous names. probe may be
// nil, in which case ambiguous products classify as variable.
//
// This is best-effort: a novel or renamed product can be misclassified and
// there is no feedback loop to correct a wrong guess. Callers that know the
// contract shape should set the Kind directly.
func ClassifyProduct(productCode string, probe ProbeFunc) Kind {
	product := strings.ToLower(productCode)

	switch {
	case strings.Contains(product, "agile"):
		return KindMarketLinked
	case strings.Contains(product, "octopus-go") || strings.HasPrefix(product, "go-"):
		return KindTimeOfUse
	case strings.Contains(product, "fix"):
		return KindFixed
	case strings.Contains(product, "var") || strings.Contains(product, "flexible"):
		return KindVariable
	}

	for _, pattern := range economy7Patterns {
		if strings.Contains(product, pattern) {
			return KindTimeOfUse
		}
	}

	if probe != nil {
		if dayNight, err := probe(productCode); err == nil && dayNight {
			return KindTimeOfUse
		}
		// Probe failures fall through: most modern products are variable.
	}

	return KindVariable
}
