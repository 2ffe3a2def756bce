package tariff

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyProductKeywords(t *testing.T) {
	tests := []struct {
		product string
		expect  Kind
	}{
		{"AGILE-24-10-01", KindMarketLinked},
		{"AGILE-OUTGOING-19-05-13", KindMarketLinked},
		{"GO-22-07-05", KindTimeOfUse},
		{"OCTOPUS-GO-GREEN", KindTimeOfUse},
		{"FIX-12M-23-06-01", KindFixed},
		{"LOYAL-FIXED-24", KindFixed},
		{"VAR-22-11-01", KindVariable},
		{"FLEXIBLE-OCTOPUS", KindVariable},
		{"ECO7-LEGACY", KindTimeOfUse},
		{"ECONOMY-7-RETAIL", KindTimeOfUse},
		{"TWO-RATE-CLASSIC", KindTimeOfUse},
		{"MYSTERY-PRODUCT", KindVariable},
	}

	for _, test := range tests {
		t.Run(test.product, func(t *testing.T) {
			require.Equal(t, test.expect, ClassifyProduct(test.product, nil))
		})
	}
}

func TestClassifyProductProbe(t *testing.T) {
	dayNight := func(string) (bool, error) { return true, nil }
	singleRate := func(string) (bool, error) { return false, nil }
	broken := func(string) (bool, error) { return false, errors.New("api down") }

	// Ambiguous names consult the probe.
	require.Equal(t, KindTimeOfUse, ClassifyProduct("MYSTERY-PRODUCT", dayNight))
	require.Equal(t, KindVariable, ClassifyProduct("MYSTERY-PRODUCT", singleRate))
	require.Equal(t, KindVariable, ClassifyProduct("MYSTERY-PRODUCT", broken))

	// Unambiguous names never probe.
	called := false
	spy := func(string) (bool, error) { called = true; return true, nil }
	require.Equal(t, KindMarketLinked, ClassifyProduct("AGILE-24-10-01", spy))
	require.False(t, called)
}
