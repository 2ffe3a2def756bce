package timeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/solarlog/tariff-tracker/tariff"
)

func sampleConfig(t *testing.T) *Config {
	t.Helper()

	cfg := NewConfig()

	from := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	updated := time.Date(2023, 6, 2, 9, 30, 0, 0, time.UTC)
	imp := &tariff.Period{
		StartDate:     tariff.NewDate(2023, time.June, 1),
		EndDate:       datePtr(tariff.NewDate(2023, time.December, 31)),
		ProductCode:   "FIX-12M-23-06-01",
		TariffCode:    "E-1R-FIX-12M-23-06-01-C",
		DisplayName:   "Fixed June 2023",
		Kind:          tariff.KindFixed,
		FlowDirection: tariff.Import,
		Region:        "C",
		Rates: []tariff.Rate{
			{ValidFrom: from, ValueExcVAT: 27.26, ValueIncVAT: 28.62, Label: tariff.LabelStandard},
		},
		StandingCharges: []tariff.StandingCharge{
			{ValidFrom: from, ValueExcVAT: 52.24, ValueIncVAT: 54.85},
		},
		Notes:       "switched from Flexible",
		LastUpdated: &updated,
	}
	require.NoError(t, cfg.ImportTimeline.AddPeriod(imp))

	exp := &tariff.Period{
		StartDate:     tariff.NewDate(2023, time.June, 1),
		ProductCode:   "MANUAL-SEG",
		TariffCode:    "E-1R-MANUAL-SEG-C-OUTGOING",
		DisplayName:   "SEG export",
		Kind:          tariff.KindFixed,
		FlowDirection: tariff.Export,
		Region:        "C",
	}
	exp.SetManualFlatRate(15.0, 15.0)
	require.NoError(t, cfg.ExportTimeline.AddPeriod(exp))

	return cfg
}

func TestConfigRoundTrip(t *testing.T) {
	cfg := sampleConfig(t)
	path := filepath.Join(t.TempDir(), "tariff_config.json")

	require.NoError(t, cfg.Save(path))
	loaded := Load(path)

	require.Equal(t, cfg, loaded)

	// And saving the loaded copy produces an identical document.
	again := filepath.Join(t.TempDir(), "again.json")
	require.NoError(t, loaded.Save(again))
	first, err := os.ReadFile(path)
	require.NoError(t, err)
	second, err := os.ReadFile(again)
	require.NoError(t, err)
	require.JSONEq(t, string(first), string(second))
}

func TestLoadMissingFileReturnsEmptyConfig(t *testing.T) {
	cfg := Load(filepath.Join(t.TempDir(), "does-not-exist.json"))

	require.Equal(t, tariff.Import, cfg.ImportTimeline.FlowDirection)
	require.Equal(t, tariff.Export, cfg.ExportTimeline.FlowDirection)
	require.Empty(t, cfg.ImportTimeline.Periods)
	require.Empty(t, cfg.ExportTimeline.Periods)
}

func TestLoadMalformedFileReturnsEmptyConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	cfg := Load(path)
	require.Empty(t, cfg.ImportTimeline.Periods)
}

func TestParseDocumentRejectsUnknownFields(t *testing.T) {
	doc := `{
	  "import_timeline": {"flow_direction": "import", "periods": [], "surprise": true},
	  "export_timeline": {"flow_direction": "export", "periods": []}
	}`
	_, err := ParseDocument([]byte(doc))
	require.Error(t, err)
}

func TestParseDocumentRejectsUnknownEnumValues(t *testing.T) {
	doc := `{
	  "import_timeline": {
	    "flow_direction": "import",
	    "periods": [{
	      "start_date": "2023-01-01",
	      "end_date": null,
	      "product_id": "X",
	      "contract_id": "E-1R-X-C",
	      "display_name": "X",
	      "kind": "mystery",
	      "flow_direction": "import",
	      "region": "C",
	      "rates": [],
	      "standing_charges": [],
	      "notes": "",
	      "last_updated": null
	    }]
	  },
	  "export_timeline": {"flow_direction": "export", "periods": []}
	}`
	_, err := ParseDocument([]byte(doc))
	require.Error(t, err)
}

func TestParseDocumentRejectsDirectionMismatch(t *testing.T) {
	doc := `{
	  "import_timeline": {"flow_direction": "export", "periods": []},
	  "export_timeline": {"flow_direction": "export", "periods": []}
	}`
	_, err := ParseDocument([]byte(doc))
	require.Error(t, err)
}

func TestParseDocumentSortsPeriods(t *testing.T) {
	doc := `{
	  "import_timeline": {
	    "flow_direction": "import",
	    "periods": [
	      {"start_date": "2023-07-01", "end_date": null, "product_id": "B", "contract_id": "E-1R-B-C",
	       "display_name": "later", "kind": "variable", "flow_direction": "import", "region": "C",
	       "rates": [], "standing_charges": [], "notes": "", "last_updated": null},
	      {"start_date": "2023-01-01", "end_date": "2023-06-30", "product_id": "A", "contract_id": "E-1R-A-C",
	       "display_name": "earlier", "kind": "variable", "flow_direction": "import", "region": "C",
	       "rates": [], "standing_charges": [], "notes": "", "last_updated": null}
	    ]
	  },
	  "export_timeline": {"flow_direction": "export", "periods": []}
	}`
	cfg, err := ParseDocument([]byte(doc))
	require.NoError(t, err)
	require.Equal(t, "earlier", cfg.ImportTimeline.Periods[0].DisplayName)
	require.Equal(t, "later", cfg.ImportTimeline.Periods[1].DisplayName)
}

func TestOpenEndedMarkersSerializeAsNull(t *testing.T) {
	cfg := NewConfig()
	p := &tariff.Period{
		StartDate:     tariff.NewDate(2023, time.January, 1),
		ProductCode:   "VAR-22-11-01",
		TariffCode:    "E-1R-VAR-22-11-01-C",
		DisplayName:   "ongoing",
		Kind:          tariff.KindVariable,
		FlowDirection: tariff.Import,
		Region:        "C",
		Rates: []tariff.Rate{
			{ValidFrom: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), ValueExcVAT: 1, ValueIncVAT: 1.05, Label: tariff.LabelStandard},
		},
	}
	require.NoError(t, cfg.ImportTimeline.AddPeriod(p))

	data, err := json.Marshal(cfg)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	imported := doc["import_timeline"].(map[string]any)
	periods := imported["periods"].([]any)
	first := periods[0].(map[string]any)

	require.Nil(t, first["end_date"])
	rates := first["rates"].([]any)
	require.Nil(t, rates[0].(map[string]any)["valid_to"])
}
