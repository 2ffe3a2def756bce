package timeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/solarlog/tariff-tracker/tariff"
)

// Config pairs the import and export timelines. It is the unit of
// persistence: a save is a whole-document rewrite of the JSON file.
type Config struct {
	ImportTimeline Timeline `json:"import_timeline"`
	ExportTimeline Timeline `json:"export_timeline"`
}

// NewConfig returns an empty configuration with both timelines initialised.
func NewConfig() *Config {
	return &Config{
		ImportTimeline: New(tariff.Import),
		ExportTimeline: New(tariff.Export),
	}
}

// Timeline returns the timeline for the given flow direction.
func (c *Config) Timeline(direction tariff.FlowDirection) *Timeline {
	if direction == tariff.Export {
		return &c.ExportTimeline
	}
	return &c.ImportTimeline
}

// ParseDocument decodes and validates a persisted configuration document.
// Unknown fields, unknown enum values and flow-direction mismatches are
// rejected here, at load time, rather than surfacing as misbehaviour at first
// use. Periods are re-sorted on the way in so the ordering invariant holds
// regardless of file order.
func ParseDocument(data []byte) (*Config, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode configuration document: %w", err)
	}

	if err := checkTimeline(&cfg.ImportTimeline, tariff.Import, "import_timeline"); err != nil {
		return nil, err
	}
	if err := checkTimeline(&cfg.ExportTimeline, tariff.Export, "export_timeline"); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func checkTimeline(tl *Timeline, want tariff.FlowDirection, key string) error {
	if tl.FlowDirection == "" {
		return fmt.Errorf("%s: missing flow_direction", key)
	}
	if tl.FlowDirection != want {
		return fmt.Errorf("%s: flow_direction is %s, want %s", key, tl.FlowDirection, want)
	}
	for i, p := range tl.Periods {
		if p.FlowDirection != want {
			return fmt.Errorf("%s: period %d (%s) has flow_direction %s", key, i, p.DisplayName, p.FlowDirection)
		}
	}
	if tl.Periods == nil {
		tl.Periods = []*tariff.Period{}
	}
	tl.sortPeriods()
	return nil
}

// Load reads the configuration document at path. A missing or malformed file
// yields an empty configuration rather than an error: callers are responsible
// for re-populating it, and queries against an empty configuration simply
// find no pricing information.
func Load(path string) *Config {
	data, err := os.ReadFile(path)
	if err != nil {
		zap.L().Warn("configuration file not readable, starting empty",
			zap.String("path", path),
			zap.Error(err))
		return NewConfig()
	}

	cfg, err := ParseDocument(data)
	if err != nil {
		zap.L().Warn("configuration file malformed, starting empty",
			zap.String("path", path),
			zap.Error(err))
		return NewConfig()
	}

	zap.L().Info("configuration loaded",
		zap.String("path", path),
		zap.Int("import_periods", len(cfg.ImportTimeline.Periods)),
		zap.Int("export_periods", len(cfg.ExportTimeline.Periods)))
	return cfg
}

// Save writes the full configuration document to path. Round-tripping a
// document through Load and Save is lossless.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal configuration: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write configuration %s: %w", path, err)
	}
	zap.L().Info("configuration saved", zap.String("path", path))
	return nil
}
