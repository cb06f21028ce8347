// Package loadplan estimates how much traffic each link carries and
// recommends rebalancing where the demand exceeds the capacity.
package loadplan

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// A Demand is traffic between two devices, in Mbit/s.
type Demand struct {
	Src  string
	Dst  string
	Mbps int
}

// An Endpoint is one traffic source or sink in a traffic file.
type Endpoint struct {
	Device   string  `json:"device" yaml:"device"`
	PeakMbps float64 `json:"peak_mbps" yaml:"peak_mbps"`
	AvgMbps  float64 `json:"avg_mbps" yaml:"avg_mbps"`
}

// Assumptions tune how a traffic file is read.
type Assumptions struct {
	// UsePeak selects the peak rather than the average rate. It defaults to
	// true.
	UsePeak *bool `json:"use_peak,omitempty" yaml:"use_peak,omitempty"`
}

// A TrafficFile is the content of a traffic description.
type TrafficFile struct {
	Assumptions Assumptions `json:"assumptions" yaml:"assumptions"`
	Endpoints   []Endpoint  `json:"endpoints" yaml:"endpoints"`
}

// Demands pairs the endpoints in order, the first with the second, the third
// with the fourth and so on. An unpaired last endpoint is ignored. The rate
// of a pair is the rate of its first endpoint.
func (f *TrafficFile) Demands() []Demand {
	usePeak := true
	if f.Assumptions.UsePeak != nil {
		usePeak = *f.Assumptions.UsePeak
	}

	var demands []Demand
	for i := 0; i+1 < len(f.Endpoints); i += 2 {
		a, b := f.Endpoints[i], f.Endpoints[i+1]

		rate := a.AvgMbps
		if usePeak {
			rate = a.PeakMbps
		}

		demands = append(demands, Demand{
			Src:  a.Device,
			Dst:  b.Device,
			Mbps: int(rate),
		})
	}

	return demands
}

// LoadTraffic reads the demands from a JSON or YAML traffic file. Files
// with a .yaml or .yml extension are read as YAML, others as JSON.
func LoadTraffic(path string) ([]Demand, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	f := &TrafficFile{}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(content, f)
	default:
		err = json.Unmarshal(content, f)
	}

	if err != nil {
		return nil, fmt.Errorf("decoding traffic file %s: %w", path, err)
	}

	return f.Demands(), nil
}
