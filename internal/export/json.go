package export

import (
	"encoding/json"
	"io"

	"github.com/san-kum/dronesim/internal/sim"
)

// Report is the JSON document for one headless run.
type Report struct {
	Scenario string             `json:"scenario"`
	Dt       float64            `json:"dt"`
	Duration float64            `json:"duration"`
	Ticks    int                `json:"ticks"`
	Metrics  map[string]float64 `json:"metrics"`
	Stats    sim.Stats          `json:"stats"`
	Frames   []sim.Frame        `json:"frames,omitempty"`
}

func NewReport(scenario string, cfg sim.RunConfig, res *sim.Result) Report {
	return Report{
		Scenario: scenario,
		Dt:       cfg.Dt,
		Duration: res.Duration,
		Ticks:    res.Ticks,
		Metrics:  res.Metrics,
		Stats:    res.Stats,
		Frames:   res.Frames,
	}
}

func WriteJSON(w io.Writer, report Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
