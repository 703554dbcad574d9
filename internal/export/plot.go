package export

import (
	"fmt"
	"io"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/dronesim/internal/sim"
)

// PlotOptions size the terminal chart. Zero values use asciigraph defaults.
type PlotOptions struct {
	Width  int
	Height int
}

// Plot renders one field of frames as an ASCII line chart.
func Plot(w io.Writer, frames []sim.Frame, field string, opts PlotOptions) error {
	data, err := Series(frames, field)
	if err != nil {
		return err
	}
	return PlotSeries(w, data, field, opts)
}

func PlotSeries(w io.Writer, data []float64, caption string, opts PlotOptions) error {
	if len(data) == 0 {
		return fmt.Errorf("plot %s: no samples", caption)
	}
	graphOpts := []asciigraph.Option{asciigraph.Caption(caption)}
	if opts.Width > 0 {
		graphOpts = append(graphOpts, asciigraph.Width(opts.Width))
	}
	if opts.Height > 0 {
		graphOpts = append(graphOpts, asciigraph.Height(opts.Height))
	}
	_, err := fmt.Fprintln(w, asciigraph.Plot(data, graphOpts...))
	return err
}
