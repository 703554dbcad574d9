package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/san-kum/dronesim/internal/experiment"
	"github.com/san-kum/dronesim/internal/optim"
	"github.com/spf13/cobra"
)

var (
	kpGrid []float64
	kiGrid []float64
	kdGrid []float64
)

func addTuneFlags(cmd *cobra.Command) {
	addRunFlags(cmd)
	cmd.Flags().Float64SliceVar(&kpGrid, "kp", []float64{0.05, 0.1, 0.2}, "proportional gains to try")
	cmd.Flags().Float64SliceVar(&kiGrid, "ki", []float64{0, 0.01}, "integral gains to try")
	cmd.Flags().Float64SliceVar(&kdGrid, "kd", []float64{0.05, 0.1, 0.2}, "derivative gains to try")
	cmd.Flags().IntVar(&parallel, "parallel", 0, "max runs in flight (0 = unlimited)")
}

// tuneHold grid-searches the altitude-hold gains by mean altitude error.
func tuneHold(cmd *cobra.Command, args []string) error {
	cfgs, err := scenarioConfigs(cmd, []string{"hold"})
	if err != nil {
		return err
	}
	base := cfgs[0]
	logger, _, err := newLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	reg := experiment.NewRegistry()

	build := func(p map[string]float64) (*experiment.Experiment, error) {
		cfg := *base
		cfg.Hold.Kp, cfg.Hold.Ki, cfg.Hold.Kd = p["kp"], p["ki"], p["kd"]
		exp := experiment.New(&cfg, logger)
		if err := exp.Setup(reg); err != nil {
			return nil, err
		}
		return exp, nil
	}

	g := optim.NewGridSearch([]string{"kp", "ki", "kd"}, [][]float64{kpGrid, kiGrid, kdGrid})
	g.Parallel = parallel
	best, all, err := g.Search(cmd.Context(), build, "altitude_error")
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KP\tKI\tKD\tALT ERROR")
	for _, p := range all {
		mark := ""
		if p.Score == best.Score {
			mark = "  *"
		}
		fmt.Fprintf(w, "%g\t%g\t%g\t%.3f m%s\n", p.Params["kp"], p.Params["ki"], p.Params["kd"], p.Score, mark)
	}
	fmt.Fprintf(w, "\nbest for target %.1f m: kp=%g ki=%g kd=%g\n", base.Hold.Target, best.Params["kp"], best.Params["ki"], best.Params["kd"])
	return w.Flush()
}
