package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/san-kum/dronesim/internal/config"
	"github.com/san-kum/dronesim/internal/experiment"
	"github.com/san-kum/dronesim/internal/export"
	"github.com/san-kum/dronesim/internal/metrics"
	"github.com/san-kum/dronesim/internal/sim"
	"github.com/san-kum/dronesim/internal/viz"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	dt          float64
	duration    float64
	recordEvery int
	scriptFile  string
	outputFile  string
	field       string

	format      string
	parallel    int
	metricsAddr string

	csvFile    string
	plotWidth  int
	plotHeight int

	writePath string
)

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", 1.0/60, "timestep")
	cmd.Flags().Float64Var(&duration, "time", 10.0, "duration")
	cmd.Flags().IntVar(&recordEvery, "record-every", 1, "keep one frame in N")
	cmd.Flags().StringVar(&scriptFile, "script", "", "segment timeline for the script scenario (yaml)")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "write output to this file instead of stdout")
	cmd.Flags().StringVar(&field, "field", "y", "field to plot")
	cmd.Flags().IntVar(&plotWidth, "width", 80, "chart width in columns")
	cmd.Flags().IntVar(&plotHeight, "height", 15, "chart height in rows")
}

// scenarioConfigs builds one config per requested scenario, applying the
// run flags that were set on the command line.
func scenarioConfigs(cmd *cobra.Command, names []string) ([]*config.Config, error) {
	base, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("dt") {
		base.Run.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		base.Run.Duration = duration
	}
	if cmd.Flags().Changed("record-every") {
		base.Run.RecordEvery = recordEvery
	}
	if err := base.Validate(); err != nil {
		return nil, err
	}
	if len(names) == 0 {
		names = []string{base.Scenario}
	}

	cfgs := make([]*config.Config, len(names))
	for i, name := range names {
		c := *base
		c.Scenario = name
		cfgs[i] = &c
	}
	return cfgs, nil
}

func setupExperiments(cmd *cobra.Command, cfgs []*config.Config) ([]*experiment.Experiment, error) {
	logger, _, err := newLogger(cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	var script *experiment.Script
	if scriptFile != "" {
		if script, err = experiment.LoadScript(scriptFile); err != nil {
			return nil, err
		}
	}
	return experiment.SetupAll(experiment.NewRegistry(), cfgs, script, logger)
}

func output(cmd *cobra.Command) (io.Writer, func() error, error) {
	if outputFile == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(outputFile)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func runScenarios(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfgs, err := scenarioConfigs(cmd, args)
	if err != nil {
		return err
	}
	if len(cfgs) > 1 && format != "table" && format != "json" {
		return fmt.Errorf("format %s takes a single scenario", format)
	}
	exps, err := setupExperiments(cmd, cfgs)
	if err != nil {
		return err
	}

	if metricsAddr != "" {
		for _, exp := range exps {
			labels := prometheus.Labels{"scenario": exp.Config().Scenario}
			if err := metrics.Register(exp.Loop().Simulation(), labels); err != nil {
				return err
			}
		}
		if len(exps) == 1 {
			exps[0].Loop().AddObserver(metrics.GaugeObserver{})
		}
		logger, _, _ := newLogger(cmd.ErrOrStderr())
		defer serveMetrics(ctx, metricsAddr, logger)()
	}

	results, err := experiment.RunAll(ctx, exps, parallel)
	if err != nil {
		return err
	}

	w, closeOut, err := output(cmd)
	if err != nil {
		return err
	}
	defer closeOut()

	switch format {
	case "table":
		return writeSummary(w, cfgs, results)
	case "json":
		for i, res := range results {
			if err := export.WriteJSON(w, export.NewReport(cfgs[i].Scenario, cfgs[i].Run, res)); err != nil {
				return err
			}
		}
		return nil
	case "csv":
		return export.WriteCSV(w, results[0].Frames)
	case "plot":
		return export.Plot(w, results[0].Frames, field, export.PlotOptions{Width: plotWidth, Height: plotHeight})
	case "svg":
		return export.TrajectorySVG(w, results[0].Frames, 800, 800, "#00ff88")
	case "canvas-svg":
		profile := viz.Profile(results[0].Frames, plotWidth, plotHeight)
		return export.BrailleSVG(w, profile.Grid, 4, "#00ff88")
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func writeSummary(out io.Writer, cfgs []*config.Config, results []*sim.Result) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCENARIO\tTICKS\tTIME\tFINAL Y\tSPEED\tENERGY\tMAX ALT\tUPRIGHT\tDISCARDS")
	for i, res := range results {
		final, _ := res.Final()
		fmt.Fprintf(w, "%s\t%s\t%.2fs\t%.2f m\t%.2f m/s\t%s\t%.2f m\t%.0f%%\t%s\n",
			cfgs[i].Scenario,
			humanize.Comma(int64(res.Ticks)),
			res.Duration,
			final.Position.Y(),
			final.LinearVelocity.Len(),
			humanize.SIWithDigits(final.Energy, 2, "J"),
			res.Metrics["max_altitude"],
			res.Metrics["upright"]*100,
			humanize.Comma(int64(res.Stats.PoseDiscards)),
		)
	}
	return w.Flush()
}

func plotScenario(cmd *cobra.Command, args []string) error {
	w, closeOut, err := output(cmd)
	if err != nil {
		return err
	}
	defer closeOut()
	opts := export.PlotOptions{Width: plotWidth, Height: plotHeight}

	if csvFile != "" {
		f, err := os.Open(csvFile)
		if err != nil {
			return err
		}
		defer f.Close()
		data, err := export.ReadCSVSeries(f, field)
		if err != nil {
			return err
		}
		return export.PlotSeries(w, data, field, opts)
	}

	cfgs, err := scenarioConfigs(cmd, args)
	if err != nil {
		return err
	}
	exps, err := setupExperiments(cmd, cfgs)
	if err != nil {
		return err
	}
	res, err := exps[0].Run(cmd.Context())
	if err != nil {
		return err
	}
	return export.Plot(w, res.Frames, field, opts)
}

func listScenarios(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	for _, s := range experiment.NewRegistry().List() {
		fmt.Fprintf(w, "  %s\t%s\n", s.Name, s.Description)
	}
	fmt.Fprintf(w, "\nplot fields: %v\n", sortedFields())
	return w.Flush()
}

func sortedFields() []string {
	names := export.ColumnNames()
	sort.Strings(names)
	return names
}

func printConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if writePath != "" {
		if err := config.Save(writePath, cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", writePath)
		return nil
	}
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}
