package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rcv-sim/rcv-sim/sim"
	"github.com/rcv-sim/rcv-sim/sim/ensemble"
	"github.com/rcv-sim/rcv-sim/sim/scenario"
	"github.com/rcv-sim/rcv-sim/sim/trace"
)

var (
	// CLI flags for the experiment source
	specPath     string // YAML experiment spec
	presetName   string // Built-in preset, used when no spec is given
	scenarioName string // Cohesion scenario applied to the preset

	// CLI flags overriding spec fields
	seed       int64  // Master seed of the run
	numTrials  int    // Trials per zone
	numBallots int    // Ballots per trial
	seats      int    // Seats per zone
	tiebreak   string // STV tiebreak policy
	quotaRule  string // STV quota rule

	// CLI flags for execution and reporting
	workers    int    // Concurrent trials (0 = NumCPU)
	logLevel   string // Log verbosity level
	outputPath string // JSON results file
	traceLevel string // Election trace retention
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "rcv-sim",
	Short: "Monte Carlo simulator for ranked-choice (STV) elections with bloc voting",
}

// runCmd executes the ensemble using parameters from the spec and CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an ensemble of simulated STV elections",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		spec, err := loadSpec()
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		applyOverrides(cmd, spec)

		zones, err := spec.ZoneConfigs()
		if err != nil {
			logrus.Fatalf("Invalid experiment: %v", err)
		}
		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Unknown trace level %q. Valid: none, rounds", traceLevel)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		res, err := ensemble.Run(ctx, zones, ensemble.Options{
			Key:        sim.NewSimulationKey(spec.Seed),
			Workers:    workers,
			Generator:  spec.Generator,
			Quota:      spec.Quota,
			Tiebreak:   spec.Tiebreak,
			TraceLevel: trace.TraceLevel(traceLevel),
		})
		switch {
		case errors.Is(err, context.Canceled):
			logrus.Warnf("Interrupted; reporting %d completed trials", res.Trials)
		case err != nil:
			logrus.Fatalf("Simulation failed: %v", err)
		}

		report := NewReport(spec, res)
		report.Print(os.Stdout)
		if outputPath != "" {
			if err := report.Save(outputPath); err != nil {
				logrus.Fatalf("Writing results: %v", err)
			}
			logrus.Infof("Results written to %s", outputPath)
		}
	},
}

// loadSpec reads --spec when given, otherwise builds --preset.
func loadSpec() (*scenario.ExperimentSpec, error) {
	if specPath != "" {
		spec, err := scenario.LoadExperimentSpec(specPath)
		if err != nil {
			return nil, err
		}
		if scenarioName != "" {
			if presetName == "" {
				return nil, errors.New("--scenario requires --preset naming the bloc layout of the spec")
			}
			if err := scenario.ApplyScenario(spec, presetName, scenarioName); err != nil {
				return nil, err
			}
		}
		return spec, nil
	}
	if presetName == "" {
		return nil, errors.New("either --spec or --preset is required")
	}
	return scenario.Preset(presetName, scenarioName, seed)
}

// applyOverrides copies explicitly set CLI flags onto the spec. Flags left at
// their defaults never override values from the spec.
func applyOverrides(cmd *cobra.Command, spec *scenario.ExperimentSpec) {
	flags := cmd.Flags()
	if flags.Changed("seed") {
		spec.Seed = seed
	}
	if flags.Changed("trials") {
		spec.NumTrials = numTrials
	}
	if flags.Changed("ballots") {
		spec.NumBallots = numBallots
	}
	if flags.Changed("seats") {
		spec.Seats = seats
	}
	if flags.Changed("tiebreak") {
		spec.Tiebreak = tiebreak
	}
	if flags.Changed("quota") {
		spec.Quota = quotaRule
	}
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().StringVar(&specPath, "spec", "", "Path to YAML experiment spec")
	runCmd.Flags().StringVar(&presetName, "preset", "", "Built-in preset (see `rcv-sim presets`)")
	runCmd.Flags().StringVar(&scenarioName, "scenario", "", "Cohesion scenario of the preset")

	runCmd.Flags().Int64Var(&seed, "seed", 42, "Master seed for all random draws")
	runCmd.Flags().IntVar(&numTrials, "trials", 1000, "Simulated elections per zone")
	runCmd.Flags().IntVar(&numBallots, "ballots", 1000, "Ballots per simulated election")
	runCmd.Flags().IntVar(&seats, "seats", 3, "Seats per zone")
	runCmd.Flags().StringVar(&tiebreak, "tiebreak", "random", "STV tiebreak policy (random, first-place, borda)")
	runCmd.Flags().StringVar(&quotaRule, "quota", "droop", "STV quota rule (droop, hare)")

	runCmd.Flags().IntVar(&workers, "workers", 0, "Concurrent trials (0 = number of CPUs)")
	runCmd.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().StringVar(&outputPath, "output", "", "Write JSON results to this file")
	runCmd.Flags().StringVar(&traceLevel, "trace", "none", "Election trace retention (none, rounds)")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
