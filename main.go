package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const appVersion = "0.2.0"

func main() {
	if err := newRootCmd(loadConfig()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(cfg Config) *cobra.Command {
	var (
		wakeStr   string
		sleepH    float64
		coffee    int
		modelPath string
		clockStr  string
		port      int
		verbose   bool
	)

	def := DefaultInputs()

	cmd := &cobra.Command{
		Use:           "betterrest",
		Short:         "Recommend a bedtime from wake time, sleep goal and coffee intake (CLI or web)",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if ok, _ := cmd.Flags().GetBool("version"); ok {
				fmt.Fprintf(cmd.OutOrStdout(), "betterrest v%s\n", appVersion)
				return nil
			}

			style, err := parseClockStyle(clockStr)
			if err != nil {
				return err
			}

			level := slog.LevelError
			if port > 0 {
				level = slog.LevelInfo
			}
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			load := withCache(NewModelLoader(modelPath), cfg.CacheSize, logger)
			calc := NewCalculator(load, style, logger)

			if port > 0 {
				printListenAddrs(cmd.OutOrStdout(), port)
				return serveWeb(cmd.Context(), port, calc, logger)
			}

			wake, err := parseClock(wakeStr)
			if err != nil {
				return fmt.Errorf("invalid --wake: %w", err)
			}
			in := Inputs{Wake: wake, SleepAmount: sleepH, Coffee: coffee}
			if err := in.Validate(); err != nil {
				return err
			}

			printCLI(cmd.OutOrStdout(), in, calc)
			return nil
		},
	}

	cmd.Version = appVersion
	cmd.SetVersionTemplate("betterrest v{{.Version}}\n")
	cmd.Flags().BoolP("version", "v", false, "Show version and exit")

	cmd.Flags().StringVar(&wakeStr, "wake", def.Wake.String(), "Wake-up time HH:MM")
	cmd.Flags().Float64Var(&sleepH, "sleep", def.SleepAmount, "Desired amount of sleep in hours (4-12, step 0.25)")
	cmd.Flags().IntVar(&coffee, "coffee", def.Coffee, "Daily coffee intake in cups (1-19)")

	cmd.Flags().StringVar(&modelPath, "model", cfg.ModelPath, "Sleep model JSON file (empty = built-in model)")
	cmd.Flags().StringVar(&clockStr, "clock", cfg.Clock, "Clock style: 12h, 24h or auto (from locale)")
	cmd.Flags().IntVar(&port, "port", cfg.Port, "Run web UI on this port (e.g. 8484)")
	cmd.Flags().BoolVar(&verbose, "verbose", cfg.Verbose, "Enable verbose logging")

	return cmd
}

func printCLI(w io.Writer, in Inputs, calc *Calculator) {
	bold := color.New(color.Bold).SprintFunc()
	mint := color.New(color.FgCyan, color.Bold).SprintFunc()
	grey := color.New(color.FgHiBlack).SprintFunc()

	fmt.Fprintf(w, "%s %s\n", grey("When do you want to wake up?"), in.Wake)
	fmt.Fprintf(w, "%s %s\n", grey("Desired amount of sleep:    "), sleepLabel(in.SleepAmount))
	fmt.Fprintf(w, "%s %s\n\n", grey("Daily coffee intake:        "), coffeeLabel(in.Coffee))

	b, err := calc.BedTime(in.Wake, in.SleepAmount, in.Coffee)
	if err != nil {
		calc.logger.Warn("bedtime calculation failed", "error", err)
		fmt.Fprintf(w, "%s %s\n", bold("Your ideal bedtime is"), mint(fallbackBedtime))
		return
	}

	line := fmt.Sprintf("%s %s", bold("Your ideal bedtime is"), mint(b.Formatted))
	if b.DayOffset < 0 {
		line += " " + grey(dayOffsetLabel(b.DayOffset))
	}
	fmt.Fprintln(w, line)
}

func dayOffsetLabel(days int) string {
	switch {
	case days == -1:
		return "(previous day)"
	case days < -1:
		return fmt.Sprintf("(%d days before)", -days)
	case days > 0:
		return fmt.Sprintf("(+%dd)", days)
	}
	return ""
}
