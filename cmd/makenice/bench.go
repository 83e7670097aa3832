package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/mlorentedev/makenice/internal/command"
)

type result struct {
	Sample   string `json:"sample"`
	Chars    int    `json:"chars"`
	Run      int    `json:"run"`
	WallMs   int64  `json:"wall_ms"`
	OutChars int    `json:"out_chars"`
	Public   bool   `json:"public"`
	Error    string `json:"error,omitempty"`
}

type benchOptions struct {
	runs    int
	warmup  bool
	quality bool
	jsonOut string
}

func newBenchCmd(opts *rootOptions) *cobra.Command {
	bo := &benchOptions{}

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run sample messages through the configured LLM and report latency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, closer, err := opts.setup()
			if err != nil {
				return err
			}
			defer closer.Close()

			commands := opts.commandHandler(cfg, logger)
			out := cmd.OutOrStdout()

			provider, err := cfg.Provider()
			if err != nil {
				return err
			}
			target := provider.Endpoint
			if opts.useMock {
				target = "mock"
			}

			if bo.quality {
				return runQuality(cmd, commands, out, target)
			}

			fmt.Fprintf(out, "Benchmarking against %s (api type: %s, model: %s, %d runs per sample",
				target, provider.APIType, provider.Model, bo.runs)
			if bo.warmup {
				fmt.Fprint(out, ", warmup enabled")
			}
			fmt.Fprintln(out, ")")

			var results []result
			var failures int
			for _, sample := range Samples {
				if bo.warmup {
					fmt.Fprintf(out, "  Warming up %s...", sample.Name)
					w, _ := benchmark(cmd, commands, sample, 0)
					if w.Error != "" {
						fmt.Fprintf(out, " FAILED (%s)\n", w.Error)
					} else {
						fmt.Fprintf(out, " %dms (discarded)\n", w.WallMs)
					}
				}
				for run := 1; run <= bo.runs; run++ {
					fmt.Fprintf(out, "  Running %s (run %d/%d)...", sample.Name, run, bo.runs)
					r, _ := benchmark(cmd, commands, sample, run)
					results = append(results, r)
					if r.Error != "" {
						fmt.Fprintf(out, " FAILED (%s)\n", r.Error)
						failures++
					} else {
						fmt.Fprintf(out, " %dms\n", r.WallMs)
					}
				}
			}

			fmt.Fprintln(out)
			printTable(out, results)
			printSummary(out, results)

			if bo.jsonOut != "" {
				if err := writeReport(bo.jsonOut, results, target); err != nil {
					return fmt.Errorf("write report: %w", err)
				}
				fmt.Fprintf(out, "\nResults written to %s\n", bo.jsonOut)
			}

			if failures > 0 {
				return fmt.Errorf("%d of %d runs failed", failures, len(results))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&bo.runs, "runs", 3, "number of runs per sample")
	cmd.Flags().BoolVar(&bo.warmup, "warmup", false, "run one discarded request per sample before measuring")
	cmd.Flags().BoolVar(&bo.quality, "quality", false, "show input and output for each quality sample instead of timing")
	cmd.Flags().StringVar(&bo.jsonOut, "json", "", "write results to a JSON file")
	return cmd
}

func benchmark(cmd *cobra.Command, commands *command.Handler, sample Sample, run int) (result, command.Response) {
	start := time.Now()
	resp := commands.Handle(cmd.Context(), sample.Text)
	r := result{
		Sample:   sample.Name,
		Chars:    utf8.RuneCountInString(sample.Text),
		Run:      run,
		WallMs:   time.Since(start).Milliseconds(),
		OutChars: utf8.RuneCountInString(resp.Text),
		Public:   resp.Public(),
	}
	if !resp.Public() {
		r.Error = resp.Text
	}
	return r, resp
}

func runQuality(cmd *cobra.Command, commands *command.Handler, out io.Writer, target string) error {
	fmt.Fprintf(out, "Quality check against %s\n", target)

	var failures int
	for i, sample := range QualitySamples {
		fmt.Fprintf(out, "\n--- %d/%d: %s (%d chars) ---\n", i+1, len(QualitySamples), sample.Name, utf8.RuneCountInString(sample.Text))
		fmt.Fprintf(out, "IN:  %s\n", sample.Text)

		r, resp := benchmark(cmd, commands, sample, 1)
		if r.Error != "" {
			fmt.Fprintf(out, "ERR: %s\n", r.Error)
			failures++
			continue
		}
		fmt.Fprintf(out, "OUT: %s\n", resp.Text)
		fmt.Fprintf(out, "     [%dms, %d->%d chars]\n", r.WallMs, r.Chars, r.OutChars)
	}

	fmt.Fprintf(out, "\nDone: %d/%d passed\n", len(QualitySamples)-failures, len(QualitySamples))
	if failures > 0 {
		return fmt.Errorf("%d quality samples failed", failures)
	}
	return nil
}

func printTable(out io.Writer, results []result) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SAMPLE\tCHARS\tRUN\tWALL (ms)\tOUT CHARS\tRATIO")
	for _, r := range results {
		if r.Error != "" {
			fmt.Fprintf(w, "%s\t%d\t%d\tFAIL\t-\t-\n", r.Sample, r.Chars, r.Run)
			continue
		}
		ratio := float64(r.OutChars) / float64(r.Chars)
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%.2f\n", r.Sample, r.Chars, r.Run, r.WallMs, r.OutChars, ratio)
	}
	w.Flush()
}

func printSummary(out io.Writer, results []result) {
	var ok []result
	for _, r := range results {
		if r.Error == "" {
			ok = append(ok, r)
		}
	}

	if len(ok) == 0 {
		fmt.Fprintf(out, "\nSummary: all %d runs failed\n", len(results))
		return
	}

	var total int64
	var chars int
	fastest, slowest := ok[0], ok[0]
	for _, r := range ok {
		total += r.WallMs
		chars += r.Chars
		if r.WallMs < fastest.WallMs {
			fastest = r
		}
		if r.WallMs > slowest.WallMs {
			slowest = r
		}
	}

	fmt.Fprintf(out, "\nSummary:\n")
	fmt.Fprintf(out, "- Avg ms/char: %.2f\n", float64(total)/float64(chars))
	fmt.Fprintf(out, "- Min wall: %dms (%s)\n", fastest.WallMs, fastest.Sample)
	fmt.Fprintf(out, "- Max wall: %dms (%s)\n", slowest.WallMs, slowest.Sample)
	fmt.Fprintf(out, "- Total runs: %d (%d ok, %d failed)\n", len(results), len(ok), len(results)-len(ok))
}

type report struct {
	Timestamp string   `json:"timestamp"`
	Target    string   `json:"target"`
	Results   []result `json:"results"`
}

func writeReport(path string, results []result, target string) error {
	data, err := json.MarshalIndent(report{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Target:    target,
		Results:   results,
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
