package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/spf13/cobra"

	"github.com/mynameisdaniil/yaff/pkg/yaff"
	"github.com/mynameisdaniil/yaff/pkg/yaff/chain"
	"github.com/mynameisdaniil/yaff/pkg/yaff/plan"
	"github.com/mynameisdaniil/yaff/pkg/yaff/telemetry"
)

type runResult struct {
	Plan     string   `json:"plan"`
	ChainID  string   `json:"chain_id"`
	Status   string   `json:"status"`
	Count    int      `json:"count"`
	Values   []any    `json:"values,omitempty"`
	Error    string   `json:"error,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Duration float64  `json:"duration_seconds"`
}

const statusCanceled = "canceled"

func (r *runResult) setValues(v yaff.ValueReader) {
	r.Count = v.Len()
	r.Values = v.Values()
}

func newRunCmd(jsonOutput *bool) *cobra.Command {
	var (
		timeout     time.Duration
		showMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "run <plan.yaml>",
		Short: "Run a plan and print its outcome",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := telemetry.SetupLogger(os.Stderr)

			p, err := plan.LoadFile(args[0])
			if err != nil {
				return err
			}
			logger = telemetry.WithPlan(logger, p.Name)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			ctx = telemetry.WithLogger(ctx, logger)

			reg := prometheus.NewRegistry()
			metrics, err := telemetry.NewMetrics(reg)
			if err != nil {
				return fmt.Errorf("register metrics: %w", err)
			}

			start := time.Now()
			c, err := p.Build(ctx, plan.DefaultRegistry(), chain.WithMetrics(metrics))
			if err != nil {
				return err
			}
			logger.Info("plan started", "chain_id", c.ID().String(), "steps", len(p.Steps))

			outcome, waitErr := c.Wait(ctx)
			res := runResult{
				Plan:     p.Name,
				ChainID:  c.ID().String(),
				Status:   outcome.Status().String(),
				Duration: time.Since(start).Seconds(),
			}
			res.setValues(outcome)
			if waitErr != nil {
				res.Error = waitErr.Error()
				if yaff.IsCancellationError(waitErr) {
					res.Status = statusCanceled
				}
			}
			for _, e := range c.Errs() {
				res.Warnings = append(res.Warnings, e.Error())
			}
			logger.Info("plan settled", "chain_id", res.ChainID, "status", res.Status)

			out := cmd.OutOrStdout()
			if err := printResult(out, res, *jsonOutput); err != nil {
				return err
			}
			if showMetrics {
				if err := printMetrics(out, reg); err != nil {
					return err
				}
			}

			var unhandled *yaff.UnhandledError
			if errors.As(waitErr, &unhandled) {
				return fmt.Errorf("plan %s: %w", p.Name, unhandled)
			}
			return waitErr
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Give up waiting after this long (0 waits forever)")
	cmd.Flags().BoolVar(&showMetrics, "metrics", false, "Print engine metrics after the run")

	return cmd
}

func newStepsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "steps",
		Short: "List built-in step names",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			actions, catchers := plan.DefaultRegistry().Names()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "actions:")
			for _, name := range actions {
				fmt.Fprintln(out, "  "+name)
			}
			fmt.Fprintln(out, "catchers:")
			for _, name := range catchers {
				fmt.Fprintln(out, "  "+name)
			}
		},
	}
}

func printResult(w io.Writer, res runResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	fmt.Fprintf(w, "plan:     %s\n", res.Plan)
	fmt.Fprintf(w, "chain:    %s\n", res.ChainID)
	fmt.Fprintf(w, "status:   %s\n", res.Status)
	fmt.Fprintf(w, "values:   %v\n", res.Values)
	if res.Error != "" {
		fmt.Fprintf(w, "error:    %s\n", res.Error)
	}
	for _, warning := range res.Warnings {
		fmt.Fprintf(w, "warning:  %s\n", warning)
	}
	fmt.Fprintf(w, "duration: %.3fs\n", res.Duration)
	return nil
}

func printMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	sort.Slice(families, func(i, j int) bool { return families[i].GetName() < families[j].GetName() })

	fmt.Fprintln(w, "metrics:")
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			fmt.Fprintf(w, "  %s%s %g\n", mf.GetName(), labels(m), sampleValue(mf.GetType(), m))
		}
	}
	return nil
}

func labels(m *dto.Metric) string {
	if len(m.GetLabel()) == 0 {
		return ""
	}
	s := "{"
	for i, l := range m.GetLabel() {
		if i > 0 {
			s += ","
		}
		s += l.GetName() + "=" + fmt.Sprintf("%q", l.GetValue())
	}
	return s + "}"
}

func sampleValue(t dto.MetricType, m *dto.Metric) float64 {
	switch t {
	case dto.MetricType_COUNTER:
		return m.GetCounter().GetValue()
	case dto.MetricType_GAUGE:
		return m.GetGauge().GetValue()
	default:
		return m.GetUntyped().GetValue()
	}
}
