package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/erp-automation/internal/application/job"
	"github.com/jhoicas/erp-automation/internal/domain"
)

const allJobs = "all"

func newRunCommand(opts *rootOptions) *cobra.Command {
	var force bool
	var parallel int
	cmd := &cobra.Command{
		Use:   "run <job|all>",
		Short: "Ejecuta un job una vez y muestra su resultado",
		Long: `Ejecuta el job indicado fuera de su cadencia. "all" ejecuta en paralelo todos los jobs
habilitados. El comando falla si alguna ejecución queda marcada como fallida.

Ejemplo:
  automation run task-reminders
  automation run all --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := bootstrap(ctx, opts, "")
			if err != nil {
				return err
			}
			defer a.Close()

			results, err := runJobs(ctx, a, args[0], force, parallel)
			if err != nil {
				return err
			}
			if err := printResults(cmd.OutOrStdout(), opts.Format, results); err != nil {
				return err
			}
			return failedError(results)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "ejecutar aunque el job esté en JOBS_DISABLED")
	cmd.Flags().IntVar(&parallel, "parallel", 4, "jobs simultáneos con \"all\"")
	return cmd
}

func runJobs(ctx context.Context, a *app, name string, force bool, parallel int) ([]job.Result, error) {
	if name != allJobs {
		if !force && a.cfg.Cron.IsDisabled(name) {
			return nil, fmt.Errorf("%s: %w (usar --force)", name, domain.ErrJobDisabled)
		}
		res, err := a.registry.Run(ctx, name)
		if err != nil {
			return nil, err
		}
		return []job.Result{res}, nil
	}

	var jobs []job.Job
	for _, j := range a.registry.Jobs() {
		if force || !a.cfg.Cron.IsDisabled(j.Name) {
			jobs = append(jobs, j)
		}
	}
	results := make([]job.Result, len(jobs))
	var g errgroup.Group
	if parallel > 0 {
		g.SetLimit(parallel)
	}
	for i, j := range jobs {
		i, j := i, j
		g.Go(func() error {
			results[i] = a.registry.Execute(ctx, j)
			return nil
		})
	}
	_ = g.Wait()
	return results, nil
}

func printResults(w io.Writer, format string, results []job.Result) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "JOB\tESTADO\tDURACIÓN\tCONTADORES")
	for _, r := range results {
		status := "ok"
		if r.Failed {
			status = "FALLÓ: " + r.Error
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Job, status, r.Duration().Round(time.Millisecond), formatCounts(r.Counts))
	}
	return tw.Flush()
}

func formatCounts(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[k]))
	}
	return strings.Join(parts, " ")
}

func failedError(results []job.Result) error {
	var failed []string
	for _, r := range results {
		if r.Failed {
			failed = append(failed, r.Job)
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return fmt.Errorf("jobs fallidos: %s", strings.Join(failed, ", "))
}
