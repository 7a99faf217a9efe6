package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jhoicas/erp-automation/internal/scheduler"
)

type jobRow struct {
	Name        string `json:"name"`
	Schedule    string `json:"schedule"`
	Enabled     bool   `json:"enabled"`
	Next        string `json:"next,omitempty"`
	Description string `json:"description"`
}

func newJobsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "jobs",
		Short: "Lista los jobs registrados, su cadencia y la próxima ejecución",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			// listar no necesita base de datos
			a, err := bootstrap(ctx, opts, driverMemory)
			if err != nil {
				return err
			}
			defer a.Close()

			sched := scheduler.New(a.clock.Location(), a.registry, a.log)
			if err := sched.RegisterAll(a.cfg.Cron); err != nil {
				return err
			}
			next := map[string]scheduler.Entry{}
			for _, e := range sched.NextRuns(a.clock.Now()) {
				next[e.Name] = e
			}

			var rows []jobRow
			for _, j := range a.registry.Jobs() {
				row := jobRow{Name: j.Name, Schedule: j.Schedule, Description: j.Description}
				if e, ok := next[j.Name]; ok {
					row.Enabled = true
					row.Schedule = e.Schedule
					row.Next = e.Next.Format("2006-01-02 15:04 MST")
				}
				rows = append(rows, row)
			}

			w := cmd.OutOrStdout()
			if opts.Format == "json" {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}
			tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "JOB\tCRON\tHABILITADO\tPRÓXIMA\tDESCRIPCIÓN")
			for _, r := range rows {
				when := r.Next
				if when == "" {
					when = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%t\t%s\t%s\n", r.Name, r.Schedule, r.Enabled, when, r.Description)
			}
			return tw.Flush()
		},
	}
}
