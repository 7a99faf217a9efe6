package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// rootOptions flags globales de todos los comandos.
type rootOptions struct {
	Store    string // postgres | memory; vacío = STORE_DRIVER
	LogLevel string
	Format   string // text | json
}

var validFormats = []string{"text", "json"}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "automation",
		Short: "Jobs de automatización y notificaciones del ERP",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !contains(validFormats, opts.Format) {
				return fmt.Errorf("formato %q inválido: debe ser uno de %v", opts.Format, validFormats)
			}
			if opts.Store != "" && opts.Store != driverPostgres && opts.Store != driverMemory {
				return fmt.Errorf("store %q inválido: postgres | memory", opts.Store)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Store, "store", "", "record store (postgres|memory); por defecto STORE_DRIVER")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "nivel de log; por defecto LOG_LEVEL")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "formato de salida (text|json)")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newRunCommand(opts))
	cmd.AddCommand(newJobsCommand(opts))
	cmd.AddCommand(newMigrateCommand(opts))
	cmd.AddCommand(newTokenCommand(opts))

	return cmd
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
