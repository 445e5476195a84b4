// Package main is the entry point for the cronzimus scheduler.
package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/edkuperman/cronzimus/internal/app"
	"github.com/edkuperman/cronzimus/internal/config"
	"github.com/edkuperman/cronzimus/internal/job"
	"github.com/edkuperman/cronzimus/internal/logger"
	"github.com/edkuperman/cronzimus/internal/schedule"
)

// Set by ldflags.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "cronzimus",
		Short:         "In-process job scheduler with a health endpoint",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("config", "c", "", "Path to YAML configuration file")
	root.AddCommand(serveCmd(), jobsCmd(), configCmd(), versionCmd())
	return root
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the scheduler and the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			root, closer := logger.New(cfg.Log)
			defer closer.Close()
			log := root.With().Str("service", "cronzimus").Logger()
			return app.New(cfg, log).Run(cmd.Context())
		},
	}
}

func jobsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "jobs [id]",
		Short: "List the registered jobs without starting them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := schedule.New(schedule.Deps{})
			if err != nil {
				return err
			}
			records := reg.Jobs()
			if len(args) == 1 {
				rec, ok := reg.Lookup(args[0])
				if !ok {
					return fmt.Errorf("job %q is not registered", args[0])
				}
				records = []job.Record{rec}
			}
			return printJobs(cmd.OutOrStdout(), records)
		},
	}
}

func printJobs(out io.Writer, records []job.Record) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tTRIGGER\tARGS")
	for _, rec := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", rec.ID, rec.Trigger.Kind(), rec.Trigger, len(rec.Args))
	}
	return w.Flush()
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Load and validate the configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration OK (env=%s, addr=%s, tz=%s)\n",
				cfg.Environment, cfg.HTTP.Addr, cfg.Location())
			return nil
		},
	})
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cronzimus %s (commit: %s)\n", version, commit)
		},
	}
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

