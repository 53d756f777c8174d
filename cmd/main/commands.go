package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"degreeplan/advisor/internal/advisor"
	"degreeplan/advisor/internal/config"
	"degreeplan/advisor/internal/container"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type app struct {
	configFile string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "advisor",
		Short:         "Reconcile transcripts against degree requirements",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configFile)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			a.cfg = cfg
			return setupLogging(cfg.Log)
		},
	}
	root.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default ./config.yaml)")

	root.AddCommand(a.adviseCmd(), a.majorsCmd(), a.serveCmd(), a.workerCmd())
	return root
}

func setupLogging(cfg config.LogConfig) error {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	log.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	case "", "text":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("unknown log format %q", cfg.Format)
	}
	return nil
}

func (a *app) adviseCmd() *cobra.Command {
	var (
		transcriptFile string
		enrollmentFile string
		major          string
		asJSON         bool
	)

	cmd := &cobra.Command{
		Use:   "advise",
		Short: "Print the remaining requirements for one transcript",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := os.ReadFile(transcriptFile)
			if err != nil {
				return fmt.Errorf("failed to read transcript: %w", err)
			}

			req := advisor.Request{Transcript: string(text), Major: major}
			if enrollmentFile != "" {
				if req.Enrollment, err = os.ReadFile(enrollmentFile); err != nil {
					return fmt.Errorf("failed to read enrollment export: %w", err)
				}
			}

			core, err := container.NewCore(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}

			report, err := core.Advisor.Advise(req)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), report.Text)
			return err
		},
	}

	cmd.Flags().StringVar(&transcriptFile, "transcript", "", "transcript text file")
	cmd.Flags().StringVar(&enrollmentFile, "enrollment", "", "current-enrollment export (.html or .xlsx)")
	cmd.Flags().StringVar(&major, "major", "", "override the major printed on the transcript")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full report as JSON")
	_ = cmd.MarkFlagRequired("transcript")
	return cmd
}

func (a *app) majorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "majors",
		Short: "List supported majors and their specialization tracks",
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := container.NewCore(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			for _, def := range core.Registry.Majors() {
				if def.HasTracks() {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", def.Name, strings.Join(def.Tracks, ", "))
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout(), def.Name)
			}
			return nil
		},
	}
}

func (a *app) serveCmd() *cobra.Command {
	var withWorkers bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, true, withWorkers)
		},
	}
	cmd.Flags().BoolVar(&withWorkers, "workers", false, "also run queue workers in this process")
	return cmd
}

func (a *app) workerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run queue workers that process advising requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, false, true)
		},
	}
}

func (a *app) run(cmd *cobra.Command, serve, work bool) error {
	c, err := container.New(cmd.Context(), a.cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}
	defer c.Close()

	log.Info("🚀 Advisor started")
	if err := c.Run(cmd.Context(), serve, work); err != nil {
		return fmt.Errorf("application exited with error: %w", err)
	}
	log.Info("Application finished successfully")
	return nil
}
