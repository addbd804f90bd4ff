package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/festreg/internal/filex"
	"github.com/dmitrijs2005/festreg/internal/logging"
	"github.com/dmitrijs2005/festreg/internal/server/catalog"
	"github.com/dmitrijs2005/festreg/internal/server/config"
	"github.com/dmitrijs2005/festreg/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/festreg/internal/server/services"
	"github.com/spf13/cobra"
)

var openStore = repomanager.Open

type globalOptions struct {
	configPath string
	storage    string
	dsn        string
	mongoURI   string
	logLevel   string
}

// loadConfig reads defaults, the optional JSON file and the environment, then
// applies the CLI overrides.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	var args []string
	if o.configPath != "" {
		args = []string{"-c", o.configPath}
	}

	cfg, err := config.Load(args)
	if err != nil {
		return nil, err
	}

	if o.storage != "" {
		cfg.Storage = o.storage
	}
	if o.dsn != "" {
		cfg.DatabaseDSN = o.dsn
	}
	if o.mongoURI != "" {
		cfg.MongoURI = o.mongoURI
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}

	return cfg, nil
}

func rootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Operator tool for the fest registration server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file path (JSON)")
	cmd.PersistentFlags().StringVar(&opts.storage, "storage", "", "Storage backend: postgres, mongo or memory")
	cmd.PersistentFlags().StringVar(&opts.dsn, "dsn", "", "PostgreSQL DSN")
	cmd.PersistentFlags().StringVar(&opts.mongoURI, "mongo-uri", "", "MongoDB URI")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		migrateCmd(opts),
		exportCmd(opts),
		eventsCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
			},
		},
	)

	return cmd
}

func migrateCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Prepare the storage schema",
		Long: `Applies pending SQL migrations (postgres) or creates the unique
indexes (mongo). Both are idempotent.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			store, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close(ctx)

			fmt.Fprintf(cmd.OutOrStdout(), "schema ready (%s)\n", cfg.Storage)
			return nil
		},
	}
}

func exportCmd(opts *globalOptions) *cobra.Command {
	var (
		format string
		outDir string
		upload bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Dump all registrations as CSV or JSON",
		Long: `Writes every registration, oldest first. By default the dump goes to
stdout; --out writes it into a directory and --upload stores it in the
configured S3 bucket and prints a presigned download link.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != services.FormatCSV && format != services.FormatJSON {
				return fmt.Errorf("unknown format %q (want csv or json)", format)
			}

			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()

			store, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close(ctx)

			logger := logging.NewJSONLogger(cmd.ErrOrStderr(), cfg.LogLevel)
			svc := services.NewExportService(store, cfg, logger)
			out := cmd.OutOrStdout()

			switch {
			case upload:
				res, err := svc.Upload(ctx, format)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "exported %d registrations to %s\n%s\n", res.Count, res.Key, res.URL)

			case outDir != "":
				var buf bytes.Buffer
				n, err := svc.Write(ctx, &buf, format)
				if err != nil {
					return err
				}
				name := fmt.Sprintf("registrations-%s.%s", time.Now().UTC().Format("20060102-150405"), format)
				path, err := filex.WriteFile(outDir, name, buf.Bytes())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "exported %d registrations to %s\n", n, path)

			default:
				if _, err := svc.Write(ctx, out, format); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", services.FormatCSV, "Output format: csv or json")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Directory to write the export into")
	cmd.Flags().BoolVar(&upload, "upload", false, "Upload to S3 and print a presigned link")
	cmd.MarkFlagsMutuallyExclusive("out", "upload")

	return cmd
}

func eventsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List the fest's events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printEvents(cmd.OutOrStdout(), catalog.Default(), asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")

	return cmd
}

func printEvents(w io.Writer, c *catalog.Catalog, asJSON bool) error {
	events := c.Events()
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(events)
	}

	for _, e := range events {
		fmt.Fprintf(w, "%-18s %s\n", e.ID, e.Title)
		for _, d := range e.Details {
			fmt.Fprintf(w, "%-18s - %s\n", "", d)
		}
	}
	return nil
}
