package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nonsonwune/seedgen/config"
	"github.com/nonsonwune/seedgen/importer"
	"github.com/nonsonwune/seedgen/logger"
	"github.com/nonsonwune/seedgen/migrations"
	"github.com/nonsonwune/seedgen/models"
	"github.com/nonsonwune/seedgen/preview"
	"github.com/nonsonwune/seedgen/sqlgen"
)

// app carries the loaded configuration and the flags shared by the subcommands.
type app struct {
	configPath string
	verbose    bool
	cfg        *config.Config

	source        string
	out           string
	dialect       string
	batchSize     int
	strict        bool
	hashPasswords bool
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "seedgen",
		Short:         "Convert a sectioned timetable export into an SQL seed script",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runMenu(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", config.DefaultPath, "config file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVarP(&a.source, "source", "s", "", "source export file (default: first match in source.dir)")
	root.PersistentFlags().StringVar(&a.dialect, "dialect", "", "sql dialect: mysql or postgres")
	root.PersistentFlags().BoolVar(&a.strict, "strict", false, "fail when a reference has to be substituted or dropped")
	root.PersistentFlags().BoolVar(&a.hashPasswords, "hash-passwords", false, "store bcrypt hashes instead of plaintext passwords")

	root.AddCommand(
		a.newGenerateCmd(),
		a.newInspectCmd(),
		a.newApplyCmd(),
		a.newServeCmd(),
	)
	return root
}

func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("dialect") {
		cfg.Output.Dialect = a.dialect
	}
	if flags.Changed("strict") {
		cfg.Import.Strict = a.strict
	}
	if flags.Changed("hash-passwords") {
		cfg.Import.HashPasswords = a.hashPasswords
	}
	if flags.Changed("out") {
		cfg.Output.Path = a.out
	}
	if flags.Changed("batch-size") {
		if a.batchSize <= 0 {
			return fmt.Errorf("batch size must be positive, got %d", a.batchSize)
		}
		cfg.Output.BatchSize = a.batchSize
	}
	a.cfg = cfg

	level := cfg.Logging.Level
	if a.verbose {
		level = "debug"
	}
	logger.Configure(logger.Config{
		Level:  level,
		Format: cfg.Logging.Format,
		Output: cmd.ErrOrStderr(),
	})
	logger.Debug().
		Str("config", a.configPath).
		Str("dialect", cfg.Output.Dialect).
		Str("output", cfg.Output.Path).
		Bool("strict", cfg.Import.Strict).
		Msg("configuration loaded")
	return nil
}

// convert locates and imports the source export.
func (a *app) convert(ctx context.Context) (*models.Dataset, *importer.Report, error) {
	source := a.source
	if source == "" {
		var err error
		source, err = importer.LocateSource(a.cfg.Source.Dir, a.cfg.Source.Patterns)
		if err != nil {
			return nil, nil, err
		}
	}
	logger.Info().Str("source", source).Msg("converting export")

	imp := importer.New(importer.Options{
		Strict:        a.cfg.Import.Strict,
		HashPasswords: a.cfg.Import.HashPasswords,
	}, logger.Get())
	return imp.ImportFile(ctx, source)
}

func (a *app) build(data *models.Dataset, report *importer.Report) (*sqlgen.Script, error) {
	dialect, err := sqlgen.DialectFor(a.cfg.Output.Dialect)
	if err != nil {
		return nil, err
	}
	gen := sqlgen.New(sqlgen.Options{
		Dialect:      dialect,
		BatchSize:    a.cfg.Output.BatchSize,
		General:      a.cfg.Settings.General,
		Optimization: a.cfg.Settings.Optimization,
	}, logger.Get())
	return gen.Build(data.Rows(), sqlgen.Meta{RunID: report.RunID, Source: report.Source})
}

// generate converts the export and writes the script to the configured path, or to w for "-".
func (a *app) generate(ctx context.Context, w io.Writer) (*importer.Report, *sqlgen.Script, error) {
	data, report, err := a.convert(ctx)
	if err != nil {
		return report, nil, err
	}
	script, err := a.build(data, report)
	if err != nil {
		return report, nil, err
	}

	if a.cfg.Output.Path == "-" {
		_, err = script.WriteTo(w)
	} else {
		err = script.WriteFile(a.cfg.Output.Path)
	}
	if err != nil {
		return report, script, err
	}
	return report, script, nil
}

func (a *app) newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Convert the export and write the seed script",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			report, script, err := a.generate(cmd.Context(), out)
			if report != nil && a.cfg.Output.Path != "-" {
				printSummary(out, report, script)
			}
			if err != nil {
				return err
			}
			if a.cfg.Output.Path != "-" {
				color.New(color.FgGreen).Fprintf(out, "Seed script written to %s\n", a.cfg.Output.Path)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&a.out, "out", "o", "", "output path, - for stdout (default: output.path)")
	cmd.Flags().IntVar(&a.batchSize, "batch-size", 0, "rows per INSERT statement")
	return cmd
}

func (a *app) newInspectCmd() *cobra.Command {
	var rejects string
	var limit int

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Convert the export without writing SQL and report what was found",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			_, report, err := a.convert(cmd.Context())
			if report != nil {
				printSummary(out, report, nil)
				printIssues(out, report, limit)
				if rejects != "" {
					if err := report.SaveIssues(rejects); err != nil {
						return err
					}
					color.New(color.FgGreen).Fprintf(out, "Rejected rows written to %s\n", rejects)
				}
			}
			return err
		},
	}
	cmd.Flags().StringVar(&rejects, "rejects", "", "write every issue to this CSV file")
	cmd.Flags().IntVar(&limit, "limit", 20, "issues to print, 0 for all")
	return cmd
}

func (a *app) newApplyCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Convert the export and load it into the configured database",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			data, report, err := a.convert(ctx)
			if err != nil {
				return err
			}
			script, err := a.build(data, report)
			if err != nil {
				return err
			}
			printSummary(out, report, script)

			if !yes {
				fmt.Fprintf(out, "Replace all rows in %s@%s/%s? (y/n): ",
					a.cfg.Database.User, a.cfg.Database.Host, a.cfg.Database.Name)
				if !strings.EqualFold(readLine(cmd.InOrStdin()), "y") {
					fmt.Fprintln(out, "Apply cancelled.")
					return nil
				}
			}
			return a.apply(ctx, out, script)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func (a *app) apply(ctx context.Context, out io.Writer, script *sqlgen.Script) error {
	dialect, err := sqlgen.DialectFor(a.cfg.Output.Dialect)
	if err != nil {
		return err
	}
	db, err := migrations.Open(ctx, dialect.Name, migrations.ConnConfig{
		Host:     a.cfg.Database.Host,
		Port:     a.cfg.Database.Port,
		User:     a.cfg.Database.User,
		Password: a.cfg.Database.Password,
		Name:     a.cfg.Database.Name,
		SSLMode:  a.cfg.Database.SSLMode,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	if dialect.Name == sqlgen.Postgres.Name {
		logger.Warn().Str("user", a.cfg.Database.User).Msg("disabling foreign key checks on postgres requires a superuser")
	}
	if err := migrations.InitSchema(ctx, db, dialect.Name, sqlgen.ScriptTables()); err != nil {
		return err
	}
	res, err := migrations.Apply(ctx, db, script.Statements, logger.Get())
	if err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(out, "Applied %d statements (%d rows affected)\n", res.Statements, res.RowsAffected)
	return nil
}

func (a *app) newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a read-only JSON preview of the converted dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, report, err := a.convert(cmd.Context())
			if err != nil {
				return err
			}
			if port == "" {
				port = a.cfg.Server.Port
			}
			srv := preview.NewServer(data, report, a.cfg.Server.Mode, logger.Get())
			return srv.Run(cmd.Context(), ":"+port)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (default: server.port)")
	return cmd
}
