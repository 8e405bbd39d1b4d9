// Package cli wires the engine into the dailyhabit command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conorfennell/dailyhabit/internal/assign"
	"github.com/conorfennell/dailyhabit/internal/catalog"
	"github.com/conorfennell/dailyhabit/internal/clock"
	"github.com/conorfennell/dailyhabit/internal/config"
	"github.com/conorfennell/dailyhabit/internal/datekey"
	"github.com/conorfennell/dailyhabit/internal/logging"
	"github.com/conorfennell/dailyhabit/internal/storage"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Today      string
	Format     string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// app is the process-scoped state shared by every command of one run.
type app struct {
	opts   *RootOptions
	cfg    config.Config
	log    *zap.Logger
	clock  clock.Clock
	opener *storage.Opener
}

// NewRootCommand creates the root command for the dailyhabit CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&app{opts: &RootOptions{}})
}

func newRootCommand(a *app) *cobra.Command {
	opts := a.opts

	cmd := &cobra.Command{
		Use:           "dailyhabit",
		Short:         "One habit a day, tracked locally",
		Long:          "dailyhabit hands out one item from a dated catalog per day and tracks completion streaks in a local database.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.init(cmd); err != nil {
				return errors.Join(err, a.close())
			}
			return nil
		},
	}

	// Global flags
	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.ConfigPath, "config", "", "path to a YAML config file")
	pf.StringVar(&opts.Today, "today", "", "treat this date (YYYY-MM-DD) as today")
	pf.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	pf.String("db", "dailyhabit.db", "path to the database file")
	pf.String("log-level", "info", "log level (debug|info|warn|error)")
	pf.String("log-file", "", "also write logs to this rotating file")
	pf.String("catalog", "", "catalog file (.yaml/.yml or text format)")
	pf.String("repo", "", "git repository holding the catalog")

	// Add subcommands
	cmd.AddCommand(NewTodayCommand(a))
	cmd.AddCommand(NewCompleteCommand(a))
	cmd.AddCommand(NewStatsCommand(a))
	cmd.AddCommand(NewMonthCommand(a))
	cmd.AddCommand(NewReconcileCommand(a))
	cmd.AddCommand(NewPrefsCommand(a))
	cmd.AddCommand(NewHistoryCommand(a))
	cmd.AddCommand(NewResetCommand(a))

	closeAfterRun(cmd, a)
	return cmd
}

// closeAfterRun wraps every RunE so the store and logger are released even
// when the command fails. cobra skips post-run hooks after a RunE error.
func closeAfterRun(cmd *cobra.Command, a *app) {
	for _, sub := range cmd.Commands() {
		closeAfterRun(sub, a)
	}
	run := cmd.RunE
	if run == nil {
		return
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) (err error) {
		defer func() {
			err = errors.Join(err, a.close())
		}()
		return run(cmd, args)
	}
}

func (a *app) init(cmd *cobra.Command) error {
	if !isValidFormat(a.opts.Format) {
		return fmt.Errorf("invalid format %q: must be one of %v", a.opts.Format, ValidFormats)
	}

	cfg, err := config.Load(a.opts.ConfigPath, cmd.Flags())
	if err != nil {
		return err
	}
	a.cfg = cfg

	log, err := logging.New(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.log = log

	a.clock = clock.System{}
	if a.opts.Today != "" {
		day, err := datekey.Parse(a.opts.Today)
		if err != nil {
			return fmt.Errorf("invalid --today: %w", err)
		}
		y, m, d := day.Date()
		a.clock = clock.Fixed(time.Date(y, m, d, 12, 0, 0, 0, time.Local))
	}

	a.opener = storage.NewOpener(storage.WithLogger(log), storage.WithClock(a.clock))
	return nil
}

func (a *app) close() error {
	var err error
	if a.opener != nil {
		err = a.opener.Close()
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
	return err
}

// store opens the configured database on first use.
func (a *app) store(ctx context.Context) (*storage.DB, error) {
	return a.opener.Open(ctx, a.cfg.DB.Path)
}

func (a *app) assigner(db *storage.DB) *assign.Service {
	return assign.NewService(db, a.clock, a.log)
}

func (a *app) catalogSource() catalog.Source {
	return catalog.Source{
		Path:        a.cfg.Catalog.Path,
		Repo:        a.cfg.Catalog.Repo,
		CheckoutDir: a.cfg.Catalog.CheckoutDir,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
