package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/target/fatal-log-mailer/internal/bootstrap"
	"github.com/target/fatal-log-mailer/internal/data"
	"github.com/target/fatal-log-mailer/internal/domain"
	"github.com/target/fatal-log-mailer/internal/domain/model"
	"github.com/target/fatal-log-mailer/internal/migrate"
)

type migrateOptions struct {
	Timeout time.Duration
}

type teardownOptions struct {
	Yes bool
}

type runNowOptions struct {
	Date string
}

func parseMigrateFlags(args []string) (migrateOptions, error) {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := migrateOptions{Timeout: defaultMigrationTimeout}
	fs.DurationVar(&opts.Timeout, "timeout", defaultMigrationTimeout, "Maximum duration to wait for migrations to complete")

	if err := fs.Parse(args); err != nil {
		return migrateOptions{}, err
	}
	if opts.Timeout <= 0 {
		return migrateOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}

func parseTeardownFlags(args []string) (teardownOptions, error) {
	fs := flag.NewFlagSet("teardown", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts teardownOptions
	fs.BoolVar(&opts.Yes, "yes", false, "Skip the confirmation prompt")

	if err := fs.Parse(args); err != nil {
		return teardownOptions{}, err
	}
	return opts, nil
}

func parseRunNowFlags(args []string) (runNowOptions, error) {
	fs := flag.NewFlagSet("run-now", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts runNowOptions
	fs.StringVar(&opts.Date, "date", "", "Harvest this YYYY-MM-DD date instead of yesterday")

	if err := fs.Parse(args); err != nil {
		return runNowOptions{}, err
	}
	opts.Date = strings.TrimSpace(opts.Date)
	if opts.Date != "" {
		if _, err := time.Parse(time.DateOnly, opts.Date); err != nil {
			return runNowOptions{}, fmt.Errorf("--date must be YYYY-MM-DD, got %q", opts.Date)
		}
	}
	return opts, nil
}

func runMigrations(cmdCtx *commandContext, args []string) error {
	opts, err := parseMigrateFlags(args)
	if err != nil {
		return err
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		cmdCtx.Logger.Info("running database migrations")
		if migrateErr := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); migrateErr != nil {
			return migrateErr
		}
		cmdCtx.Logger.Info("migrations completed successfully")
		return nil
	})
}

func runSchedule(cmdCtx *commandContext, _ []string) error {
	return withServices(cmdCtx, defaultCommandTimeout, func(ctx context.Context, svcs *bootstrap.ServiceContainer) error {
		if err := svcs.Schedule.EnsureScheduled(ctx); err != nil {
			return err
		}
		task, err := svcs.Scheduler.GetByAction(ctx, domain.HarvestActionName)
		if err != nil {
			return err
		}
		return renderTrigger(cmdCtx.Out, task)
	})
}

func runTeardown(cmdCtx *commandContext, args []string) error {
	opts, err := parseTeardownFlags(args)
	if err != nil {
		return err
	}
	if !opts.Yes {
		prompt := fmt.Sprintf(
			"This removes the %s trigger and the %s setting.",
			domain.HarvestActionName, model.SettingsKeyLogEmail,
		)
		if confirmErr := confirm(cmdCtx.In, os.Stderr, prompt); confirmErr != nil {
			return confirmErr
		}
	}

	return withServices(cmdCtx, defaultCommandTimeout, func(ctx context.Context, svcs *bootstrap.ServiceContainer) error {
		if tdErr := svcs.Schedule.Teardown(ctx); tdErr != nil {
			return tdErr
		}
		return writeln(cmdCtx.Out, "Teardown complete.")
	})
}

func runNow(cmdCtx *commandContext, args []string) error {
	opts, err := parseRunNowFlags(args)
	if err != nil {
		return err
	}

	return withServices(cmdCtx, defaultCommandTimeout, func(ctx context.Context, svcs *bootstrap.ServiceContainer) error {
		var (
			report *model.DispatchReport
			runErr error
		)
		if opts.Date != "" {
			report, runErr = svcs.Harvest.RunDate(ctx, opts.Date)
		} else {
			report, runErr = svcs.Harvest.Run(ctx, time.Now())
		}
		if report != nil {
			if renderErr := renderReport(cmdCtx.Out, report); renderErr != nil {
				return errors.Join(runErr, renderErr)
			}
		}
		return runErr
	})
}

func runStatus(cmdCtx *commandContext, _ []string) error {
	return withDatabase(cmdCtx, defaultCommandTimeout, func(ctx context.Context, db *sql.DB) error {
		statuses, err := migrate.List(ctx, db)
		if err != nil {
			return err
		}
		if renderErr := renderMigrations(cmdCtx.Out, statuses); renderErr != nil {
			return renderErr
		}

		repo := data.NewScheduledJobsRepo(db)
		if availErr := repo.Available(ctx); availErr != nil {
			return writef(cmdCtx.Out, "\nScheduler: unavailable (%v)\n", availErr)
		}
		task, err := repo.GetByAction(ctx, domain.HarvestActionName)
		if err != nil {
			return err
		}
		return renderTrigger(cmdCtx.Out, task)
	})
}

// confirm asks the operator to type "yes".
func confirm(in io.Reader, out io.Writer, warning string) error {
	if err := writef(out, "\nWARNING: %s\nType \"yes\" to continue or press enter to abort: ", warning); err != nil {
		return fmt.Errorf("print confirmation prompt: %w", err)
	}
	if in == nil {
		return errors.New("aborted: no input available for confirmation")
	}
	resp, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read confirmation: %w", err)
	}
	if strings.TrimSpace(resp) != "yes" {
		return errors.New("aborted by user")
	}
	return nil
}

func renderMigrations(w io.Writer, statuses []migrate.Status) error {
	if err := writeln(w, "Migrations"); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, s := range statuses {
		state := "pending"
		if s.Applied {
			state = "applied"
		}
		if _, err := fmt.Fprintf(tw, "  %s\t%s\n", s.Version, state); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func renderTrigger(w io.Writer, task *domain.ScheduledTask) error {
	if task == nil {
		return writef(w, "\nTrigger %s: not scheduled\n", domain.HarvestActionName)
	}

	lastRun := "never"
	if task.LastRunAt != nil {
		lastRun = task.LastRunAt.Format(time.RFC3339)
	}
	fireKey := "-"
	if task.ActiveFireKey != nil {
		fireKey = *task.ActiveFireKey
	}

	if err := writef(w, "\nTrigger %s\n", task.ActionName); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	rows := [][2]string{
		{"id", task.ID},
		{"interval", task.Interval.String()},
		{"next run", task.NextRunAt.Format(time.RFC3339)},
		{"last run", lastRun},
		{"last fire key", fireKey},
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(tw, "  %s\t%s\n", r[0], r[1]); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func renderReport(w io.Writer, r *model.DispatchReport) error {
	if err := writef(w,
		"Run %s for %s: %d recipient(s), %d file(s), %d sent\n",
		r.RunID, r.Date, r.Recipients, r.Files, r.Sent,
	); err != nil {
		return err
	}
	for _, warn := range r.Warnings {
		if err := writef(w, "  warning: %s\n", warn.Message()); err != nil {
			return err
		}
	}
	return nil
}
