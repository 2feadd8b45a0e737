package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"strings"

	"github.com/target/fatal-log-mailer/internal/bootstrap"
	"github.com/target/fatal-log-mailer/internal/domain/model"
	"github.com/target/fatal-log-mailer/internal/service"
)

// recipientTiers is what show-recipients prints before the resolved list.
type recipientTiers struct {
	Configured model.RecipientConfig
	Recovery   string
	Admin      string
}

func parseSetRecipientsFlags(args []string) (string, error) {
	fs := flag.NewFlagSet("set-recipients", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var emails string
	fs.StringVar(&emails, "emails", "", "Comma-separated recipient addresses (empty string clears the list)")

	if err := fs.Parse(args); err != nil {
		return "", err
	}
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "emails" {
			set = true
		}
	})
	if !set {
		return "", errors.New("--emails is required")
	}
	return emails, nil
}

func parseSetAdminEmailFlags(args []string) (string, error) {
	fs := flag.NewFlagSet("set-admin-email", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var email string
	fs.StringVar(&email, "email", "", "Site admin email address")

	if err := fs.Parse(args); err != nil {
		return "", err
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return "", errors.New("--email is required")
	}
	return email, nil
}

func runSetRecipients(cmdCtx *commandContext, args []string) error {
	emails, err := parseSetRecipientsFlags(args)
	if err != nil {
		return err
	}

	return withServices(cmdCtx, defaultCommandTimeout, func(ctx context.Context, svcs *bootstrap.ServiceContainer) error {
		// Stored as typed; trimming and validation happen at resolve time.
		if saveErr := service.SaveRecipientConfig(ctx, svcs.Settings, emails); saveErr != nil {
			return saveErr
		}
		return showRecipients(ctx, cmdCtx, svcs)
	})
}

func runSetAdminEmail(cmdCtx *commandContext, args []string) error {
	email, err := parseSetAdminEmailFlags(args)
	if err != nil {
		return err
	}

	return withServices(cmdCtx, defaultCommandTimeout, func(ctx context.Context, svcs *bootstrap.ServiceContainer) error {
		if saveErr := service.SaveAdminEmail(ctx, svcs.Settings, email); saveErr != nil {
			return saveErr
		}
		return showRecipients(ctx, cmdCtx, svcs)
	})
}

func runShowRecipients(cmdCtx *commandContext, _ []string) error {
	return withServices(cmdCtx, defaultCommandTimeout, func(ctx context.Context, svcs *bootstrap.ServiceContainer) error {
		return showRecipients(ctx, cmdCtx, svcs)
	})
}

func showRecipients(ctx context.Context, cmdCtx *commandContext, svcs *bootstrap.ServiceContainer) error {
	cfg, err := service.LoadRecipientConfig(ctx, svcs.Settings)
	if err != nil {
		return err
	}
	admin, err := service.LoadAdminEmail(ctx, svcs.Settings)
	if err != nil {
		return err
	}
	resolved, err := svcs.Recipients.Resolve(ctx)
	if err != nil {
		return err
	}
	tiers := recipientTiers{
		Configured: cfg,
		Recovery:   cmdCtx.Config.Harvest.RecoveryModeEmail,
		Admin:      admin,
	}
	return renderRecipients(cmdCtx.Out, tiers, resolved)
}

func renderRecipients(w io.Writer, tiers recipientTiers, resolved model.RecipientList) error {
	configured := "(unset)"
	if tiers.Configured.Set {
		configured = quoteOrEmpty(tiers.Configured.Raw)
	}
	recovery := "(unset)"
	if tiers.Recovery != "" {
		recovery = tiers.Recovery
	}

	lines := []struct {
		label string
		value string
	}{
		{"configured", configured},
		{"recovery mode", recovery},
		{"admin", quoteOrEmpty(tiers.Admin)},
	}
	if err := writeln(w, "Recipient tiers"); err != nil {
		return err
	}
	for _, l := range lines {
		if err := writef(w, "  %-14s %s\n", l.label+":", l.value); err != nil {
			return err
		}
	}

	source := string(resolved.Source)
	if source == "" {
		source = "none"
	}
	if err := writef(w, "\nResolved from %s: %d address(es)\n", source, resolved.Len()); err != nil {
		return err
	}
	for _, addr := range resolved.Addresses {
		if err := writef(w, "  %s\n", addr); err != nil {
			return err
		}
	}
	for _, rej := range resolved.Rejected {
		if err := writef(w, "  rejected: %q\n", rej); err != nil {
			return err
		}
	}
	return nil
}

func quoteOrEmpty(s string) string {
	if strings.TrimSpace(s) == "" {
		return `""`
	}
	return s
}
