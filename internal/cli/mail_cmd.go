package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sadopc/timebill/internal/config"
	"github.com/sadopc/timebill/internal/timer"
	"github.com/sadopc/timebill/internal/tui"
	"github.com/spf13/cobra"
)

func newMailCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mail",
		Short: "Configure the account reports are sent from",
	}

	cmd.AddCommand(
		newMailShowCmd(app),
		newMailSetCmd(app),
		newMailTestCmd(app),
	)

	return cmd
}

func newMailShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the mail settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.Config.Load()
			password := styleDim.Render("not set")
			if cfg.Password != "" {
				password = styleGreen.Render("set")
			}
			sender := cfg.SenderEmail
			if sender == "" {
				sender = styleDim.Render("not set")
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "SMTP server: %s\n", cfg.SMTPServer)
			fmt.Fprintf(out, "SMTP port:   %d\n", cfg.SMTPPort)
			fmt.Fprintf(out, "Sender:      %s\n", sender)
			fmt.Fprintf(out, "Password:    %s\n", password)
			fmt.Fprintf(out, "File:        %s\n", app.Config.Path())
			return nil
		},
	}
}

func providerKeys() string {
	names := make([]string, len(config.Providers))
	for i, p := range config.Providers {
		names[i] = p.Key
	}
	return strings.Join(names, ", ")
}

func newMailSetCmd(app *App) *cobra.Command {
	var provider, server, sender, password string
	var port int

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change the mail settings",
		Long: "Change the mail settings. The password is stored encrypted; on a terminal it is asked for\n" +
			"when --password is not given. Known providers: " + providerKeys() + ".",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.Config.Load()

			if changed(cmd, "provider") {
				p, ok := config.LookupProvider(provider)
				if !ok {
					return fmt.Errorf("unknown provider %q (known: %s)", provider, providerKeys())
				}
				cfg.SMTPServer = p.Server
				cfg.SMTPPort = p.Port
			}
			if changed(cmd, "server") {
				cfg.SMTPServer = strings.TrimSpace(server)
			}
			if changed(cmd, "port") {
				if port <= 0 || port > 65535 {
					return fmt.Errorf("invalid port %d", port)
				}
				cfg.SMTPPort = port
			}
			if changed(cmd, "sender") {
				sender = strings.TrimSpace(sender)
				if sender != "" && !timer.ValidEmail(sender) {
					return timer.ErrInvalidEmail
				}
				cfg.SenderEmail = sender
			}
			switch {
			case changed(cmd, "password"):
				cfg.Password = password
			case app.Interactive:
				p, err := tui.PasswordPrompt("Sender password (blank keeps the current one)")
				if err != nil {
					return err
				}
				if p != "" {
					cfg.Password = p
				}
			}

			if err := app.Config.Save(cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved mail settings to %s\n", app.Config.Path())
			return nil
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "Preset server and port ("+providerKeys()+")")
	cmd.Flags().StringVar(&server, "server", "", "SMTP server")
	cmd.Flags().IntVar(&port, "port", 0, "SMTP port")
	cmd.Flags().StringVar(&sender, "sender", "", "Sender address, also the SMTP username")
	cmd.Flags().StringVar(&password, "password", "", "Sender password")

	return cmd
}

func newMailTestCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Check that the stored account can log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := app.Config.Credentials()
			if err != nil {
				return err
			}
			if !creds.Complete() {
				return errors.New("mail settings are incomplete; run \"timebill mail set\"")
			}
			if !app.Mailer.TestConnection(cmd.Context(), creds) {
				return fmt.Errorf("could not log in to %s:%d", creds.Server, creds.Port)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Connected to %s:%d as %s\n", creds.Server, creds.Port, creds.Username)
			return nil
		},
	}
}
