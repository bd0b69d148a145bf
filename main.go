package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/mattn/go-isatty"
	"github.com/sadopc/timebill/internal/cli"
	"github.com/sadopc/timebill/internal/config"
	"github.com/sadopc/timebill/internal/export"
	"github.com/sadopc/timebill/internal/logger"
	"github.com/sadopc/timebill/internal/mail"
	"github.com/sadopc/timebill/internal/secret"
	"github.com/sadopc/timebill/internal/store"
	"github.com/sadopc/timebill/internal/timer"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	log, err := logger.New(config.Verbose())
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer log.Sync()

	paths, err := config.ResolvePaths()
	if err != nil {
		return err
	}

	s, err := store.New(paths.DB, store.WithLogger(log))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer s.Close()

	box, err := secret.LoadOrCreate(paths.Key)
	if err != nil {
		return fmt.Errorf("loading encryption key: %w", err)
	}
	settings := config.NewManager(paths.Config, box, log)

	app := &cli.App{
		Store:       s,
		Timer:       timer.NewService(s, log),
		Exporter:    export.NewExporter(log),
		Mailer:      mail.NewMailer(mail.NewSMTPSender(), settings, log),
		Config:      settings,
		Interactive: isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd()),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := cli.NewRootCmd(app)
	root.SilenceErrors = true
	return root.ExecuteContext(ctx)
}
