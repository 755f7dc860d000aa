package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mmynk/splitmint/internal/api"
	"github.com/mmynk/splitmint/internal/config"
	"github.com/mmynk/splitmint/internal/storage/sqlite"
	"github.com/mmynk/splitmint/pkg/logging"
)

const usageText = `splitmint is the SplitMint terminal client.

Usage:
  splitmint <command> [flags] [args]

Commands:
  login         sign in (--email, --password)
  register      create an account and sign in (--email, --password)
  logout        sign out
  whoami        show the signed-in user
  groups        list your groups
  create-group  create a group: create-group <name>
  show          show a group: show <group-id>
  add-member    add a member: add-member <group-id> (--name N | --email E)
  add-expense   add an equal split: add-expense <group-id> --amount A --description D --payer P
  parse         prefill an expense with MintSense: parse <group-id> [--submit] <text>
  help          show help

The password may also be given in SPLITMINT_PASSWORD. The session is shared
with the web client through the state database (STATE_PATH).

Examples:
  splitmint login --email alice@example.com --password secret123
  splitmint create-group Goa Trip
  splitmint add-expense 6f1c... --amount 120 --description Dinner --payer Alice
  splitmint parse 6f1c... --submit "Bob paid 42.50 for the taxi"
`

func printUsage(w io.Writer) {
	fmt.Fprint(w, usageText)
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		printUsage(os.Stderr)
		return
	}
	switch args[0] {
	case "-h", "--help", "help":
		printUsage(os.Stdout)
		return
	}

	err := run(args)
	if errors.Is(err, errUnknownCommand) {
		fmt.Fprintf(os.Stderr, "%v\n\n", err)
		printUsage(os.Stderr)
		os.Exit(2)
	}
	exitOnErr(args[0], err, os.Stderr)
}

func run(args []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logging.SetupWithLevel(logging.ParseLevel(cfg.LogLevel))

	store, err := sqlite.New(cfg.StatePath)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(os.Stdout, os.Stderr, store, cfg.APIBaseURL, api.WithTimeout(cfg.RequestTimeout))
	return a.run(ctx, args)
}

func exitOnErr(label string, err error, stderr io.Writer) {
	if err == nil {
		return
	}
	fmt.Fprintf(stderr, "%s error: %v\n", label, err)
	os.Exit(1)
}
