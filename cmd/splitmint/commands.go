package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/mmynk/splitmint/internal/api"
	"github.com/mmynk/splitmint/internal/session"
	"github.com/mmynk/splitmint/internal/storage"
	"github.com/mmynk/splitmint/internal/termui"
)

const envPassword = "SPLITMINT_PASSWORD"

var (
	errUnknownCommand = errors.New("unknown command")
	errNotSignedIn    = errors.New("not signed in, run `splitmint login` first")
)

type commandRunner interface {
	Run(ctx context.Context, args []string) error
}

type commandFunc func(ctx context.Context, args []string) error

func (f commandFunc) Run(ctx context.Context, args []string) error {
	return f(ctx, args)
}

// navRecorder keeps the last navigation target. The terminal has no views
// to move between; commands inspect the target instead.
type navRecorder struct {
	mu sync.Mutex
	to string
}

func (n *navRecorder) Navigate(_ context.Context, to string) {
	n.mu.Lock()
	n.to = to
	n.mu.Unlock()
	slog.Debug("Navigate", "to", to)
}

func (n *navRecorder) target() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.to
}

// app wires one command invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer

	session *session.Store
	client  *api.Client
	nav     *navRecorder
	ui      *termui.Renderer
}

func newApp(stdout, stderr io.Writer, store storage.Store, apiURL string, opts ...api.Option) *app {
	nav := &navRecorder{}
	sess := session.New(store, nav)
	return &app{
		stdout:  stdout,
		stderr:  stderr,
		session: sess,
		client:  api.New(apiURL, sess, opts...),
		nav:     nav,
		ui:      termui.New(stdout),
	}
}

func (a *app) commands() map[string]commandRunner {
	return map[string]commandRunner{
		"login":        commandFunc(a.login),
		"register":     commandFunc(a.register),
		"logout":       commandFunc(a.logout),
		"whoami":       commandFunc(a.whoami),
		"groups":       commandFunc(a.groups),
		"create-group": commandFunc(a.createGroup),
		"show":         commandFunc(a.show),
		"add-member":   commandFunc(a.addMember),
		"add-expense":  commandFunc(a.addExpense),
		"parse":        commandFunc(a.parse),
	}
}

// run hydrates the session and dispatches args[0].
func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: (none)", errUnknownCommand)
	}
	runner, ok := a.commands()[args[0]]
	if !ok {
		return fmt.Errorf("%w: %s", errUnknownCommand, args[0])
	}
	if err := a.session.Hydrate(ctx); err != nil {
		slog.Warn("Continuing signed out", "error", err)
	}
	return runner.Run(ctx, args[1:])
}

func (a *app) requireSession() error {
	if !a.session.IsAuthenticated() {
		return errNotSignedIn
	}
	return nil
}

func (a *app) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

// parseInterspersed parses flags that may follow positional arguments and
// returns the positionals in order. "--" ends flag parsing.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return positional, nil
		}
		if consumedTerminator(args, rest) {
			return append(positional, rest...), nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

// consumedTerminator reports whether fs.Parse stopped because of "--".
func consumedTerminator(args, rest []string) bool {
	i := len(args) - len(rest) - 1
	return i >= 0 && args[i] == "--"
}

func (a *app) println(s string) {
	if s != "" {
		fmt.Fprintln(a.stdout, s)
	}
}

func passwordOrEnv(p string) string {
	if p != "" {
		return p
	}
	return os.Getenv(envPassword)
}
