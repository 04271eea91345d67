// Package cli implements the KeyKeeper command-line interface: one-shot
// commands for deriving mail passwords, capturing credentials, reading them
// back, and wiping local state.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/novalis78/keykeeper/internal/config"
	"github.com/novalis78/keykeeper/internal/kvstore"
	"github.com/novalis78/keykeeper/internal/logging"
	"github.com/novalis78/keykeeper/internal/mailcred"
)

type App struct {
	config *config.Config
	store  *mailcred.Store
	closer io.Closer
	reader *bufio.Reader
	out    io.Writer
}

// NewApp wires the credential store to the configured persistent tier:
// the OS keyring when a service name is set, the SQLite database otherwise.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	var persistent kvstore.Store
	var closer io.Closer

	if cfg.KeyringService != "" {
		ring, err := kvstore.OpenKeyring(cfg.KeyringService)
		if err != nil {
			return nil, err
		}
		persistent = ring
	} else {
		db, err := kvstore.OpenSQLite(ctx, cfg.DatabasePath)
		if err != nil {
			return nil, err
		}
		persistent = db
		closer = db
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	store := mailcred.NewStore(kvstore.NewMemory(), persistent, mailcred.WithLogger(logger))

	return &App{
		config: cfg,
		store:  store,
		closer: closer,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}, nil
}

// Close releases the persistent tier.
func (a *App) Close() error {
	if a.closer != nil {
		return a.closer.Close()
	}
	return nil
}

// Run dispatches a single command with its arguments.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.usage()
		return fmt.Errorf("no command given")
	}

	switch args[0] {
	case "derive":
		return a.Derive(ctx, args[1:])
	case "login":
		return a.Login(ctx, args[1:])
	case "show":
		return a.Show(ctx, args[1:])
	case "logout":
		return a.Logout(ctx)
	default:
		a.usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func (a *App) usage() {
	fmt.Fprintln(a.out, "Usage: keykeeper <command> [arguments]")
	fmt.Fprintln(a.out, "Commands:")
	fmt.Fprintln(a.out, "  derive <email> <keyfile>             print the derived mail password")
	fmt.Fprintln(a.out, "  login [-remember] <email> <keyfile>  derive and store mail credentials")
	fmt.Fprintln(a.out, "  show [-password] <email>             print stored server settings")
	fmt.Fprintln(a.out, "  logout                               wipe all locally stored credentials")
}
