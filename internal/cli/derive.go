package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/novalis78/keykeeper/internal/common"
	"github.com/novalis78/keykeeper/internal/mailcred"
)

// Derive prints the deterministic mail password for an address. Mailbox
// provisioning runs the same derivation server-side; this command exists to
// verify both ends agree.
func (a *App) Derive(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: derive <email> <keyfile>")
	}

	keyMaterial, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("reading key file: %w", err)
	}
	defer common.WipeByteArray(keyMaterial)

	password, err := mailcred.DerivePassword(args[0], keyMaterial)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, password)
	return nil
}
