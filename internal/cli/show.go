package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/novalis78/keykeeper/internal/common"
	"github.com/novalis78/keykeeper/internal/mailcred"
)

// Show retrieves the stored credential bundle for an address and prints the
// server settings. The password is only included with -password.
//
// Every internal failure mode (missing, expired, corrupted, undecryptable)
// collapses into one user-facing answer: no usable credentials, log in
// again.
func (a *App) Show(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	withPassword := fs.Bool("password", false, "include the mail password in the output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) < 1 {
		return fmt.Errorf("usage: show [-password] <email>")
	}
	email := rest[0]

	token, err := GetToken(a.out)
	if err != nil {
		return err
	}
	fingerprint, err := GetSimpleText(a.reader, "Key fingerprint (leave empty if a session is cached)", a.out)
	if err != nil {
		return err
	}

	key, err := a.store.SessionKey(ctx, token, fingerprint)
	if err != nil {
		if errors.Is(err, common.ErrMissingAuthContext) {
			return fmt.Errorf("no active session for %s, please log in", email)
		}
		return err
	}

	bundle, err := a.store.Retrieve(ctx, mailcred.AccountID(email), key)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) || errors.Is(err, common.ErrCredentialsUnavailable) {
			return fmt.Errorf("no usable credentials for %s, please log in again", email)
		}
		return err
	}

	fmt.Fprintf(a.out, "Email:  %s\n", bundle.Email)
	fmt.Fprintf(a.out, "Server: %s:%d (TLS: %t)\n", bundle.IMAPServer, bundle.IMAPPort, bundle.IMAPSecure)
	if bundle.ExpiresAt != nil {
		fmt.Fprintf(a.out, "Valid until: %s\n", bundle.ExpiresAt.Format("2006-01-02 15:04:05 MST"))
	}
	if *withPassword {
		fmt.Fprintf(a.out, "Password: %s\n", bundle.Password)
	}
	return nil
}
