package cli

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/novalis78/keykeeper/internal/authtoken"
	"github.com/novalis78/keykeeper/internal/common"
	"github.com/novalis78/keykeeper/internal/cryptox"
	"github.com/novalis78/keykeeper/internal/mailcred"
)

// Login derives the mail password from the key file, obtains a session key
// for the current auth context, and stores the encrypted credential bundle.
//
// The access token is prompted without echo. When the prompt is left empty
// (no authenticator in the loop) a random local session token is minted, so
// the cached credentials are still session-scoped.
func (a *App) Login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	remember := fs.Bool("remember", false, "keep credentials across restarts")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) < 2 {
		return fmt.Errorf("usage: login [-remember] <email> <keyfile>")
	}
	email, keyFile := rest[0], rest[1]

	keyMaterial, err := os.ReadFile(keyFile)
	if err != nil {
		return fmt.Errorf("reading key file: %w", err)
	}
	defer common.WipeByteArray(keyMaterial)

	password, err := mailcred.DerivePassword(email, keyMaterial)
	if err != nil {
		return err
	}

	token, err := GetToken(a.out)
	if err != nil {
		return err
	}
	if token == "" {
		token = uuid.NewString()
	}

	fingerprint := hex.EncodeToString(cryptox.AESGCM{}.Digest(keyMaterial))

	key, err := a.store.SessionKey(ctx, token, fingerprint)
	if err != nil {
		return err
	}

	bundle := &mailcred.CredentialBundle{
		Email:      email,
		Password:   password,
		IMAPServer: a.config.IMAPServer,
		IMAPPort:   a.config.IMAPPort,
		IMAPSecure: a.config.IMAPSecure,
	}
	if exp, ok := authtoken.Expiry(token); ok {
		bundle.ExpiresAt = &exp
	} else if a.config.CredentialTTL > 0 {
		exp := time.Now().Add(a.config.CredentialTTL)
		bundle.ExpiresAt = &exp
	}

	if err := a.store.Store(ctx, mailcred.AccountID(email), bundle, key, *remember); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Credentials stored for %s\n", email)
	return nil
}
