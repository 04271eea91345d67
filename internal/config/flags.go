package config

import (
	"flag"
	"os"
	"time"

	"github.com/novalis78/keykeeper/internal/flagx"
)

// ConfigFlags lists every flag the config layer owns, so command parsing
// can exclude them from its own argument list.
var ConfigFlags = []string{"-c", "-config", "-d", "-k", "-s", "-p", "-t"}

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-d string   path to the credential database file
//	-k string   OS keyring service name (selects the keyring tier)
//	-s string   IMAP server host
//	-p int      IMAP server port
//	-t int      credential TTL in seconds (0 = no expiry)
//
// Only the flags above are parsed; os.Args is filtered first so command
// arguments and -c/-config do not interfere.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-k", "-s", "-p", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the credential database file")
	fs.StringVar(&cfg.KeyringService, "k", cfg.KeyringService, "OS keyring service name")
	fs.StringVar(&cfg.IMAPServer, "s", cfg.IMAPServer, "IMAP server host")
	fs.IntVar(&cfg.IMAPPort, "p", cfg.IMAPPort, "IMAP server port")
	credentialTTL := fs.Int("t", int(cfg.CredentialTTL.Seconds()), "credential TTL (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.CredentialTTL = time.Duration(*credentialTTL) * time.Second
}
