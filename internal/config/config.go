// Package config loads runtime settings for the KeyKeeper CLI: defaults,
// then an optional JSON file, then command-line flags, with later sources
// overriding earlier ones.
package config

import "time"

// Config holds runtime settings for the KeyKeeper CLI.
//
// Fields:
//   - DatabasePath: SQLite file backing the persistent credential tier.
//   - KeyringService: when non-empty, the persistent tier uses the OS
//     keyring under this service name instead of SQLite.
//   - IMAPServer/IMAPPort/IMAPSecure: server metadata recorded in stored
//     bundles and handed to the mail transport together with the derived
//     password.
//   - CredentialTTL: bundle lifetime applied when the auth token carries no
//     expiry of its own; zero means no expiry.
type Config struct {
	DatabasePath   string
	KeyringService string
	IMAPServer     string
	IMAPPort       int
	IMAPSecure     bool
	CredentialTTL  time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabasePath = "keykeeper.db"
	c.KeyringService = ""
	c.IMAPServer = "mail.keykeeper.io"
	c.IMAPPort = 993
	c.IMAPSecure = true
	c.CredentialTTL = 0
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if a config file was given) and command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
