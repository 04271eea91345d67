package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/novalis78/keykeeper/internal/flagx"
	"github.com/novalis78/keykeeper/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so the TTL can be written either as a "15m" string or as
// integer nanoseconds.
type JsonConfig struct {
	DatabasePath   *string         `json:"database_path"`
	KeyringService *string         `json:"keyring_service"`
	IMAPServer     *string         `json:"imap_server"`
	IMAPPort       *int            `json:"imap_port"`
	IMAPSecure     *bool           `json:"imap_secure"`
	CredentialTTL  *timex.Duration `json:"credential_ttl"`
}

// parseJson overlays cfg with values from the JSON file named by the
// -c/-config flags. Absent file path means nothing to do; only fields
// present in the file override the running config. Read or unmarshal
// failures panic, matching the flag-parsing behavior.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}
	applyJsonFile(cfg, jsonConfigFile)
}

func applyJsonFile(cfg *Config, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.DatabasePath != nil {
		cfg.DatabasePath = *jc.DatabasePath
	}
	if jc.KeyringService != nil {
		cfg.KeyringService = *jc.KeyringService
	}
	if jc.IMAPServer != nil {
		cfg.IMAPServer = *jc.IMAPServer
	}
	if jc.IMAPPort != nil {
		cfg.IMAPPort = *jc.IMAPPort
	}
	if jc.IMAPSecure != nil {
		cfg.IMAPSecure = *jc.IMAPSecure
	}
	if jc.CredentialTTL != nil {
		cfg.CredentialTTL = time.Duration(jc.CredentialTTL.Duration)
	}
}
