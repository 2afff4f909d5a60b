package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// DatabaseSchemePostgres is the postgres database scheme identifier
	DatabaseSchemePostgres = "postgres"

	// DefaultGreetContract is the WavePortal deployment the portal talks to
	DefaultGreetContract = "0x6c7a9ff75Bd8C6C14672aee986336713633179A8"
	// DefaultPetContract is the PetVote deployment the portal talks to
	DefaultPetContract = "0x60f9090f4aeb17309969DE6EAF8081b5AD8F4663"

	// DefaultGasLimit is the gas-limit hint attached to every write call
	DefaultGasLimit uint64 = 300000
)

type Config struct {
	RPCURL       string // must be ws:// or ipc for live events
	ChainID      uint64 // 0: ask the node
	GreetAddress string
	PetAddress   string
	GreetABIPath string // optional: override embedded WavePortal schema
	PetABIPath   string // optional: override embedded PetVote schema
	GasLimit     uint64
	QueryTimeout time.Duration

	KeystoreDir      string
	KeystorePassword string
	PrivateKey       string // hex, used when no keystore is configured
	Account          string // preferred account inside the keystore
	AutoConnect      bool   // raw key counts as already authorized

	DBDialect string // postgres only
	DBDsn     string // DSN string passed to GORM driver
	Debug     bool   // if true: write logs to portal.log
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func getenvUint(key string, def uint64) uint64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseUint(v, 0, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: invalid %s=%q, using %d\n", key, v, def)
		return def
	}
	return n
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		fmt.Fprintf(os.Stderr, "warning: invalid %s=%q, using %s\n", key, v, def)
		return def
	}
	return d
}

// parseDatabaseURL interprets DATABASE_URL and returns (dialect, dsn).
// Supported schemes: postgres, postgresql.
func parseDatabaseURL(databaseURL string) (string, string, error) {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", "", err
	}
	scheme := strings.ToLower(u.Scheme)
	switch scheme {
	case DatabaseSchemePostgres, "postgresql":
		// GORM postgres driver accepts URL DSN as-is
		return DatabaseSchemePostgres, databaseURL, nil
	default:
		return "", "", fmt.Errorf("unsupported DATABASE_URL scheme: %s", u.Scheme)
	}
}

func Load() Config {
	cfg := Config{
		RPCURL:           getenv("RPC_URL", "ws://127.0.0.1:8545"),
		ChainID:          getenvUint("CHAIN_ID", 0),
		GreetAddress:     getenv("GREET_CONTRACT", DefaultGreetContract),
		PetAddress:       getenv("PET_CONTRACT", DefaultPetContract),
		GreetABIPath:     os.Getenv("GREET_ABI_PATH"),
		PetABIPath:       os.Getenv("PET_ABI_PATH"),
		GasLimit:         getenvUint("GAS_LIMIT", DefaultGasLimit),
		QueryTimeout:     getenvDuration("QUERY_TIMEOUT", 15*time.Second),
		KeystoreDir:      os.Getenv("KEYSTORE_DIR"),
		KeystorePassword: os.Getenv("KEYSTORE_PASSWORD"),
		PrivateKey:       strings.TrimPrefix(strings.TrimSpace(os.Getenv("PRIVATE_KEY")), "0x"),
		Account:          os.Getenv("ACCOUNT"),
		AutoConnect:      getenvBool("AUTO_CONNECT", false),
		Debug:            getenvBool("DEBUG", false),
	}

	if dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL")); dbURL != "" {
		if dialect, dsn, err := parseDatabaseURL(dbURL); err == nil {
			cfg.DBDialect = dialect
			cfg.DBDsn = dsn
		} else {
			fmt.Fprintf(os.Stderr, "warning: invalid DATABASE_URL, disabling archive: %v\n", err)
		}
	}

	return cfg
}

// HasWallet reports whether any wallet source is configured.
func (c Config) HasWallet() bool {
	return c.KeystoreDir != "" || c.PrivateKey != ""
}

func (c Config) String() string {
	return fmt.Sprintf("rpc=%s greet=%s pets=%s db=%s", c.RPCURL, c.GreetAddress, c.PetAddress, c.DBDialect)
}

// DebugString returns a human-friendly configuration string with masked secrets.
func (c Config) DebugString() string {
	return fmt.Sprintf(
		"rpc=%s chain_id=%d greet=%s pets=%s gas_limit=%d keystore=%s password=%s private_key=%s db=%s dsn=%s",
		c.RPCURL,
		c.ChainID,
		c.GreetAddress,
		c.PetAddress,
		c.GasLimit,
		c.KeystoreDir,
		maskSecret(c.KeystorePassword),
		maskSecret(c.PrivateKey),
		c.DBDialect,
		maskDSN(c.DBDialect, c.DBDsn),
	)
}

func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	return "***"
}

func maskDSN(dialect, dsn string) string {
	switch strings.ToLower(dialect) {
	case DatabaseSchemePostgres:
		if u, err := url.Parse(dsn); err == nil && u.Scheme != "" {
			if u.User != nil {
				username := u.User.Username()
				u.User = url.User(username)
			}
			return u.String()
		}
		// Fallback for DSN as key-value list
		parts := strings.Fields(dsn)
		for i, p := range parts {
			lower := strings.ToLower(p)
			if strings.HasPrefix(lower, "password=") {
				parts[i] = "password=***"
			}
		}
		return strings.Join(parts, " ")
	default:
		return dsn
	}
}
