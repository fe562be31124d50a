// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

// Package config loads and saves the vanitypay configuration file, a plain
// "key = value" file with '#' comments stored in the data directory.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Config holds the settings of a vanitypay node.
type Config struct {
	DataDir    string
	ListenAddr string
	Network    string
	LogLevel   string
	LogFile    string

	// Registry is the registry reference written into the ledger settings.
	// RegistryDomain, when set, is resolved by DNS SRV instead.
	Registry       string
	RegistryDomain string
	DNSUpstream    string

	RPCUser   string
	RPCPass   string
	WalletURL string

	Admin              string
	Maintainer         string
	OwnerRevDisPercent string
	PayTo              string
}

// DefaultDataDir returns ~/.vanitypay, or .vanitypay when the home
// directory is unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".vanitypay"
	}
	return filepath.Join(home, ".vanitypay")
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		DataDir:    DefaultDataDir(),
		ListenAddr: ":8080",
		Network:    "mainnet",
		LogLevel:   "info",
	}
}

// ConfigPath returns the path of the configuration file in dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, "config")
}

// LedgerPath returns the path of the ledger database in the data directory.
func (c Config) LedgerPath() string {
	return filepath.Join(c.DataDir, "ledger.db")
}

// KeyPath returns the path of the named key file in the data directory.
func (c Config) KeyPath(name string) string {
	return filepath.Join(c.DataDir, "keys", name+".key")
}

// fields maps file keys to Config fields, in the order SaveConfig writes them.
func (c *Config) fields() []struct {
	key string
	ptr *string
} {
	return []struct {
		key string
		ptr *string
	}{
		{"datadir", &c.DataDir},
		{"listen", &c.ListenAddr},
		{"network", &c.Network},
		{"loglevel", &c.LogLevel},
		{"logfile", &c.LogFile},
		{"registry", &c.Registry},
		{"registrydomain", &c.RegistryDomain},
		{"dnsupstream", &c.DNSUpstream},
		{"rpcuser", &c.RPCUser},
		{"rpcpass", &c.RPCPass},
		{"walleturl", &c.WalletURL},
		{"admin", &c.Admin},
		{"maintainer", &c.Maintainer},
		{"ownerrevdispercent", &c.OwnerRevDisPercent},
		{"payto", &c.PayTo},
	}
}

// LoadConfig reads the file at path on top of DefaultConfig. Unknown keys
// are ignored.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return cfg, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	byKey := make(map[string]*string)
	for _, fld := range cfg.fields() {
		byKey[fld.key] = fld.ptr
	}

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, err := parseKeyValue(line)
		if err != nil {
			return cfg, fmt.Errorf("%w: line %d: %q", ErrInvalidConfigLine, lineNo, line)
		}
		if ptr, ok := byKey[strings.ToLower(key)]; ok {
			*ptr = value
		}
	}
	if err := scanner.Err(); err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	return cfg, nil
}

// parseKeyValue splits "key = value" on the first '='.
func parseKeyValue(line string) (string, string, error) {
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return "", "", ErrInvalidConfigLine
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", ErrInvalidConfigLine
	}
	return key, strings.TrimSpace(value), nil
}

// SaveConfig writes cfg to path, creating parent directories. Empty
// optional values are written as empty assignments.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}

	var b strings.Builder
	b.WriteString("# vanitypay configuration\n\n")
	for _, fld := range cfg.fields() {
		fmt.Fprintf(&b, "%s = %s\n", fld.key, *fld.ptr)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// Logger builds a text logger at the configured level writing to LogFile,
// or stderr when LogFile is empty. The returned closer releases the file.
func (c Config) Logger() (*slog.Logger, io.Closer, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(c.LogLevel))); err != nil {
		return nil, nil, fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}

	var w io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}
	if c.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(c.LogFile), 0700); err != nil {
			return nil, nil, fmt.Errorf("config: create log directory: %w", err)
		}
		f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return nil, nil, fmt.Errorf("config: open log file: %w", err)
		}
		w, closer = f, f
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
