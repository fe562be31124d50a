// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// DefaultConfig tests
// ---------------------------------------------------------------------------

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"ListenAddr", cfg.ListenAddr, ":8080"},
		{"Network", cfg.Network, "mainnet"},
		{"LogLevel", cfg.LogLevel, "info"},
		{"LogFile", cfg.LogFile, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.want {
				t.Errorf("got %v, want %v", tc.got, tc.want)
			}
		})
	}

	// DataDir should end with .vanitypay (we don't assert the full path
	// since it depends on the home directory).
	if cfg.DataDir == "" {
		t.Error("DataDir should not be empty")
	}
}

// ---------------------------------------------------------------------------
// SaveConfig / LoadConfig round-trip tests
// ---------------------------------------------------------------------------

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config")

	original := Config{
		DataDir:            "/tmp/test-vanitypay",
		ListenAddr:         ":9000",
		Network:            "testnet",
		LogLevel:           "debug",
		LogFile:            "/tmp/vanitypay.log",
		Registry:           "http://localhost:18332",
		RegistryDomain:     "vanity.example",
		DNSUpstream:        "1.1.1.1:53",
		RPCUser:            "user",
		RPCPass:            "pass",
		WalletURL:          "http://localhost:18333",
		Admin:              "0101010101010101010101010101010101010101",
		Maintainer:         "0202020202020202020202020202020202020202",
		OwnerRevDisPercent: "6000",
		PayTo:              "0303030303030303030303030303030303030303",
	}

	if err := SaveConfig(path, original); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"DataDir", loaded.DataDir, original.DataDir},
		{"ListenAddr", loaded.ListenAddr, original.ListenAddr},
		{"Network", loaded.Network, original.Network},
		{"LogLevel", loaded.LogLevel, original.LogLevel},
		{"LogFile", loaded.LogFile, original.LogFile},
		{"Registry", loaded.Registry, original.Registry},
		{"RegistryDomain", loaded.RegistryDomain, original.RegistryDomain},
		{"DNSUpstream", loaded.DNSUpstream, original.DNSUpstream},
		{"RPCUser", loaded.RPCUser, original.RPCUser},
		{"RPCPass", loaded.RPCPass, original.RPCPass},
		{"WalletURL", loaded.WalletURL, original.WalletURL},
		{"Admin", loaded.Admin, original.Admin},
		{"Maintainer", loaded.Maintainer, original.Maintainer},
		{"OwnerRevDisPercent", loaded.OwnerRevDisPercent, original.OwnerRevDisPercent},
		{"PayTo", loaded.PayTo, original.PayTo},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.want {
				t.Errorf("got %v, want %v", tc.got, tc.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// LoadConfig error tests
// ---------------------------------------------------------------------------

func TestLoadConfigNotFound(t *testing.T) {
	_, err := LoadConfig("/nonexistent/path/config")
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("LoadConfig nonexistent: got %v, want ErrConfigNotFound", err)
	}
}

func TestLoadConfigInvalidLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config")

	content := "this-is-not-key-value\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := LoadConfig(path)
	if !errors.Is(err, ErrInvalidConfigLine) {
		t.Errorf("LoadConfig bad line: got %v, want ErrInvalidConfigLine", err)
	}
}

// ---------------------------------------------------------------------------
// ValidateConfig tests
// ---------------------------------------------------------------------------

func TestValidateConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{
			name:    "empty_datadir",
			modify:  func(c *Config) { c.DataDir = "" },
			wantErr: ErrEmptyDataDir,
		},
		{
			name:    "bad_network",
			modify:  func(c *Config) { c.Network = "devnet" },
			wantErr: ErrInvalidNetwork,
		},
		{
			name:    "bad_listen_addr",
			modify:  func(c *Config) { c.ListenAddr = "not-a-valid-addr" },
			wantErr: ErrInvalidListenAddr,
		},
		{
			name:    "bad_loglevel",
			modify:  func(c *Config) { c.LogLevel = "verbose" },
			wantErr: ErrInvalidLogLevel,
		},
		{
			name:    "bad_admin",
			modify:  func(c *Config) { c.Admin = "not-an-identity" },
			wantErr: ErrInvalidIdentity,
		},
		{
			name:    "bad_payto",
			modify:  func(c *Config) { c.PayTo = "abcd" },
			wantErr: ErrInvalidIdentity,
		},
		{
			name:    "percent_too_large",
			modify:  func(c *Config) { c.OwnerRevDisPercent = "10001" },
			wantErr: ErrInvalidPercent,
		},
		{
			name:    "percent_not_a_number",
			modify:  func(c *Config) { c.OwnerRevDisPercent = "60%" },
			wantErr: ErrInvalidPercent,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.modify(&cfg)
			err := ValidateConfig(cfg)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("ValidateConfig: got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestValidateConfigValidNetworks(t *testing.T) {
	for _, network := range []string{"mainnet", "testnet", "regtest"} {
		cfg := DefaultConfig()
		cfg.Network = network
		if err := ValidateConfig(cfg); err != nil {
			t.Errorf("ValidateConfig with network %q: %v", network, err)
		}
	}
}

// ---------------------------------------------------------------------------
// Derived values
// ---------------------------------------------------------------------------

func TestPercent(t *testing.T) {
	cfg := DefaultConfig()
	if p, err := cfg.Percent(); err != nil || p != 0 {
		t.Errorf("Percent() with empty value = %d, %v; want 0, nil", p, err)
	}
	cfg.OwnerRevDisPercent = "10000"
	if p, err := cfg.Percent(); err != nil || p != 10000 {
		t.Errorf("Percent() = %d, %v; want 10000, nil", p, err)
	}
}

func TestPaths(t *testing.T) {
	cfg := Config{DataDir: "/data"}
	if got := cfg.LedgerPath(); got != filepath.Join("/data", "ledger.db") {
		t.Errorf("LedgerPath = %q", got)
	}
	if got := cfg.KeyPath("admin"); got != filepath.Join("/data", "keys", "admin.key") {
		t.Errorf("KeyPath = %q", got)
	}
	if got := ConfigPath("/data"); got != filepath.Join("/data", "config") {
		t.Errorf("ConfigPath = %q", got)
	}
}

func TestMainnet(t *testing.T) {
	cfg := DefaultConfig()
	if !cfg.Mainnet() {
		t.Error("default network should be mainnet")
	}
	cfg.Network = "regtest"
	if cfg.Mainnet() {
		t.Error("regtest should not be mainnet")
	}
}

// ---------------------------------------------------------------------------
// Logger
// ---------------------------------------------------------------------------

func TestLogger_WritesToFile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "warn"
	cfg.LogFile = filepath.Join(t.TempDir(), "logs", "vanitypay.log")

	logger, closer, err := cfg.Logger()
	if err != nil {
		t.Fatalf("Logger: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown", "name", "all.country")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(cfg.LogFile)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	out := string(data)
	if strings.Contains(out, "hidden") {
		t.Error("info line should be filtered at warn level")
	}
	if !strings.Contains(out, "msg=shown") || !strings.Contains(out, "name=all.country") {
		t.Errorf("log output missing warn line: %q", out)
	}
}

func TestLogger_InvalidLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "verbose"
	if _, _, err := cfg.Logger(); !errors.Is(err, ErrInvalidLogLevel) {
		t.Errorf("Logger with bad level: got %v, want ErrInvalidLogLevel", err)
	}
}
