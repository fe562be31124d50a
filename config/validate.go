// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/bitfsorg/vanitypay-go/identity"
	"github.com/bitfsorg/vanitypay-go/revshare"
)

// validLogLevels lists the accepted log level strings.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// ValidateConfig checks that all configuration values are within acceptable
// ranges and returns the first error encountered, or nil if valid.
func ValidateConfig(cfg Config) error {
	if cfg.DataDir == "" {
		return ErrEmptyDataDir
	}

	if cfg.Network != "mainnet" && cfg.Network != "testnet" && cfg.Network != "regtest" {
		return ErrInvalidNetwork
	}

	if err := validateAddr(cfg.ListenAddr); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidListenAddr, err)
	}

	if !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		return ErrInvalidLogLevel
	}

	for _, f := range []struct{ key, value string }{
		{"admin", cfg.Admin},
		{"maintainer", cfg.Maintainer},
		{"payto", cfg.PayTo},
	} {
		if f.value == "" {
			continue
		}
		if _, err := identity.Parse(f.value); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidIdentity, f.key, err)
		}
	}

	if _, err := cfg.Percent(); err != nil {
		return err
	}

	return nil
}

// Percent parses OwnerRevDisPercent. An empty value is 0.
func (c Config) Percent() (uint16, error) {
	if c.OwnerRevDisPercent == "" {
		return 0, nil
	}
	p, err := strconv.ParseUint(c.OwnerRevDisPercent, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidPercent, err)
	}
	if err := revshare.ValidatePercent(p); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidPercent, err)
	}
	return uint16(p), nil
}

// Mainnet reports whether addresses are rendered for mainnet.
func (c Config) Mainnet() bool { return c.Network == "mainnet" }

// validateAddr checks that addr is a valid host:port address.
func validateAddr(addr string) error {
	_, _, err := net.SplitHostPort(addr)
	return err
}
