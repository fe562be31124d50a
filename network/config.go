package network

import (
	"fmt"
	"time"
)

// RPCConfig holds the connection parameters for a JSON-RPC endpoint.
type RPCConfig struct {
	URL      string        `json:"url"`
	User     string        `json:"user"`
	Password string        `json:"password"`
	Network  string        `json:"network"`
	Timeout  time.Duration `json:"timeout"`
}

// Environment variables consulted by ResolveConfig.
const (
	EnvRPCURL  = "VANITYPAY_RPC_URL"
	EnvRPCUser = "VANITYPAY_RPC_USER"
	EnvRPCPass = "VANITYPAY_RPC_PASS"
)

// NetworkPresets contains default RPC configurations for local networks.
// Mainnet is intentionally omitted to require explicit configuration.
var NetworkPresets = map[string]RPCConfig{
	"regtest": {URL: "http://localhost:18332", User: "vanitypay", Password: "vanitypay"},
	"testnet": {URL: "http://localhost:18332", User: "vanitypay", Password: "vanitypay"},
}

// ResolveConfig merges RPC configuration with decreasing priority:
//  1. explicit flags
//  2. environment (VANITYPAY_RPC_URL, VANITYPAY_RPC_USER, VANITYPAY_RPC_PASS)
//  3. network presets (regtest/testnet only)
func ResolveConfig(flags *RPCConfig, env map[string]string, network string) (*RPCConfig, error) {
	result := RPCConfig{Network: network}

	if preset, ok := NetworkPresets[network]; ok {
		result = preset
		result.Network = network
	}

	if env != nil {
		if v, ok := env[EnvRPCURL]; ok && v != "" {
			result.URL = v
		}
		if v, ok := env[EnvRPCUser]; ok && v != "" {
			result.User = v
		}
		if v, ok := env[EnvRPCPass]; ok && v != "" {
			result.Password = v
		}
	}

	if flags != nil {
		if flags.URL != "" {
			result.URL = flags.URL
		}
		if flags.User != "" {
			result.User = flags.User
		}
		if flags.Password != "" {
			result.Password = flags.Password
		}
		if flags.Timeout > 0 {
			result.Timeout = flags.Timeout
		}
	}

	if result.URL == "" {
		return nil, fmt.Errorf("network: %s requires explicit RPC configuration (set --rpc-url, %s, or config file)", network, EnvRPCURL)
	}

	return &result, nil
}
