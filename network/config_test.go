package network

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetworkPresets(t *testing.T) {
	for _, network := range []string{"regtest", "testnet"} {
		t.Run(network, func(t *testing.T) {
			preset, ok := NetworkPresets[network]
			require.True(t, ok, "preset should exist for %s", network)
			assert.Equal(t, "http://localhost:18332", preset.URL)
			assert.Equal(t, "vanitypay", preset.User)
		})
	}
}

func TestMainnetHasNoPreset(t *testing.T) {
	_, ok := NetworkPresets["mainnet"]
	assert.False(t, ok, "mainnet should not have a default preset")
}

func TestResolveConfigFlagsOverrideAll(t *testing.T) {
	flags := &RPCConfig{URL: "http://custom:9999", User: "me", Password: "secret", Timeout: time.Second}
	env := map[string]string{EnvRPCURL: "http://env:1"}
	cfg, err := ResolveConfig(flags, env, "regtest")
	require.NoError(t, err)
	assert.Equal(t, "http://custom:9999", cfg.URL)
	assert.Equal(t, "me", cfg.User)
	assert.Equal(t, "secret", cfg.Password)
	assert.Equal(t, time.Second, cfg.Timeout)
	assert.Equal(t, "regtest", cfg.Network)
}

func TestResolveConfigEnvOverridesPreset(t *testing.T) {
	env := map[string]string{
		EnvRPCURL:  "http://env-registry:18332",
		EnvRPCUser: "envuser",
	}
	cfg, err := ResolveConfig(nil, env, "regtest")
	require.NoError(t, err)
	assert.Equal(t, "http://env-registry:18332", cfg.URL)
	assert.Equal(t, "envuser", cfg.User)
	assert.Equal(t, "vanitypay", cfg.Password)
}

func TestResolveConfigMainnetRequiresExplicit(t *testing.T) {
	_, err := ResolveConfig(nil, nil, "mainnet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mainnet")
}

func TestResolveConfigMainnetExplicit(t *testing.T) {
	cfg, err := ResolveConfig(&RPCConfig{URL: "https://registry.example"}, nil, "mainnet")
	require.NoError(t, err)
	assert.Equal(t, "https://registry.example", cfg.URL)
	assert.Empty(t, cfg.User)
}
