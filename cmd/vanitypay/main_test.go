package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/bitfsorg/vanitypay-go/config"
	"github.com/bitfsorg/vanitypay-go/gateway"
	"github.com/bitfsorg/vanitypay-go/identity"
	"github.com/bitfsorg/vanitypay-go/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cli struct {
	t   *testing.T
	dir string
	env map[string]string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	c := &cli{t: t, dir: t.TempDir(), env: map[string]string{}}
	prev := getenv
	getenv = func(k string) string { return c.env[k] }
	t.Cleanup(func() { getenv = prev })
	return c
}

func (c *cli) run(args ...string) (string, error) {
	c.t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--datadir", c.dir, "--password", "pw"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	require.NoError(c.t, err, "args %v: %s", args, out)
	return out
}

// keygen creates a key and returns its hex identity.
func (c *cli) keygen(name string) string {
	c.t.Helper()
	out := c.mustRun("keygen", name)
	for _, line := range strings.Split(out, "\n") {
		if f := strings.Fields(line); len(f) == 2 && f[0] == "id:" {
			return f[1]
		}
	}
	c.t.Fatalf("no id in keygen output: %q", out)
	return ""
}

// ---------------------------------------------------------------------------
// keygen
// ---------------------------------------------------------------------------

func TestKeygen(t *testing.T) {
	c := newCLI(t)
	id := c.keygen("admin")
	assert.Len(t, id, 40)
	assert.FileExists(t, config.Config{DataDir: c.dir}.KeyPath("admin"))

	_, err := c.run("keygen", "admin")
	assert.ErrorContains(t, err, "already exists")

	assert.NotEqual(t, id, c.keygen("admin"+"2"))
	c.mustRun("keygen", "admin", "--force")
}

func TestKeygen_NoPassword(t *testing.T) {
	c := newCLI(t)
	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--datadir", c.dir, "keygen", "admin"})
	assert.ErrorContains(t, cmd.Execute(), envPassword)
}

// ---------------------------------------------------------------------------
// Administration
// ---------------------------------------------------------------------------

func TestInitAndSettings(t *testing.T) {
	c := newCLI(t)
	adminID := c.keygen("admin")
	c.env[envRegistry] = "http://registry.example:8332"
	c.env[envPercent] = "6000"

	_, err := c.run("settings")
	assert.ErrorIs(t, err, gateway.ErrNotInitialized)

	out := c.mustRun("init")
	assert.Contains(t, out, "admin:              "+adminID)
	assert.Contains(t, out, "registry:           http://registry.example:8332")
	assert.Contains(t, out, "60.00%")

	_, err = c.run("init")
	assert.ErrorIs(t, err, gateway.ErrAlreadyInitialized)

	out = c.mustRun("settings")
	assert.Contains(t, out, "locked:             0 (0.00000000 BSV)")
}

func TestAdminCommands(t *testing.T) {
	c := newCLI(t)
	c.keygen("admin")
	maintID := c.keygen("maint")
	c.mustRun("init")

	c.mustRun("set-maintainer", "maint")
	c.mustRun("set-registry", "http://other:8332")
	out := c.mustRun("set-percent", "2500")
	assert.Contains(t, out, "25.00%")

	out = c.mustRun("settings")
	assert.Contains(t, out, "maintainer:         "+maintID)
	assert.Contains(t, out, "registry:           http://other:8332")

	_, err := c.run("set-percent", "10001")
	assert.ErrorIs(t, err, gateway.ErrPercentExceeded)

	_, err = c.run("--key", "maint", "set-percent", "1")
	assert.ErrorIs(t, err, gateway.ErrNotAdmin)

	out = c.mustRun("withdraw")
	assert.Contains(t, out, "nothing to withdraw")

	c.mustRun("transfer-admin", maintID)
	_, err = c.run("set-percent", "1")
	assert.ErrorIs(t, err, gateway.ErrNotAdmin)
	c.mustRun("--key", "maint", "set-percent", "1")
}

func TestCheckAndRecords(t *testing.T) {
	c := newCLI(t)
	adminID := c.keygen("admin")
	c.mustRun("init")

	out := c.mustRun("check", adminID, "all.country", "videos/")
	assert.Equal(t, "false\n", out)

	out = c.mustRun("records")
	assert.Empty(t, out)

	_, err := c.run("check", "nobody", "all.country", "videos/")
	assert.Error(t, err)
}

func TestPayFor_NotMaintainer(t *testing.T) {
	c := newCLI(t)
	adminID := c.keygen("admin")
	c.mustRun("init")

	_, err := c.run("pay-for", adminID, "all.country", "videos/", "--amount", "100")
	assert.ErrorIs(t, err, gateway.ErrNotMaintainer)

	_, err = c.run("pay-for", adminID, "all.country", "videos/", "--amount", "100", "--paid-at", "yesterday")
	assert.ErrorContains(t, err, "--paid-at")
}

// node answers registry and wallet JSON-RPC calls for one name.
type node struct {
	mu    sync.Mutex
	owner identity.ID
	sent  []string
}

func newNode(t *testing.T, owner identity.ID) (*node, *httptest.Server) {
	t.Helper()
	n := &node{owner: owner}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     int64         `json:"id"`
			Method string        `json:"method"`
			Params []interface{} `json:"params"`
		}
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()
		if err := dec.Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var result interface{}
		switch req.Method {
		case "priceof":
			result = 100_000_000
		case "ownerof":
			result = n.owner.String()
		case "nameownerupdatedat":
			result = 1_699_999_999
		case "aliasupdatedat":
			result = 1_700_000_000
		case "sendtoaddress":
			n.mu.Lock()
			n.sent = append(n.sent, req.Params[0].(string)+" "+string(req.Params[1].(json.Number)))
			n.mu.Unlock()
			result = "txid-1"
		default:
			http.Error(w, "unknown method", http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"id": req.ID, "result": result, "error": nil})
	}))
	t.Cleanup(srv.Close)
	return n, srv
}

func (n *node) transfers() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.sent...)
}

func TestDonate(t *testing.T) {
	c := newCLI(t)
	c.keygen("admin")
	owner := identity.ID{0x04}
	n, srv := newNode(t, owner)
	c.env[envRegistry] = srv.URL
	c.env[network.EnvRPCURL] = srv.URL
	c.mustRun("init")

	out := c.mustRun("donate", "all.country", "videos/", "--amount", "5000")
	assert.Contains(t, out, "donated 0.00005000 BSV to "+owner.String())
	assert.Contains(t, out, "txid-1")

	addr, err := owner.Address(true)
	require.NoError(t, err)
	assert.Equal(t, []string{addr + " 0.00005000"}, n.transfers())

	// Donations never reach the locked balance.
	out = c.mustRun("settings")
	assert.Contains(t, out, "locked:             0 ")
}

func TestPayForThenWithdraw(t *testing.T) {
	c := newCLI(t)
	adminID := c.keygen("admin")
	n, srv := newNode(t, identity.ID{0x04})
	c.env[envRegistry] = srv.URL
	c.env[network.EnvRPCURL] = srv.URL
	c.env[envPercent] = "6000"
	c.mustRun("init")
	c.mustRun("set-maintainer", "admin")

	out := c.mustRun("pay-for", adminID, "all.country", "videos/", "--amount", "100000000", "--reference", "ext-1")
	assert.Contains(t, out, "recorded 1.00000000 BSV for "+adminID)

	out = c.mustRun("check", adminID, "all.country", "videos/")
	assert.Equal(t, "true\n", out)

	out = c.mustRun("records")
	assert.Contains(t, out, adminID+" all.country videos/ 1.00000000 BSV")
	assert.Contains(t, out, "maintainer ext-1")

	out = c.mustRun("settings")
	assert.Contains(t, out, "locked:             100000000 (1.00000000 BSV)")
	assert.Contains(t, out, "ownerShare:         0.60000000 BSV owner / 0.40000000 BSV rest")

	_, err := c.run("pay-for", adminID, "all.country", "videos/", "--amount", "100000000")
	assert.ErrorIs(t, err, gateway.ErrAlreadyPaid)

	out = c.mustRun("withdraw")
	assert.Contains(t, out, "withdrew 1.00000000 BSV")
	assert.Len(t, n.transfers(), 1)

	out = c.mustRun("settings")
	assert.Contains(t, out, "locked:             0 ")
}

func TestInit_PercentNeedsAdmin(t *testing.T) {
	c := newCLI(t)
	c.keygen("admin")
	other := identity.ID{0x09}

	cfg := config.DefaultConfig()
	cfg.DataDir = c.dir
	cfg.Admin = other.String()
	cfg.OwnerRevDisPercent = "6000"
	require.NoError(t, config.SaveConfig(config.ConfigPath(c.dir), cfg))

	out := c.mustRun("init")
	assert.Contains(t, out, "warning: ownerrevdispercent 6000 not applied")
	assert.Contains(t, out, "admin:              "+other.String())
	assert.Contains(t, out, "ownerRevDisPercent: 0 (0.00%)")
}

// ---------------------------------------------------------------------------
// Configuration
// ---------------------------------------------------------------------------

func TestApplyEnv(t *testing.T) {
	cfg := config.DefaultConfig()
	env := map[string]string{
		envRegistry:   " http://r:1 ",
		envMaintainer: "00112233445566778899aabbccddeeff00112233",
		envPercent:    "100",
	}
	applyEnv(&cfg, func(k string) string { return env[k] })

	assert.Equal(t, "http://r:1", cfg.Registry)
	assert.Equal(t, env[envMaintainer], cfg.Maintainer)
	assert.Equal(t, "100", cfg.OwnerRevDisPercent)
	assert.Empty(t, cfg.RPCUser)
}

func TestLoadApp_InvalidEnv(t *testing.T) {
	c := newCLI(t)
	c.env[envPercent] = "20000"
	_, err := c.run("settings")
	assert.ErrorIs(t, err, config.ErrInvalidPercent)
}

func TestLoadApp_ConfigFile(t *testing.T) {
	c := newCLI(t)
	cfg := config.DefaultConfig()
	cfg.DataDir = c.dir
	cfg.Network = "regtest"
	cfg.Registry = "http://from-file:8332"
	require.NoError(t, config.SaveConfig(config.ConfigPath(c.dir), cfg))

	c.keygen("admin")
	out := c.mustRun("init")
	assert.Contains(t, out, "http://from-file:8332")
}
