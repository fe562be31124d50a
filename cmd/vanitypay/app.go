package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/bitfsorg/vanitypay-go/config"
	"github.com/bitfsorg/vanitypay-go/funds"
	"github.com/bitfsorg/vanitypay-go/gateway"
	"github.com/bitfsorg/vanitypay-go/identity"
	"github.com/bitfsorg/vanitypay-go/ledger"
	"github.com/bitfsorg/vanitypay-go/network"
	"github.com/bitfsorg/vanitypay-go/registry"
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/spf13/cobra"
)

// Environment variables overlaid on the configuration file.
const (
	envRegistry   = "VANITYPAY_REGISTRY"
	envMaintainer = "VANITYPAY_MAINTAINER"
	envPercent    = "VANITYPAY_OWNER_REVDIS_PERCENT"
	envPassword   = "VANITYPAY_KEY_PASSWORD"
)

// getenv is replaced in tests.
var getenv = os.Getenv

var globalFlags = struct {
	dataDir  string
	config   string
	debug    bool
	key      string
	password string
}{}

// app is the state shared by subcommands after configuration is loaded.
type app struct {
	cfg    config.Config
	logger *slog.Logger
	closer io.Closer
	getenv func(string) string
}

type appKey struct{}

func appFrom(cmd *cobra.Command) *app {
	a, _ := cmd.Context().Value(appKey{}).(*app)
	return a
}

// loadApp reads the configuration file (defaults when absent), applies
// flag and environment overrides and validates the result.
func loadApp(getenv func(string) string) (*app, error) {
	dataDir := globalFlags.dataDir
	if dataDir == "" {
		dataDir = config.DefaultDataDir()
	}
	path := globalFlags.config
	if path == "" {
		path = config.ConfigPath(dataDir)
	}

	cfg, err := config.LoadConfig(path)
	if err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return nil, err
	}
	if globalFlags.dataDir != "" {
		cfg.DataDir = globalFlags.dataDir
	}
	applyEnv(&cfg, getenv)
	if globalFlags.debug {
		cfg.LogLevel = "debug"
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}

	logger, closer, err := cfg.Logger()
	if err != nil {
		return nil, err
	}
	logger = logger.With("component", programName)
	return &app{cfg: cfg, logger: logger, closer: closer, getenv: getenv}, nil
}

func applyEnv(cfg *config.Config, getenv func(string) string) {
	for _, o := range []struct {
		env string
		dst *string
	}{
		{envRegistry, &cfg.Registry},
		{envMaintainer, &cfg.Maintainer},
		{envPercent, &cfg.OwnerRevDisPercent},
		{network.EnvRPCUser, &cfg.RPCUser},
		{network.EnvRPCPass, &cfg.RPCPass},
		{network.EnvRPCURL, &cfg.WalletURL},
	} {
		if v := strings.TrimSpace(getenv(o.env)); v != "" {
			*o.dst = v
		}
	}
}

func (a *app) close() {
	if a.closer != nil {
		_ = a.closer.Close()
	}
}

// password returns the key file password from the flag or the environment.
func (a *app) password() (string, error) {
	if globalFlags.password != "" {
		return globalFlags.password, nil
	}
	if v := a.getenv(envPassword); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("key password required (--password or %s)", envPassword)
}

// callerKey loads the private key selected by --key.
func (a *app) callerKey() (*ec.PrivateKey, error) {
	pw, err := a.password()
	if err != nil {
		return nil, err
	}
	return identity.ReadKeyFile(a.cfg.KeyPath(globalFlags.key), pw)
}

// caller returns the identity of the key selected by --key.
func (a *app) caller() (identity.ID, error) {
	priv, err := a.callerKey()
	if err != nil {
		return identity.Zero, err
	}
	return identity.FromPublicKey(priv.PubKey())
}

// registryRef returns the configured registry reference, discovering it by
// DNS SRV when a registry domain is configured.
func (a *app) registryRef() (string, error) {
	if a.cfg.RegistryDomain == "" {
		return a.cfg.Registry, nil
	}
	var resolver registry.DNSResolver = registry.DefaultDNSResolver
	if a.cfg.DNSUpstream != "" {
		resolver = registry.NewDNSSECResolver(a.cfg.DNSUpstream)
	}
	ref, err := registry.DiscoverEndpoint(a.cfg.RegistryDomain, resolver)
	if err != nil {
		return "", err
	}
	a.logger.Info("registry discovered", "domain", a.cfg.RegistryDomain, "endpoint", ref)
	return ref, nil
}

// walletRPC resolves the node wallet endpoint.
func (a *app) walletRPC() (*network.RPCClient, error) {
	env := map[string]string{
		network.EnvRPCURL:  a.getenv(network.EnvRPCURL),
		network.EnvRPCUser: a.getenv(network.EnvRPCUser),
		network.EnvRPCPass: a.getenv(network.EnvRPCPass),
	}
	rc, err := network.ResolveConfig(&network.RPCConfig{
		URL:      a.cfg.WalletURL,
		User:     a.cfg.RPCUser,
		Password: a.cfg.RPCPass,
	}, env, a.cfg.Network)
	if err != nil {
		return nil, err
	}
	return network.NewRPCClient(*rc), nil
}

// openGateway opens the ledger database and builds a gateway over it. The
// wallet connection is resolved on first transfer.
func (a *app) openGateway() (*gateway.Gateway, ledger.Store, error) {
	store, err := ledger.OpenBoltStore(a.cfg.LedgerPath())
	if err != nil {
		return nil, nil, err
	}

	dialer := &registry.RPCDialer{User: a.cfg.RPCUser, Password: a.cfg.RPCPass}
	transfer := funds.TransfererFunc(func(ctx context.Context, to identity.ID, amount uint64) (string, error) {
		rpc, err := a.walletRPC()
		if err != nil {
			return "", err
		}
		return funds.NewNodeTransferer(rpc, a.cfg.Mainnet()).Transfer(ctx, to, amount)
	})

	gw, err := gateway.New(store, dialer, transfer, gateway.WithLogger(a.logger))
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return gw, store, nil
}

// withGateway runs fn against an open gateway and closes the ledger afterwards.
func withGateway(cmd *cobra.Command, fn func(a *app, gw *gateway.Gateway) error) error {
	a := appFrom(cmd)
	gw, store, err := a.openGateway()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	return fn(a, gw)
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           programName,
		Short:         "Vanity URL access ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&globalFlags.dataDir, "datadir", "", "data directory (default ~/.vanitypay)")
	pf.StringVar(&globalFlags.config, "config", "", "path to config file (default <datadir>/config)")
	pf.BoolVarP(&globalFlags.debug, "debug", "D", false, "enable debug logging")
	pf.StringVar(&globalFlags.key, "key", "admin", "name of the key file used as caller")
	pf.StringVar(&globalFlags.password, "password", "", "key file password (or "+envPassword+")")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(getenv)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		cmd.SetContext(context.WithValue(ctx, appKey{}, a))
		return nil
	}
	root.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if a := appFrom(cmd); a != nil {
			a.close()
		}
	}

	root.AddCommand(
		keygenCommand(),
		initCommand(),
		settingsCommand(),
		setMaintainerCommand(),
		setPercentCommand(),
		setRegistryCommand(),
		transferAdminCommand(),
		withdrawCommand(),
		checkCommand(),
		recordsCommand(),
		payForCommand(),
		donateCommand(),
		donateForCommand(),
		serveCommand(),
	)
	return root
}
