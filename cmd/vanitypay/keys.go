package main

import (
	"fmt"

	"github.com/bitfsorg/vanitypay-go/identity"
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/spf13/cobra"
)

func keygenCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "keygen <name>",
		Short: "Generate an encrypted caller key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			pw, err := a.password()
			if err != nil {
				return err
			}
			path := a.cfg.KeyPath(args[0])
			if !force {
				if _, err := identity.ReadKeyFile(path, pw); err == nil {
					return fmt.Errorf("key %q already exists (use --force to replace)", args[0])
				}
			}

			priv, err := ec.NewPrivateKey()
			if err != nil {
				return fmt.Errorf("generate key: %w", err)
			}
			if err := identity.WriteKeyFile(path, priv, pw); err != nil {
				return err
			}
			id, err := identity.FromPublicKey(priv.PubKey())
			if err != nil {
				return err
			}
			addr, err := id.Address(a.cfg.Mainnet())
			if err != nil {
				return err
			}
			a.logger.Info("key generated", "name", args[0], "id", id)
			fmt.Fprintf(cmd.OutOrStdout(), "id:      %s\naddress: %s\nfile:    %s\n", id, addr, path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing key")
	return cmd
}

// parseID accepts a hex identity, an address or the name of a local key.
func (a *app) parseID(s string) (identity.ID, error) {
	if id, err := identity.Parse(s); err == nil {
		return id, nil
	}
	pw, err := a.password()
	if err != nil {
		return identity.Zero, fmt.Errorf("%q is not an identity or address", s)
	}
	priv, err := identity.ReadKeyFile(a.cfg.KeyPath(s), pw)
	if err != nil {
		return identity.Zero, fmt.Errorf("%q is not an identity, address or readable key: %w", s, err)
	}
	return identity.FromPublicKey(priv.PubKey())
}
