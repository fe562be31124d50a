package main

import (
	"fmt"
	"strconv"

	"github.com/bitfsorg/vanitypay-go/funds"
	"github.com/bitfsorg/vanitypay-go/gateway"
	"github.com/bitfsorg/vanitypay-go/identity"
	"github.com/bitfsorg/vanitypay-go/revshare"
	"github.com/spf13/cobra"
)

func initCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the ledger with admin, registry and maintainer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGateway(cmd, func(a *app, gw *gateway.Gateway) error {
				ctx := cmd.Context()
				caller, err := a.caller()
				if err != nil {
					return err
				}
				admin := caller
				if a.cfg.Admin != "" {
					if admin, err = identity.Parse(a.cfg.Admin); err != nil {
						return err
					}
				}
				var maintainer identity.ID
				if a.cfg.Maintainer != "" {
					if maintainer, err = identity.Parse(a.cfg.Maintainer); err != nil {
						return err
					}
				}
				ref, err := a.registryRef()
				if err != nil {
					return err
				}
				if err := gw.Init(ctx, admin, ref, maintainer); err != nil {
					return err
				}

				// The configured percent can only be applied by the admin.
				p, err := a.cfg.Percent()
				if err != nil {
					return err
				}
				switch {
				case p == 0:
				case admin == caller:
					if err := gw.UpdateOwnerRevDisPercent(ctx, gateway.Call{Caller: caller}, uint64(p)); err != nil {
						return err
					}
				default:
					a.logger.Warn("ownerrevdispercent not applied: caller is not the admin", "percent", p, "admin", admin)
					fmt.Fprintf(cmd.OutOrStdout(),
						"warning: ownerrevdispercent %d not applied; run \"set-percent %d\" with the admin key\n", p, p)
				}
				return printSettings(cmd, a, gw)
			})
		},
	}
}

func settingsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "settings",
		Short: "Show the ledger settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGateway(cmd, func(a *app, gw *gateway.Gateway) error {
				return printSettings(cmd, a, gw)
			})
		},
	}
}

func printSettings(cmd *cobra.Command, a *app, gw *gateway.Gateway) error {
	st, err := gw.Settings(cmd.Context())
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "admin:              %s\n", st.Admin)
	fmt.Fprintf(w, "maintainer:         %s\n", st.Maintainer)
	fmt.Fprintf(w, "registry:           %s\n", st.Registry)
	fmt.Fprintf(w, "ownerRevDisPercent: %d (%s)\n", st.OwnerRevDisPercent, revshare.Percent(st.OwnerRevDisPercent))
	fmt.Fprintf(w, "locked:             %d (%s BSV)\n", st.Locked, funds.FormatBSV(st.Locked))
	owner, rest, err := gw.OwnerShareQuote(cmd.Context(), st.Locked)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "ownerShare:         %s BSV owner / %s BSV rest\n", funds.FormatBSV(owner), funds.FormatBSV(rest))
	return nil
}

// adminCommand builds a command that runs fn with the caller's identity.
func adminCommand(use, short string, nargs int, fn func(cmd *cobra.Command, gw *gateway.Gateway, call gateway.Call, args []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGateway(cmd, func(a *app, gw *gateway.Gateway) error {
				caller, err := a.caller()
				if err != nil {
					return err
				}
				return fn(cmd, gw, gateway.Call{Caller: caller}, args)
			})
		},
	}
}

func setMaintainerCommand() *cobra.Command {
	return adminCommand("set-maintainer <id|address|key>", "Replace the maintainer", 1,
		func(cmd *cobra.Command, gw *gateway.Gateway, call gateway.Call, args []string) error {
			id, err := appFrom(cmd).parseID(args[0])
			if err != nil {
				return err
			}
			return gw.UpdateMaintainer(cmd.Context(), call, id)
		})
}

func setPercentCommand() *cobra.Command {
	return adminCommand("set-percent <basis-points>", "Set the owner revenue percent (0-10000)", 1,
		func(cmd *cobra.Command, gw *gateway.Gateway, call gateway.Call, args []string) error {
			p, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid percent %q: %w", args[0], err)
			}
			if err := gw.UpdateOwnerRevDisPercent(cmd.Context(), call, p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ownerRevDisPercent: %s\n", revshare.Percent(uint16(p)))
			return nil
		})
}

func setRegistryCommand() *cobra.Command {
	return adminCommand("set-registry <ref>", "Replace the registry reference", 1,
		func(cmd *cobra.Command, gw *gateway.Gateway, call gateway.Call, args []string) error {
			return gw.UpdateRegistryAddress(cmd.Context(), call, args[0])
		})
}

func transferAdminCommand() *cobra.Command {
	return adminCommand("transfer-admin <id|address|key>", "Hand the admin role to another identity", 1,
		func(cmd *cobra.Command, gw *gateway.Gateway, call gateway.Call, args []string) error {
			id, err := appFrom(cmd).parseID(args[0])
			if err != nil {
				return err
			}
			return gw.TransferAdmin(cmd.Context(), call, id)
		})
}

func withdrawCommand() *cobra.Command {
	return adminCommand("withdraw", "Send the locked balance to the admin", 0,
		func(cmd *cobra.Command, gw *gateway.Gateway, call gateway.Call, args []string) error {
			r, err := gw.Withdraw(cmd.Context(), call)
			if err != nil {
				return err
			}
			if r.Amount == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing to withdraw")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "withdrew %s BSV to %s (txid %s)\n", funds.FormatBSV(r.Amount), r.To, r.Reference)
			return nil
		})
}
