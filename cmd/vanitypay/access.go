package main

import (
	"fmt"
	"time"

	"github.com/bitfsorg/vanitypay-go/funds"
	"github.com/bitfsorg/vanitypay-go/gateway"
	"github.com/bitfsorg/vanitypay-go/ledger"
	"github.com/spf13/cobra"
)

func checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <payer> <name> <alias>",
		Short: "Report whether a payer has paid for an alias",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGateway(cmd, func(a *app, gw *gateway.Gateway) error {
				payer, err := a.parseID(args[0])
				if err != nil {
					return err
				}
				ok, err := gw.CheckAccess(cmd.Context(), payer, args[1], args[2])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), ok)
				return nil
			})
		},
	}
}

func recordsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "records",
		Short: "List access records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGateway(cmd, func(a *app, gw *gateway.Gateway) error {
				w := cmd.OutOrStdout()
				return gw.Records(cmd.Context(), func(k ledger.AccessKey, r ledger.AccessRecord) error {
					via := "direct"
					if r.Delegated {
						via = "maintainer"
					}
					_, err := fmt.Fprintf(w, "%s %s %s %s BSV %s %s %s\n",
						k.Payer, k.Name, k.Alias, funds.FormatBSV(r.Amount),
						r.PaidAt.UTC().Format(time.RFC3339), via, r.Reference)
					return err
				})
			})
		},
	}
}

func payForCommand() *cobra.Command {
	var (
		amount    uint64
		paidAt    string
		reference string
	)
	cmd := adminCommand("pay-for <payer> <name> <alias>", "Record a payment received off-ledger (maintainer only)", 3,
		func(cmd *cobra.Command, gw *gateway.Gateway, call gateway.Call, args []string) error {
			payer, err := appFrom(cmd).parseID(args[0])
			if err != nil {
				return err
			}
			at := gw.Now()
			if paidAt != "" {
				if at, err = time.Parse(time.RFC3339, paidAt); err != nil {
					return fmt.Errorf("invalid --paid-at: %w", err)
				}
			}
			call.Value = amount
			call.Reference = reference
			rec, err := gw.PayForAccessFor(cmd.Context(), call, payer, args[1], args[2], at)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "recorded %s BSV for %s at %s\n",
				funds.FormatBSV(rec.Amount), payer, rec.PaidAt.UTC().Format(time.RFC3339))
			return nil
		})
	f := cmd.Flags()
	f.Uint64Var(&amount, "amount", 0, "payment amount in satoshis")
	f.StringVar(&paidAt, "paid-at", "", "payment time, RFC 3339 (default now)")
	f.StringVar(&reference, "reference", "", "external payment reference, rejected if reused")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func donateCommand() *cobra.Command {
	var amount uint64
	cmd := adminCommand("donate <name> <alias>", "Send a donation from the node wallet to the name owner", 2,
		func(cmd *cobra.Command, gw *gateway.Gateway, call gateway.Call, args []string) error {
			call.Value = amount
			r, err := gw.SendDonation(cmd.Context(), call, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "donated %s BSV to %s (txid %s)\n", funds.FormatBSV(r.Amount), r.To, r.Reference)
			return nil
		})
	cmd.Flags().Uint64Var(&amount, "amount", 0, "donation amount in satoshis")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func donateForCommand() *cobra.Command {
	var amount uint64
	cmd := adminCommand("donate-for <payer> <name> <alias>", "Forward a donation to the name owner (maintainer only)", 3,
		func(cmd *cobra.Command, gw *gateway.Gateway, call gateway.Call, args []string) error {
			payer, err := appFrom(cmd).parseID(args[0])
			if err != nil {
				return err
			}
			call.Value = amount
			r, err := gw.SendDonationFor(cmd.Context(), call, payer, args[1], args[2])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "donated %s BSV to %s (txid %s)\n", funds.FormatBSV(r.Amount), r.To, r.Reference)
			return nil
		})
	cmd.Flags().Uint64Var(&amount, "amount", 0, "donation amount in satoshis")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}
