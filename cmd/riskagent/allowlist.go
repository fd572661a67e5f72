package main

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"token-risk-agent/internal/domain"
)

func (rt *cli) allowListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "allowlist",
		Short: "Manage established tokens that skip holder and incident checks",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List allow-listed tokens",
		Args:  cobra.NoArgs,
		RunE: rt.withAgent(func(cmd *cobra.Command, args []string) error {
			list, err := rt.agent.EstablishedTokens(cmd.Context())
			if err != nil {
				return err
			}
			for _, t := range list {
				printEstablished(cmd.OutOrStdout(), t)
			}
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <token_address>",
		Short: "Show one allow-list entry",
		Args:  cobra.ExactArgs(1),
		RunE: rt.withAgent(func(cmd *cobra.Command, args []string) error {
			t, err := rt.agent.EstablishedToken(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printEstablished(cmd.OutOrStdout(), t)
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <token_address> [symbol]",
		Short: "Allow-list a token",
		Args:  cobra.RangeArgs(1, 2),
		RunE: rt.withAgent(func(cmd *cobra.Command, args []string) error {
			symbol := ""
			if len(args) == 2 {
				symbol = args[1]
			}
			t, err := rt.agent.Establish(cmd.Context(), args[0], symbol)
			if err != nil {
				return err
			}
			printEstablished(cmd.OutOrStdout(), t)
			if !rt.durableAllowList {
				fmt.Fprintln(cmd.ErrOrStderr(), "note: POSTGRES_DSN is not set, the entry lasts for this process only")
			}
			return nil
		}),
	})
	return cmd
}

func printEstablished(w io.Writer, t domain.EstablishedToken) {
	added := "built-in"
	if t.AddedAt > 0 {
		added = "added " + humanize.Time(time.UnixMilli(t.AddedAt))
	}
	fmt.Fprintf(w, "%-8s %s  (%s)\n", t.Symbol, t.Mint, added)
}
