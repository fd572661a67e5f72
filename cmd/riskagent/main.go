// Command riskagent is the interactive token risk assistant.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"token-risk-agent/internal/agent"
	"token-risk-agent/internal/config"
	"token-risk-agent/internal/logging"
	"token-risk-agent/internal/reporting"
	"token-risk-agent/internal/repl"
)

type cli struct {
	envFile  string
	logLevel string

	agent            *agent.Agent
	logger           *zap.Logger
	cleanup          func()
	durableAllowList bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt := &cli{cleanup: func() {}}
	err := rt.newRootCommand().ExecuteContext(ctx)
	rt.cleanup()
	if rt.logger != nil {
		_ = rt.logger.Sync()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func (rt *cli) newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "riskagent",
		Short:         "DeFi token risk assessment for Solana",
		Long:          "Analyzes Solana tokens for rug-pull risk using security, holder, liquidity, audit and incident data.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          rt.withAgent(rt.runREPL),
	}
	root.PersistentFlags().StringVar(&rt.envFile, "env-file", ".env", "Path to a .env file")
	root.PersistentFlags().StringVar(&rt.logLevel, "log-level", "", "Override LOG_LEVEL (debug, info, warn, error)")

	root.AddCommand(&cobra.Command{
		Use:   "repl",
		Short: "Start the interactive prompt (default)",
		Args:  cobra.NoArgs,
		RunE:  rt.withAgent(rt.runREPL),
	})
	root.AddCommand(rt.verbCommand(agent.VerbAnalyze, "Full risk analysis for a token address"))
	root.AddCommand(rt.verbCommand(agent.VerbQuick, "Quick lookup of token info"))
	root.AddCommand(rt.verbCommand(agent.VerbHolders, "Check holder distribution"))
	root.AddCommand(rt.trendingCommand())
	root.AddCommand(rt.allowListCommand())
	return root
}

// withAgent loads configuration and builds the agent before run. Only
// commands that talk to the agent use it, so help and completion work
// without credentials.
func (rt *cli) withAgent(run func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if rt.agent == nil {
			if err := rt.setup(cmd.Context()); err != nil {
				return err
			}
		}
		return run(cmd, args)
	}
}

func (rt *cli) runREPL(cmd *cobra.Command, _ []string) error {
	return repl.Run(cmd.Context(), rt.agent, cmd.InOrStdin(), cmd.OutOrStdout())
}

func (rt *cli) setup(ctx context.Context) error {
	cfg, err := config.Load(rt.envFile)
	if err != nil {
		return err
	}
	level := cfg.Logger.Level
	if rt.logLevel != "" {
		level = rt.logLevel
	}
	logger, err := logging.New(level, cfg.Logger.Format)
	if err != nil {
		return err
	}
	rt.logger = logger
	rt.durableAllowList = cfg.Postgres.DSN != ""

	a, cleanup, err := agent.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	rt.agent = a
	rt.cleanup = cleanup
	return nil
}

// verbCommand runs one address verb through the same dispatcher as the prompt.
func (rt *cli) verbCommand(verb, short string) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <token_address>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: rt.withAgent(func(cmd *cobra.Command, args []string) error {
			reply := rt.agent.Handle(cmd.Context(), verb+" "+args[0])
			fmt.Fprintln(cmd.OutOrStdout(), reply.Text)
			return reply.Err
		}),
	}
}

func (rt *cli) trendingCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   agent.VerbTrending,
		Short: "Show trending tokens on Solana",
		Args:  cobra.NoArgs,
		RunE: rt.withAgent(func(cmd *cobra.Command, args []string) error {
			list, err := rt.agent.Trending(cmd.Context())
			if err != nil {
				return err
			}
			switch format {
			case "csv":
				fmt.Fprint(cmd.OutOrStdout(), reporting.RenderTrendingCSV(list))
			case "markdown", "md":
				fmt.Fprintln(cmd.OutOrStdout(), reporting.RenderTrending(list))
			default:
				return errors.New("unknown --format " + format + " (markdown, csv)")
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&format, "format", "markdown", "Output format: markdown or csv")
	return cmd
}
