package terminal

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/case-atlas/pkg/runtime/terminal/commands"
	"github.com/de-tools/case-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/case-atlas/pkg/services/config"
)

// CLI represents the command-line interface
type CLI struct {
	output   io.Writer
	reporter *export.Reporter
	history  *Reporter
	session  *Session
	rootCmd  *cobra.Command

	configPath string
	logLevel   string
}

// Options contain configuration for the CLI
type Options struct {
	Output io.Writer
	Args   []string
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	cli := &CLI{
		output:   opts.Output,
		reporter: export.NewReporter(opts.Output),
		history:  NewReporter(opts.Output),
	}

	cli.rootCmd = cli.newRootCmd()
	cli.rootCmd.SetOut(opts.Output)
	if opts.Args != nil {
		cli.rootCmd.SetArgs(opts.Args)
	}
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "case-atlas",
		Short:             "Case report builder",
		SilenceUsage:      true,
		PersistentPreRunE: cli.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if cli.session == nil {
				return nil
			}
			return cli.session.Close()
		},
	}

	cmd.PersistentFlags().StringVar(&cli.configPath, "config", "", "Path to the config file")
	cmd.PersistentFlags().StringVar(&cli.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(commands.NewSubtotalCmd(cli, cli.reporter))
	cmd.AddCommand(commands.NewAgingCmd(cli, cli.reporter))
	cmd.AddCommand(commands.NewRunCmd(cli, cli.reporter))
	cmd.AddCommand(commands.NewHistoryCmd(cli, cli.history))

	return cmd
}

func (cli *CLI) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(cli.configPath)
	if err != nil {
		return err
	}
	if cli.logLevel != "" {
		cfg.LogLevel = cli.logLevel
	}

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Logger()

	cmd.SetContext(logger.WithContext(cmd.Context()))
	cli.session = NewSession(cfg)
	return nil
}

// Session is available once the root command's pre-run has loaded the config.
func (cli *CLI) Session() commands.Session {
	return cli.session
}
