// Package cli wires the deployer commands together.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"rpsgame-deployer/pkg/chain"
	"rpsgame-deployer/pkg/config"
	"rpsgame-deployer/pkg/logging"
)

// Version is set at build time.
var Version = "dev"

// App carries the I/O and connection hooks shared by all commands.
type App struct {
	Out  io.Writer
	Err  io.Writer
	Dial func(ctx context.Context, url string) (*chain.Client, error)

	configPath string
	network    string
	logLevel   string
	logFormat  string
}

// NewApp returns an App bound to the process stdout/stderr.
func NewApp() *App {
	return &App{Out: os.Stdout, Err: os.Stderr, Dial: chain.Dial}
}

// NewRootCmd builds the command tree.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "rpsgame-deployer",
		Short: "Deploy the RpsGame contract to an Ethereum network",
		Long: `rpsgame-deployer deploys compiled Solidity contracts (RpsGame by default)
from Hardhat or Foundry build output to the networks listed in rpsgame.yaml.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Configure(logging.Config{
				Level:  app.logLevel,
				Format: app.logFormat,
				Output: app.Err,
			})
		},
	}
	root.SetOut(app.Out)
	root.SetErr(app.Err)

	flags := root.PersistentFlags()
	flags.StringVarP(&app.configPath, "config", "c", "", "path to the project config (default "+config.DefaultPath+")")
	flags.StringVarP(&app.network, "network", "n", "", "network to use (default: the config's defaultNetwork)")
	flags.StringVar(&app.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	flags.StringVar(&app.logFormat, "log-format", "console", "log format (console or json)")

	root.AddCommand(
		newDeployCmd(app),
		newAccountsCmd(app),
		newNetworksCmd(app),
		newVerifyCmd(app),
	)
	return root
}

// loadConfig loads and validates the project config.
func (a *App) loadConfig() (config.Config, error) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if err := config.Validate(cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// connect resolves the selected network and dials it.
func (a *App) connect(ctx context.Context, cfg config.Config) (config.Network, *chain.Client, error) {
	network, err := cfg.Resolve(a.network)
	if err != nil {
		return config.Network{}, nil, err
	}
	logger := logging.WithComponent("cli")
	logger.Debug().Str("network", network.Name).Str("url", network.URL).Msg("connecting")

	client, err := a.Dial(ctx, network.URL)
	if err != nil {
		return config.Network{}, nil, err
	}
	return network, client, nil
}

// Run executes the CLI with args and returns the process exit code:
// 0 on success, 1 on any error (printed to stderr).
func Run(ctx context.Context, app *App, args []string) int {
	root := NewRootCmd(app)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(app.Err, "Error:", err)
		return 1
	}
	return 0
}

// Execute runs the CLI against os.Args and stops on SIGINT/SIGTERM.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return Run(ctx, NewApp(), os.Args[1:])
}
