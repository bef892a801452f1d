package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"rpsgame-deployer/pkg/artifacts"
	"rpsgame-deployer/pkg/deploy"
	"rpsgame-deployer/pkg/signer"
)

func newDeployCmd(app *App) *cobra.Command {
	var (
		contractName string
		args         []string
		fromIndex    int
		noRecord     bool
		asJSON       bool
	)

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy a contract (RpsGame by default)",
		Example: `  rpsgame-deployer deploy
  rpsgame-deployer deploy --network sepolia --contract contracts/RpsGame.sol:RpsGame --arg 1000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := app.loadConfig()
			if err != nil {
				return err
			}
			network, client, err := app.connect(ctx, cfg)
			if err != nil {
				return err
			}
			defer client.Close()

			if network.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, network.Timeout)
				defer cancel()
			}

			signers, err := signer.Load(ctx, network, client)
			if err != nil {
				return err
			}
			if fromIndex < 0 || fromIndex >= len(signers) {
				return eris.Errorf("--from %d is out of range (%d signers available)", fromIndex, len(signers))
			}

			registry := artifacts.NewRegistry(cfg.ArtifactRoots()...)
			deployer := deploy.New(client, registry, deploy.Options{
				Solidity:      cfg.Solidity,
				Confirmations: network.Confirmations,
			})

			res, err := deployer.Deploy(ctx, signers[fromIndex], contractName, args...)
			if err != nil {
				return err
			}

			if !noRecord {
				if _, err := deploy.NewRecorder(cfg.Paths.Deployments).Record(network.Name, res); err != nil {
					return err
				}
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "contract deployed to:", res.Address.Hex())
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&contractName, "contract", deploy.DefaultContract, "contract name, bare or fully qualified (path.sol:Name)")
	flags.StringArrayVar(&args, "arg", nil, "constructor argument, repeat in order")
	flags.IntVar(&fromIndex, "from", 0, "index of the signer to deploy from")
	flags.BoolVar(&noRecord, "no-record", false, "do not write the deployment record")
	flags.BoolVar(&asJSON, "json", false, "print the deployment result as JSON")
	return cmd
}
