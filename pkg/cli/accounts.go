package cli

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/params"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"rpsgame-deployer/pkg/deploy"
	"rpsgame-deployer/pkg/signer"
)

const maxBalanceLookups = 8

func newAccountsCmd(app *App) *cobra.Command {
	var balances bool

	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Print the list of accounts",
		Args:  cobra.NoArgs,
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

			signers, err := signer.Load(ctx, network, client)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !balances {
				for _, s := range signers {
					fmt.Fprintln(out, s.Address().Hex())
				}
				return nil
			}

			deployer := deploy.New(client, nil, deploy.Options{})
			wei := make([]*big.Int, len(signers))
			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(maxBalanceLookups)
			for i, s := range signers {
				i, s := i, s
				g.Go(func() error {
					bal, err := deployer.Balance(gctx, s.Address())
					if err != nil {
						return err
					}
					wei[i] = bal
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			for i, s := range signers {
				fmt.Fprintf(out, "%s %s ETH\n", s.Address().Hex(), formatEther(wei[i]))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&balances, "balances", false, "also print each account's balance")
	return cmd
}

func formatEther(wei *big.Int) string {
	f := new(big.Float).SetInt(wei)
	f.Quo(f, new(big.Float).SetInt64(params.Ether))
	return f.Text('f', 4)
}
