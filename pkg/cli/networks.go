package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newNetworksCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "networks",
		Short: "List configured networks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.loadConfig()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, name := range cfg.NetworkNames() {
				n := cfg.Networks[name]
				mark := " "
				if name == cfg.DefaultNetwork {
					mark = "*"
				}
				signers := "node accounts"
				if len(n.Accounts) > 0 {
					signers = fmt.Sprintf("keys=%d", len(n.Accounts))
				}
				chain := "-"
				if n.ChainID != 0 {
					chain = fmt.Sprint(n.ChainID)
				}
				fmt.Fprintf(w, "%s %s\t%s\t%s\t%s\n", mark, name, n.URL, chain, signers)
			}
			return w.Flush()
		},
	}
}
