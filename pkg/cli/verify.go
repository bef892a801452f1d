package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"rpsgame-deployer/pkg/api"
	"rpsgame-deployer/pkg/artifacts"
	"rpsgame-deployer/pkg/contract"
	"rpsgame-deployer/pkg/logging"
)

func newVerifyCmd(app *App) *cobra.Command {
	var (
		apiURL     string
		outputPath string
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Collect recorded deployments and send them to a verification API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := logging.WithComponent("verify")
			cfg, err := app.loadConfig()
			if err != nil {
				return err
			}
			if apiURL == "" {
				apiURL = cfg.Verification.APIURL
			}

			registry := artifacts.NewRegistry(cfg.ArtifactRoots()...)
			logger.Info().Str("dir", cfg.Paths.Deployments).Msg("processing recorded deployments")
			data, err := contract.ProcessAllDirectories(cfg.Paths.Deployments, registry, outputPath)
			if err != nil {
				return err
			}

			// Group contracts by name for display purposes
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(contract.GroupByContractName(data)); err != nil {
				return err
			}

			if apiURL == "" {
				logger.Info().Msg("no API URL provided, skipping verification upload")
				return nil
			}
			logger.Info().Str("url", apiURL).Msg("sending data to verification API")
			if err := api.NewClient(apiURL, nil).SendContracts(cmd.Context(), data); err != nil {
				return err
			}
			logger.Info().Msg("data sent successfully to verification API")
			return nil
		},
	}

	cmd.Flags().StringVar(&apiURL, "api", "", "URL of the verification API (default: verification.apiUrl)")
	cmd.Flags().StringVar(&outputPath, "output", "processed-contracts.json", "where to write the processed contracts")
	return cmd
}
