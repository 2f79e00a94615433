package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/LavaJover/shvark-kiosk-service/internal/config"
	"github.com/LavaJover/shvark-kiosk-service/internal/domain"
	"github.com/LavaJover/shvark-kiosk-service/internal/infrastructure/postgres"
	"github.com/LavaJover/shvark-kiosk-service/internal/infrastructure/postgres/repository"
	"github.com/LavaJover/shvark-kiosk-service/internal/infrastructure/schema"
	"github.com/LavaJover/shvark-kiosk-service/internal/usecase"
	"github.com/spf13/cobra"
)

var assetListValidator = schema.MustValidator("asset list", schema.AssetList)

func assetsCmd(loadConfig func() (*config.KioskConfig, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assets",
		Short: "Inspect and load the asset catalog",
	}
	cmd.AddCommand(assetsListCmd(loadConfig))
	cmd.AddCommand(assetsImportCmd(loadConfig))
	return cmd
}

func assetsListCmd(loadConfig func() (*config.KioskConfig, error)) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List assets that payment requests can be built for",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			uc, err := openAssetUsecase(loadConfig)
			if err != nil {
				return err
			}
			assets, err := uc.ListAssets()
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(assets)
			}
			return printAssets(cmd.OutOrStdout(), assets)
		},
	}
	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "Output as JSON")
	return cmd
}

func assetsImportCmd(loadConfig func() (*config.KioskConfig, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "import [file.json]",
		Short: "Validate a JSON array of asset records and store them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			assets, err := decodeAssets(data)
			if err != nil {
				return err
			}
			uc, err := openAssetUsecase(loadConfig)
			if err != nil {
				return err
			}
			n, err := uc.ImportAssets(assets)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d assets\n", n)
			return nil
		},
	}
}

func openAssetUsecase(loadConfig func() (*config.KioskConfig, error)) (*usecase.DefaultAssetUsecase, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	db := postgres.MustInitDB(cfg)
	return usecase.NewDefaultAssetUsecase(repository.NewDefaultAssetRepository(db)), nil
}

// decodeAssets checks the raw records against the catalog schema before decoding.
func decodeAssets(data []byte) ([]*domain.Asset, error) {
	if err := assetListValidator.Validate(data); err != nil {
		return nil, err
	}
	var assets []*domain.Asset
	if err := json.Unmarshal(data, &assets); err != nil {
		return nil, fmt.Errorf("failed to decode assets: %w", err)
	}
	return assets, nil
}

func printAssets(w io.Writer, assets []*domain.Asset) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCHAIN\tTOKEN\tCODE\tURI TYPE\tADDRESS")
	for _, a := range assets {
		token := a.Token()
		if token == "" {
			token = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", a.ID, a.ChainPluginID, token, a.CurrencyCode, a.URIType, a.PublicAddress)
	}
	return tw.Flush()
}
