package main

import (
	"context"
	"fmt"
	"io"

	"github.com/LavaJover/shvark-kiosk-service/internal/config"
	"github.com/LavaJover/shvark-kiosk-service/internal/domain"
	infrastructure "github.com/LavaJover/shvark-kiosk-service/internal/infrastructure/exchange_providers"
	"github.com/LavaJover/shvark-kiosk-service/internal/usecase/payment"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func uriCmd(loadConfig func() (*config.KioskConfig, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "uri",
		Short: "Payment uri tools",
	}
	cmd.AddCommand(uriBuildCmd(loadConfig))
	return cmd
}

func uriBuildCmd(loadConfig func() (*config.KioskConfig, error)) *cobra.Command {
	var (
		quantity  int
		unitPrice string
	)
	cmd := &cobra.Command{
		Use:   "build [asset-id]",
		Short: "Build a one-off payment uri for a catalog asset",
		Long: `Build a payment uri for a catalog asset.

Without --unit-price the current rate is fetched from the configured rate service.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			uc, err := openAssetUsecase(func() (*config.KioskConfig, error) { return cfg, nil })
			if err != nil {
				return err
			}
			asset, err := uc.GetAsset(args[0])
			if err != nil {
				return err
			}

			price, err := resolveUnitPrice(cmd.Context(), cfg, *asset, unitPrice)
			if err != nil {
				return err
			}
			return writePaymentRequest(cmd.OutOrStdout(), *asset, price, quantity)
		},
	}
	cmd.Flags().IntVarP(&quantity, "quantity", "q", domain.MinFiatQuantity, "Fiat quantity (1-8)")
	cmd.Flags().StringVar(&unitPrice, "unit-price", "", "Use this unit price instead of fetching a rate")
	return cmd
}

func resolveUnitPrice(ctx context.Context, cfg *config.KioskConfig, asset domain.Asset, override string) (decimal.Decimal, error) {
	if override != "" {
		price, err := decimal.NewFromString(override)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("invalid unit price %q: %w", override, err)
		}
		return price, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	provider := infrastructure.NewEdgeRatesProvider(cfg.Rates.URL, cfg.Rates.TargetFiat, cfg.Rates.RequestTimeout)
	quote, err := provider.GetQuote(ctx, asset)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return quote.UnitPrice, nil
}

func writePaymentRequest(w io.Writer, asset domain.Asset, unitPrice decimal.Decimal, quantity int) error {
	req, err := payment.BuildPaymentRequest(asset, unitPrice, quantity)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, payment.Title(asset))
	fmt.Fprintln(w, payment.Label(quantity, req.DisplayAmount, asset.CurrencyCode))
	fmt.Fprintln(w, req.URI)
	return nil
}
