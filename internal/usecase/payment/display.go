package payment

import (
	"fmt"

	"github.com/LavaJover/shvark-kiosk-service/internal/domain"
)

const iconBaseURL = "https://content.edge.app/currencyIconsV3"

func Label(fiatQuantity int, displayAmount, currencyCode string) string {
	return fmt.Sprintf("$%d (%s %s)", fiatQuantity, displayAmount, currencyCode)
}

func Title(asset domain.Asset) string {
	return fmt.Sprintf("Scan to pay with %s (%s)", asset.DisplayName(), asset.CurrencyCode)
}

func IconURL(asset domain.Asset) string {
	if asset.HasToken() {
		return fmt.Sprintf("%s/%s/%s.png", iconBaseURL, asset.ChainPluginID, asset.Token())
	}
	return ChainIconURL(asset)
}

// ChainIconURL is the host chain badge drawn over token icons.
func ChainIconURL(asset domain.Asset) string {
	return fmt.Sprintf("%s/%s/%s.png", iconBaseURL, asset.ChainPluginID, asset.ChainPluginID)
}
