package payment

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDisplayHelpers(t *testing.T) {
	asset := usdcAsset()
	require.Equal(t, "Scan to pay with Polygon (USDC)", Title(asset))
	require.Equal(t, "$3 (0.5 USDC)", Label(3, "0.5", "USDC"))
	require.Equal(t, "https://content.edge.app/currencyIconsV3/polygon/def.png", IconURL(asset))
	require.Equal(t, "https://content.edge.app/currencyIconsV3/polygon/polygon.png", ChainIconURL(asset))

	named := btcAsset()
	named.ChainName = strPtr("bitcoin cash")
	require.Equal(t, "Scan to pay with Bitcoin cash (BTC)", Title(named))
	require.Equal(t, "https://content.edge.app/currencyIconsV3/bitcoin/bitcoin.png", IconURL(named))
}
