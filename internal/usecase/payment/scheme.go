package payment

import (
	"fmt"

	"github.com/LavaJover/shvark-kiosk-service/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	bip21Precision   int32 = 8
	eip831Precision  int32 = 18
	stellarPrecision int32 = 7

	evmNativeDecimals int32 = 18
	maxTokenDecimals  int32 = 77
)

// Scheme encodes a rounded human readable amount into a payment uri.
// Each implementation carries only the fields its uri format needs.
type Scheme interface {
	Precision() int32
	Encode(amount decimal.Decimal) string
}

type bip21Scheme struct {
	protocol string
	address  string
}

func (s bip21Scheme) Precision() int32 { return bip21Precision }

func (s bip21Scheme) Encode(amount decimal.Decimal) string {
	param := "amount"
	if s.protocol == "monero" {
		param = "tx_amount"
	}
	return fmt.Sprintf("%s:%s?%s=%s", s.protocol, s.address, param, amount.String())
}

type evmToken struct {
	contract string
	decimals int32
}

type eip831Scheme struct {
	chainID   int64
	recipient string
	token     *evmToken
}

func (s eip831Scheme) Precision() int32 { return eip831Precision }

func (s eip831Scheme) Encode(amount decimal.Decimal) string {
	if s.token == nil {
		return fmt.Sprintf("ethereum:%s@%d?value=%s", s.recipient, s.chainID, toBaseUnits(amount, evmNativeDecimals))
	}
	return fmt.Sprintf("ethereum:%s@%d/transfer?address=%s&uint256=%s",
		s.token.contract, s.chainID, s.recipient, toBaseUnits(amount, s.token.decimals))
}

type stellarScheme struct {
	protocol string
	address  string
}

func (s stellarScheme) Precision() int32 { return stellarPrecision }

func (s stellarScheme) Encode(amount decimal.Decimal) string {
	return fmt.Sprintf("%s:pay?destination=%s&amount=%s", s.protocol, s.address, amount.String())
}

// ParseScheme resolves the asset's uri type into its encoder, failing when a
// field the scheme depends on is missing. Nothing is defaulted.
func ParseScheme(asset domain.Asset) (Scheme, error) {
	if err := asset.Validate(); err != nil {
		return nil, err
	}

	switch asset.URIType {
	case domain.URITypeBIP21:
		return bip21Scheme{protocol: asset.URIProtocol, address: asset.PublicAddress}, nil
	case domain.URITypeEIP831:
		if asset.URIEvmChainID == nil {
			return nil, domain.NewValidationError("uriEvmChainId", "is required for eip831 uris")
		}
		if *asset.URIEvmChainID <= 0 {
			return nil, domain.NewValidationError("uriEvmChainId", "must be positive")
		}
		s := eip831Scheme{chainID: *asset.URIEvmChainID, recipient: asset.PublicAddress}
		if asset.HasToken() {
			if asset.TokenNumDecimals == nil {
				return nil, domain.NewValidationError("tokenNumDecimals", "is required for eip831 token transfers")
			}
			decimals := *asset.TokenNumDecimals
			if decimals < 0 || decimals > maxTokenDecimals {
				return nil, domain.NewValidationError("tokenNumDecimals", fmt.Sprintf("must be between 0 and %d", maxTokenDecimals))
			}
			s.token = &evmToken{contract: "0x" + asset.Token(), decimals: decimals}
		}
		return s, nil
	case domain.URITypeStellar:
		return stellarScheme{protocol: asset.URIProtocol, address: asset.PublicAddress}, nil
	}
	return nil, &domain.UnsupportedSchemeError{URIType: string(asset.URIType)}
}

// toBaseUnits shifts the decimal point instead of multiplying through a float,
// so 18 digit amounts stay exact. Digits below the smallest unit are rounded off.
func toBaseUnits(amount decimal.Decimal, decimals int32) string {
	return amount.Shift(decimals).Round(0).String()
}
