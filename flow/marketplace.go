package flow

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Marketplace builds links into an OpenSea-style marketplace.
type Marketplace struct {
	BaseURL string
	Network string
}

// TokenURL is the asset page of token id of contract. It is empty when the
// marketplace is not configured or id is unknown.
func (m Marketplace) TokenURL(contract common.Address, id *big.Int) string {
	if m.BaseURL == "" || id == nil || id.Sign() < 0 {
		return ""
	}

	tok, overflow := uint256.FromBig(id)
	if overflow {
		return ""
	}

	return strings.TrimRight(m.BaseURL, "/") + "/assets/" + m.Network + "/" + contract.Hex() + "/" + tok.Dec()
}
