package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// PendingTransaction is what a form shows about its current attempt.
type PendingTransaction struct {
	Submitting bool   `json:"submitting"`
	Err        string `json:"error,omitempty"`
}

// MintResult describes a confirmed mint. TokenID is nil when the receipt
// carried no recognisable Transfer log.
type MintResult struct {
	TxHash         common.Hash    `json:"txHash"`
	Contract       common.Address `json:"contract"`
	TokenID        *big.Int       `json:"tokenId,omitempty"`
	MarketplaceURL string         `json:"marketplaceUrl,omitempty"`
}
