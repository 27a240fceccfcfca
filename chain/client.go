// Package chain is the wallet/chain capability consumed by the submitter and
// the reconciler. Components receive a Client explicitly; nothing here is
// global.
package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/onchainnft/nftcreator/library"
)

const (
	ErrNoAccount       = library.Error("no connected account")
	ErrRejected        = library.Error("transaction rejected")
	ErrReverted        = library.Error("transaction reverted")
	ErrReceiptTimeout  = library.Error("timed out waiting for receipt")
	ErrInvalidKey      = library.Error("invalid private key")
	ErrChainIDMismatch = library.Error("chain id mismatch")
)

// Call is an already ABI-encoded contract write.
type Call struct {
	To    common.Address
	Data  []byte
	Value *big.Int
}

// Client is the set of wallet and node operations the module needs.
type Client interface {
	// Account is the connected account, if any.
	Account() (common.Address, bool)
	BlockNumber(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]gethtypes.Log, error)
	// WriteContract signs and broadcasts call from the connected account and
	// returns the transaction hash.
	WriteContract(ctx context.Context, call Call) (common.Hash, error)
	// WaitForReceipt blocks until the transaction is mined. A mined but
	// failed transaction returns its receipt together with ErrReverted.
	WaitForReceipt(ctx context.Context, tx common.Hash) (*gethtypes.Receipt, error)
}
