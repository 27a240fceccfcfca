package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"
)

const (
	DefaultPollInterval   = 2 * time.Second
	DefaultReceiptTimeout = 2 * time.Minute

	// gas estimates are padded by gasMarginPercent to absorb state drift
	// between estimation and inclusion.
	gasMarginPercent = 20
)

type Options struct {
	RPCURL  string
	ChainID uint64
	// PrivateKey is hex, with or without 0x. Empty means read-only.
	PrivateKey string
	// Account is used for read-only listing when no key is configured.
	Account        string
	PollInterval   time.Duration
	ReceiptTimeout time.Duration
	Logger         zerolog.Logger
}

// EthClient implements Client over an Ethereum JSON-RPC endpoint and a local
// signing key.
type EthClient struct {
	rpc     *ethclient.Client
	key     *ecdsa.PrivateKey
	account common.Address
	hasAcc  bool
	chainID *big.Int
	signer  gethtypes.Signer

	pollInterval   time.Duration
	receiptTimeout time.Duration

	// nonce allocation and broadcast are serialized per client
	sendMu sync.Mutex

	log zerolog.Logger
}

func Dial(ctx context.Context, opts Options) (*EthClient, error) {
	rpc, err := ethclient.DialContext(ctx, opts.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", opts.RPCURL, err)
	}

	c := &EthClient{
		rpc:            rpc,
		pollInterval:   opts.PollInterval,
		receiptTimeout: opts.ReceiptTimeout,
		log:            opts.Logger.With().Str("component", "chain").Logger(),
	}

	if c.pollInterval <= 0 {
		c.pollInterval = DefaultPollInterval
	}

	if c.receiptTimeout <= 0 {
		c.receiptTimeout = DefaultReceiptTimeout
	}

	remoteID, err := rpc.ChainID(ctx)
	if err != nil {
		rpc.Close()

		return nil, fmt.Errorf("chain id: %w", err)
	}

	if opts.ChainID != 0 && remoteID.Uint64() != opts.ChainID {
		rpc.Close()

		return nil, fmt.Errorf("%w: configured %d, node reports %s", ErrChainIDMismatch, opts.ChainID, remoteID)
	}

	c.chainID = remoteID
	c.signer = gethtypes.LatestSignerForChainID(remoteID)

	switch {
	case opts.PrivateKey != "":
		key, err := crypto.HexToECDSA(strings.TrimPrefix(opts.PrivateKey, "0x"))
		if err != nil {
			rpc.Close()

			return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
		}

		c.key = key
		c.account = crypto.PubkeyToAddress(key.PublicKey)
		c.hasAcc = true
	case opts.Account != "":
		if !common.IsHexAddress(opts.Account) {
			rpc.Close()

			return nil, fmt.Errorf("%w: bad account %q", ErrNoAccount, opts.Account)
		}

		c.account = common.HexToAddress(opts.Account)
		c.hasAcc = true
	}

	c.log.Info().
		Str("rpc", opts.RPCURL).
		Str("chain_id", remoteID.String()).
		Str("account", c.account.Hex()).
		Bool("can_sign", c.key != nil).
		Msg("connected to chain")

	return c, nil
}

func (c *EthClient) Close() {
	c.rpc.Close()
}

func (c *EthClient) Account() (common.Address, bool) {
	return c.account, c.hasAcc
}

func (c *EthClient) ChainID() *big.Int {
	return new(big.Int).Set(c.chainID)
}

func (c *EthClient) BlockNumber(ctx context.Context) (uint64, error) {
	return c.rpc.BlockNumber(ctx)
}

func (c *EthClient) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]gethtypes.Log, error) {
	return c.rpc.FilterLogs(ctx, q)
}

func (c *EthClient) WriteContract(ctx context.Context, call Call) (common.Hash, error) {
	if c.key == nil {
		return common.Hash{}, ErrNoAccount
	}

	value := call.Value
	if value == nil {
		value = new(big.Int)
	}

	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	nonce, err := c.rpc.PendingNonceAt(ctx, c.account)
	if err != nil {
		return common.Hash{}, fmt.Errorf("pending nonce: %w", err)
	}

	tip, err := c.rpc.SuggestGasTipCap(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("gas tip: %w", err)
	}

	head, err := c.rpc.HeaderByNumber(ctx, nil)
	if err != nil {
		return common.Hash{}, fmt.Errorf("head: %w", err)
	}

	feeCap := new(big.Int).Set(tip)
	if head.BaseFee != nil {
		feeCap.Add(feeCap, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))
	}

	to := call.To

	gas, err := c.rpc.EstimateGas(ctx, ethereum.CallMsg{
		From:  c.account,
		To:    &to,
		Value: value,
		Data:  call.Data,
	})
	if err != nil {
		return common.Hash{}, fmt.Errorf("%w: estimate gas: %w", ErrRejected, err)
	}

	gas += gas * gasMarginPercent / 100

	tx, err := gethtypes.SignNewTx(c.key, c.signer, &gethtypes.DynamicFeeTx{
		ChainID:   c.chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        &to,
		Value:     value,
		Data:      call.Data,
	})
	if err != nil {
		return common.Hash{}, fmt.Errorf("sign: %w", err)
	}

	if err := c.rpc.SendTransaction(ctx, tx); err != nil {
		return common.Hash{}, fmt.Errorf("%w: %w", ErrRejected, err)
	}

	c.log.Debug().
		Str("tx", tx.Hash().Hex()).
		Str("to", to.Hex()).
		Uint64("nonce", nonce).
		Uint64("gas", gas).
		Msg("transaction sent")

	return tx.Hash(), nil
}

func (c *EthClient) WaitForReceipt(ctx context.Context, hash common.Hash) (*gethtypes.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, c.receiptTimeout)
	defer cancel()

	return pollReceipt(ctx, c.pollInterval, hash, c.rpc.TransactionReceipt)
}

type receiptFunc func(ctx context.Context, hash common.Hash) (*gethtypes.Receipt, error)

// pollReceipt asks for the receipt every interval until it is available or
// ctx ends. ethereum.NotFound means "not mined yet".
func pollReceipt(ctx context.Context, interval time.Duration, hash common.Hash, get receiptFunc) (*gethtypes.Receipt, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		rc, err := get(ctx, hash)

		switch {
		case err == nil:
			if rc.Status != gethtypes.ReceiptStatusSuccessful {
				return rc, fmt.Errorf("%w: %s in block %s", ErrReverted, hash.Hex(), rc.BlockNumber)
			}

			return rc, nil
		case errors.Is(err, ethereum.NotFound):
		case ctx.Err() != nil:
		default:
			return nil, fmt.Errorf("receipt %s: %w", hash.Hex(), err)
		}

		select {
		case <-ctx.Done():
			return nil, WaitAborted(ctx, hash)
		case <-ticker.C:
		}
	}
}

// WaitAborted reports why a receipt wait on ctx ended early. Only a deadline
// is a timeout; a cancelled caller gets context.Canceled back.
func WaitAborted(ctx context.Context, hash common.Hash) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %w", ErrReceiptTimeout, hash.Hex(), ctx.Err())
	}

	return fmt.Errorf("receipt %s: %w", hash.Hex(), ctx.Err())
}
