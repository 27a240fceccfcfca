// Package chaintest provides an in-memory chain implementing chain.Client.
// It understands the factory and mint contracts well enough to emit the
// same logs the deployed contracts do.
package chaintest

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/onchainnft/nftcreator/chain"
	"github.com/onchainnft/nftcreator/contracts"
)

type Chain struct {
	mu sync.Mutex

	account   common.Address
	connected bool

	factory common.Address
	head    uint64
	nonce   uint64

	logs     []gethtypes.Log
	receipts map[common.Hash]*gethtypes.Receipt
	writes   []chain.Call
	queries  []ethereum.FilterQuery

	tokenIDs map[common.Address]int64

	writeErr  error
	revertNxt bool
	filterErr error
	gate      chan struct{}
}

// New returns a chain whose head is at head, with account connected and the
// factory deployed at factory.
func New(account, factory common.Address, head uint64) *Chain {
	return &Chain{
		account:   account,
		connected: true,
		factory:   factory,
		head:      head,
		receipts:  make(map[common.Hash]*gethtypes.Receipt),
		tokenIDs:  make(map[common.Address]int64),
	}
}

func (c *Chain) SetAccount(a common.Address) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.account, c.connected = a, true
}

func (c *Chain) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.connected = false
}

// FailNextWrite makes the next WriteContract fail with err.
func (c *Chain) FailNextWrite(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.writeErr = err
}

// RevertNextWrite makes the next write mine with a failed status.
func (c *Chain) RevertNextWrite() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.revertNxt = true
}

func (c *Chain) FailFilter(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.filterErr = err
}

// Hold makes WaitForReceipt block until the returned release func is called.
func (c *Chain) Hold() (release func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	gate := make(chan struct{})
	c.gate = gate

	var once sync.Once

	return func() { once.Do(func() { close(gate) }) }
}

// AddLog appends lg in a new block and returns that block number.
func (c *Chain) AddLog(lg gethtypes.Log) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.head++
	lg.BlockNumber = c.head
	c.logs = append(c.logs, lg)

	return c.head
}

// Mine advances the head by n empty blocks.
func (c *Chain) Mine(n uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.head += n
}

func (c *Chain) Writes() []chain.Call {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]chain.Call(nil), c.writes...)
}

func (c *Chain) Queries() []ethereum.FilterQuery {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]ethereum.FilterQuery(nil), c.queries...)
}

func (c *Chain) Account() (common.Address, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.account, c.connected
}

func (c *Chain) BlockNumber(context.Context) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.head, nil
}

func (c *Chain) FilterLogs(_ context.Context, q ethereum.FilterQuery) ([]gethtypes.Log, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.queries = append(c.queries, q)

	if c.filterErr != nil {
		err := c.filterErr
		c.filterErr = nil

		return nil, err
	}

	var out []gethtypes.Log

	for _, lg := range c.logs {
		if matches(q, lg) {
			out = append(out, lg)
		}
	}

	return out, nil
}

func (c *Chain) WriteContract(_ context.Context, call chain.Call) (common.Hash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return common.Hash{}, chain.ErrNoAccount
	}

	if c.writeErr != nil {
		err := c.writeErr
		c.writeErr = nil

		return common.Hash{}, fmt.Errorf("%w: %w", chain.ErrRejected, err)
	}

	c.writes = append(c.writes, call)
	c.nonce++
	c.head++

	hash := crypto.Keccak256Hash(c.account[:], new(big.Int).SetUint64(c.nonce).Bytes())
	rc := &gethtypes.Receipt{
		TxHash:      hash,
		BlockNumber: new(big.Int).SetUint64(c.head),
		Status:      gethtypes.ReceiptStatusSuccessful,
	}

	if c.revertNxt {
		c.revertNxt = false
		rc.Status = gethtypes.ReceiptStatusFailed
		c.receipts[hash] = rc

		return hash, nil
	}

	logs, err := c.execute(call, hash)
	if err != nil {
		rc.Status = gethtypes.ReceiptStatusFailed
	}

	for i := range logs {
		lg := logs[i]
		lg.BlockNumber = c.head
		lg.TxHash = hash
		lg.Index = uint(i)

		c.logs = append(c.logs, lg)
		rc.Logs = append(rc.Logs, &lg)
	}

	c.receipts[hash] = rc

	return hash, nil
}

func (c *Chain) WaitForReceipt(ctx context.Context, hash common.Hash) (*gethtypes.Receipt, error) {
	c.mu.Lock()
	gate := c.gate
	c.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, chain.WaitAborted(ctx, hash)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	rc, ok := c.receipts[hash]
	if !ok {
		return nil, ethereum.NotFound
	}

	if rc.Status != gethtypes.ReceiptStatusSuccessful {
		return rc, chain.ErrReverted
	}

	return rc, nil
}

// execute emulates the contracts: the factory deploys a collection, anything
// else is treated as an ERC-721 mint to the sender.
func (c *Chain) execute(call chain.Call, hash common.Hash) ([]gethtypes.Log, error) {
	if len(call.Data) < 4 {
		return nil, contracts.ErrUnknownMethod
	}

	if call.To == c.factory {
		m, err := contracts.FactoryABI.MethodById(call.Data[:4])
		if err != nil || m.Name != contracts.MethodCreateCollection {
			return nil, contracts.ErrUnknownMethod
		}

		args, err := m.Inputs.Unpack(call.Data[4:])
		if err != nil {
			return nil, err
		}

		deployed := crypto.CreateAddress(c.factory, c.nonce)
		ev := contracts.FactoryABI.Events[contracts.EventCollectionCreated]

		data, err := ev.Inputs.NonIndexed().Pack(args...)
		if err != nil {
			return nil, err
		}

		return []gethtypes.Log{{
			Address: c.factory,
			Topics:  []common.Hash{ev.ID, AddrTopic(c.account), AddrTopic(deployed)},
			Data:    data,
		}}, nil
	}

	c.tokenIDs[call.To]++

	return []gethtypes.Log{{
		Address: call.To,
		Topics: []common.Hash{
			contracts.TransferID(),
			{},
			AddrTopic(c.account),
			common.BigToHash(big.NewInt(c.tokenIDs[call.To])),
		},
	}}, nil
}

func matches(q ethereum.FilterQuery, lg gethtypes.Log) bool {
	if q.FromBlock != nil && lg.BlockNumber < q.FromBlock.Uint64() {
		return false
	}

	if q.ToBlock != nil && lg.BlockNumber > q.ToBlock.Uint64() {
		return false
	}

	if len(q.Addresses) > 0 {
		found := false

		for _, a := range q.Addresses {
			if a == lg.Address {
				found = true

				break
			}
		}

		if !found {
			return false
		}
	}

	for i, set := range q.Topics {
		if len(set) == 0 {
			continue
		}

		if i >= len(lg.Topics) {
			return false
		}

		found := false

		for _, tp := range set {
			if tp == lg.Topics[i] {
				found = true

				break
			}
		}

		if !found {
			return false
		}
	}

	return true
}

// AddrTopic left-pads a to 32 bytes.
func AddrTopic(a common.Address) common.Hash {
	return common.BytesToHash(a.Bytes())
}
