// Package reconciler rebuilds a creator's collection list from the
// factory's NFTContractCreated logs.
package reconciler

import (
	"context"
	"fmt"
	"math/big"
	"slices"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/onchainnft/nftcreator/chain"
	"github.com/onchainnft/nftcreator/contracts"
	"github.com/onchainnft/nftcreator/library"
	"github.com/onchainnft/nftcreator/library/events"
	"github.com/onchainnft/nftcreator/metrics"
	"github.com/onchainnft/nftcreator/types"
)

const (
	ErrReconcileFailed = library.Error("reconciliation failed")
	ErrMalformedLog    = library.Error("malformed creation log")
)

// DefaultStartBlock is the block the factory was deployed in on Sepolia.
const DefaultStartBlock = 6635572

type Config struct {
	StartBlock uint64
	// MaxBlockRange caps the span of one eth_getLogs call. 0 means one call
	// for the whole range.
	MaxBlockRange uint64
}

type Reconciler struct {
	client  chain.Client
	factory contracts.Ref
	cfg     Config
	store   *Store
	decoder *events.Registry[types.Collection]
	log     zerolog.Logger
}

type Option func(*Reconciler)

func WithLogger(l zerolog.Logger) Option {
	return func(r *Reconciler) {
		r.log = l
	}
}

// WithStore turns on incremental reconciliation: only blocks after the
// stored high-water mark are queried.
func WithStore(s *Store) Option {
	return func(r *Reconciler) {
		r.store = s
	}
}

func New(client chain.Client, factory contracts.Ref, cfg Config, opts ...Option) (*Reconciler, error) {
	r := &Reconciler{
		client:  client,
		factory: factory,
		cfg:     cfg,
		decoder: events.NewRegistry[types.Collection](),
		log:     log.Logger,
	}

	for _, o := range opts {
		o(r)
	}

	r.log = r.log.With().Str("component", "reconciler").Str("factory", factory.Address.Hex()).Logger()

	_, err := events.Register(r.decoder, factory.ABI, contracts.EventCollectionCreated, CollectionFrom)
	if err != nil {
		return nil, err
	}

	return r, nil
}

// CollectionFrom projects a decoded creation event into a Collection.
func CollectionFrom(ev contracts.CollectionCreated, m events.Meta) (types.Collection, error) {
	return types.Collection{
		Name:        ev.Name,
		Symbol:      ev.Symbol,
		FileType:    types.FileType(ev.FileType),
		Address:     ev.Contract,
		Creator:     ev.Creator,
		BlockNumber: m.BlockNumber,
		TxHash:      m.TxHash,
		LogIndex:    m.LogIndex,
	}, nil
}

// Fetch returns every collection account created through the factory, most
// recent first. No matching logs is an empty list; one malformed log fails
// the whole fetch.
func (r *Reconciler) Fetch(ctx context.Context, account common.Address) ([]types.Collection, error) {
	started := time.Now()

	cols, err := r.fetch(ctx, account)

	metrics.ReconcileDuration.Observe(time.Since(started).Seconds())

	if err != nil {
		metrics.Reconciliations.WithLabelValues("error").Inc()
		r.log.Error().Err(err).Str("account", account.Hex()).Msg("reconciliation failed")

		return nil, fmt.Errorf("%w: %w", ErrReconcileFailed, err)
	}

	metrics.Reconciliations.WithLabelValues("ok").Inc()
	r.log.Info().Str("account", account.Hex()).Int("collections", len(cols)).Msg("collections reconciled")

	return cols, nil
}

func (r *Reconciler) fetch(ctx context.Context, account common.Address) ([]types.Collection, error) {
	head, err := r.client.BlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("block number: %w", err)
	}

	from := r.cfg.StartBlock
	known := []types.Collection{}

	if r.store != nil {
		cp, ok, err := r.store.Load(ctx, r.factory.Address, account)
		if err != nil {
			return nil, err
		}

		if ok && cp.StartBlock == r.cfg.StartBlock && cp.HighWater < head {
			from = cp.HighWater + 1
			known = cp.Collections
		} else if ok && cp.StartBlock == r.cfg.StartBlock {
			return sortNewestFirst(cp.Collections), nil
		}
	}

	found, err := r.scan(ctx, account, from, head)
	if err != nil {
		return nil, err
	}

	cols := merge(known, found)

	if r.store != nil {
		err = r.store.Save(ctx, r.factory.Address, account, Checkpoint{
			StartBlock:  r.cfg.StartBlock,
			HighWater:   head,
			Collections: cols,
		})
		if err != nil {
			return nil, err
		}
	}

	return sortNewestFirst(cols), nil
}

// scan queries [from, to] in windows of at most MaxBlockRange blocks.
func (r *Reconciler) scan(ctx context.Context, account common.Address, from, to uint64) ([]types.Collection, error) {
	out := []types.Collection{}

	if from > to {
		return out, nil
	}

	for lo := from; lo <= to; {
		hi := to
		if r.cfg.MaxBlockRange > 0 && to-lo >= r.cfg.MaxBlockRange {
			hi = lo + r.cfg.MaxBlockRange - 1
		}

		logs, err := r.client.FilterLogs(ctx, ethereum.FilterQuery{
			FromBlock: new(big.Int).SetUint64(lo),
			ToBlock:   new(big.Int).SetUint64(hi),
			Addresses: []common.Address{r.factory.Address},
			Topics: [][]common.Hash{
				{r.factory.ABI.Events[contracts.EventCollectionCreated].ID},
				{common.BytesToHash(account.Bytes())},
			},
		})
		if err != nil {
			return nil, fmt.Errorf("logs %d-%d: %w", lo, hi, err)
		}

		metrics.LogsScanned.Add(float64(len(logs)))

		for i := range logs {
			c, handled, err := r.decoder.HandleLog(&logs[i])
			if err != nil {
				return nil, fmt.Errorf("%w: tx %s index %d: %w", ErrMalformedLog, logs[i].TxHash.Hex(), logs[i].Index, err)
			}

			if !handled {
				return nil, fmt.Errorf("%w: tx %s index %d: unexpected topics", ErrMalformedLog, logs[i].TxHash.Hex(), logs[i].Index)
			}

			// the node filtered by topic already; do not rely on it
			if c.Creator != account {
				continue
			}

			out = append(out, c)
		}

		r.log.Debug().Uint64("from", lo).Uint64("to", hi).Int("logs", len(logs)).Msg("scanned range")

		if hi == to {
			break
		}

		lo = hi + 1
	}

	return out, nil
}

func merge(known, found []types.Collection) []types.Collection {
	seen := make(map[common.Address]struct{}, len(known)+len(found))
	out := make([]types.Collection, 0, len(known)+len(found))

	for _, c := range slices.Concat(known, found) {
		if _, ok := seen[c.Address]; ok {
			continue
		}

		seen[c.Address] = struct{}{}
		out = append(out, c)
	}

	return out
}

func sortNewestFirst(cols []types.Collection) []types.Collection {
	out := slices.Clone(cols)
	if out == nil {
		out = []types.Collection{}
	}

	slices.SortStableFunc(out, func(a, b types.Collection) int {
		switch {
		case a.Newer(b):
			return -1
		case b.Newer(a):
			return 1
		default:
			return 0
		}
	})

	return out
}
