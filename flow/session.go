// Package flow implements the collection and mint forms: local validation,
// one submission at a time per form, and a collection refresh after a
// collection is created.
package flow

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/onchainnft/nftcreator/chain"
	"github.com/onchainnft/nftcreator/contracts"
	"github.com/onchainnft/nftcreator/library/events"
	"github.com/onchainnft/nftcreator/reconciler"
	"github.com/onchainnft/nftcreator/submitter"
	"github.com/onchainnft/nftcreator/types"
)

type minted struct {
	contract common.Address
	tokenID  *big.Int
}

// Session ties the forms of one connected wallet to the chain client, the
// submitter and the collection view.
type Session struct {
	client    chain.Client
	contracts *contracts.Registry
	submitter *submitter.Submitter
	fetcher   reconciler.Fetcher
	view      *reconciler.View
	market    Marketplace

	created   *events.Registry[types.Collection]
	transfers *events.Registry[minted]

	log zerolog.Logger
}

type Option func(*Session)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) {
		s.log = l
	}
}

func NewSession(
	client chain.Client,
	reg *contracts.Registry,
	sub *submitter.Submitter,
	fetcher reconciler.Fetcher,
	market Marketplace,
	opts ...Option,
) (*Session, error) {
	s := &Session{
		client:    client,
		contracts: reg,
		submitter: sub,
		fetcher:   fetcher,
		view:      reconciler.NewView(),
		market:    market,
		created:   events.NewRegistry[types.Collection](),
		transfers: events.NewRegistry[minted](),
		log:       log.Logger,
	}

	for _, o := range opts {
		o(s)
	}

	s.log = s.log.With().Str("component", "flow").Logger()

	if _, err := events.Register(s.created, contracts.FactoryABI, contracts.EventCollectionCreated, reconciler.CollectionFrom); err != nil {
		return nil, err
	}

	_, err := events.Register(s.transfers, contracts.CustomMintABI, contracts.EventTransfer,
		func(ev contracts.Transfer, m events.Meta) (minted, error) {
			return minted{contract: m.Contract, tokenID: ev.TokenID}, nil
		})
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Session) Account() (common.Address, bool) {
	return s.client.Account()
}

func (s *Session) Collections() reconciler.Snapshot {
	return s.view.Snapshot()
}

// Collection looks addr up in the last published snapshot.
func (s *Session) Collection(addr common.Address) (types.Collection, bool) {
	for _, c := range s.view.Snapshot().Collections {
		if c.Address == addr {
			return c, true
		}
	}

	return types.Collection{}, false
}

func (s *Session) Marketplace() Marketplace {
	return s.market
}

// Refresh reconciles the connected account's collections into the view.
// Without a connected account the view shows chain.ErrNoAccount.
func (s *Session) Refresh(ctx context.Context) error {
	account, ok := s.client.Account()
	if !ok {
		noAccount := reconciler.FetcherFunc(func(context.Context, common.Address) ([]types.Collection, error) {
			return nil, chain.ErrNoAccount
		})

		return s.view.Refresh(ctx, noAccount, common.Address{})
	}

	return s.view.Refresh(ctx, s.fetcher, account)
}

// AccountChanged re-lists collections for whatever account is connected now.
func (s *Session) AccountChanged(ctx context.Context) error {
	account, ok := s.client.Account()
	s.log.Info().Str("account", account.Hex()).Bool("connected", ok).Msg("account changed")

	return s.Refresh(ctx)
}

// createdIn returns the collection deployed by rc, if the receipt carries the
// factory's creation event.
func (s *Session) createdIn(rc *gethtypes.Receipt, factory common.Address) (types.Collection, bool) {
	if rc == nil {
		return types.Collection{}, false
	}

	for _, lg := range rc.Logs {
		if lg.Address != factory {
			continue
		}

		c, ok, err := s.created.HandleLog(lg)
		if err != nil {
			s.log.Warn().Err(err).Msg("cannot decode creation event")

			continue
		}

		if ok {
			return c, true
		}
	}

	return types.Collection{}, false
}

// mintResult describes a mined mint on contract. A receipt without a
// Transfer from contract leaves TokenID nil; the mint itself still stands.
func (s *Session) mintResult(rc *gethtypes.Receipt, contract common.Address) types.MintResult {
	res := types.MintResult{TxHash: submitter.TxHash(rc), Contract: contract}

	tokens, err := s.transfers.HandleReceipt(rc)
	if err != nil {
		s.log.Warn().Err(err).Str("tx", res.TxHash.Hex()).Msg("cannot decode transfer")
	}

	for _, t := range tokens {
		if t.contract == contract {
			res.TokenID = t.tokenID

			break
		}
	}

	if res.TokenID == nil {
		s.log.Warn().Str("tx", res.TxHash.Hex()).Str("contract", contract.Hex()).Msg("no token id in mint receipt")

		return res
	}

	res.MarketplaceURL = s.market.TokenURL(contract, res.TokenID)

	return res
}
