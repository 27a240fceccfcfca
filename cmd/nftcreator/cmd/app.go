package cmd

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/onchainnft/nftcreator/chain"
	"github.com/onchainnft/nftcreator/config"
	"github.com/onchainnft/nftcreator/contracts"
	"github.com/onchainnft/nftcreator/flow"
	"github.com/onchainnft/nftcreator/reconciler"
	"github.com/onchainnft/nftcreator/submitter"
)

// app is one wired session against a live node.
type app struct {
	client  *chain.EthClient
	store   *reconciler.Store
	session *flow.Session
}

func newApp(ctx context.Context, c config.Config) (*app, error) {
	client, err := chain.Dial(ctx, chain.Options{
		RPCURL:         c.Chain.RPCURL,
		ChainID:        c.Chain.ChainID,
		PrivateKey:     c.Chain.PrivateKey,
		Account:        c.Chain.Account,
		PollInterval:   c.Chain.PollInterval,
		ReceiptTimeout: c.Chain.ReceiptTimeout,
		Logger:         log.Logger,
	})
	if err != nil {
		return nil, err
	}

	a := &app{client: client}

	reg := contracts.NewRegistry(config.Address(c.Contracts.Factory), config.Address(c.Contracts.Template))

	factory, err := reg.Get(contracts.Factory)
	if err != nil {
		a.Close()

		return nil, err
	}

	var opts []reconciler.Option

	if c.Reconcile.CachePath != "" {
		a.store, err = reconciler.OpenStore(c.Reconcile.CachePath)
		if err != nil {
			a.Close()

			return nil, err
		}

		opts = append(opts, reconciler.WithStore(a.store))
	}

	rec, err := reconciler.New(client, factory, reconciler.Config{
		StartBlock:    c.Reconcile.StartBlock,
		MaxBlockRange: c.Reconcile.MaxBlockRange,
	}, opts...)
	if err != nil {
		a.Close()

		return nil, err
	}

	a.session, err = flow.NewSession(client, reg, submitter.New(client), rec,
		flow.Marketplace{BaseURL: c.Marketplace.BaseURL, Network: c.Marketplace.Network})
	if err != nil {
		a.Close()

		return nil, err
	}

	return a, nil
}

func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}

	a.client.Close()
}
