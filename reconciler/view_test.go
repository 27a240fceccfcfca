package reconciler

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/onchainnft/nftcreator/library/tests"
	"github.com/onchainnft/nftcreator/types"
)

// gatedFetcher blocks each Fetch until the test releases it.
type gatedFetcher struct {
	mu      sync.Mutex
	started chan common.Address
	release map[common.Address]chan result
}

type result struct {
	cols []types.Collection
	err  error
}

func newGated() *gatedFetcher {
	return &gatedFetcher{started: make(chan common.Address, 8), release: make(map[common.Address]chan result)}
}

func (g *gatedFetcher) gate(a common.Address) chan result {
	g.mu.Lock()
	defer g.mu.Unlock()

	ch, ok := g.release[a]
	if !ok {
		ch = make(chan result, 1)
		g.release[a] = ch
	}

	return ch
}

func (g *gatedFetcher) Fetch(ctx context.Context, a common.Address) ([]types.Collection, error) {
	ch := g.gate(a)
	g.started <- a

	select {
	case r := <-ch:
		return r.cols, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestViewDropsStaleRefresh(t *testing.T) {
	v := NewView()
	g := newGated()

	oldDone := make(chan error, 1)
	go func() { oldDone <- v.Refresh(t.Context(), g, alice) }()
	require.Equal(t, alice, <-g.started)

	newDone := make(chan error, 1)
	go func() { newDone <- v.Refresh(t.Context(), g, bob) }()
	require.Equal(t, bob, <-g.started)

	require.True(t, v.Snapshot().Loading)

	// the newer refresh finishes first
	g.gate(bob) <- result{cols: []types.Collection{{Name: "bob's", Address: tests.Addr(2)}}}
	require.NoError(t, <-newDone)

	g.gate(alice) <- result{cols: []types.Collection{{Name: "alice's", Address: tests.Addr(1)}}}
	require.NoError(t, <-oldDone)

	snap := v.Snapshot()
	require.False(t, snap.Loading)
	require.Equal(t, bob, snap.Account)
	require.Len(t, snap.Collections, 1)
	require.Equal(t, "bob's", snap.Collections[0].Name)
	require.Equal(t, "1 collections found", snap.Message)
}

func TestViewErrorKeepsPreviousForSameAccount(t *testing.T) {
	v := NewView()
	g := newGated()

	go func() { g.gate(alice) <- result{cols: []types.Collection{{Name: "a", Address: tests.Addr(1)}}} }()
	require.NoError(t, v.Refresh(t.Context(), g, alice))
	<-g.started

	boom := errors.New("rpc down")
	g.gate(alice) <- result{err: boom}
	require.ErrorIs(t, v.Refresh(t.Context(), g, alice), boom)
	<-g.started

	snap := v.Snapshot()
	require.Equal(t, boom.Error(), snap.Err)
	require.Len(t, snap.Collections, 1)

	g.gate(bob) <- result{err: boom}
	require.Error(t, v.Refresh(t.Context(), g, bob))

	snap = v.Snapshot()
	require.Empty(t, snap.Collections)
	require.NotNil(t, snap.Collections)
}

func TestViewEmptyHasNoMessage(t *testing.T) {
	v := NewView()
	g := newGated()

	g.gate(alice) <- result{cols: []types.Collection{}}
	require.NoError(t, v.Refresh(t.Context(), g, alice))

	snap := v.Snapshot()
	require.Empty(t, snap.Message)
	require.Empty(t, snap.Err)
	require.Equal(t, uint64(1), snap.Seq)
}
