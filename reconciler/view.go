package reconciler

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/onchainnft/nftcreator/metrics"
	"github.com/onchainnft/nftcreator/types"
)

// Fetcher is satisfied by *Reconciler.
type Fetcher interface {
	Fetch(ctx context.Context, account common.Address) ([]types.Collection, error)
}

// Snapshot is the published state of a View.
type Snapshot struct {
	Account     common.Address     `json:"account"`
	Collections []types.Collection `json:"collections"`
	Loading     bool               `json:"loading"`
	Err         string             `json:"error,omitempty"`
	Message     string             `json:"message,omitempty"`
	// Seq is the token of the refresh that produced this snapshot.
	Seq uint64 `json:"seq"`
}

// View holds the latest collection list. Refreshes may overlap; each one
// takes a token when it starts and may only publish if no refresh that
// started after it has published already. Stale results are dropped.
type View struct {
	mu        sync.RWMutex
	issued    uint64
	published uint64
	snap      Snapshot
}

func NewView() *View {
	return &View{snap: Snapshot{Collections: []types.Collection{}}}
}

func (v *View) Snapshot() Snapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()

	s := v.snap
	s.Collections = append([]types.Collection(nil), v.snap.Collections...)
	s.Loading = v.issued > v.published

	return s
}

func (v *View) begin() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.issued++

	return v.issued
}

// publish stores the outcome of refresh token. It reports false when a newer
// refresh already published.
func (v *View) publish(token uint64, account common.Address, cols []types.Collection, err error) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if token <= v.published {
		metrics.StaleRefreshes.Inc()

		return false
	}

	v.published = token

	next := Snapshot{Account: account, Seq: token}

	switch {
	case err != nil:
		next.Err = err.Error()
		// keep what we had for the same account; a failed refresh is
		// "try again later", not "you have no collections"
		if v.snap.Account == account {
			next.Collections = v.snap.Collections
		} else {
			next.Collections = []types.Collection{}
		}
	default:
		next.Collections = cols
		if len(cols) > 0 {
			next.Message = fmt.Sprintf("%d collections found", len(cols))
		}
	}

	v.snap = next

	return true
}

// Refresh fetches the collections of account and publishes them unless a
// newer refresh got there first. The returned error is the fetch error.
func (v *View) Refresh(ctx context.Context, f Fetcher, account common.Address) error {
	token := v.begin()

	cols, err := f.Fetch(ctx, account)

	v.publish(token, account, cols, err)

	return err
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, account common.Address) ([]types.Collection, error)

func (f FetcherFunc) Fetch(ctx context.Context, account common.Address) ([]types.Collection, error) {
	return f(ctx, account)
}
