// Package contracts maps logical contract names to deployed addresses and
// their ABIs.
package contracts

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/onchainnft/nftcreator/library"
)

const (
	ErrUnknownContract = library.Error("unknown contract")
	ErrUnknownMethod   = library.Error("unknown method")
	ErrPack            = library.Error("cannot encode call")
	ErrZeroAddress     = library.Error("contract address not configured")
)

type Name string

const (
	Factory     Name = "factory"
	TripleHelix Name = "triplehelix"
	// Collection names a per-collection mint contract; its address comes
	// from a reconciled Collection.
	Collection Name = "collection"
)

// Ref is a deployed contract: where it lives and how to talk to it.
type Ref struct {
	Name    Name
	Address common.Address
	ABI     abi.ABI
}

// Pack ABI-encodes a call to method.
func (r Ref) Pack(method string, args ...any) ([]byte, error) {
	if _, ok := r.ABI.Methods[method]; !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownMethod, r.Name, method)
	}

	data, err := r.ABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s.%s: %w", ErrPack, r.Name, method, err)
	}

	return data, nil
}

type Registry struct {
	mu   sync.RWMutex
	refs map[Name]Ref
}

// NewRegistry returns a registry holding the factory and the triple helix
// template at the given addresses.
func NewRegistry(factory, tripleHelix common.Address) *Registry {
	r := &Registry{refs: make(map[Name]Ref)}

	r.Register(Factory, factory, FactoryABI)
	r.Register(TripleHelix, tripleHelix, TripleHelixABI)

	return r
}

func (r *Registry) Register(name Name, addr common.Address, a abi.ABI) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refs[name] = Ref{Name: name, Address: addr, ABI: a}
}

// Get returns the named contract. A zero address counts as not configured.
func (r *Registry) Get(name Name) (Ref, error) {
	r.mu.RLock()
	ref, ok := r.refs[name]
	r.mu.RUnlock()

	if !ok {
		return Ref{}, fmt.Errorf("%w: %s", ErrUnknownContract, name)
	}

	if ref.Address == (common.Address{}) {
		return Ref{}, fmt.Errorf("%w: %s", ErrZeroAddress, name)
	}

	return ref, nil
}

// Collection is the mint contract of a custom collection at addr.
func (r *Registry) Collection(addr common.Address) Ref {
	return Ref{Name: Collection, Address: addr, ABI: CustomMintABI}
}
