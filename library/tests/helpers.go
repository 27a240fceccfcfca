// Package tests holds helpers shared by package tests.
package tests

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

// T is what the helpers need from *testing.T and *rapid.T alike.
type T = require.TestingT

func helper(t T) {
	if h, ok := t.(interface{ Helper() }); ok {
		h.Helper()
	}
}

func MustType(t T, s string) abi.Type {
	helper(t)

	tt, err := abi.NewType(s, "", nil)
	require.NoError(t, err)

	return tt
}

// Addr returns an address whose last byte is i.
func Addr(i byte) common.Address {
	var a common.Address

	a[19] = i

	return a
}

// AddrTopic left-pads a to 32 bytes, the way indexed addresses are stored.
func AddrTopic(a common.Address) common.Hash {
	var h common.Hash
	copy(h[12:], a[:])

	return h
}

func MustPack(t T, args abi.Arguments, vs ...any) []byte {
	helper(t)

	b, err := args.Pack(vs...)
	require.NoError(t, err)

	return b
}
