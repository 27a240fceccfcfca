package contracts

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestRegistryGet(t *testing.T) {
	factory := common.HexToAddress("0x00000000000000000000000000000000000000f1")
	r := NewRegistry(factory, common.Address{})

	ref, err := r.Get(Factory)
	require.NoError(t, err)
	require.Equal(t, factory, ref.Address)

	_, err = r.Get(TripleHelix)
	require.ErrorIs(t, err, ErrZeroAddress)

	_, err = r.Get("nope")
	require.ErrorIs(t, err, ErrUnknownContract)
}

func TestRefPack(t *testing.T) {
	r := NewRegistry(common.HexToAddress("0x01"), common.HexToAddress("0x02"))
	helix, err := r.Get(TripleHelix)
	require.NoError(t, err)

	data, err := helix.Pack(MethodMint, big.NewInt(10), big.NewInt(200), big.NewInt(300))
	require.NoError(t, err)
	require.Equal(t, TripleHelixABI.Methods[MethodMint].ID, data[:4])

	args, err := TripleHelixABI.Methods[MethodMint].Inputs.Unpack(data[4:])
	require.NoError(t, err)
	require.Equal(t, []any{big.NewInt(10), big.NewInt(200), big.NewInt(300)}, args)

	_, err = helix.Pack("burn")
	require.ErrorIs(t, err, ErrUnknownMethod)

	_, err = helix.Pack(MethodMint, "not", "a", "number")
	require.ErrorIs(t, err, ErrPack)
}

func TestCollectionRef(t *testing.T) {
	addr := common.HexToAddress("0x0c")
	ref := NewRegistry(common.Address{}, common.Address{}).Collection(addr)

	require.Equal(t, addr, ref.Address)

	_, err := ref.Pack(MethodMint, "t", "d", "PGgxPg==")
	require.NoError(t, err)
}

func TestEventIDs(t *testing.T) {
	require.Equal(t,
		common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef"),
		TransferID())
	require.NotEqual(t, common.Hash{}, CollectionCreatedID())
}

func TestTemplates(t *testing.T) {
	var mintable []string

	for _, tpl := range Templates() {
		if tpl.Available {
			mintable = append(mintable, tpl.ID)
		}
	}

	require.Equal(t, []string{"triplehelix"}, mintable)
}
