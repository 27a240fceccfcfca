package events

import (
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/onchainnft/nftcreator/library/tests"
)

const createdABI = `[{"type":"event","name":"NFTContractCreated","anonymous":false,"inputs":[
{"name":"creator","type":"address","indexed":true},
{"name":"contractAddress","type":"address","indexed":true},
{"name":"name","type":"string","indexed":false},
{"name":"symbol","type":"string","indexed":false},
{"name":"fileType","type":"string","indexed":false}]}]`

const transferABI = `[{"type":"event","name":"Transfer","anonymous":false,"inputs":[
{"name":"from","type":"address","indexed":true},
{"name":"to","type":"address","indexed":true},
{"name":"tokenId","type":"uint256","indexed":true}]}]`

type created struct {
	Creator  common.Address `abi:"creator"`
	Contract common.Address `abi:"contractAddress"`
	Name     string         `abi:"name"`
	Symbol   string         `abi:"symbol"`
	FileType string         `abi:"fileType"`
}

type transfer struct {
	From    common.Address `abi:"from"`
	To      common.Address `abi:"to"`
	TokenID *big.Int       `abi:"tokenId"`
}

func mustABI(t *testing.T, s string) abi.ABI {
	t.Helper()

	a, err := abi.JSON(strings.NewReader(s))
	require.NoError(t, err)

	return a
}

func createdLog(t *testing.T, a abi.ABI, creator, contract common.Address, name, symbol, fileType string) *gethtypes.Log {
	t.Helper()

	ev := a.Events["NFTContractCreated"]

	return &gethtypes.Log{
		Address:     tests.Addr(0xFA),
		Topics:      []common.Hash{ev.ID, tests.AddrTopic(creator), tests.AddrTopic(contract)},
		Data:        tests.MustPack(t, ev.Inputs.NonIndexed(), name, symbol, fileType),
		BlockNumber: 10,
		Index:       3,
	}
}

func TestDecodeCreated(t *testing.T) {
	a := mustABI(t, createdABI)
	lg := createdLog(t, a, tests.Addr(1), tests.Addr(2), "Foo", "FOO", "svg")

	out, matched, err := Decode[created](a, "NFTContractCreated", lg)
	require.NoError(t, err)
	require.True(t, matched)
	require.Equal(t, tests.Addr(1), out.Creator)
	require.Equal(t, tests.Addr(2), out.Contract)
	require.Equal(t, "Foo", out.Name)
	require.Equal(t, "FOO", out.Symbol)
	require.Equal(t, "svg", out.FileType)
}

func TestDecodeOtherSignatureNotMatched(t *testing.T) {
	a := mustABI(t, createdABI)

	lg := &gethtypes.Log{Topics: []common.Hash{crypto.Keccak256Hash([]byte("Other(bytes32)"))}}

	_, matched, err := Decode[created](a, "NFTContractCreated", lg)
	require.NoError(t, err)
	require.False(t, matched)
}

func TestDecodeMissingIndexedTopicNotMatched(t *testing.T) {
	a := mustABI(t, createdABI)
	lg := createdLog(t, a, tests.Addr(1), tests.Addr(2), "Foo", "FOO", "svg")
	lg.Topics = lg.Topics[:2]

	_, matched, err := Decode[created](a, "NFTContractCreated", lg)
	require.NoError(t, err)
	require.False(t, matched)
}

func TestDecodeDirtyAddressTopic(t *testing.T) {
	a := mustABI(t, createdABI)
	lg := createdLog(t, a, tests.Addr(1), tests.Addr(2), "Foo", "FOO", "svg")
	lg.Topics[1][0] = 0xFF

	_, matched, err := Decode[created](a, "NFTContractCreated", lg)
	require.True(t, matched)
	require.ErrorIs(t, err, ErrMalformedTopic)
}

func TestDecodeBadData(t *testing.T) {
	a := mustABI(t, createdABI)
	lg := createdLog(t, a, tests.Addr(1), tests.Addr(2), "Foo", "FOO", "svg")
	lg.Data = lg.Data[:40]

	_, matched, err := Decode[created](a, "NFTContractCreated", lg)
	require.True(t, matched)
	require.Error(t, err)
}

func TestDecodeUnknownEvent(t *testing.T) {
	a := mustABI(t, createdABI)

	_, matched, err := Decode[created](a, "Nope", &gethtypes.Log{})
	require.False(t, matched)
	require.ErrorIs(t, err, ErrUnknownEvent)
}

func TestDecodeTypeMismatch(t *testing.T) {
	a := mustABI(t, createdABI)
	lg := createdLog(t, a, tests.Addr(1), tests.Addr(2), "Foo", "FOO", "svg")

	type wrong struct {
		Name *big.Int `abi:"name"`
	}

	_, matched, err := Decode[wrong](a, "NFTContractCreated", lg)
	require.True(t, matched)
	require.ErrorIs(t, err, ErrTypeMismatched)
}

func TestRegistryReceipt(t *testing.T) {
	ca := mustABI(t, createdABI)
	ta := mustABI(t, transferABI)

	reg := NewRegistry[string]()

	_, err := Register(reg, ca, "NFTContractCreated", func(ev created, m Meta) (string, error) {
		return "created:" + ev.Name, nil
	})
	require.NoError(t, err)

	_, err = Register(reg, ta, "Transfer", func(ev transfer, m Meta) (string, error) {
		return "transfer:" + ev.TokenID.String() + "@" + m.Contract.Hex(), nil
	})
	require.NoError(t, err)

	tr := &gethtypes.Log{
		Address: tests.Addr(0xCC),
		Topics: []common.Hash{
			ta.Events["Transfer"].ID,
			{},
			tests.AddrTopic(tests.Addr(9)),
			common.BigToHash(big.NewInt(42)),
		},
	}
	noise := &gethtypes.Log{Topics: []common.Hash{crypto.Keccak256Hash([]byte("Noise()"))}}

	rc := &gethtypes.Receipt{Logs: []*gethtypes.Log{
		createdLog(t, ca, tests.Addr(1), tests.Addr(2), "Foo", "FOO", "svg"),
		noise,
		tr,
	}}

	out, err := reg.HandleReceipt(rc)
	require.NoError(t, err)
	require.Equal(t, []string{"created:Foo", "transfer:42@" + tests.Addr(0xCC).Hex()}, out)
}

func TestRegisterUnknownEvent(t *testing.T) {
	reg := NewRegistry[int]()

	_, err := Register(reg, mustABI(t, transferABI), "Approval", func(transfer, Meta) (int, error) { return 0, nil })
	require.ErrorIs(t, err, ErrUnknownEvent)
}

func TestDecodeRejectsUnboundField(t *testing.T) {
	a := mustABI(t, createdABI)
	lg := createdLog(t, a, tests.Addr(1), tests.Addr(2), "Foo", "FOO", "svg")

	type withOwner struct {
		Name  string         `abi:"name"`
		Owner common.Address `abi:"owner"`
	}

	_, matched, err := Decode[withOwner](a, "NFTContractCreated", lg)
	require.False(t, matched)
	require.ErrorIs(t, err, ErrUnboundField)

	_, err = Register(NewRegistry[int](), a, "NFTContractCreated", func(withOwner, Meta) (int, error) { return 0, nil })
	require.ErrorIs(t, err, ErrUnboundField)
}

func TestDecodePartialAndSkippedFields(t *testing.T) {
	a := mustABI(t, createdABI)
	lg := createdLog(t, a, tests.Addr(1), tests.Addr(2), "Foo", "FOO", "svg")

	type partial struct {
		Contract common.Address `abi:"contractAddress"`
		Symbol   string
		Note     string `abi:"-"`
		seen     bool
	}

	out, matched, err := Decode[partial](a, "NFTContractCreated", lg)
	require.NoError(t, err)
	require.True(t, matched)
	require.Equal(t, tests.Addr(2), out.Contract)
	require.Equal(t, "FOO", out.Symbol)
	require.Empty(t, out.Note)
	require.False(t, out.seen)
}

func TestDecodeNonStruct(t *testing.T) {
	a := mustABI(t, createdABI)
	lg := createdLog(t, a, tests.Addr(1), tests.Addr(2), "Foo", "FOO", "svg")

	_, _, err := Decode[string](a, "NFTContractCreated", lg)
	require.ErrorIs(t, err, ErrStructRequired)
}
