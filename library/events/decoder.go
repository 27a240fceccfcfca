// Package events decodes EVM logs into tagged Go structs using a contract ABI
// and dispatches them by topic0.
package events

import (
	"fmt"
	"math/big"
	"reflect"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
)

// Meta is the provenance of a decoded log.
type Meta struct {
	Contract    common.Address
	TxHash      common.Hash
	BlockNumber uint64
	LogIndex    uint
}

// MetaOf extracts provenance from lg.
func MetaOf(lg *gethtypes.Log) Meta {
	return Meta{
		Contract:    lg.Address,
		TxHash:      lg.TxHash,
		BlockNumber: lg.BlockNumber,
		LogIndex:    lg.Index,
	}
}

// Decode decodes lg as event eventName of a into T. T must be a struct
// whose exported fields each name an event input, by `abi:"<name>"` tag or by
// field name.
//
// matched is false when topic0 is not the event id or when the number of
// indexed topics does not fit the event, which lets overloaded signatures
// (ERC-20 and ERC-721 Transfer) share a topic0. Once matched, a malformed
// indexed address or undecodable data is reported as an error.
func Decode[T any](a abi.ABI, eventName string, lg *gethtypes.Log) (out T, matched bool, err error) {
	ev, ok := a.Events[eventName]
	if !ok {
		return out, false, fmt.Errorf("%w: %s", ErrUnknownEvent, eventName)
	}

	b, err := bindingFor(ev, reflect.TypeFor[T]())
	if err != nil {
		return out, false, err
	}

	if len(lg.Topics) == 0 || lg.Topics[0] != ev.ID {
		return out, false, nil
	}

	indexed := 0

	for _, in := range ev.Inputs {
		if in.Indexed {
			indexed++
		}
	}

	if len(lg.Topics)-1 != indexed {
		return out, false, nil
	}

	data, err := ev.Inputs.NonIndexed().Unpack(lg.Data)
	if err != nil {
		return out, true, fmt.Errorf("unpack data for %s: %w", eventName, err)
	}

	values := make([]any, len(ev.Inputs))
	topic, word := 1, 0

	for i, in := range ev.Inputs {
		if !in.Indexed {
			values[i] = data[word]
			word++

			continue
		}

		v, err := topicValue(in, lg.Topics[topic])
		if err != nil {
			return out, true, fmt.Errorf("%s.%s: %w", eventName, in.Name, err)
		}

		values[i] = v
		topic++
	}

	if err := b.fill(reflect.ValueOf(&out).Elem(), ev, values); err != nil {
		return out, true, err
	}

	return out, true, nil
}

// topicValue decodes one indexed topic. Dynamic types (string, bytes, arrays)
// are stored as their keccak hash and come back as the hash itself.
func topicValue(arg abi.Argument, topic common.Hash) (any, error) {
	switch arg.Type.T {
	case abi.AddressTy:
		for _, b := range topic[:common.HashLength-common.AddressLength] {
			if b != 0 {
				return nil, fmt.Errorf("%w: address topic %s has non-zero padding", ErrMalformedTopic, topic.Hex())
			}
		}

		return common.BytesToAddress(topic[common.HashLength-common.AddressLength:]), nil

	case abi.UintTy, abi.IntTy:
		return new(big.Int).SetBytes(topic.Bytes()), nil

	case abi.BoolTy:
		return new(big.Int).SetBytes(topic.Bytes()).Sign() != 0, nil

	default:
		return topic, nil
	}
}
