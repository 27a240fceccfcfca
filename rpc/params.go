package rpc

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goccy/go-json"
)

func wantParams(params []json.RawMessage, lo, hi int) error {
	if len(params) < lo || len(params) > hi {
		if lo == hi {
			return fmt.Errorf("%w: want %d, got %d", ErrWrongParamCount, lo, len(params))
		}

		return fmt.Errorf("%w: want %d to %d, got %d", ErrWrongParamCount, lo, hi, len(params))
	}

	return nil
}

// decodeParam unmarshals params[i] into out.
func decodeParam(params []json.RawMessage, i int, out any) error {
	if err := json.Unmarshal(params[i], out); err != nil {
		return fmt.Errorf("%w %d: %w", ErrInvalidParam, i, err)
	}

	return nil
}

func parseAddress(params []json.RawMessage, i int) (common.Address, error) {
	var s string
	if err := decodeParam(params, i, &s); err != nil {
		return common.Address{}, err
	}

	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w %d: not an address: %q", ErrInvalidParam, i, s)
	}

	return common.HexToAddress(s), nil
}
