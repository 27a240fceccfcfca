package types

import (
	"fmt"
	"math/big"
)

const (
	MinHue = 0
	MaxHue = 360
)

// ColorParameters drive the generative template. They are plain values: the
// preview renderer receives a copy on every change and never owns them.
type ColorParameters struct {
	Hue1 int `json:"hue1"`
	Hue2 int `json:"hue2"`
	Hue3 int `json:"hue3"`
}

func (p ColorParameters) Validate() error {
	for i, h := range [...]int{p.Hue1, p.Hue2, p.Hue3} {
		if h < MinHue || h > MaxHue {
			return fmt.Errorf("%w: hue%d=%d not in [%d,%d]", ErrHueOutOfRange, i+1, h, MinHue, MaxHue)
		}
	}

	return nil
}

// Args are the nftMint arguments, in order.
func (p ColorParameters) Args() []any {
	return []any{big.NewInt(int64(p.Hue1)), big.NewInt(int64(p.Hue2)), big.NewInt(int64(p.Hue3))}
}

// With returns p with hue n (1-based) set to v.
func (p ColorParameters) With(n int, v int) ColorParameters {
	switch n {
	case 1:
		p.Hue1 = v
	case 2:
		p.Hue2 = v
	case 3:
		p.Hue3 = v
	}

	return p
}
