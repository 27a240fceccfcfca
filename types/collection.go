// Package types holds the data model shared by the flows, the reconciler and
// the RPC surface.
package types

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

type FileType string

const (
	FileTypeHTML FileType = "html"
	FileTypeSVG  FileType = "svg"
)

func (f FileType) Valid() bool {
	return f == FileTypeHTML || f == FileTypeSVG
}

func (f FileType) String() string {
	return string(f)
}

// ParseFileType accepts user input. Surrounding space and case are ignored.
func ParseFileType(s string) (FileType, error) {
	f := FileType(strings.ToLower(strings.TrimSpace(s)))
	if !f.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidFileType, s)
	}

	return f, nil
}

// Collection is one NFT series deployed by the factory. It only ever comes
// from a NFTContractCreated log; FileType is kept verbatim from the chain even
// when it is not one of the known values.
type Collection struct {
	Name     string         `json:"name"     cbor:"1,keyasint"`
	Symbol   string         `json:"symbol"   cbor:"2,keyasint"`
	FileType FileType       `json:"fileType" cbor:"3,keyasint"`
	Address  common.Address `json:"address"  cbor:"4,keyasint"`

	Creator     common.Address `json:"creator"     cbor:"5,keyasint"`
	BlockNumber uint64         `json:"blockNumber" cbor:"6,keyasint"`
	TxHash      common.Hash    `json:"txHash"      cbor:"7,keyasint"`
	LogIndex    uint           `json:"logIndex"    cbor:"8,keyasint"`
}

// Newer reports whether c was created after o in chain order.
func (c Collection) Newer(o Collection) bool {
	if c.BlockNumber != o.BlockNumber {
		return c.BlockNumber > o.BlockNumber
	}

	return c.LogIndex > o.LogIndex
}

var slugSpaces = regexp.MustCompile(`\s+`)

// MarketplaceURL is the collection page on an OpenSea-style marketplace.
func (c Collection) MarketplaceURL(base string) string {
	slug := slugSpaces.ReplaceAllString(strings.ToLower(c.Name), "-")

	return strings.TrimRight(base, "/") + "/collection/" + url.PathEscape(slug)
}
