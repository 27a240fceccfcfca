package contracts

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const (
	factoryABIJSON = `[
 {"type":"function","name":"createNFTContract","stateMutability":"nonpayable","inputs":[
  {"name":"name","type":"string"},{"name":"symbol","type":"string"},{"name":"fileType","type":"string"}],"outputs":[]},
 {"type":"event","name":"NFTContractCreated","anonymous":false,"inputs":[
  {"name":"creator","type":"address","indexed":true},
  {"name":"contractAddress","type":"address","indexed":true},
  {"name":"name","type":"string","indexed":false},
  {"name":"symbol","type":"string","indexed":false},
  {"name":"fileType","type":"string","indexed":false}]}
]`

	tripleHelixABIJSON = `[
 {"type":"function","name":"nftMint","stateMutability":"nonpayable","inputs":[
  {"name":"hue1","type":"uint256"},{"name":"hue2","type":"uint256"},{"name":"hue3","type":"uint256"}],"outputs":[]},
 {"type":"event","name":"Transfer","anonymous":false,"inputs":[
  {"name":"from","type":"address","indexed":true},
  {"name":"to","type":"address","indexed":true},
  {"name":"tokenId","type":"uint256","indexed":true}]}
]`

	customMintABIJSON = `[
 {"type":"function","name":"nftMint","stateMutability":"nonpayable","inputs":[
  {"name":"title","type":"string"},{"name":"description","type":"string"},{"name":"data","type":"string"}],"outputs":[]},
 {"type":"event","name":"Transfer","anonymous":false,"inputs":[
  {"name":"from","type":"address","indexed":true},
  {"name":"to","type":"address","indexed":true},
  {"name":"tokenId","type":"uint256","indexed":true}]}
]`
)

const (
	MethodCreateCollection = "createNFTContract"
	MethodMint             = "nftMint"

	EventCollectionCreated = "NFTContractCreated"
	EventTransfer          = "Transfer"
)

//nolint:gochecknoglobals // parsed once, read only
var (
	FactoryABI     = mustParse(factoryABIJSON)
	TripleHelixABI = mustParse(tripleHelixABIJSON)
	CustomMintABI  = mustParse(customMintABIJSON)
)

func mustParse(s string) abi.ABI {
	a, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(err)
	}

	return a
}
