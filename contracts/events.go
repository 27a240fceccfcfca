package contracts

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// CollectionCreated is NFTContractCreated as emitted by the factory.
type CollectionCreated struct {
	Creator  common.Address `abi:"creator"`
	Contract common.Address `abi:"contractAddress"`
	Name     string         `abi:"name"`
	Symbol   string         `abi:"symbol"`
	FileType string         `abi:"fileType"`
}

// Transfer is the ERC-721 Transfer event; tokenId is indexed.
type Transfer struct {
	From    common.Address `abi:"from"`
	To      common.Address `abi:"to"`
	TokenID *big.Int       `abi:"tokenId"`
}

func CollectionCreatedID() common.Hash {
	return FactoryABI.Events[EventCollectionCreated].ID
}

func TransferID() common.Hash {
	return CustomMintABI.Events[EventTransfer].ID
}
