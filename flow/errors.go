package flow

import "github.com/onchainnft/nftcreator/library"

const (
	ErrValidation = library.Error("validation failed")
	ErrBusy       = library.Error("a submission is already in flight")

	ErrCollectionNotFound = library.Error("collection not found")
)
