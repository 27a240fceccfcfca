package rpc

import (
	"errors"

	"github.com/onchainnft/nftcreator/chain"
	"github.com/onchainnft/nftcreator/flow"
	"github.com/onchainnft/nftcreator/library"
	"github.com/onchainnft/nftcreator/reconciler"
	"github.com/onchainnft/nftcreator/submitter"
	"github.com/onchainnft/nftcreator/types"
)

const (
	ErrMethodNotFound  = library.Error("method not found")
	ErrWrongParamCount = library.Error("wrong number of parameters")
	ErrInvalidParam    = library.Error("invalid parameter")
)

// codeOf maps an error to its JSON-RPC error code.
func codeOf(err error) int {
	switch {
	case errors.Is(err, ErrMethodNotFound):
		return codeMethodNotFound
	case errors.Is(err, ErrWrongParamCount),
		errors.Is(err, ErrInvalidParam),
		errors.Is(err, flow.ErrValidation),
		errors.Is(err, types.ErrHueOutOfRange),
		errors.Is(err, types.ErrInvalidFileType):
		return codeInvalidParams
	case errors.Is(err, flow.ErrBusy):
		return codeBusy
	case errors.Is(err, chain.ErrNoAccount):
		return codeNoAccount
	case errors.Is(err, submitter.ErrSubmissionFailed):
		return codeSubmissionFailed
	case errors.Is(err, reconciler.ErrReconcileFailed):
		return codeReconcileFailed
	case errors.Is(err, flow.ErrCollectionNotFound):
		return codeNotFound
	default:
		return codeInternal
	}
}
