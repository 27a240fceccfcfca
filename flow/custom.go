package flow

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/onchainnft/nftcreator/contracts"
	"github.com/onchainnft/nftcreator/types"
)

type CustomFields struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Code        string `json:"code"`
}

// CustomMintForm mints one token of a custom collection from user supplied
// html or svg code.
type CustomMintForm struct {
	form
	s          *Session
	collection types.Collection

	mu     sync.Mutex
	fields CustomFields
}

func (s *Session) NewCustomMintForm(c types.Collection) *CustomMintForm {
	f := &CustomMintForm{s: s, collection: c}
	f.setup("custom", s.log)

	return f
}

func (f *CustomMintForm) Collection() types.Collection {
	return f.collection
}

func (f *CustomMintForm) SetTitle(v string) {
	f.mu.Lock()
	f.fields.Title = v
	f.mu.Unlock()
}

func (f *CustomMintForm) SetDescription(v string) {
	f.mu.Lock()
	f.fields.Description = v
	f.mu.Unlock()
}

func (f *CustomMintForm) SetCode(v string) {
	f.mu.Lock()
	f.fields.Code = v
	f.mu.Unlock()
}

func (f *CustomMintForm) Set(v CustomFields) {
	f.mu.Lock()
	f.fields = v
	f.mu.Unlock()
}

func (f *CustomMintForm) Fields() CustomFields {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.fields
}

func (v CustomFields) validate() error {
	switch {
	case strings.TrimSpace(v.Title) == "":
		return fmt.Errorf("%w: title is required", ErrValidation)
	case strings.TrimSpace(v.Description) == "":
		return fmt.Errorf("%w: description is required", ErrValidation)
	case strings.TrimSpace(v.Code) == "":
		return fmt.Errorf("%w: code is required", ErrValidation)
	}

	return nil
}

// EncodeCode is the on-chain form of token code.
func EncodeCode(code string) string {
	return base64.StdEncoding.EncodeToString([]byte(code))
}

// Submit mints the token from the current fields on the collection contract.
func (f *CustomMintForm) Submit(ctx context.Context) (types.MintResult, error) {
	return f.submitWith(ctx, nil)
}

// SubmitWith replaces the fields with v and mints them as one step, taking
// the busy flag before v is applied.
func (f *CustomMintForm) SubmitWith(ctx context.Context, v CustomFields) (types.MintResult, error) {
	return f.submitWith(ctx, &v)
}

func (f *CustomMintForm) submitWith(ctx context.Context, v *CustomFields) (types.MintResult, error) {
	if err := f.acquire(); err != nil {
		return types.MintResult{}, err
	}

	f.mu.Lock()
	if v != nil {
		f.fields = *v
	}
	fields := f.fields
	f.mu.Unlock()

	err := fields.validate()
	if err == nil && f.collection.Address == (common.Address{}) {
		err = fmt.Errorf("%w: %w", ErrValidation, contracts.ErrZeroAddress)
	}

	if err != nil {
		f.release(err)

		return types.MintResult{}, err
	}

	res, err := f.submit(ctx, fields)

	f.release(err)

	return res, err
}

func (f *CustomMintForm) submit(ctx context.Context, fields CustomFields) (types.MintResult, error) {
	ref := f.s.contracts.Collection(f.collection.Address)

	rc, err := f.s.submitter.Submit(ctx, ref, contracts.MethodMint,
		fields.Title, fields.Description, EncodeCode(fields.Code))
	if err != nil {
		return types.MintResult{}, err
	}

	res := f.s.mintResult(rc, ref.Address)
	f.log.Info().
		Str("tx", res.TxHash.Hex()).
		Str("collection", f.collection.Name).
		Str("marketplace", res.MarketplaceURL).
		Msg("token minted")

	return res, nil
}
