package flow

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/onchainnft/nftcreator/contracts"
	"github.com/onchainnft/nftcreator/types"
)

type CollectionFields struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	FileType string `json:"fileType"`
}

// CreateResult is a mined collection creation. Collection is nil when the
// receipt did not carry a creation event the factory emitted.
type CreateResult struct {
	TxHash         common.Hash       `json:"txHash"`
	Collection     *types.Collection `json:"collection,omitempty"`
	MarketplaceURL string            `json:"marketplaceUrl,omitempty"`
}

// CollectionForm creates a new collection through the factory.
type CollectionForm struct {
	form
	s *Session

	mu     sync.Mutex
	fields CollectionFields
}

func (s *Session) NewCollectionForm() *CollectionForm {
	f := &CollectionForm{s: s}
	f.setup("collection", s.log)

	return f
}

func (f *CollectionForm) SetName(v string) {
	f.mu.Lock()
	f.fields.Name = v
	f.mu.Unlock()
}

func (f *CollectionForm) SetSymbol(v string) {
	f.mu.Lock()
	f.fields.Symbol = v
	f.mu.Unlock()
}

func (f *CollectionForm) SetFileType(v string) {
	f.mu.Lock()
	f.fields.FileType = v
	f.mu.Unlock()
}

func (f *CollectionForm) Set(v CollectionFields) {
	f.mu.Lock()
	f.fields = v
	f.mu.Unlock()
}

func (f *CollectionForm) Fields() CollectionFields {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.fields
}

func (v CollectionFields) validate() (types.FileType, error) {
	if strings.TrimSpace(v.Name) == "" {
		return "", fmt.Errorf("%w: name is required", ErrValidation)
	}

	if strings.TrimSpace(v.Symbol) == "" {
		return "", fmt.Errorf("%w: symbol is required", ErrValidation)
	}

	if strings.TrimSpace(v.FileType) == "" {
		return "", fmt.Errorf("%w: file type is required", ErrValidation)
	}

	ft, err := types.ParseFileType(v.FileType)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrValidation, err)
	}

	return ft, nil
}

// Submit creates the collection from the current fields and, once mined,
// clears the form and refreshes the session's collection list. A refresh
// failure after a mined creation is published on the view, not returned: the
// collection exists and resubmitting would create a second one.
func (f *CollectionForm) Submit(ctx context.Context) (CreateResult, error) {
	return f.submitWith(ctx, nil)
}

// SubmitWith replaces the fields with v and submits them as one step. The
// busy flag is taken before v is applied, so a rejected caller never
// overwrites the values of the submission in flight.
func (f *CollectionForm) SubmitWith(ctx context.Context, v CollectionFields) (CreateResult, error) {
	return f.submitWith(ctx, &v)
}

func (f *CollectionForm) submitWith(ctx context.Context, v *CollectionFields) (CreateResult, error) {
	if err := f.acquire(); err != nil {
		return CreateResult{}, err
	}

	f.mu.Lock()
	if v != nil {
		f.fields = *v
	}
	fields := f.fields
	f.mu.Unlock()

	ft, err := fields.validate()
	if err != nil {
		f.release(err)

		return CreateResult{}, err
	}

	res, err := f.submit(ctx, fields, ft)

	f.release(err)

	if err != nil {
		return CreateResult{}, err
	}

	if err := f.s.Refresh(ctx); err != nil {
		f.log.Warn().Err(err).Msg("refresh after creation failed")
	}

	return res, nil
}

func (f *CollectionForm) submit(ctx context.Context, fields CollectionFields, ft types.FileType) (CreateResult, error) {
	ref, err := f.s.contracts.Get(contracts.Factory)
	if err != nil {
		return CreateResult{}, err
	}

	rc, err := f.s.submitter.Submit(ctx, ref, contracts.MethodCreateCollection,
		strings.TrimSpace(fields.Name), strings.TrimSpace(fields.Symbol), ft.String())
	if err != nil {
		return CreateResult{}, err
	}

	f.mu.Lock()
	f.fields = CollectionFields{}
	f.mu.Unlock()

	res := CreateResult{TxHash: rc.TxHash}

	if c, ok := f.s.createdIn(rc, ref.Address); ok {
		res.Collection = &c
		res.MarketplaceURL = c.MarketplaceURL(f.s.market.BaseURL)
		f.log.Info().Str("name", c.Name).Str("address", c.Address.Hex()).Msg("collection created")
	}

	return res, nil
}
