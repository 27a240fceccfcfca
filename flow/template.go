package flow

import (
	"context"
	"fmt"
	"sync"

	"github.com/onchainnft/nftcreator/contracts"
	"github.com/onchainnft/nftcreator/preview"
	"github.com/onchainnft/nftcreator/types"
)

// DefaultColors are the slider positions a new template form starts at.
var DefaultColors = types.ColorParameters{Hue1: 0, Hue2: 120, Hue3: 240}

// TemplateMintForm mints from the generative template. Its parameters are
// the single source of truth; every change is pushed to the preview.
type TemplateMintForm struct {
	form
	s *Session

	mu      sync.Mutex
	params  types.ColorParameters
	preview *preview.Binding[types.ColorParameters]
}

// NewTemplateMintForm returns a form at DefaultColors. r may be nil.
func (s *Session) NewTemplateMintForm(r preview.Renderer[types.ColorParameters]) *TemplateMintForm {
	f := &TemplateMintForm{s: s, params: DefaultColors}
	f.setup("template", s.log)

	if r != nil {
		f.preview = preview.NewBinding(r)
		_ = f.preview.Push(f.params)
	}

	return f
}

func (f *TemplateMintForm) Params() types.ColorParameters {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.params
}

// SetHue moves slider n (1 to 3) to v.
func (f *TemplateMintForm) SetHue(n, v int) error {
	if n < 1 || n > 3 {
		return fmt.Errorf("%w: no hue %d", ErrValidation, n)
	}

	return f.SetParams(f.Params().With(n, v))
}

func (f *TemplateMintForm) SetParams(p types.ColorParameters) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	f.mu.Lock()
	f.params = p
	f.mu.Unlock()

	// render failures only affect the preview
	_ = f.preview.Push(p)

	return nil
}

// Submit mints with the current hues, passed to nftMint in slider order.
func (f *TemplateMintForm) Submit(ctx context.Context) (types.MintResult, error) {
	if err := f.acquire(); err != nil {
		return types.MintResult{}, err
	}

	return f.submitLocked(ctx, f.Params())
}

// SubmitParams moves the sliders to p and mints exactly p. A caller rejected
// as busy leaves the sliders and the preview untouched.
func (f *TemplateMintForm) SubmitParams(ctx context.Context, p types.ColorParameters) (types.MintResult, error) {
	if err := f.acquire(); err != nil {
		return types.MintResult{}, err
	}

	if err := p.Validate(); err != nil {
		err = fmt.Errorf("%w: %w", ErrValidation, err)
		f.release(err)

		return types.MintResult{}, err
	}

	f.mu.Lock()
	f.params = p
	f.mu.Unlock()

	_ = f.preview.Push(p)

	return f.submitLocked(ctx, p)
}

// submitLocked runs with the busy flag held and releases it.
func (f *TemplateMintForm) submitLocked(ctx context.Context, p types.ColorParameters) (types.MintResult, error) {
	if err := p.Validate(); err != nil {
		err = fmt.Errorf("%w: %w", ErrValidation, err)
		f.release(err)

		return types.MintResult{}, err
	}

	res, err := f.submit(ctx, p)

	f.release(err)

	return res, err
}

func (f *TemplateMintForm) submit(ctx context.Context, p types.ColorParameters) (types.MintResult, error) {
	ref, err := f.s.contracts.Get(contracts.TripleHelix)
	if err != nil {
		return types.MintResult{}, err
	}

	rc, err := f.s.submitter.Submit(ctx, ref, contracts.MethodMint, p.Args()...)
	if err != nil {
		return types.MintResult{}, err
	}

	res := f.s.mintResult(rc, ref.Address)
	f.log.Info().Str("tx", res.TxHash.Hex()).Interface("params", p).Msg("template minted")

	return res, nil
}
