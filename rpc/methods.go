package rpc

import (
	"context"

	"github.com/goccy/go-json"

	"github.com/onchainnft/nftcreator/contracts"
	"github.com/onchainnft/nftcreator/flow"
	"github.com/onchainnft/nftcreator/types"
)

type accountResult struct {
	Account   string `json:"account,omitempty"`
	Connected bool   `json:"connected"`
}

func (s *Server) account(_ context.Context, params []json.RawMessage) (any, error) {
	if err := wantParams(params, 0, 0); err != nil {
		return nil, err
	}

	a, ok := s.session.Account()
	if !ok {
		return accountResult{}, nil
	}

	return accountResult{Account: a.Hex(), Connected: true}, nil
}

func (s *Server) listCollections(_ context.Context, params []json.RawMessage) (any, error) {
	if err := wantParams(params, 0, 0); err != nil {
		return nil, err
	}

	return s.session.Collections(), nil
}

// refresh reconciles and returns the published snapshot. A refresh that lost
// to a newer one still reports its own error.
func (s *Server) refresh(ctx context.Context, params []json.RawMessage) (any, error) {
	if err := wantParams(params, 0, 0); err != nil {
		return nil, err
	}

	if err := s.session.Refresh(ctx); err != nil {
		return nil, err
	}

	return s.session.Collections(), nil
}

// createCollection takes [{name, symbol, fileType}].
func (s *Server) createCollection(ctx context.Context, params []json.RawMessage) (any, error) {
	if err := wantParams(params, 1, 1); err != nil {
		return nil, err
	}

	var fields flow.CollectionFields
	if err := decodeParam(params, 0, &fields); err != nil {
		return nil, err
	}

	return s.create.SubmitWith(ctx, fields)
}

func (s *Server) templates(_ context.Context, params []json.RawMessage) (any, error) {
	if err := wantParams(params, 0, 0); err != nil {
		return nil, err
	}

	return contracts.Templates(), nil
}

// setHues takes [{hue1, hue2, hue3}] and moves the template sliders.
func (s *Server) setHues(_ context.Context, params []json.RawMessage) (any, error) {
	if err := wantParams(params, 1, 1); err != nil {
		return nil, err
	}

	var p types.ColorParameters
	if err := decodeParam(params, 0, &p); err != nil {
		return nil, err
	}

	if err := s.template.SetParams(p); err != nil {
		return nil, err
	}

	return s.template.Params(), nil
}

// mintTemplate mints with the current hues, or with [{hue1, hue2, hue3}]
// when given.
func (s *Server) mintTemplate(ctx context.Context, params []json.RawMessage) (any, error) {
	if err := wantParams(params, 0, 1); err != nil {
		return nil, err
	}

	if len(params) == 0 {
		return s.template.Submit(ctx)
	}

	var p types.ColorParameters
	if err := decodeParam(params, 0, &p); err != nil {
		return nil, err
	}

	return s.template.SubmitParams(ctx, p)
}

// mintCustom takes [collectionAddress, {title, description, code}]. The
// collection must be in the current listing.
func (s *Server) mintCustom(ctx context.Context, params []json.RawMessage) (any, error) {
	if err := wantParams(params, 2, 2); err != nil {
		return nil, err
	}

	addr, err := parseAddress(params, 0)
	if err != nil {
		return nil, err
	}

	var fields flow.CustomFields
	if err := decodeParam(params, 1, &fields); err != nil {
		return nil, err
	}

	f, err := s.customForm(addr)
	if err != nil {
		return nil, err
	}

	return f.SubmitWith(ctx, fields)
}

type formStatus struct {
	State   string                   `json:"state"`
	Pending types.PendingTransaction `json:"pending"`
}

type formStates struct {
	Collection formStatus            `json:"collection"`
	Template   formStatus            `json:"template"`
	Hues       types.ColorParameters `json:"hues"`
	Custom     map[string]formStatus `json:"custom,omitempty"`
}

func (s *Server) formState(_ context.Context, params []json.RawMessage) (any, error) {
	if err := wantParams(params, 0, 0); err != nil {
		return nil, err
	}

	out := formStates{
		Collection: formStatus{State: s.create.State().String(), Pending: s.create.Pending()},
		Template:   formStatus{State: s.template.State().String(), Pending: s.template.Pending()},
		Hues:       s.template.Params(),
		Custom:     make(map[string]formStatus),
	}

	s.mu.Lock()
	for addr, f := range s.custom {
		out.Custom[addr.Hex()] = formStatus{State: f.State().String(), Pending: f.Pending()}
	}
	s.mu.Unlock()

	return out, nil
}
