package rpc

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/onchainnft/nftcreator/chain/chaintest"
	"github.com/onchainnft/nftcreator/contracts"
	"github.com/onchainnft/nftcreator/flow"
	"github.com/onchainnft/nftcreator/library/tests"
	"github.com/onchainnft/nftcreator/preview"
	"github.com/onchainnft/nftcreator/reconciler"
	"github.com/onchainnft/nftcreator/submitter"
	"github.com/onchainnft/nftcreator/types"
)

var (
	factoryAddr = tests.Addr(0xFA)
	helixAddr   = tests.Addr(0x7E)
	alice       = tests.Addr(0xAB)
)

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *Error          `json:"error"`
	ID      any             `json:"id"`
}

func setupServer(t *testing.T, opts ...Option) (*httptest.Server, *chaintest.Chain) {
	t.Helper()

	c := chaintest.New(alice, factoryAddr, 1000)
	reg := contracts.NewRegistry(factoryAddr, helixAddr)

	ref, err := reg.Get(contracts.Factory)
	require.NoError(t, err)

	rec, err := reconciler.New(c, ref, reconciler.Config{StartBlock: 1000})
	require.NoError(t, err)

	session, err := flow.NewSession(c, reg, submitter.New(c), rec,
		flow.Marketplace{BaseURL: "https://testnets.opensea.io", Network: "sepolia"})
	require.NoError(t, err)

	srv := httptest.NewServer(NewServer(session, opts...).Handler())
	t.Cleanup(srv.Close)

	return srv, c
}

func call(t *testing.T, srv *httptest.Server, method string, params ...any) rpcResponse {
	t.Helper()

	out, err := post(srv, method, params...)
	require.NoError(t, err)
	require.Equal(t, "2.0", out.JSONRPC)

	return out
}

// post is call without assertions, for use off the test goroutine.
func post(srv *httptest.Server, method string, params ...any) (rpcResponse, error) {
	if params == nil {
		params = []any{}
	}

	body, err := json.Marshal(map[string]any{"jsonrpc": "2.0", "id": 1, "method": method, "params": params})
	if err != nil {
		return rpcResponse{}, err
	}

	resp, err := http.Post(srv.URL+"/rpc", "application/json", bytes.NewReader(body))
	if err != nil {
		return rpcResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return rpcResponse{}, fmt.Errorf("status %d", resp.StatusCode)
	}

	var out rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return rpcResponse{}, err
	}

	return out, nil
}

func result[T any](t *testing.T, r rpcResponse) T {
	t.Helper()

	require.Nil(t, r.Error)

	var v T
	require.NoError(t, json.Unmarshal(r.Result, &v))

	return v
}

func TestCreateThenList(t *testing.T) {
	srv, _ := setupServer(t)

	created := result[flow.CreateResult](t, call(t, srv, "nft_createCollection",
		map[string]string{"name": "Foo", "symbol": "FOO", "fileType": "svg"}))
	require.NotNil(t, created.Collection)
	require.Equal(t, "Foo", created.Collection.Name)

	snap := result[reconciler.Snapshot](t, call(t, srv, "nft_listCollections"))
	require.Len(t, snap.Collections, 1)
	require.Equal(t, created.Collection.Address, snap.Collections[0].Address)
	require.Equal(t, "1 collections found", snap.Message)

	snap = result[reconciler.Snapshot](t, call(t, srv, "nft_refresh"))
	require.Len(t, snap.Collections, 1)
}

func TestCreateValidationError(t *testing.T) {
	srv, c := setupServer(t)

	r := call(t, srv, "nft_createCollection", map[string]string{"name": "Foo", "symbol": "FOO", "fileType": "gif"})
	require.NotNil(t, r.Error)
	require.Equal(t, codeInvalidParams, r.Error.Code)
	require.Empty(t, c.Writes())

	state := result[formStates](t, call(t, srv, "nft_formState"))
	require.Equal(t, "Idle", state.Collection.State)
	require.NotEmpty(t, state.Collection.Pending.Err)
}

func TestSubmissionErrorCode(t *testing.T) {
	srv, c := setupServer(t)

	c.Disconnect()

	r := call(t, srv, "nft_createCollection", map[string]string{"name": "Foo", "symbol": "FOO", "fileType": "svg"})
	require.NotNil(t, r.Error)
	require.Equal(t, codeNoAccount, r.Error.Code)

	r = call(t, srv, "nft_refresh")
	require.NotNil(t, r.Error)
	require.Equal(t, codeNoAccount, r.Error.Code)

	acc := result[accountResult](t, call(t, srv, "nft_account"))
	require.False(t, acc.Connected)
}

func TestMintTemplate(t *testing.T) {
	srv, c := setupServer(t)

	hues := result[types.ColorParameters](t, call(t, srv, "nft_setHues", types.ColorParameters{Hue1: 10, Hue2: 200, Hue3: 300}))
	require.Equal(t, types.ColorParameters{Hue1: 10, Hue2: 200, Hue3: 300}, hues)

	minted := result[types.MintResult](t, call(t, srv, "nft_mintTemplate"))
	require.Equal(t, helixAddr, minted.Contract)
	require.EqualValues(t, 1, minted.TokenID.Int64())
	require.Len(t, c.Writes(), 1)

	r := call(t, srv, "nft_mintTemplate", types.ColorParameters{Hue1: 400})
	require.NotNil(t, r.Error)
	require.Equal(t, codeInvalidParams, r.Error.Code)
	require.Len(t, c.Writes(), 1)
}

func TestCreateWhileSubmittingIsBusy(t *testing.T) {
	srv, c := setupServer(t)

	release := c.Hold()
	defer release()

	var (
		wg       sync.WaitGroup
		first    rpcResponse
		firstErr error
	)

	wg.Add(1)

	go func() {
		defer wg.Done()

		first, firstErr = post(srv, "nft_createCollection",
			map[string]string{"name": "Foo", "symbol": "FOO", "fileType": "svg"})
	}()

	require.Eventually(t, func() bool { return len(c.Writes()) == 1 }, time.Second, time.Millisecond)

	r := call(t, srv, "nft_createCollection", map[string]string{"name": "Bar", "symbol": "BAR", "fileType": "html"})
	require.NotNil(t, r.Error)
	require.Equal(t, codeBusy, r.Error.Code)

	state := result[formStates](t, call(t, srv, "nft_formState"))
	require.Equal(t, "Submitting", state.Collection.State)

	release()
	wg.Wait()

	require.NoError(t, firstErr)

	created := result[flow.CreateResult](t, first)
	require.NotNil(t, created.Collection)
	require.Equal(t, "Foo", created.Collection.Name)
	require.Len(t, c.Writes(), 1)

	snap := result[reconciler.Snapshot](t, call(t, srv, "nft_listCollections"))
	require.Len(t, snap.Collections, 1)
	require.Equal(t, "Foo", snap.Collections[0].Name)
}

func TestConcurrentMintTemplateMintsCallerHues(t *testing.T) {
	var (
		renderMu sync.Mutex
		rendered []types.ColorParameters
	)

	srv, c := setupServer(t, WithPreview(preview.RendererFunc[types.ColorParameters](func(p types.ColorParameters) error {
		renderMu.Lock()
		rendered = append(rendered, p)
		renderMu.Unlock()

		return nil
	})))

	requests := []types.ColorParameters{{Hue1: 1, Hue2: 2, Hue3: 3}, {Hue1: 4, Hue2: 5, Hue3: 6}}
	mint := contracts.TripleHelixABI.Methods[contracts.MethodMint]

	for round := range 20 {
		responses := make([]rpcResponse, len(requests))
		errs := make([]error, len(requests))

		var wg sync.WaitGroup

		for i, p := range requests {
			wg.Add(1)

			go func() {
				defer wg.Done()

				responses[i], errs[i] = post(srv, "nft_mintTemplate", p)
			}()
		}

		wg.Wait()

		writes := c.Writes()

		for i, r := range responses {
			require.NoError(t, errs[i])

			if r.Error != nil {
				require.Equal(t, codeBusy, r.Error.Code, "round %d caller %d", round, i)

				continue
			}

			minted := result[types.MintResult](t, r)

			// helix token ids follow the order of writes
			w := writes[minted.TokenID.Int64()-1]
			require.Equal(t, helixAddr, w.To)
			require.Equal(t, mint.ID, w.Data[:4])

			args, err := mint.Inputs.Unpack(w.Data[4:])
			require.NoError(t, err)

			want := requests[i]
			require.Equal(t,
				[]any{big.NewInt(int64(want.Hue1)), big.NewInt(int64(want.Hue2)), big.NewInt(int64(want.Hue3))},
				args, "round %d caller %d", round, i)
		}
	}

	renderMu.Lock()
	defer renderMu.Unlock()

	for _, p := range rendered[1:] {
		require.Contains(t, requests, p)
	}
}

func TestMintCustom(t *testing.T) {
	srv, c := setupServer(t)

	r := call(t, srv, "nft_mintCustom", tests.Addr(0x01).Hex(), flow.CustomFields{Title: "t", Description: "d", Code: "<svg/>"})
	require.NotNil(t, r.Error)
	require.Equal(t, codeNotFound, r.Error.Code)

	created := result[flow.CreateResult](t, call(t, srv, "nft_createCollection",
		map[string]string{"name": "Mine", "symbol": "MINE", "fileType": "svg"}))

	minted := result[types.MintResult](t, call(t, srv, "nft_mintCustom",
		created.Collection.Address.Hex(), flow.CustomFields{Title: "t", Description: "d", Code: "<svg/>"}))
	require.Equal(t, created.Collection.Address, minted.Contract)
	require.EqualValues(t, 1, minted.TokenID.Int64())
	require.Contains(t, minted.MarketplaceURL, "/assets/sepolia/")
	require.Equal(t, created.Collection.Address, c.Writes()[1].To)

	state := result[formStates](t, call(t, srv, "nft_formState"))
	require.Contains(t, state.Custom, created.Collection.Address.Hex())
}

func TestProtocolErrors(t *testing.T) {
	srv, _ := setupServer(t)

	r := call(t, srv, "nft_nope")
	require.Equal(t, codeMethodNotFound, r.Error.Code)

	r = call(t, srv, "nft_listCollections", 1)
	require.Equal(t, codeInvalidParams, r.Error.Code)

	r = call(t, srv, "nft_mintCustom", "not-an-address", map[string]string{})
	require.Equal(t, codeInvalidParams, r.Error.Code)

	resp, err := http.Post(srv.URL+"/rpc", "application/json", bytes.NewReader([]byte("{")))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out rpcResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Equal(t, codeParseError, out.Error.Code)

	get, err := http.Get(srv.URL + "/rpc")
	require.NoError(t, err)
	defer get.Body.Close()
	require.Equal(t, http.StatusMethodNotAllowed, get.StatusCode)
}

func TestTemplatesAndHealth(t *testing.T) {
	srv, _ := setupServer(t)

	tpls := result[[]contracts.Template](t, call(t, srv, "nft_templates"))
	require.Len(t, tpls, 3)
	require.True(t, tpls[0].Available)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	var health map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	require.Equal(t, "healthy", health["status"])
	require.Equal(t, true, health["connected"])
}

func TestCodeOfUnknown(t *testing.T) {
	require.Equal(t, codeInternal, codeOf(errors.New("boom")))
}
