// Package rpc serves the collection and mint flows over JSON-RPC 2.0.
package rpc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/onchainnft/nftcreator/flow"
	"github.com/onchainnft/nftcreator/preview"
	"github.com/onchainnft/nftcreator/types"
)

type Handler func(ctx context.Context, params []json.RawMessage) (any, error)

// Server exposes one session. Each form lives as long as the server, so
// the busy flag of a form covers every client.
type Server struct {
	session  *flow.Session
	create   *flow.CollectionForm
	template *flow.TemplateMintForm

	mu     sync.Mutex
	custom map[common.Address]*flow.CustomMintForm

	methods map[string]Handler
	log     zerolog.Logger
}

type Option func(*Server)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) {
		s.log = l
	}
}

// WithPreview renders every change of the template hues with r.
func WithPreview(r preview.Renderer[types.ColorParameters]) Option {
	return func(s *Server) {
		s.template = s.session.NewTemplateMintForm(r)
	}
}

func NewServer(session *flow.Session, opts ...Option) *Server {
	s := &Server{
		session: session,
		create:  session.NewCollectionForm(),
		custom:  make(map[common.Address]*flow.CustomMintForm),
		log:     log.Logger,
	}

	for _, o := range opts {
		o(s)
	}

	if s.template == nil {
		s.template = session.NewTemplateMintForm(nil)
	}

	s.log = s.log.With().Str("component", "rpc").Logger()

	s.methods = map[string]Handler{
		"nft_account":          s.account,
		"nft_listCollections":  s.listCollections,
		"nft_refresh":          s.refresh,
		"nft_createCollection": s.createCollection,
		"nft_templates":        s.templates,
		"nft_setHues":          s.setHues,
		"nft_mintTemplate":     s.mintTemplate,
		"nft_mintCustom":       s.mintCustom,
		"nft_formState":        s.formState,
	}

	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/rpc", s.handleRPC)
	mux.HandleFunc("/health", s.handleHealth)

	return mux
}

// ListenAndServe serves until ctx is done. writeTimeout must cover a
// receipt wait.
func (s *Server) ListenAndServe(ctx context.Context, addr string, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Warn().Err(err).Msg("rpc shutdown")
		}
	}()

	s.log.Info().Str("addr", addr).Msg("rpc server listening")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	_, connected := s.session.Account()

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(map[string]any{"status": "healthy", "connected": connected}); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	var req JSONRPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeResponse(w, newErrorResponse(&Error{Code: codeParseError, Message: "Parse error"}, nil))

		return
	}

	if req.JSONRPC != jsonRPCVersion || req.Method == "" {
		s.writeResponse(w, newErrorResponse(&Error{Code: codeInvalidRequest, Message: "Invalid Request"}, req.ID))

		return
	}

	result, err := s.call(r.Context(), req.Method, req.Params)
	if err != nil {
		s.log.Debug().Err(err).Str("method", req.Method).Msg("rpc call failed")
		s.writeResponse(w, newErrorResponse(&Error{Code: codeOf(err), Message: err.Error()}, req.ID))

		return
	}

	s.writeResponse(w, JSONRPCResponse{JSONRPC: jsonRPCVersion, Result: result, ID: req.ID})
}

func (s *Server) call(ctx context.Context, method string, params []json.RawMessage) (any, error) {
	h, ok := s.methods[method]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMethodNotFound, method)
	}

	return h(ctx, params)
}

func (s *Server) writeResponse(w http.ResponseWriter, resp JSONRPCResponse) {
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func newErrorResponse(err *Error, id any) JSONRPCResponse {
	return JSONRPCResponse{JSONRPC: jsonRPCVersion, Error: err, ID: id}
}

// customForm returns the long-lived mint form of the collection at addr.
func (s *Server) customForm(addr common.Address) (*flow.CustomMintForm, error) {
	c, ok := s.session.Collection(addr)
	if !ok {
		return nil, fmt.Errorf("%w: %s", flow.ErrCollectionNotFound, addr.Hex())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.custom[addr]
	if !ok {
		f = s.session.NewCustomMintForm(c)
		s.custom[addr] = f
	}

	return f, nil
}
