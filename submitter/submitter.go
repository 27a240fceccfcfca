// Package submitter turns "send a contract write" and "wait until it is
// mined" into one call with a single failure condition.
package submitter

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/onchainnft/nftcreator/chain"
	"github.com/onchainnft/nftcreator/contracts"
	"github.com/onchainnft/nftcreator/library"
	"github.com/onchainnft/nftcreator/metrics"
)

const ErrSubmissionFailed = library.Error("submission failed")

// Submitter performs at most one chain write per Submit call and never
// retries.
type Submitter struct {
	client chain.Client
	log    zerolog.Logger
}

type Option func(*Submitter)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Submitter) {
		s.log = l
	}
}

func New(client chain.Client, opts ...Option) *Submitter {
	s := &Submitter{client: client, log: log.Logger}

	for _, o := range opts {
		o(s)
	}

	s.log = s.log.With().Str("component", "submitter").Logger()

	return s
}

// Submit calls method on ref with args and waits for the receipt. Any
// failure (no account, bad arguments, wallet rejection, revert, timeout) is
// returned wrapped in ErrSubmissionFailed with the cause chained. On revert
// the receipt is returned alongside the error.
func (s *Submitter) Submit(
	ctx context.Context,
	ref contracts.Ref,
	method string,
	args ...any,
) (*gethtypes.Receipt, error) {
	started := time.Now()
	status := Unknown
	sent := false

	l := s.log.With().Str("contract", string(ref.Name)).Str("address", ref.Address.Hex()).Str("method", method).Logger()

	defer func() {
		metrics.Submissions.WithLabelValues(string(ref.Name), method, status.String()).Inc()

		if sent {
			metrics.SubmissionDuration.WithLabelValues(string(ref.Name), method).Observe(time.Since(started).Seconds())
		}
	}()

	if _, ok := s.client.Account(); !ok {
		l.Warn().Msg("no connected account")

		status = Failed

		return nil, fmt.Errorf("%w: %w", ErrSubmissionFailed, chain.ErrNoAccount)
	}

	data, err := ref.Pack(method, args...)
	if err != nil {
		l.Error().Err(err).Msg("cannot encode call")

		status = Failed

		return nil, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}

	sent = true

	hash, err := s.client.WriteContract(ctx, chain.Call{To: ref.Address, Data: data})
	if err != nil {
		l.Error().Err(err).Msg("write rejected")

		status = Failed

		return nil, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}

	status = Submitted
	l = l.With().Str("tx", hash.Hex()).Logger()
	l.Info().Stringer("status", status).Msg("transaction submitted")

	rc, err := s.client.WaitForReceipt(ctx, hash)
	if err != nil {
		status = Failed
		l.Error().Err(err).Stringer("status", status).Msg("transaction did not settle")

		return rc, fmt.Errorf("%w: tx %s: %w", ErrSubmissionFailed, hash.Hex(), err)
	}

	status = Mined
	l.Info().
		Stringer("status", status).
		Uint64("gas_used", rc.GasUsed).
		Str("block", blockOf(rc)).
		Msg("transaction mined")

	return rc, nil
}

// TxHash is a convenience for callers that only keep the handle.
func TxHash(rc *gethtypes.Receipt) common.Hash {
	if rc == nil {
		return common.Hash{}
	}

	return rc.TxHash
}

func blockOf(rc *gethtypes.Receipt) string {
	if rc.BlockNumber == nil {
		return ""
	}

	return rc.BlockNumber.String()
}
