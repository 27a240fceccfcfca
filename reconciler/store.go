package reconciler

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fxamacker/cbor/v2"
	"github.com/ledgerwatch/erigon-lib/kv"
	"github.com/ledgerwatch/erigon-lib/kv/mdbx"
	mdbxlog "github.com/ledgerwatch/log/v3"

	"github.com/onchainnft/nftcreator/types"
)

const checkpointBucket = "collections" // factory ++ account -> Checkpoint

func Tables() kv.TableCfg {
	return kv.TableCfg{
		checkpointBucket: {},
	}
}

// Checkpoint is what incremental reconciliation remembers per
// (factory, account): the last block already scanned and what it found.
// StartBlock guards against reusing a cache built with another start block.
type Checkpoint struct {
	StartBlock  uint64             `cbor:"1,keyasint"`
	HighWater   uint64             `cbor:"2,keyasint"`
	Collections []types.Collection `cbor:"3,keyasint"`
}

// Store is an MDBX-backed cache of reconciliation checkpoints. It only ever
// holds data copied from confirmed logs.
type Store struct {
	db kv.RwDB
}

func OpenStore(path string) (*Store, error) {
	db, err := mdbx.NewMDBX(mdbxlog.New()).
		Path(path).
		WithTableCfg(func(_ kv.TableCfg) kv.TableCfg {
			return Tables()
		}).
		Open()
	if err != nil {
		return nil, fmt.Errorf("open reconcile cache %s: %w", path, err)
	}

	return NewStore(db), nil
}

func NewStore(db kv.RwDB) *Store {
	return &Store{db: db}
}

func checkpointKey(factory, account common.Address) []byte {
	return append(factory.Bytes(), account.Bytes()...)
}

func (s *Store) Load(ctx context.Context, factory, account common.Address) (Checkpoint, bool, error) {
	var (
		cp    Checkpoint
		found bool
	)

	err := s.db.View(ctx, func(tx kv.Tx) error {
		v, err := tx.GetOne(checkpointBucket, checkpointKey(factory, account))
		if err != nil {
			return err
		}

		if len(v) == 0 {
			return nil
		}

		found = true

		return cbor.Unmarshal(v, &cp)
	})
	if err != nil {
		return Checkpoint{}, false, fmt.Errorf("load checkpoint: %w", err)
	}

	return cp, found, nil
}

func (s *Store) Save(ctx context.Context, factory, account common.Address, cp Checkpoint) error {
	v, err := cbor.Marshal(cp)
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}

	err = s.db.Update(ctx, func(tx kv.RwTx) error {
		return tx.Put(checkpointBucket, checkpointKey(factory, account), v)
	})
	if err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}

	return nil
}

// Reset forgets the checkpoint, forcing the next fetch to rescan.
func (s *Store) Reset(ctx context.Context, factory, account common.Address) error {
	return s.db.Update(ctx, func(tx kv.RwTx) error {
		return tx.Delete(checkpointBucket, checkpointKey(factory, account))
	})
}

func (s *Store) Close() {
	s.db.Close()
}
