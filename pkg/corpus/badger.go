package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/parsdesk/dana/pkg/types"
)

const passageKeyPrefix = "passage/"

// Store is a BadgerDB-backed passage corpus for deployments where the
// indexed set outlives the process. Keys are iterated in order, so query
// results have a stable order across runs.
type Store struct {
	db *badger.DB
}

// Verify it implements the interface
var _ Corpus = (*Store)(nil)

// NewStore opens (or creates) a passage store at the given path.
func NewStore(path string) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open passage store: %w", err)
	}
	return &Store{db: db}, nil
}

// Put indexes passages, overwriting any existing entries with the same id.
func (s *Store) Put(passages ...*types.Passage) error {
	return s.db.Update(func(txn *badger.Txn) error {
		for _, p := range passages {
			if err := p.Validate(); err != nil {
				return err
			}
			data, err := json.Marshal(p)
			if err != nil {
				return fmt.Errorf("failed to encode passage %s: %w", p.ID, err)
			}
			if err := txn.Set([]byte(passageKeyPrefix+p.ID), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// Query implements Corpus.
func (s *Store) Query(ctx context.Context, categoryFilter string) ([]*types.Passage, error) {
	var out []*types.Passage

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(passageKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var p types.Passage
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &p)
			})
			if err != nil {
				return fmt.Errorf("failed to decode passage %s: %w", it.Item().Key(), err)
			}
			if categoryFilter != "" && !strings.EqualFold(p.Metadata.Category, categoryFilter) {
				continue
			}
			passage := p
			out = append(out, &passage)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Count implements Corpus.
func (s *Store) Count(ctx context.Context) (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(passageKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// Close implements Corpus.
func (s *Store) Close() error {
	return s.db.Close()
}
