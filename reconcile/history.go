package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

var ErrNoHistory = errors.New("no reconcile history")

// History keeps every reconcile outcome on the device, newest last.
type History struct {
	db *badger.DB
}

func NewHistory(db *badger.DB) *History {
	return &History{
		db: db,
	}
}

func historyPrefix(zoneID uint) []byte {
	return []byte(fmt.Sprintf("reconcile/%d/", zoneID))
}

// keys sort by start time because the timestamp is zero padded
func historyKey(outcome *Outcome) []byte {
	return []byte(fmt.Sprintf("reconcile/%d/%020d", outcome.ZoneID, outcome.StartedAt.UnixNano()))
}

func (h *History) Save(ctx context.Context, outcome *Outcome) error {
	raw, err := json.Marshal(outcome)
	if err != nil {
		return err
	}

	return h.db.Update(func(txn *badger.Txn) error {
		return txn.Set(historyKey(outcome), raw)
	})
}

// List returns up to limit outcomes of the zone, newest first. A limit of
// zero or less returns everything.
func (h *History) List(ctx context.Context, zoneID uint, limit int) ([]*Outcome, error) {
	outcomes := []*Outcome{}
	prefix := historyPrefix(zoneID)

	err := h.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		seek := append(append([]byte{}, prefix...), 0xff)
		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			var outcome Outcome
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &outcome)
			})
			if err != nil {
				return err
			}

			outcomes = append(outcomes, &outcome)
			if limit > 0 && len(outcomes) >= limit {
				break
			}
		}

		return nil
	})

	return outcomes, err
}

func (h *History) Last(ctx context.Context, zoneID uint) (*Outcome, error) {
	outcomes, err := h.List(ctx, zoneID, 1)
	if err != nil {
		return nil, err
	}

	if len(outcomes) == 0 {
		return nil, ErrNoHistory
	}

	return outcomes[0], nil
}
