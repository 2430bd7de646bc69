package journal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"

	"github.com/zenithex/zenex/matching"
)

const keyPrefix = "reconcile/"

// Outbox is the durable queue of balance and persistence mutations that
// failed against an external dependency after the book was already
// mutated. Entries survive restarts; the reconciliation worker drains
// them with retries and deletes them once applied.
type Outbox struct {
	mu  sync.Mutex
	db  *pebble.DB
	seq uint64
}

func Open(dir string) (*Outbox, error) {
	db, err := pebble.Open(dir, &pebble.Options{
		DisableWAL: false, // entries must survive a crash
	})
	if err != nil {
		return nil, err
	}

	o := &Outbox{db: db}
	if err := o.restoreSequence(); err != nil {
		db.Close()
		return nil, err
	}

	return o, nil
}

func (o *Outbox) Close() error {
	return o.db.Close()
}

func (o *Outbox) restoreSequence() error {
	iter, err := o.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(keyPrefix),
		UpperBound: []byte(keyPrefix + "~"),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	if iter.Last() && iter.Valid() {
		seq, err := parseKey(iter.Key())
		if err != nil {
			return err
		}
		o.seq = seq
	}

	return iter.Error()
}

// Enqueue appends an entry and syncs it to disk before returning.
func (o *Outbox) Enqueue(entry *matching.ReconcileEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	o.mu.Lock()
	o.seq++
	key := keyFor(o.seq)
	o.mu.Unlock()

	return o.db.Set(key, payload, pebble.Sync)
}

// Scan walks pending entries in insertion order. The callback's error
// stops the scan.
func (o *Outbox) Scan(fn func(seq uint64, entry *matching.ReconcileEntry) error) error {
	iter, err := o.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(keyPrefix),
		UpperBound: []byte(keyPrefix + "~"),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		seq, err := parseKey(iter.Key())
		if err != nil {
			return err
		}

		entry := &matching.ReconcileEntry{}
		if err := json.Unmarshal(iter.Value(), entry); err != nil {
			return err
		}

		if err := fn(seq, entry); err != nil {
			return err
		}
	}

	return iter.Error()
}

// Delete removes an applied entry.
func (o *Outbox) Delete(seq uint64) error {
	return o.db.Delete(keyFor(seq), pebble.Sync)
}

func keyFor(seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", keyPrefix, seq))
}

func parseKey(b []byte) (uint64, error) {
	var seq uint64
	_, err := fmt.Sscanf(string(bytes.TrimPrefix(b, []byte(keyPrefix))), "%d", &seq)
	return seq, err
}
