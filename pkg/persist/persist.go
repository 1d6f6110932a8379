// Package persist is an optional snapshot sink for completed per-vertex
// Pareto fronts, used by the "dump" subcommand to checkpoint a finished
// run for later inspection without re-running the search. It plays no
// part in the search itself, but a batch engine that only ever prints
// to stdout has nowhere to put a completed multi-run comparison, so
// this wraps a Pebble-backed store for that one ambient use.
package persist

import (
	"encoding/binary"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/multicrit/pkg/label"
)

// Store is a Pebble-backed sink for per-vertex Pareto fronts, keyed by
// a ksuid minted per saved front so repeated dumps of the same run don't
// collide.
type Store struct {
	db *pebble.DB
}

// Open opens (or creates) a Pebble database at path.
func Open(path string) (*Store, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("persist: open %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// SaveFront writes one vertex's finished Pareto front under a fresh
// ksuid key and returns the key so the caller can look it up later.
func (s *Store) SaveFront(node label.NodeID, labels []label.Label) (ksuid.KSUID, error) {
	id := ksuid.New()
	if err := s.db.Set(id.Bytes(), encodeFront(node, labels), pebble.NoSync); err != nil {
		return ksuid.Nil, fmt.Errorf("persist: save front for node %d: %w", node, err)
	}
	return id, nil
}

// LoadFront reads back a previously saved front by its ksuid key.
func (s *Store) LoadFront(id ksuid.KSUID) (label.NodeID, []label.Label, error) {
	data, closer, err := s.db.Get(id.Bytes())
	if err != nil {
		return 0, nil, fmt.Errorf("persist: load front %s: %w", id, err)
	}
	defer closer.Close()
	return decodeFront(data)
}

// DeleteFront removes a previously saved front.
func (s *Store) DeleteFront(id ksuid.KSUID) error {
	if err := s.db.Delete(id.Bytes(), pebble.NoSync); err != nil {
		return fmt.Errorf("persist: delete front %s: %w", id, err)
	}
	return nil
}

// encodeFront serializes a node id and its labels as a flat
// little-endian record: node, count, then (w1,w2) pairs. A full
// dependency like protobuf would be overkill for a fixed-shape,
// internal-only record with no cross-version compatibility
// requirement.
func encodeFront(node label.NodeID, labels []label.Label) []byte {
	buf := make([]byte, 4+4+8*len(labels))
	binary.LittleEndian.PutUint32(buf[0:4], node)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(labels)))
	for i, l := range labels {
		off := 8 + i*8
		binary.LittleEndian.PutUint32(buf[off:off+4], l.W1)
		binary.LittleEndian.PutUint32(buf[off+4:off+8], l.W2)
	}
	return buf
}

func decodeFront(buf []byte) (label.NodeID, []label.Label, error) {
	if len(buf) < 8 {
		return 0, nil, fmt.Errorf("persist: record too short (%d bytes)", len(buf))
	}
	node := binary.LittleEndian.Uint32(buf[0:4])
	count := binary.LittleEndian.Uint32(buf[4:8])
	want := 8 + int(count)*8
	if len(buf) != want {
		return 0, nil, fmt.Errorf("persist: record length %d does not match header (want %d)", len(buf), want)
	}
	labels := make([]label.Label, count)
	for i := range labels {
		off := 8 + i*8
		labels[i] = label.Label{
			W1: binary.LittleEndian.Uint32(buf[off : off+4]),
			W2: binary.LittleEndian.Uint32(buf[off+4 : off+8]),
		}
	}
	return node, labels, nil
}
