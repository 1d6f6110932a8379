package paretoset

import (
	"testing"

	"github.com/ssargent/multicrit/pkg/config"
	"github.com/ssargent/multicrit/pkg/label"
)

func newTestTreeSet() *TreeSet {
	return NewTreeSet(config.BTree{LeafParameterK: 8, BranchingParameterB: 4})
}

func TestTreeSetEmptyHasNoLabels(t *testing.T) {
	s := newTestTreeSet()
	if s.Size() != 0 {
		t.Fatalf("want size 0, got %d", s.Size())
	}
}

func TestTreeSetInsertsNonDominatedCandidates(t *testing.T) {
	s := newTestTreeSet()
	ops := s.Update(1, []label.Label{{W1: 1, W2: 5}, {W1: 3, W2: 2}})
	if len(ops) != 2 {
		t.Fatalf("want 2 inserts, got %d: %v", len(ops), ops)
	}
	if s.Size() != 2 {
		t.Fatalf("want size 2, got %d", s.Size())
	}
}

func TestTreeSetRejectsDominatedCandidate(t *testing.T) {
	s := newTestTreeSet()
	s.Update(1, []label.Label{{W1: 2, W2: 2}})
	ops := s.Update(1, []label.Label{{W1: 3, W2: 3}})
	if len(ops) != 0 {
		t.Fatalf("want no updates for a dominated candidate, got %v", ops)
	}
	if s.Size() != 1 {
		t.Fatalf("want size unchanged at 1, got %d", s.Size())
	}
}

func TestTreeSetReplacesDominatedMembers(t *testing.T) {
	s := newTestTreeSet()
	s.Update(1, []label.Label{{W1: 5, W2: 5}, {W1: 10, W2: 1}})
	ops := s.Update(1, []label.Label{{W1: 3, W2: 3}})
	if len(ops) != 2 {
		t.Fatalf("want 1 insert + 1 delete, got %d: %v", len(ops), ops)
	}
	if s.Size() != 2 {
		t.Fatalf("want size 2 after replacing the dominated member, got %d", s.Size())
	}
	labels := s.Labels()
	if !labels[0].Equal(label.Label{W1: 3, W2: 3}) {
		t.Fatalf("want (3,3) first, got %v", labels)
	}
}

func TestTreeSetAgreesWithVectorSet(t *testing.T) {
	candidateBatches := [][]label.Label{
		{{W1: 1, W2: 9}, {W1: 4, W2: 4}, {W1: 9, W2: 1}},
		{{W1: 2, W2: 5}},
		{{W1: 0, W2: 20}},
	}

	vs := NewVectorSet()
	ts := newTestTreeSet()
	for _, batch := range candidateBatches {
		vs.Update(7, batch)
		ts.Update(7, batch)
	}

	vsLabels, tsLabels := vs.Labels(), ts.Labels()
	if len(vsLabels) != len(tsLabels) {
		t.Fatalf("vector set and tree set diverged in size: %v vs %v", vsLabels, tsLabels)
	}
	for i := range vsLabels {
		if !vsLabels[i].Equal(tsLabels[i]) {
			t.Fatalf("vector set and tree set diverged at %d: %v vs %v", i, vsLabels, tsLabels)
		}
	}
}

func TestTreeSetVerifyPassesAfterUpdates(t *testing.T) {
	s := newTestTreeSet()
	for i := label.Weight(0); i < 40; i++ {
		s.Update(1, []label.Label{{W1: i, W2: 40 - i}})
	}
	if err := s.Verify(); err != nil {
		t.Fatalf("unexpected verify error: %v", err)
	}
}
