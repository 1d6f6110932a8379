package paretoset

import (
	"sort"
	"testing"

	"github.com/ssargent/multicrit/pkg/label"
)

func sortedLabels(ls ...label.Label) []label.Label {
	sort.Slice(ls, func(i, j int) bool { return ls[i].Less(ls[j]) })
	return ls
}

func TestEmptySetHasNoLabels(t *testing.T) {
	s := NewVectorSet()
	if s.Size() != 0 {
		t.Fatalf("want size 0, got %d", s.Size())
	}
	if len(s.Labels()) != 0 {
		t.Fatalf("want no labels, got %v", s.Labels())
	}
}

func TestUpdateInsertsNonDominatedCandidates(t *testing.T) {
	s := NewVectorSet()
	cands := sortedLabels(label.Label{W1: 1, W2: 10}, label.Label{W1: 5, W2: 2})

	ops := s.Update(7, cands)
	if len(ops) != 2 {
		t.Fatalf("want 2 insert ops, got %d: %v", len(ops), ops)
	}
	for _, op := range ops {
		if op.Type != label.Insert {
			t.Fatalf("expected only inserts, got %v", op)
		}
		if op.Data.Node != 7 {
			t.Fatalf("expected node 7, got %d", op.Data.Node)
		}
	}
	if s.Size() != 2 {
		t.Fatalf("want size 2, got %d", s.Size())
	}
}

func TestUpdateRejectsDominatedCandidate(t *testing.T) {
	s := NewVectorSet()
	s.Update(1, []label.Label{{W1: 2, W2: 2}})

	// (3,3) is dominated by the existing (2,2): no update should occur.
	ops := s.Update(1, []label.Label{{W1: 3, W2: 3}})
	if len(ops) != 0 {
		t.Fatalf("expected no updates for dominated candidate, got %v", ops)
	}
	if s.Size() != 1 {
		t.Fatalf("want size 1, got %d", s.Size())
	}
}

func TestUpdateReplacesDominatedMembers(t *testing.T) {
	s := NewVectorSet()
	// Seed a front of three mutually non-dominated labels.
	s.Update(1, sortedLabels(
		label.Label{W1: 1, W2: 9},
		label.Label{W1: 3, W2: 7},
		label.Label{W1: 5, W2: 5},
	))
	if s.Size() != 3 {
		t.Fatalf("want size 3 after seeding, got %d", s.Size())
	}

	// (2,4) dominates both (3,7) and (5,5); it should delete both and insert itself.
	ops := s.Update(1, []label.Label{{W1: 2, W2: 4}})

	var inserts, deletes int
	for _, op := range ops {
		switch op.Type {
		case label.Insert:
			inserts++
			if !op.Data.Label.Equal(label.Label{W1: 2, W2: 4}) {
				t.Fatalf("unexpected insert %v", op.Data)
			}
		case label.Delete:
			deletes++
		}
	}
	if inserts != 1 || deletes != 2 {
		t.Fatalf("want 1 insert / 2 deletes, got %d/%d: %v", inserts, deletes, ops)
	}

	got := s.Labels()
	want := []label.Label{{W1: 1, W2: 9}, {W1: 2, W2: 4}}
	if len(got) != len(want) {
		t.Fatalf("want %v, got %v", want, got)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Fatalf("want %v, got %v", want, got)
		}
	}
}

func TestUpdateWithinBatchKeepsEarliestShortcut(t *testing.T) {
	s := NewVectorSet()
	// Candidates pre-sorted by W1; the second dominates nothing new once the
	// first establishes a rolling W2 minimum below it.
	cands := []label.Label{{W1: 1, W2: 3}, {W1: 2, W2: 5}}
	ops := s.Update(4, cands)
	if len(ops) != 1 {
		t.Fatalf("want exactly 1 insert, got %d: %v", len(ops), ops)
	}
	if !ops[0].Data.Label.Equal(label.Label{W1: 1, W2: 3}) {
		t.Fatalf("unexpected survivor %v", ops[0].Data)
	}
}
