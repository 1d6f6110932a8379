// Package psort implements the sorting primitives the BSP driver needs
// between phases: a grain-size-cutoff parallel quicksort, a byte-wise
// LSD radix sort specialized for node-keyed records, and an exclusive
// prefix scan used to lay out per-partition output ranges.
//
// The parallel quicksort uses median-of-three pivot selection with a
// recursive split, falling back to a plain sort below a grain size; the
// radix sort does byte-wise bucketing over a 32-bit key with an
// ascending shift (least-significant byte first) and runs in the
// calling goroutine. The quicksort's fan-out uses golang.org/x/sync/errgroup,
// the idiomatic Go stand-in for fork-join parallelism used throughout
// this module.
package psort

import (
	"math"
	"sort"

	"golang.org/x/sync/errgroup"
)

// DefaultGrain is the minimum slice length a parallel sort will still
// split into concurrent subtasks; below it, sort.Slice runs inline.
const DefaultGrain = 512

// ParallelSort sorts s in place using less, splitting recursively into
// concurrent subtasks via errgroup.Group until a partition is smaller
// than grain, at which point it finishes with sort.Slice. grain <= 0
// selects DefaultGrain.
func ParallelSort[T any](s []T, less func(a, b T) bool, grain int) {
	if grain <= 0 {
		grain = DefaultGrain
	}
	parallelSort(s, less, grain)
}

func parallelSort[T any](s []T, less func(a, b T) bool, grain int) {
	if len(s) <= grain {
		sort.Slice(s, func(i, j int) bool { return less(s[i], s[j]) })
		return
	}
	mid := medianOfThreePivot(s, less)
	s[0], s[mid] = s[mid], s[0]
	pivot := s[0]

	lo, hi := 1, len(s)-1
	for lo <= hi {
		for lo <= hi && less(s[lo], pivot) {
			lo++
		}
		for lo <= hi && less(pivot, s[hi]) {
			hi--
		}
		if lo <= hi {
			s[lo], s[hi] = s[hi], s[lo]
			lo++
			hi--
		}
	}
	s[0], s[hi] = s[hi], s[0]

	left, right := s[:hi], s[hi+1:]

	var g errgroup.Group
	g.Go(func() error {
		parallelSort(left, less, grain)
		return nil
	})
	parallelSort(right, less, grain)
	_ = g.Wait()
}

// medianOfThreePivot picks a pivot index using the low/mid/high median,
// the same splitter heuristic as quick_sort_range::median_of_three.
func medianOfThreePivot[T any](s []T, less func(a, b T) bool) int {
	l, m, r := 0, len(s)/2, len(s)-1
	switch {
	case less(s[l], s[m]):
		if less(s[m], s[r]) {
			return m
		}
		if less(s[l], s[r]) {
			return r
		}
		return l
	default:
		if less(s[r], s[m]) {
			return m
		}
		if less(s[r], s[l]) {
			return r
		}
		return l
	}
}

// RadixSortByNode stably sorts s by the uint32 key extracted by key,
// using a 4-pass, 8-bit-per-pass LSD radix sort. Used by the BSP driver
// to group candidate labels by destination node, where a
// general-purpose comparison sort would be strictly more work than
// necessary.
func RadixSortByNode[T any](s []T, key func(T) uint32) {
	if len(s) < 2 {
		return
	}
	buf := make([]T, len(s))
	src, dst := s, buf
	for shift := uint(0); shift < 32; shift += 8 {
		var count [257]int
		for _, v := range src {
			b := (key(v) >> shift) & 0xFF
			count[b+1]++
		}
		for i := 1; i < 257; i++ {
			count[i] += count[i-1]
		}
		for _, v := range src {
			b := (key(v) >> shift) & 0xFF
			dst[count[b]] = v
			count[b]++
		}
		src, dst = dst, src
	}
	// Four passes (shifts 0, 8, 16, 24) is an even number of src/dst swaps,
	// so src always lands back on s -- nothing left to copy back.
}

// Grain computes the adaptive parallel cutoff used by pkg/search's BSP
// phases: total work divided evenly
// across workers, then shrunk logarithmically so a handful of workers
// on a large problem still gets fine-grained fan-out, floored at a
// caller-supplied minimum.
func Grain(total, workers, floor int) int {
	if workers < 1 {
		workers = 1
	}
	perWorker := total / workers
	if perWorker < 1 {
		perWorker = 1
	}
	g := int(float64(perWorker) / (math.Log2(float64(perWorker)+1) + 1))
	if g < floor {
		g = floor
	}
	return g
}

// PrefixScan returns the exclusive prefix sums of counts: out[i] is the
// sum of counts[0:i]. Used to turn per-partition item counts into
// output offsets before a parallel scatter.
func PrefixScan(counts []int) []int {
	out := make([]int, len(counts))
	sum := 0
	for i, c := range counts {
		out[i] = sum
		sum += c
	}
	return out
}
