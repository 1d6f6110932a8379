// Package textgraph parses the DIMACS-style two-objective graph format:
// a `p sp N M` header, `a u v w1 w2` edge records, and `c` comment
// lines. Node ids in the file are 1-based; this package translates them
// to 0-based ids before they ever reach pkg/graph.
//
// It also owns an optional binary adjacency dump format and transparent
// zstd decompression of either format when the source is compressed.
package textgraph

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/DataDog/zstd"

	"github.com/ssargent/multicrit/pkg/graph"
	"github.com/ssargent/multicrit/pkg/label"
)

const zstdMagic = "\x28\xb5\x2f\xfd"

// maybeDecompress wraps r in a zstd reader when its first four bytes
// carry the zstd frame magic, otherwise returns r unchanged. Large
// grid/DAG instance files are typically zstd-compressed to keep them
// small on disk.
func maybeDecompress(r *bufio.Reader) (io.Reader, error) {
	peek, err := r.Peek(4)
	if err != nil {
		if err == io.EOF || err == bufio.ErrBufferFull {
			return r, nil
		}
		return nil, fmt.Errorf("textgraph: peek header: %w", err)
	}
	if string(peek) == zstdMagic {
		return zstd.NewReader(r), nil
	}
	return r, nil
}

// Parse reads the `p sp N M` / `a u v w1 w2` / `c ...` text format from
// r, translating 1-based file node ids to 0-based internal ids, and
// returns a built AdjacencyGraph.
func Parse(r io.Reader) (*graph.AdjacencyGraph, error) {
	br := bufio.NewReader(r)
	src, err := maybeDecompress(br)
	if err != nil {
		return nil, err
	}

	sc := bufio.NewScanner(src)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var numNodes, numEdges, seenEdges int
	var headerSeen bool
	var b *graph.Builder

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		switch line[0] {
		case 'c':
			continue
		case 'p':
			fields := strings.Fields(line)
			if len(fields) != 4 || fields[1] != "sp" {
				return nil, fmt.Errorf("textgraph: malformed header %q", line)
			}
			numNodes, err = strconv.Atoi(fields[2])
			if err != nil {
				return nil, fmt.Errorf("textgraph: header node count: %w", err)
			}
			numEdges, err = strconv.Atoi(fields[3])
			if err != nil {
				return nil, fmt.Errorf("textgraph: header edge count: %w", err)
			}
			b = graph.NewBuilder(numNodes)
			headerSeen = true
		case 'a':
			if !headerSeen {
				return nil, fmt.Errorf("textgraph: edge record before header")
			}
			fields := strings.Fields(line)
			if len(fields) != 5 {
				return nil, fmt.Errorf("textgraph: malformed edge record %q", line)
			}
			u, err := strconv.ParseUint(fields[1], 10, 32)
			if err != nil {
				return nil, fmt.Errorf("textgraph: edge source: %w", err)
			}
			v, err := strconv.ParseUint(fields[2], 10, 32)
			if err != nil {
				return nil, fmt.Errorf("textgraph: edge target: %w", err)
			}
			w1, err := strconv.ParseUint(fields[3], 10, 32)
			if err != nil {
				return nil, fmt.Errorf("textgraph: edge weight 1: %w", err)
			}
			w2, err := strconv.ParseUint(fields[4], 10, 32)
			if err != nil {
				return nil, fmt.Errorf("textgraph: edge weight 2: %w", err)
			}
			if u == 0 || v == 0 {
				return nil, fmt.Errorf("textgraph: edge record uses 1-based ids, got u=%d v=%d", u, v)
			}
			if err := b.AddEdge(label.NodeID(u-1), label.NodeID(v-1), label.Weight(w1), label.Weight(w2)); err != nil {
				return nil, fmt.Errorf("textgraph: %w", err)
			}
			seenEdges++
		default:
			return nil, fmt.Errorf("textgraph: unrecognized record type %q", line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("textgraph: scan: %w", err)
	}
	if !headerSeen {
		return nil, fmt.Errorf("textgraph: missing `p sp N M` header")
	}
	if seenEdges != numEdges {
		return nil, fmt.Errorf("textgraph: header declared %d edges, found %d", numEdges, seenEdges)
	}
	return b.Build(), nil
}

const binaryMagic uint32 = 0x6d637467 // "mctg"

// DumpBinary writes g's adjacency in a compact binary layout: a
// magic number, node count, then per-node out-degree followed
// by its edge records.
func DumpBinary(w io.Writer, g *graph.AdjacencyGraph) error {
	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, binaryMagic); err != nil {
		return fmt.Errorf("textgraph: write magic: %w", err)
	}
	n := g.NumNodes()
	if err := binary.Write(bw, binary.LittleEndian, uint32(n)); err != nil {
		return fmt.Errorf("textgraph: write node count: %w", err)
	}
	for node := 0; node < n; node++ {
		edges := g.Edges(label.NodeID(node))
		if err := binary.Write(bw, binary.LittleEndian, uint32(len(edges))); err != nil {
			return fmt.Errorf("textgraph: write degree for node %d: %w", node, err)
		}
		for _, e := range edges {
			rec := [3]uint32{e.To, e.W1, e.W2}
			if err := binary.Write(bw, binary.LittleEndian, rec); err != nil {
				return fmt.Errorf("textgraph: write edge for node %d: %w", node, err)
			}
		}
	}
	return bw.Flush()
}

// LoadBinary reads back a graph written by DumpBinary.
func LoadBinary(r io.Reader) (*graph.AdjacencyGraph, error) {
	br := bufio.NewReader(r)
	src, err := maybeDecompress(br)
	if err != nil {
		return nil, err
	}

	var magic, n uint32
	if err := binary.Read(src, binary.LittleEndian, &magic); err != nil {
		return nil, fmt.Errorf("textgraph: read magic: %w", err)
	}
	if magic != binaryMagic {
		return nil, fmt.Errorf("textgraph: bad magic %#x", magic)
	}
	if err := binary.Read(src, binary.LittleEndian, &n); err != nil {
		return nil, fmt.Errorf("textgraph: read node count: %w", err)
	}

	b := graph.NewBuilder(int(n))
	for node := uint32(0); node < n; node++ {
		var degree uint32
		if err := binary.Read(src, binary.LittleEndian, &degree); err != nil {
			return nil, fmt.Errorf("textgraph: read degree for node %d: %w", node, err)
		}
		for i := uint32(0); i < degree; i++ {
			var rec [3]uint32
			if err := binary.Read(src, binary.LittleEndian, &rec); err != nil {
				return nil, fmt.Errorf("textgraph: read edge for node %d: %w", node, err)
			}
			if err := b.AddEdge(node, rec[0], rec[1], rec[2]); err != nil {
				return nil, fmt.Errorf("textgraph: %w", err)
			}
		}
	}
	return b.Build(), nil
}
