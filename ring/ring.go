// Package ring simulates token ownership on a cluster with virtual nodes, so
// the key distribution of a workload can be checked before it is run.
package ring

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/dzonerzy/go-cstress/token"
)

// Ring is an immutable token ring. A token belongs to the node holding the
// first ring token greater than or equal to it, wrapping past the largest.
// Safe for concurrent use.
type Ring struct {
	tokens []int64  // sorted ascending
	owners []string // owners[i] holds tokens[i]
	nodes  []string
}

// New places vnodes pseudo-random tokens per node. The same nodes, vnodes and
// seed always produce the same ring.
func New(nodes []string, vnodes int, seed int64) (*Ring, error) {
	if len(nodes) == 0 {
		return nil, errors.New("ring: no nodes")
	}
	if vnodes < 1 {
		return nil, fmt.Errorf("ring: vnodes must be positive, got %d", vnodes)
	}

	seen := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if seen[n] {
			return nil, fmt.Errorf("ring: node %q listed twice", n)
		}
		seen[n] = true
	}

	rng := rand.New(rand.NewSource(seed))
	taken := make(map[int64]bool, len(nodes)*vnodes)
	type entry struct {
		token int64
		owner string
	}
	entries := make([]entry, 0, len(nodes)*vnodes)
	for _, n := range nodes {
		for i := 0; i < vnodes; i++ {
			t := int64(rng.Uint64())
			for taken[t] {
				t = int64(rng.Uint64())
			}
			taken[t] = true
			entries = append(entries, entry{token: t, owner: n})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].token < entries[j].token
	})

	r := &Ring{
		tokens: make([]int64, len(entries)),
		owners: make([]string, len(entries)),
		nodes:  append([]string(nil), nodes...),
	}
	for i, e := range entries {
		r.tokens[i] = e.token
		r.owners[i] = e.owner
	}
	return r, nil
}

// Nodes returns the nodes in the order they were given.
func (r *Ring) Nodes() []string {
	return append([]string(nil), r.nodes...)
}

// Tokens returns the number of tokens on the ring.
func (r *Ring) Tokens() int {
	return len(r.tokens)
}

// Owner returns the node owning tok. Uses binary search for O(log N) lookup.
func (r *Ring) Owner(tok int64) string {
	idx := sort.Search(len(r.tokens), func(i int) bool {
		return r.tokens[i] >= tok
	})
	// If no token >= tok, wrap to the first one
	if idx == len(r.tokens) {
		idx = 0
	}
	return r.owners[idx]
}

// OwnerOf returns the node owning a serialized partition key.
func (r *Ring) OwnerOf(key []byte) string {
	return r.Owner(token.Of(key))
}

// Ownership returns the fraction of the token range each node owns.
func (r *Ring) Ownership() map[string]float64 {
	share := make(map[string]float64, len(r.nodes))
	if len(r.tokens) == 1 {
		share[r.owners[0]] = 1
		return share
	}
	const rangeSize float64 = 1 << 64
	for i, t := range r.tokens {
		prev := r.tokens[(i+len(r.tokens)-1)%len(r.tokens)]
		// Unsigned subtraction wraps around the ring for the first token.
		width := uint64(t) - uint64(prev)
		share[r.owners[i]] += float64(width) / rangeSize
	}
	return share
}

// Distribution hashes keys on workers goroutines and counts the keys each
// node owns. Each worker hashes with its own Hasher; the counts do not depend
// on the number of workers.
func (r *Ring) Distribution(ctx context.Context, keys [][]byte, workers int) (map[string]int, error) {
	if workers < 1 {
		workers = 1
	}
	if workers > len(keys) && len(keys) > 0 {
		workers = len(keys)
	}

	index := make(map[string]int, len(r.nodes))
	for i, n := range r.nodes {
		index[n] = i
	}

	partial := make([][]int, workers)
	g, ctx := errgroup.WithContext(ctx)
	chunk := (len(keys) + workers - 1) / workers
	for w := 0; w < workers; w++ {
		lo := min(w*chunk, len(keys))
		hi := min(lo+chunk, len(keys))
		counts := make([]int, len(r.nodes))
		partial[w] = counts
		g.Go(func() error {
			var h token.Hasher
			for i, key := range keys[lo:hi] {
				if i%1024 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				h.Reset()
				h.Write(key)
				counts[index[r.Owner(h.Token())]]++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := make(map[string]int, len(r.nodes))
	for _, n := range r.nodes {
		result[n] = 0
	}
	for _, counts := range partial {
		for i, c := range counts {
			result[r.nodes[i]] += c
		}
	}
	return result, nil
}
