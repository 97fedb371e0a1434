package buffer

import (
	"fmt"
	"math"
	"sync"
)

// lrukReplacer selects a frame for eviction using the LRU-K policy: a
// frame that hasn't been accessed k times yet has infinite backward
// k-distance and is evicted before any frame that has, and among frames
// that have, the one whose k-th-most-recent access is furthest in the
// past goes first.
type lrukReplacer struct {
	mu            sync.Mutex
	k             int
	currTimestamp int
	nodes         map[int]*lrukNode
}

// NewLrukReplacer creates a replacer sized for up to capacity tracked
// frames, evicting by k-distance with history length k.
func NewLrukReplacer(capacity, k int) *lrukReplacer {
	return &lrukReplacer{
		k:     k,
		nodes: make(map[int]*lrukNode, capacity),
	}
}

func (r *lrukReplacer) recordAccess(frameId int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	node, ok := r.nodes[frameId]
	if !ok {
		node = &lrukNode{frameId: frameId, k: r.k}
		r.nodes[frameId] = node
	}
	node.addTimestamp(r.currTimestamp)
	r.currTimestamp++
}

func (r *lrukReplacer) setEvictable(frameId int, evictable bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if node, ok := r.nodes[frameId]; ok {
		node.isEvictable = evictable
	}
}

func (r *lrukReplacer) remove(frameId int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	node, ok := r.nodes[frameId]
	if !ok {
		return nil
	}
	if !node.isEvictable {
		return fmt.Errorf("buffer: evicting a non-evictable frame %d", frameId)
	}
	delete(r.nodes, frameId)
	return nil
}

// evict picks the frame with the largest backward k-distance among
// evictable frames, returning InvalidFrameId if none are evictable.
func (r *lrukReplacer) evict() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	best := InvalidFrameId
	bestIsInf := false
	bestFirstAccess := math.MaxInt
	bestDistance := -1

	for id, node := range r.nodes {
		if !node.isEvictable {
			continue
		}

		if !node.hasKAccess() {
			first := node.history[0]
			if !bestIsInf || first < bestFirstAccess {
				best = id
				bestIsInf = true
				bestFirstAccess = first
			}
			continue
		}

		if bestIsInf {
			continue
		}
		distance := r.currTimestamp - node.kthAccess()
		if distance > bestDistance {
			best = id
			bestDistance = distance
		}
	}

	if best == InvalidFrameId {
		return InvalidFrameId, nil
	}
	delete(r.nodes, best)
	return best, nil
}

func (r *lrukReplacer) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, node := range r.nodes {
		if node.isEvictable {
			count++
		}
	}
	return count
}
