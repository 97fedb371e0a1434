package buffer

// InvalidFrameId is returned by the replacer when no frame is evictable.
const InvalidFrameId = -1

// lrukNode tracks a frame's last k access timestamps for the LRU-K
// eviction policy: a frame without k recorded accesses yet is preferred
// for eviction over one that has reached k, and among frames with k
// accesses the one whose k-th-most-recent access is oldest is evicted.
type lrukNode struct {
	frameId     int
	k           int
	history     []int
	isEvictable bool
}

func (n *lrukNode) hasKAccess() bool {
	return len(n.history) >= n.k
}

// kthAccess returns the timestamp of the node's k-th most recent access,
// or -1 if it has not been accessed k times yet.
func (n *lrukNode) kthAccess() int {
	if !n.hasKAccess() {
		return -1
	}
	return n.history[0]
}

func (n *lrukNode) addTimestamp(timestamp int) {
	if len(n.history) < n.k {
		n.history = append(n.history, timestamp)
		return
	}
	n.history = append(n.history[1:], timestamp)
}
