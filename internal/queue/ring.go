package queue

import "container/list"

// workspaceRing holds one priority level's pending items as a ring of
// per-workspace FIFO lanes. Cycling the ring (rather than popping a flat
// FIFO ordered purely by enqueueSeq) is what gives per-workspace fairness:
// a workspace that enqueues a burst of requests cannot push its lane's
// sequence numbers ahead of a quieter workspace's single pending request,
// since each workspace gets a turn in rotation regardless of how many
// items are queued behind it.
type workspaceRing struct {
	lanes  map[string]*list.List
	order  []string
	cursor int
}

func newWorkspaceRing() *workspaceRing {
	return &workspaceRing{lanes: make(map[string]*list.List)}
}

// push appends it to its workspace's lane, creating the lane (and giving
// it a ring slot) if this is the first pending item for that workspace.
func (r *workspaceRing) push(it *item) {
	lane, ok := r.lanes[it.workspaceID]
	if !ok {
		lane = list.New()
		r.lanes[it.workspaceID] = lane
		r.order = append(r.order, it.workspaceID)
	}
	lane.PushBack(it)
}

// next returns the front item of the next non-empty lane in rotation,
// advancing the cursor past it. A lane that becomes empty is dropped from
// the ring entirely so the rotation never wastes a turn on it.
func (r *workspaceRing) next() (*item, bool) {
	for i := 0; i < len(r.order); i++ {
		idx := (r.cursor + i) % len(r.order)
		wsID := r.order[idx]
		lane := r.lanes[wsID]
		if lane.Len() == 0 {
			continue
		}
		front := lane.Remove(lane.Front()).(*item)
		if lane.Len() == 0 {
			delete(r.lanes, wsID)
			r.order = append(r.order[:idx], r.order[idx+1:]...)
			r.cursor = idx % maxInt(len(r.order), 1)
		} else {
			r.cursor = (idx + 1) % len(r.order)
		}
		return front, true
	}
	return nil, false
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
